package middleware

import (
	"net/http"
	"strings"
	"voucher_wheel/pkg/response"
	"voucher_wheel/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// parseBearer 解析 "Bearer <token>"，header 为空时返回 ok=false 且 err=nil
func parseBearer(c *gin.Context) (*utils.Claims, bool, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, true, errInvalidHeader
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		return nil, true, err
	}
	return claims, true, nil
}

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, err := parseBearer(c)
		if !present {
			response.Abort(c, http.StatusUnauthorized, response.ErrAuthFailed, "Authorization header is required")
			return
		}
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware 有 token 时解析身份，没有时匿名放行；token 无效仍然拒绝
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, present, err := parseBearer(c)
		if !present {
			c.Next()
			return
		}
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件，需在 AuthMiddleware 之后
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			response.Abort(c, http.StatusUnauthorized, response.ErrNoPermission, "Unauthorized")
			return
		}

		if r, ok := role.(int); !ok || r != utils.RoleAdmin {
			response.Abort(c, http.StatusForbidden, response.ErrNoPermission, "Admin permission required")
			return
		}

		c.Next()
	}
}

// CurrentUserID 当前登录用户，匿名时为空
func CurrentUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
