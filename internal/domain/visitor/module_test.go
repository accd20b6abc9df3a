package visitor

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"voucher_wheel/internal/domain/visitor/handler"
	"voucher_wheel/internal/domain/visitor/model"
	"voucher_wheel/internal/domain/visitor/repository"
	"voucher_wheel/internal/domain/visitor/service"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestVisitorRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := config.GlobalConfig.JWT
	config.GlobalConfig.JWT = config.JWTConfig{Secret: "test-secret-with-at-least-32-characters", Expire: 1}
	t.Cleanup(func() { config.GlobalConfig.JWT = prev })

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "visitor.db")), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Visitor{}, &model.VisitorStats{}))

	svc := service.NewVisitorService(repository.NewVisitorRepository(db), time.UTC, zap.NewNop())
	r := gin.New()
	setupRoutes(r, handler.NewVisitorHandler(svc))

	serve := func(method, path, body, auth string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}
	token := func(role int) string {
		tok, _, err := utils.GenerateToken("user-1", role)
		require.NoError(t, err)
		return "Bearer " + tok
	}

	// 上报无需登录
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/visits", `{"sessionId":"sess-1"}`, "").Code)
	}
	assert.Equal(t, http.StatusOK, serve(http.MethodPost, "/visits", `{"sessionId":"sess-2"}`, "").Code)

	assert.Equal(t, http.StatusUnauthorized, serve(http.MethodGet, "/admin/visitors/stats", "", "").Code)
	assert.Equal(t, http.StatusForbidden, serve(http.MethodGet, "/admin/visitors/stats", "", token(utils.RoleUser)).Code)

	w := serve(http.MethodGet, "/admin/visitors/stats?period=day", "", token(utils.RoleAdmin))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalVisitors":2`)
	assert.Contains(t, w.Body.String(), `"totalPageViews":4`)
}
