package mall

import (
	"voucher_wheel/internal/domain/mall/handler"
	"voucher_wheel/internal/domain/mall/repository"
	"voucher_wheel/internal/domain/mall/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/registry"
	"voucher_wheel/pkg/cache"

	"github.com/gin-gonic/gin"
)

// MallModule 商场信息模块
type MallModule struct{}

func init() {
	registry.Register(&MallModule{})
}

func (m *MallModule) Name() string {
	return "mall"
}

func (m *MallModule) Priority() int {
	return 10
}

func (m *MallModule) Init(ctx *registry.ModuleContext) error {
	var store cache.CacheService = cache.NewMemoryCache()
	if ctx.Redis != nil {
		store = cache.NewRedisCache(ctx.Redis, ctx.Config.Server.Mode)
	}

	mRepo := repository.NewMallRepository(ctx.DB)
	mService := service.NewMallService(mRepo, store, ctx.Logger.Named("mall"))
	mHandler := handler.NewMallHandler(mService)

	setupRoutes(ctx.Router, mHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.MallHandler) {
	r.GET("/mall", h.GetInfo)

	admin := r.Group("/admin/mall")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.PUT("", h.UpdateInfo)
	}
}
