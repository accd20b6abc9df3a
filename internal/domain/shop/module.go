package shop

import (
	"voucher_wheel/internal/domain/shop/handler"
	"voucher_wheel/internal/domain/shop/repository"
	"voucher_wheel/internal/domain/shop/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/registry"
	"voucher_wheel/pkg/cache"

	"github.com/gin-gonic/gin"
)

// ShopModule 商铺目录模块
type ShopModule struct{}

func init() {
	registry.Register(&ShopModule{})
}

func (m *ShopModule) Name() string {
	return "shop"
}

func (m *ShopModule) Priority() int {
	return 10
}

func (m *ShopModule) Init(ctx *registry.ModuleContext) error {
	var store cache.CacheService = cache.NewMemoryCache()
	if ctx.Redis != nil {
		store = cache.NewRedisCache(ctx.Redis, ctx.Config.Server.Mode)
	}

	// 1. 依赖注入
	sRepo := repository.NewShopRepository(ctx.DB)
	sService := service.NewCachedShopService(service.NewShopService(sRepo), store, ctx.Logger.Named("shop"))
	sHandler := handler.NewShopHandler(sService)

	// 2. 路由注册
	setupRoutes(ctx.Router, sHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ShopHandler) {
	g := r.Group("/shops")
	{
		g.GET("", h.ListShops)
		g.GET("/categories", h.ListCategories)
		g.GET("/:id", h.GetShop)
	}

	admin := r.Group("/admin/shops")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateShop)
	}
}
