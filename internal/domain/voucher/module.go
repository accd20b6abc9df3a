package voucher

import (
	shopRepo "voucher_wheel/internal/domain/shop/repository"
	"voucher_wheel/internal/domain/voucher/handler"
	"voucher_wheel/internal/domain/voucher/repository"
	"voucher_wheel/internal/domain/voucher/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// VoucherModule 代金券模块
type VoucherModule struct{}

func init() {
	registry.Register(&VoucherModule{})
}

func (m *VoucherModule) Name() string {
	return "voucher"
}

func (m *VoucherModule) Priority() int {
	return 20
}

func (m *VoucherModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	vRepo := repository.NewVoucherRepository(ctx.DB)
	vService := service.NewVoucherService(vRepo, shopRepo.NewShopRepository(ctx.DB), ctx.Metrics, ctx.Logger.Named("voucher"))
	vHandler := handler.NewVoucherHandler(vService)

	// 2. 路由注册
	setupRoutes(ctx.Router, vHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.VoucherHandler) {
	authorized := r.Group("/vouchers")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.GET("/mine", h.MyVouchers)
	}

	// 需要管理员权限的路由组
	admin := r.Group("/admin/vouchers")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateVoucher)
		admin.GET("/stats", h.Stats)
		admin.POST("/:code/redeem", h.RedeemVoucher)
	}
}
