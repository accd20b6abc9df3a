package visitor

import (
	"voucher_wheel/internal/domain/visitor/handler"
	"voucher_wheel/internal/domain/visitor/repository"
	"voucher_wheel/internal/domain/visitor/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// VisitorModule 访客统计模块
type VisitorModule struct{}

func init() {
	registry.Register(&VisitorModule{})
}

func (m *VisitorModule) Name() string {
	return "visitor"
}

func (m *VisitorModule) Priority() int {
	return 10
}

func (m *VisitorModule) Init(ctx *registry.ModuleContext) error {
	vRepo := repository.NewVisitorRepository(ctx.DB)
	vService := service.NewVisitorService(vRepo, ctx.Config.Game.Location(), ctx.Logger.Named("visitor"))
	vHandler := handler.NewVisitorHandler(vService)

	setupRoutes(ctx.Router, vHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.VisitorHandler) {
	r.POST("/visits", h.TrackVisit)

	admin := r.Group("/admin/visitors")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/stats", h.Stats)
	}
}
