package parking

import (
	"voucher_wheel/internal/domain/parking/handler"
	"voucher_wheel/internal/domain/parking/repository"
	"voucher_wheel/internal/domain/parking/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ParkingModule 停车场余位模块
type ParkingModule struct{}

func init() {
	registry.Register(&ParkingModule{})
}

func (m *ParkingModule) Name() string {
	return "parking"
}

func (m *ParkingModule) Priority() int {
	return 10
}

func (m *ParkingModule) Init(ctx *registry.ModuleContext) error {
	pRepo := repository.NewParkingRepository(ctx.DB)
	pService := service.NewParkingService(pRepo, ctx.Logger.Named("parking"))
	pHandler := handler.NewParkingHandler(pService)

	setupRoutes(ctx.Router, pHandler)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ParkingHandler) {
	r.GET("/parkings", h.ListParkings)

	admin := r.Group("/admin/parkings")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.PUT("", h.UpdateParkings)
	}
}
