package common

import (
	commonHandler "voucher_wheel/internal/pkg/common"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/registry"
	"voucher_wheel/internal/pkg/uploader"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxUploadBody 一次最多 5 张图片加表单开销
const maxUploadBody = 5*uploader.MaxImageSize + 1<<20

// CommonModule 通用功能模块
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100 // 最后初始化
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	// OSS 未配置时上传接口返回 503，其余功能照常
	var up uploader.Uploader
	if oss, err := uploader.NewAliyunOSSUploader(ctx.Config.OSS); err == nil {
		up = oss
	} else {
		ctx.Logger.Warn("OSS uploader disabled", zap.Error(err))
	}

	h := commonHandler.NewCommonHandler(up, ctx.DB, ctx.Redis)
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *commonHandler.CommonHandler) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 商铺图片上传，仅管理员
	r.POST("/upload",
		middleware.BodyLimitMiddleware(maxUploadBody),
		middleware.AuthMiddleware(),
		middleware.AdminMiddleware(),
		h.UploadFile,
	)
}
