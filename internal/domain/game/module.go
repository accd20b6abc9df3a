package game

import (
	"time"
	"voucher_wheel/internal/domain/game/handler"
	"voucher_wheel/internal/domain/game/repository"
	"voucher_wheel/internal/domain/game/service"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/push"
	"voucher_wheel/internal/pkg/registry"
	"voucher_wheel/internal/pkg/worker"
	"voucher_wheel/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
)

// GameModule 每日转盘模块
type GameModule struct{}

func init() {
	registry.Register(&GameModule{})
}

func (m *GameModule) Name() string {
	return "game"
}

func (m *GameModule) Priority() int {
	return 30
}

func (m *GameModule) Init(ctx *registry.ModuleContext) error {
	cfg := ctx.Config.Game

	drawer, err := service.NewDrawer(cfg.WinProbability)
	if err != nil {
		return err
	}

	// 中奖通知在事务提交后异步发送
	pusher := push.NewPushService(ctx.Config.Push, ctx.Logger)
	sender := worker.NewBreakerSender(worker.NewPushSender(pusher), 5, time.Minute)
	pool := worker.NewWorkerPool(sender, ctx.Metrics, ctx.Logger.Named("notify"), 4, 256)
	pool.Start(ctx.Ctx)
	ctx.OnShutdown(pool.Stop)

	// 1. 依赖注入
	gRepo := repository.NewGameRepository(ctx.DB)
	gService := service.NewGameService(cfg, service.Deps{
		Repo:      gRepo,
		Drawer:    drawer,
		Notifier:  pool,
		Metrics:   ctx.Metrics,
		Logger:    ctx.Logger.Named("game"),
		TxOptions: database.SerializableTx(ctx.DB),
	})
	gHandler := handler.NewGameHandler(gService, cfg.Location())

	// 2. 路由注册
	var limiter middleware.RateAllower
	if ctx.Redis != nil {
		limiter = redis_rate.NewLimiter(ctx.Redis)
	}
	setupRoutes(ctx.Router, gHandler, middleware.PlayRateLimitMiddleware(limiter, cfg.PlayRatePerMinute, ctx.Logger))

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.GameHandler, playLimit gin.HandlerFunc) {
	// 匿名访问返回 not_logged_in 结果而不是 401
	g := r.Group("/game")
	g.Use(middleware.OptionalAuthMiddleware())
	{
		g.GET("/eligibility", h.Eligibility)
		g.POST("/play", playLimit, h.Play)
	}

	admin := r.Group("/admin/game")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/stats", h.DailyStats)
		admin.PUT("/pool", h.ConfigurePool)
	}
}
