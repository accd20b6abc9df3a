package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "voucher_wheel/internal/domain/common"
	_ "voucher_wheel/internal/domain/game"
	_ "voucher_wheel/internal/domain/mall"
	_ "voucher_wheel/internal/domain/parking"
	_ "voucher_wheel/internal/domain/shop"
	_ "voucher_wheel/internal/domain/visitor"
	_ "voucher_wheel/internal/domain/voucher"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/internal/pkg/middleware"
	"voucher_wheel/internal/pkg/registry"
	"voucher_wheel/pkg/database"
	"voucher_wheel/pkg/logger"
	"voucher_wheel/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	config.LoadConfig()
	cfg := &config.GlobalConfig

	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	l := logger.L()

	db, err := database.InitDatabase()
	if err != nil {
		l.Fatal("database init failed", zap.Error(err))
	}

	if err := database.RegisterPoolMetrics(db, prometheus.DefaultRegisterer, cfg.Database.DBName); err != nil {
		l.Warn("db pool metrics disabled", zap.Error(err))
	}

	// Redis 仅用于缓存和限流，不可用时降级
	var rdb *redis.Client
	if client, err := database.InitRedis(); err != nil {
		l.Warn("redis unavailable, running without cache and play rate limit", zap.Error(err))
	} else {
		rdb = client
	}

	gin.SetMode(cfg.Server.Mode)
	collector := metrics.GetGlobalCollector()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Trace-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware(l.Named("http")))
	r.Use(middleware.MetricsMiddleware(collector))
	r.Use(middleware.RateLimitMiddleware(middleware.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	moduleCtx := &registry.ModuleContext{
		Ctx:     ctx,
		DB:      db,
		Redis:   rdb,
		Router:  r,
		Config:  cfg,
		Logger:  l,
		Metrics: collector,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		l.Fatal("module init failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("server listening", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Error("server stopped with error", zap.Error(err))
	}

	// HTTP 停止后再关闭通知队列等后台任务
	moduleCtx.Shutdown()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	l.Info("server exited")
}
