package main

import (
	"context"
	"flag"
	"log"
	"time"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/pkg/database"
	"voucher_wheel/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "delete existing mall data before seeding")
	flag.Parse()

	config.LoadConfig()
	cfg := &config.GlobalConfig
	if err := logger.Init(cfg.App.Env, cfg.App.Debug); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	l := logger.L().Named("seed")

	data, err := loadSeedData()
	if err != nil {
		l.Fatal("invalid seed data", zap.Error(err))
	}

	db, err := database.InitDatabase()
	if err != nil {
		l.Fatal("database init failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s := newSeeder(db, data, cfg.Game.Location(), l)
	if *reset {
		if err := s.reset(ctx); err != nil {
			l.Fatal("reset failed", zap.Error(err))
		}
	}
	summary, err := s.run(ctx)
	if err != nil {
		l.Fatal("seeding failed", zap.Error(err))
	}
	l.Info("seeding completed",
		zap.Int("shops", summary.Shops),
		zap.Int("vouchers", summary.Vouchers),
		zap.Int("parkings", summary.Parkings),
		zap.String("pool_day", summary.PoolDay))
}
