package database

import (
	"database/sql"
	"fmt"
	"time"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// InitDatabase 初始化数据库连接
func InitDatabase() (*gorm.DB, error) {
	cfg := config.GlobalConfig.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)

	logMode := gormlogger.Warn
	if config.GlobalConfig.App.Debug {
		logMode = gormlogger.Info
	}

	// 配置 GORM
	gormConfig := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(logMode),
		PrepareStmt:                              true, // 预编译 SQL 缓存
		TranslateError:                           true, // 唯一键冲突统一为 gorm.ErrDuplicatedKey
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// 获取底层 SQL DB 对象以配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// 连接池配置
	configureConnectionPool(sqlDB)

	// 表结构由 cmd/migrate 管理
	return db, nil
}

// configureConnectionPool 配置数据库连接池
func configureConnectionPool(sqlDB *sql.DB) {
	// 抽奖事务很短，连接数不必过大
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(time.Minute * 30)

	logger.L().Info("Database connection pool configured", zap.Int("max_open", 50), zap.Int("max_idle", 10))
}
