package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例，由 Init 初始化
var Log *zap.Logger

// Init 根据运行环境初始化 zap
func Init(env string, debug bool) error {
	var cfg zap.Config
	if env == "prod" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return err
	}
	Log = l.With(zap.String("service", "voucher-wheel"))
	return nil
}

// L 返回全局日志，未初始化时返回 Nop，方便测试
func L() *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log
}

// Sync 刷新缓冲
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
