package config

import (
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	App      AppConfig      `mapstructure:"app"`
	Game     GameConfig     `mapstructure:"game"`
	OSS      OSSConfig      `mapstructure:"oss"`
	Push     PushConfig     `mapstructure:"push"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RateLimit      float64  `mapstructure:"rate_limit"` // 单 IP 每秒请求数
	RateBurst      int      `mapstructure:"rate_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Port     string `mapstructure:"port"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Expire int64  `mapstructure:"expire"` // 小时
}

type AppConfig struct {
	Env   string `mapstructure:"env"`
	Debug bool   `mapstructure:"debug"`
}

// GameConfig 每日抽奖配置
type GameConfig struct {
	WinProbability    float64       `mapstructure:"win_probability"`
	DailyPrizes       int           `mapstructure:"daily_prizes"`
	MaxAttempts       int           `mapstructure:"max_attempts"` // 事务冲突最大重试次数
	RetryBackoff      time.Duration `mapstructure:"retry_backoff"`
	TxTimeout         time.Duration `mapstructure:"tx_timeout"`
	Timezone          string        `mapstructure:"timezone"`
	ClaimCandidates   int           `mapstructure:"claim_candidates"`
	PlayRatePerMinute int           `mapstructure:"play_rate_per_minute"`
}

// Location 解析抽奖日所在时区，无效时回退到 UTC
func (g GameConfig) Location() *time.Location {
	if g.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
}

type PushConfig struct {
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	AppKey          int64  `mapstructure:"app_key"`
	RegionID        string `mapstructure:"region_id"` // e.g., "cn-hangzhou"
}

var GlobalConfig Config

// DefaultGameConfig 默认抽奖参数
func DefaultGameConfig() GameConfig {
	return GameConfig{
		WinProbability:    0.2,
		DailyPrizes:       10,
		MaxAttempts:       3,
		RetryBackoff:      50 * time.Millisecond,
		TxTimeout:         5 * time.Second,
		Timezone:          "Europe/Zurich",
		ClaimCandidates:   3,
		PlayRatePerMinute: 10,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	// JWT 配置验证
	if c.JWT.Secret == "" || c.JWT.Secret == "your_super_secret_key" {
		return errors.New("please set a secure JWT secret in production")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("JWT secret should be at least 32 characters")
	}

	// 数据库配置验证
	if c.Database.Host == "" || c.Database.User == "" || c.Database.DBName == "" {
		return errors.New("database configuration is incomplete")
	}

	// Redis 配置验证
	if c.Redis.Addr == "" {
		return errors.New("redis address is required")
	}

	return c.Game.Validate()
}

// Validate 验证抽奖配置
func (g GameConfig) Validate() error {
	if g.WinProbability < 0 || g.WinProbability > 1 {
		return errors.New("game.win_probability must be within [0, 1]")
	}
	if g.DailyPrizes < 0 {
		return errors.New("game.daily_prizes must not be negative")
	}
	if g.MaxAttempts < 1 {
		return errors.New("game.max_attempts must be at least 1")
	}
	if g.TxTimeout <= 0 {
		return errors.New("game.tx_timeout must be positive")
	}
	if g.ClaimCandidates < 1 {
		return errors.New("game.claim_candidates must be at least 1")
	}
	if _, err := time.LoadLocation(g.Timezone); err != nil {
		return errors.New("game.timezone is invalid: " + err.Error())
	}
	return nil
}

// LoadConfig 加载配置
func LoadConfig() {
	// .env 可选，不存在时忽略
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	// 获取环境变量，默认为dev
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}

	// 根据环境选择配置文件
	configName := "config"
	if env != "dev" {
		configName = "config." + env
	}

	viper.SetConfigName(configName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// 设置默认值
	game := DefaultGameConfig()
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	viper.SetDefault("server.rate_limit", 20)
	viper.SetDefault("server.rate_burst", 40)
	viper.SetDefault("jwt.expire", 24)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("app.env", env)
	viper.SetDefault("app.debug", true)
	viper.SetDefault("game.win_probability", game.WinProbability)
	viper.SetDefault("game.daily_prizes", game.DailyPrizes)
	viper.SetDefault("game.max_attempts", game.MaxAttempts)
	viper.SetDefault("game.retry_backoff", game.RetryBackoff)
	viper.SetDefault("game.tx_timeout", game.TxTimeout)
	viper.SetDefault("game.timezone", game.Timezone)
	viper.SetDefault("game.claim_candidates", game.ClaimCandidates)
	viper.SetDefault("game.play_rate_per_minute", game.PlayRatePerMinute)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Config file not found, using defaults or env vars: %v", err)
	}

	// 绑定环境变量
	viper.AutomaticEnv()

	if err := viper.Unmarshal(&GlobalConfig); err != nil {
		log.Fatalf("Unable to decode into struct: %v", err)
	}

	// 手动覆盖，以防 viper 无法正确解析复杂结构或环境变量
	if host := os.Getenv("DB_HOST"); host != "" {
		GlobalConfig.Database.Host = host
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		GlobalConfig.Redis.Addr = redisAddr
	}
	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		GlobalConfig.JWT.Secret = jwtSecret
	}

	// 验证配置
	if err := GlobalConfig.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Configuration loaded and validated successfully. Environment: %s", GlobalConfig.App.Env)
}
