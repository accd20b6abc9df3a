package registry

import (
	"context"
	"fmt"
	"sort"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ModuleContext 模块初始化所需的上下文
type ModuleContext struct {
	Ctx     context.Context // 后台任务的生命周期
	DB      *gorm.DB
	Redis   *redis.Client
	Router  *gin.Engine
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.MetricsCollector

	closers []func()
}

// OnShutdown 注册关闭时执行的清理函数，按注册的逆序执行
func (c *ModuleContext) OnShutdown(fn func()) {
	c.closers = append(c.closers, fn)
}

// Shutdown 执行所有清理函数
func (c *ModuleContext) Shutdown() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Module 模块接口
type Module interface {
	// Name 返回模块名称
	Name() string

	// Init 初始化模块（依赖注入、路由注册等）
	Init(ctx *ModuleContext) error

	// Priority 返回初始化优先级（数字越小越先初始化）
	Priority() int
}

// moduleRegistry 全局模块注册表
var moduleRegistry = make(map[string]Module)

// Register 注册模块
func Register(module Module) {
	moduleRegistry[module.Name()] = module
}

// sorted 按优先级排序，同优先级按名称
func sorted(registry map[string]Module) []Module {
	modules := make([]Module, 0, len(registry))
	for _, m := range registry {
		modules = append(modules, m)
	}
	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Priority() != modules[j].Priority() {
			return modules[i].Priority() < modules[j].Priority()
		}
		return modules[i].Name() < modules[j].Name()
	})
	return modules
}

// InitModules 按优先级初始化所有模块
func InitModules(ctx *ModuleContext) error {
	for _, module := range sorted(moduleRegistry) {
		if err := module.Init(ctx); err != nil {
			return fmt.Errorf("init module %s: %w", module.Name(), err)
		}
		if ctx.Logger != nil {
			ctx.Logger.Info("module initialized", zap.String("module", module.Name()), zap.Int("priority", module.Priority()))
		}
	}
	return nil
}
