package database

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
)

// RegisterPoolMetrics 导出连接池状态（go_sql_* 指标），抽奖高峰时观察等待数
func RegisterPoolMetrics(db *gorm.DB, reg prometheus.Registerer, dbName string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return reg.Register(collectors.NewDBStatsCollector(sqlDB, dbName))
}
