package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 抽奖结果标签
const (
	OutcomeWin       = "win"
	OutcomeLoss      = "loss"
	OutcomeRejected  = "rejected"
	OutcomeTransient = "transient"
	OutcomeError     = "error"
)

// MetricsCollector 指标收集器
type MetricsCollector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// 数据库指标
	dbErrorsTotal *prometheus.CounterVec

	// 抽奖指标
	gamePlaysTotal      *prometheus.CounterVec
	gamePlayRetries     prometheus.Counter
	gamePoolAnomalies   prometheus.Counter
	gamePlayDuration    prometheus.Histogram
	voucherRedemptions  prometheus.Counter
	notificationsFailed prometheus.Counter
}

// NewMetricsCollector 创建指标收集器，注册到指定 Registerer
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	factory := promauto.With(reg)
	return &MetricsCollector{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		dbErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "db_errors_total",
				Help: "Total number of database errors",
			},
			[]string{"operation", "error_type"},
		),

		gamePlaysTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "game_plays_total",
				Help: "Prize wheel plays by outcome",
			},
			[]string{"outcome"},
		),

		gamePlayRetries: factory.NewCounter(prometheus.CounterOpts{
			Name: "game_play_retries_total",
			Help: "Play transactions retried after a store conflict",
		}),

		gamePoolAnomalies: factory.NewCounter(prometheus.CounterOpts{
			Name: "game_pool_anomalies_total",
			Help: "Wins downgraded to a loss because no voucher was available",
		}),

		gamePlayDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "game_play_duration_seconds",
			Help:    "Play operation duration including retries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		voucherRedemptions: factory.NewCounter(prometheus.CounterOpts{
			Name: "voucher_redemptions_total",
			Help: "Vouchers marked as used",
		}),

		notificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "win_notifications_failed_total",
			Help: "Win notifications dropped after retries",
		}),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *MetricsCollector) RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordDBError 记录数据库错误
func (m *MetricsCollector) RecordDBError(operation, errorType string) {
	m.dbErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordPlay 记录一次抽奖结果
func (m *MetricsCollector) RecordPlay(outcome string, duration time.Duration) {
	m.gamePlaysTotal.WithLabelValues(outcome).Inc()
	m.gamePlayDuration.Observe(duration.Seconds())
}

// RecordPlayRetry 记录一次事务重试
func (m *MetricsCollector) RecordPlayRetry() {
	m.gamePlayRetries.Inc()
}

// RecordPoolAnomaly 记录奖池与券库存不一致
func (m *MetricsCollector) RecordPoolAnomaly() {
	m.gamePoolAnomalies.Inc()
}

// RecordRedemption 记录核销
func (m *MetricsCollector) RecordRedemption() {
	m.voucherRedemptions.Inc()
}

// RecordNotificationFailure 记录通知最终失败
func (m *MetricsCollector) RecordNotificationFailure() {
	m.notificationsFailed.Inc()
}

// StatusCategory 获取状态分类
func StatusCategory(status int) string {
	switch {
	case status >= 200 && status < 300:
		return "2xx"
	case status >= 300 && status < 400:
		return "3xx"
	case status >= 400 && status < 500:
		return "4xx"
	case status >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}

var (
	globalCollector *MetricsCollector
	once            sync.Once
)

// GetGlobalCollector 获取全局指标收集器（注册到默认 Registry）
func GetGlobalCollector() *MetricsCollector {
	once.Do(func() {
		globalCollector = NewMetricsCollector(prometheus.DefaultRegisterer)
	})
	return globalCollector
}
