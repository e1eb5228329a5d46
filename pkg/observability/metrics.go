package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 运行时指标
type Metrics struct {
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec
	BridgeRequests    *prometheus.CounterVec
	ActiveRuns        prometheus.Gauge
}

// NewMetrics 创建指标并注册到 reg，reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formchassis",
			Name:      "executions_total",
			Help:      "Number of finished function runs by status.",
		}, []string{"function", "status"}),
		ExecutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formchassis",
			Name:      "execution_duration_seconds",
			Help:      "Duration of function runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		BridgeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formchassis",
			Name:      "bridge_requests_total",
			Help:      "Number of worker to UI requests by operation.",
		}, []string{"op"}),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "formchassis",
			Name:      "active_runs",
			Help:      "Number of function runs in progress.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.ExecutionsTotal, m.ExecutionDuration, m.BridgeRequests, m.ActiveRuns)
	}
	return m
}

var (
	metricsMu      sync.RWMutex
	defaultMetrics *Metrics
	registry       *prometheus.Registry
)

// InitMetrics 使用新的 Registry 重建全局指标，返回该 Registry 供 /metrics 导出
func InitMetrics() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	metricsMu.Lock()
	defer metricsMu.Unlock()
	defaultMetrics, registry = m, reg
	return reg
}

// DefaultMetrics 返回全局指标，未初始化时自动初始化
func DefaultMetrics() *Metrics {
	metricsMu.RLock()
	m := defaultMetrics
	metricsMu.RUnlock()
	if m != nil {
		return m
	}
	InitMetrics()
	return DefaultMetrics()
}

// MetricsRegistry 返回全局指标所在的 Registry
func MetricsRegistry() *prometheus.Registry {
	DefaultMetrics()
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return registry
}

// RecordExecution 记录一次运行结束
func RecordExecution(function, status string, seconds float64) {
	m := DefaultMetrics()
	m.ExecutionsTotal.WithLabelValues(function, status).Inc()
	m.ExecutionDuration.WithLabelValues(function).Observe(seconds)
}

// RecordBridgeRequest 记录一次桥接请求
func RecordBridgeRequest(op string) {
	DefaultMetrics().BridgeRequests.WithLabelValues(op).Inc()
}

// RunStarted 运行中计数加一
func RunStarted() { DefaultMetrics().ActiveRuns.Inc() }

// RunFinished 运行中计数减一
func RunFinished() { DefaultMetrics().ActiveRuns.Dec() }
