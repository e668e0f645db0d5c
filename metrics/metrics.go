package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP server metrics.
var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "explorer_http_requests_total",
		Help: "Total HTTP requests by path, method, and status code.",
	}, []string{"path", "method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "explorer_http_request_duration_seconds",
		Help:    "HTTP request duration by path and method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
)

// Pipeline stage metrics. Stage is one of tool, fetch, analyze; outcome is
// ok, fallback, or error.
var PipelineStageTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "explorer_pipeline_stage_total",
	Help: "Pipeline stage outcomes per URL processing run.",
}, []string{"stage", "outcome"})

// ObserveStage records a single pipeline stage outcome.
func ObserveStage(stage, outcome string) {
	PipelineStageTotal.WithLabelValues(stage, outcome).Inc()
}

// DatabaseMetrics exposes connection pool statistics for a service.
type DatabaseMetrics struct {
	openConns   prometheus.Gauge
	idleConns   prometheus.Gauge
	inUseConns  prometheus.Gauge
	waitCount   prometheus.Gauge
	maxOpen     prometheus.Gauge
}

// NewDatabaseMetrics registers database pool gauges labeled by service.
func NewDatabaseMetrics(service string) *DatabaseMetrics {
	labels := prometheus.Labels{"service": service}
	return &DatabaseMetrics{
		openConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "explorer_db_open_connections", Help: "Open database connections.", ConstLabels: labels,
		}),
		idleConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "explorer_db_idle_connections", Help: "Idle database connections.", ConstLabels: labels,
		}),
		inUseConns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "explorer_db_in_use_connections", Help: "In-use database connections.", ConstLabels: labels,
		}),
		waitCount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "explorer_db_wait_count", Help: "Cumulative connections waited for.", ConstLabels: labels,
		}),
		maxOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "explorer_db_max_open_connections", Help: "Maximum open database connections.", ConstLabels: labels,
		}),
	}
}

// UpdateDBStats refreshes the pool gauges from sql.DBStats.
func (m *DatabaseMetrics) UpdateDBStats(db *sql.DB) {
	stats := db.Stats()
	m.openConns.Set(float64(stats.OpenConnections))
	m.idleConns.Set(float64(stats.Idle))
	m.inUseConns.Set(float64(stats.InUse))
	m.waitCount.Set(float64(stats.WaitCount))
	m.maxOpen.Set(float64(stats.MaxOpenConnections))
}
