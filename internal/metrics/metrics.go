package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine metrics.
var (
	TranscriptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangulize_transcriptions_total",
		Help: "Transcriptions by language and result",
	}, []string{"lang", "result"})

	TranscriptionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hangulize_transcription_duration_seconds",
		Help:    "Time spent running the notation pipeline",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"lang"})

	PatternCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangulize_pattern_cache_lookups_total",
		Help: "Compiled pattern cache lookups by result",
	}, []string{"result"})
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangulize_http_requests_total",
		Help: "Total HTTP requests by route, method, and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hangulize_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hangulize_rate_limit_hits_total",
		Help: "Total rate limit rejections",
	})

	HistoryWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangulize_history_writes_total",
		Help: "Transcription history writes by result",
	}, []string{"result"})
)

// Bot metrics.
var (
	BotCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hangulize_bot_commands_total",
		Help: "Discord commands handled by command and result",
	}, []string{"command", "result"})
)

// Worker metrics.
var (
	RetentionCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hangulize_worker_retention_duration_seconds",
		Help:    "Duration of each retention sweep",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})

	RetentionDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hangulize_worker_retention_deleted_total",
		Help: "Stored transcriptions removed by the retention sweep",
	})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hangulize_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hangulize_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hangulize_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hangulize_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
