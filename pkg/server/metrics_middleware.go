package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// httpRequestDuration измеряет длительность HTTP запросов
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestsTotal подсчитывает общее количество HTTP запросов
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// dialogStepsTotal подсчитывает шаги диалога по результату
	dialogStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialog_steps_total",
			Help: "Total number of dialog steps processed",
		},
		[]string{"flow", "result"},
	)

	// dbOperationDuration измеряет длительность операций с базой данных
	dbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	// dbOperationsTotal подсчитывает общее количество операций с базой данных
	dbOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_operations_total",
			Help: "Total number of database operations",
		},
		[]string{"operation", "status"},
	)

	// cacheOperationDuration измеряет длительность операций с кэшем
	cacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "status"},
	)

	// cacheOperationsTotal подсчитывает общее количество операций с кэшем
	cacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"operation", "status"},
	)

	// circuitBreakerState отслеживает состояние circuit breaker
	circuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "State of circuit breaker (0: closed, 1: half-open, 2: open)",
		},
		[]string{"name"},
	)
)

// MetricsServer запускает HTTP сервер для Prometheus
func MetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// Недоступность метрик не должна останавливать основной сервис
		}
	}()

	return server
}

// MetricsMiddleware создает gin middleware для сбора метрик HTTP запросов
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}

		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// RecordDialogStep записывает метрику обработанного шага диалога
func RecordDialogStep(flow, result string) {
	dialogStepsTotal.WithLabelValues(flow, result).Inc()
}

// RecordDBOperation записывает метрики операции с базой данных
func RecordDBOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	dbOperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	dbOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCacheOperation записывает метрики операции с кэшем
func RecordCacheOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	cacheOperationDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	cacheOperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordCircuitBreakerStateChange записывает изменение состояния circuit breaker
func RecordCircuitBreakerStateChange(name string, state int) {
	circuitBreakerState.WithLabelValues(name).Set(float64(state))
}
