package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	statusUp       = "up"
	statusDown     = "down"
	statusDegraded = "degraded"
	statusUnknown  = "unknown"
)

// HealthCheckerInterface описывает проверки состояния хранилищ сервиса
type HealthCheckerInterface interface {
	// IsDatabaseHealthy проверяет доступность PostgreSQL
	IsDatabaseHealthy(ctx context.Context) bool

	// IsRedisHealthy проверяет доступность Redis
	IsRedisHealthy(ctx context.Context) bool
}

// HealthCheck публикует состояние сервиса для оркестратора:
// liveness, readiness и сводный отчет по зависимостям.
// Без PostgreSQL сервис не готов к работе, потеря Redis
// считается деградацией.
type HealthCheck struct {
	checker HealthCheckerInterface
	logger  *zap.Logger
	version string
	server  *http.Server

	mu       sync.RWMutex
	postgres string
	redis    string

	stop chan struct{}
}

// HealthResponse сводный отчет о состоянии сервиса и его зависимостей
type HealthResponse struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
}

// NewHealthCheck создает сервис проверок состояния
func NewHealthCheck(checker HealthCheckerInterface, logger *zap.Logger, version string) *HealthCheck {
	return &HealthCheck{
		checker:  checker,
		logger:   logger,
		version:  version,
		postgres: statusUnknown,
		redis:    statusUnknown,
		stop:     make(chan struct{}),
	}
}

// StartServer поднимает HTTP сервер проверок и фоновый опрос зависимостей
func (h *HealthCheck) StartServer(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", h.handleLive)
	mux.HandleFunc("/health/ready", h.handleReady)
	mux.HandleFunc("/health", h.handleReport)

	h.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		h.logger.Info("Запуск сервера проверок состояния", zap.Int("port", port))
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("Сервер проверок состояния завершился с ошибкой", zap.Error(err))
		}
	}()

	go h.poll(10 * time.Second)
}

// Stop останавливает фоновый опрос и HTTP сервер проверок
func (h *HealthCheck) Stop(ctx context.Context) error {
	close(h.stop)
	return h.server.Shutdown(ctx)
}

// handleLive отвечает на liveness: процесс жив, пока отвечает HTTP
func (h *HealthCheck) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": statusUp})
}

// handleReady отвечает на readiness: диалоги и анкеты живут
// в PostgreSQL, без него сервис трафик не принимает
func (h *HealthCheck) handleReady(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	pg := h.postgres
	h.mu.RUnlock()

	if pg != statusUp {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  statusDown,
			"message": "PostgreSQL is not available",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": statusUp})
}

// handleReport отдает полный отчет о состоянии зависимостей
func (h *HealthCheck) handleReport(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	report := HealthResponse{
		Status: statusUp,
		Services: map[string]string{
			"service":  statusUp,
			"postgres": h.postgres,
			"redis":    h.redis,
		},
		Timestamp: time.Now(),
		Version:   h.version,
	}
	h.mu.RUnlock()

	code := http.StatusOK
	if report.Services["postgres"] != statusUp {
		report.Status = statusDown
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, report)
}

// poll периодически опрашивает зависимости до остановки сервиса
func (h *HealthCheck) poll(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.refresh()
		case <-h.stop:
			return
		}
	}
}

// refresh выполняет один цикл опроса зависимостей и обновляет статусы
func (h *HealthCheck) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pg := statusUp
	if !h.checker.IsDatabaseHealthy(ctx) {
		pg = statusDown
		h.logger.Warn("PostgreSQL не отвечает на проверку состояния")
	}

	rd := statusUp
	if !h.checker.IsRedisHealthy(ctx) {
		rd = statusDegraded
		h.logger.Warn("Redis не отвечает на проверку состояния")
	}

	h.mu.Lock()
	h.postgres = pg
	h.redis = rd
	h.mu.Unlock()
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
