package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubChecker подменяет проверки состояния хранилищ
type stubChecker struct {
	pgHealthy    bool
	redisHealthy bool
}

func (s *stubChecker) IsDatabaseHealthy(ctx context.Context) bool {
	return s.pgHealthy
}

func (s *stubChecker) IsRedisHealthy(ctx context.Context) bool {
	return s.redisHealthy
}

func decodeStatusMap(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return body
}

// TestLivenessAlwaysUp тестирует, что liveness не зависит
// от состояния хранилищ
func TestLivenessAlwaysUp(t *testing.T) {
	health := NewHealthCheck(&stubChecker{}, zap.NewNop(), "1.0.0")
	health.refresh()

	w := httptest.NewRecorder()
	health.handleLive(w, httptest.NewRequest("GET", "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if body := decodeStatusMap(t, w); body["status"] != "up" {
		t.Errorf("Expected status 'up', got '%s'", body["status"])
	}
}

// TestReadinessRequiresPostgres тестирует готовность сервиса:
// без PostgreSQL трафик не принимается
func TestReadinessRequiresPostgres(t *testing.T) {
	checker := &stubChecker{pgHealthy: true, redisHealthy: true}
	health := NewHealthCheck(checker, zap.NewNop(), "1.0.0")
	health.refresh()

	w := httptest.NewRecorder()
	health.handleReady(w, httptest.NewRequest("GET", "/health/ready", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}
	if body := decodeStatusMap(t, w); body["status"] != "up" {
		t.Errorf("Expected status 'up', got '%s'", body["status"])
	}

	checker.pgHealthy = false
	health.refresh()

	w = httptest.NewRecorder()
	health.handleReady(w, httptest.NewRequest("GET", "/health/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status code %d, got %d", http.StatusServiceUnavailable, w.Code)
	}
	body := decodeStatusMap(t, w)
	if body["status"] != "down" {
		t.Errorf("Expected status 'down', got '%s'", body["status"])
	}
	if body["message"] != "PostgreSQL is not available" {
		t.Errorf("Expected message about PostgreSQL, got '%s'", body["message"])
	}
}

// TestReadinessBeforeFirstPoll тестирует, что до первого опроса
// зависимостей сервис считается не готовым
func TestReadinessBeforeFirstPoll(t *testing.T) {
	health := NewHealthCheck(&stubChecker{pgHealthy: true}, zap.NewNop(), "1.0.0")

	w := httptest.NewRecorder()
	health.handleReady(w, httptest.NewRequest("GET", "/health/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status code %d before first poll, got %d", http.StatusServiceUnavailable, w.Code)
	}
}

// TestReportRedisDegradation тестирует сводный отчет:
// потеря Redis не роняет сервис, но видна в статусах
func TestReportRedisDegradation(t *testing.T) {
	health := NewHealthCheck(&stubChecker{pgHealthy: true, redisHealthy: false}, zap.NewNop(), "1.0.0")
	health.refresh()

	w := httptest.NewRecorder()
	health.handleReport(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, w.Code)
	}

	var report HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if report.Status != "up" {
		t.Errorf("Expected status 'up', got '%s'", report.Status)
	}
	if report.Services["postgres"] != "up" {
		t.Errorf("Expected PostgreSQL status 'up', got '%s'", report.Services["postgres"])
	}
	if report.Services["redis"] != "degraded" {
		t.Errorf("Expected Redis status 'degraded', got '%s'", report.Services["redis"])
	}
	if report.Version != "1.0.0" {
		t.Errorf("Expected version '1.0.0', got '%s'", report.Version)
	}
}

// TestReportPostgresDown тестирует сводный отчет при недоступном PostgreSQL
func TestReportPostgresDown(t *testing.T) {
	health := NewHealthCheck(&stubChecker{pgHealthy: false, redisHealthy: true}, zap.NewNop(), "1.0.0")
	health.refresh()

	w := httptest.NewRecorder()
	health.handleReport(w, httptest.NewRequest("GET", "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status code %d, got %d", http.StatusServiceUnavailable, w.Code)
	}

	var report HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if report.Status != "down" {
		t.Errorf("Expected status 'down', got '%s'", report.Status)
	}
	if report.Services["postgres"] != "down" {
		t.Errorf("Expected PostgreSQL status 'down', got '%s'", report.Services["postgres"])
	}
}

// TestRefreshTracksRecovery тестирует обновление статусов
// после восстановления хранилищ
func TestRefreshTracksRecovery(t *testing.T) {
	checker := &stubChecker{pgHealthy: false, redisHealthy: false}
	health := NewHealthCheck(checker, zap.NewNop(), "1.0.0")

	health.refresh()

	health.mu.RLock()
	pg, rd := health.postgres, health.redis
	health.mu.RUnlock()

	if pg != "down" || rd != "degraded" {
		t.Errorf("Expected postgres 'down' and redis 'degraded', got '%s' and '%s'", pg, rd)
	}

	checker.pgHealthy = true
	checker.redisHealthy = true
	health.refresh()

	health.mu.RLock()
	pg, rd = health.postgres, health.redis
	health.mu.RUnlock()

	if pg != "up" || rd != "up" {
		t.Errorf("Expected both statuses 'up' after recovery, got '%s' and '%s'", pg, rd)
	}
}

// TestHealthServerLifecycle тестирует запуск и остановку сервера проверок
func TestHealthServerLifecycle(t *testing.T) {
	health := NewHealthCheck(&stubChecker{pgHealthy: true, redisHealthy: true}, zap.NewNop(), "1.0.0")

	health.StartServer(0)
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := health.Stop(ctx); err != nil {
		t.Errorf("Failed to stop health check server: %v", err)
	}
}
