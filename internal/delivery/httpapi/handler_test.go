package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/pkg/apperrors"
)

type mockEngine struct {
	resp *models.StepResponse
	err  error
	last *models.StepRequest
}

func (m *mockEngine) SubmitStep(_ context.Context, req *models.StepRequest) (*models.StepResponse, error) {
	m.last = req
	return m.resp, m.err
}

type mockProfileService struct {
	summary *models.SummaryResponse
	lists   *models.FoodPreferencesResponse
	err     error
}

func (m *mockProfileService) GetSummary(_ context.Context, _ int64) (*models.SummaryResponse, error) {
	return m.summary, m.err
}

func (m *mockProfileService) UpdateGoal(_ context.Context, _ int64, _ string) (*models.SummaryResponse, error) {
	return m.summary, m.err
}

func (m *mockProfileService) AddFoodPreferences(_ context.Context, _ int64, _ string, _ []string) (*models.FoodPreferencesResponse, error) {
	return m.lists, m.err
}

func (m *mockProfileService) GetFoodPreferences(_ context.Context, _ int64) (*models.FoodPreferencesResponse, error) {
	return m.lists, m.err
}

type mockProgressService struct {
	report *models.ProgressResponse
	err    error
}

func (m *mockProgressService) GetProgress(_ context.Context, _ int64) (*models.ProgressResponse, error) {
	return m.report, m.err
}

func setupRouter(engine *mockEngine, profiles *mockProfileService, progress *mockProgressService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(engine, profiles, progress, zap.NewNop())
	return NewRouter(handler, zap.NewNop())
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestSubmitStep тестирует передачу шага диалога движку
func TestSubmitStep(t *testing.T) {
	engine := &mockEngine{resp: &models.StepResponse{Prompt: "Введите рост"}}
	router := setupRouter(engine, &mockProfileService{}, &mockProgressService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/dialog/step", models.StepRequest{
		UserID: 100,
		ChatID: 200,
		Input:  "/start",
	})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.StepResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp.Prompt != "Введите рост" {
		t.Errorf("Unexpected prompt: %q", resp.Prompt)
	}
	if engine.last == nil || engine.last.UserID != 100 || engine.last.Input != "/start" {
		t.Errorf("Unexpected request passed to engine: %+v", engine.last)
	}
}

// TestSubmitStepBadBody тестирует отказ при некорректном теле запроса
func TestSubmitStepBadBody(t *testing.T) {
	router := setupRouter(&mockEngine{}, &mockProfileService{}, &mockProgressService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dialog/step", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

// TestGetSummary тестирует выдачу сводки
func TestGetSummary(t *testing.T) {
	profiles := &mockProfileService{summary: &models.SummaryResponse{
		TelegramID: 100,
		FirstName:  "Иван",
		KBJU:       models.KBJU{Calories: 2735, ProteinG: 160, FatG: 80, CarbsG: 344},
	}}
	router := setupRouter(&mockEngine{}, profiles, &mockProgressService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/100/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var summary models.SummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if summary.KBJU.Calories != 2735 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

// TestGetSummaryNotFound тестирует 404 для незарегистрированного пользователя
func TestGetSummaryNotFound(t *testing.T) {
	profiles := &mockProfileService{err: apperrors.ErrRecordNotFound}
	router := setupRouter(&mockEngine{}, profiles, &mockProgressService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/999/summary", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

// TestGetSummaryBadID тестирует отказ при нечисловом идентификаторе
func TestGetSummaryBadID(t *testing.T) {
	router := setupRouter(&mockEngine{}, &mockProfileService{}, &mockProgressService{})

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/abc/summary", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

// TestUpdateGoalValidation тестирует 400 при неизвестной цели
func TestUpdateGoalValidation(t *testing.T) {
	profiles := &mockProfileService{err: apperrors.NewValidationError("goal", "выберите цель из предложенных вариантов")}
	router := setupRouter(&mockEngine{}, profiles, &mockProgressService{})

	w := doJSON(t, router, http.MethodPut, "/api/v1/users/100/goal", models.UpdateGoalRequest{Goal: "get_big"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", w.Code)
	}
}

// TestGetProgressNotEnoughData тестирует 422 при недостатке замеров
func TestGetProgressNotEnoughData(t *testing.T) {
	progress := &mockProgressService{err: apperrors.NewCalculationError("для оценки прогресса нужно минимум два замера")}
	router := setupRouter(&mockEngine{}, &mockProfileService{}, progress)

	w := doJSON(t, router, http.MethodGet, "/api/v1/users/100/progress", nil)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", w.Code)
	}
}

// TestAddFoodPreferences тестирует сохранение предпочтений
func TestAddFoodPreferences(t *testing.T) {
	profiles := &mockProfileService{lists: &models.FoodPreferencesResponse{
		Likes:    []string{"гречка", "курица"},
		Dislikes: []string{},
	}}
	router := setupRouter(&mockEngine{}, profiles, &mockProgressService{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/users/100/food-preferences", models.FoodPreferencesRequest{
		Kind:  models.FoodKindLikes,
		Items: []string{"гречка", "курица"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var lists models.FoodPreferencesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &lists); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if len(lists.Likes) != 2 {
		t.Errorf("Unexpected lists: %+v", lists)
	}
}
