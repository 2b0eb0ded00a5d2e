package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/pkg/apperrors"
)

// DialogEngineInterface описывает движок диалога для HTTP-слоя
type DialogEngineInterface interface {
	SubmitStep(ctx context.Context, req *models.StepRequest) (*models.StepResponse, error)
}

// ProfileServiceInterface описывает сервис профилей для HTTP-слоя
type ProfileServiceInterface interface {
	GetSummary(ctx context.Context, telegramID int64) (*models.SummaryResponse, error)
	UpdateGoal(ctx context.Context, telegramID int64, goal string) (*models.SummaryResponse, error)
	AddFoodPreferences(ctx context.Context, telegramID int64, kind string, items []string) (*models.FoodPreferencesResponse, error)
	GetFoodPreferences(ctx context.Context, telegramID int64) (*models.FoodPreferencesResponse, error)
}

// ProgressServiceInterface описывает сервис прогресса для HTTP-слоя
type ProgressServiceInterface interface {
	GetProgress(ctx context.Context, telegramID int64) (*models.ProgressResponse, error)
}

// Handler обрабатывает HTTP-запросы внешнего контракта
type Handler struct {
	engine   DialogEngineInterface
	profiles ProfileServiceInterface
	progress ProgressServiceInterface
	logger   *zap.Logger
}

// NewHandler создает новый экземпляр Handler
func NewHandler(engine DialogEngineInterface, profiles ProfileServiceInterface, progress ProgressServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{
		engine:   engine,
		profiles: profiles,
		progress: progress,
		logger:   logger,
	}
}

// SubmitStep обрабатывает один шаг диалога
func (h *Handler) SubmitStep(c *gin.Context) {
	var req models.StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	resp, err := h.engine.SubmitStep(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetSummary возвращает сводку «мои данные»
func (h *Handler) GetSummary(c *gin.Context) {
	telegramID, ok := h.telegramID(c)
	if !ok {
		return
	}

	summary, err := h.profiles.GetSummary(c.Request.Context(), telegramID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetProgress возвращает отчет о прогрессе
func (h *Handler) GetProgress(c *gin.Context) {
	telegramID, ok := h.telegramID(c)
	if !ok {
		return
	}

	report, err := h.progress.GetProgress(c.Request.Context(), telegramID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateGoal меняет цель и возвращает пересчитанную сводку
func (h *Handler) UpdateGoal(c *gin.Context) {
	telegramID, ok := h.telegramID(c)
	if !ok {
		return
	}

	var req models.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	summary, err := h.profiles.UpdateGoal(c.Request.Context(), telegramID, req.Goal)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddFoodPreferences добавляет продукты в список предпочтений
func (h *Handler) AddFoodPreferences(c *gin.Context) {
	telegramID, ok := h.telegramID(c)
	if !ok {
		return
	}

	var req models.FoodPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса"})
		return
	}

	lists, err := h.profiles.AddFoodPreferences(c.Request.Context(), telegramID, req.Kind, req.Items)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lists)
}

// GetFoodPreferences возвращает сохраненные списки предпочтений
func (h *Handler) GetFoodPreferences(c *gin.Context) {
	telegramID, ok := h.telegramID(c)
	if !ok {
		return
	}

	lists, err := h.profiles.GetFoodPreferences(c.Request.Context(), telegramID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lists)
}

func (h *Handler) telegramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор пользователя"})
		return 0, false
	}
	return id, true
}

// respondError переводит доменные ошибки в HTTP-статусы
func (h *Handler) respondError(c *gin.Context, err error) {
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Reason})
		return
	}

	var ce *apperrors.CalculationError
	if errors.As(err, &ce) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ce.Reason})
		return
	}

	if apperrors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "пользователь не найден"})
		return
	}

	if errors.Is(err, apperrors.ErrAlreadyRegistered) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	h.logger.Error("Request failed",
		zap.Error(err),
		zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "внутренняя ошибка сервиса"})
}
