package service

import (
	"context"

	"go.uber.org/zap"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/internal/progress"
)

// ProgressService строит отчет о прогрессе по истории замеров
type ProgressService struct {
	userRepo   UserRepositoryInterface
	recordRepo RecordRepositoryInterface
	logger     *zap.Logger
}

// NewProgressService создает новый экземпляр ProgressService
func NewProgressService(userRepo UserRepositoryInterface, recordRepo RecordRepositoryInterface, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		userRepo:   userRepo,
		recordRepo: recordRepo,
		logger:     logger,
	}
}

// GetProgress возвращает отчет о прогрессе за весь период наблюдений.
// Оценка строится относительно цели из последнего замера.
func (s *ProgressService) GetProgress(ctx context.Context, telegramID int64) (*models.ProgressResponse, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		s.logger.Error("Failed to get user for progress",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
		return nil, err
	}

	records, err := s.recordRepo.GetAllAscending(user.ID)
	if err != nil {
		s.logger.Error("Failed to get records for progress",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	goal := models.GoalRecomposition
	if len(records) > 0 {
		goal = records[len(records)-1].Goal
	}

	report, err := progress.Analyze(records, goal)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Progress report built",
		zap.Uint("user_id", user.ID),
		zap.Int("records", len(records)),
		zap.Float64("weight_delta", report.WeightDelta))
	return report, nil
}
