package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"KbjuCoachService/internal/calc"
	"KbjuCoachService/internal/models"
	"KbjuCoachService/internal/validation"
	"KbjuCoachService/pkg/apperrors"
)

// UserRepositoryInterface описывает интерфейс для работы с пользователями
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByTelegramID(telegramID int64) (*models.User, error)
	Update(user *models.User) error
}

// RecordRepositoryInterface описывает интерфейс для работы с замерами
type RecordRepositoryInterface interface {
	Upsert(record *models.Record) error
	GetLatest(userID uint) (*models.Record, error)
	GetAllAscending(userID uint) ([]models.Record, error)
	UpdateGoal(userID uint, now time.Time, goal string, kbju models.KBJU) (*models.Record, error)
}

// FoodRepositoryInterface описывает интерфейс для работы с предпочтениями
type FoodRepositoryInterface interface {
	Add(userID uint, kind string, items []string) error
	GetAll(userID uint) ([]models.FoodPreference, error)
}

// SummaryCacheInterface описывает интерфейс кэша сводки
type SummaryCacheInterface interface {
	SetSummary(ctx context.Context, telegramID int64, summary *models.SummaryResponse) error
	GetSummary(ctx context.Context, telegramID int64) (*models.SummaryResponse, error)
	DeleteSummary(ctx context.Context, telegramID int64) error
}

// InviteScheduler планирует воронку приглашения после регистрации
type InviteScheduler interface {
	ScheduleInvite(telegramID int64, firstName string)
}

// ProfileService реализует сценарии работы с профилем:
// финализацию диалогов, сводку, смену цели и пищевые предпочтения
type ProfileService struct {
	userRepo   UserRepositoryInterface
	recordRepo RecordRepositoryInterface
	foodRepo   FoodRepositoryInterface
	cache      SummaryCacheInterface
	funnel     InviteScheduler
	logger     *zap.Logger
	now        func() time.Time
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(
	userRepo UserRepositoryInterface,
	recordRepo RecordRepositoryInterface,
	foodRepo FoodRepositoryInterface,
	cache SummaryCacheInterface,
	funnel InviteScheduler,
	logger *zap.Logger,
) *ProfileService {
	return &ProfileService{
		userRepo:   userRepo,
		recordRepo: recordRepo,
		foodRepo:   foodRepo,
		cache:      cache,
		funnel:     funnel,
		logger:     logger,
		now:        time.Now,
	}
}

// GetUser получает пользователя по Telegram ID
func (s *ProfileService) GetUser(ctx context.Context, telegramID int64) (*models.User, error) {
	return s.userRepo.GetByTelegramID(telegramID)
}

// FinalizeRegistration сохраняет профиль и первый замер по черновику диалога.
// Повтор шага после сбоя сохранения замера не создает профиль заново,
// а продолжает с уже созданного, поэтому шаг можно безопасно повторять.
func (s *ProfileService) FinalizeRegistration(ctx context.Context, session *models.DialogSession) (*models.SummaryResponse, error) {
	user := &models.User{
		TelegramID: session.UserID,
		LastName:   session.LastName,
		FirstName:  session.FirstName,
		BirthDate:  session.BirthDate,
		HeightCm:   session.HeightCm,
		Sex:        session.Sex,
	}

	if err := s.userRepo.Create(user); err != nil {
		if !errors.Is(err, apperrors.ErrAlreadyRegistered) {
			s.logger.Error("Failed to create user",
				zap.Error(err),
				zap.Int64("telegram_id", session.UserID))
			return nil, err
		}

		existing, getErr := s.userRepo.GetByTelegramID(session.UserID)
		if getErr != nil {
			s.logger.Error("Failed to get user for finalize retry",
				zap.Error(getErr),
				zap.Int64("telegram_id", session.UserID))
			return nil, getErr
		}
		user = existing
		s.logger.Info("Finalize retried for existing user",
			zap.Uint("user_id", user.ID),
			zap.Int64("telegram_id", user.TelegramID))
	}

	record, err := s.buildRecord(user, session, session.Goal)
	if err != nil {
		return nil, err
	}
	if err := s.recordRepo.Upsert(record); err != nil {
		s.logger.Error("Failed to save first record",
			zap.Error(err),
			zap.Int64("telegram_id", session.UserID))
		return nil, err
	}

	summary := s.buildSummary(user, record)
	if err := s.cache.SetSummary(ctx, user.TelegramID, summary); err != nil {
		s.logger.Warn("Failed to cache summary",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID))
	}

	s.funnel.ScheduleInvite(user.TelegramID, user.FirstName)

	s.logger.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("goal", record.Goal))
	return summary, nil
}

// FinalizeUpdate сохраняет новый замер по черновику диалога обновления.
// Вид спорта и цель переносятся из последнего замера.
func (s *ProfileService) FinalizeUpdate(ctx context.Context, session *models.DialogSession) (*models.SummaryResponse, error) {
	user, err := s.userRepo.GetByTelegramID(session.UserID)
	if err != nil {
		s.logger.Error("Failed to get user for update",
			zap.Error(err),
			zap.Int64("telegram_id", session.UserID))
		return nil, err
	}

	latest, err := s.recordRepo.GetLatest(user.ID)
	if err != nil {
		s.logger.Error("Failed to get latest record",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	session.SportType = latest.SportType
	session.SportFreq = latest.SportFreq

	record, err := s.buildRecord(user, session, latest.Goal)
	if err != nil {
		return nil, err
	}
	if err := s.recordRepo.Upsert(record); err != nil {
		s.logger.Error("Failed to save record",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	summary := s.buildSummary(user, record)
	if err := s.cache.DeleteSummary(ctx, user.TelegramID); err != nil {
		s.logger.Warn("Failed to invalidate summary cache",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID))
	}
	if err := s.cache.SetSummary(ctx, user.TelegramID, summary); err != nil {
		s.logger.Warn("Failed to cache summary",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID))
	}

	s.logger.Info("Record updated",
		zap.Uint("user_id", user.ID),
		zap.Float64("weight_kg", record.WeightKg))
	return summary, nil
}

// FinalizeEdit перезаписывает анкету пользователя по черновику
// повторного заполнения и сохраняет замер за текущий день
func (s *ProfileService) FinalizeEdit(ctx context.Context, session *models.DialogSession) (*models.SummaryResponse, error) {
	user, err := s.userRepo.GetByTelegramID(session.UserID)
	if err != nil {
		s.logger.Error("Failed to get user for profile edit",
			zap.Error(err),
			zap.Int64("telegram_id", session.UserID))
		return nil, err
	}

	user.LastName = session.LastName
	user.FirstName = session.FirstName
	user.BirthDate = session.BirthDate
	user.HeightCm = session.HeightCm
	user.Sex = session.Sex
	if err := s.userRepo.Update(user); err != nil {
		s.logger.Error("Failed to update user profile",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	record, err := s.buildRecord(user, session, session.Goal)
	if err != nil {
		return nil, err
	}
	if err := s.recordRepo.Upsert(record); err != nil {
		s.logger.Error("Failed to save record",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	summary := s.buildSummary(user, record)
	if err := s.cache.DeleteSummary(ctx, user.TelegramID); err != nil {
		s.logger.Warn("Failed to invalidate summary cache",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID))
	}
	if err := s.cache.SetSummary(ctx, user.TelegramID, summary); err != nil {
		s.logger.Warn("Failed to cache summary",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID))
	}

	s.logger.Info("Profile edited",
		zap.Uint("user_id", user.ID),
		zap.Int64("telegram_id", user.TelegramID),
		zap.String("goal", record.Goal))
	return summary, nil
}

// GetSummary возвращает сводку «мои данные», используя кэш
func (s *ProfileService) GetSummary(ctx context.Context, telegramID int64) (*models.SummaryResponse, error) {
	summary, err := s.cache.GetSummary(ctx, telegramID)
	if err == nil {
		s.logger.Debug("Summary retrieved from cache", zap.Int64("telegram_id", telegramID))
		return summary, nil
	}

	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		s.logger.Error("Failed to get user for summary",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
		return nil, err
	}

	latest, err := s.recordRepo.GetLatest(user.ID)
	if err != nil {
		s.logger.Error("Failed to get latest record for summary",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	summary = s.buildSummary(user, latest)
	if err := s.cache.SetSummary(ctx, telegramID, summary); err != nil {
		s.logger.Warn("Failed to cache summary",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
	}

	return summary, nil
}

// UpdateGoal меняет цель пользователя: норма пересчитывается
// по последнему замеру, результат сохраняется в замере за текущий день
func (s *ProfileService) UpdateGoal(ctx context.Context, telegramID int64, goal string) (*models.SummaryResponse, error) {
	if _, err := validation.ValidateGoal(goal, []string{
		models.GoalFatLoss,
		models.GoalRecomposition,
		models.GoalMassGain,
	}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		s.logger.Error("Failed to get user for goal update",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
		return nil, err
	}

	latest, err := s.recordRepo.GetLatest(user.ID)
	if err != nil {
		s.logger.Error("Failed to get latest record for goal update",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	age := validation.AgeYears(user.BirthDate, s.now())
	kbju := calc.DailyKBJU(user.Sex, latest.WeightKg, user.HeightCm, age,
		latest.Steps, latest.SportType, goal)

	record, err := s.recordRepo.UpdateGoal(user.ID, s.now(), goal, kbju)
	if err != nil {
		s.logger.Error("Failed to update goal",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	summary := s.buildSummary(user, record)
	if err := s.cache.DeleteSummary(ctx, telegramID); err != nil {
		s.logger.Warn("Failed to invalidate summary cache",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
	}
	if err := s.cache.SetSummary(ctx, telegramID, summary); err != nil {
		s.logger.Warn("Failed to cache summary",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
	}

	s.logger.Info("Goal updated",
		zap.Uint("user_id", user.ID),
		zap.String("goal", goal),
		zap.Int("calories", kbju.Calories))
	return summary, nil
}

// AddFoodPreferences добавляет продукты в список предпочтений
// и возвращает оба списка
func (s *ProfileService) AddFoodPreferences(ctx context.Context, telegramID int64, kind string, items []string) (*models.FoodPreferencesResponse, error) {
	if _, err := validation.ValidateFoodKind(kind, []string{
		models.FoodKindLikes,
		models.FoodKindDislikes,
	}); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		s.logger.Error("Failed to get user for food preferences",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
		return nil, err
	}

	if err := s.foodRepo.Add(user.ID, kind, items); err != nil {
		s.logger.Error("Failed to add food preferences",
			zap.Error(err),
			zap.Uint("user_id", user.ID))
		return nil, err
	}

	s.logger.Info("Food preferences added",
		zap.Uint("user_id", user.ID),
		zap.String("kind", kind),
		zap.Int("items", len(items)))
	return s.foodPreferences(user.ID)
}

// GetFoodPreferences возвращает сохраненные списки предпочтений
func (s *ProfileService) GetFoodPreferences(ctx context.Context, telegramID int64) (*models.FoodPreferencesResponse, error) {
	user, err := s.userRepo.GetByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	return s.foodPreferences(user.ID)
}

func (s *ProfileService) foodPreferences(userID uint) (*models.FoodPreferencesResponse, error) {
	preferences, err := s.foodRepo.GetAll(userID)
	if err != nil {
		s.logger.Error("Failed to get food preferences",
			zap.Error(err),
			zap.Uint("user_id", userID))
		return nil, err
	}

	resp := &models.FoodPreferencesResponse{
		Likes:    []string{},
		Dislikes: []string{},
	}
	for _, p := range preferences {
		if p.Kind == models.FoodKindLikes {
			resp.Likes = append(resp.Likes, p.Item)
		} else {
			resp.Dislikes = append(resp.Dislikes, p.Item)
		}
	}
	return resp, nil
}

// buildRecord собирает замер из черновика диалога и считает
// процент жира с дневной нормой
func (s *ProfileService) buildRecord(user *models.User, session *models.DialogSession, goal string) (*models.Record, error) {
	bodyFat, err := calc.BodyFat(user.Sex, user.HeightCm, session.WaistCm, session.NeckCm, session.HipCm)
	if err != nil {
		s.logger.Error("Body fat calculation failed",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID))
		return nil, err
	}

	age := validation.AgeYears(user.BirthDate, s.now())
	kbju := calc.DailyKBJU(user.Sex, session.WeightKg, user.HeightCm, age,
		session.Steps, session.SportType, goal)

	return &models.Record{
		UserID:     user.ID,
		Date:       s.now(),
		WeightKg:   session.WeightKg,
		Steps:      session.Steps,
		SportType:  session.SportType,
		SportFreq:  session.SportFreq,
		WaistCm:    session.WaistCm,
		NeckCm:     session.NeckCm,
		HipCm:      session.HipCm,
		BodyFatPct: bodyFat,
		Goal:       goal,
		Calories:   kbju.Calories,
		ProteinG:   kbju.ProteinG,
		FatG:       kbju.FatG,
		CarbsG:     kbju.CarbsG,
	}, nil
}

// buildSummary собирает сводку «мои данные» из профиля и замера
func (s *ProfileService) buildSummary(user *models.User, record *models.Record) *models.SummaryResponse {
	return &models.SummaryResponse{
		TelegramID: user.TelegramID,
		LastName:   user.LastName,
		FirstName:  user.FirstName,
		BirthDate:  user.BirthDate.Format("02.01.2006"),
		AgeYears:   validation.AgeYears(user.BirthDate, s.now()),
		HeightCm:   user.HeightCm,
		Sex:        user.Sex,
		WeightKg:   record.WeightKg,
		WaistCm:    record.WaistCm,
		NeckCm:     record.NeckCm,
		HipCm:      record.HipCm,
		BodyFatPct: record.BodyFatPct,
		Goal:       record.Goal,
		KBJU: models.KBJU{
			Calories: record.Calories,
			ProteinG: record.ProteinG,
			FatG:     record.FatG,
			CarbsG:   record.CarbsG,
		},
	}
}
