package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"KbjuCoachService/internal/calc"
	"KbjuCoachService/internal/models"
	"KbjuCoachService/internal/validation"
	"KbjuCoachService/pkg/apperrors"
	"KbjuCoachService/pkg/server"
)

// SessionStore определяет контракт хранилища черновиков диалога
type SessionStore interface {
	SetSession(ctx context.Context, session *models.DialogSession) error
	GetSession(ctx context.Context, userID, chatID int64) (*models.DialogSession, error)
	DeleteSession(ctx context.Context, userID, chatID int64) error
}

// ProfileFinalizer определяет контракт сервиса профилей для движка:
// проверка регистрации и сохранение результата сценария
type ProfileFinalizer interface {
	GetUser(ctx context.Context, telegramID int64) (*models.User, error)
	FinalizeRegistration(ctx context.Context, session *models.DialogSession) (*models.SummaryResponse, error)
	FinalizeUpdate(ctx context.Context, session *models.DialogSession) (*models.SummaryResponse, error)
	FinalizeEdit(ctx context.Context, session *models.DialogSession) (*models.SummaryResponse, error)
}

// Engine продвигает пошаговые сценарии регистрации и обновления показателей.
// Все состояние между шагами живет в черновике сессии, движок без состояния.
type Engine struct {
	sessions SessionStore
	profiles ProfileFinalizer
	logger   *zap.Logger
	now      func() time.Time
}

// NewEngine создает новый движок диалога
func NewEngine(sessions SessionStore, profiles ProfileFinalizer, logger *zap.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		profiles: profiles,
		logger:   logger,
		now:      time.Now,
	}
}

// SubmitStep обрабатывает один шаг диалога: команду входа,
// отмену или ответ на текущий вопрос сценария
func (e *Engine) SubmitStep(ctx context.Context, req *models.StepRequest) (*models.StepResponse, error) {
	switch req.Input {
	case CommandStart:
		return e.startRegistration(ctx, req)
	case CommandUpdate:
		return e.startUpdate(ctx, req)
	case CommandEdit:
		return e.startEdit(ctx, req)
	case CommandCancel:
		return e.cancel(ctx, req)
	}

	session, err := e.sessions.GetSession(ctx, req.UserID, req.ChatID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &models.StepResponse{Prompt: MsgNoActiveDialog}, nil
		}
		return nil, err
	}

	return e.applyInput(ctx, session, req.Input)
}

// startRegistration начинает сценарий регистрации.
// Уже зарегистрированный пользователь получает короткий ответ без сессии.
func (e *Engine) startRegistration(ctx context.Context, req *models.StepRequest) (*models.StepResponse, error) {
	_, err := e.profiles.GetUser(ctx, req.UserID)
	if err == nil {
		server.RecordDialogStep(models.FlowRegistration, "rejected")
		return &models.StepResponse{Prompt: MsgAlreadyRegistered}, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	session := &models.DialogSession{
		UserID:    req.UserID,
		ChatID:    req.ChatID,
		Flow:      models.FlowRegistration,
		Step:      StepName,
		StartedAt: e.now(),
	}
	if err := e.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	e.logger.Info("Начат сценарий регистрации",
		zap.Int64("user_id", req.UserID),
		zap.Int64("chat_id", req.ChatID))
	server.RecordDialogStep(models.FlowRegistration, "started")

	return &models.StepResponse{Prompt: Prompt(StepName)}, nil
}

// startUpdate начинает сценарий обновления показателей.
// Пол и рост берутся из профиля, чтобы пропускать лишние вопросы.
func (e *Engine) startUpdate(ctx context.Context, req *models.StepRequest) (*models.StepResponse, error) {
	user, err := e.profiles.GetUser(ctx, req.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			server.RecordDialogStep(models.FlowUpdate, "rejected")
			return &models.StepResponse{Prompt: MsgNotRegistered}, nil
		}
		return nil, err
	}

	session := &models.DialogSession{
		UserID:    req.UserID,
		ChatID:    req.ChatID,
		Flow:      models.FlowUpdate,
		Step:      StepWeight,
		LastName:  user.LastName,
		FirstName: user.FirstName,
		BirthDate: user.BirthDate,
		HeightCm:  user.HeightCm,
		Sex:       user.Sex,
		StartedAt: e.now(),
	}
	if err := e.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	e.logger.Info("Начат сценарий обновления показателей",
		zap.Int64("user_id", req.UserID),
		zap.Int64("chat_id", req.ChatID))
	server.RecordDialogStep(models.FlowUpdate, "started")

	return &models.StepResponse{Prompt: Prompt(StepWeight)}, nil
}

// startEdit начинает повторное заполнение анкеты с первого шага.
// Команда доступна только зарегистрированному пользователю и
// перезапускает сценарий даже при наличии активного черновика.
func (e *Engine) startEdit(ctx context.Context, req *models.StepRequest) (*models.StepResponse, error) {
	_, err := e.profiles.GetUser(ctx, req.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			server.RecordDialogStep(models.FlowEdit, "rejected")
			return &models.StepResponse{Prompt: MsgNotRegistered}, nil
		}
		return nil, err
	}

	session := &models.DialogSession{
		UserID:    req.UserID,
		ChatID:    req.ChatID,
		Flow:      models.FlowEdit,
		Step:      StepName,
		StartedAt: e.now(),
	}
	if err := e.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	e.logger.Info("Начат сценарий редактирования анкеты",
		zap.Int64("user_id", req.UserID),
		zap.Int64("chat_id", req.ChatID))
	server.RecordDialogStep(models.FlowEdit, "started")

	return &models.StepResponse{Prompt: Prompt(StepName)}, nil
}

// cancel прерывает активный сценарий и удаляет черновик
func (e *Engine) cancel(ctx context.Context, req *models.StepRequest) (*models.StepResponse, error) {
	if err := e.sessions.DeleteSession(ctx, req.UserID, req.ChatID); err != nil {
		return nil, err
	}

	e.logger.Info("Сценарий отменен",
		zap.Int64("user_id", req.UserID),
		zap.Int64("chat_id", req.ChatID))
	server.RecordDialogStep("command", "cancelled")

	return &models.StepResponse{Prompt: MsgCancelled}, nil
}

// applyInput применяет ответ пользователя к текущему шагу сценария.
// Некорректный ввод не продвигает сценарий и возвращает тот же вопрос.
func (e *Engine) applyInput(ctx context.Context, session *models.DialogSession, input string) (*models.StepResponse, error) {
	next, err := e.applyStep(session, input)
	if err != nil {
		var ve *apperrors.ValidationError
		if errors.As(err, &ve) {
			server.RecordDialogStep(session.Flow, "invalid")
			return &models.StepResponse{
				Prompt: ve.Reason + "\n\n" + e.promptFor(session, session.Step),
			}, nil
		}
		var ce *apperrors.CalculationError
		if errors.As(err, &ce) {
			// Формула не определена на введенных обхватах,
			// сценарий возвращается к вводу талии
			session.Step = StepWaist
			if saveErr := e.sessions.SetSession(ctx, session); saveErr != nil {
				return nil, saveErr
			}
			server.RecordDialogStep(session.Flow, "invalid")
			return &models.StepResponse{
				Prompt: ce.Reason + "\n\n" + Prompt(StepWaist),
			}, nil
		}
		return nil, err
	}

	if next == "" {
		return e.finalize(ctx, session)
	}

	session.Step = next
	if err := e.sessions.SetSession(ctx, session); err != nil {
		return nil, err
	}

	server.RecordDialogStep(session.Flow, "advanced")
	return &models.StepResponse{Prompt: e.promptFor(session, next)}, nil
}

// applyStep валидирует ввод, записывает значение в черновик и
// возвращает следующий шаг. Пустой шаг означает завершение сценария.
func (e *Engine) applyStep(session *models.DialogSession, input string) (string, error) {
	switch session.Step {
	case StepName:
		lastName, firstName, err := validation.ValidateFullName(input)
		if err != nil {
			return "", err
		}
		session.LastName = lastName
		session.FirstName = firstName
		return StepBirthDate, nil

	case StepBirthDate:
		birthDate, err := validation.ValidateBirthDate(input, e.now())
		if err != nil {
			return "", err
		}
		session.BirthDate = birthDate
		return StepHeight, nil

	case StepHeight:
		height, err := validation.ValidateHeight(input)
		if err != nil {
			return "", err
		}
		session.HeightCm = height
		return StepSex, nil

	case StepSex:
		sex, err := validation.ValidateSex(input, SexOptions)
		if err != nil {
			return "", err
		}
		session.Sex = sex
		return StepWeight, nil

	case StepWeight:
		weight, err := validation.ValidateWeight(input)
		if err != nil {
			return "", err
		}
		session.WeightKg = weight
		return StepSteps, nil

	case StepSteps:
		steps, err := validation.ValidateSteps(input, StepsOptions)
		if err != nil {
			return "", err
		}
		session.Steps = steps
		if session.Flow == models.FlowUpdate {
			return StepWaist, nil
		}
		return StepSportType, nil

	case StepSportType:
		sport, err := validation.ValidateSportType(input, SportOptions)
		if err != nil {
			return "", err
		}
		session.SportType = sport
		if sport == models.SportNone {
			session.SportFreq = ""
			return StepWaist, nil
		}
		return StepSportFreq, nil

	case StepSportFreq:
		freq, err := validation.ValidateSportFrequency(input, FreqOptions)
		if err != nil {
			return "", err
		}
		session.SportFreq = freq
		return StepWaist, nil

	case StepWaist:
		waist, err := validation.ValidateWaist(input)
		if err != nil {
			return "", err
		}
		session.WaistCm = waist
		return StepNeck, nil

	case StepNeck:
		neck, err := validation.ValidateNeck(input)
		if err != nil {
			return "", err
		}
		session.NeckCm = neck
		if session.Sex == models.SexFemale {
			return StepHip, nil
		}
		return e.afterMeasurements(session)

	case StepHip:
		hip, err := validation.ValidateHip(input)
		if err != nil {
			return "", err
		}
		session.HipCm = &hip
		return e.afterMeasurements(session)

	case StepGoal:
		goal, err := validation.ValidateGoal(input, GoalOptions)
		if err != nil {
			return "", err
		}
		session.Goal = goal
		return "", nil

	default:
		return "", fmt.Errorf("неизвестный шаг диалога: %s", session.Step)
	}
}

// afterMeasurements проверяет, что процент жира вычислим на введенных
// обхватах, и выбирает продолжение: выбор цели при регистрации,
// завершение при обновлении показателей
func (e *Engine) afterMeasurements(session *models.DialogSession) (string, error) {
	if _, err := calc.BodyFat(session.Sex, session.HeightCm, session.WaistCm, session.NeckCm, session.HipCm); err != nil {
		return "", err
	}
	if session.Flow == models.FlowUpdate {
		return "", nil
	}
	return StepGoal, nil
}

// finalize сохраняет результат сценария.
// При ошибке сохранения черновик остается, шаг можно повторить.
func (e *Engine) finalize(ctx context.Context, session *models.DialogSession) (*models.StepResponse, error) {
	var summary *models.SummaryResponse
	var err error

	switch session.Flow {
	case models.FlowUpdate:
		summary, err = e.profiles.FinalizeUpdate(ctx, session)
	case models.FlowEdit:
		summary, err = e.profiles.FinalizeEdit(ctx, session)
	default:
		summary, err = e.profiles.FinalizeRegistration(ctx, session)
	}

	if err != nil {
		e.logger.Error("Не удалось сохранить результат сценария",
			zap.Error(err),
			zap.Int64("user_id", session.UserID),
			zap.String("flow", session.Flow))
		server.RecordDialogStep(session.Flow, "failed")
		return &models.StepResponse{Prompt: MsgRetryLater}, nil
	}

	if err := e.sessions.DeleteSession(ctx, session.UserID, session.ChatID); err != nil {
		e.logger.Warn("Не удалось удалить черновик завершенного сценария",
			zap.Error(err),
			zap.Int64("user_id", session.UserID))
	}

	e.logger.Info("Сценарий завершен",
		zap.Int64("user_id", session.UserID),
		zap.String("flow", session.Flow))
	server.RecordDialogStep(session.Flow, "completed")

	return &models.StepResponse{
		Prompt:  summaryText(summary),
		Done:    true,
		Summary: summary,
	}, nil
}

// promptFor строит текст вопроса шага с учетом накопленного черновика
func (e *Engine) promptFor(session *models.DialogSession, step string) string {
	if step == StepGoal {
		bf, err := calc.BodyFat(session.Sex, session.HeightCm, session.WaistCm, session.NeckCm, session.HipCm)
		if err != nil {
			return Prompt(StepWaist)
		}
		return goalPrompt(bf, calc.RecommendGoal(session.Sex, bf))
	}
	return Prompt(step)
}

// summaryText строит итоговое сообщение с дневной нормой
func summaryText(summary *models.SummaryResponse) string {
	return fmt.Sprintf(
		"Готово, %s! Процент жира: %.1f%%.\nВаша дневная норма: %d ккал, белки %d г, жиры %d г, углеводы %d г.",
		summary.FirstName,
		summary.BodyFatPct,
		summary.KBJU.Calories,
		summary.KBJU.ProteinG,
		summary.KBJU.FatG,
		summary.KBJU.CarbsG)
}
