package scheduler

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"KbjuCoachService/config"
)

// Notifier доставляет сообщения пользователю.
// Реализацию предоставляет внешний транспорт.
type Notifier interface {
	Notify(ctx context.Context, telegramID int64, message string) error
}

// Funnel управляет воронкой приглашения на консультацию:
// приглашение вскоре после регистрации и серия напоминаний после него
type Funnel struct {
	scheduler *Scheduler
	notifier  Notifier
	cfg       config.FunnelConfig
	logger    *zap.Logger

	mu   sync.Mutex
	jobs map[int64][]string
}

// NewFunnel создает новую воронку приглашений
func NewFunnel(scheduler *Scheduler, notifier Notifier, cfg config.FunnelConfig, logger *zap.Logger) *Funnel {
	return &Funnel{
		scheduler: scheduler,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
		jobs:      make(map[int64][]string),
	}
}

// ScheduleInvite планирует приглашение и напоминания для пользователя.
// Повторный вызов сначала отменяет прежнюю серию.
func (f *Funnel) ScheduleInvite(telegramID int64, firstName string) {
	f.CancelFor(telegramID)

	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, 1+len(f.cfg.ReminderIntervals))

	inviteID := f.scheduler.Schedule(f.cfg.InviteDelay, func(ctx context.Context) {
		f.send(ctx, telegramID, inviteMessage(firstName, f.cfg.ConsultationLink))
	})
	if inviteID != "" {
		ids = append(ids, inviteID)
	}

	for i, interval := range f.cfg.ReminderIntervals {
		number := i + 1
		reminderID := f.scheduler.Schedule(f.cfg.InviteDelay+interval, func(ctx context.Context) {
			f.send(ctx, telegramID, reminderMessage(number, f.cfg.ConsultationLink))
		})
		if reminderID != "" {
			ids = append(ids, reminderID)
		}
	}

	f.jobs[telegramID] = ids

	f.logger.Info("Воронка приглашения запланирована",
		zap.Int64("telegram_id", telegramID),
		zap.Int("jobs", len(ids)))
}

// CancelFor отменяет всю серию сообщений пользователя
func (f *Funnel) CancelFor(telegramID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.jobs[telegramID] {
		f.scheduler.Cancel(id)
	}
	delete(f.jobs, telegramID)
}

func (f *Funnel) send(ctx context.Context, telegramID int64, message string) {
	if err := f.notifier.Notify(ctx, telegramID, message); err != nil {
		f.logger.Error("Не удалось доставить сообщение воронки",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
		return
	}
	f.logger.Info("Сообщение воронки доставлено",
		zap.Int64("telegram_id", telegramID))
}

func inviteMessage(firstName, link string) string {
	return fmt.Sprintf(
		"%s, ваша дневная норма готова! Запишитесь на бесплатную консультацию, чтобы составить план питания: %s",
		firstName, link)
}

func reminderMessage(number int, link string) string {
	return fmt.Sprintf(
		"Напоминание %d: консультация по плану питания еще доступна. Записаться: %s",
		number, link)
}
