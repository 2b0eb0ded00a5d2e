package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Job выполняется по истечении задержки
type Job func(ctx context.Context)

// Scheduler исполняет одноразовые отложенные задачи.
// Задачи можно отменять по идентификатору, при остановке
// все несработавшие таймеры отменяются.
type Scheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	logger *zap.Logger
	closed bool
}

// NewScheduler создает новый планировщик
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		timers: make(map[string]*time.Timer),
		logger: logger,
	}
}

// Schedule ставит задачу на исполнение через delay и возвращает ее идентификатор
func (s *Scheduler) Schedule(delay time.Duration, job Job) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.logger.Warn("Планировщик остановлен, задача отброшена")
		return ""
	}

	id := uuid.New().String()
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		job(ctx)
	})

	s.logger.Debug("Задача запланирована",
		zap.String("job_id", id),
		zap.Duration("delay", delay))
	return id
}

// Cancel отменяет задачу по идентификатору.
// Возвращает false, если задача уже выполнена или неизвестна.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, id)
	return true
}

// Pending возвращает число ожидающих задач
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Shutdown отменяет все ожидающие задачи и запрещает новые
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.closed = true

	s.logger.Info("Планировщик остановлен")
}
