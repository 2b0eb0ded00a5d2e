package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCircuitOpen возвращается, когда предохранитель разомкнут
// и операции к хранилищу не допускаются
var ErrCircuitOpen = errors.New("предохранитель разомкнут")

// CircuitState представляет состояние предохранителя
type CircuitState int

const (
	// CircuitClosed - нормальная работа, запросы проходят
	CircuitClosed CircuitState = iota
	// CircuitOpen - хранилище считается недоступным, запросы отклоняются
	CircuitOpen
	// CircuitHalfOpen - пробный режим после паузы восстановления
	CircuitHalfOpen
)

// String возвращает строковое представление состояния
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker отсекает обращения к хранилищу после серии сбоев,
// давая ему время восстановиться. Ошибки из списка ignored
// (например, "запись не найдена") сбоями не считаются.
type CircuitBreaker struct {
	mu        sync.Mutex
	state     CircuitState
	failures  int
	threshold int
	cooldown  time.Duration
	changedAt time.Time
	ignored   []error
	logger    *zap.Logger
}

// NewCircuitBreaker создает новый предохранитель в закрытом состоянии
func NewCircuitBreaker(failureThreshold int, resetTimeout time.Duration, logger *zap.Logger, ignoredErrors ...error) *CircuitBreaker {
	return &CircuitBreaker{
		state:     CircuitClosed,
		threshold: failureThreshold,
		cooldown:  resetTimeout,
		changedAt: time.Now(),
		ignored:   ignoredErrors,
		logger:    logger,
	}
}

// DefaultCircuitBreakerOptions возвращает рекомендуемые настройки:
// порог срабатывания и паузу восстановления
func DefaultCircuitBreakerOptions() (int, time.Duration) {
	return 5, 30 * time.Second
}

// Execute выполняет операцию, если предохранитель ее допускает,
// и учитывает результат для переключения состояния
func (cb *CircuitBreaker) Execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if !cb.admit(operation) {
		return ErrCircuitOpen
	}

	err := fn(ctx)
	cb.observe(operation, err)
	return err
}

// GetState возвращает текущее состояние предохранителя
func (cb *CircuitBreaker) GetState() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// admit решает, пропускать ли запрос. В разомкнутом состоянии после
// паузы восстановления предохранитель переходит в пробный режим
// и пропускает запрос
func (cb *CircuitBreaker) admit(operation string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed, CircuitHalfOpen:
		return true
	case CircuitOpen:
		if time.Since(cb.changedAt) > cb.cooldown {
			cb.setState(CircuitHalfOpen, operation)
			return true
		}
		cb.logger.Warn("Запрос отклонен предохранителем",
			zap.String("operation", operation),
			zap.Duration("cooldown", cb.cooldown))
		return false
	default:
		return false
	}
}

// observe учитывает результат операции
func (cb *CircuitBreaker) observe(operation string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.onSuccess(operation)
		return
	}

	for _, ignored := range cb.ignored {
		if errors.Is(err, ignored) {
			return
		}
	}
	cb.onFailure(operation, err)
}

func (cb *CircuitBreaker) onSuccess(operation string) {
	switch cb.state {
	case CircuitClosed:
		cb.failures = 0
	case CircuitHalfOpen:
		// Пробный запрос прошел, хранилище восстановилось
		cb.failures = 0
		cb.setState(CircuitClosed, operation)
	}
}

func (cb *CircuitBreaker) onFailure(operation string, err error) {
	switch cb.state {
	case CircuitClosed:
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.logger.Warn("Серия сбоев, предохранитель размыкается",
				zap.String("operation", operation),
				zap.Int("failures", cb.failures),
				zap.Error(err))
			cb.setState(CircuitOpen, operation)
		}
	case CircuitHalfOpen:
		// Пробный запрос не удался, хранилище еще не восстановилось
		cb.setState(CircuitOpen, operation)
	}
}

// setState переключает состояние. Вызывается под мьютексом.
func (cb *CircuitBreaker) setState(next CircuitState, operation string) {
	if cb.state == next {
		return
	}
	cb.logger.Info("Предохранитель сменил состояние",
		zap.String("operation", operation),
		zap.String("from", cb.state.String()),
		zap.String("to", next.String()))
	cb.state = next
	cb.changedAt = time.Now()
}
