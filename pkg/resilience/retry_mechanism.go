package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// RetryOptions настройки повторных попыток
type RetryOptions struct {
	MaxRetries      int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffFactor   float64
	Jitter          float64
	RetryableErrors []error
}

// DefaultRetryOptions возвращает настройки по умолчанию:
// три повтора с экспоненциальной задержкой от 100 мс до 2 с
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.2,
	}
}

// WithRetry выполняет операцию с повторами при сбоях.
// Между попытками выдерживается экспоненциальная пауза со случайным
// отклонением, отмена контекста прерывает ожидание.
func WithRetry(ctx context.Context, logger *zap.Logger, operation string, options RetryOptions, fn func(context.Context) error) error {
	var err error

	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil {
			if attempt > 0 {
				logger.Info("Операция выполнена после повторов",
					zap.String("operation", operation),
					zap.Int("attempts", attempt+1))
			}
			return nil
		}

		if attempt == options.MaxRetries {
			logger.Warn("Повторы исчерпаны",
				zap.String("operation", operation),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return err
		}

		if !shouldRetry(err, options.RetryableErrors) {
			logger.Warn("Ошибка не подлежит повтору",
				zap.String("operation", operation),
				zap.Error(err))
			return err
		}

		delay := backoffDelay(attempt, options)
		logger.Info("Повтор операции после сбоя",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			logger.Warn("Ожидание повтора прервано контекстом",
				zap.String("operation", operation),
				zap.Error(ctx.Err()))
			return ctx.Err()
		}
	}
}

// shouldRetry решает, подлежит ли ошибка повтору.
// Пустой список означает, что повторяются все ошибки.
func shouldRetry(err error, retryable []error) bool {
	if len(retryable) == 0 {
		return true
	}
	for _, candidate := range retryable {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}

// backoffDelay вычисляет паузу перед повтором: экспоненциальный рост
// со случайным отклонением, ограниченный максимумом
func backoffDelay(attempt int, options RetryOptions) time.Duration {
	delay := float64(options.InitialBackoff) * math.Pow(options.BackoffFactor, float64(attempt))

	if options.Jitter > 0 {
		delay *= 1 + options.Jitter*(rand.Float64()*2-1)
	}

	if delay > float64(options.MaxBackoff) {
		delay = float64(options.MaxBackoff)
	}
	return time.Duration(delay)
}
