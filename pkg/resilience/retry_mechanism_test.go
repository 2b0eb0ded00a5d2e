package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func fastRetryOptions() RetryOptions {
	return RetryOptions{
		MaxRetries:     2,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
		BackoffFactor:  2.0,
	}
}

// TestWithRetrySucceedsAfterFailures тестирует успех после временных сбоев
func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	errFlaky := errors.New("временный сбой")
	calls := 0

	err := WithRetry(context.Background(), zap.NewNop(), "save_record", fastRetryOptions(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errFlaky
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Ожидался успех после повторов: %v", err)
	}
	if calls != 3 {
		t.Errorf("Ожидалось 3 вызова, получено %d", calls)
	}
}

// TestWithRetryExhausted тестирует возврат исходной ошибки
// после исчерпания повторов
func TestWithRetryExhausted(t *testing.T) {
	errDown := errors.New("хранилище недоступно")
	calls := 0

	err := WithRetry(context.Background(), zap.NewNop(), "save_record", fastRetryOptions(), func(context.Context) error {
		calls++
		return errDown
	})

	if !errors.Is(err, errDown) {
		t.Fatalf("Ожидалась исходная ошибка, получено: %v", err)
	}
	if calls != 3 {
		t.Errorf("Ожидалось 3 вызова (исходный и два повтора), получено %d", calls)
	}
}

// TestWithRetryNonRetryable тестирует, что ошибка вне списка
// повторяемых возвращается без повторов
func TestWithRetryNonRetryable(t *testing.T) {
	errTransient := errors.New("временный сбой")
	errFatal := errors.New("нарушение ограничения схемы")

	options := fastRetryOptions()
	options.RetryableErrors = []error{errTransient}

	calls := 0
	err := WithRetry(context.Background(), zap.NewNop(), "save_record", options, func(context.Context) error {
		calls++
		return errFatal
	})

	if !errors.Is(err, errFatal) {
		t.Fatalf("Ожидалась исходная ошибка, получено: %v", err)
	}
	if calls != 1 {
		t.Errorf("Неповторяемая ошибка не должна повторяться, вызовов: %d", calls)
	}
}

// TestWithRetryContextCancelled тестирует прерывание ожидания
// повтора при отмене контекста
func TestWithRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	options := fastRetryOptions()
	options.MaxRetries = 5
	options.InitialBackoff = 100 * time.Millisecond

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- WithRetry(ctx, zap.NewNop(), "read_session", options, func(context.Context) error {
			calls++
			cancel()
			return errors.New("временный сбой")
		})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Ожидалась context.Canceled, получено: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Отмена контекста не прервала ожидание повтора")
	}
	if calls != 1 {
		t.Errorf("Ожидался один вызов до отмены, получено %d", calls)
	}
}

// TestBackoffDelayGrowth тестирует экспоненциальный рост паузы
// и ограничение максимумом
func TestBackoffDelayGrowth(t *testing.T) {
	options := RetryOptions{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
	}

	if d := backoffDelay(0, options); d != 100*time.Millisecond {
		t.Errorf("Первая пауза = %v, ожидалось 100ms", d)
	}
	if d := backoffDelay(1, options); d != 200*time.Millisecond {
		t.Errorf("Вторая пауза = %v, ожидалось 200ms", d)
	}
	if d := backoffDelay(2, options); d != 400*time.Millisecond {
		t.Errorf("Третья пауза = %v, ожидалось 400ms", d)
	}
	if d := backoffDelay(10, options); d > options.MaxBackoff {
		t.Errorf("Пауза %v превысила максимум %v", d, options.MaxBackoff)
	}
}

// TestBackoffDelayJitter тестирует случайное отклонение паузы
func TestBackoffDelayJitter(t *testing.T) {
	options := RetryOptions{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.5,
	}

	base := 200 * time.Millisecond
	lo := time.Duration(float64(base) * 0.5)
	hi := time.Duration(float64(base) * 1.5)

	varied := false
	first := backoffDelay(1, options)
	for i := 0; i < 10; i++ {
		d := backoffDelay(1, options)
		if d != first {
			varied = true
		}
		if d < lo || d > hi {
			t.Errorf("Пауза %v вне диапазона [%v, %v]", d, lo, hi)
		}
	}
	if !varied {
		t.Error("Отклонение должно давать разные значения паузы")
	}
}
