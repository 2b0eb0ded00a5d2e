package config

import (
	"time"
)

// ResilienceConfig содержит настройки для механизмов отказоустойчивости
type ResilienceConfig struct {
	CircuitBreaker CircuitBreakerConfig
	Retry          RetryConfig
	Postgres       CommandTimeoutConfig
	Redis          CommandTimeoutConfig
}

// CircuitBreakerConfig содержит настройки для circuit breaker
type CircuitBreakerConfig struct {
	// FailureThreshold количество ошибок, после которого circuit breaker откроется
	FailureThreshold int
	// ResetTimeout время, через которое circuit breaker перейдет в полуоткрытое состояние
	ResetTimeout time.Duration
}

// RetryConfig содержит настройки для механизма повторных попыток
type RetryConfig struct {
	// MaxRetries максимальное количество повторных попыток
	MaxRetries int
	// InitialBackoff начальная задержка между попытками
	InitialBackoff time.Duration
	// MaxBackoff максимальная задержка между попытками
	MaxBackoff time.Duration
	// BackoffFactor коэффициент увеличения задержки
	BackoffFactor float64
	// Jitter процент случайного отклонения от задержки
	Jitter float64
}

// CommandTimeoutConfig содержит таймаут выполнения команд хранилища
type CommandTimeoutConfig struct {
	CommandTimeout time.Duration
}

// DefaultResilienceConfig возвращает конфигурацию отказоустойчивости по умолчанию
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 100 * time.Millisecond,
			MaxBackoff:     2 * time.Second,
			BackoffFactor:  2.0,
			Jitter:         0.2,
		},
		Postgres: CommandTimeoutConfig{CommandTimeout: 3 * time.Second},
		Redis:    CommandTimeoutConfig{CommandTimeout: 1 * time.Second},
	}
}
