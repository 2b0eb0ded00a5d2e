package database

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"KbjuCoachService/pkg/apperrors"
	"KbjuCoachService/pkg/resilience"
)

// HealthChecker предоставляет функции для проверки состояния хранилищ
type HealthChecker struct {
	db           *gorm.DB
	redisClient  *redis.Client
	logger       *zap.Logger
	pgCircuit    *resilience.CircuitBreaker
	redisCircuit *resilience.CircuitBreaker
}

// NewDatabaseHealthChecker создает новый экземпляр проверки состояния хранилищ
func NewDatabaseHealthChecker(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *HealthChecker {
	failureThreshold, resetTimeout := resilience.DefaultCircuitBreakerOptions()

	return &HealthChecker{
		db:           db,
		redisClient:  redisClient,
		logger:       logger,
		pgCircuit:    resilience.NewCircuitBreaker(failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...),
		redisCircuit: resilience.NewCircuitBreaker(failureThreshold, resetTimeout, logger, apperrors.IgnoredErrors...),
	}
}

// IsDatabaseHealthy проверяет здоровье PostgreSQL
func (c *HealthChecker) IsDatabaseHealthy(ctx context.Context) bool {
	var result int
	err := c.pgCircuit.Execute(ctx, "postgres_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		sqlDB, err := c.db.DB()
		if err != nil {
			return err
		}

		return sqlDB.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	})

	return err == nil && result == 1
}

// IsRedisHealthy проверяет здоровье Redis
func (c *HealthChecker) IsRedisHealthy(ctx context.Context) bool {
	err := c.redisCircuit.Execute(ctx, "redis_health_check", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
		defer cancel()

		_, err := c.redisClient.Ping(ctx).Result()
		return err
	})

	return err == nil
}

// WithDatabaseResilience выполняет операцию в базе данных через circuit breaker
func (c *HealthChecker) WithDatabaseResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := c.pgCircuit.Execute(ctx, operation, fn)

	// Отсутствие записи не считается ошибкой для circuit breaker,
	// но возвращается бизнес-логике
	if errors.Is(err, redis.Nil) || errors.Is(err, gorm.ErrRecordNotFound) {
		c.logger.Debug("Запись не найдена, это не ошибка для circuit breaker",
			zap.String("operation", operation),
			zap.Error(err))
		return err
	}

	return err
}

// WithRedisResilience выполняет операцию в Redis через circuit breaker
func (c *HealthChecker) WithRedisResilience(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	err := c.redisCircuit.Execute(ctx, operation, fn)

	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Ключ не найден в Redis, это не ошибка для circuit breaker",
			zap.String("operation", operation))
		return err
	}

	return err
}

// SafeDBOperation выполняет операцию в базе данных, логируя ошибки
func SafeDBOperation(ctx context.Context, db *gorm.DB, logger *zap.Logger, operation string, fn func(tx *gorm.DB) error) error {
	tx := db.WithContext(ctx)

	if err := fn(tx); err != nil {
		logger.Error("Database operation failed",
			zap.String("operation", operation),
			zap.Error(err))
		return err
	}

	return nil
}

// SafeRedisOperation выполняет операцию в Redis с таймаутом, логируя ошибки
func SafeRedisOperation(ctx context.Context, client *redis.Client, logger *zap.Logger, operation string, fn func(ctx context.Context, client *redis.Client) error) error {
	_, ok := ctx.Deadline()
	if !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	if err := fn(ctx, client); err != nil {
		logger.Error("Redis operation failed",
			zap.String("operation", operation),
			zap.Error(err))

		if errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Redis operation timed out", zap.String("operation", operation))
		}

		return err
	}

	return nil
}
