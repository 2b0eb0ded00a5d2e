package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/pkg/database"
	"KbjuCoachService/pkg/resilience"
	"KbjuCoachService/pkg/server"
)

// ResilientCacheRepository добавляет механизмы отказоустойчивости к Redis-репозиторию.
// Ошибки кэша сводки проглатываются, ошибки сессий возвращаются:
// черновик диалога это единственный источник состояния сценария.
type ResilientCacheRepository struct {
	client        *redis.Client
	repo          *CacheRepository
	logger        *zap.Logger
	healthChecker *database.HealthChecker
}

// NewResilientCacheRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientCacheRepository(client *redis.Client, db *gorm.DB, logger *zap.Logger) *ResilientCacheRepository {
	baseRepo := NewCacheRepository(client)
	healthChecker := database.NewDatabaseHealthChecker(db, client, logger)

	return &ResilientCacheRepository{
		client:        client,
		repo:          baseRepo,
		logger:        logger,
		healthChecker: healthChecker,
	}
}

// SetSession сохраняет черновик диалога с отказоустойчивостью
func (r *ResilientCacheRepository) SetSession(ctx context.Context, session *models.DialogSession) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	startTime := time.Now()
	err := r.healthChecker.WithRedisResilience(ctx, "set_session", func(ctx context.Context) error {
		return database.SafeRedisOperation(ctx, r.client, r.logger, "set_session", func(ctx context.Context, client *redis.Client) error {
			return r.repo.SetSession(ctx, session)
		})
	})

	server.RecordCacheOperation("set_session", time.Since(startTime), err)
	return err
}

// GetSession получает черновик диалога с повторными попытками
func (r *ResilientCacheRepository) GetSession(ctx context.Context, userID, chatID int64) (*models.DialogSession, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	startTime := time.Now()

	var session *models.DialogSession

	retryOptions := resilience.DefaultRetryOptions()
	retryOptions.MaxRetries = 1
	retryOptions.InitialBackoff = 50 * time.Millisecond
	retryOptions.MaxBackoff = 100 * time.Millisecond

	err := resilience.WithRetry(ctx, r.logger, "get_session", retryOptions, func(ctx context.Context) error {
		var opErr error
		session, opErr = r.repo.GetSession(ctx, userID, chatID)

		// Отсутствие сессии не повод для повторной попытки
		if errors.Is(opErr, redis.Nil) {
			r.logger.Debug("Сессия диалога не найдена",
				zap.Int64("user_id", userID),
				zap.Int64("chat_id", chatID))
			return redis.Nil
		}
		return opErr
	})

	if err != nil && !errors.Is(err, redis.Nil) {
		server.RecordCacheOperation("get_session", time.Since(startTime), err)
	} else {
		server.RecordCacheOperation("get_session", time.Since(startTime), nil)
	}

	return session, err
}

// DeleteSession удаляет черновик диалога с отказоустойчивостью
func (r *ResilientCacheRepository) DeleteSession(ctx context.Context, userID, chatID int64) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	return r.healthChecker.WithRedisResilience(ctx, "delete_session", func(ctx context.Context) error {
		return database.SafeRedisOperation(ctx, r.client, r.logger, "delete_session", func(ctx context.Context, client *redis.Client) error {
			return r.repo.DeleteSession(ctx, userID, chatID)
		})
	})
}

// SetSummary кэширует сводку, ошибки кэша не прерывают работу
func (r *ResilientCacheRepository) SetSummary(ctx context.Context, telegramID int64, summary *models.SummaryResponse) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	err := r.healthChecker.WithRedisResilience(ctx, "set_summary_cache", func(ctx context.Context) error {
		return database.SafeRedisOperation(ctx, r.client, r.logger, "set_summary_cache", func(ctx context.Context, client *redis.Client) error {
			return r.repo.SetSummary(ctx, telegramID, summary)
		})
	})

	if err != nil {
		r.logger.Warn("Failed to cache summary, continuing without caching",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
		return nil
	}

	return nil
}

// GetSummary получает сводку из кэша с быстрым таймаутом
func (r *ResilientCacheRepository) GetSummary(ctx context.Context, telegramID int64) (*models.SummaryResponse, error) {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	startTime := time.Now()

	var summary *models.SummaryResponse
	var err error

	fastCtx, fastCancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer fastCancel()

	err = r.healthChecker.WithRedisResilience(fastCtx, "get_summary_cache", func(ctx context.Context) error {
		summary, err = r.repo.GetSummary(ctx, telegramID)
		return err
	})

	if err != nil && !errors.Is(err, redis.Nil) {
		server.RecordCacheOperation("get_summary", time.Since(startTime), err)
	} else {
		server.RecordCacheOperation("get_summary", time.Since(startTime), nil)
	}

	return summary, err
}

// DeleteSummary инвалидирует кэш сводки, ошибки не прерывают работу
func (r *ResilientCacheRepository) DeleteSummary(ctx context.Context, telegramID int64) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	err := r.healthChecker.WithRedisResilience(ctx, "delete_summary_cache", func(ctx context.Context) error {
		return database.SafeRedisOperation(ctx, r.client, r.logger, "delete_summary_cache", func(ctx context.Context, client *redis.Client) error {
			return r.repo.DeleteSummary(ctx, telegramID)
		})
	})

	if err != nil {
		r.logger.Warn("Failed to invalidate summary cache",
			zap.Error(err),
			zap.Int64("telegram_id", telegramID))
		return nil
	}

	return nil
}

// withDefaultTimeout добавляет таймаут, если у контекста его еще нет
func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, 1*time.Second)
}
