package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"KbjuCoachService/internal/models"
)

const (
	// TTL для разных типов данных
	sessionTTL = 24 * time.Hour
	summaryTTL = 30 * time.Minute
)

// CacheRepository представляет репозиторий для работы с Redis:
// черновики диалогов и кэш сводки «мои данные»
type CacheRepository struct {
	client *redis.Client
}

// NewCacheRepository создает новый экземпляр CacheRepository
func NewCacheRepository(client *redis.Client) *CacheRepository {
	return &CacheRepository{
		client: client,
	}
}

// SetSession сохраняет черновик диалога
func (r *CacheRepository) SetSession(ctx context.Context, session *models.DialogSession) error {
	key := sessionKey(session.UserID, session.ChatID)

	sessionData, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, sessionData, sessionTTL).Err()
}

// GetSession получает черновик диалога
func (r *CacheRepository) GetSession(ctx context.Context, userID, chatID int64) (*models.DialogSession, error) {
	key := sessionKey(userID, chatID)

	sessionData, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var session models.DialogSession
	if err := json.Unmarshal(sessionData, &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// DeleteSession удаляет черновик диалога.
// Вызывается при завершении и отмене сценария.
func (r *CacheRepository) DeleteSession(ctx context.Context, userID, chatID int64) error {
	return r.client.Del(ctx, sessionKey(userID, chatID)).Err()
}

// SetSummary кэширует сводку «мои данные»
func (r *CacheRepository) SetSummary(ctx context.Context, telegramID int64, summary *models.SummaryResponse) error {
	key := summaryKey(telegramID)

	summaryData, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, key, summaryData, summaryTTL).Err()
}

// GetSummary получает сводку «мои данные» из кэша
func (r *CacheRepository) GetSummary(ctx context.Context, telegramID int64) (*models.SummaryResponse, error) {
	key := summaryKey(telegramID)

	summaryData, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var summary models.SummaryResponse
	if err := json.Unmarshal(summaryData, &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// DeleteSummary инвалидирует кэш сводки после записи новых данных
func (r *CacheRepository) DeleteSummary(ctx context.Context, telegramID int64) error {
	return r.client.Del(ctx, summaryKey(telegramID)).Err()
}

func sessionKey(userID, chatID int64) string {
	return fmt.Sprintf("session:%d:%d", userID, chatID)
}

func summaryKey(telegramID int64) string {
	return fmt.Sprintf("user:%d:summary", telegramID)
}
