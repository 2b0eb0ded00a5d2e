package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"KbjuCoachService/internal/models"
)

// TestResilientSessionOperations тестирует работу с черновиками
// через отказоустойчивый репозиторий
func TestResilientSessionOperations(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create mini redis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	repo := NewResilientCacheRepository(client, &gorm.DB{}, zap.NewNop())

	ctx := context.Background()
	session := &models.DialogSession{
		UserID: 100,
		ChatID: 200,
		Flow:   models.FlowRegistration,
		Step:   "height",
	}

	if err := repo.SetSession(ctx, session); err != nil {
		t.Fatalf("Failed to set session: %v", err)
	}

	cached, err := repo.GetSession(ctx, 100, 200)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if cached.Step != session.Step {
		t.Errorf("Expected step %s, got %s", session.Step, cached.Step)
	}

	if err := repo.DeleteSession(ctx, 100, 200); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := repo.GetSession(ctx, 100, 200); !errors.Is(err, redis.Nil) {
		t.Fatalf("Expected redis.Nil after delete, got: %v", err)
	}
}

// TestSessionErrorsPropagate тестирует, что ошибки хранилища черновиков
// не проглатываются: сессия единственный источник состояния сценария
func TestSessionErrorsPropagate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create mini redis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	repo := NewResilientCacheRepository(client, &gorm.DB{}, zap.NewNop())

	// Останавливаем Redis
	mr.Close()

	ctx := context.Background()
	session := &models.DialogSession{UserID: 1, ChatID: 2, Flow: models.FlowRegistration, Step: "name"}

	if err := repo.SetSession(ctx, session); err == nil {
		t.Error("Expected error when saving session without Redis")
	}
	if _, err := repo.GetSession(ctx, 1, 2); err == nil {
		t.Error("Expected error when reading session without Redis")
	}
}

// TestSummaryErrorsSwallowed тестирует, что сбои кэша сводки
// не прерывают работу сервиса
func TestSummaryErrorsSwallowed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create mini redis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	repo := NewResilientCacheRepository(client, &gorm.DB{}, zap.NewNop())

	// Останавливаем Redis
	mr.Close()

	ctx := context.Background()
	summary := &models.SummaryResponse{TelegramID: 100, WeightKg: 80}

	if err := repo.SetSummary(ctx, 100, summary); err != nil {
		t.Errorf("Expected summary cache write error to be swallowed, got: %v", err)
	}
	if err := repo.DeleteSummary(ctx, 100); err != nil {
		t.Errorf("Expected summary cache invalidation error to be swallowed, got: %v", err)
	}

	// Чтение возвращает ошибку, чтобы сервис ушел в базу
	if _, err := repo.GetSummary(ctx, 100); err == nil {
		t.Error("Expected error when reading summary cache without Redis")
	}
}

// TestResilientSummaryRoundtrip тестирует кэш сводки при работающем Redis
func TestResilientSummaryRoundtrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create mini redis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	repo := NewResilientCacheRepository(client, &gorm.DB{}, zap.NewNop())

	ctx := context.Background()
	summary := &models.SummaryResponse{
		TelegramID: 100,
		FirstName:  "Иван",
		WeightKg:   80,
		KBJU:       models.KBJU{Calories: 2735, ProteinG: 160, FatG: 80, CarbsG: 344},
	}

	if err := repo.SetSummary(ctx, 100, summary); err != nil {
		t.Fatalf("Failed to set summary: %v", err)
	}

	cached, err := repo.GetSummary(ctx, 100)
	if err != nil {
		t.Fatalf("Failed to get summary: %v", err)
	}
	if cached.KBJU != summary.KBJU {
		t.Errorf("Expected KBJU %+v, got %+v", summary.KBJU, cached.KBJU)
	}

	if err := repo.DeleteSummary(ctx, 100); err != nil {
		t.Fatalf("Failed to delete summary: %v", err)
	}
	if _, err := repo.GetSummary(ctx, 100); !errors.Is(err, redis.Nil) {
		t.Fatalf("Expected redis.Nil after invalidation, got: %v", err)
	}
}
