package postgres

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/pkg/database"
	"KbjuCoachService/pkg/resilience"
	"KbjuCoachService/pkg/server"
)

// ResilientRecordRepository добавляет механизмы отказоустойчивости
// к репозиторию замеров. Оборачивается горячий путь финализации диалога.
type ResilientRecordRepository struct {
	db            *gorm.DB
	repo          *RecordRepository
	logger        *zap.Logger
	healthChecker *database.HealthChecker
}

// NewResilientRecordRepository создает новый экземпляр отказоустойчивого репозитория
func NewResilientRecordRepository(db *gorm.DB, redisClient *redis.Client, logger *zap.Logger) *ResilientRecordRepository {
	baseRepo := NewRecordRepository(db)
	healthChecker := database.NewDatabaseHealthChecker(db, redisClient, logger)

	return &ResilientRecordRepository{
		db:            db,
		repo:          baseRepo,
		logger:        logger,
		healthChecker: healthChecker,
	}
}

// HealthChecker возвращает общий health checker хранилищ
func (r *ResilientRecordRepository) HealthChecker() *database.HealthChecker {
	return r.healthChecker
}

// Upsert сохраняет замер за день с отказоустойчивостью
func (r *ResilientRecordRepository) Upsert(record *models.Record) error {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.healthChecker.WithDatabaseResilience(ctx, "upsert_record", func(ctx context.Context) error {
		return database.SafeDBOperation(ctx, r.db, r.logger, "upsert_record", func(tx *gorm.DB) error {
			return r.repo.Upsert(record)
		})
	})

	server.RecordDBOperation("upsert_record", time.Since(startTime), err)

	return err
}

// GetByDate получает замер за день с отказоустойчивостью
func (r *ResilientRecordRepository) GetByDate(userID uint, date time.Time) (*models.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var record *models.Record
	var err error

	err = r.healthChecker.WithDatabaseResilience(ctx, "get_record_by_date", func(ctx context.Context) error {
		record, err = r.repo.GetByDate(userID, date)
		return err
	})

	return record, err
}

// GetOrCreateToday возвращает замер за текущий день с отказоустойчивостью
func (r *ResilientRecordRepository) GetOrCreateToday(userID uint, now time.Time) (*models.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var record *models.Record
	var err error

	err = r.healthChecker.WithDatabaseResilience(ctx, "get_or_create_today", func(ctx context.Context) error {
		return database.SafeDBOperation(ctx, r.db, r.logger, "get_or_create_today", func(tx *gorm.DB) error {
			record, err = r.repo.GetOrCreateToday(userID, now)
			return err
		})
	})

	return record, err
}

// GetLatest получает последний замер с отказоустойчивостью и повторными попытками
func (r *ResilientRecordRepository) GetLatest(userID uint) (*models.Record, error) {
	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var record *models.Record
	var err error

	err = r.healthChecker.WithDatabaseResilience(ctx, "get_latest_record", func(ctx context.Context) error {
		retryOptions := resilience.DefaultRetryOptions()
		retryOptions.MaxRetries = 2

		return resilience.WithRetry(ctx, r.logger, "get_latest_record", retryOptions, func(ctx context.Context) error {
			record, err = r.repo.GetLatest(userID)
			return err
		})
	})

	server.RecordDBOperation("get_latest_record", time.Since(startTime), err)

	return record, err
}

// GetAllAscending получает историю замеров с отказоустойчивостью
func (r *ResilientRecordRepository) GetAllAscending(userID uint) ([]models.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var records []models.Record
	var err error

	err = r.healthChecker.WithDatabaseResilience(ctx, "get_all_records", func(ctx context.Context) error {
		records, err = r.repo.GetAllAscending(userID)
		return err
	})

	return records, err
}

// UpdateGoal меняет цель в замере за текущий день с отказоустойчивостью
func (r *ResilientRecordRepository) UpdateGoal(userID uint, now time.Time, goal string, kbju models.KBJU) (*models.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var record *models.Record
	var err error

	err = r.healthChecker.WithDatabaseResilience(ctx, "update_record_goal", func(ctx context.Context) error {
		return database.SafeDBOperation(ctx, r.db, r.logger, "update_record_goal", func(tx *gorm.DB) error {
			record, err = r.repo.UpdateGoal(userID, now, goal, kbju)
			return err
		})
	})

	return record, err
}
