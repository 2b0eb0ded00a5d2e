package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"KbjuCoachService/internal/models"
)

// RecordRepository представляет репозиторий для работы с замерами
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository создает новый экземпляр RecordRepository
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{
		db: db,
	}
}

// Upsert сохраняет замер за календарный день.
// Если замер за этот день уже существует, он перезаписывается,
// поэтому повторное сохранение в тот же день идемпотентно.
func (r *RecordRepository) Upsert(record *models.Record) error {
	date := truncateToDay(record.Date)

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Record
		result := tx.Where("user_id = ? AND date = ?", record.UserID, date).First(&existing)

		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			record.Date = date
			return tx.Create(record).Error
		} else if result.Error != nil {
			return result.Error
		}

		existing.WeightKg = record.WeightKg
		existing.Steps = record.Steps
		existing.SportType = record.SportType
		existing.SportFreq = record.SportFreq
		existing.WaistCm = record.WaistCm
		existing.NeckCm = record.NeckCm
		existing.HipCm = record.HipCm
		existing.BodyFatPct = record.BodyFatPct
		existing.Goal = record.Goal
		existing.Calories = record.Calories
		existing.ProteinG = record.ProteinG
		existing.FatG = record.FatG
		existing.CarbsG = record.CarbsG

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		record.ID = existing.ID
		record.Date = existing.Date
		return nil
	})
}

// GetByDate получает замер пользователя за конкретный день
func (r *RecordRepository) GetByDate(userID uint, date time.Time) (*models.Record, error) {
	return findByDateTx(r.db, userID, truncateToDay(date))
}

// GetOrCreateToday возвращает замер за текущий день.
// Если замера за день еще нет, он создается копией последнего,
// чтобы операции над сегодняшним замером не трогали историю.
func (r *RecordRepository) GetOrCreateToday(userID uint, now time.Time) (*models.Record, error) {
	var record *models.Record
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = getOrCreateTodayTx(tx, userID, truncateToDay(now))
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// GetLatest получает последний замер пользователя
func (r *RecordRepository) GetLatest(userID uint) (*models.Record, error) {
	var record models.Record
	if err := r.db.Where("user_id = ?", userID).Order("date DESC").First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetAllAscending получает все замеры пользователя в хронологическом порядке
func (r *RecordRepository) GetAllAscending(userID uint) ([]models.Record, error) {
	var records []models.Record
	if err := r.db.Where("user_id = ?", userID).Order("date ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateGoal меняет цель и пересчитанную норму в замере за текущий день.
// История не трогается: при отсутствии сегодняшнего замера он создается
// копией последнего в той же транзакции.
func (r *RecordRepository) UpdateGoal(userID uint, now time.Time, goal string, kbju models.KBJU) (*models.Record, error) {
	var record *models.Record

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = getOrCreateTodayTx(tx, userID, truncateToDay(now))
		if txErr != nil {
			return txErr
		}

		record.Goal = goal
		record.Calories = kbju.Calories
		record.ProteinG = kbju.ProteinG
		record.FatG = kbju.FatG
		record.CarbsG = kbju.CarbsG

		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// findByDateTx ищет замер пользователя за календарный день
func findByDateTx(tx *gorm.DB, userID uint, date time.Time) (*models.Record, error) {
	var record models.Record
	if err := tx.Where("user_id = ? AND date = ?", userID, date).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// getOrCreateTodayTx возвращает замер за день date, создавая его
// копией последнего замера пользователя при отсутствии
func getOrCreateTodayTx(tx *gorm.DB, userID uint, date time.Time) (*models.Record, error) {
	record, err := findByDateTx(tx, userID, date)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var latest models.Record
	if err := tx.Where("user_id = ?", userID).Order("date DESC").First(&latest).Error; err != nil {
		return nil, err
	}

	latest.ID = 0
	latest.Date = date
	if err := tx.Create(&latest).Error; err != nil {
		return nil, err
	}
	return &latest, nil
}

// truncateToDay отбрасывает время, оставляя календарный день в UTC
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
