package seed

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"KbjuCoachService/internal/models"
	"KbjuCoachService/internal/repository/postgres"
)

// DevEnvironmentSeeder обрабатывает заполнение тестовыми данными среды разработки
type DevEnvironmentSeeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewDevEnvironmentSeeder создает новый объект для заполнения тестовыми данными
func NewDevEnvironmentSeeder(db *gorm.DB, logger *zap.Logger) *DevEnvironmentSeeder {
	return &DevEnvironmentSeeder{
		db:     db,
		logger: logger,
	}
}

// SeedTestUser создает тестового пользователя с историей замеров,
// если мы находимся в режиме разработки
func (s *DevEnvironmentSeeder) SeedTestUser() error {
	if os.Getenv("APP_ENV") != "development" {
		s.logger.Debug("Не в режиме разработки, пропускаем создание тестового пользователя")
		return nil
	}

	s.logger.Info("Заполнение тестовым пользователем для среды разработки")

	repo := postgres.NewUserRepository(s.db)

	existingUser, err := repo.GetByTelegramID(1)
	if err == nil && existingUser != nil {
		s.logger.Info("Тестовый пользователь уже существует", zap.Uint("user_id", existingUser.ID))
		return nil
	}

	testUser := &models.User{
		TelegramID: 1,
		LastName:   "Тестов",
		FirstName:  "Тест",
		BirthDate:  time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		HeightCm:   178,
		Sex:        models.SexMale,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(testUser).Error; err != nil {
			return fmt.Errorf("не удалось создать тестового пользователя: %w", err)
		}

		// Две недели замеров, чтобы отчет о прогрессе было на чем строить
		now := time.Now().UTC()
		records := []models.Record{
			{
				UserID:     testUser.ID,
				Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -14),
				WeightKg:   82,
				Steps:      models.Steps5KTo8K,
				SportType:  models.SportStrength,
				SportFreq:  models.Freq3To4,
				WaistCm:    88,
				NeckCm:     38,
				BodyFatPct: 18.6,
				Goal:       models.GoalFatLoss,
				Calories:   2460,
				ProteinG:   164,
				FatG:       82,
				CarbsG:     267,
			},
			{
				UserID:     testUser.ID,
				Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -7),
				WeightKg:   80.8,
				Steps:      models.Steps5KTo8K,
				SportType:  models.SportStrength,
				SportFreq:  models.Freq3To4,
				WaistCm:    86,
				NeckCm:     38,
				BodyFatPct: 17.3,
				Goal:       models.GoalFatLoss,
				Calories:   2448,
				ProteinG:   162,
				FatG:       81,
				CarbsG:     268,
			},
			{
				UserID:     testUser.ID,
				Date:       time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
				WeightKg:   79.5,
				Steps:      models.Steps8KTo10K,
				SportType:  models.SportStrength,
				SportFreq:  models.Freq3To4,
				WaistCm:    85,
				NeckCm:     38,
				BodyFatPct: 16.7,
				Goal:       models.GoalFatLoss,
				Calories:   2539,
				ProteinG:   159,
				FatG:       80,
				CarbsG:     297,
			},
		}
		for i := range records {
			if err := tx.Create(&records[i]).Error; err != nil {
				return fmt.Errorf("не удалось создать тестовый замер: %w", err)
			}
		}

		preferences := []models.FoodPreference{
			{UserID: testUser.ID, Kind: models.FoodKindLikes, Item: "гречка"},
			{UserID: testUser.ID, Kind: models.FoodKindLikes, Item: "курица"},
			{UserID: testUser.ID, Kind: models.FoodKindDislikes, Item: "брокколи"},
		}
		for _, pref := range preferences {
			if err := tx.Create(&pref).Error; err != nil {
				return fmt.Errorf("не удалось создать тестовое предпочтение: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		s.logger.Error("Не удалось заполнить тестовым пользователем", zap.Error(err))
		return err
	}

	s.logger.Info("Успешно создан тестовый пользователь", zap.Uint("user_id", testUser.ID))
	return nil
}

// SeedAllDevData заполняет все данные для разработки
func (s *DevEnvironmentSeeder) SeedAllDevData(ctx context.Context) error {
	return s.SeedTestUser()
}
