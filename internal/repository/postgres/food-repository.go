package postgres

import (
	"strings"

	"gorm.io/gorm"

	"KbjuCoachService/internal/models"
)

// FoodRepository представляет репозиторий для работы с пищевыми предпочтениями
type FoodRepository struct {
	db *gorm.DB
}

// NewFoodRepository создает новый экземпляр FoodRepository
func NewFoodRepository(db *gorm.DB) *FoodRepository {
	return &FoodRepository{
		db: db,
	}
}

// Add добавляет продукты в список предпочтений.
// Уже сохраненные продукты пропускаются без учета регистра.
func (r *FoodRepository) Add(userID uint, kind string, items []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.FoodPreference
		if err := tx.Where("user_id = ? AND kind = ?", userID, kind).Find(&existing).Error; err != nil {
			return err
		}

		seen := make(map[string]struct{}, len(existing))
		for _, p := range existing {
			seen[strings.ToLower(p.Item)] = struct{}{}
		}

		for _, item := range items {
			key := strings.ToLower(item)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			pref := models.FoodPreference{
				UserID: userID,
				Kind:   kind,
				Item:   item,
			}
			if err := tx.Create(&pref).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByKind получает список предпочтений одного вида
func (r *FoodRepository) GetByKind(userID uint, kind string) ([]models.FoodPreference, error) {
	var preferences []models.FoodPreference
	if err := r.db.Where("user_id = ? AND kind = ?", userID, kind).Order("created_at ASC").Find(&preferences).Error; err != nil {
		return nil, err
	}
	return preferences, nil
}

// GetAll получает все предпочтения пользователя
func (r *FoodRepository) GetAll(userID uint) ([]models.FoodPreference, error) {
	var preferences []models.FoodPreference
	if err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&preferences).Error; err != nil {
		return nil, err
	}
	return preferences, nil
}
