package models

import (
	"time"
)

// Пол пользователя
const (
	SexMale   = "male"
	SexFemale = "female"
)

// Цель пользователя
const (
	GoalFatLoss       = "fat_loss"
	GoalRecomposition = "recomposition"
	GoalMassGain      = "mass_gain"
)

// Диапазоны шагов в день
const (
	StepsUnder3000 = "0-3000"
	Steps3000To5K  = "3000-5000"
	Steps5KTo8K    = "5000-8000"
	Steps8KTo10K   = "8000-10000"
	StepsOver10K   = "10000+"
)

// Виды спорта
const (
	SportNone     = "none"
	SportWalking  = "walking"
	SportRunning  = "running"
	SportStrength = "strength"
	SportYoga     = "yoga"
	SportSwimming = "swimming"
	SportCycling  = "cycling"
	SportTeam     = "team"
)

// Частота тренировок в неделю
const (
	Freq1To2    = "1-2"
	Freq3To4    = "3-4"
	Freq5AndUp  = "5+"
)

// Вид списка пищевых предпочтений
const (
	FoodKindLikes    = "likes"
	FoodKindDislikes = "dislikes"
)

// User представляет основную модель пользователя
type User struct {
	ID         uint   `gorm:"primaryKey"`
	TelegramID int64  `gorm:"uniqueIndex"`
	LastName   string
	FirstName  string
	BirthDate  time.Time `gorm:"type:date"`
	HeightCm   int
	Sex        string
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	// Связи
	Records         []Record         `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	FoodPreferences []FoodPreference `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// Record представляет замер пользователя за календарный день.
// На пару (user_id, date) приходится не более одной записи.
type Record struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"uniqueIndex:idx_user_date"`
	Date       time.Time `gorm:"uniqueIndex:idx_user_date;type:date"`
	WeightKg   float64
	Steps      string
	SportType  string
	SportFreq  string
	WaistCm    float64
	NeckCm     float64
	HipCm      *float64
	BodyFatPct float64
	Goal       string
	Calories   int
	ProteinG   int
	FatG       int
	CarbsG     int
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

// FoodPreference представляет элемент списка «любимое/нелюбимое»
type FoodPreference struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	Kind      string
	Item      string
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// TableName устанавливает имя таблицы для модели User
func (User) TableName() string {
	return "users"
}

// TableName устанавливает имя таблицы для модели Record
func (Record) TableName() string {
	return "records"
}

// TableName устанавливает имя таблицы для модели FoodPreference
func (FoodPreference) TableName() string {
	return "food_preferences"
}
