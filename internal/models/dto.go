package models

import (
	"time"
)

// KBJU содержит рассчитанную дневную норму калорий и макронутриентов
type KBJU struct {
	Calories int `json:"calories"`
	ProteinG int `json:"protein_g"`
	FatG     int `json:"fat_g"`
	CarbsG   int `json:"carbs_g"`
}

// StepRequest представляет один шаг диалога
type StepRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	ChatID int64  `json:"chat_id" binding:"required"`
	Input  string `json:"input"`
}

// StepResponse представляет ответ движка диалога на шаг
type StepResponse struct {
	Prompt  string           `json:"prompt"`
	Done    bool             `json:"done"`
	Summary *SummaryResponse `json:"summary,omitempty"`
}

// SummaryResponse представляет сводку «мои данные»:
// профиль, последний замер и рассчитанная норма
type SummaryResponse struct {
	TelegramID int64    `json:"telegram_id"`
	LastName   string   `json:"last_name"`
	FirstName  string   `json:"first_name"`
	BirthDate  string   `json:"birth_date"`
	AgeYears   int      `json:"age_years"`
	HeightCm   int      `json:"height_cm"`
	Sex        string   `json:"sex"`
	WeightKg   float64  `json:"weight_kg"`
	WaistCm    float64  `json:"waist_cm"`
	NeckCm     float64  `json:"neck_cm"`
	HipCm      *float64 `json:"hip_cm,omitempty"`
	BodyFatPct float64  `json:"body_fat_pct"`
	Goal       string   `json:"goal"`
	KBJU       KBJU     `json:"kbju"`
}

// ProgressPoint представляет одну точку графика прогресса
type ProgressPoint struct {
	Date       time.Time `json:"date"`
	WeightKg   float64   `json:"weight_kg"`
	BodyFatPct float64   `json:"body_fat_pct"`
}

// ProgressResponse представляет отчет о прогрессе за весь период наблюдений
type ProgressResponse struct {
	Message       string          `json:"message"`
	Period        string          `json:"period"`
	WeightDelta   float64         `json:"weight_delta"`
	BodyFatDelta  float64         `json:"body_fat_delta"`
	WaistDelta    float64         `json:"waist_delta"`
	Points        []ProgressPoint `json:"points"`
}

// UpdateGoalRequest представляет запрос на смену цели
type UpdateGoalRequest struct {
	Goal string `json:"goal" binding:"required"`
}

// FoodPreferencesRequest представляет запрос на сохранение пищевых предпочтений
type FoodPreferencesRequest struct {
	Kind  string   `json:"kind" binding:"required"`
	Items []string `json:"items" binding:"required"`
}

// FoodPreferencesResponse представляет сохраненные списки предпочтений
type FoodPreferencesResponse struct {
	Likes    []string `json:"likes"`
	Dislikes []string `json:"dislikes"`
}
