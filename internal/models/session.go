package models

import (
	"time"
)

// Сценарии диалога
const (
	FlowRegistration = "registration"
	FlowUpdate       = "update"
	FlowEdit         = "edit"
)

// DialogSession хранит черновик диалога между шагами.
// Сессия ключуется парой (UserID, ChatID) и живет в Redis.
type DialogSession struct {
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	Flow      string    `json:"flow"`
	Step      string    `json:"step"`
	LastName  string    `json:"last_name,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	BirthDate time.Time `json:"birth_date,omitempty"`
	HeightCm  int       `json:"height_cm,omitempty"`
	Sex       string    `json:"sex,omitempty"`
	WeightKg  float64   `json:"weight_kg,omitempty"`
	Steps     string    `json:"steps,omitempty"`
	SportType string    `json:"sport_type,omitempty"`
	SportFreq string    `json:"sport_freq,omitempty"`
	WaistCm   float64   `json:"waist_cm,omitempty"`
	NeckCm    float64   `json:"neck_cm,omitempty"`
	HipCm     *float64  `json:"hip_cm,omitempty"`
	Goal      string    `json:"goal,omitempty"`
	StartedAt time.Time `json:"started_at"`
}
