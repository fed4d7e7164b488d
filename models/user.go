package models

import (
	"gorm.io/gorm"
)

// User is keyed by the chat provider's opaque id; we never mint our own.
type User struct {
	gorm.Model
	UserID           string `gorm:"uniqueIndex;not null"`
	Username         string
	DailyCalorieGoal int `gorm:"default:2000"`

	// Optional profile, filled by the goal-setup flow
	Age           int
	Gender        string
	Weight        float64 // kg
	Height        float64 // cm
	ActivityLevel string
}
