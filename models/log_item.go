package models

import (
	"time"

	"gorm.io/gorm"
)

// Meal periods. Anything we can't place defaults to a snack.
const (
	PeriodBreakfast = "Breakfast"
	PeriodLunch     = "Lunch"
	PeriodDinner    = "Dinner"
	PeriodSnack     = "Snack"
)

// LogItem is one logged food row. Rows are write-once: they are created by a
// logging action and only ever deleted, never updated.
type LogItem struct {
	gorm.Model
	UserID string `gorm:"index;not null"` // FK → users.user_id

	FoodName       string
	Calories       int     // kcal, never negative
	Protein        float64 // grams, 1 decimal
	Carbs          float64
	Fats           float64
	Micronutrients string `gorm:"default:'N/A'"`
	HealthScore    *int   // 1–10, nil when the source gave none
	MealPeriod     string `gorm:"default:'Snack'"`

	// Items logged by one user action share a MealGroupID. Empty for legacy
	// ungrouped rows.
	MealGroupID string    `gorm:"index"`
	LoggedAt    time.Time `gorm:"index"`
}
