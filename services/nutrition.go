package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"
)

// OracleItem is one candidate food row as returned by the vision/text
// oracle. Everything besides the name is optional; the oracle is untrusted
// and may omit or garble any field.
type OracleItem struct {
	Item           string  `json:"item"`
	Calories       float64 `json:"calories"`
	Protein        float64 `json:"protein"`
	Carbs          float64 `json:"carbs"`
	Fats           float64 `json:"fats"`
	WeightG        float64 `json:"weight_g"`
	Micronutrients string  `json:"micronutrients"`
	HealthScore    *int    `json:"health_score"`
	MealPeriod     string  `json:"meal_period"`
}

// ProductRecord is a canonical per-100g nutrition record from the product
// database (barcode or name lookup).
type ProductRecord struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"` // kcal per 100g
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Unit     string  `json:"unit"` // always "100g"
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func clampNonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func validMealPeriod(p string) bool {
	switch p {
	case models.PeriodBreakfast, models.PeriodLunch, models.PeriodDinner, models.PeriodSnack:
		return true
	}
	return false
}

// MealPeriodForHour buckets a wall-clock hour into a meal period.
func MealPeriodForHour(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return models.PeriodBreakfast
	case hour >= 11 && hour < 15:
		return models.PeriodLunch
	case hour >= 18 && hour < 22:
		return models.PeriodDinner
	default:
		return models.PeriodSnack
	}
}

// NormalizeOracleItems turns raw oracle output into LogItem values with the
// canonical defaults applied: missing calories/macros become 0 (negatives
// are clamped, never stored), micronutrients default to "N/A", health score
// to 5, meal period to Snack.
func NormalizeOracleItems(userID string, raw []OracleItem, now time.Time) []models.LogItem {
	items := make([]models.LogItem, 0, len(raw))
	for _, r := range raw {
		name := strings.TrimSpace(r.Item)
		if name == "" {
			name = "Unknown food"
		}

		micro := strings.TrimSpace(r.Micronutrients)
		if micro == "" {
			micro = "N/A"
		}

		score := 5
		if r.HealthScore != nil {
			score = *r.HealthScore
			if score < 1 {
				score = 1
			} else if score > 10 {
				score = 10
			}
		}

		period := r.MealPeriod
		if !validMealPeriod(period) {
			period = models.PeriodSnack
		}

		items = append(items, models.LogItem{
			UserID:         userID,
			FoodName:       name,
			Calories:       int(math.Round(clampNonNegative(r.Calories))),
			Protein:        round1(clampNonNegative(r.Protein)),
			Carbs:          round1(clampNonNegative(r.Carbs)),
			Fats:           round1(clampNonNegative(r.Fats)),
			Micronutrients: micro,
			HealthScore:    &score,
			MealPeriod:     period,
			LoggedAt:       now,
		})
	}
	return items
}

// ParsePortionGrams parses the user's portion answer into grams. "1", "100"
// and "100g" are all shorthand for 100g; otherwise the input is a float with
// an optional trailing "g", comma decimals accepted. Malformed input yields
// ErrValidation so the caller re-prompts without consuming anything.
func ParsePortionGrams(text string) (float64, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.TrimSuffix(s, "g")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")

	if s == "1" {
		return 100, nil
	}
	grams, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(grams) || math.IsInf(grams, 0) || grams <= 0 {
		return 0, fmt.Errorf("%w: cannot read %q as grams", ErrValidation, text)
	}
	return grams, nil
}

// ScaleProduct builds one LogItem from a per-100g product record and a gram
// amount. The meal period is derived from the wall clock, not asked.
func ScaleProduct(userID string, p ProductRecord, grams float64, now time.Time) models.LogItem {
	mult := grams / 100

	return models.LogItem{
		UserID:         userID,
		FoodName:       p.Name,
		Calories:       int(math.Round(clampNonNegative(p.Calories) * mult)),
		Protein:        round1(clampNonNegative(p.Protein) * mult),
		Carbs:          round1(clampNonNegative(p.Carbs) * mult),
		Fats:           round1(clampNonNegative(p.Fats) * mult),
		Micronutrients: "N/A",
		MealPeriod:     MealPeriodForHour(now.Hour()),
		LoggedAt:       now,
	}
}
