package services

import (
	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"
)

// DailySummary is the aggregate over a set of log items, for one meal group
// or for one user-day. It is always recomputed as a fold over the rows; no
// running counter is kept anywhere.
type DailySummary struct {
	TotalCalories  int      `json:"total_calories"`
	TotalProtein   float64  `json:"total_protein"`
	TotalCarbs     float64  `json:"total_carbs"`
	TotalFats      float64  `json:"total_fats"`
	AvgHealthScore float64  `json:"avg_health_score"`
	FoodItems      []string `json:"food_items"`
}

// Aggregate folds a finite item set into totals. The empty set is fine: all
// sums zero, average zero.
func Aggregate(items []models.LogItem) DailySummary {
	s := DailySummary{FoodItems: make([]string, 0, len(items))}

	scored := 0
	scoreSum := 0
	for _, it := range items {
		s.TotalCalories += it.Calories
		s.TotalProtein += it.Protein
		s.TotalCarbs += it.Carbs
		s.TotalFats += it.Fats
		s.FoodItems = append(s.FoodItems, it.FoodName)

		if it.HealthScore != nil {
			scoreSum += *it.HealthScore
			scored++
		}
	}
	if scored > 0 {
		s.AvgHealthScore = float64(scoreSum) / float64(scored)
	}
	return s
}
