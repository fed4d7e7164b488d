package services

import (
	"testing"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestAggregateEmptySet(t *testing.T) {
	s := Aggregate(nil)
	assert.Equal(t, 0, s.TotalCalories)
	assert.Equal(t, 0.0, s.TotalProtein)
	assert.Equal(t, 0.0, s.TotalCarbs)
	assert.Equal(t, 0.0, s.TotalFats)
	assert.Equal(t, 0.0, s.AvgHealthScore)
	assert.Empty(t, s.FoodItems)
}

func TestAggregateSumsAndOrder(t *testing.T) {
	s := Aggregate([]models.LogItem{
		{FoodName: "Eggs", Calories: 140, Protein: 12, Carbs: 1, Fats: 10, HealthScore: intPtr(7)},
		{FoodName: "Toast", Calories: 80, Protein: 3, Carbs: 15, Fats: 1, HealthScore: intPtr(5)},
	})

	assert.Equal(t, 220, s.TotalCalories)
	assert.Equal(t, 15.0, s.TotalProtein)
	assert.Equal(t, 16.0, s.TotalCarbs)
	assert.Equal(t, 11.0, s.TotalFats)
	assert.Equal(t, 6.0, s.AvgHealthScore)
	assert.Equal(t, []string{"Eggs", "Toast"}, s.FoodItems)
}

func TestAggregateAvgSkipsUnscoredItems(t *testing.T) {
	s := Aggregate([]models.LogItem{
		{FoodName: "A", HealthScore: intPtr(8)},
		{FoodName: "B"}, // no score
	})
	assert.Equal(t, 8.0, s.AvgHealthScore)
}

func TestAggregateAvgZeroWhenNoScores(t *testing.T) {
	s := Aggregate([]models.LogItem{
		{FoodName: "A"},
		{FoodName: "B"},
	})
	assert.Equal(t, 0.0, s.AvgHealthScore)
}
