package services

import (
	"testing"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortionGrams(t *testing.T) {
	tests := []struct {
		in    string
		grams float64
		ok    bool
	}{
		{"1", 100, true},
		{"100", 100, true},
		{"100g", 100, true},
		{"250", 250, true},
		{"250g", 250, true},
		{" 250 g ", 250, true},
		{"72,5", 72.5, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-50", 0, false},
		{"0", 0, false},
	}
	for _, tt := range tests {
		grams, err := ParsePortionGrams(tt.in)
		if tt.ok {
			require.NoError(t, err, "input %q", tt.in)
			assert.Equal(t, tt.grams, grams, "input %q", tt.in)
		} else {
			assert.ErrorIs(t, err, ErrValidation, "input %q", tt.in)
		}
	}
}

func TestMealPeriodForHourBoundaries(t *testing.T) {
	tests := []struct {
		hour   int
		period string
	}{
		{4, models.PeriodSnack},
		{5, models.PeriodBreakfast},
		{10, models.PeriodBreakfast},
		{11, models.PeriodLunch},
		{14, models.PeriodLunch},
		{15, models.PeriodSnack},
		{17, models.PeriodSnack},
		{18, models.PeriodDinner},
		{21, models.PeriodDinner},
		{22, models.PeriodSnack},
		{0, models.PeriodSnack},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.period, MealPeriodForHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestNormalizeOracleItemsDefaults(t *testing.T) {
	now := time.Now()
	items := NormalizeOracleItems("u1", []OracleItem{
		{Item: "Grilled Chicken", Calories: 200, Protein: 40, Carbs: 0, Fats: 5},
		{}, // everything missing
	}, now)

	require.Len(t, items, 2)

	chicken := items[0]
	assert.Equal(t, "Grilled Chicken", chicken.FoodName)
	assert.Equal(t, 200, chicken.Calories)
	assert.Equal(t, 40.0, chicken.Protein)
	assert.Equal(t, "N/A", chicken.Micronutrients)
	require.NotNil(t, chicken.HealthScore)
	assert.Equal(t, 5, *chicken.HealthScore)
	assert.Equal(t, models.PeriodSnack, chicken.MealPeriod)

	empty := items[1]
	assert.Equal(t, "Unknown food", empty.FoodName)
	assert.Equal(t, 0, empty.Calories)
	assert.Equal(t, 0.0, empty.Protein)
	assert.Equal(t, "N/A", empty.Micronutrients)
}

func TestNormalizeOracleItemsClampsNegatives(t *testing.T) {
	items := NormalizeOracleItems("u1", []OracleItem{
		{Item: "Weird", Calories: -50, Protein: -1, Carbs: -2, Fats: -3},
	}, time.Now())

	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Calories)
	assert.Equal(t, 0.0, items[0].Protein)
	assert.Equal(t, 0.0, items[0].Carbs)
	assert.Equal(t, 0.0, items[0].Fats)
}

func TestNormalizeOracleItemsClampsHealthScore(t *testing.T) {
	low, high := -3, 42
	items := NormalizeOracleItems("u1", []OracleItem{
		{Item: "a", HealthScore: &low},
		{Item: "b", HealthScore: &high},
	}, time.Now())

	assert.Equal(t, 1, *items[0].HealthScore)
	assert.Equal(t, 10, *items[1].HealthScore)
}

func TestScaleProduct(t *testing.T) {
	// 250 kcal / 10p / 30c / 8f per 100g, at 150g
	product := ProductRecord{Name: "Granola", Calories: 250, Protein: 10, Carbs: 30, Fats: 8, Unit: "100g"}
	now := time.Date(2025, 3, 10, 12, 30, 0, 0, time.Local)

	item := ScaleProduct("u1", product, 150, now)

	assert.Equal(t, "Granola", item.FoodName)
	assert.Equal(t, 375, item.Calories)
	assert.Equal(t, 15.0, item.Protein)
	assert.Equal(t, 45.0, item.Carbs)
	assert.Equal(t, 12.0, item.Fats)
	assert.Equal(t, models.PeriodLunch, item.MealPeriod) // 12:30
	assert.Nil(t, item.HealthScore)
}

func TestScaleProductRounding(t *testing.T) {
	product := ProductRecord{Name: "Cheese", Calories: 333, Protein: 21.4, Carbs: 1.3, Fats: 27.7}
	item := ScaleProduct("u1", product, 37, time.Date(2025, 3, 10, 8, 0, 0, 0, time.Local))

	assert.Equal(t, 123, item.Calories)  // 123.21 → 123
	assert.Equal(t, 7.9, item.Protein)   // 7.918
	assert.Equal(t, 0.5, item.Carbs)     // 0.481
	assert.Equal(t, 10.2, item.Fats)     // 10.249
	assert.Equal(t, models.PeriodBreakfast, item.MealPeriod)
}
