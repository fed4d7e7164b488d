package services

import (
	"fmt"
	"strings"
)

// GoalResult is a computed daily target, from either the deterministic
// calculator or the oracle.
type GoalResult struct {
	Calories    int    `json:"calories"`
	Protein     int    `json:"protein"`
	Carbs       int    `json:"carbs"`
	Fats        int    `json:"fats"`
	Explanation string `json:"explanation"`
}

var activityMultipliers = []struct {
	label string
	mult  float64
}{
	{"Sedentary", 1.2},
	{"Lightly Active", 1.375},
	{"Moderately Active", 1.55},
	{"Very Active", 1.725},
}

// ActivityLevels lists the selectable labels, in menu order.
func ActivityLevels() []string {
	out := make([]string, len(activityMultipliers))
	for i, a := range activityMultipliers {
		out[i] = a.label
	}
	return out
}

// CalculateDailyGoals applies Mifflin-St Jeor and a 30/40/30 macro split.
// Activity labels match by substring; anything unrecognized counts as
// sedentary. Gender starting with "m" uses the male constant, everything
// else the female one.
func CalculateDailyGoals(age int, gender string, weightKg, heightCm float64, activity string) GoalResult {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if strings.HasPrefix(strings.ToLower(gender), "m") {
		bmr += 5
	} else {
		bmr -= 161
	}

	mult := 1.2
	for _, a := range activityMultipliers {
		if strings.Contains(activity, a.label) {
			mult = a.mult
			break
		}
	}

	tdee := int(bmr * mult)

	return GoalResult{
		Calories: tdee,
		Protein:  int(float64(tdee) * 0.30 / 4),
		Fats:     int(float64(tdee) * 0.30 / 9),
		Carbs:    int(float64(tdee) * 0.40 / 4),
		Explanation: fmt.Sprintf(
			"Calculated using Mifflin-St Jeor equation.\nBMR: %d kcal | TDEE: %d kcal\nSplit: 30%% Protein, 40%% Carbs, 30%% Fats",
			int(bmr), tdee),
	}
}
