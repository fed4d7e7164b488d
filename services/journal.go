package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"
	"github.com/Amrani-Sohaib/AI-nutrition-bot/utils"
)

// JournalView is one rendering of a meal group or a user-day: the aggregate
// summary, plus per-item blocks when expanded. Whether it is expanded comes
// solely from the triggering event, never from memory, so the toggle
// survives restarts and concurrent viewers.
type JournalView struct {
	Key          string            `json:"key"` // group id, or "today"
	Expanded     bool              `json:"expanded"`
	Empty        bool              `json:"empty"`
	Summary      DailySummary      `json:"summary"`
	GoalCalories int               `json:"goal_calories,omitempty"`
	Items        []models.LogItem  `json:"items,omitempty"`
	Text         string            `json:"text"`
}

type JournalService struct {
	logs *LogService
}

func NewJournalService(logs *LogService) *JournalService {
	return &JournalService{logs: logs}
}

// BuildDay renders "today" for a user. goal <= 0 hides the goal line.
func (s *JournalService) BuildDay(userID string, now time.Time, expanded bool) (JournalView, error) {
	items, err := s.logs.DailyItems(userID, now)
	if err != nil {
		return JournalView{}, err
	}
	goal := 0
	if user, err := s.logs.GetUser(userID); err == nil {
		goal = user.DailyCalorieGoal
	}
	return s.build("today", items, goal, expanded), nil
}

// BuildGroup renders one meal group.
func (s *JournalService) BuildGroup(groupID string, expanded bool) (JournalView, error) {
	items, err := s.logs.GetGroup(groupID)
	if err != nil {
		return JournalView{}, err
	}
	return s.build(groupID, items, 0, expanded), nil
}

func (s *JournalService) build(key string, items []models.LogItem, goal int, expanded bool) JournalView {
	v := JournalView{Key: key, Expanded: expanded, GoalCalories: goal}

	if len(items) == 0 {
		// the underlying rows may have been deleted since the toggle was
		// shown; render an empty state, never an error
		v.Empty = true
		v.Text = "Nothing logged here yet. 🍽️"
		return v
	}

	v.Summary = Aggregate(items)
	if expanded {
		v.Items = items
	}
	v.Text = renderJournal(v)
	return v
}

func renderJournal(v JournalView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🍱 Total: %d kcal", v.Summary.TotalCalories)
	if v.GoalCalories > 0 {
		fmt.Fprintf(&b, " / %d kcal goal", v.GoalCalories)
		if left := v.GoalCalories - v.Summary.TotalCalories; left > 0 {
			fmt.Fprintf(&b, " (%d left)", left)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "💪 Protein: %.1fg | 🍞 Carbs: %.1fg | 🥑 Fats: %.1fg\n",
		v.Summary.TotalProtein, v.Summary.TotalCarbs, v.Summary.TotalFats)
	if v.Summary.AvgHealthScore > 0 {
		fmt.Fprintf(&b, "❤️ Health score: %.1f/10\n", v.Summary.AvgHealthScore)
	}

	if bars := utils.MacroBars(v.Summary.TotalProtein, v.Summary.TotalCarbs, v.Summary.TotalFats); bars != "" {
		b.WriteString(bars)
		b.WriteString("\n")
	}

	if v.Expanded {
		for _, it := range v.Items {
			fmt.Fprintf(&b, "\n• %s: %d kcal (P %.1f / C %.1f / F %.1f)",
				it.FoodName, it.Calories, it.Protein, it.Carbs, it.Fats)
			if it.Micronutrients != "" && it.Micronutrients != "N/A" {
				fmt.Fprintf(&b, "\n  %s", it.Micronutrients)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
