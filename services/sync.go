package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// SyncItem mirrors one log row into the remote document, trimmed to what the
// dashboard renders.
type SyncItem struct {
	Name   string  `json:"name"`
	Cals   int     `json:"cals"`
	Prot   float64 `json:"prot"`
	Carbs  float64 `json:"carbs"`
	Fats   float64 `json:"fats"`
	Score  *int    `json:"score"`
	Period string  `json:"period"`
}

// SyncSnapshot is the full per-user mirror document: current totals, goal,
// macro breakdown and today's flat item list.
type SyncSnapshot struct {
	UserID    string     `json:"user_id"`
	TotalCals int        `json:"total_cals"`
	GoalCals  int        `json:"goal_cals"`
	Protein   float64    `json:"protein"`
	Carbs     float64    `json:"carbs"`
	Fats      float64    `json:"fats"`
	Logs      []SyncItem `json:"logs"`
	UpdatedAt time.Time  `json:"last_updated"`
}

// SyncTarget receives best-effort mirror writes. Implementations must treat
// Publish as advisory: an error is logged by the dispatcher and then
// forgotten.
type SyncTarget interface {
	Publish(ctx context.Context, snap SyncSnapshot) error
}

// SyncDispatcher pushes the current snapshot to every configured target
// after a mutating operation. It is always fire-and-forget: nothing here may
// block, fail or roll back the logging operation that triggered it. With no
// targets configured the dispatcher is a no-op.
type SyncDispatcher struct {
	logs    *LogService
	targets []SyncTarget
	logger  zerolog.Logger
}

func NewSyncDispatcher(logs *LogService, logger zerolog.Logger, targets ...SyncTarget) *SyncDispatcher {
	return &SyncDispatcher{logs: logs, targets: targets, logger: logger}
}

// Snapshot assembles the mirror document from durable state.
func (d *SyncDispatcher) Snapshot(userID string, now time.Time) (SyncSnapshot, error) {
	user, err := d.logs.GetUser(userID)
	if err != nil {
		return SyncSnapshot{}, err
	}
	items, err := d.logs.DailyItems(userID, now)
	if err != nil {
		return SyncSnapshot{}, err
	}
	sum := Aggregate(items)

	snap := SyncSnapshot{
		UserID:    userID,
		TotalCals: sum.TotalCalories,
		GoalCals:  user.DailyCalorieGoal,
		Protein:   sum.TotalProtein,
		Carbs:     sum.TotalCarbs,
		Fats:      sum.TotalFats,
		Logs:      make([]SyncItem, 0, len(items)),
		UpdatedAt: now,
	}
	for _, it := range items {
		snap.Logs = append(snap.Logs, SyncItem{
			Name:   it.FoodName,
			Cals:   it.Calories,
			Prot:   it.Protein,
			Carbs:  it.Carbs,
			Fats:   it.Fats,
			Score:  it.HealthScore,
			Period: it.MealPeriod,
		})
	}
	return snap, nil
}

// SyncUser mirrors the user's current state in the background. Failures are
// logged and never reach the caller.
func (d *SyncDispatcher) SyncUser(userID string) {
	if len(d.targets) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		snap, err := d.Snapshot(userID, time.Now())
		if err != nil {
			d.logger.Warn().Err(err).Str("user", userID).Msg("sync snapshot failed")
			return
		}
		for _, t := range d.targets {
			if err := t.Publish(ctx, snap); err != nil {
				d.logger.Warn().Err(err).Str("user", userID).Msg("sync publish failed")
			}
		}
	}()
}
