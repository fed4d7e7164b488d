package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogService is the store adapter for log rows and meal groups. Rows are
// write-once: created in groups, deleted individually or per-day, never
// updated in place.
type LogService struct {
	db *gorm.DB
}

func NewLogService(db *gorm.DB) *LogService {
	return &LogService{db: db}
}

func dayStartLocal(t time.Time) time.Time {
	loc := time.Local
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

// CreateGroup persists a batch of items logged by one user action under a
// fresh group id. The insert is a single transaction: all rows become
// visible together or not at all.
func (s *LogService) CreateGroup(userID string, items []models.LogItem) (string, error) {
	groupID := uuid.NewString()
	if err := s.CreateGroupWithID(groupID, userID, items); err != nil {
		return "", err
	}
	return groupID, nil
}

// CreateGroupWithID is the retry-safe variant: re-running it with a group id
// that already has rows is a no-op, so an at-least-once caller never double
// counts. A group id is never added to after the first successful insert.
func (s *LogService) CreateGroupWithID(groupID, userID string, items []models.LogItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.LogItem{}).
			Where("meal_group_id = ?", groupID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil // already committed by an earlier attempt
		}
		for i := range items {
			items[i].UserID = userID
			items[i].MealGroupID = groupID
			if items[i].LoggedAt.IsZero() {
				items[i].LoggedAt = time.Now()
			}
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return fmt.Errorf("create meal group %s: %w", groupID, err)
	}
	return nil
}

// GetGroup returns the items sharing a group id, oldest first. A deleted or
// unknown group is just an empty slice.
func (s *LogService) GetGroup(groupID string) ([]models.LogItem, error) {
	var items []models.LogItem
	err := s.db.
		Where("meal_group_id = ?", groupID).
		Order("id asc").
		Find(&items).Error
	return items, err
}

func (s *LogService) DeleteItem(itemID uint) error {
	return s.db.Delete(&models.LogItem{}, itemID).Error
}

// ClearToday removes every item the user logged in the current local day.
func (s *LogService) ClearToday(userID string, now time.Time) error {
	start := dayStartLocal(now)
	end := start.Add(24 * time.Hour)
	return s.db.
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Delete(&models.LogItem{}).Error
}

// DailyItems returns the user's items for the local day containing now,
// oldest first.
func (s *LogService) DailyItems(userID string, now time.Time) ([]models.LogItem, error) {
	start := dayStartLocal(now)
	end := start.Add(24 * time.Hour)
	var items []models.LogItem
	err := s.db.
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start, end).
		Order("id asc").
		Find(&items).Error
	return items, err
}

// DailySummary folds today's items into totals.
func (s *LogService) DailySummary(userID string, now time.Time) (DailySummary, error) {
	items, err := s.DailyItems(userID, now)
	if err != nil {
		return DailySummary{}, err
	}
	return Aggregate(items), nil
}

// EnsureUser registers the user on first contact, keeping the existing row
// (and goal) on repeat /start.
func (s *LogService) EnsureUser(userID, username string) (*models.User, error) {
	var user models.User
	err := s.db.
		Where(models.User{UserID: userID}).
		Attrs(models.User{Username: username, DailyCalorieGoal: 2000}).
		FirstOrCreate(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LogService) GetUser(userID string) (*models.User, error) {
	var user models.User
	err := s.db.Where("user_id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *LogService) SetCalorieGoal(userID string, goal int) error {
	return s.db.Model(&models.User{}).
		Where("user_id = ?", userID).
		Update("daily_calorie_goal", goal).Error
}

// SaveProfile stores the collected profile fields together with the goal
// computed from them.
func (s *LogService) SaveProfile(userID string, age int, gender string, weight, height float64, activity string, goal int) error {
	return s.db.Model(&models.User{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"age":                age,
			"gender":             gender,
			"weight":             weight,
			"height":             height,
			"activity_level":     activity,
			"daily_calorie_goal": goal,
		}).Error
}
