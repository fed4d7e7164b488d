package services

import (
	"testing"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.LogItem{}))
	return db
}

func TestCreateGroupRoundTrip(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	now := time.Now()

	groupID, err := svc.CreateGroup("u1", []models.LogItem{
		{FoodName: "Eggs", Calories: 140, Protein: 12.0, Carbs: 1.0, Fats: 10.0, Micronutrients: "N/A", HealthScore: intPtr(7), MealPeriod: models.PeriodBreakfast, LoggedAt: now},
		{FoodName: "Toast", Calories: 80, Protein: 3.0, Carbs: 15.0, Fats: 1.0, Micronutrients: "N/A", HealthScore: intPtr(5), MealPeriod: models.PeriodBreakfast, LoggedAt: now},
	})
	require.NoError(t, err)
	require.NotEmpty(t, groupID)

	items, err := svc.GetGroup(groupID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// field fidelity after the round trip
	assert.Equal(t, "Eggs", items[0].FoodName)
	assert.Equal(t, 140, items[0].Calories)
	assert.Equal(t, 12.0, items[0].Protein)
	assert.Equal(t, 1.0, items[0].Carbs)
	assert.Equal(t, 10.0, items[0].Fats)
	require.NotNil(t, items[0].HealthScore)
	assert.Equal(t, 7, *items[0].HealthScore)
	assert.Equal(t, models.PeriodBreakfast, items[0].MealPeriod)

	for _, it := range items {
		assert.Equal(t, groupID, it.MealGroupID)
		assert.Equal(t, "u1", it.UserID)
	}
}

func TestCreateGroupWithIDIsIdempotent(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	now := time.Now()

	groupID := "fixed-group-id"
	payload := func() []models.LogItem {
		return []models.LogItem{
			{FoodName: "Eggs", Calories: 140, LoggedAt: now},
			{FoodName: "Toast", Calories: 80, LoggedAt: now},
		}
	}

	require.NoError(t, svc.CreateGroupWithID(groupID, "u1", payload()))
	// retried delivery of the same batch must not double count
	require.NoError(t, svc.CreateGroupWithID(groupID, "u1", payload()))

	items, err := svc.GetGroup(groupID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	sum, err := svc.DailySummary("u1", now)
	require.NoError(t, err)
	assert.Equal(t, 220, sum.TotalCalories)
}

func TestGetGroupUnknownIsEmpty(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	items, err := svc.GetGroup("no-such-group")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDailySummaryFoldsOnlyToday(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	now := time.Now()

	_, err := svc.CreateGroup("u1", []models.LogItem{
		{FoodName: "Yesterday", Calories: 999, LoggedAt: now.Add(-26 * time.Hour)},
	})
	require.NoError(t, err)
	_, err = svc.CreateGroup("u1", []models.LogItem{
		{FoodName: "Lunch", Calories: 500, Protein: 20.0, LoggedAt: now},
	})
	require.NoError(t, err)
	_, err = svc.CreateGroup("u2", []models.LogItem{
		{FoodName: "Other user", Calories: 300, LoggedAt: now},
	})
	require.NoError(t, err)

	sum, err := svc.DailySummary("u1", now)
	require.NoError(t, err)
	assert.Equal(t, 500, sum.TotalCalories)
	assert.Equal(t, 20.0, sum.TotalProtein)
	assert.Equal(t, []string{"Lunch"}, sum.FoodItems)
}

func TestDeleteItem(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	now := time.Now()

	groupID, err := svc.CreateGroup("u1", []models.LogItem{
		{FoodName: "A", Calories: 100, LoggedAt: now},
		{FoodName: "B", Calories: 200, LoggedAt: now},
	})
	require.NoError(t, err)

	items, err := svc.GetGroup(groupID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NoError(t, svc.DeleteItem(items[0].ID))

	items, err = svc.GetGroup(groupID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "B", items[0].FoodName)
}

func TestClearToday(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	now := time.Now()

	_, err := svc.CreateGroup("u1", []models.LogItem{
		{FoodName: "Old", Calories: 999, LoggedAt: now.Add(-26 * time.Hour)},
		{FoodName: "New", Calories: 100, LoggedAt: now},
	})
	require.NoError(t, err)

	require.NoError(t, svc.ClearToday("u1", now))

	sum, err := svc.DailySummary("u1", now)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.TotalCalories)

	// yesterday's row survives
	var count int64
	require.NoError(t, svc.db.Model(&models.LogItem{}).Where("user_id = ?", "u1").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEnsureUserKeepsExistingGoal(t *testing.T) {
	svc := NewLogService(newTestDB(t))

	user, err := svc.EnsureUser("u1", "alex")
	require.NoError(t, err)
	assert.Equal(t, 2000, user.DailyCalorieGoal)

	require.NoError(t, svc.SetCalorieGoal("u1", 2500))

	// repeat /start must not reset the goal
	user, err = svc.EnsureUser("u1", "alex")
	require.NoError(t, err)
	assert.Equal(t, 2500, user.DailyCalorieGoal)
}

func TestSaveProfile(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	_, err := svc.EnsureUser("u1", "alex")
	require.NoError(t, err)

	require.NoError(t, svc.SaveProfile("u1", 30, "Male", 80, 180, "Moderately Active", 2759))

	user, err := svc.GetUser("u1")
	require.NoError(t, err)
	assert.Equal(t, 30, user.Age)
	assert.Equal(t, "Male", user.Gender)
	assert.Equal(t, 80.0, user.Weight)
	assert.Equal(t, 180.0, user.Height)
	assert.Equal(t, "Moderately Active", user.ActivityLevel)
	assert.Equal(t, 2759, user.DailyCalorieGoal)
}

func TestGetUserNotFound(t *testing.T) {
	svc := NewLogService(newTestDB(t))
	_, err := svc.GetUser("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
