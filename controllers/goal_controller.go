package controllers

import (
	"net/http"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/services"

	"github.com/gin-gonic/gin"
)

type GoalController struct {
	Logs *services.LogService
	Conv *services.ConversationService
}

func NewGoalController(logs *services.LogService, conv *services.ConversationService) *GoalController {
	return &GoalController{Logs: logs, Conv: conv}
}

// GET /goals returns the goal plus today's consumption for the dashboard ring.
func (g *GoalController) GetGoals(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := g.Logs.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	summary, err := g.Logs.DailySummary(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goal_calories": user.DailyCalorieGoal,
		"consumed":      summary,
	})
}

// PUT /goals sets the goal manually from the dashboard.
func (g *GoalController) UpdateGoal(c *gin.Context) {
	userID := c.GetString("userID")

	var req struct {
		Calories int `json:"calories" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := g.Conv.SetManualGoal(userID, req.Calories); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /profile
func (g *GoalController) GetProfile(c *gin.Context) {
	userID := c.GetString("userID")

	user, err := g.Logs.GetUser(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":            user.UserID,
		"username":           user.Username,
		"daily_calorie_goal": user.DailyCalorieGoal,
		"age":                user.Age,
		"gender":             user.Gender,
		"weight":             user.Weight,
		"height":             user.Height,
		"activity_level":     user.ActivityLevel,
	})
}
