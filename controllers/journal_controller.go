package controllers

import (
	"net/http"
	"time"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/services"

	"github.com/gin-gonic/gin"
)

type JournalController struct {
	Journal *services.JournalService
	Logs    *services.LogService
}

func NewJournalController(journal *services.JournalService, logs *services.LogService) *JournalController {
	return &JournalController{Journal: journal, Logs: logs}
}

// GET /journal?group=<id>&date=YYYY-MM-DD&expanded=true renders today by
// default, a past day with ?date, or a meal group when ?group is given.
func (j *JournalController) GetJournal(c *gin.Context) {
	userID := c.GetString("userID")
	expanded := c.Query("expanded") == "true"

	var (
		view services.JournalView
		err  error
	)
	if group := c.Query("group"); group != "" {
		view, err = j.Journal.BuildGroup(group, expanded)
	} else {
		day := time.Now()
		if d := c.Query("date"); d != "" {
			parsed, perr := time.ParseInLocation("2006-01-02", d, time.Local)
			if perr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
				return
			}
			day = parsed
		}
		view, err = j.Journal.BuildDay(userID, day, expanded)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /journal/items returns today's raw rows for the dashboard list.
func (j *JournalController) GetItems(c *gin.Context) {
	userID := c.GetString("userID")
	items, err := j.Logs.DailyItems(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}
