package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/services"

	"github.com/gin-gonic/gin"
)

// Event kinds the chat gateway can deliver.
const (
	KindStartCommand         = "StartCommand"
	KindMenuSelection        = "MenuSelection"
	KindFreeText             = "FreeText"
	KindPhoto                = "Photo"
	KindBarcodePortionAnswer = "BarcodePortionAnswer"
	KindProfileAnswer        = "ProfileAnswer"
	KindToggleDetails        = "ToggleDetails"
	KindDeleteItem           = "DeleteItem"
	KindClearToday           = "ClearToday"
	KindSetManualGoal        = "SetManualGoal"
)

type EventController struct {
	Conv *services.ConversationService
}

func NewEventController(conv *services.ConversationService) *EventController {
	return &EventController{Conv: conv}
}

type eventRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Kind   string `json:"kind" binding:"required"`

	Username    string `json:"username"`
	Text        string `json:"text"`
	Selection   string `json:"selection"`
	Caption     string `json:"caption"`
	ImageBase64 string `json:"image_base64"`
	Key         string `json:"key"`  // group id or "today"
	Show        bool   `json:"show"` // ToggleDetails direction
	ItemID      uint   `json:"item_id"`
	Goal        int    `json:"goal"`
}

// HandleEvent is the single entry point for the chat transport. The gateway
// owns message delivery and keyboards; we only map events onto the state
// machine and hand back plain data.
func (e *EventController) HandleEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reply services.Reply
	switch req.Kind {
	case KindStartCommand:
		reply = e.Conv.Start(req.UserID, req.Username)
	case KindMenuSelection:
		reply = e.Conv.Menu(req.UserID, req.Selection)
	case KindFreeText, KindBarcodePortionAnswer:
		reply = e.Conv.Text(c.Request.Context(), req.UserID, req.Text)
	case KindProfileAnswer:
		reply = e.Conv.ProfileAnswer(c.Request.Context(), req.UserID, req.Text)
	case KindPhoto:
		image, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil || len(image) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image_base64 missing or invalid"})
			return
		}
		reply = e.Conv.Photo(c.Request.Context(), req.UserID, image, req.Caption)
	case KindToggleDetails:
		reply = e.Conv.ToggleDetails(req.UserID, req.Key, req.Show)
	case KindDeleteItem:
		reply = e.Conv.DeleteItem(req.UserID, req.ItemID)
	case KindClearToday:
		reply = e.Conv.ClearToday(req.UserID)
	case KindSetManualGoal:
		if err := e.Conv.SetManualGoal(req.UserID, req.Goal); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reply = services.Reply{Text: "Goal updated."}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event kind"})
		return
	}

	c.JSON(http.StatusOK, reply)
}
