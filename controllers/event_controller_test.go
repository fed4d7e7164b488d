package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Amrani-Sohaib/AI-nutrition-bot/models"
	"github.com/Amrani-Sohaib/AI-nutrition-bot/services"
)

type stubOracle struct{}

func (stubOracle) ExtractFromImage(context.Context, []byte, string) ([]services.OracleItem, string, error) {
	return []services.OracleItem{{Item: "Apple", Calories: 95, Protein: 0.5, Carbs: 25, Fats: 0.3}}, "An apple!", nil
}

func (stubOracle) ExtractFromText(context.Context, string) ([]services.OracleItem, string, error) {
	return []services.OracleItem{{Item: "Apple", Calories: 95, Protein: 0.5, Carbs: 25, Fats: 0.3}}, "An apple!", nil
}

func (stubOracle) ComputeGoals(context.Context, int, string, float64, float64, string) (services.GoalResult, error) {
	return services.GoalResult{Calories: 2400}, nil
}

type stubProducts struct{}

func (stubProducts) LookupBarcode(string) (*services.ProductRecord, error) {
	return nil, services.ErrNotFound
}

func (stubProducts) SearchProduct(string) (*services.ProductRecord, error) {
	return nil, services.ErrNotFound
}

type stubBarcodes struct{}

func (stubBarcodes) Decode([]byte) (string, error) { return "", services.ErrNotFound }

func newEventRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.LogItem{}))

	logs := services.NewLogService(db)
	journal := services.NewJournalService(logs)
	conv := services.NewConversationService(
		logs, journal, stubOracle{}, stubProducts{}, stubBarcodes{},
		services.NewSyncDispatcher(logs, zerolog.Nop()), zerolog.Nop(),
	)

	r := gin.New()
	r.POST("/events", NewEventController(conv).HandleEvent)
	return r
}

func postEvent(t *testing.T, r *gin.Engine, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHandleEventStartAndLog(t *testing.T) {
	r := newEventRouter(t)

	w := postEvent(t, r, map[string]interface{}{
		"user_id": "u1", "kind": KindStartCommand, "username": "alex",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reply services.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.Contains(t, reply.Text, "alex")

	w = postEvent(t, r, map[string]interface{}{
		"user_id": "u1", "kind": KindFreeText, "text": "an apple",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	assert.NotEmpty(t, reply.GroupID)
	assert.Contains(t, reply.Text, "95 kcal")
}

func TestHandleEventToggleAndClear(t *testing.T) {
	r := newEventRouter(t)

	postEvent(t, r, map[string]interface{}{"user_id": "u1", "kind": KindStartCommand})
	postEvent(t, r, map[string]interface{}{"user_id": "u1", "kind": KindFreeText, "text": "an apple"})

	w := postEvent(t, r, map[string]interface{}{
		"user_id": "u1", "kind": KindToggleDetails, "key": "today", "show": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var reply services.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.NotNil(t, reply.Journal)
	assert.True(t, reply.Journal.Expanded)
	require.Len(t, reply.Journal.Items, 1)

	w = postEvent(t, r, map[string]interface{}{"user_id": "u1", "kind": KindClearToday})
	require.Equal(t, http.StatusOK, w.Code)

	w = postEvent(t, r, map[string]interface{}{
		"user_id": "u1", "kind": KindToggleDetails, "key": "today", "show": true,
	})
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
	require.NotNil(t, reply.Journal)
	assert.True(t, reply.Journal.Empty)
}

func TestHandleEventSetManualGoal(t *testing.T) {
	r := newEventRouter(t)

	w := postEvent(t, r, map[string]interface{}{
		"user_id": "u1", "kind": KindSetManualGoal, "goal": 2200,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = postEvent(t, r, map[string]interface{}{
		"user_id": "u1", "kind": KindSetManualGoal, "goal": -5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEventRejectsBadRequests(t *testing.T) {
	r := newEventRouter(t)

	// missing user_id fails binding
	w := postEvent(t, r, map[string]interface{}{"kind": KindFreeText, "text": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postEvent(t, r, map[string]interface{}{"user_id": "u1", "kind": "Teleport"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postEvent(t, r, map[string]interface{}{
		"user_id": "u1", "kind": KindPhoto, "image_base64": "not base64!!!",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
