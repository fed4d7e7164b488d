package routes

import (
	"github.com/Amrani-Sohaib/AI-nutrition-bot/config"
	"github.com/Amrani-Sohaib/AI-nutrition-bot/controllers"
	"github.com/Amrani-Sohaib/AI-nutrition-bot/middlewares"

	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Event    *controllers.EventController
	Journal  *controllers.JournalController
	Goal     *controllers.GoalController
	Realtime *controllers.RealtimeController
}

func SetupRouter(settings config.Settings, ctrl Controllers) *gin.Engine {
	r := gin.Default()

	// chat gateway entry point
	events := r.Group("/events")
	events.Use(middlewares.GatewayAuth(settings.GatewaySecret))
	{
		events.POST("", ctrl.Event.HandleEvent)
	}

	// companion dashboard
	dash := r.Group("/")
	dash.Use(middlewares.DashboardAuth(settings.DashboardSecret))
	{
		dash.GET("/journal", ctrl.Journal.GetJournal)
		dash.GET("/journal/items", ctrl.Journal.GetItems)
		dash.GET("/goals", ctrl.Goal.GetGoals)
		dash.PUT("/goals", ctrl.Goal.UpdateGoal)
		dash.GET("/profile", ctrl.Goal.GetProfile)
		dash.GET("/ws/journal", ctrl.Realtime.JournalWS)
	}

	return r
}
