package httpapi

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"KbjuCoachService/pkg/server"
)

// NewRouter собирает маршруты внешнего контракта
// с трассировкой запросов и метриками
func NewRouter(handler *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(server.TracingMiddleware(logger))
	router.Use(server.MetricsMiddleware())

	api := router.Group("/api/v1")
	{
		api.POST("/dialog/step", handler.SubmitStep)

		users := api.Group("/users/:id")
		{
			users.GET("/summary", handler.GetSummary)
			users.GET("/progress", handler.GetProgress)
			users.PUT("/goal", handler.UpdateGoal)
			users.POST("/food-preferences", handler.AddFoodPreferences)
			users.GET("/food-preferences", handler.GetFoodPreferences)
		}
	}

	return router
}
