package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"tavolo/handlers"
)

// RegisterScheduleRoutes registers the administrative and consumer schedule
// endpoints.
func RegisterScheduleRoutes(r *gin.Engine, h *handlers.ScheduleHandler) {
	api := r.Group("/api/schedules")
	{
		api.POST("", h.CreateScheduleHandler)
		api.GET("", h.ListSchedulesHandler)
		api.GET("/open", h.EntityOpenHandler)
		api.GET("/id/:id", h.GetScheduleHandler)
		api.PATCH("/update/:id", h.UpdateScheduleHandler)
		api.POST("/:id/deactivate", h.DeactivateScheduleHandler)
		api.GET("/:id/status", h.ScheduleStatusHandler)
	}
}

// RegisterRoutes wires CORS, health, and all schedule endpoints onto the
// router.
func RegisterRoutes(r *gin.Engine, h *handlers.ScheduleHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", handlers.HealthHandler)

	RegisterScheduleRoutes(r, h)
}
