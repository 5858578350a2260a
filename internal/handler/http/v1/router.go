package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all API v1 routes.
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Sensor ingest is the only guarded endpoint.
	alert := api.Group("/alert")
	{
		alert.POST("", SensorAuthMiddleware(h.cfg, h.logger), h.reportHazard)
		alert.GET("", h.getEvent)
	}

	api.POST("/telegram/webhook", h.telegramWebhook)

	status := api.Group("/status")
	{
		status.GET("", h.getStatus)
		status.GET("/stats", h.getStats)
	}

	api.GET("/system/health", h.healthCheck)
}
