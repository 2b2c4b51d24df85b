package routes

import (
	"qartelbot/handlers"
	"qartelbot/middleware"

	"github.com/gin-gonic/gin"
)

// WebhookPath is where Telegram posts updates.
const WebhookPath = "/telegram/webhook"

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterWebhookRoutes registers the Telegram update endpoint.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.TelegramWebhook == nil {
		return
	}
	api := r.Group("/telegram")
	{
		api.Use(middleware.RateLimitMiddleware())
		api.POST("/webhook", hb.TelegramWebhook)
	}
}

// RegisterRoutes wires every route group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	RegisterHealthRoute(r, hb)
	RegisterWebhookRoutes(r, hb)
}
