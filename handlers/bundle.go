package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups the HTTP endpoint handlers.
type HandlerBundle struct {
	Health gin.HandlerFunc

	// TelegramWebhook is nil when the bot long-polls.
	TelegramWebhook gin.HandlerFunc
}
