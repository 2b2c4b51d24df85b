package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"

	"qartelbot/utils"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateSink accepts decoded updates.
type UpdateSink interface {
	Dispatch(ctx context.Context, u tgbotapi.Update) bool
}

// WebhookHandler receives updates pushed by Telegram.
type WebhookHandler struct {
	sink   UpdateSink
	secret string
	ctx    context.Context
	logger *zap.Logger
}

// NewWebhookHandler returns a handler that queues updates on sink. Queued
// events outlive the HTTP request, so they run under ctx instead. An empty
// secret disables the secret-token check.
func NewWebhookHandler(ctx context.Context, sink UpdateSink, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{sink: sink, secret: secret, ctx: ctx, logger: logger}
}

// ReceiveUpdate acknowledges every well-formed update, including ones the
// bot ignores, so Telegram does not redeliver them.
func (h *WebhookHandler) ReceiveUpdate(c *gin.Context) {
	if h.secret != "" {
		got := c.GetHeader(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			utils.JSONError(c, http.StatusUnauthorized, "Invalid webhook token", "")
			return
		}
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid update payload", err.Error())
		return
	}
	if !h.sink.Dispatch(h.ctx, update) {
		h.logger.Debug("update ignored", zap.Int("update_id", update.UpdateID))
	}
	c.Status(http.StatusOK)
}
