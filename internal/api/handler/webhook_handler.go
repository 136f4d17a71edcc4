package handler

import (
	"crypto/subtle"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labstack/echo/v4"

	"github.com/consigntrack/consignment-tracker/internal/api/metrics"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
	"github.com/consigntrack/consignment-tracker/internal/infrastructure/telegram"
)

// UpdateQueue is the interface the webhook handler uses to hand updates to
// the worker pool.
type UpdateQueue interface {
	Enqueue(msg ports.InboundMessage)
}

// WebhookHandler is the push ingestion front-end. It validates the token
// embedded in the path, enqueues the update as a detached unit of work, and
// acknowledges immediately: the HTTP response is never held open for store
// mutation or notification fan-out, so the upstream transport cannot time out
// and redeliver under normal load.
type WebhookHandler struct {
	botToken string
	queue    UpdateQueue
}

func NewWebhookHandler(botToken string, queue UpdateQueue) *WebhookHandler {
	return &WebhookHandler{botToken: botToken, queue: queue}
}

// Receive handles POST /telegram/webhook/:token.
//
// @Summary      Receive one bot update via webhook
// @Tags         bot
// @Accept       json
// @Produce      json
// @Param        token  path      string          true  "Bot token"
// @Param        body   body      tgbotapi.Update true  "Bot update"
// @Success      200    {object}  okResponse
// @Failure      403    {object}  errorResponse
// @Router       /telegram/webhook/{token} [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	token := c.Param("token")
	if h.botToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.botToken)) != 1 {
		metrics.WebhookRejectedTotal.WithLabelValues("bad_token").Inc()
		return echo.NewHTTPError(http.StatusForbidden, "invalid token")
	}

	var update tgbotapi.Update
	if err := c.Bind(&update); err != nil {
		metrics.WebhookRejectedTotal.WithLabelValues("bad_payload").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	h.queue.Enqueue(telegram.FromUpdate(update))
	return c.JSON(http.StatusOK, okResponse{OK: true})
}
