// Package telegram adapts the Telegram Bot API to the ports.BotTransport
// interface consumed by the ingestion gateway.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

// Client wraps a Bot API client. One Client serves both front-ends: the
// poller pulls through GetUpdates, and both paths reply through SendMessage.
type Client struct {
	api    *tgbotapi.BotAPI
	logger zerolog.Logger
}

func NewClient(token string, logger zerolog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	logger.Info().Str("bot", api.Self.UserName).Msg("telegram bot authorized")
	return &Client{api: api, logger: logger}, nil
}

// Pull fetches pending updates starting at offset. Updates that carry no
// usable text message are returned with a zero ChatID so the caller can
// advance past them without executing anything.
func (c *Client) Pull(ctx context.Context, offset, limit int) ([]ports.InboundMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updates, err := c.api.GetUpdates(tgbotapi.UpdateConfig{
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("telegram get updates: %w", err)
	}

	out := make([]ports.InboundMessage, 0, len(updates))
	for _, u := range updates {
		out = append(out, FromUpdate(u))
	}
	return out, nil
}

// RegisterWebhook points the bot's webhook at publicURL, switching the
// transport from pull to push delivery for this token.
func (c *Client) RegisterWebhook(ctx context.Context, publicURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wh, err := tgbotapi.NewWebhook(publicURL)
	if err != nil {
		return fmt.Errorf("telegram webhook config: %w", err)
	}
	if _, err := c.api.Request(wh); err != nil {
		return fmt.Errorf("telegram set webhook: %w", err)
	}
	c.logger.Info().Str("url", publicURL).Msg("telegram webhook registered")
	return nil
}

// SendMessage posts a plain-text reply to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram send message: %w", err)
	}
	return nil
}

// FromUpdate maps a Bot API update to the transport-agnostic inbound shape.
// The webhook front-end unmarshals the same tgbotapi.Update type from the
// request body and feeds it through here, so both paths see identical
// messages for identical inputs.
func FromUpdate(u tgbotapi.Update) ports.InboundMessage {
	msg := u.Message
	if msg == nil {
		msg = u.EditedMessage
	}
	if msg == nil || msg.Chat == nil {
		return ports.InboundMessage{UpdateID: u.UpdateID}
	}
	return ports.InboundMessage{
		UpdateID: u.UpdateID,
		ChatID:   msg.Chat.ID,
		Text:     msg.Text,
	}
}
