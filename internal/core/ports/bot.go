package ports

import "context"

// InboundMessage is one raw command line received from the bot transport,
// via either the pull-loop or the push webhook.
type InboundMessage struct {
	// UpdateID is the transport's monotonically increasing message id. It
	// doubles as the idempotency key guarding against redelivery.
	UpdateID int
	ChatID   int64
	Text     string
}

// BotTransport is the boundary to the chat-bot service. Pull consumes pending
// messages starting at offset (exclusive of already-acknowledged ids);
// SendMessage posts a reply to a chat.
type BotTransport interface {
	Pull(ctx context.Context, offset, limit int) ([]InboundMessage, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// CursorStore persists the poller's consumption offset so that exactly one
// cursor exists per bot token process-wide, surviving restarts.
type CursorStore interface {
	Load(ctx context.Context) (int, error)
	Store(ctx context.Context, offset int) error
}

// DedupStore answers whether a key has been processed before. Used both for
// inbound message ids (at-least-once transport) and for checkpoint
// notification fan-outs (at-most-once per checkpoint).
type DedupStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}
