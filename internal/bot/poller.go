package bot

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

const (
	defaultPollInterval = 2 * time.Second
	pollBatchSize       = 50
)

// MessageHandler consumes one inbound message. Satisfied by *Handler.
type MessageHandler interface {
	Handle(ctx context.Context, msg ports.InboundMessage) error
}

// Poller is the pull-loop ingestion front-end. It owns the single
// consumption cursor for the bot token: exactly one Poller instance may run
// per token process-wide, and the cursor survives restarts via the
// CursorStore. Messages are acknowledged (the cursor advanced) only after
// successful handling, giving at-least-once delivery into the Handler.
type Poller struct {
	transport ports.BotTransport
	cursor    ports.CursorStore
	handler   MessageHandler
	interval  time.Duration
	logger    zerolog.Logger
}

func NewPoller(transport ports.BotTransport, cursor ports.CursorStore, handler MessageHandler, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Poller{
		transport: transport,
		cursor:    cursor,
		handler:   handler,
		interval:  interval,
		logger:    logger,
	}
}

// Run polls until ctx is cancelled. Blocking; call from its own goroutine.
func (p *Poller) Run(ctx context.Context) {
	offset, err := p.cursor.Load(ctx)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to load poll cursor, starting from latest")
		offset = 0
	}
	p.logger.Info().Int("offset", offset).Dur("interval", p.interval).Msg("bot poller started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("bot poller stopped")
			return
		case <-ticker.C:
			offset = p.drain(ctx, offset)
		}
	}
}

// drain consumes one batch. It stops at the first message whose handling
// reports an infrastructure failure, leaving the cursor behind it so the
// transport redelivers from there on the next tick.
func (p *Poller) drain(ctx context.Context, offset int) int {
	messages, err := p.transport.Pull(ctx, offset, pollBatchSize)
	if err != nil {
		p.logger.Error().Err(err).Int("offset", offset).Msg("failed to pull bot updates")
		return offset
	}

	for _, msg := range messages {
		if err := p.handler.Handle(ctx, msg); err != nil {
			p.logger.Error().Err(err).Int("update_id", msg.UpdateID).Msg("message handling failed, will retry")
			return offset
		}
		offset = msg.UpdateID + 1
		if err := p.cursor.Store(ctx, offset); err != nil {
			p.logger.Warn().Err(err).Int("offset", offset).Msg("failed to persist poll cursor")
		}
	}
	return offset
}
