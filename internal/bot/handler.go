package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/api/metrics"
	"github.com/consigntrack/consignment-tracker/internal/core/domain"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

// Handler is the shared execution path behind both ingestion front-ends.
// The poller invokes it inline; the webhook enqueues it onto the worker
// pool. Either way a given command line produces identical behavior.
type Handler struct {
	executor  *Executor
	transport ports.BotTransport
	dedup     ports.DedupStore
	logger    zerolog.Logger
}

func NewHandler(executor *Executor, transport ports.BotTransport, dedup ports.DedupStore, logger zerolog.Logger) *Handler {
	return &Handler{executor: executor, transport: transport, dedup: dedup, logger: logger}
}

// Handle processes one inbound message end to end: dedup, parse, execute,
// reply. The returned error is non-nil only for infrastructure failures; a
// caller treating that as "do not acknowledge yet" gets safe at-least-once
// semantics, since redelivered update ids are dropped by the dedup check.
func (h *Handler) Handle(ctx context.Context, msg ports.InboundMessage) error {
	// Non-message updates (edits, joins) carry no chat to reply to.
	if msg.ChatID == 0 {
		return nil
	}

	dedupKey := fmt.Sprintf("update:%d", msg.UpdateID)
	seen, err := h.dedup.Seen(ctx, dedupKey)
	if err != nil {
		h.logger.Warn().Err(err).Int("update_id", msg.UpdateID).Msg("inbound dedup check failed, processing anyway")
	} else if seen {
		metrics.InboundDedupTotal.WithLabelValues("hit").Inc()
		h.logger.Debug().Int("update_id", msg.UpdateID).Msg("duplicate inbound message skipped")
		return nil
	}
	metrics.InboundDedupTotal.WithLabelValues("miss").Inc()

	reply, err := h.executeLine(ctx, msg.Text)
	if err != nil {
		return err
	}
	if markErr := h.dedup.Mark(ctx, dedupKey); markErr != nil {
		h.logger.Warn().Err(markErr).Int("update_id", msg.UpdateID).Msg("failed to mark inbound dedup key")
	}

	if sendErr := h.transport.SendMessage(ctx, msg.ChatID, reply); sendErr != nil {
		// The command already took effect; a lost reply is not worth a replay.
		h.logger.Warn().Err(sendErr).Int64("chat_id", msg.ChatID).Msg("failed to send bot reply")
	}
	return nil
}

// executeLine parses and executes one raw command line. Parse errors become
// help replies, never errors: malformed input must not wedge the ingestion
// path.
func (h *Handler) executeLine(ctx context.Context, text string) (string, error) {
	cmd, err := Parse(text)
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) {
			metrics.ParseErrorsTotal.WithLabelValues(pe.CommandVerb).Inc()
			if pe.CommandVerb == "" {
				return usageHelp, nil
			}
			return pe.Reason, nil
		}
		return "", err
	}
	return h.executor.Execute(ctx, cmd)
}
