// Package notify implements the checkpoint notification dispatcher: one
// message per active subscriber, fanned out concurrently, with per-recipient
// failures collected instead of raised.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/api/metrics"
	"github.com/consigntrack/consignment-tracker/internal/core/domain"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

const maxSendAttempts = 3 // 1 try + 2 retries per recipient

// Dispatcher fans out checkpoint notifications via the outbound mail
// transport. Dispatch keys off the checkpoint id, so replaying the same
// checkpoint event never reaches subscribers twice; retried delivery attempts
// to one subscriber stay confined to that subscriber.
type Dispatcher struct {
	mail        ports.MailSender
	dedup       ports.DedupStore
	baseURL     string
	tokenSecret string
	logger      zerolog.Logger
}

func NewDispatcher(mail ports.MailSender, dedup ports.DedupStore, baseURL, tokenSecret string, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		mail:        mail,
		dedup:       dedup,
		baseURL:     strings.TrimRight(baseURL, "/"),
		tokenSecret: tokenSecret,
		logger:      logger,
	}
}

// Notify composes and sends one message per active subscriber. Sends run
// concurrently; the report carries exactly one entry per subscriber. The
// error return path is intentionally absent: delivery failures are data, not
// errors, at this level.
func (d *Dispatcher) Notify(ctx context.Context, shipment *domain.Shipment, cp domain.Checkpoint) *ports.DeliveryReport {
	start := time.Now()
	report := &ports.DeliveryReport{
		TrackingNumber: shipment.TrackingNumber,
		CheckpointID:   cp.ID,
	}

	dedupKey := "notify:" + shipment.TrackingNumber + ":" + cp.ID
	seen, err := d.dedup.Seen(ctx, dedupKey)
	if err != nil {
		d.logger.Warn().Err(err).Str("checkpoint_id", cp.ID).Msg("notification dedup check failed, dispatching anyway")
	} else if seen {
		d.logger.Debug().Str("checkpoint_id", cp.ID).Msg("checkpoint already dispatched, skipping fan-out")
		metrics.NotificationsTotal.WithLabelValues("skipped").Inc()
		report.Skipped = true
		return report
	}
	if markErr := d.dedup.Mark(ctx, dedupKey); markErr != nil {
		d.logger.Warn().Err(markErr).Str("checkpoint_id", cp.ID).Msg("failed to mark notification dedup key")
	}

	subscribers := shipment.ActiveSubscribers()
	if len(subscribers) == 0 {
		d.logger.Debug().Str("tracking_number", shipment.TrackingNumber).Msg("no active subscribers")
		return report
	}

	subject := fmt.Sprintf("Update: %s (%s) - %s", shipment.Title, shipment.TrackingNumber, cp.Label)

	results := make([]ports.Delivery, len(subscribers))
	var wg sync.WaitGroup
	for i, sub := range subscribers {
		wg.Add(1)
		go func(i int, sub domain.Subscriber) {
			defer wg.Done()
			results[i] = d.deliver(ctx, sub.Email, subject, d.composeBody(shipment, cp, sub.Email))
		}(i, sub)
	}
	wg.Wait()

	report.Deliveries = results
	for _, del := range results {
		if del.Err != nil {
			metrics.NotificationsTotal.WithLabelValues("failed").Inc()
			d.logger.Error().Err(del.Err).
				Str("tracking_number", shipment.TrackingNumber).
				Str("email", del.Email).
				Int("attempts", del.Attempts).
				Msg("notification delivery failed")
		} else {
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
		}
	}
	metrics.NotificationDuration.Observe(time.Since(start).Seconds())

	d.logger.Info().
		Str("tracking_number", shipment.TrackingNumber).
		Str("checkpoint_id", cp.ID).
		Int("sent", report.Sent()).
		Int("failed", report.Failed()).
		Msg("notification fan-out done")
	return report
}

// deliver attempts one recipient with a bounded retry budget. A failure here
// never aborts or delays the other recipients.
func (d *Dispatcher) deliver(ctx context.Context, to, subject, body string) ports.Delivery {
	var lastErr error
	for attempt := 1; attempt <= maxSendAttempts; attempt++ {
		lastErr = d.mail.Send(ctx, to, subject, body)
		if lastErr == nil {
			return ports.Delivery{Email: to, Attempts: attempt}
		}
	}
	return ports.Delivery{Email: to, Attempts: maxSendAttempts, Err: lastErr}
}

func (d *Dispatcher) composeBody(shipment *domain.Shipment, cp domain.Checkpoint, email string) string {
	trackURL := fmt.Sprintf("%s/track/%s", d.baseURL, shipment.TrackingNumber)

	// The email goes through query encoding so addresses with reserved
	// characters ("+" in particular) decode back to the exact string the
	// token was computed over.
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", UnsubscribeToken(d.tokenSecret, shipment.TrackingNumber, email))
	unsubURL := fmt.Sprintf("%s/v1/shipments/%s/unsubscribe?%s",
		d.baseURL, shipment.TrackingNumber, q.Encode())

	var b strings.Builder
	fmt.Fprintf(&b, "<p>Update for <strong>%s</strong> (%s):</p>", shipment.Title, shipment.TrackingNumber)
	fmt.Fprintf(&b, "<p><strong>%s</strong>", cp.Label)
	if cp.Note != "" {
		fmt.Fprintf(&b, ": %s", cp.Note)
	}
	b.WriteString("</p>")
	fmt.Fprintf(&b, "<p>Status: %s</p>", domain.ResolveStatus(shipment.Checkpoints, shipment.StatusOverride))
	fmt.Fprintf(&b, "<p>Time: %s</p>", cp.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "<p>Coords: %.4f, %.4f</p>", cp.Coords.Lat, cp.Coords.Lng)
	fmt.Fprintf(&b, "<p><a href=%q>View on map</a></p>", trackURL)
	fmt.Fprintf(&b, `<hr><p style="font-size:12px;color:#666"><a href=%q>Unsubscribe</a></p>`, unsubURL)
	return b.String()
}
