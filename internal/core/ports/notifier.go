package ports

import (
	"context"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

// Delivery records the outcome of one notification attempt to one subscriber.
type Delivery struct {
	Email    string
	Attempts int
	Err      error // nil on success
}

// DeliveryReport is the per-subscriber outcome record of one notification
// fan-out. Exactly one Delivery entry exists per subscriber, whether the send
// succeeded or not.
type DeliveryReport struct {
	TrackingNumber string
	CheckpointID   string
	Deliveries     []Delivery
	// Skipped is true when the fan-out was suppressed because this checkpoint
	// was already dispatched (at-most-once per checkpoint).
	Skipped bool
}

// Sent returns the number of successful deliveries.
func (r *DeliveryReport) Sent() int {
	n := 0
	for _, d := range r.Deliveries {
		if d.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of failed deliveries.
func (r *DeliveryReport) Failed() int {
	return len(r.Deliveries) - r.Sent()
}

// Notifier fans out one message per active subscriber for a newly committed
// checkpoint. Per-subscriber failures are collected into the report, never
// raised; callers run Notify in a detached goroutine so it adds no latency to
// checkpoint creation.
type Notifier interface {
	Notify(ctx context.Context, shipment *domain.Shipment, cp domain.Checkpoint) *DeliveryReport
}

// MailSender abstracts the outbound mail transport. An unconfigured transport
// degrades to a logged no-op rather than failing the triggering command.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
