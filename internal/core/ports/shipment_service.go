package ports

import (
	"context"
	"time"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

// CoordinatesInput holds geographic coordinates supplied by a transport.
type CoordinatesInput struct {
	Lat float64
	Lng float64
}

// CreateShipmentInput carries all data needed to register a new shipment.
type CreateShipmentInput struct {
	TrackingNumber string
	Title          string
	Origin         CoordinatesInput
	Destination    CoordinatesInput
}

// AppendCheckpointInput is the DTO passed from either entry point (admin API
// or bot executor) to the checkpoint-ingestion path.
type AppendCheckpointInput struct {
	TrackingNumber string
	Coords         CoordinatesInput
	Label          string
	Note           string
	// Timestamp is assigned by the store when zero.
	Timestamp time.Time
	// StatusOverride, when non-empty, pins the shipment status regardless of
	// what the resolver would derive.
	StatusOverride string
}

// AppendCheckpointResult reports the committed checkpoint and the shipment
// status derived for it.
type AppendCheckpointResult struct {
	Checkpoint domain.Checkpoint
	Status     domain.ShipmentStatus
}

// ShipmentService is the single code path behind both entry points: the admin
// API handlers and the bot command executor call the same methods, so a
// checkpoint originating from either transport takes an identical route
// through the resolver and the notification dispatcher.
type ShipmentService interface {
	Create(ctx context.Context, input CreateShipmentInput) (*domain.Shipment, error)
	Get(ctx context.Context, trackingNumber string) (*domain.Shipment, error)
	List(ctx context.Context, limit int) ([]*domain.Shipment, error)

	// AppendCheckpoint commits the checkpoint, re-resolves the shipment
	// status, and schedules notification fan-out without blocking the caller.
	AppendCheckpoint(ctx context.Context, input AppendCheckpointInput) (*AppendCheckpointResult, error)

	Subscribe(ctx context.Context, trackingNumber, email string) error
	// Unsubscribe removes a subscriber authenticated by the token embedded in
	// their notification email.
	Unsubscribe(ctx context.Context, trackingNumber, email, token string) error
	// RemoveSubscriber is the admin/bot variant without a token.
	RemoveSubscriber(ctx context.Context, trackingNumber, email string) error

	// Simulate appends steps interpolated checkpoints between origin and
	// destination in a detached background worker, one every interval.
	Simulate(ctx context.Context, trackingNumber string, steps int, interval time.Duration) error
}
