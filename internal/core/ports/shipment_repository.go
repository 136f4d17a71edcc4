package ports

import (
	"context"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

// ShipmentRepository defines persistence operations for shipments. All
// mutations are atomic with respect to a single shipment: two concurrent
// checkpoint appends to the same tracking number never interleave in a way
// that breaks the sequence order, and readers always observe a consistent
// snapshot of the document.
type ShipmentRepository interface {
	// Create inserts a new shipment. Returns domain.ErrDuplicateShipment when
	// the tracking number is already taken.
	Create(ctx context.Context, s *domain.Shipment) error

	// FindByTrackingNumber retrieves a shipment with its full checkpoint and
	// subscriber sets. Returns domain.ErrShipmentNotFound when absent.
	FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.Shipment, error)

	// List returns up to limit shipments, most recently updated first.
	List(ctx context.Context, limit int) ([]*domain.Shipment, error)

	// AppendCheckpoint atomically appends cp to the shipment's sequence and
	// sets the given status and override in the same write. The updated
	// shipment is returned so callers can fan out notifications without a
	// second read.
	AppendCheckpoint(ctx context.Context, trackingNumber string, cp domain.Checkpoint, status, override domain.ShipmentStatus) (*domain.Shipment, error)

	// AddSubscriber registers an email for a shipment. Idempotent: a repeated
	// registration of the same (shipment, email) pair leaves exactly one
	// active row.
	AddSubscriber(ctx context.Context, trackingNumber, email string) error

	// RemoveSubscriber deactivates a subscriber. Idempotent: removing an
	// absent or already inactive subscriber is not an error.
	RemoveSubscriber(ctx context.Context, trackingNumber, email string) error

	// ListSubscribers returns the active subscribers of a shipment.
	ListSubscribers(ctx context.Context, trackingNumber string) ([]domain.Subscriber, error)

	// ListCheckpoints returns the ordered checkpoint sequence of a shipment.
	ListCheckpoints(ctx context.Context, trackingNumber string) ([]domain.Checkpoint, error)
}
