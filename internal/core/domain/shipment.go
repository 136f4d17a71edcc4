package domain

import (
	"errors"
	"time"
)

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrDuplicateShipment = errors.New("shipment already exists")
var ErrSubscriberNotFound = errors.New("subscriber not found")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid token")

// Coordinates represents a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Checkpoint is an immutable waypoint event in a shipment's history.
// Once appended it is never edited or removed; the sequence is ordered by
// timestamp, with insertion order breaking ties.
type Checkpoint struct {
	ID        string      `json:"id" bson:"id"`
	Coords    Coordinates `json:"coords" bson:"coords"`
	Label     string      `json:"label" bson:"label"`
	Note      string      `json:"note,omitempty" bson:"note,omitempty"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
	// Position is a display hint: the sequence length observed when the
	// checkpoint was composed. Authoritative order is the stored array order;
	// concurrent appends may stamp the same position.
	Position int `json:"position" bson:"position"`
}

// Subscriber is an email address bound to exactly one shipment. The
// (shipment, email) pair is unique; registration is idempotent. Removed
// subscribers are deactivated rather than deleted.
type Subscriber struct {
	Email    string    `json:"email" bson:"email"`
	AddedAt  time.Time `json:"added_at" bson:"added_at"`
	IsActive bool      `json:"is_active" bson:"is_active"`
}

// Shipment is the aggregate root. The tracking number is its immutable
// identity; checkpoints and subscribers are owned by the shipment document.
type Shipment struct {
	ID             string         `json:"id" bson:"_id,omitempty"`
	TrackingNumber string         `json:"tracking_number" bson:"tracking_number"`
	Title          string         `json:"title" bson:"title"`
	Origin         Coordinates    `json:"origin" bson:"origin"`
	Destination    Coordinates    `json:"destination" bson:"destination"`
	Status         ShipmentStatus `json:"status" bson:"status"`
	// StatusOverride, when non-empty, wins over the derived status.
	StatusOverride ShipmentStatus `json:"status_override,omitempty" bson:"status_override,omitempty"`
	Checkpoints    []Checkpoint   `json:"checkpoints" bson:"checkpoints"`
	Subscribers    []Subscriber   `json:"subscribers" bson:"subscribers"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// LatestCheckpoint returns the most recent checkpoint, or nil when the
// shipment has none.
func (s *Shipment) LatestCheckpoint() *Checkpoint {
	if len(s.Checkpoints) == 0 {
		return nil
	}
	return &s.Checkpoints[len(s.Checkpoints)-1]
}

// ActiveSubscribers returns the subscribers that should receive checkpoint
// notifications. Deactivated rows are kept for audit but never notified.
func (s *Shipment) ActiveSubscribers() []Subscriber {
	out := make([]Subscriber, 0, len(s.Subscribers))
	for _, sub := range s.Subscribers {
		if sub.IsActive {
			out = append(out, sub)
		}
	}
	return out
}
