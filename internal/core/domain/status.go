package domain

import "strings"

// ShipmentStatus is the human-facing lifecycle state of a shipment.
type ShipmentStatus string

const (
	StatusInTransit      ShipmentStatus = "In Transit"
	StatusOutForDelivery ShipmentStatus = "Out for Delivery"
	StatusDelivered      ShipmentStatus = "Delivered"
	StatusException      ShipmentStatus = "Exception"
)

// ResolveStatus derives a shipment's status from its checkpoint sequence and
// an optional explicit override. It is a pure function: the same inputs always
// yield the same status, and it performs no I/O, so callers may re-run it for
// display without side effects.
//
// Policy: an explicit override always wins. Otherwise the latest checkpoint's
// label decides; a shipment with no checkpoints is "In Transit".
func ResolveStatus(checkpoints []Checkpoint, override ShipmentStatus) ShipmentStatus {
	if override != "" {
		return override
	}
	if len(checkpoints) == 0 {
		return StatusInTransit
	}
	return statusFromLabel(checkpoints[len(checkpoints)-1].Label)
}

// statusFromLabel maps a checkpoint label to a status by keyword. Labels are
// free text entered by operators, so matching is case-insensitive and
// substring-based.
func statusFromLabel(label string) ShipmentStatus {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "delivered"):
		return StatusDelivered
	case strings.Contains(l, "out for delivery"):
		return StatusOutForDelivery
	case strings.Contains(l, "exception"),
		strings.Contains(l, "failed"),
		strings.Contains(l, "returned"):
		return StatusException
	default:
		return StatusInTransit
	}
}
