package domain

import "fmt"

// Command is a validated bot instruction produced by the parser and consumed
// once by the executor. The set of variants is closed: the executor dispatches
// with an exhaustive type switch, so adding a verb is a compile-time-checked
// change rather than a string-keyed lookup.
type Command interface {
	// Verb returns the command verb for logging and metrics.
	Verb() string
}

// StatusCommand asks for the current status of a shipment.
type StatusCommand struct {
	TrackingNumber string
}

func (StatusCommand) Verb() string { return "status" }

// CreateCommand registers a new shipment.
type CreateCommand struct {
	TrackingNumber string
	Title          string
	Origin         Coordinates
	Destination    Coordinates
}

func (CreateCommand) Verb() string { return "create" }

// AddCheckpointCommand appends a checkpoint to an existing shipment.
type AddCheckpointCommand struct {
	TrackingNumber string
	Coords         Coordinates
	Label          string
	Note           string
}

func (AddCheckpointCommand) Verb() string { return "addcp" }

// ListCommand enumerates recent shipments.
type ListCommand struct{}

func (ListCommand) Verb() string { return "list" }

// SimulateCommand starts a background checkpoint simulation between the
// shipment's origin and destination.
type SimulateCommand struct {
	TrackingNumber string
	Steps          int
	Interval       float64 // seconds between simulated checkpoints
}

func (SimulateCommand) Verb() string { return "simulate" }

// RemoveSubscriberCommand deactivates a subscriber on a shipment.
type RemoveSubscriberCommand struct {
	TrackingNumber string
	Email          string
}

func (RemoveSubscriberCommand) Verb() string { return "remove_sub" }

// UnknownCommand carries a verb the parser did not recognise. It is a valid
// command, not an error, so the executor can reply with usage help instead of
// failing the ingestion path.
type UnknownCommand struct {
	Raw string
}

func (UnknownCommand) Verb() string { return "unknown" }

// ParseError reports malformed command text. It names the offending verb and
// a human-readable reason; the executor turns it into a help reply, never a
// system error.
type ParseError struct {
	CommandVerb string
	Reason      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.CommandVerb, e.Reason)
}
