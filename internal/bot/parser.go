// Package bot holds the transport-agnostic command pipeline: the parser that
// turns raw chat lines into typed commands, the executor that applies them,
// and the two ingestion front-ends (poller and webhook worker) that feed it.
package bot

import (
	"strconv"
	"strings"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

// Parse converts a raw command line into a typed command. The grammar is a
// case-insensitive leading verb followed by a fixed-arity, pipe-delimited
// payload. A leading "/" and a "@botname" suffix on the verb are tolerated,
// matching how chat clients address bots.
//
// Malformed input yields a *domain.ParseError, never a panic and never a
// partially populated command. Unrecognised verbs yield UnknownCommand so the
// executor can reply with usage help instead of treating them as failures.
func Parse(rawLine string) (domain.Command, error) {
	line := strings.TrimSpace(rawLine)
	if line == "" {
		return nil, &domain.ParseError{Reason: "empty command line"}
	}

	verb, payload := splitVerb(line)
	switch verb {
	case "status":
		return parseStatus(payload)
	case "create":
		return parseCreate(payload)
	case "addcp":
		return parseAddCheckpoint(payload)
	case "list":
		return domain.ListCommand{}, nil
	case "simulate":
		return parseSimulate(payload)
	case "remove_sub":
		return parseRemoveSubscriber(payload)
	default:
		return domain.UnknownCommand{Raw: line}, nil
	}
}

func splitVerb(line string) (verb, payload string) {
	verb = line
	if i := strings.IndexAny(line, " \t"); i >= 0 {
		verb, payload = line[:i], strings.TrimSpace(line[i+1:])
	}
	verb = strings.TrimPrefix(verb, "/")
	if i := strings.Index(verb, "@"); i >= 0 {
		verb = verb[:i]
	}
	return strings.ToLower(verb), payload
}

func parseStatus(payload string) (domain.Command, error) {
	tracking := strings.TrimSpace(payload)
	if i := strings.IndexAny(tracking, " \t"); i >= 0 {
		tracking = tracking[:i]
	}
	if tracking == "" {
		return nil, &domain.ParseError{CommandVerb: "status", Reason: "usage: status <TRACKING>"}
	}
	return domain.StatusCommand{TrackingNumber: tracking}, nil
}

func parseCreate(payload string) (domain.Command, error) {
	parts := splitFields(payload)
	if len(parts) != 4 {
		return nil, &domain.ParseError{CommandVerb: "create", Reason: "usage: create TRACKING|Title|orig_lat,orig_lng|dest_lat,dest_lng"}
	}
	if parts[0] == "" {
		return nil, &domain.ParseError{CommandVerb: "create", Reason: "tracking number must not be empty"}
	}
	origin, err := parseCoords(parts[2])
	if err != nil {
		return nil, &domain.ParseError{CommandVerb: "create", Reason: "invalid origin coordinates: " + parts[2]}
	}
	dest, err := parseCoords(parts[3])
	if err != nil {
		return nil, &domain.ParseError{CommandVerb: "create", Reason: "invalid destination coordinates: " + parts[3]}
	}
	return domain.CreateCommand{
		TrackingNumber: parts[0],
		Title:          parts[1],
		Origin:         origin,
		Destination:    dest,
	}, nil
}

func parseAddCheckpoint(payload string) (domain.Command, error) {
	parts := splitFields(payload)
	if len(parts) < 3 || len(parts) > 4 {
		return nil, &domain.ParseError{CommandVerb: "addcp", Reason: "usage: addcp TRACKING|lat,lng|Label|note"}
	}
	if parts[0] == "" {
		return nil, &domain.ParseError{CommandVerb: "addcp", Reason: "tracking number must not be empty"}
	}
	coords, err := parseCoords(parts[1])
	if err != nil {
		return nil, &domain.ParseError{CommandVerb: "addcp", Reason: "invalid coordinates: " + parts[1]}
	}
	cmd := domain.AddCheckpointCommand{
		TrackingNumber: parts[0],
		Coords:         coords,
		Label:          parts[2],
	}
	if len(parts) == 4 {
		cmd.Note = parts[3]
	}
	return cmd, nil
}

func parseSimulate(payload string) (domain.Command, error) {
	parts := splitFields(payload)
	if len(parts) < 1 || len(parts) > 3 || parts[0] == "" {
		return nil, &domain.ParseError{CommandVerb: "simulate", Reason: "usage: simulate TRACKING[|steps|interval_seconds]"}
	}
	cmd := domain.SimulateCommand{TrackingNumber: parts[0]}
	if len(parts) > 1 && parts[1] != "" {
		steps, err := strconv.Atoi(parts[1])
		if err != nil || steps <= 0 {
			return nil, &domain.ParseError{CommandVerb: "simulate", Reason: "steps must be a positive integer"}
		}
		cmd.Steps = steps
	}
	if len(parts) > 2 && parts[2] != "" {
		interval, err := strconv.ParseFloat(parts[2], 64)
		if err != nil || interval <= 0 {
			return nil, &domain.ParseError{CommandVerb: "simulate", Reason: "interval must be a positive number of seconds"}
		}
		cmd.Interval = interval
	}
	return cmd, nil
}

func parseRemoveSubscriber(payload string) (domain.Command, error) {
	parts := splitFields(payload)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, &domain.ParseError{CommandVerb: "remove_sub", Reason: "usage: remove_sub TRACKING|email"}
	}
	return domain.RemoveSubscriberCommand{
		TrackingNumber: parts[0],
		Email:          strings.ToLower(parts[1]),
	}, nil
}

// splitFields splits a pipe-delimited payload, trimming whitespace around
// every field.
func splitFields(payload string) []string {
	if strings.TrimSpace(payload) == "" {
		return nil
	}
	parts := strings.Split(payload, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseCoords parses "lat,lng" with both components numeric.
func parseCoords(s string) (domain.Coordinates, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, strconv.ErrSyntax
	}
	latF, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	lngF, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return domain.Coordinates{}, err
	}
	return domain.Coordinates{Lat: latF, Lng: lngF}, nil
}
