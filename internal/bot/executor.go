package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/api/metrics"
	"github.com/consigntrack/consignment-tracker/internal/core/domain"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

const usageHelp = `Commands:
/status <TRACKING>
/create TRACKING|Title|orig_lat,orig_lng|dest_lat,dest_lng
/addcp TRACKING|lat,lng|Label|note
/list
/simulate TRACKING[|steps|interval_seconds]
/remove_sub TRACKING|email`

const listLimit = 20

// Executor applies parsed commands against the shipment service. It is the
// single dispatch point for all command variants: both ingestion front-ends
// converge here, so a verb cannot behave differently between the poller and
// the webhook.
type Executor struct {
	shipments ports.ShipmentService
	baseURL   string
	logger    zerolog.Logger
}

func NewExecutor(shipments ports.ShipmentService, baseURL string, logger zerolog.Logger) *Executor {
	return &Executor{shipments: shipments, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Execute runs one command and returns the user-facing reply. Expected
// domain outcomes (not found, duplicate tracking, malformed input) become
// reply text; the error return is reserved for infrastructure failures the
// caller may want to retry, in which case the reply is empty.
func (e *Executor) Execute(ctx context.Context, cmd domain.Command) (string, error) {
	reply, err := e.dispatch(ctx, cmd)
	if err != nil {
		metrics.CommandsProcessedTotal.WithLabelValues(cmd.Verb(), "error").Inc()
		e.logger.Error().Err(err).Str("verb", cmd.Verb()).Msg("command execution failed")
		return "", err
	}
	metrics.CommandsProcessedTotal.WithLabelValues(cmd.Verb(), "ok").Inc()
	return reply, nil
}

// dispatch is the exhaustive mapping over the closed command set.
func (e *Executor) dispatch(ctx context.Context, cmd domain.Command) (string, error) {
	switch c := cmd.(type) {
	case domain.StatusCommand:
		return e.execStatus(ctx, c)
	case domain.CreateCommand:
		return e.execCreate(ctx, c)
	case domain.AddCheckpointCommand:
		return e.execAddCheckpoint(ctx, c)
	case domain.ListCommand:
		return e.execList(ctx)
	case domain.SimulateCommand:
		return e.execSimulate(ctx, c)
	case domain.RemoveSubscriberCommand:
		return e.execRemoveSubscriber(ctx, c)
	case domain.UnknownCommand:
		return "Command not recognized.\n" + usageHelp, nil
	default:
		return "", fmt.Errorf("unhandled command type %T", cmd)
	}
}

func (e *Executor) execStatus(ctx context.Context, c domain.StatusCommand) (string, error) {
	shipment, err := e.shipments.Get(ctx, c.TrackingNumber)
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			return fmt.Sprintf("Tracking %s not found.", c.TrackingNumber), nil
		}
		return "", err
	}

	status := domain.ResolveStatus(shipment.Checkpoints, shipment.StatusOverride)
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\nStatus: %s\nUpdated: %s\n",
		shipment.Title, shipment.TrackingNumber, status,
		shipment.UpdatedAt.UTC().Format(time.RFC3339))
	if latest := shipment.LatestCheckpoint(); latest != nil {
		fmt.Fprintf(&b, "Latest: %s at %s (%.4f,%.4f)\n",
			latest.Label, latest.Timestamp.UTC().Format(time.RFC3339),
			latest.Coords.Lat, latest.Coords.Lng)
	}
	fmt.Fprintf(&b, "Map: %s/track/%s", e.baseURL, shipment.TrackingNumber)
	return b.String(), nil
}

func (e *Executor) execCreate(ctx context.Context, c domain.CreateCommand) (string, error) {
	_, err := e.shipments.Create(ctx, ports.CreateShipmentInput{
		TrackingNumber: c.TrackingNumber,
		Title:          c.Title,
		Origin:         ports.CoordinatesInput{Lat: c.Origin.Lat, Lng: c.Origin.Lng},
		Destination:    ports.CoordinatesInput{Lat: c.Destination.Lat, Lng: c.Destination.Lng},
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateShipment) {
			return fmt.Sprintf("Tracking %s already exists.", c.TrackingNumber), nil
		}
		return "", err
	}
	return fmt.Sprintf("Created %s", c.TrackingNumber), nil
}

func (e *Executor) execAddCheckpoint(ctx context.Context, c domain.AddCheckpointCommand) (string, error) {
	result, err := e.shipments.AppendCheckpoint(ctx, ports.AppendCheckpointInput{
		TrackingNumber: c.TrackingNumber,
		Coords:         ports.CoordinatesInput{Lat: c.Coords.Lat, Lng: c.Coords.Lng},
		Label:          c.Label,
		Note:           c.Note,
	})
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			return "Shipment not found.", nil
		}
		return "", err
	}
	return fmt.Sprintf("Added checkpoint to %s. Status: %s", c.TrackingNumber, result.Status), nil
}

func (e *Executor) execList(ctx context.Context) (string, error) {
	shipments, err := e.shipments.List(ctx, listLimit)
	if err != nil {
		return "", err
	}
	if len(shipments) == 0 {
		return "No shipments found.", nil
	}
	lines := make([]string, 0, len(shipments)+1)
	lines = append(lines, "Recent shipments:")
	for _, s := range shipments {
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", s.TrackingNumber, s.Title, s.Status))
	}
	return strings.Join(lines, "\n"), nil
}

func (e *Executor) execSimulate(ctx context.Context, c domain.SimulateCommand) (string, error) {
	interval := time.Duration(c.Interval * float64(time.Second))
	if err := e.shipments.Simulate(ctx, c.TrackingNumber, c.Steps, interval); err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			return "Shipment not found.", nil
		}
		return "", err
	}
	return fmt.Sprintf("Started simulation for %s.", c.TrackingNumber), nil
}

func (e *Executor) execRemoveSubscriber(ctx context.Context, c domain.RemoveSubscriberCommand) (string, error) {
	err := e.shipments.RemoveSubscriber(ctx, c.TrackingNumber, c.Email)
	if err != nil {
		if errors.Is(err, domain.ErrShipmentNotFound) {
			return "Shipment not found.", nil
		}
		return "", err
	}
	return fmt.Sprintf("Removed %s", c.Email), nil
}
