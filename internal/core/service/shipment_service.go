package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/consigntrack/consignment-tracker/internal/api/metrics"
	"github.com/consigntrack/consignment-tracker/internal/core/domain"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
	"github.com/consigntrack/consignment-tracker/internal/notify"
)

const (
	defaultCheckpointLabel = "Scanned"
	defaultSimulateSteps   = 6
	defaultSimulateDelay   = 3 * time.Second
)

// ShipmentService implements ports.ShipmentService. It is the single code
// path for shipment mutations: the admin API handlers and the bot command
// executor both call it, so checkpoint ingestion behaves identically
// regardless of transport.
type ShipmentService struct {
	repo        ports.ShipmentRepository
	notifier    ports.Notifier
	tokenSecret string
	logger      zerolog.Logger
}

func NewShipmentService(repo ports.ShipmentRepository, notifier ports.Notifier, tokenSecret string, logger zerolog.Logger) *ShipmentService {
	return &ShipmentService{repo: repo, notifier: notifier, tokenSecret: tokenSecret, logger: logger}
}

// Create registers a new shipment with an empty checkpoint sequence. Status
// starts at the resolver's default for an empty sequence.
func (s *ShipmentService) Create(ctx context.Context, input ports.CreateShipmentInput) (*domain.Shipment, error) {
	tracking := strings.TrimSpace(input.TrackingNumber)
	if tracking == "" {
		return nil, fmt.Errorf("create shipment: %w", &domain.ParseError{CommandVerb: "create", Reason: "tracking number must not be empty"})
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Consignment"
	}

	now := time.Now().UTC()
	shipment := &domain.Shipment{
		TrackingNumber: tracking,
		Title:          title,
		Origin:         domain.Coordinates{Lat: input.Origin.Lat, Lng: input.Origin.Lng},
		Destination:    domain.Coordinates{Lat: input.Destination.Lat, Lng: input.Destination.Lng},
		Status:         domain.ResolveStatus(nil, ""),
		Checkpoints:    []domain.Checkpoint{},
		Subscribers:    []domain.Subscriber{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, fmt.Errorf("create shipment %s: %w", tracking, err)
	}

	s.logger.Info().Str("tracking_number", tracking).Msg("shipment created")
	return shipment, nil
}

func (s *ShipmentService) Get(ctx context.Context, trackingNumber string) (*domain.Shipment, error) {
	return s.repo.FindByTrackingNumber(ctx, trackingNumber)
}

func (s *ShipmentService) List(ctx context.Context, limit int) ([]*domain.Shipment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, limit)
}

// AppendCheckpoint commits a checkpoint, derives the new shipment status, and
// schedules notification fan-out in a detached goroutine so the caller's
// latency is unaffected by subscriber count or mail transport health.
func (s *ShipmentService) AppendCheckpoint(ctx context.Context, input ports.AppendCheckpointInput) (*ports.AppendCheckpointResult, error) {
	shipment, err := s.repo.FindByTrackingNumber(ctx, input.TrackingNumber)
	if err != nil {
		return nil, fmt.Errorf("append checkpoint: %w", err)
	}

	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = defaultCheckpointLabel
	}
	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	cp := domain.Checkpoint{
		ID:        newCheckpointID(),
		Coords:    domain.Coordinates{Lat: input.Coords.Lat, Lng: input.Coords.Lng},
		Label:     label,
		Note:      strings.TrimSpace(input.Note),
		Timestamp: ts,
		Position:  len(shipment.Checkpoints),
	}

	override := shipment.StatusOverride
	if input.StatusOverride != "" {
		override = domain.ShipmentStatus(input.StatusOverride)
	}

	sequence := make([]domain.Checkpoint, 0, len(shipment.Checkpoints)+1)
	sequence = append(sequence, shipment.Checkpoints...)
	sequence = append(sequence, cp)
	status := domain.ResolveStatus(sequence, override)

	updated, err := s.repo.AppendCheckpoint(ctx, input.TrackingNumber, cp, status, override)
	if err != nil {
		return nil, fmt.Errorf("append checkpoint: %w", err)
	}

	metrics.CheckpointsAppendedTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info().
		Str("tracking_number", input.TrackingNumber).
		Str("checkpoint_id", cp.ID).
		Str("label", cp.Label).
		Str("status", string(status)).
		Msg("checkpoint appended")

	// Fire-and-forget fan-out. Failures are per-recipient and logged by the
	// dispatcher; they never surface to the triggering request.
	notifyCtx := context.WithoutCancel(ctx)
	go func() {
		report := s.notifier.Notify(notifyCtx, updated, cp)
		if report.Failed() > 0 {
			s.logger.Warn().
				Str("tracking_number", report.TrackingNumber).
				Int("sent", report.Sent()).
				Int("failed", report.Failed()).
				Msg("notification fan-out completed with failures")
		}
	}()

	return &ports.AppendCheckpointResult{Checkpoint: cp, Status: status}, nil
}

func (s *ShipmentService) Subscribe(ctx context.Context, trackingNumber, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("subscribe: %w", &domain.ParseError{CommandVerb: "subscribe", Reason: "email must not be empty"})
	}
	return s.repo.AddSubscriber(ctx, trackingNumber, email)
}

// Unsubscribe removes a subscriber authenticated by the per-(shipment,
// subscriber) token carried in every notification email.
func (s *ShipmentService) Unsubscribe(ctx context.Context, trackingNumber, email, token string) error {
	email = normalizeEmail(email)
	expected := notify.UnsubscribeToken(s.tokenSecret, trackingNumber, email)
	if !hmac.Equal([]byte(token), []byte(expected)) {
		return domain.ErrInvalidToken
	}
	return s.repo.RemoveSubscriber(ctx, trackingNumber, email)
}

func (s *ShipmentService) RemoveSubscriber(ctx context.Context, trackingNumber, email string) error {
	return s.repo.RemoveSubscriber(ctx, trackingNumber, normalizeEmail(email))
}

// Simulate appends steps interpolated checkpoints between the shipment's
// origin and destination, one every interval, in a detached worker. Each
// simulated checkpoint takes the normal ingestion path, so status derivation
// and notifications behave exactly as for real checkpoints.
func (s *ShipmentService) Simulate(ctx context.Context, trackingNumber string, steps int, interval time.Duration) error {
	shipment, err := s.repo.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	if steps <= 0 {
		steps = defaultSimulateSteps
	}
	if interval <= 0 {
		interval = defaultSimulateDelay
	}

	workerCtx := context.WithoutCancel(ctx)
	go s.runSimulation(workerCtx, shipment, steps, interval)

	s.logger.Info().
		Str("tracking_number", trackingNumber).
		Int("steps", steps).
		Dur("interval", interval).
		Msg("simulation started")
	return nil
}

func (s *ShipmentService) runSimulation(ctx context.Context, shipment *domain.Shipment, steps int, interval time.Duration) {
	o, d := shipment.Origin, shipment.Destination
	for i := 1; i <= steps; i++ {
		frac := float64(i) / float64(steps)
		input := ports.AppendCheckpointInput{
			TrackingNumber: shipment.TrackingNumber,
			Coords: ports.CoordinatesInput{
				Lat: o.Lat + (d.Lat-o.Lat)*frac,
				Lng: o.Lng + (d.Lng-o.Lng)*frac,
			},
			Label: fmt.Sprintf("Simulated %d/%d", i, steps),
		}
		if _, err := s.AppendCheckpoint(ctx, input); err != nil {
			s.logger.Error().Err(err).
				Str("tracking_number", shipment.TrackingNumber).
				Int("step", i).
				Msg("simulation step failed")
			return
		}
		if i < steps {
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newCheckpointID returns a random checkpoint identifier in the format
// CP-XXXXXXXXXXXXXXXX.
func newCheckpointID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("CP-%016X", time.Now().UnixNano())
	}
	return fmt.Sprintf("CP-%016X", b)
}
