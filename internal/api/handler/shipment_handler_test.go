package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

type stubShipmentService struct {
	shipments   map[string]*domain.Shipment
	subscribed  []string
	removed     []string
	simulations []string
}

func newStubShipmentService() *stubShipmentService {
	return &stubShipmentService{shipments: make(map[string]*domain.Shipment)}
}

func (s *stubShipmentService) seed(tracking string) *domain.Shipment {
	shp := &domain.Shipment{
		TrackingNumber: tracking,
		Title:          "Demo",
		Status:         domain.StatusInTransit,
		UpdatedAt:      time.Now().UTC(),
	}
	s.shipments[tracking] = shp
	return shp
}

func (s *stubShipmentService) Create(_ context.Context, in ports.CreateShipmentInput) (*domain.Shipment, error) {
	if _, ok := s.shipments[in.TrackingNumber]; ok {
		return nil, domain.ErrDuplicateShipment
	}
	return s.seed(in.TrackingNumber), nil
}

func (s *stubShipmentService) Get(_ context.Context, tracking string) (*domain.Shipment, error) {
	shp, ok := s.shipments[tracking]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	return shp, nil
}

func (s *stubShipmentService) List(_ context.Context, _ int) ([]*domain.Shipment, error) {
	out := make([]*domain.Shipment, 0, len(s.shipments))
	for _, shp := range s.shipments {
		out = append(out, shp)
	}
	return out, nil
}

func (s *stubShipmentService) AppendCheckpoint(_ context.Context, in ports.AppendCheckpointInput) (*ports.AppendCheckpointResult, error) {
	shp, ok := s.shipments[in.TrackingNumber]
	if !ok {
		return nil, domain.ErrShipmentNotFound
	}
	cp := domain.Checkpoint{
		ID:        "CP-STUB",
		Coords:    domain.Coordinates{Lat: in.Coords.Lat, Lng: in.Coords.Lng},
		Label:     in.Label,
		Note:      in.Note,
		Timestamp: time.Now().UTC(),
		Position:  len(shp.Checkpoints),
	}
	shp.Checkpoints = append(shp.Checkpoints, cp)
	status := domain.ResolveStatus(shp.Checkpoints, domain.ShipmentStatus(in.StatusOverride))
	shp.Status = status
	return &ports.AppendCheckpointResult{Checkpoint: cp, Status: status}, nil
}

func (s *stubShipmentService) Subscribe(_ context.Context, tracking, email string) error {
	if _, ok := s.shipments[tracking]; !ok {
		return domain.ErrShipmentNotFound
	}
	s.subscribed = append(s.subscribed, tracking+":"+email)
	return nil
}

func (s *stubShipmentService) Unsubscribe(_ context.Context, tracking, email, token string) error {
	if token != "valid-token" {
		return domain.ErrInvalidToken
	}
	s.removed = append(s.removed, tracking+":"+email)
	return nil
}

func (s *stubShipmentService) RemoveSubscriber(_ context.Context, tracking, email string) error {
	if _, ok := s.shipments[tracking]; !ok {
		return domain.ErrShipmentNotFound
	}
	s.removed = append(s.removed, tracking+":"+email)
	return nil
}

func (s *stubShipmentService) Simulate(_ context.Context, tracking string, _ int, _ time.Duration) error {
	if _, ok := s.shipments[tracking]; !ok {
		return domain.ErrShipmentNotFound
	}
	s.simulations = append(s.simulations, tracking)
	return nil
}

func newShipmentTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestShipmentHandler_Get(t *testing.T) {
	svc := newStubShipmentService()
	shp := svc.seed("ABC123")
	shp.Checkpoints = []domain.Checkpoint{{ID: "CP-1", Label: "Delivered to door", Timestamp: time.Now().UTC()}}
	h := NewShipmentHandler(svc)

	c, rec := newShipmentTestContext(http.MethodGet, "/v1/shipments/ABC123", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("ABC123")

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp shipmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.TrackingNumber != "ABC123" {
		t.Errorf("unexpected tracking number %q", resp.TrackingNumber)
	}
	// The public view must re-derive status from the checkpoint sequence.
	if resp.Status != string(domain.StatusDelivered) {
		t.Errorf("expected derived status Delivered, got %q", resp.Status)
	}
	if len(resp.Subscribers) != 0 {
		t.Error("public view must not expose subscribers")
	}
}

func TestShipmentHandler_GetNotFound(t *testing.T) {
	h := NewShipmentHandler(newStubShipmentService())

	c, _ := newShipmentTestContext(http.MethodGet, "/v1/shipments/NOPE", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("NOPE")

	err := h.Get(c)
	if !errors.Is(err, domain.ErrShipmentNotFound) {
		t.Fatalf("expected ErrShipmentNotFound for the error handler to map, got %v", err)
	}
}

func TestShipmentHandler_Create(t *testing.T) {
	svc := newStubShipmentService()
	h := NewShipmentHandler(svc)

	body := `{"tracking_number":"SIM1","title":"Demo","origin":{"lat":6.5,"lng":3.4},"destination":{"lat":51.5,"lng":-0.1}}`
	c, rec := newShipmentTestContext(http.MethodPost, "/v1/shipments", body)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if _, ok := svc.shipments["SIM1"]; !ok {
		t.Error("expected shipment to reach the service")
	}
}

func TestShipmentHandler_CreateValidation(t *testing.T) {
	h := NewShipmentHandler(newStubShipmentService())

	cases := []struct {
		name string
		body string
	}{
		{"missing tracking number", `{"title":"Demo"}`},
		{"latitude out of range", `{"tracking_number":"X","origin":{"lat":95.0,"lng":0}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newShipmentTestContext(http.MethodPost, "/v1/shipments", tc.body)
			err := h.Create(c)
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %v", err)
			}
		})
	}
}

func TestShipmentHandler_AddCheckpoint(t *testing.T) {
	svc := newStubShipmentService()
	svc.seed("ABC123")
	h := NewShipmentHandler(svc)

	body := `{"lat":14.0,"lng":-5.0,"label":"Departed facility","note":"Left Lagos hub"}`
	c, rec := newShipmentTestContext(http.MethodPost, "/v1/shipments/ABC123/checkpoints", body)
	c.SetParamNames("tracking_number")
	c.SetParamValues("ABC123")

	if err := h.AddCheckpoint(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp addCheckpointResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Checkpoint.Label != "Departed facility" || resp.Status != string(domain.StatusInTransit) {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestShipmentHandler_Subscribe(t *testing.T) {
	svc := newStubShipmentService()
	svc.seed("ABC123")
	h := NewShipmentHandler(svc)

	c, rec := newShipmentTestContext(http.MethodPost, "/v1/shipments/ABC123/subscribe", `{"email":"a@example.com"}`)
	c.SetParamNames("tracking_number")
	c.SetParamValues("ABC123")

	if err := h.Subscribe(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.subscribed) != 1 || svc.subscribed[0] != "ABC123:a@example.com" {
		t.Errorf("unexpected subscriptions: %v", svc.subscribed)
	}
}

func TestShipmentHandler_SubscribeRejectsBadEmail(t *testing.T) {
	h := NewShipmentHandler(newStubShipmentService())

	c, _ := newShipmentTestContext(http.MethodPost, "/v1/shipments/ABC123/subscribe", `{"email":"not-an-email"}`)
	err := h.Subscribe(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestShipmentHandler_UnsubscribeByToken(t *testing.T) {
	svc := newStubShipmentService()
	svc.seed("ABC123")
	h := NewShipmentHandler(svc)

	c, rec := newShipmentTestContext(http.MethodGet,
		"/v1/shipments/ABC123/unsubscribe?email=a@example.com&token=valid-token", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("ABC123")

	if err := h.Unsubscribe(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.removed) != 1 {
		t.Errorf("expected one removal, got %v", svc.removed)
	}
}

func TestShipmentHandler_UnsubscribeBadToken(t *testing.T) {
	svc := newStubShipmentService()
	svc.seed("ABC123")
	h := NewShipmentHandler(svc)

	c, _ := newShipmentTestContext(http.MethodGet,
		"/v1/shipments/ABC123/unsubscribe?email=a@example.com&token=bogus", "")
	c.SetParamNames("tracking_number")
	c.SetParamValues("ABC123")

	err := h.Unsubscribe(c)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for the error handler to map, got %v", err)
	}
}

func TestShipmentHandler_Simulate(t *testing.T) {
	svc := newStubShipmentService()
	svc.seed("SIM1")
	h := NewShipmentHandler(svc)

	c, rec := newShipmentTestContext(http.MethodPost, "/v1/shipments/SIM1/simulate", `{"steps":3,"interval_seconds":0.1}`)
	c.SetParamNames("tracking_number")
	c.SetParamValues("SIM1")

	if err := h.Simulate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if len(svc.simulations) != 1 {
		t.Errorf("expected one simulation start, got %v", svc.simulations)
	}
}
