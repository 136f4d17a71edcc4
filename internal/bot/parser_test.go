package bot

import (
	"errors"
	"testing"

	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

func TestParse_Status(t *testing.T) {
	cmd, err := Parse("status ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sc, ok := cmd.(domain.StatusCommand)
	if !ok {
		t.Fatalf("expected StatusCommand, got %T", cmd)
	}
	if sc.TrackingNumber != "ABC123" {
		t.Errorf("unexpected tracking: %q", sc.TrackingNumber)
	}
}

func TestParse_StatusMissingArg(t *testing.T) {
	_, err := Parse("status")
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.CommandVerb != "status" {
		t.Errorf("expected verb status, got %q", pe.CommandVerb)
	}
}

func TestParse_TelegramVerbDecoration(t *testing.T) {
	cmd, err := Parse("/status@trackerbot ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cmd.(domain.StatusCommand); !ok {
		t.Fatalf("expected StatusCommand, got %T", cmd)
	}
}

func TestParse_Create(t *testing.T) {
	cmd, err := Parse("create SIM1|Demo|6.5,3.4|51.5,-0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cc, ok := cmd.(domain.CreateCommand)
	if !ok {
		t.Fatalf("expected CreateCommand, got %T", cmd)
	}
	if cc.TrackingNumber != "SIM1" || cc.Title != "Demo" {
		t.Errorf("unexpected fields: %+v", cc)
	}
	if cc.Origin.Lat != 6.5 || cc.Origin.Lng != 3.4 {
		t.Errorf("unexpected origin: %+v", cc.Origin)
	}
	if cc.Destination.Lat != 51.5 || cc.Destination.Lng != -0.1 {
		t.Errorf("unexpected destination: %+v", cc.Destination)
	}
}

func TestParse_CreateBadArity(t *testing.T) {
	_, err := Parse("create SIM1|Demo|6.5,3.4")
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParse_AddCheckpoint(t *testing.T) {
	cmd, err := Parse("addcp ABC123|14.0,-5.0|Departed facility|Left Lagos hub")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ac, ok := cmd.(domain.AddCheckpointCommand)
	if !ok {
		t.Fatalf("expected AddCheckpointCommand, got %T", cmd)
	}
	if ac.TrackingNumber != "ABC123" {
		t.Errorf("unexpected tracking: %q", ac.TrackingNumber)
	}
	if ac.Coords.Lat != 14.0 || ac.Coords.Lng != -5.0 {
		t.Errorf("unexpected coords: %+v", ac.Coords)
	}
	if ac.Label != "Departed facility" || ac.Note != "Left Lagos hub" {
		t.Errorf("unexpected label/note: %q %q", ac.Label, ac.Note)
	}
}

func TestParse_AddCheckpointNoNote(t *testing.T) {
	cmd, err := Parse("addcp ABC123|14.0,-5.0|Departed facility")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ac := cmd.(domain.AddCheckpointCommand)
	if ac.Note != "" {
		t.Errorf("expected empty note, got %q", ac.Note)
	}
}

func TestParse_AddCheckpointBadCoords(t *testing.T) {
	_, err := Parse("addcp ABC123|notanumber|L|n")
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.CommandVerb != "addcp" {
		t.Errorf("expected verb addcp, got %q", pe.CommandVerb)
	}
}

func TestParse_List(t *testing.T) {
	cmd, err := Parse("list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cmd.(domain.ListCommand); !ok {
		t.Fatalf("expected ListCommand, got %T", cmd)
	}
}

func TestParse_Simulate(t *testing.T) {
	cmd, err := Parse("simulate SIM1|10|0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sc := cmd.(domain.SimulateCommand)
	if sc.TrackingNumber != "SIM1" || sc.Steps != 10 || sc.Interval != 0.5 {
		t.Errorf("unexpected fields: %+v", sc)
	}
}

func TestParse_SimulateDefaults(t *testing.T) {
	cmd, err := Parse("simulate SIM1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sc := cmd.(domain.SimulateCommand)
	if sc.Steps != 0 || sc.Interval != 0 {
		t.Errorf("expected zero-value defaults, got %+v", sc)
	}
}

func TestParse_SimulateBadSteps(t *testing.T) {
	if _, err := Parse("simulate SIM1|minusone"); err == nil {
		t.Fatal("expected ParseError for non-numeric steps")
	}
}

func TestParse_RemoveSubscriber(t *testing.T) {
	cmd, err := Parse("remove_sub ABC123|Someone@Example.COM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rc := cmd.(domain.RemoveSubscriberCommand)
	if rc.TrackingNumber != "ABC123" {
		t.Errorf("unexpected tracking: %q", rc.TrackingNumber)
	}
	if rc.Email != "someone@example.com" {
		t.Errorf("expected lowercased email, got %q", rc.Email)
	}
}

func TestParse_UnknownVerbIsNotAnError(t *testing.T) {
	cmd, err := Parse("frobnicate ABC123")
	if err != nil {
		t.Fatalf("unknown verb must not be an error, got %v", err)
	}
	if _, ok := cmd.(domain.UnknownCommand); !ok {
		t.Fatalf("expected UnknownCommand, got %T", cmd)
	}
}

func TestParse_EmptyLine(t *testing.T) {
	_, err := Parse("   ")
	var pe *domain.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for empty line, got %v", err)
	}
}

func TestParse_CaseInsensitiveVerb(t *testing.T) {
	cmd, err := Parse("STATUS ABC123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cmd.(domain.StatusCommand); !ok {
		t.Fatalf("expected StatusCommand, got %T", cmd)
	}
}
