// file: internal/session/session_test.go
// version: 1.1.0
// guid: 70db59a5-203c-4018-90f1-dc6286013d48

package session

import (
	"errors"
	"testing"
	"time"

	"github.com/jdfalk/medication-identifier/internal/models"
)

func mustSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession()
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s
}

func drive(t *testing.T, s *Session, events ...Event) {
	t.Helper()
	for _, e := range events {
		if err := s.Apply(e); err != nil {
			t.Fatalf("Apply(%s) failed in state %s: %v", e, s.State(), err)
		}
	}
}

// TestNewSession tests initial state
func TestNewSession(t *testing.T) {
	s := mustSession(t)
	if s.ID == "" {
		t.Error("Expected non-empty session ID")
	}
	if s.State() != StateUninitialized {
		t.Errorf("Expected uninitialized, got %s", s.State())
	}
}

// TestHappyPath tests the full lifecycle
func TestHappyPath(t *testing.T) {
	s := mustSession(t)

	steps := []struct {
		event Event
		want  State
	}{
		{EventInitialize, StatePermissionPending},
		{EventPermissionGranted, StateReady},
		{EventStartCapture, StateCapturing},
		{EventSignalsReceived, StateCapturing},
		{EventStop, StateStopped},
	}
	for _, step := range steps {
		if err := s.Apply(step.event); err != nil {
			t.Fatalf("Apply(%s) failed: %v", step.event, err)
		}
		if s.State() != step.want {
			t.Errorf("After %s: state = %s, want %s", step.event, s.State(), step.want)
		}
	}
}

// TestPermissionDenied tests the denial branch
func TestPermissionDenied(t *testing.T) {
	s := mustSession(t)
	drive(t, s, EventInitialize, EventPermissionDenied)
	if s.State() != StateStopped {
		t.Errorf("Expected stopped after denial, got %s", s.State())
	}
}

// TestInvalidTransitions tests that illegal events are rejected
func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []Event
		event Event
	}{
		{"capture before init", nil, EventStartCapture},
		{"grant before init", nil, EventPermissionGranted},
		{"signals before capture", []Event{EventInitialize, EventPermissionGranted}, EventSignalsReceived},
		{"double initialize", []Event{EventInitialize}, EventInitialize},
		{"capture while pending", []Event{EventInitialize}, EventStartCapture},
		{"anything after stop", []Event{EventInitialize, EventStop}, EventInitialize},
		{"stop after stop", []Event{EventInitialize, EventStop}, EventStop},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := mustSession(t)
			drive(t, s, tc.setup...)
			before := s.State()
			err := s.Apply(tc.event)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("Apply(%s) = %v, want ErrInvalidTransition", tc.event, err)
			}
			if s.State() != before {
				t.Errorf("Failed event must not change state: %s -> %s", before, s.State())
			}
		})
	}
}

// TestAddSignals tests signal accumulation while capturing
func TestAddSignals(t *testing.T) {
	s := mustSession(t)
	drive(t, s, EventInitialize, EventPermissionGranted, EventStartCapture)

	first := models.QuerySignals{
		Texts: []models.RecognizedText{{Text: "ASPIRIN", Confidence: 0.9}},
		Color: "white",
	}
	second := models.QuerySignals{
		Labels:       []string{"pill"},
		Shape:        "round",
		ExternalCode: "8600097010115",
	}
	if err := s.AddSignals(first); err != nil {
		t.Fatalf("AddSignals failed: %v", err)
	}
	if err := s.AddSignals(second); err != nil {
		t.Fatalf("AddSignals failed: %v", err)
	}

	got := s.Signals()
	if len(got.Texts) != 1 || got.Texts[0].Text != "ASPIRIN" {
		t.Errorf("Texts = %v", got.Texts)
	}
	if len(got.Labels) != 1 || got.Labels[0] != "pill" {
		t.Errorf("Labels = %v", got.Labels)
	}
	if got.Color != "white" || got.Shape != "round" {
		t.Errorf("Color/Shape = %q/%q", got.Color, got.Shape)
	}
	if got.ExternalCode != "8600097010115" {
		t.Errorf("ExternalCode = %q", got.ExternalCode)
	}
	if s.State() != StateCapturing {
		t.Errorf("Expected capturing after signals, got %s", s.State())
	}
}

// TestAddSignalsOutsideCapture tests rejection outside of capture
func TestAddSignalsOutsideCapture(t *testing.T) {
	s := mustSession(t)
	sig := models.QuerySignals{Labels: []string{"pill"}}

	if err := s.AddSignals(sig); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition before capture, got %v", err)
	}

	drive(t, s, EventInitialize, EventPermissionGranted, EventStartCapture, EventStop)
	if err := s.AddSignals(sig); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition after stop, got %v", err)
	}
}

// TestAddSignalsValidates tests that bad confidences are rejected
func TestAddSignalsValidates(t *testing.T) {
	s := mustSession(t)
	drive(t, s, EventInitialize, EventPermissionGranted, EventStartCapture)

	bad := models.QuerySignals{
		Texts: []models.RecognizedText{{Text: "ASPIRIN", Confidence: 1.5}},
	}
	if err := s.AddSignals(bad); err == nil {
		t.Error("Expected validation error for confidence > 1")
	}
}

// TestSignalsReturnsCopy tests that callers cannot mutate session state
func TestSignalsReturnsCopy(t *testing.T) {
	s := mustSession(t)
	drive(t, s, EventInitialize, EventPermissionGranted, EventStartCapture)
	if err := s.AddSignals(models.QuerySignals{Labels: []string{"pill"}}); err != nil {
		t.Fatalf("AddSignals failed: %v", err)
	}

	got := s.Signals()
	got.Labels[0] = "mutated"
	if s.Signals().Labels[0] != "pill" {
		t.Error("Signals() must return a copy")
	}
}

// TestRegistryLifecycle tests create/get/remove
func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(time.Minute)

	s, err := r.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 live session, got %d", r.Len())
	}

	got, err := r.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ID != s.ID {
		t.Errorf("Got session %s, want %s", got.ID, s.ID)
	}

	r.Remove(s.ID)
	if _, err := r.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after remove, got %v", err)
	}
}

// TestRegistryExpiry tests TTL eviction
func TestRegistryExpiry(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)

	s, err := r.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	if _, err := r.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected expired session to be gone, got %v", err)
	}
}

// TestRegistryTouch tests deadline refresh
func TestRegistryTouch(t *testing.T) {
	r := NewRegistry(60 * time.Millisecond)

	s, err := r.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)
	if err := r.Touch(s.ID); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	if _, err := r.Get(s.ID); err != nil {
		t.Errorf("Expected touched session to survive, got %v", err)
	}

	if err := r.Touch("01UNKNOWN"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound for unknown touch, got %v", err)
	}
}
