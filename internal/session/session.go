// file: internal/session/session.go
// version: 1.1.0
// guid: 517d3279-30de-417e-aec7-2888a57f7747

package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	ulid "github.com/oklog/ulid/v2"

	"github.com/jdfalk/medication-identifier/internal/models"
)

// State is the lifecycle state of a capture session.
type State string

const (
	StateUninitialized     State = "uninitialized"
	StatePermissionPending State = "permission-pending"
	StateReady             State = "ready"
	StateCapturing         State = "capturing"
	StateStopped           State = "stopped"
)

// Event drives a session between states.
type Event string

const (
	EventInitialize        Event = "initialize"
	EventPermissionGranted Event = "permission_granted"
	EventPermissionDenied  Event = "permission_denied"
	EventStartCapture      Event = "start_capture"
	EventSignalsReceived   Event = "signals_received"
	EventStop              Event = "stop"
)

// ErrInvalidTransition is returned when an event is not legal in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// transitions maps (state, event) to the next state. signals_received
// keeps the session capturing; it exists so signal delivery is rejected
// outside of capture.
var transitions = map[State]map[Event]State{
	StateUninitialized: {
		EventInitialize: StatePermissionPending,
	},
	StatePermissionPending: {
		EventPermissionGranted: StateReady,
		EventPermissionDenied:  StateStopped,
		EventStop:              StateStopped,
	},
	StateReady: {
		EventStartCapture: StateCapturing,
		EventStop:         StateStopped,
	},
	StateCapturing: {
		EventSignalsReceived: StateCapturing,
		EventStop:            StateStopped,
	},
	StateStopped: {},
}

// Session accumulates query signals for a single identification
// attempt. Signals live only as long as the session; nothing here is
// ever persisted.
type Session struct {
	mu        sync.Mutex
	ID        string
	state     State
	signals   models.QuerySignals
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates a session in the uninitialized state.
func NewSession() (*Session, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Session{
		ID:        id.String(),
		state:     StateUninitialized,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply drives the session with an event. Unknown events and events
// that are not legal in the current state return ErrInvalidTransition.
func (s *Session) Apply(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := transitions[s.state][event]
	if !ok {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, s.state)
	}
	s.state = next
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// AddSignals merges new signals into the session. Only legal while
// capturing; drives the signals_received event internally.
func (s *Session) AddSignals(signals models.QuerySignals) error {
	if err := signals.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := transitions[s.state][EventSignalsReceived]; !ok {
		return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, EventSignalsReceived, s.state)
	}

	s.signals.Texts = append(s.signals.Texts, signals.Texts...)
	s.signals.Labels = append(s.signals.Labels, signals.Labels...)
	s.signals.AITerms = append(s.signals.AITerms, signals.AITerms...)
	if signals.Color != "" {
		s.signals.Color = signals.Color
	}
	if signals.Shape != "" {
		s.signals.Shape = signals.Shape
	}
	if signals.ExternalCode != "" {
		s.signals.ExternalCode = signals.ExternalCode
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Signals returns a copy of the accumulated signals.
func (s *Session) Signals() models.QuerySignals {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.signals
	out.Texts = append([]models.RecognizedText(nil), s.signals.Texts...)
	out.Labels = append([]string(nil), s.signals.Labels...)
	out.AITerms = append([]string(nil), s.signals.AITerms...)
	return out
}
