package session

import (
	"errors"
	"strings"
	"time"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/persona"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrNoOriginal = errors.New("no original image uploaded")
	ErrBusy       = errors.New("transformation already in progress")
	ErrStale      = errors.New("transformation result superseded")

	ErrInvalidSelection = errors.New("invalid selection")
)

const unexpectedFailure = "An unexpected error occurred."

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// State is one user's workspace. Transitions return a new value and never
// mutate the receiver.
type State struct {
	ID          string
	Config      persona.Config
	Prompt      string
	Original    asset.Image
	Transformed asset.Image
	Phase       Phase
	Error       string
	RequestID   uint64
	UpdatedAt   time.Time
}

// Ticket carries what one transformation attempt needs outside the store.
type Ticket struct {
	SessionID string
	RequestID uint64
	Source    string
	Prompt    string
}

func NewState(id string) State {
	cfg := persona.DefaultConfig()
	return State{
		ID:        id,
		Config:    cfg,
		Prompt:    cfg.Prompt(),
		Phase:     PhaseIdle,
		UpdatedAt: time.Now(),
	}
}

// Select replaces the selections and recomputes the prompt.
func (s State) Select(cfg persona.Config) (State, error) {
	if !cfg.Valid() {
		return s, ErrInvalidSelection
	}
	s.Config = cfg
	s.Prompt = cfg.Prompt()
	return s.touch(), nil
}

// Upload installs a new original and drops any previous result. Any call in
// flight becomes stale.
func (s State) Upload(img asset.Image) State {
	s.Original = img
	s.Transformed = asset.Image{}
	s.Phase = PhaseIdle
	s.Error = ""
	s.RequestID++
	return s.touch()
}

// Reject records a refused upload without touching the images.
func (s State) Reject(msg string) State {
	if s.Phase == PhaseLoading {
		return s
	}
	s.Phase = PhaseError
	s.Error = msg
	return s.touch()
}

func (s State) Begin() (State, Ticket, error) {
	if s.Original.IsZero() {
		return s, Ticket{}, ErrNoOriginal
	}
	if s.Phase == PhaseLoading {
		return s, Ticket{}, ErrBusy
	}
	s.RequestID++
	s.Phase = PhaseLoading
	s.Error = ""
	return s.touch(), Ticket{
		SessionID: s.ID,
		RequestID: s.RequestID,
		Source:    s.Original.URI(),
		Prompt:    s.Prompt,
	}, nil
}

func (s State) Succeed(requestID uint64, img asset.Image) (State, error) {
	if !s.current(requestID) {
		return s, ErrStale
	}
	s.Transformed = img
	s.Phase = PhaseSuccess
	s.Error = ""
	return s.touch(), nil
}

// Fail keeps the previous transformed image, if any.
func (s State) Fail(requestID uint64, msg string) (State, error) {
	if !s.current(requestID) {
		return s, ErrStale
	}
	if strings.TrimSpace(msg) == "" {
		msg = unexpectedFailure
	}
	s.Phase = PhaseError
	s.Error = msg
	return s.touch(), nil
}

// Reset restores the default selections and clears both images.
func (s State) Reset() State {
	next := NewState(s.ID)
	next.RequestID = s.RequestID + 1
	return next
}

func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

func (s State) current(requestID uint64) bool {
	return s.Phase == PhaseLoading && requestID == s.RequestID
}

func (s State) touch() State {
	s.UpdatedAt = time.Now()
	return s
}
