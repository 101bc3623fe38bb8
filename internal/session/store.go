package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/persona"
)

type Options struct {
	// NewID names sessions made by Create. Defaults to a random UUID.
	NewID func() string
}

type Store struct {
	mu     sync.Mutex
	states map[string]*State
	newID  func() string
}

func NewStore(opts Options) *Store {
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	return &Store{
		states: make(map[string]*State),
		newID:  newID,
	}
}

func (s *Store) Create() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.states[id]; !taken {
			break
		}
		id = s.newID()
	}
	return *s.getOrCreateLocked(id)
}

// GetOrCreate returns the state under key, starting a fresh one if needed.
func (s *Store) GetOrCreate(key string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(key)
}

func (s *Store) Get(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[id]
	if !ok {
		return State{}, ErrNotFound
	}
	return *st, nil
}

// Update applies fn to the state under id. The stored state is replaced only
// when fn succeeds.
func (s *Store) Update(id string, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[id]
	if !ok {
		return State{}, ErrNotFound
	}
	next, err := fn(*st)
	if err != nil {
		return *st, err
	}
	*st = next
	return next, nil
}

// Select edits a copy of the current selections and stores it if every axis
// still holds a known value.
func (s *Store) Select(id string, fn func(*persona.Config) error) (State, error) {
	return s.Update(id, func(st State) (State, error) {
		cfg := st.Config
		if err := fn(&cfg); err != nil {
			return st, err
		}
		return st.Select(cfg)
	})
}

func (s *Store) Upload(id string, img asset.Image) (State, error) {
	return s.Update(id, func(st State) (State, error) {
		return st.Upload(img), nil
	})
}

func (s *Store) Reject(id string, msg string) (State, error) {
	return s.Update(id, func(st State) (State, error) {
		return st.Reject(msg), nil
	})
}

func (s *Store) Begin(id string) (State, Ticket, error) {
	var ticket Ticket
	st, err := s.Update(id, func(st State) (State, error) {
		next, t, err := st.Begin()
		ticket = t
		return next, err
	})
	return st, ticket, err
}

// Complete applies the outcome of the attempt described by t. A failure is
// recorded by its message. ErrStale means a newer upload, reset or attempt
// has superseded t and nothing was stored.
func (s *Store) Complete(t Ticket, img asset.Image, failure error) (State, error) {
	return s.Update(t.SessionID, func(st State) (State, error) {
		if failure != nil {
			return st.Fail(t.RequestID, failure.Error())
		}
		return st.Succeed(t.RequestID, img)
	})
}

func (s *Store) Reset(id string) (State, error) {
	return s.Update(id, func(st State) (State, error) {
		return st.Reset(), nil
	})
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[id]; !ok {
		return false
	}
	delete(s.states, id)
	return true
}

// Prune drops sessions idle for longer than maxIdle. Loading sessions are
// kept. It returns the number removed.
func (s *Store) Prune(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, st := range s.states {
		if st.Loading() || st.UpdatedAt.After(cutoff) {
			continue
		}
		delete(s.states, id)
		removed++
	}
	return removed
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.states)
}

func (s *Store) getOrCreateLocked(id string) *State {
	if st, ok := s.states[id]; ok {
		return st
	}
	st := NewState(id)
	s.states[id] = &st
	return &st
}
