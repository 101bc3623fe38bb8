package session

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/persona"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
}

func TestNewStateUsesDefaults(t *testing.T) {
	st := NewState("a")
	if st.Config != persona.DefaultConfig() {
		t.Fatalf("config = %+v", st.Config)
	}
	if st.Prompt != persona.DefaultConfig().Prompt() {
		t.Fatalf("prompt not composed from defaults")
	}
	if st.Phase != PhaseIdle || !st.Original.IsZero() || !st.Transformed.IsZero() {
		t.Fatalf("unexpected initial state: %+v", st)
	}
}

func TestTransitionsAreValues(t *testing.T) {
	st := NewState("a")
	next := st.Upload(asset.New("image/jpeg", "AAAA"))
	if !st.Original.IsZero() {
		t.Fatalf("Upload mutated the receiver")
	}
	if next.Original.Data != "AAAA" {
		t.Fatalf("original = %+v", next.Original)
	}
}

func TestHappyPath(t *testing.T) {
	store := NewStore(Options{NewID: sequentialIDs()})
	st := store.Create()
	if st.ID != "s1" {
		t.Fatalf("id = %q", st.ID)
	}

	if _, _, err := store.Begin(st.ID); !errors.Is(err, ErrNoOriginal) {
		t.Fatalf("Begin without original: %v", err)
	}

	if _, err := store.Upload(st.ID, asset.New("image/jpeg", "AAAA")); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	loading, ticket, err := store.Begin(st.ID)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if loading.Phase != PhaseLoading {
		t.Fatalf("phase = %q", loading.Phase)
	}
	if ticket.Source != "data:image/jpeg;base64,AAAA" || ticket.Prompt != loading.Prompt {
		t.Fatalf("ticket = %+v", ticket)
	}

	if _, _, err := store.Begin(st.ID); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Begin: %v", err)
	}

	done, err := store.Complete(ticket, asset.New("image/png", "BBBB"), nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Phase != PhaseSuccess || done.Transformed.URI() != "data:image/png;base64,BBBB" {
		t.Fatalf("done = %+v", done)
	}
}

func TestFailureKeepsPreviousResult(t *testing.T) {
	store := NewStore(Options{})
	st := store.Create()
	_, _ = store.Upload(st.ID, asset.New("image/jpeg", "AAAA"))

	_, first, _ := store.Begin(st.ID)
	_, _ = store.Complete(first, asset.New("image/png", "BBBB"), nil)

	_, second, err := store.Begin(st.ID)
	if err != nil {
		t.Fatalf("Begin after success: %v", err)
	}
	failed, err := store.Complete(second, asset.Image{}, errors.New("quota exceeded"))
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if failed.Phase != PhaseError || failed.Error != "quota exceeded" {
		t.Fatalf("failed = %+v", failed)
	}
	if failed.Transformed.Data != "BBBB" {
		t.Fatalf("previous result dropped: %+v", failed.Transformed)
	}

	_, third, _ := store.Begin(st.ID)
	retried, _ := store.Complete(third, asset.Image{}, errors.New(" "))
	if retried.Error != "An unexpected error occurred." {
		t.Fatalf("blank failure message = %q", retried.Error)
	}
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	cases := map[string]func(*Store, string){
		"upload": func(s *Store, id string) { _, _ = s.Upload(id, asset.New("image/png", "CCCC")) },
		"reset":  func(s *Store, id string) { _, _ = s.Reset(id) },
	}
	for name, supersede := range cases {
		t.Run(name, func(t *testing.T) {
			store := NewStore(Options{})
			st := store.Create()
			_, _ = store.Upload(st.ID, asset.New("image/jpeg", "AAAA"))
			_, ticket, err := store.Begin(st.ID)
			if err != nil {
				t.Fatalf("Begin: %v", err)
			}

			supersede(store, st.ID)

			got, err := store.Complete(ticket, asset.New("image/png", "BBBB"), nil)
			if !errors.Is(err, ErrStale) {
				t.Fatalf("expected ErrStale, got %v", err)
			}
			if got.Phase == PhaseSuccess || got.Transformed.Data == "BBBB" {
				t.Fatalf("stale result applied: %+v", got)
			}
		})
	}
}

func TestStaleFailureIsDiscarded(t *testing.T) {
	store := NewStore(Options{})
	st := store.Create()
	_, _ = store.Upload(st.ID, asset.New("image/jpeg", "AAAA"))
	_, old, _ := store.Begin(st.ID)
	_, _ = store.Upload(st.ID, asset.New("image/jpeg", "DDDD"))
	_, current, _ := store.Begin(st.ID)

	if _, err := store.Complete(old, asset.Image{}, errors.New("late failure")); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	got, err := store.Complete(current, asset.New("image/png", "EEEE"), nil)
	if err != nil || got.Phase != PhaseSuccess {
		t.Fatalf("current completion: %+v %v", got, err)
	}
}

func TestUploadClearsResultAndError(t *testing.T) {
	st := NewState("a").Upload(asset.New("image/jpeg", "AAAA"))
	st, ticket, _ := st.Begin()
	st, _ = st.Succeed(ticket.RequestID, asset.New("image/png", "BBBB"))

	st = st.Reject("Please upload a valid image file.")
	if st.Phase != PhaseError || st.Transformed.IsZero() {
		t.Fatalf("Reject should keep images: %+v", st)
	}

	st = st.Upload(asset.New("image/png", "CCCC"))
	if !st.Transformed.IsZero() || st.Error != "" || st.Phase != PhaseIdle {
		t.Fatalf("Upload did not clear: %+v", st)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	store := NewStore(Options{})
	st := store.Create()
	_, _ = store.Upload(st.ID, asset.New("image/jpeg", "AAAA"))
	_, err := store.Select(st.ID, func(cfg *persona.Config) error {
		cfg.Outfit = persona.OutfitLeather
		cfg.Background = persona.BackgroundTokyo
		return nil
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}

	reset, err := store.Reset(st.ID)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if reset.Config != persona.DefaultConfig() || !reset.Original.IsZero() || reset.Phase != PhaseIdle {
		t.Fatalf("reset = %+v", reset)
	}
}

func TestSelectRecomputesPromptAndRejectsUnknown(t *testing.T) {
	store := NewStore(Options{})
	st := store.Create()

	updated, err := store.Select(st.ID, func(cfg *persona.Config) error {
		cfg.Background = persona.BackgroundParis
		return nil
	})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if updated.Prompt == st.Prompt || !strings.Contains(updated.Prompt, "Paris") {
		t.Fatalf("prompt not recomputed")
	}

	_, err = store.Select(st.ID, func(cfg *persona.Config) error {
		cfg.Outfit = "tuxedo"
		return nil
	})
	if !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	got, _ := store.Get(st.ID)
	if got.Config.Outfit != persona.OutfitSuit {
		t.Fatalf("rejected selection stored: %q", got.Config.Outfit)
	}

	sentinel := errors.New("stop")
	if _, err := store.Select(st.ID, func(*persona.Config) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected callback error, got %v", err)
	}
}

func TestUnknownSession(t *testing.T) {
	store := NewStore(Options{})
	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: %v", err)
	}
	if _, _, err := store.Begin("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Begin: %v", err)
	}
	if store.Delete("missing") {
		t.Fatalf("Delete reported success")
	}
}

func TestGetOrCreateAndDelete(t *testing.T) {
	store := NewStore(Options{})
	a := store.GetOrCreate("tg:1:2")
	_, _ = store.Upload(a.ID, asset.New("image/png", "AAAA"))
	b := store.GetOrCreate("tg:1:2")
	if b.Original.Data != "AAAA" {
		t.Fatalf("GetOrCreate returned a fresh state")
	}
	if !store.Delete("tg:1:2") || store.Len() != 0 {
		t.Fatalf("Delete failed")
	}
}

func TestPrune(t *testing.T) {
	store := NewStore(Options{NewID: sequentialIDs()})
	idle := store.Create()
	busy := store.Create()
	fresh := store.Create()

	_, _ = store.Upload(busy.ID, asset.New("image/png", "AAAA"))
	_, _, _ = store.Begin(busy.ID)

	old := time.Now().Add(-2 * time.Hour)
	for _, id := range []string{idle.ID, busy.ID} {
		_, _ = store.Update(id, func(st State) (State, error) {
			st.UpdatedAt = old
			return st, nil
		})
	}

	if removed := store.Prune(time.Hour); removed != 1 {
		t.Fatalf("removed = %d", removed)
	}
	if _, err := store.Get(idle.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("idle session kept")
	}
	for _, id := range []string{busy.ID, fresh.ID} {
		if _, err := store.Get(id); err != nil {
			t.Fatalf("session %s pruned", id)
		}
	}
}
