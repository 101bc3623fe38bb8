package studio

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/session"
	"professional-persona-ai/internal/transform"
)

// Transformer performs one image transformation.
type Transformer interface {
	Transform(ctx context.Context, source string, prompt string) (asset.Image, error)
}

type Options struct {
	Sessions    *session.Store
	Transformer Transformer
	Logger      *slog.Logger
}

// Service runs transformations against sessions kept in a store.
type Service struct {
	sessions    *session.Store
	transformer Transformer
	logger      *slog.Logger
}

func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.Options{})
	}
	return &Service{
		sessions:    sessions,
		transformer: opts.Transformer,
		logger:      logger,
	}
}

func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// Transform runs one attempt for the session with the prompt and original it
// holds when the attempt begins.
//
// The returned error is the transformation failure itself (see
// transform.KindOf), a session error, or session.ErrStale when a newer upload,
// reset or attempt superseded this one while it was in flight. In the stale
// case the returned state is the current one and the result was dropped.
func (s *Service) Transform(ctx context.Context, id string) (session.State, error) {
	st, ticket, err := s.sessions.Begin(id)
	if err != nil {
		return st, err
	}

	logger := s.logger.With("session", id, "request_id", ticket.RequestID)
	logger.Info("transform started", "config", st.Config)

	var (
		img  asset.Image
		tErr error
	)
	if s.transformer == nil {
		tErr = &transform.ConfigurationError{}
	} else {
		img, tErr = s.transformer.Transform(ctx, ticket.Source, ticket.Prompt)
	}

	done, err := s.sessions.Complete(ticket, img, tErr)
	if errors.Is(err, session.ErrStale) {
		logger.Warn("transform result discarded", "reason", "superseded")
		return done, err
	}
	if err != nil {
		logger.Error("transform completion failed", "err", err)
		return done, err
	}

	if tErr != nil {
		logger.Error("transform failed", "kind", transform.KindOf(tErr), "err", tErr)
		return done, tErr
	}

	logger.Info("transform finished", "mime", img.MimeType)
	return done, nil
}
