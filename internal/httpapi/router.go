package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"professional-persona-ai/internal/studio"
)

type Options struct {
	Studio *studio.Service
	Logger *slog.Logger

	MaxUploadBytes int64
	// RequestTimeout bounds one transformation call. Zero means no bound
	// beyond the outbound client's own timeout.
	RequestTimeout time.Duration
	// TransformPerMinute is the per-client budget for transform calls.
	// Zero disables the limit.
	TransformPerMinute int
}

type API struct {
	studio         *studio.Service
	logger         *slog.Logger
	maxUploadBytes int64
	requestTimeout time.Duration
}

func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 25 << 20
	}
	svc := opts.Studio
	if svc == nil {
		svc = studio.New(studio.Options{Logger: logger})
	}

	api := &API{
		studio:         svc,
		logger:         logger,
		maxUploadBytes: maxUpload,
		requestTimeout: opts.RequestTimeout,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(logger),
	)

	r.Get("/healthz", api.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", api.options)
		r.Post("/prompt", api.prompt)

		r.Post("/sessions", api.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", api.getSession)
			r.Delete("/", api.deleteSession)
			r.Patch("/config", api.updateConfig)
			r.Put("/image", api.uploadImage)
			r.With(RateLimit(opts.TransformPerMinute, time.Minute)).Post("/transform", api.transform)
			r.Post("/reset", api.resetSession)
			r.Get("/download", api.download)
		})
	})

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
				"dur_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
