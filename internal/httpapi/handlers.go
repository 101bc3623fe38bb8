package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"professional-persona-ai/internal/asset"
	"professional-persona-ai/internal/persona"
	"professional-persona-ai/internal/session"
)

type optionsResponse struct {
	Axes     []persona.AxisOptions `json:"axes"`
	Defaults persona.Config        `json:"defaults"`
}

type promptResponse struct {
	Prompt string `json:"prompt"`
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.studio.Sessions().Len(),
	})
}

func (a *API) options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, optionsResponse{
		Axes:     persona.Catalog(),
		Defaults: persona.DefaultConfig(),
	})
}

// prompt composes without a session. Unknown or missing values fall back
// like they do in the composer.
func (a *API) prompt(w http.ResponseWriter, r *http.Request) {
	var cfg persona.Config
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, promptResponse{Prompt: cfg.Prompt()})
}

func (a *API) createSession(w http.ResponseWriter, r *http.Request) {
	st := a.studio.Sessions().Create()
	a.logger.Info("session created", "session", st.ID)
	writeJSON(w, http.StatusCreated, newStateResponse(st))
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	st, err := a.studio.Sessions().Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(st))
}

func (a *API) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !a.studio.Sessions().Delete(chi.URLParam(r, "id")) {
		a.fail(w, session.ErrNotFound, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateConfig applies a partial {axis: value} map. Either every pair is
// accepted or nothing changes.
func (a *API) updateConfig(w http.ResponseWriter, r *http.Request) {
	var changes map[string]string
	if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	st, err := a.studio.Sessions().Select(chi.URLParam(r, "id"), func(cfg *persona.Config) error {
		for axis, value := range changes {
			if !cfg.Set(axis, value) {
				return fmt.Errorf("%w: %s=%q", session.ErrInvalidSelection, axis, value)
			}
		}
		return nil
	})
	if err != nil {
		a.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(st))
}

func (a *API) uploadImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sessions := a.studio.Sessions()
	if _, err := sessions.Get(id); err != nil {
		a.fail(w, err, nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	if err := r.ParseMultipartForm(a.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds "+strconv.FormatInt(a.maxUploadBytes>>20, 10)+" MB")
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "missing image")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "failed to read image")
		return
	}

	img, err := asset.FromUpload(data, header.Header.Get("Content-Type"))
	if err != nil {
		var st *session.State
		if rejected, rejErr := sessions.Reject(id, err.Error()); rejErr == nil {
			st = &rejected
		}
		a.logger.Info("upload rejected", "session", id, "filename", header.Filename, "err", err)
		a.fail(w, err, st)
		return
	}

	st, err := sessions.Upload(id, img)
	if err != nil {
		a.fail(w, err, nil)
		return
	}
	a.logger.Info("original uploaded", "session", id, "mime", img.MimeType, "bytes", len(data))
	writeJSON(w, http.StatusOK, newStateResponse(st))
}

func (a *API) transform(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if a.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.requestTimeout)
		defer cancel()
	}

	st, err := a.studio.Transform(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err, &st)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(st))
}

func (a *API) resetSession(w http.ResponseWriter, r *http.Request) {
	st, err := a.studio.Sessions().Reset(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(st))
}

func (a *API) download(w http.ResponseWriter, r *http.Request) {
	st, err := a.studio.Sessions().Get(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, err, nil)
		return
	}
	if st.Transformed.IsZero() {
		writeError(w, http.StatusNotFound, "not_found", "no transformed image")
		return
	}

	data, err := st.Transformed.Bytes()
	if err != nil {
		a.fail(w, err, nil)
		return
	}

	name := persona.DownloadFilename(st.Config, st.Transformed.MimeType)
	mimeType := strings.TrimSpace(st.Transformed.MimeType)
	if mimeType == "" {
		mimeType = asset.DefaultMimeType
	}
	w.Header().Set("content-type", mimeType)
	w.Header().Set("content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("content-length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
