package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"professional-persona-ai/internal/persona"
	"professional-persona-ai/internal/session"
	"professional-persona-ai/internal/transform"
)

type apiError struct {
	Error string         `json:"error"`
	Kind  string         `json:"kind"`
	State *stateResponse `json:"state,omitempty"`
}

type stateResponse struct {
	ID           string         `json:"id"`
	Phase        session.Phase  `json:"phase"`
	Config       persona.Config `json:"config"`
	Prompt       string         `json:"prompt"`
	Original     string         `json:"original,omitempty"`
	Transformed  string         `json:"transformed,omitempty"`
	Error        string         `json:"error,omitempty"`
	RequestID    uint64         `json:"requestId"`
	DownloadName string         `json:"downloadName,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

func newStateResponse(st session.State) *stateResponse {
	out := &stateResponse{
		ID:          st.ID,
		Phase:       st.Phase,
		Config:      st.Config,
		Prompt:      st.Prompt,
		Original:    st.Original.URI(),
		Transformed: st.Transformed.URI(),
		Error:       st.Error,
		RequestID:   st.RequestID,
		UpdatedAt:   st.UpdatedAt,
	}
	if !st.Transformed.IsZero() {
		out.DownloadName = persona.DownloadFilename(st.Config, st.Transformed.MimeType)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, apiError{Error: msg, Kind: kind})
}

// statusFor maps session and transformation errors to a status and kind.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrNoOriginal):
		return http.StatusUnprocessableEntity, "no_original"
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, session.ErrStale):
		return http.StatusConflict, "superseded"
	case errors.Is(err, session.ErrInvalidSelection):
		return http.StatusBadRequest, "invalid_selection"
	}

	switch kind := transform.KindOf(err); kind {
	case transform.KindConfiguration:
		return http.StatusServiceUnavailable, string(kind)
	case transform.KindTransport, transform.KindEmptyResult:
		return http.StatusBadGateway, string(kind)
	case transform.KindValidation:
		return http.StatusBadRequest, string(kind)
	}
	return http.StatusInternalServerError, "internal"
}

func (a *API) fail(w http.ResponseWriter, err error, st *session.State) {
	status, kind := statusFor(err)
	body := apiError{Error: err.Error(), Kind: kind}
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "err", err)
		body.Error = "internal error"
	}
	if st != nil && st.ID != "" {
		body.State = newStateResponse(*st)
	}
	writeJSON(w, status, body)
}
