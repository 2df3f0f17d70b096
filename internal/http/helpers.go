package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/cardosoccc/bud/internal/core"
	"github.com/cardosoccc/bud/internal/middleware/trace"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.ErrorContext(r.Context(), "Response encoding failed",
			"error", err, "path", r.URL.Path)
	}
}

// writeError translates a domain error into a status code: rejected input is
// 422, unresolved identifiers 404, blocked deletes 409, a broken pairing
// invariant 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsValidation(err),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidAmount):
		status = http.StatusUnprocessableEntity
	case core.IsNotFound(err):
		status = http.StatusNotFound
	case core.IsReferential(err):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "Request failed",
			"error", err, "method", r.Method, "path", r.URL.Path)
	}
	s.writeJSON(w, r, status, errorResponse{
		Error:     err.Error(),
		RequestID: trace.GetRequestID(r.Context()),
	})
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Error:     "malformed request body: " + err.Error(),
			RequestID: trace.GetRequestID(r.Context()),
		})
		return false
	}
	return true
}
