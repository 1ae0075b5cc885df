// Package fleet exposes the live simulation over HTTP and gRPC health.
package fleet

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

const maxBodySize = 1 << 20

// httpError is an error the client is allowed to see.
type httpError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *httpError) Error() string { return fmt.Sprintf("%d: %s", e.Status, e.Message) }

func badRequest(format string, args ...any) error {
	return &httpError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...any) error {
	return &httpError{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &httpError{Status: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle turns a handler error into a JSON response. Anything that is not an
// httpError is logged and reported as a 500.
func (h *Handler) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}

		var httpErr *httpError
		if errors.As(err, &httpErr) {
			h.logger.Warn("request rejected",
				slog.String("path", r.URL.Path),
				slog.Int("status", httpErr.Status),
				slog.String("error", httpErr.Message))
			h.respondJSON(w, httpErr.Status, httpErr)
			return
		}

		h.logger.Error("request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		h.respondJSON(w, http.StatusInternalServerError, &httpError{Message: "internal server error"})
	}
}

// respondJSON writes only headers when data is nil.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("encode response", slog.Any("error", err))
	}
}

func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, badRequest("invalid body: %v", err)
	}
	return v, nil
}
