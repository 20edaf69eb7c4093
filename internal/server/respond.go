package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/session"
)

// unavailableMessage is the only text a client sees for upstream failures.
const unavailableMessage = "the quiz service is temporarily unavailable, please try again"

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// statusFor maps a domain error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound, "session not found"
	case errors.Is(err, session.ErrEmptyAnswer):
		return http.StatusBadRequest, "message cannot be empty"
	case errors.Is(err, llm.ErrUnknownModel):
		return http.StatusBadRequest, "unknown model"
	case errors.Is(err, session.ErrModelUnavailable), errors.Is(err, session.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, unavailableMessage
	}
	return http.StatusInternalServerError, "internal error"
}
