// Package api implements the HTTP surface described in spec.md 6: nine
// JSON-in/JSON-out endpoints backed by internal/orchestrator, sharing a
// single {success, data} / {success, code, message, ...} envelope.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/exotic-travel-booking/backend/internal/apperr"
)

// envelope is the single response shape every endpoint writes (spec 6:
// "every response carries a boolean success").
type envelope struct {
	Success         bool     `json:"success"`
	Data            any      `json:"data,omitempty"`
	Code            string   `json:"code,omitempty"`
	Message         string   `json:"message,omitempty"`
	UserMessage     string   `json:"user_message,omitempty"`
	RecoveryOptions []string `json:"recovery_options,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// writeError maps any error to the error envelope, defaulting to a generic
// API_ERROR for anything not already an *apperr.Error (spec 7 "unknown
// exceptions map to API_ERROR").
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		appErr = apperr.Internal(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code.HTTPStatus())
	json.NewEncoder(w).Encode(envelope{
		Success:         false,
		Code:            string(appErr.Code),
		Message:         appErr.Message,
		UserMessage:     appErr.UserMessage,
		RecoveryOptions: appErr.RecoveryOptions,
	})
}

func decodeJSON(r *http.Request, dest any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}

func validationError(message string) *apperr.Error {
	return apperr.New(apperr.CodeValidationError, message,
		message, "fix_request_and_retry")
}
