// Package httputil holds the JSON plumbing shared by all handlers: response
// writing, the error envelope, and request decoding with validation.
package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "admitly/pkg/domain-errors"
)

// errorResponse is the uniform error envelope. Message is omitted for
// internal errors so storage details never reach clients.
type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err in the error envelope with its mapped HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	derr := dErrors.From(err)

	resp := errorResponse{Error: string(derr.Code)}
	if derr.Code != dErrors.CodeInternal {
		resp.Message = derr.Message
		resp.Details = derr.Details
	}
	WriteJSON(w, dErrors.ToHTTPStatus(err), resp)
}

// Validatable is implemented by request types that validate and normalize
// themselves after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes the request body into T and runs its validation.
// On failure it writes the error response and returns ok=false; the handler
// just returns.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	req := new(T)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.WarnContext(r.Context(), "malformed request body", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return nil, false
	}
	if err := PT(req).Validate(); err != nil {
		WriteError(w, err)
		return nil, false
	}
	return req, true
}
