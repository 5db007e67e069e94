package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/logging"
)

type successBody struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type errorBody struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

// HandlerFunc is an HTTP handler that reports failures by returning an error.
// ServeHTTP converts the error into an error envelope exactly once.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// ServeHTTP implements http.Handler.
func (fn HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := fn(w, r); err != nil {
		WriteError(r.Context(), w, err)
	}
}

// Write sends a success envelope carrying data.
func Write(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(ctx, w, status, successBody{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// WriteError sends an error envelope for err. Errors that are not *Error are
// reported as a generic server error; their text never reaches the client.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	logger := logging.FromContext(ctx)

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = Internal("Something went wrong", err)
	}

	details := apiErr.Details
	if details == nil {
		details = []string{}
	}

	switch {
	case apiErr.Status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", apiErr.Status, "message", apiErr.Message, "error", apiErr.Err)
	case apiErr.Status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", apiErr.Status, "message", apiErr.Message, "error", apiErr.Err)
	}

	writeJSON(ctx, w, apiErr.Status, errorBody{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Success:    false,
		Errors:     details,
	})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
	}
}
