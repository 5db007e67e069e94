package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/response"
)

// HealthHandler responds with service health information. Check, when set,
// probes the backing store.
type HealthHandler struct {
	Check   func(ctx context.Context) error
	Timeout time.Duration
}

type healthStatus struct {
	Status string `json:"status"`
}

// Handle implements GET /healthz.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if h.Check != nil {
		timeout := h.Timeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := h.Check(checkCtx); err != nil {
			return response.New(http.StatusServiceUnavailable, "Service unavailable").WithCause(err)
		}
	}

	response.Write(ctx, w, http.StatusOK, healthStatus{Status: "ok"}, "OK")
	return nil
}
