// Package health serves the liveness endpoint.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aanand-mishra/users-api/internal/utils/response"
)

// Pinger is the slice of storage.Storage this handler needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New handles GET /healthz: 200 {"status":"ok"} while the store answers,
// 503 otherwise.
func New(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusServiceUnavailable,
				map[string]string{"status": "unavailable"})
			return
		}

		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
