package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/fxdesk/internal/api/response"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /api/v1/health. The service is up even when the
// document store is not, so the status code stays 200 and the store state
// is reported alongside.
func Health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := response.Health{Status: "ok", Store: "ok"}
		if store == nil {
			resp.Store = "unknown"
		} else if err := store.Ping(r.Context()); err != nil {
			resp.Store = "unavailable"
		}
		response.JSON(w, http.StatusOK, resp)
	}
}
