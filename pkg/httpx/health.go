package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (item stores and the EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the set of dependencies to probe in the health endpoint.
// A nil EventBus is reported as "disabled" and never degrades status.
type HealthChecks struct {
	Backend  string
	Store    HealthChecker
	EventBus HealthChecker
}

type healthResponse struct {
	Status   string `json:"status"`
	Backend  string `json:"backend,omitempty"`
	Store    string `json:"store"`
	EventBus string `json:"event_bus"`
}

// HealthHandler returns an http.HandlerFunc that probes all registered
// HealthCheckers and reports degraded status if any of them fail.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:   "ok",
			Backend:  checks.Backend,
			Store:    probe(ctx, checks.Store),
			EventBus: probe(ctx, checks.EventBus),
		}
		if resp.Store == "unreachable" || resp.EventBus == "unreachable" {
			resp.Status = "degraded"
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}

func probe(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return "disabled"
	}
	if err := c.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}

// WelcomeHandler answers GET / with a fixed greeting.
func WelcomeHandler(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "Welcome!"})
}
