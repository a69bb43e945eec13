package handler

import (
	"net/http"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// Health returns the health status of the service
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	services := make(map[string]string, len(h.checks))
	status := "healthy"
	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			h.log.Warn().Err(err).Str("service", name).Msg("health check failed")
			services[name] = "unhealthy"
			status = "degraded"
			continue
		}
		services[name] = "healthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:   status,
		Version:  Version,
		Services: services,
	})
}
