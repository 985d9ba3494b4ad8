package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"covid-dashboard/internal/domain/entity"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string                 `json:"status"`            // "healthy" or "unhealthy"
	Message string                 `json:"message,omitempty"` // Optional status message
	Details map[string]interface{} `json:"details,omitempty"` // Optional additional details
}

// HealthHandler handles health check endpoint requests. The only
// dependency to check is the dataset loaded at startup; it never
// changes, so an unhealthy report here means the process started in a
// state it should not have.
type HealthHandler struct {
	Dataset *entity.Dataset
	Version string
}

// ServeHTTP reports the application health status.
// Returns 200 OK if healthy, or 503 Service Unavailable otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)
	allHealthy := true

	if h.Dataset == nil || h.Dataset.Len() == 0 {
		checks["dataset"] = CheckStatus{
			Status:  "unhealthy",
			Message: "no records loaded",
		}
		allHealthy = false
	} else {
		checks["dataset"] = CheckStatus{
			Status: "healthy",
			Details: map[string]interface{}{
				"records":   h.Dataset.Len(),
				"countries": len(h.Dataset.Countries()),
			},
		}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Default().Error("health: failed to encode response", slog.Any("error", err))
	}
}

// ReadyHandler reports readiness to serve traffic. The dashboard is
// ready as soon as the dataset is in memory.
type ReadyHandler struct {
	Dataset *entity.Dataset
}

// ServeHTTP returns 200 when the dataset is loaded, 503 otherwise.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.Dataset == nil || h.Dataset.Len() == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "not ready"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// LiveHandler reports process liveness.
type LiveHandler struct{}

// ServeHTTP always returns 200; reaching the handler proves liveness.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}
