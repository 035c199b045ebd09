package handlers

import (
	"net/http"
	"time"
)

type StatusResponse struct {
	Success bool      `json:"success"`
	Status  string    `json:"status"`
	Time    time.Time `json:"time"`
}

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Success: true, Status: "ok", Time: time.Now().UTC()})
}

// Health reports database, schema and cache reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	report := h.HealthService.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
		h.Log.Warnw("health check degraded", "checks", report.Checks, "missing_tables", report.MissingTables)
	}
	writeJSON(w, status, map[string]any{"success": report.Healthy(), "data": report})
}
