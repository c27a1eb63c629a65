package handlers

import (
	"net/http"
	"stop-sequencing-service/internal/platform/sysinfo"
	"time"
)

type HealthHandler struct {
	Oracle  string
	started time.Time
	system  sysinfo.Info
}

// NewHealthHandler probes the host once; the result does not change while
// the process runs.
func NewHealthHandler(oracle string) *HealthHandler {
	return &HealthHandler{Oracle: oracle, started: time.Now(), system: sysinfo.Collect()}
}

// Health provides a liveness check with build and host details.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"oracle":         h.Oracle,
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"system":         h.system,
	})
}
