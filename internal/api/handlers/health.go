package handlers

import (
	"net/http"
)

// ReadinessChecker is implemented by stores that load their state at startup.
type ReadinessChecker interface {
	Ready() bool
	Len() int
}

// HealthHandler reports liveness and, when a checker is set, inventory readiness.
type HealthHandler struct {
	Checker ReadinessChecker
}

type healthResponse struct {
	Status   string `json:"status"`
	Packages *int   `json:"packages,omitempty"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.Checker == nil {
		writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	if !h.Checker.Ready() {
		writeJSON(w, r, http.StatusServiceUnavailable, healthResponse{Status: "initializing"})
		return
	}

	n := h.Checker.Len()
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Packages: &n})
}
