package api

import (
	"net/http"

	"github.com/Zinaxy/HailAndCottonPrac/internal/api/handlers"
	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(repo ports.PackageRepository) http.Handler {
	mux := http.NewServeMux()

	pkgHandler := &handlers.PackageHandler{Repo: repo}
	healthHandler := &handlers.HealthHandler{}
	// Report readiness when the repository exposes it.
	if rc, ok := repo.(handlers.ReadinessChecker); ok {
		healthHandler.Checker = rc
	}

	mux.HandleFunc("/health", healthHandler.Health)
	mux.HandleFunc("/packages", pkgHandler.Collection)
	mux.HandleFunc("/packages/", pkgHandler.Get)

	return withRequestLog(mux)
}
