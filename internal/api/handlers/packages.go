package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/Zinaxy/HailAndCottonPrac/internal/api/dto"
	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
	"github.com/Zinaxy/HailAndCottonPrac/internal/services"
)

// PackageHandler exposes the warehouse inventory over HTTP.
type PackageHandler struct {
	Repo ports.PackageRepository
}

// Collection serves /packages: GET lists, POST adds.
func (h *PackageHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.List(w, r)
	case http.MethodPost:
		h.Add(w, r)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *PackageHandler) List(w http.ResponseWriter, r *http.Request) {
	pkgs, err := h.Repo.ListAll(r.Context())
	if err != nil {
		writeRepoError(w, r, "list packages", err)
		return
	}

	res := dto.ListPackagesResponse{
		Packages: make([]dto.PackageResponse, 0, len(pkgs)),
	}
	for _, p := range pkgs {
		res.Packages = append(res.Packages, toPackageResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Add creates a package and places it. A pallet is only attached to loose packages.
func (h *PackageHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req dto.AddPackageRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if strings.TrimSpace(req.SerialNumber) == "" {
		writeError(w, r, http.StatusBadRequest, "serial_number is required")
		return
	}
	if req.Mass == nil {
		writeError(w, r, http.StatusBadRequest, "mass is required")
		return
	}
	if strings.TrimSpace(req.PackageType) == "" {
		writeError(w, r, http.StatusBadRequest, "package_type is required")
		return
	}

	pkg, err := domain.NewPackage(req.SerialNumber, req.QualityMark, *req.Mass, req.PackageType)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	placement := domain.Placement{
		Warehouse:  req.Warehouse,
		RackSerial: req.RackSerial,
		LineNumber: req.LineNumber,
	}
	if req.Pallet != nil && pkg.IsLoose() {
		placement.Pallet = &domain.Pallet{SerialNumber: req.Pallet.SerialNumber, Capacity: req.Pallet.Capacity}
	}

	if err := h.Repo.AddPackage(r.Context(), pkg, placement); err != nil {
		writeRepoError(w, r, "add package", err)
		return
	}

	writeJSON(w, r, http.StatusCreated, dto.AddPackageResponse{
		Package:  toPackageResponse(pkg),
		Messages: placement.Messages(),
	})
}

// Get serves GET /packages/{serial}.
func (h *PackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	serial := strings.TrimPrefix(r.URL.Path, "/packages/")
	if serial == "" || strings.Contains(serial, "/") {
		writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	pkg, err := h.Repo.SearchBySerial(r.Context(), serial)
	if err != nil {
		writeRepoError(w, r, "search package", err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPackageResponse(pkg))
}

func toPackageResponse(p *domain.Package) dto.PackageResponse {
	return dto.PackageResponse{
		SerialNumber: p.SerialNumber,
		QualityMark:  p.QualityMark,
		Mass:         p.Mass,
		PackageType:  p.Type,
		DateAdded:    p.DateAdded,
	}
}

func writeRepoError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrPackageNotFound):
		writeError(w, r, http.StatusNotFound, "package not found")
	case errors.Is(err, services.ErrNotReady):
		writeError(w, r, http.StatusServiceUnavailable, "inventory not ready")
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
