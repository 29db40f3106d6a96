package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

type PalletSeed struct {
	SerialNumber string `json:"serial_number"`
	Capacity     int    `json:"capacity"`
}

type PackageSeed struct {
	SerialNumber string      `json:"serial_number"`
	QualityMark  string      `json:"quality_mark"`
	Mass         float64     `json:"mass"`
	PackageType  string      `json:"package_type"`
	Warehouse    string      `json:"warehouse"`
	RackSerial   string      `json:"rack_serial"`
	LineNumber   int         `json:"line_number"`
	Pallet       *PalletSeed `json:"pallet,omitempty"`
}

// Populate an empty inventory with package data from a JSON file.
// A non-empty inventory is left untouched and reports 0 seeded packages.
// On failure the count of packages already added is returned with the error.
func SeedFromJSON(ctx context.Context, repo ports.PackageRepository, jsonPath string) (int, error) {
	existing, err := repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed packages: list existing: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed packages: read %q: %w", jsonPath, err)
	}

	var data []PackageSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed packages: parse json: %w", err)
	}

	type seedRow struct {
		pkg       *domain.Package
		placement domain.Placement
	}
	rows := make([]seedRow, 0, len(data))
	for i, item := range data {
		pkg, err := domain.NewPackage(item.SerialNumber, item.QualityMark, item.Mass, item.PackageType)
		if err != nil {
			return 0, fmt.Errorf("seed packages: item #%d: %w", i+1, err)
		}

		placement := domain.Placement{
			Warehouse:  item.Warehouse,
			RackSerial: item.RackSerial,
			LineNumber: item.LineNumber,
		}
		if item.Pallet != nil && pkg.IsLoose() {
			placement.Pallet = &domain.Pallet{SerialNumber: item.Pallet.SerialNumber, Capacity: item.Pallet.Capacity}
		}
		rows = append(rows, seedRow{pkg: pkg, placement: placement})
	}

	for i, r := range rows {
		if err := repo.AddPackage(ctx, r.pkg, r.placement); err != nil {
			return i, fmt.Errorf("seed packages: add serial=%q: %w", r.pkg.SerialNumber, err)
		}
	}

	return len(rows), nil
}
