package ports

import (
	"context"

	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
)

// Port: the caller-facing boundary of the warehouse inventory.
type PackageRepository interface {
	// Append a package and persist the full inventory.
	AddPackage(ctx context.Context, pkg *domain.Package, placement domain.Placement) error
	// Return the first package with the given serial number, or domain.ErrPackageNotFound.
	SearchBySerial(ctx context.Context, serialNumber string) (*domain.Package, error)
	// Retrieve all packages in insertion order.
	ListAll(ctx context.Context) ([]*domain.Package, error)
}
