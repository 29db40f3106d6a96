package ports

import (
	"context"

	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
)

// Observer of completed placements.
type PlacementNotifier interface {
	PackagePlaced(ctx context.Context, pkg *domain.Package, placement domain.Placement)
}
