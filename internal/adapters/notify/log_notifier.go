package notify

import (
	"context"
	"log"

	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
	"github.com/Zinaxy/HailAndCottonPrac/internal/platform/obs"
	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

// LogNotifier writes placement confirmations to a logger.
type LogNotifier struct {
	Logger *log.Logger
}

// NewLogNotifier returns a notifier using l, or the standard logger when l is nil.
func NewLogNotifier(l *log.Logger) *LogNotifier {
	if l == nil {
		l = log.Default()
	}
	return &LogNotifier{Logger: l}
}

var _ ports.PlacementNotifier = (*LogNotifier)(nil)

func (n *LogNotifier) PackagePlaced(ctx context.Context, pkg *domain.Package, placement domain.Placement) {
	reqID := obs.RequestID(ctx)
	for _, msg := range placement.Messages() {
		n.Logger.Printf("req_id=%s serial=%s msg=%q", reqID, pkg.SerialNumber, msg)
	}
}
