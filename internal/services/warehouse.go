package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
	"github.com/Zinaxy/HailAndCottonPrac/internal/platform/obs"
	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

var (
	ErrNotReady           = errors.New("warehouse: not initialized")
	ErrAlreadyInitialized = errors.New("warehouse: already initialized")
)

// Warehouse owns the authoritative, ordered in-memory package collection and
// keeps it in sync with a snapshot store.
//
// Every successful AddPackage replaces the whole snapshot. The collection is
// only updated after the snapshot write succeeds, so memory and storage never
// diverge. Lookups are linear scans in insertion order.
type Warehouse struct {
	snapshots ports.SnapshotStore
	notifier  ports.PlacementNotifier
	lenient   bool
	now       func() time.Time

	mu       sync.RWMutex
	ready    bool
	packages []*domain.Package
}

type Option func(*Warehouse)

// WithNotifier registers an observer for completed placements.
func WithNotifier(n ports.PlacementNotifier) Option {
	return func(w *Warehouse) { w.notifier = n }
}

// WithLenientLoad makes Initialize log and skip malformed records instead of
// failing on the first one.
func WithLenientLoad(lenient bool) Option {
	return func(w *Warehouse) { w.lenient = lenient }
}

// WithClock overrides the clock used to stamp records that carry no date.
func WithClock(now func() time.Time) Option {
	return func(w *Warehouse) { w.now = now }
}

func NewWarehouse(snapshots ports.SnapshotStore, opts ...Option) *Warehouse {
	w := &Warehouse{
		snapshots: snapshots,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

var _ ports.PackageRepository = (*Warehouse)(nil)

// Initialize loads the persisted snapshot. It is the only read from storage
// during the warehouse's lifetime.
func (w *Warehouse) Initialize(ctx context.Context) (err error) {
	defer obs.Time(ctx, "warehouse.Initialize")(&err)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ready {
		return ErrAlreadyInitialized
	}
	if w.snapshots == nil {
		return errors.New("initialize warehouse: snapshot store is nil")
	}

	lines, err := w.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("initialize warehouse: load snapshot: %w", err)
	}

	now := w.now()
	packages := make([]*domain.Package, 0, len(lines))
	for i, line := range lines {
		line, ok := domain.NormalizeRecordLine(line)
		if !ok {
			continue
		}

		pkg, err := domain.DecodeRecordAt(line, now)
		if err != nil {
			var fe *domain.FormatError
			if errors.As(err, &fe) {
				fe.Line = i + 1
			}
			if w.lenient {
				log.Printf("req_id=%s op=warehouse.Initialize skip=%v", obs.RequestID(ctx), err)
				continue
			}
			return fmt.Errorf("initialize warehouse: %w", err)
		}
		packages = append(packages, pkg)
	}

	w.packages = packages
	w.ready = true
	return nil
}

// Ready reports whether Initialize has completed successfully.
func (w *Warehouse) Ready() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ready
}

// Len returns the number of packages held.
func (w *Warehouse) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.packages)
}

// AddPackage appends pkg and rewrites the whole snapshot. The placement is
// only reported to the notifier; it is not stored.
func (w *Warehouse) AddPackage(ctx context.Context, pkg *domain.Package, placement domain.Placement) (err error) {
	defer obs.Time(ctx, "warehouse.AddPackage")(&err)

	if pkg == nil {
		return errors.New("add package: package must be non-nil")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.ready {
		return fmt.Errorf("add package %q: %w", pkg.SerialNumber, ErrNotReady)
	}

	next := make([]*domain.Package, len(w.packages), len(w.packages)+1)
	copy(next, w.packages)
	next = append(next, pkg)

	lines := make([]string, 0, len(next))
	for _, p := range next {
		lines = append(lines, domain.EncodeRecord(p))
	}

	if err := w.snapshots.Replace(ctx, lines); err != nil {
		return fmt.Errorf("add package %q: replace snapshot: %w", pkg.SerialNumber, err)
	}
	w.packages = next

	if w.notifier != nil {
		w.notifier.PackagePlaced(ctx, pkg, placement)
	}
	return nil
}

// SearchBySerial returns the first package whose serial number equals
// serialNumber exactly.
func (w *Warehouse) SearchBySerial(ctx context.Context, serialNumber string) (*domain.Package, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.ready {
		return nil, fmt.Errorf("search package %q: %w", serialNumber, ErrNotReady)
	}

	for _, p := range w.packages {
		if p.SerialNumber == serialNumber {
			return p, nil
		}
	}
	return nil, fmt.Errorf("search package %q: %w", serialNumber, domain.ErrPackageNotFound)
}

// ListAll returns every package in insertion order. The slice is a copy and
// is empty, not nil, when the warehouse holds nothing.
func (w *Warehouse) ListAll(ctx context.Context) ([]*domain.Package, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.ready {
		return nil, fmt.Errorf("list packages: %w", ErrNotReady)
	}

	out := make([]*domain.Package, len(w.packages))
	copy(out, w.packages)
	return out, nil
}
