package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Zinaxy/HailAndCottonPrac/internal/adapters/storage"
	"github.com/Zinaxy/HailAndCottonPrac/internal/domain"
)

type memSnapshots struct {
	lines      []string
	loadErr    error
	replaceErr error
	loads      int
	replaces   int
}

func (m *memSnapshots) Load(ctx context.Context) ([]string, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]string(nil), m.lines...), nil
}

func (m *memSnapshots) Replace(ctx context.Context, lines []string) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaces++
	m.lines = append([]string(nil), lines...)
	return nil
}

type placedCall struct {
	serial    string
	placement domain.Placement
}

type recordingNotifier struct {
	calls []placedCall
}

func (r *recordingNotifier) PackagePlaced(ctx context.Context, pkg *domain.Package, placement domain.Placement) {
	r.calls = append(r.calls, placedCall{serial: pkg.SerialNumber, placement: placement})
}

func newReadyWarehouse(t *testing.T, snaps *memSnapshots, opts ...Option) *Warehouse {
	t.Helper()
	w := NewWarehouse(snaps, opts...)
	if err := w.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return w
}

func mustPackage(t *testing.T, serial string, mass float64, typ string) *domain.Package {
	t.Helper()
	p, err := domain.NewPackage(serial, "QM", mass, typ)
	if err != nil {
		t.Fatalf("new package %q: %v", serial, err)
	}
	return p
}

func serials(pkgs []*domain.Package) []string {
	out := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, p.SerialNumber)
	}
	return out
}

var northRack = domain.Placement{Warehouse: "North", RackSerial: "R1", LineNumber: 1}

func TestWarehouseInsertionOrderPreserved(t *testing.T) {
	ctx := context.Background()
	snaps := &memSnapshots{}
	w := newReadyWarehouse(t, snaps)

	for _, s := range []string{"A", "B", "C"} {
		if err := w.AddPackage(ctx, mustPackage(t, s, 1, domain.TypeCarton), northRack); err != nil {
			t.Fatalf("add %s: %v", s, err)
		}
	}

	got, err := w.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !slices.Equal(serials(got), []string{"A", "B", "C"}) {
		t.Fatalf("order = %q, want A B C", serials(got))
	}
	if w.Len() != 3 {
		t.Fatalf("Len = %d, want 3", w.Len())
	}
}

func TestWarehouseAddRewritesFullSnapshot(t *testing.T) {
	ctx := context.Background()
	snaps := &memSnapshots{}
	w := newReadyWarehouse(t, snaps)

	a := mustPackage(t, "A", 1, domain.TypeCarton)
	b := mustPackage(t, "B", 2.5, domain.TypeLoose)
	if err := w.AddPackage(ctx, a, northRack); err != nil {
		t.Fatalf("add A: %v", err)
	}
	if err := w.AddPackage(ctx, b, northRack); err != nil {
		t.Fatalf("add B: %v", err)
	}

	want := []string{domain.EncodeRecord(a), domain.EncodeRecord(b)}
	if !slices.Equal(snaps.lines, want) {
		t.Fatalf("snapshot = %q, want %q", snaps.lines, want)
	}
	if snaps.replaces != 2 {
		t.Fatalf("replaces = %d, want one per add", snaps.replaces)
	}
}

func TestWarehouseListIdempotent(t *testing.T) {
	ctx := context.Background()
	w := newReadyWarehouse(t, &memSnapshots{})
	for _, s := range []string{"X", "Y"} {
		if err := w.AddPackage(ctx, mustPackage(t, s, 1, domain.TypeCarton), northRack); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	first, _ := w.ListAll(ctx)
	second, _ := w.ListAll(ctx)
	if !slices.Equal(first, second) {
		t.Fatalf("listing changed between calls: %q vs %q", serials(first), serials(second))
	}

	// The returned slice is a copy.
	first[0] = nil
	third, _ := w.ListAll(ctx)
	if third[0] == nil {
		t.Fatalf("caller mutation leaked into warehouse")
	}
}

func TestWarehouseSearchBySerial(t *testing.T) {
	ctx := context.Background()
	w := newReadyWarehouse(t, &memSnapshots{})

	x1 := mustPackage(t, "X1", 4, domain.TypeCarton)
	if err := w.AddPackage(ctx, x1, northRack); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := w.SearchBySerial(ctx, "X1")
	if err != nil {
		t.Fatalf("search X1: %v", err)
	}
	if got != x1 {
		t.Fatalf("search X1 returned %+v", got)
	}

	for _, miss := range []string{"nonexistent", "x1", "X1 ", ""} {
		_, err := w.SearchBySerial(ctx, miss)
		if !errors.Is(err, domain.ErrPackageNotFound) {
			t.Fatalf("search %q: err = %v, want ErrPackageNotFound", miss, err)
		}
	}
}

func TestWarehouseSearchReturnsFirstDuplicate(t *testing.T) {
	ctx := context.Background()
	w := newReadyWarehouse(t, &memSnapshots{})

	first := mustPackage(t, "DUP", 1, domain.TypeCarton)
	second := mustPackage(t, "DUP", 2, domain.TypeLoose)
	for _, p := range []*domain.Package{first, second} {
		if err := w.AddPackage(ctx, p, northRack); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got, err := w.SearchBySerial(ctx, "DUP")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got != first {
		t.Fatalf("expected first inserted duplicate, got mass %v", got.Mass)
	}
	if w.Len() != 2 {
		t.Fatalf("duplicates must both be kept, Len = %d", w.Len())
	}
}

func TestWarehousePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "packages.csv")

	w := NewWarehouse(storage.NewFileSnapshotStore(path))
	if err := w.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if err := w.AddPackage(ctx, mustPackage(t, "P100", 12.5, domain.TypeCarton), northRack); err != nil {
		t.Fatalf("add: %v", err)
	}

	restarted := NewWarehouse(storage.NewFileSnapshotStore(path))
	if err := restarted.Initialize(ctx); err != nil {
		t.Fatalf("initialize after restart: %v", err)
	}
	got, err := restarted.SearchBySerial(ctx, "P100")
	if err != nil {
		t.Fatalf("search after restart: %v", err)
	}
	if got.SerialNumber != "P100" || got.Mass != 12.5 || got.Type != domain.TypeCarton {
		t.Fatalf("restored package = %+v", got)
	}
}

func TestWarehouseRestoresDateAdded(t *testing.T) {
	ctx := context.Background()
	added := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)
	p := &domain.Package{SerialNumber: "D1", QualityMark: "A", Mass: 1, Type: domain.TypeCarton, DateAdded: added}
	snaps := &memSnapshots{lines: []string{domain.EncodeRecord(p)}}

	w := newReadyWarehouse(t, snaps)
	got, err := w.SearchBySerial(ctx, "D1")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !got.DateAdded.Equal(added) {
		t.Fatalf("DateAdded = %v, want %v", got.DateAdded, added)
	}
}

func TestWarehouseStampsLegacyRecordsWithClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	snaps := &memSnapshots{lines: []string{"OLD1,A,5,carton,10/18/2026 5:11:00 AM"}}

	w := newReadyWarehouse(t, snaps, WithClock(func() time.Time { return now }))
	got, err := w.SearchBySerial(ctx, "OLD1")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !got.DateAdded.Equal(now) {
		t.Fatalf("DateAdded = %v, want clock time %v", got.DateAdded, now)
	}
}

func TestWarehouseEmptyStore(t *testing.T) {
	ctx := context.Background()
	w := NewWarehouse(storage.NewFileSnapshotStore(filepath.Join(t.TempDir(), "missing.csv")))
	if err := w.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	got, err := w.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("ListAll = %#v, want empty non-nil slice", got)
	}
}

func TestWarehouseInitializeSkipsBlankLines(t *testing.T) {
	snaps := &memSnapshots{lines: []string{"A,q,1,carton", "", "   ", "B,q,2,loose\r"}}
	w := newReadyWarehouse(t, snaps)

	got, _ := w.ListAll(context.Background())
	if !slices.Equal(serials(got), []string{"A", "B"}) {
		t.Fatalf("loaded = %q, want A B", serials(got))
	}
	if got[1].Type != domain.TypeLoose {
		t.Fatalf("trailing CR not stripped: type %q", got[1].Type)
	}
}

func TestWarehouseInitializeFailFast(t *testing.T) {
	snaps := &memSnapshots{lines: []string{"A,q,1,carton", "B,q"}}
	w := NewWarehouse(snaps)

	err := w.Initialize(context.Background())
	if !errors.Is(err, domain.ErrMalformedRecord) {
		t.Fatalf("err = %v, want ErrMalformedRecord", err)
	}
	var fe *domain.FormatError
	if !errors.As(err, &fe) || fe.Line != 2 {
		t.Fatalf("err = %v, want FormatError on line 2", err)
	}
	if w.Ready() {
		t.Fatalf("warehouse must stay uninitialized after a malformed snapshot")
	}
	if _, err := w.ListAll(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("ListAll err = %v, want ErrNotReady", err)
	}
}

func TestWarehouseInitializeLenient(t *testing.T) {
	snaps := &memSnapshots{lines: []string{"A,q,1,carton", "B,q", "C,q,heavy,carton", "D,q,4,loose"}}
	w := newReadyWarehouse(t, snaps, WithLenientLoad(true))

	got, _ := w.ListAll(context.Background())
	if !slices.Equal(serials(got), []string{"A", "D"}) {
		t.Fatalf("loaded = %q, want A D", serials(got))
	}
}

func TestWarehouseLenientSingleMalformedLine(t *testing.T) {
	snaps := &memSnapshots{lines: []string{"A,q,1,carton", "B,q"}}
	w := newReadyWarehouse(t, snaps, WithLenientLoad(true))
	if w.Len() != 1 {
		t.Fatalf("Len = %d, want exactly one package", w.Len())
	}
}

func TestWarehouseInitializeLoadError(t *testing.T) {
	loadErr := errors.New("permission denied")
	w := NewWarehouse(&memSnapshots{loadErr: loadErr})

	if err := w.Initialize(context.Background()); !errors.Is(err, loadErr) {
		t.Fatalf("err = %v, want wrapped load error", err)
	}
	if w.Ready() {
		t.Fatalf("warehouse must not be ready after a load error")
	}
}

func TestWarehouseInitializeOnce(t *testing.T) {
	snaps := &memSnapshots{}
	w := newReadyWarehouse(t, snaps)

	if err := w.Initialize(context.Background()); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second initialize err = %v, want ErrAlreadyInitialized", err)
	}
	if snaps.loads != 1 {
		t.Fatalf("loads = %d, storage must be read once", snaps.loads)
	}
}

func TestWarehouseNotReady(t *testing.T) {
	ctx := context.Background()
	snaps := &memSnapshots{}
	w := NewWarehouse(snaps)

	if err := w.AddPackage(ctx, mustPackage(t, "A", 1, domain.TypeCarton), northRack); !errors.Is(err, ErrNotReady) {
		t.Fatalf("AddPackage err = %v, want ErrNotReady", err)
	}
	if _, err := w.SearchBySerial(ctx, "A"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("SearchBySerial err = %v, want ErrNotReady", err)
	}
	if _, err := w.ListAll(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("ListAll err = %v, want ErrNotReady", err)
	}
	if snaps.replaces != 0 {
		t.Fatalf("nothing may be written before initialize")
	}
}

func TestWarehouseFailedRewriteKeepsMemory(t *testing.T) {
	ctx := context.Background()
	snaps := &memSnapshots{}
	notifier := &recordingNotifier{}
	w := newReadyWarehouse(t, snaps, WithNotifier(notifier))

	if err := w.AddPackage(ctx, mustPackage(t, "A", 1, domain.TypeCarton), northRack); err != nil {
		t.Fatalf("add A: %v", err)
	}

	snaps.replaceErr = errors.New("disk full")
	err := w.AddPackage(ctx, mustPackage(t, "B", 1, domain.TypeCarton), northRack)
	if !errors.Is(err, snaps.replaceErr) {
		t.Fatalf("err = %v, want wrapped replace error", err)
	}

	got, _ := w.ListAll(ctx)
	if !slices.Equal(serials(got), []string{"A"}) {
		t.Fatalf("memory = %q, want only A after failed rewrite", serials(got))
	}
	if _, err := w.SearchBySerial(ctx, "B"); !errors.Is(err, domain.ErrPackageNotFound) {
		t.Fatalf("B must not be searchable after failed rewrite, err = %v", err)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("notifier calls = %d, failed add must not be reported", len(notifier.calls))
	}
}

func TestWarehouseNotifiesPlacement(t *testing.T) {
	notifier := &recordingNotifier{}
	w := newReadyWarehouse(t, &memSnapshots{}, WithNotifier(notifier))

	placement := domain.Placement{
		Warehouse:  "South",
		RackSerial: "R9",
		LineNumber: 5,
		Pallet:     &domain.Pallet{SerialNumber: "PAL1", Capacity: 30},
	}
	if err := w.AddPackage(context.Background(), mustPackage(t, "L1", 2, domain.TypeLoose), placement); err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.serial != "L1" || call.placement.Warehouse != "South" || call.placement.Pallet.SerialNumber != "PAL1" {
		t.Fatalf("unexpected notification %+v", call)
	}
}

func TestWarehouseAddNilPackage(t *testing.T) {
	w := newReadyWarehouse(t, &memSnapshots{})
	if err := w.AddPackage(context.Background(), nil, northRack); err == nil {
		t.Fatalf("expected error for nil package")
	}
}

func TestWarehouseInitializeNilSnapshots(t *testing.T) {
	if err := NewWarehouse(nil).Initialize(context.Background()); err == nil {
		t.Fatalf("expected error for nil snapshot store")
	}
}

func TestWarehouseConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "packages.csv")
	w := NewWarehouse(storage.NewFileSnapshotStore(path))
	if err := w.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := domain.NewPackage("C"+string(rune('a'+i)), "QM", float64(i), domain.TypeCarton)
			if err != nil {
				errs <- err
				return
			}
			if err := w.AddPackage(ctx, p, northRack); err != nil {
				errs <- err
			}
			if _, err := w.ListAll(ctx); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent add: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	lines, err := storage.NewFileSnapshotStore(path).Load(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(lines) != n || w.Len() != n {
		t.Fatalf("snapshot has %d lines (%d bytes), memory %d; want %d", len(lines), len(raw), w.Len(), n)
	}
}
