package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestRequestID(t *testing.T) {
	if got := RequestID(context.Background()); got != "-" {
		t.Fatalf("RequestID without id = %q, want -", got)
	}

	ctx := WithRequestID(context.Background())
	id := RequestID(ctx)
	if len(id) != 12 {
		t.Fatalf("RequestID = %q, want 12 hex chars", id)
	}
	if other := RequestID(WithRequestID(context.Background())); other == id {
		t.Fatalf("request ids should differ, both %q", id)
	}
}

func TestTimeLogsOutcome(t *testing.T) {
	buf := captureLog(t)
	ctx := context.WithValue(context.Background(), RequestIDKey, "abc")

	func() (err error) {
		defer Time(ctx, "warehouse.AddPackage")(&err)
		return errors.New("disk full")
	}()
	func() (err error) {
		defer Time(ctx, "warehouse.ListAll")(&err)
		return nil
	}()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "req_id=abc op=warehouse.AddPackage") || !strings.HasSuffix(lines[0], "err=disk full") {
		t.Fatalf("unexpected failure line %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "req_id=abc op=warehouse.ListAll") || strings.Contains(lines[1], "err=") {
		t.Fatalf("unexpected success line %q", lines[1])
	}
}
