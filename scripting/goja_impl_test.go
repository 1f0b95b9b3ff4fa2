package scripting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wudi/pdfoverlay/coords"
)

type fakeHost struct {
	pages     []coords.Rotation
	inserted  []string
	batches   []string
	alerts    []string
	batchFail int
}

func (h *fakeHost) PageCount() (int, error) { return len(h.pages), nil }

func (h *fakeHost) PageRotation(pageNumber int) (coords.Rotation, error) {
	if pageNumber < 1 || pageNumber > len(h.pages) {
		return 0, fmt.Errorf("no page %d", pageNumber)
	}
	return h.pages[pageNumber-1], nil
}

func (h *fakeHost) InsertText(pageNumber int, x, y, size float64, text string) error {
	if pageNumber < 1 || pageNumber > len(h.pages) {
		return fmt.Errorf("no page %d", pageNumber)
	}
	h.inserted = append(h.inserted, fmt.Sprintf("%d:%s@%g,%g/%g", pageNumber, text, x, y, size))
	return nil
}

func (h *fakeHost) InsertOnPages(pages []int, text string, box coords.Rect) (int, int, error) {
	h.batches = append(h.batches, fmt.Sprintf("%v %q %+v", pages, text, box))
	return len(pages) - h.batchFail, h.batchFail, nil
}

func (h *fakeHost) Alert(message string) { h.alerts = append(h.alerts, message) }

func newTestEngine(t *testing.T, host EditorHost) *GojaEngine {
	t.Helper()
	e := NewEngine()
	if err := e.RegisterHost(host); err != nil {
		t.Fatalf("RegisterHost: %v", err)
	}
	return e
}

func TestContextCancellation(t *testing.T) {
	e := NewEngine()

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	if _, err := e.Execute(ctx, "while (true) {}"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	// The runtime must recover for the next script.
	if _, err := e.Execute(context.Background(), "1 + 1"); err != nil {
		t.Fatalf("engine did not recover after interrupt: %v", err)
	}
}

func TestImmediateCancel(t *testing.T) {
	e := NewEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Execute(ctx, "42"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}

func TestEditorQueries(t *testing.T) {
	host := &fakeHost{pages: []coords.Rotation{coords.Rotate0, coords.Rotate90, coords.Rotate270}}
	e := newTestEngine(t, host)

	v, err := e.Execute(context.Background(), "editor.pageCount()")
	if err != nil {
		t.Fatalf("pageCount: %v", err)
	}
	if v != int64(3) {
		t.Fatalf("pageCount = %v, want 3", v)
	}

	v, err = e.Execute(context.Background(), "editor.rotation(2)")
	if err != nil {
		t.Fatalf("rotation: %v", err)
	}
	if v != int64(90) {
		t.Fatalf("rotation(2) = %v, want 90", v)
	}
}

func TestInsertTextFromScript(t *testing.T) {
	host := &fakeHost{pages: make([]coords.Rotation, 2)}
	e := newTestEngine(t, host)

	script := `
		for (var p = 1; p <= editor.pageCount(); p++) {
			editor.insertText(p, 72, 700, 12, "Reviewed");
		}
	`
	if _, err := e.Execute(context.Background(), script); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := []string{"1:Reviewed@72,700/12", "2:Reviewed@72,700/12"}
	if len(host.inserted) != 2 || host.inserted[0] != want[0] || host.inserted[1] != want[1] {
		t.Fatalf("inserted = %v, want %v", host.inserted, want)
	}
}

func TestHostErrorIsCatchable(t *testing.T) {
	host := &fakeHost{pages: make([]coords.Rotation, 1)}
	e := newTestEngine(t, host)

	v, err := e.Execute(context.Background(), `
		var msg = "ok";
		try { editor.insertText(99, 0, 0, 12, "x"); } catch (err) { msg = String(err); }
		msg;
	`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if s, ok := v.(string); !ok || !strings.Contains(s, "no page 99") {
		t.Fatalf("caught message = %v, want host error text", v)
	}
}

func TestInsertOnPagesFromScript(t *testing.T) {
	host := &fakeHost{pages: make([]coords.Rotation, 5), batchFail: 1}
	e := newTestEngine(t, host)

	v, err := e.Execute(context.Background(), `
		var r = editor.insertOnPages([1, 3, 5], "Approved", {x: 100, y: 620, width: 200, height: 80});
		app.alert("done " + r.succeeded + "/" + (r.succeeded + r.failed));
		r.failed;
	`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v != int64(1) {
		t.Fatalf("failed = %v, want 1", v)
	}
	if len(host.batches) != 1 || !strings.Contains(host.batches[0], "[1 3 5]") {
		t.Fatalf("batches = %v", host.batches)
	}
	if len(host.alerts) != 1 || host.alerts[0] != "done 2/3" {
		t.Fatalf("alerts = %v, want [done 2/3]", host.alerts)
	}
}

func TestBoxValidationFromScript(t *testing.T) {
	host := &fakeHost{pages: make([]coords.Rotation, 1)}
	e := newTestEngine(t, host)

	if _, err := e.Execute(context.Background(), `editor.insertOnPages([1], "x", {x: 1, y: 2})`); err == nil {
		t.Fatal("box without width accepted")
	}
	if _, err := e.Execute(context.Background(), `editor.insertOnPages("1", "x", {x:1,y:2,width:3,height:4})`); err == nil {
		t.Fatal("non-array pages accepted")
	}
}
