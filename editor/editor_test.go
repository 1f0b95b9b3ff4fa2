package editor

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/wudi/pdfoverlay/assets"
	"github.com/wudi/pdfoverlay/batch"
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/engine"
	"github.com/wudi/pdfoverlay/engine/enginetest"
	"github.com/wudi/pdfoverlay/ocr"
	"github.com/wudi/pdfoverlay/scripting"
)

func textPayload(text string) assets.Payload {
	return assets.Payload{Kind: assets.KindText, Text: assets.TextStyle{Text: text, Size: 14}}
}

func TestOverlaySessionEndToEnd(t *testing.T) {
	eng := enginetest.New(
		enginetest.PageSpec{},
		enginetest.PageSpec{Rotation: coords.Rotate90},
		enginetest.PageSpec{},
	)
	ed := New(eng, eng, Config{})
	doc := ed.Open("d1", "contract.pdf", []byte("original"))

	// Page 1 renders 612x792 at scale 1, displayed at 306 CSS px wide.
	s, err := ed.Show(context.Background(), 1, 1, 306, textPayload("Approved"))
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	defer s.Close()

	tr := s.Tracker()
	tr.PointerDown(50, 50)
	tr.PointerMove(150, 90)
	if _, ok := tr.PointerUp(); !ok {
		t.Fatal("box was not committed")
	}
	// 306 CSS px over a 612 px native surface: ratio 2. The displayed
	// box {50,50,100,40} lands at {100, 612, 200, 80} in document
	// points on the upright 612x792 page.
	preview, ok := s.PreviewRect()
	if !ok {
		t.Fatal("no preview rect for committed box")
	}
	want := coords.Rect{X: 100, Y: 612, Width: 200, Height: 80}
	if !scalar.EqualWithinAbs(preview.X, want.X, 1e-9) ||
		!scalar.EqualWithinAbs(preview.Y, want.Y, 1e-9) ||
		!scalar.EqualWithinAbs(preview.Width, want.Width, 1e-9) ||
		!scalar.EqualWithinAbs(preview.Height, want.Height, 1e-9) {
		t.Fatalf("preview = %+v, want %+v", preview, want)
	}
	if ref := s.Reference(); ref.PageNumber != 1 || ref.NativeWidth != 612 {
		t.Fatalf("reference descriptor = %+v", ref)
	}

	s.Pages().SelectAll(3)

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SuccessCount != 3 || res.FailCount != 0 {
		t.Fatalf("result = %d/%d, want 3/0", res.SuccessCount, res.FailCount)
	}
	if res.Summary() != "inserted on all 3 pages" {
		t.Fatalf("summary = %q", res.Summary())
	}

	if bytes.Equal(doc.Current().Bytes(), []byte("original")) {
		t.Fatal("document snapshot did not change")
	}
	if !doc.CanUndo() {
		t.Fatal("batch output was not pushed onto history")
	}
	snap, _ := doc.Undo()
	if string(snap.Bytes()) != "original" {
		t.Fatalf("undo = %q, want original", snap.Bytes())
	}
}

func TestReferencePageSelectedByDefault(t *testing.T) {
	eng := enginetest.New(enginetest.PageSpec{}, enginetest.PageSpec{}, enginetest.PageSpec{})
	ed := New(eng, eng, Config{})
	ed.Open("d1", "a.pdf", []byte("doc"))

	s, err := ed.Show(context.Background(), 2, 1, 306, textPayload("Approved"))
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	defer s.Close()
	if !s.Pages().Contains(2) || s.Pages().Len() != 1 {
		t.Fatalf("selection after Show = %v, want just reference page 2", s.Pages().Sorted())
	}

	// Draw and commit without touching the page toggles: the page the
	// box was drawn on gets stamped.
	tr := s.Tracker()
	tr.PointerDown(50, 50)
	tr.PointerMove(150, 90)
	if _, ok := tr.PointerUp(); !ok {
		t.Fatal("box was not committed")
	}
	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.SuccessCount != 1 || res.FirstPage != 2 {
		t.Fatalf("result = %d succeeded, first page %d; want 1 on page 2", res.SuccessCount, res.FirstPage)
	}
	if len(eng.Page(2).Draws) != 1 {
		t.Fatalf("draws on page 2 = %d, want 1", len(eng.Page(2).Draws))
	}
	for _, p := range []int{1, 3} {
		if len(eng.Page(p).Draws) != 0 {
			t.Fatalf("unselected page %d was drawn on", p)
		}
	}
}

func TestRunWithoutCommittedBox(t *testing.T) {
	eng := enginetest.New(enginetest.PageSpec{})
	ed := New(eng, eng, Config{})
	ed.Open("d1", "a.pdf", []byte("doc"))

	s, err := ed.Show(context.Background(), 1, 1, 306, textPayload("x"))
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	defer s.Close()
	s.Pages().Add(1)

	var ve *batch.ValidationError
	if _, err := s.Run(context.Background()); !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestRunAfterClose(t *testing.T) {
	eng := enginetest.New(enginetest.PageSpec{})
	ed := New(eng, eng, Config{})
	ed.Open("d1", "a.pdf", []byte("doc"))

	s, err := ed.Show(context.Background(), 1, 1, 306, textPayload("x"))
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	s.Close()
	if _, err := s.Run(context.Background()); err == nil {
		t.Fatal("closed session ran")
	}
	if _, ok := s.Tracker().Box(); ok {
		t.Fatal("box survived Close")
	}
	if s.Pages().Len() != 0 {
		t.Fatal("selection survived Close")
	}
}

func TestShowRequiresActiveDocument(t *testing.T) {
	eng := enginetest.New(enginetest.PageSpec{})
	ed := New(eng, eng, Config{})
	if _, err := ed.Show(context.Background(), 1, 1, 306, textPayload("x")); err == nil {
		t.Fatal("Show without a document succeeded")
	}
}

type fixedRecognizer struct{ text string }

func (fixedRecognizer) Name() string { return "fixed" }

func (f fixedRecognizer) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	return ocr.Result{InputID: in.ID, PlainText: f.text}, nil
}

func TestShowDerivesAltText(t *testing.T) {
	eng := enginetest.New(enginetest.PageSpec{})
	ed := New(eng, eng, Config{AltText: fixedRecognizer{text: "John  Hancock"}})
	ed.Open("d1", "a.pdf", []byte("doc"))

	s, err := ed.Show(context.Background(), 1, 1, 306, assets.Payload{
		Kind:  assets.KindSignature,
		Image: []byte("encoded-signature"),
	})
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	defer s.Close()
	if got := s.Payload().AltText; got != "John Hancock" {
		t.Fatalf("alt text = %q, want John Hancock", got)
	}

	// Caller-provided alt text wins over derivation.
	s2, err := ed.Show(context.Background(), 1, 1, 306, assets.Payload{
		Kind:    assets.KindSignature,
		Image:   []byte("encoded-signature"),
		AltText: "Jane Doe",
	})
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	defer s2.Close()
	if got := s2.Payload().AltText; got != "Jane Doe" {
		t.Fatalf("alt text = %q, want Jane Doe", got)
	}
}

func TestInsertText(t *testing.T) {
	eng := enginetest.New(enginetest.PageSpec{}, enginetest.PageSpec{})
	ed := New(eng, eng, Config{})
	doc := ed.Open("d1", "a.pdf", []byte("doc"))

	opts := engine.TextOptions{X: 72, Y: 700, Size: 12}
	err := ed.InsertText(context.Background(), 2, "Reviewed", opts)
	if err != nil {
		t.Fatalf("InsertText: %v", err)
	}
	if got := eng.Page(2).Texts; len(got) != 1 || got[0].Text != "Reviewed" {
		t.Fatalf("texts on page 2 = %+v", got)
	}
	if !doc.CanUndo() {
		t.Fatal("insert did not publish a snapshot")
	}

	if err := ed.InsertText(context.Background(), 9, "x", opts); err == nil {
		t.Fatal("out-of-range page accepted")
	}
}

func TestScriptHostThroughEngine(t *testing.T) {
	eng := enginetest.New(enginetest.PageSpec{}, enginetest.PageSpec{Rotation: coords.Rotate180})
	ed := New(eng, eng, Config{})
	doc := ed.Open("d1", "a.pdf", []byte("doc"))

	var alerts []string
	host := ed.ScriptHost(context.Background(), func(msg string) { alerts = append(alerts, msg) })
	js := scripting.NewEngine()
	if err := js.RegisterHost(host); err != nil {
		t.Fatalf("RegisterHost: %v", err)
	}

	v, err := js.Execute(context.Background(), `
		var r = editor.insertOnPages([1, 2], "Stamped", {x: 20, y: 20, width: 60, height: 30});
		app.alert(editor.pageCount() + " pages, rotation " + editor.rotation(2));
		r.succeeded;
	`)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if v != int64(2) {
		t.Fatalf("succeeded = %v, want 2", v)
	}
	if len(alerts) != 1 || !strings.Contains(alerts[0], "2 pages, rotation 180") {
		t.Fatalf("alerts = %v", alerts)
	}
	if string(doc.Current().Bytes()) == "doc" {
		t.Fatal("scripted batch did not publish a snapshot")
	}
	if eng.Page(1).Draws == nil || eng.Page(2).Draws == nil {
		t.Fatal("scripted batch drew on no pages")
	}
}
