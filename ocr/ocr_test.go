package ocr

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type fixedEngine struct {
	text string
	err  error
}

func (fixedEngine) Name() string { return "fixed" }

func (e fixedEngine) Recognize(_ context.Context, in Input) (Result, error) {
	return Result{InputID: in.ID, PlainText: e.text}, e.err
}

func TestNewInputOptions(t *testing.T) {
	meta := map[string]string{"psm": "6"}
	in := NewInput("asset-1", []byte("png"),
		WithLanguages("eng", "deu"),
		WithDPI(300),
		WithMetadata(meta),
	)
	if in.ID != "asset-1" || in.Format != ImageFormatPNG {
		t.Fatalf("input = %+v", in)
	}
	if !reflect.DeepEqual(in.Languages, []string{"eng", "deu"}) {
		t.Fatalf("languages = %v", in.Languages)
	}
	if in.DPI != 300 {
		t.Fatalf("dpi = %d", in.DPI)
	}
	meta["psm"] = "7"
	if in.Metadata["psm"] != "6" {
		t.Fatalf("metadata was not copied: %+v", in.Metadata)
	}

	in = NewInput("a", nil, WithMetadata(nil))
	if in.Metadata != nil {
		t.Fatalf("empty metadata should clear, got %+v", in.Metadata)
	}
}

func TestAltTextCollapsesWhitespace(t *testing.T) {
	got, err := AltText(context.Background(), fixedEngine{text: "  Signed by\n\tJane   Doe "}, NewInput("a", nil))
	if err != nil {
		t.Fatalf("AltText: %v", err)
	}
	if got != "Signed by Jane Doe" {
		t.Fatalf("alt text = %q", got)
	}
}

func TestAltTextTruncatesAtWordBoundary(t *testing.T) {
	long := strings.Repeat("word ", 60)
	got, err := AltText(context.Background(), fixedEngine{text: long}, NewInput("a", nil))
	if err != nil {
		t.Fatalf("AltText: %v", err)
	}
	if len(got) > AltTextMaxLen {
		t.Fatalf("alt text length = %d, over limit", len(got))
	}
	if strings.HasSuffix(got, " ") || strings.HasSuffix(got, "wor") {
		t.Fatalf("alt text cut mid-word: %q", got)
	}
}

func TestAltTextPropagatesError(t *testing.T) {
	boom := errors.New("no trained data")
	if _, err := AltText(context.Background(), fixedEngine{err: boom}, NewInput("a", nil)); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestNoop(t *testing.T) {
	res, err := Noop{}.Recognize(context.Background(), NewInput("asset-9", []byte("png")))
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if res.InputID != "asset-9" || res.PlainText != "" {
		t.Fatalf("result = %+v", res)
	}
}
