package editor

import (
	"context"
	"fmt"

	"github.com/wudi/pdfoverlay/assets"
	"github.com/wudi/pdfoverlay/batch"
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/engine"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/overlay"
	"github.com/wudi/pdfoverlay/scripting"
)

// DefaultScriptTextSize is the text size used when a script inserts a
// batch text payload without styling control.
const DefaultScriptTextSize = 14

// ScriptHost adapts the editor to the scripting host contract. One host
// serves one script execution; the context bounds every operation the
// script triggers.
type ScriptHost struct {
	ed    *Editor
	ctx   context.Context
	alert func(string)
}

var _ scripting.EditorHost = (*ScriptHost)(nil)

// ScriptHost builds the surface an automation script may touch. A nil
// alert sink logs alerts instead.
func (e *Editor) ScriptHost(ctx context.Context, alert func(string)) *ScriptHost {
	return &ScriptHost{ed: e, ctx: ctx, alert: alert}
}

func (h *ScriptHost) PageCount() (int, error) {
	return h.ed.renderer.PageCount(h.ctx)
}

func (h *ScriptHost) PageRotation(pageNumber int) (coords.Rotation, error) {
	page, err := h.ed.renderer.GetPage(h.ctx, pageNumber)
	if err != nil {
		return 0, err
	}
	return page.Rotation(), nil
}

func (h *ScriptHost) InsertText(pageNumber int, x, y, size float64, text string) error {
	return h.ed.InsertText(h.ctx, pageNumber, text, engine.TextOptions{X: x, Y: y, Size: size})
}

// InsertOnPages runs a batch text insertion. The box is given in
// rendered surface pixels of page 1 at scale 1, which makes scripted
// placement independent of whatever zoom the UI happens to be at.
func (h *ScriptHost) InsertOnPages(pages []int, text string, box coords.Rect) (int, int, error) {
	doc, err := h.ed.activeDocument()
	if err != nil {
		return 0, 0, err
	}
	ref, err := h.ed.renderer.GetPage(h.ctx, 1)
	if err != nil {
		return 0, 0, fmt.Errorf("editor: reference page: %w", err)
	}
	vp, err := ref.Viewport(1)
	if err != nil {
		return 0, 0, fmt.Errorf("editor: reference viewport: %w", err)
	}
	nativeWidth, _ := vp.SurfaceSize()

	res, err := h.ed.orch.Run(h.ctx, batchRequest(doc.Current().Bytes(), pages, text, box, nativeWidth))
	if err != nil {
		return 0, 0, err
	}
	doc.Apply(res.Output)
	h.ed.log.Info("scripted insertion finished",
		observability.String("doc", doc.ID()),
		observability.String("summary", res.Summary()))
	return res.SuccessCount, res.FailCount, nil
}

func (h *ScriptHost) Alert(message string) {
	if h.alert != nil {
		h.alert(message)
		return
	}
	h.ed.log.Info("script alert", observability.String("message", message))
}

func batchRequest(document []byte, pages []int, text string, box coords.Rect, nativeWidth float64) batch.Request {
	return batch.Request{
		Document: document,
		Pages:    overlay.NewPageSet(pages...),
		Payload: assets.Payload{
			Kind: assets.KindText,
			Text: assets.TextStyle{Text: text, Size: DefaultScriptTextSize},
		},
		ReferencePage:  1,
		ReferenceBox:   box,
		DisplayedWidth: nativeWidth,
		Scale:          1,
	}
}
