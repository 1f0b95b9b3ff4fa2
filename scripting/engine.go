// Package scripting exposes the editor to embedded JavaScript so host
// applications can automate insertions: query page count and rotations,
// draw text directly, or run a whole batch insertion from a script.
package scripting

import (
	"context"

	"github.com/wudi/pdfoverlay/coords"
)

// Engine executes automation scripts against a registered host.
type Engine interface {
	// Execute runs a script and returns its final value.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterHost exposes the editor API to scripts.
	RegisterHost(host EditorHost) error
}

// EditorHost is the controlled surface scripts may touch. The editor
// implements it; scripts never reach the engine handles directly.
type EditorHost interface {
	// PageCount returns the number of pages in the active document.
	PageCount() (int, error)

	// PageRotation returns the rotation of the 1-indexed page.
	PageRotation(pageNumber int) (coords.Rotation, error)

	// InsertText draws text at a document-space point on one page.
	InsertText(pageNumber int, x, y, size float64, text string) error

	// InsertOnPages runs a batch text insertion over the given pages.
	// The box is given in rendered surface pixels of page 1 at scale 1
	// and is transformed per page, so scripted placement is independent
	// of the UI zoom. It returns per-batch success and failure counts.
	InsertOnPages(pages []int, text string, box coords.Rect) (succeeded, failed int, err error)

	// Alert surfaces a message to the host UI.
	Alert(message string)
}
