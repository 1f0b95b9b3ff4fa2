// Package batch applies one insertion payload to a set of selected pages
// as a single load/mutate/save cycle: the document is loaded once, every
// selected page is mutated in ascending order with per-page failure
// isolation, and the document is serialized exactly once at the end.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/wudi/pdfoverlay/assets"
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/engine"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/overlay"
)

// Config carries the optional collaborators of an Orchestrator.
type Config struct {
	Logger observability.Logger
	Tracer observability.Tracer
}

// Orchestrator owns one batch insertion end to end. It holds the
// document handle exclusively for the duration of a run; no concurrent
// mutation of the same document is permitted during that window.
type Orchestrator struct {
	renderer engine.Renderer
	mutator  engine.Mutator
	log      observability.Logger
	tracer   observability.Tracer
}

// NewOrchestrator builds an orchestrator over the two engines.
func NewOrchestrator(renderer engine.Renderer, mutator engine.Mutator, cfg Config) *Orchestrator {
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	tracer := cfg.Tracer
	if tracer == nil {
		tracer = observability.NopTracer()
	}
	return &Orchestrator{renderer: renderer, mutator: mutator, log: log, tracer: tracer}
}

// Request describes one batch insertion.
type Request struct {
	// Document is the serialized document the batch mutates. The slice
	// is treated as an immutable snapshot; Run never writes into it.
	Document []byte

	// Pages is the set of 1-indexed pages to apply the insertion to.
	Pages *overlay.PageSet

	// Payload is the logical insertion, immutable for the whole run.
	Payload assets.Payload

	// ReferencePage is the page the user drew on.
	ReferencePage int

	// ReferenceBox is the drawn rectangle in displayed surface pixels of
	// the reference page.
	ReferenceBox coords.Rect

	// DisplayedWidth is the CSS pixel width of the reference page's
	// drawing surface at the time the box was committed.
	DisplayedWidth float64

	// Scale is the render scale shared by every page in the session.
	// Rotation may differ page to page; the zoom does not.
	Scale float64

	// MinBoxSize overrides the minimum committed box size in displayed
	// pixels. Zero means overlay.DefaultMinBoxSize.
	MinBoxSize float64
}

// Result summarizes one completed batch run. It is only ever observed
// whole: callers never see a partially filled Result mid-run.
type Result struct {
	SuccessCount int
	FailCount    int

	// PageErrors records the failure for each page that could not be
	// processed, keyed by 1-indexed page number.
	PageErrors map[int]error

	// Output is the serialized document after the single save.
	Output []byte

	// FirstPage is the lowest selected page number; hosts restore the
	// view there after replacing their document bytes.
	FirstPage int
}

// Summary renders the user-facing outcome line: full success, partial
// success with counts, or complete failure.
func (r *Result) Summary() string {
	total := r.SuccessCount + r.FailCount
	switch {
	case r.FailCount == 0:
		return fmt.Sprintf("inserted on all %d pages", total)
	case r.SuccessCount == 0:
		return fmt.Sprintf("insertion failed on all %d pages", total)
	default:
		return fmt.Sprintf("inserted on %d of %d pages", r.SuccessCount, total)
	}
}

// Run executes the batch. Validation failures surface before any I/O as
// *ValidationError. Load and save failures surface as *DocumentIOError
// and fail the whole batch; a save failure still fails the batch even
// though every page mutated in memory, because no durable output exists.
// Per-page failures are recorded in the Result and never abort the loop.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, span := o.tracer.StartSpan(ctx, "batch.run")
	defer span.Finish()

	// The display-to-native ratio is measured once on the reference page
	// and reused for every page: it reflects the render pipeline, not
	// the page. It is resolved before the document load so its
	// validation failures never follow any mutation-side I/O.
	ratio, err := o.referenceRatio(ctx, req)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	doc, err := o.mutator.LoadDocument(ctx, req.Document)
	if err != nil {
		ioErr := &DocumentIOError{Op: "load", Err: err}
		span.SetError(ioErr)
		return nil, ioErr
	}

	pages := req.Pages.Sorted()
	result := &Result{
		PageErrors: make(map[int]error),
		FirstPage:  pages[0],
	}
	cache := assets.NewRotationAssetCache()

	for _, pageNum := range pages {
		if err := o.processPage(ctx, doc, cache, req, ratio, pageNum); err != nil {
			o.log.Warn("page insertion failed",
				observability.Int("page", pageNum),
				observability.Error("err", err))
			result.PageErrors[pageNum] = err
			result.FailCount++
			continue
		}
		result.SuccessCount++
	}

	out, err := doc.Save(ctx)
	if err != nil {
		ioErr := &DocumentIOError{Op: "save", Err: err}
		span.SetError(ioErr)
		return nil, ioErr
	}
	result.Output = out

	span.SetTag(observability.MetricBatchPages, len(pages))
	span.SetTag(observability.MetricBatchFailures, result.FailCount)
	span.SetTag(observability.MetricBatchDuration, time.Since(start))
	span.SetTag(observability.MetricAssetCacheHits, len(pages)-cache.Misses())
	o.log.Info("batch insertion finished",
		observability.Int("pages", len(pages)),
		observability.Int("succeeded", result.SuccessCount),
		observability.Int("failed", result.FailCount),
		observability.Int("distinct_rotations", cache.Len()),
		observability.String("payload", req.Payload.Kind.String()))
	return result, nil
}

func (o *Orchestrator) validate(req Request) error {
	if len(req.Document) == 0 {
		return &ValidationError{Reason: "document is empty"}
	}
	if req.Pages == nil || req.Pages.Len() == 0 {
		return &ValidationError{Reason: "no pages selected"}
	}
	if err := req.Payload.Validate(); err != nil {
		return &ValidationError{Reason: "invalid payload", Err: err}
	}
	if req.ReferencePage < 1 {
		return &ValidationError{Reason: fmt.Sprintf("reference page %d out of range", req.ReferencePage)}
	}
	min := req.MinBoxSize
	if min <= 0 {
		min = overlay.DefaultMinBoxSize
	}
	if req.ReferenceBox.Width < min || req.ReferenceBox.Height < min {
		return &ValidationError{Reason: fmt.Sprintf("box %gx%g below minimum size %g",
			req.ReferenceBox.Width, req.ReferenceBox.Height, min)}
	}
	if req.DisplayedWidth <= 0 {
		return &ValidationError{Reason: "surface not laid out", Err: overlay.ErrSurfaceNotLaidOut}
	}
	if req.Scale <= 0 {
		return &ValidationError{Reason: fmt.Sprintf("render scale %g is not positive", req.Scale)}
	}
	return nil
}

func (o *Orchestrator) referenceRatio(ctx context.Context, req Request) (float64, error) {
	ref, err := o.renderer.GetPage(ctx, req.ReferencePage)
	if err != nil {
		return 0, &ValidationError{Reason: "reference page unavailable", Err: err}
	}
	vp, err := ref.Viewport(req.Scale)
	if err != nil {
		return 0, &ValidationError{Reason: "reference viewport unavailable", Err: err}
	}
	nativeWidth, _ := vp.SurfaceSize()
	ratio, err := overlay.DisplayToNativeRatio(req.DisplayedWidth, nativeWidth)
	if err != nil {
		return 0, &ValidationError{Reason: "degenerate surface", Err: err}
	}
	return ratio, nil
}

// processPage applies the insertion to one page. Rotation is fetched per
// page rather than assumed equal to the reference page's; only the zoom
// scale is shared across the session.
func (o *Orchestrator) processPage(ctx context.Context, doc engine.DocumentHandle, cache *assets.RotationAssetCache, req Request, ratio float64, pageNum int) error {
	handle, err := o.renderer.GetPage(ctx, pageNum)
	if err != nil {
		return &PageProcessingError{Page: pageNum, Step: "fetch page", Err: err}
	}
	rotation := handle.Rotation()

	asset, err := cache.GetOrCreate(ctx, rotation, func(ctx context.Context, r coords.Rotation) (engine.AssetHandle, error) {
		prepared, err := req.Payload.Prepare(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("prepare payload: %w", err)
		}
		return doc.EmbedRasterAsset(ctx, prepared)
	})
	if err != nil {
		return &PageProcessingError{Page: pageNum, Step: "prepare asset", Err: err}
	}

	vp, err := handle.Viewport(req.Scale)
	if err != nil {
		return &PageProcessingError{Page: pageNum, Step: "build viewport", Err: err}
	}
	docRect := overlay.ToDocumentRect(req.ReferenceBox, ratio, vp)
	if docRect.IsEmpty() {
		return &PageProcessingError{Page: pageNum, Step: "transform box",
			Err: fmt.Errorf("degenerate document rect %+v", docRect)}
	}

	page, err := doc.Page(pageNum - 1)
	if err != nil {
		return &PageProcessingError{Page: pageNum, Step: "fetch mutable page", Err: err}
	}
	if err := page.DrawAsset(asset, docRect); err != nil {
		return &PageProcessingError{Page: pageNum, Step: "draw asset", Err: err}
	}
	return nil
}
