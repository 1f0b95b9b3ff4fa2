package batch

import (
	"fmt"
	"time"
)

// ValidationError reports a precondition failure detected before any I/O:
// an empty page selection, a box below the minimum size, a missing
// payload, or an unlaid-out surface.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("batch: validation: %s: %v", e.Reason, e.Err)
	}
	return "batch: validation: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PageProcessingError reports a failure confined to one page of a batch:
// fetching the page, resolving its rotation, preparing or embedding its
// asset, or drawing on it. It is recorded and the batch continues.
type PageProcessingError struct {
	Page int
	Step string
	Err  error
}

func (e *PageProcessingError) Error() string {
	return fmt.Sprintf("batch: page %d: %s: %v", e.Page, e.Step, e.Err)
}

func (e *PageProcessingError) Unwrap() error { return e.Err }

// DocumentIOError reports a failure to load or save the whole document.
// It is fatal to the batch.
type DocumentIOError struct {
	Op  string // "load" or "save"
	Err error
}

func (e *DocumentIOError) Error() string {
	return fmt.Sprintf("batch: document %s: %v", e.Op, e.Err)
}

func (e *DocumentIOError) Unwrap() error { return e.Err }

// TimeoutError reports that an offloaded operation exceeded its deadline.
// No partial result is assumed valid.
type TimeoutError struct {
	Op      string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("batch: %s timed out after %s", e.Op, e.Elapsed)
}
