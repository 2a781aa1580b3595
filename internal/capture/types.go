// Package capture orchestrates one screenshot request end to end: acquire a
// browser session, render and capture the page, persist the artifact,
// release the session. One browser process per request, no pooling, no
// retries.
package capture

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default viewport applied when a request omits dimensions.
const (
	DefaultWidth  = 1024
	DefaultHeight = 768

	// FallbackContentHeight replaces the measured content height when the
	// in-page probe fails or reports a non-positive value.
	FallbackContentHeight = 768

	// settleDelay is the unconditional reflow pause between a full-page
	// viewport resize and the capture call.
	settleDelay = 500 * time.Millisecond
)

// ErrEmptyCapture reports a raster call that returned zero bytes. A Result
// is never built from an empty capture.
var ErrEmptyCapture = errors.New("capture produced no image bytes")

// Request describes one capture. The zero value of every optional field
// means "use the default"; URL is the only required field.
type Request struct {
	URL          string `json:"url"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	DelaySeconds int    `json:"delaySeconds,omitempty"`
	FullPage     bool   `json:"fullPage,omitempty"`
}

// Validate checks the fields a caller must get right. Width/height/delay
// zero values are legal (they default); negatives are not.
func (r Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return errors.New("url is required")
	}
	if r.Width < 0 {
		return fmt.Errorf("width must not be negative, got %d", r.Width)
	}
	if r.Height < 0 {
		return fmt.Errorf("height must not be negative, got %d", r.Height)
	}
	if r.DelaySeconds < 0 {
		return fmt.Errorf("delaySeconds must not be negative, got %d", r.DelaySeconds)
	}
	return nil
}

// withDefaults returns a copy with defaults applied. Requests are treated as
// immutable; the orchestrator works on the defaulted copy and echoes it back
// in the Result.
func (r Request) withDefaults() Request {
	if r.Width <= 0 {
		r.Width = DefaultWidth
	}
	if r.Height <= 0 {
		r.Height = DefaultHeight
	}
	if r.DelaySeconds < 0 {
		r.DelaySeconds = 0
	}
	return r
}

// Result is the request echoed back plus the two success fields. It is only
// constructed after the browser produced non-empty image bytes and those
// bytes were durably written to StoragePath. ID ties the result to its
// history entry.
type Result struct {
	ID string `json:"id"`
	Request
	StoragePath string `json:"storagePath"`
	ImageBytes  []byte `json:"imageBytes"`
}

// Status of a finished capture attempt.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Attempt is the audit record of one capture, success or failure. It feeds
// the history log; it is not part of the caller-facing contract.
type Attempt struct {
	ID          string
	Request     Request
	Driver      string
	Status      Status
	Error       string
	StoragePath string
	HTMLPath    string
	Title       string
	StartedAt   time.Time
	Duration    time.Duration
}
