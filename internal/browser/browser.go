// Package browser abstracts the headless browser automation layer behind a
// small capability set: launch with flags, set viewport, navigate, evaluate
// script, capture the viewport image, terminate. Any automation backend that
// can do these six things can be registered as a Driver.
package browser

import (
	"context"
	"errors"
)

// Error taxonomy for browser work. Drivers wrap these sentinels with
// fmt.Errorf("...: %w", ...) so callers can classify with errors.Is.
var (
	// ErrBrowserStart means the browser process or driver could not be
	// launched (missing binary, incompatible driver, port conflict).
	ErrBrowserStart = errors.New("browser start failed")

	// ErrNavigation means the target URL could not be loaded: malformed
	// URL, DNS failure, connection refused.
	ErrNavigation = errors.New("navigation failed")

	// ErrNavigationTimeout means the shared load/readiness budget was
	// exceeded. Distinct from ErrNavigation so callers can surface it as a
	// timeout rather than a bad target.
	ErrNavigationTimeout = errors.New("navigation timed out")

	// ErrScriptEvaluation means an in-page expression failed or produced a
	// value of an unexpected type. Height probing treats this as non-fatal.
	ErrScriptEvaluation = errors.New("script evaluation failed")
)

// Driver launches browser sessions. One Driver serves the whole process;
// every Acquire starts a fresh, isolated browser process.
type Driver interface {
	// Name reports the registered driver name.
	Name() string

	// Acquire starts one browser process configured by cfg. The returned
	// Session must be released exactly once. Fails with ErrBrowserStart.
	Acquire(ctx context.Context, cfg Config) (Session, error)

	// Close releases driver-level resources. Sessions must be released
	// individually before Close.
	Close() error
}

// Session is one running browser process scoped to a single capture.
// Methods are not safe for concurrent use; a session belongs to one request.
type Session interface {
	// Navigate loads url and waits for document readiness. The deadline on
	// ctx is the shared load/readiness budget; exceeding it yields
	// ErrNavigationTimeout, any other load failure ErrNavigation.
	Navigate(ctx context.Context, url string) error

	// EvaluateInt runs a JavaScript expression in the page and coerces the
	// result to an integer (floor). Non-numeric results yield
	// ErrScriptEvaluation.
	EvaluateInt(ctx context.Context, expr string) (int, error)

	// SetViewport resizes the emulated viewport.
	SetViewport(ctx context.Context, width, height int) error

	// CaptureImage rasters the current viewport, single shot, and returns
	// the encoded image bytes.
	CaptureImage(ctx context.Context) ([]byte, error)

	// CaptureHTML returns the serialized DOM of the current page.
	CaptureHTML(ctx context.Context) (string, error)

	// Release terminates the browser process unconditionally. Safe to call
	// once per session; every code path that acquired must release.
	Release() error
}
