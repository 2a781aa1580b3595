package browser

// Config describes one browser session. It is derived fresh per capture from
// the request dimensions plus the process-wide settings and is never reused
// across sessions. Headless and GPU-disable behavior are fixed by the
// drivers; they are not knobs.
type Config struct {
	// Width and Height set the initial viewport.
	Width  int
	Height int

	// UserAgent is the browser identity string. Empty keeps the backend
	// default.
	UserAgent string

	// DisableSandbox launches Chrome with --no-sandbox and
	// --disable-setuid-sandbox. Container-only escape hatch; it removes a
	// privilege boundary.
	DisableSandbox bool

	// HideScrollbars suppresses scrollbar rendering, used for full-page
	// captures where the viewport is resized to content height and a
	// scrollbar would leave a rendering artifact at the edge.
	HideScrollbars bool
}
