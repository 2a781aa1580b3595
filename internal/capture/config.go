package capture

// Config holds the process-wide capture settings. Loaded once at startup and
// never mutated; every request derives its per-session browser config from
// this plus the request fields.
type Config struct {
	// TimeoutSeconds is the shared budget for page load and readiness.
	TimeoutSeconds int

	// UserAgent is applied to every session. Empty keeps the browser
	// default.
	UserAgent string

	// DisableSandbox is passed through to the browser config. Container
	// escape hatch, see browser.Config.
	DisableSandbox bool
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{TimeoutSeconds: 30}
}
