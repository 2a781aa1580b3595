package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Settings is the process-wide configuration. It is loaded once before the
// first request and must be treated as read-only afterwards; every component
// receives it (or a slice of it) at construction time. There is no global
// instance.
type Settings struct {
	// HTTPAddr is the listen address of the API server.
	HTTPAddr string

	// StorageBackend selects where captured artifacts go: "file" or "s3".
	StorageBackend string

	// StorageDirectory is the base directory for the file backend.
	StorageDirectory string

	// S3Bucket and S3KeyPrefix configure the s3 backend.
	S3Bucket    string
	S3KeyPrefix string

	// TimeoutSeconds is the shared page-load/readiness budget per capture.
	TimeoutSeconds int

	// UserAgent is the browser identity string for every capture.
	UserAgent string

	// DisableSandbox launches the browser with its sandbox disabled. This
	// removes a privilege boundary and is meant for containers where the
	// sandbox cannot start; never enable it on multi-tenant hosts.
	DisableSandbox bool

	// Driver names the browser automation backend ("chromedp", "playwright").
	Driver string

	// HistoryPath is the sqlite file recording capture attempts.
	HistoryPath string

	// BlockPrivateHosts rejects capture URLs that resolve to loopback,
	// private, or link-local addresses. Off by default: capturing internal
	// fixture pages is a first-class use case.
	BlockPrivateHosts bool

	// RateLimitRPS / RateLimitBurst bound inbound capture requests.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxConcurrentCaptures bounds simultaneous browser processes.
	MaxConcurrentCaptures int

	// LogLevel: debug|info|warn|error.
	LogLevel string
}

// DefaultSettings returns Settings populated with development defaults.
func DefaultSettings() *Settings {
	return &Settings{
		HTTPAddr:              ":8089",
		StorageBackend:        "file",
		StorageDirectory:      "~/.local/share/webshot",
		TimeoutSeconds:        30,
		UserAgent:             "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 webshot/1.0",
		DisableSandbox:        false,
		Driver:                "chromedp",
		HistoryPath:           "~/.local/share/webshot/history.db",
		BlockPrivateHosts:     false,
		RateLimitRPS:          5,
		RateLimitBurst:        10,
		MaxConcurrentCaptures: 4,
		LogLevel:              "info",
	}
}

// Load builds Settings from the environment on top of DefaultSettings.
// envFile, when non-empty, must exist and is loaded first; otherwise a .env
// in the working directory is loaded when present and silently skipped when
// not.
func Load(envFile string) (*Settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	d := DefaultSettings()
	s := &Settings{
		HTTPAddr:              envOrDefault("WEBSHOT_ADDR", d.HTTPAddr),
		StorageBackend:        envOrDefault("WEBSHOT_STORAGE_BACKEND", d.StorageBackend),
		StorageDirectory:      envOrDefault("WEBSHOT_STORAGE_DIR", d.StorageDirectory),
		S3Bucket:              envOrDefault("WEBSHOT_S3_BUCKET", ""),
		S3KeyPrefix:           envOrDefault("WEBSHOT_S3_PREFIX", "captures"),
		TimeoutSeconds:        envOrDefault("WEBSHOT_TIMEOUT_SECONDS", d.TimeoutSeconds),
		UserAgent:             envOrDefault("WEBSHOT_USER_AGENT", d.UserAgent),
		DisableSandbox:        envOrDefault("WEBSHOT_DISABLE_SANDBOX", d.DisableSandbox),
		Driver:                envOrDefault("WEBSHOT_DRIVER", d.Driver),
		HistoryPath:           envOrDefault("WEBSHOT_HISTORY_DB", d.HistoryPath),
		BlockPrivateHosts:     envOrDefault("WEBSHOT_BLOCK_PRIVATE_HOSTS", d.BlockPrivateHosts),
		RateLimitRPS:          envOrDefault("WEBSHOT_RATE_RPS", d.RateLimitRPS),
		RateLimitBurst:        envOrDefault("WEBSHOT_RATE_BURST", d.RateLimitBurst),
		MaxConcurrentCaptures: envOrDefault("WEBSHOT_MAX_CONCURRENT", d.MaxConcurrentCaptures),
		LogLevel:              envOrDefault("WEBSHOT_LOG_LEVEL", d.LogLevel),
	}

	s.StorageDirectory = ExpandPath(s.StorageDirectory)
	s.HistoryPath = ExpandPath(s.HistoryPath)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks cross-field consistency. Called by Load; exposed for
// callers constructing Settings by hand.
func (s *Settings) Validate() error {
	if s.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout seconds must be positive, got %d", s.TimeoutSeconds)
	}
	switch s.StorageBackend {
	case "file":
		if s.StorageDirectory == "" {
			return fmt.Errorf("file storage backend requires a storage directory")
		}
	case "s3":
		if s.S3Bucket == "" {
			return fmt.Errorf("s3 storage backend requires WEBSHOT_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", s.StorageBackend)
	}
	if s.Driver == "" {
		return fmt.Errorf("driver name must not be empty")
	}
	if s.MaxConcurrentCaptures <= 0 {
		return fmt.Errorf("max concurrent captures must be positive, got %d", s.MaxConcurrentCaptures)
	}
	return nil
}

// ExpandPath expands a leading "~/" against the user home directory. Paths
// that cannot be expanded are returned unchanged.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// envOrDefault reads key from the environment and parses it as T, returning
// defaultValue when the variable is unset or unparsable.
func envOrDefault[T string | int | float64 | bool](key string, defaultValue T) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue
	}
	var out any
	switch any(defaultValue).(type) {
	case string:
		out = raw
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return defaultValue
		}
		out = v
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return defaultValue
		}
		out = v
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return defaultValue
		}
		out = v
	default:
		return defaultValue
	}
	return out.(T)
}
