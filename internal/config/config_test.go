package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raysh454/webshot/internal/config"
)

// ─── Defaults ───────────────────────────────────────────────────────────

func TestDefaultSettings_Validate(t *testing.T) {
	t.Parallel()
	s := config.DefaultSettings()
	if err := s.Validate(); err != nil {
		t.Fatalf("default settings should validate: %v", err)
	}
	if s.StorageBackend != "file" {
		t.Errorf("default backend = %q, want file", s.StorageBackend)
	}
	if s.TimeoutSeconds != 30 {
		t.Errorf("default timeout = %d, want 30", s.TimeoutSeconds)
	}
}

// ─── Environment overrides ──────────────────────────────────────────────

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("WEBSHOT_ADDR", ":9999")
	t.Setenv("WEBSHOT_TIMEOUT_SECONDS", "12")
	t.Setenv("WEBSHOT_DISABLE_SANDBOX", "true")
	t.Setenv("WEBSHOT_RATE_RPS", "2.5")
	t.Setenv("WEBSHOT_DRIVER", "playwright")
	t.Setenv("WEBSHOT_STORAGE_DIR", t.TempDir())

	s, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %q, want :9999", s.HTTPAddr)
	}
	if s.TimeoutSeconds != 12 {
		t.Errorf("TimeoutSeconds = %d, want 12", s.TimeoutSeconds)
	}
	if !s.DisableSandbox {
		t.Error("DisableSandbox should be true")
	}
	if s.RateLimitRPS != 2.5 {
		t.Errorf("RateLimitRPS = %v, want 2.5", s.RateLimitRPS)
	}
	if s.Driver != "playwright" {
		t.Errorf("Driver = %q, want playwright", s.Driver)
	}
}

func TestLoad_UnparsableEnvFallsBack(t *testing.T) {
	t.Setenv("WEBSHOT_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("WEBSHOT_STORAGE_DIR", t.TempDir())

	s, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.TimeoutSeconds != config.DefaultSettings().TimeoutSeconds {
		t.Errorf("TimeoutSeconds = %d, want default on parse failure", s.TimeoutSeconds)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	content := "WEBSHOT_ADDR=:7070\nWEBSHOT_S3_PREFIX=shots\n"
	if err := os.WriteFile(envPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// t.Setenv registers the restore; the variable must then be absent so the
	// file value is picked up, since godotenv never overrides existing vars.
	t.Setenv("WEBSHOT_ADDR", "placeholder")
	os.Unsetenv("WEBSHOT_ADDR")

	s, err := config.Load(envPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want :7070 from env file", s.HTTPAddr)
	}
	if s.S3KeyPrefix != "shots" {
		t.Errorf("S3KeyPrefix = %q, want shots from env file", s.S3KeyPrefix)
	}
}

func TestLoad_RealEnvWinsOverEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envPath, []byte("WEBSHOT_ADDR=:7070\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("WEBSHOT_ADDR", ":6060")

	s, err := config.Load(envPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.HTTPAddr != ":6060" {
		t.Errorf("HTTPAddr = %q, want the real environment to win", s.HTTPAddr)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/path/webshot.env")
	if err == nil {
		t.Fatal("expected error for missing env file")
	}
}

// ─── Validation ─────────────────────────────────────────────────────────

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Settings)
		want   string
	}{
		{"zero timeout", func(s *config.Settings) { s.TimeoutSeconds = 0 }, "timeout"},
		{"negative timeout", func(s *config.Settings) { s.TimeoutSeconds = -5 }, "timeout"},
		{"unknown backend", func(s *config.Settings) { s.StorageBackend = "ftp" }, "backend"},
		{"s3 without bucket", func(s *config.Settings) { s.StorageBackend = "s3"; s.S3Bucket = "" }, "bucket"},
		{"empty driver", func(s *config.Settings) { s.Driver = "" }, "driver"},
		{"zero concurrency", func(s *config.Settings) { s.MaxConcurrentCaptures = 0 }, "concurrent"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := config.DefaultSettings()
			tc.mutate(s)
			err := s.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(strings.ToLower(err.Error()), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

// ─── Path expansion ─────────────────────────────────────────────────────

func TestExpandPath(t *testing.T) {
	t.Parallel()

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got := config.ExpandPath("~/captures")
	want := filepath.Join(home, "captures")
	if got != want {
		t.Errorf("ExpandPath(~/captures) = %q, want %q", got, want)
	}

	if got := config.ExpandPath("/var/lib/webshot"); got != "/var/lib/webshot" {
		t.Errorf("absolute path changed: %q", got)
	}
	if got := config.ExpandPath("relative/dir"); got != "relative/dir" {
		t.Errorf("relative path changed: %q", got)
	}
}
