package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/raysh454/webshot/internal/browser"
	"github.com/raysh454/webshot/internal/storage"
	"github.com/raysh454/webshot/internal/testutil"
)

// ─── Helpers ─────────────────────────────────────────────────────────────

// captureRecorder remembers every attempt it is handed.
type captureRecorder struct {
	mu       sync.Mutex
	err      error
	attempts []Attempt
}

func (r *captureRecorder) Record(_ context.Context, attempt Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, attempt)
	return r.err
}

func (r *captureRecorder) Attempts() []Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Attempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}

// harness wires an Orchestrator to fakes. The clock only moves when the
// injected sleep runs, and every sleep leaves a "sleep <d>" entry in the
// session trace so ordering is checkable alongside browser calls.
type harness struct {
	orch     *Orchestrator
	driver   *testutil.FakeDriver
	store    *testutil.FakeStore
	bus      *Bus
	recorder *captureRecorder
	clock    *testutil.FakeClock
	logger   *testutil.DummyLogger

	mu     sync.Mutex
	sleeps []time.Duration
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		driver:   &testutil.FakeDriver{},
		store:    &testutil.FakeStore{},
		bus:      NewBus(),
		recorder: &captureRecorder{},
		clock:    testutil.NewFakeClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		logger:   &testutil.DummyLogger{},
	}
	h.orch = NewOrchestrator(Config{TimeoutSeconds: 30}, h.driver, h.store, h.bus, h.recorder, h.logger)
	h.orch.now = h.clock.Now
	h.orch.sleep = func(_ context.Context, d time.Duration) error {
		h.mu.Lock()
		h.sleeps = append(h.sleeps, d)
		h.mu.Unlock()
		h.clock.Advance(d)
		if sessions := h.driver.Sessions(); len(sessions) > 0 {
			sessions[len(sessions)-1].Trace("sleep " + d.String())
		}
		return nil
	}
	return h
}

func (h *harness) sleepDurations() []time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]time.Duration, len(h.sleeps))
	copy(out, h.sleeps)
	return out
}

// session returns the single session the driver handed out, failing the test
// if there was not exactly one.
func (h *harness) session(t *testing.T) *testutil.FakeSession {
	t.Helper()
	sessions := h.driver.Sessions()
	if len(sessions) != 1 {
		t.Fatalf("expected exactly one browser session, got %d", len(sessions))
	}
	return sessions[0]
}

// ─── Defaults and echo ───────────────────────────────────────────────────

func TestCapture_AppliesDefaultDimensions(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if res.Width != DefaultWidth || res.Height != DefaultHeight {
		t.Errorf("result dimensions = %dx%d, want %dx%d", res.Width, res.Height, DefaultWidth, DefaultHeight)
	}

	configs := h.driver.Configs()
	if len(configs) != 1 {
		t.Fatalf("expected one Acquire, got %d", len(configs))
	}
	if configs[0].Width != DefaultWidth || configs[0].Height != DefaultHeight {
		t.Errorf("browser config = %dx%d, want %dx%d", configs[0].Width, configs[0].Height, DefaultWidth, DefaultHeight)
	}

	wantViewports := [][2]int{{DefaultWidth, DefaultHeight}}
	if diff := cmp.Diff(wantViewports, h.session(t).Viewports()); diff != "" {
		t.Errorf("viewport calls mismatch (-want +got):\n%s", diff)
	}
}

func TestCapture_EchoesRequest(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	req := Request{URL: "http://example.com/page", Width: 800, Height: 600, DelaySeconds: 1, FullPage: true}
	res, err := h.orch.Capture(context.Background(), req)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if diff := cmp.Diff(req, res.Request); diff != "" {
		t.Errorf("result does not echo request (-want +got):\n%s", diff)
	}
}

func TestCapture_RejectsInvalidRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     Request
		wantMsg string
	}{
		{"empty url", Request{}, "url is required"},
		{"whitespace url", Request{URL: "   "}, "url is required"},
		{"negative width", Request{URL: "http://example.com", Width: -1}, "width"},
		{"negative height", Request{URL: "http://example.com", Height: -5}, "height"},
		{"negative delay", Request{URL: "http://example.com", DelaySeconds: -2}, "delaySeconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)

			res, err := h.orch.Capture(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
			if res != nil {
				t.Errorf("expected nil result, got %+v", res)
			}
			if got := h.driver.AcquireCount(); got != 0 {
				t.Errorf("driver acquired %d sessions for invalid request, want 0", got)
			}
		})
	}
}

// ─── Sequencing ──────────────────────────────────────────────────────────

func TestCapture_ViewportSetBeforeNavigation(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if _, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	want := []string{"viewport 1024x768", "navigate", "capture", "html", "release"}
	if diff := cmp.Diff(want, h.session(t).Calls()); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestCapture_DelayRunsBetweenNavigateAndCapture(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	_, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com", DelaySeconds: 2})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	want := []string{"viewport 1024x768", "navigate", "sleep 2s", "capture", "html", "release"}
	if diff := cmp.Diff(want, h.session(t).Calls()); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]time.Duration{2 * time.Second}, h.sleepDurations()); diff != "" {
		t.Errorf("sleep durations mismatch (-want +got):\n%s", diff)
	}

	// The fake clock only advances inside sleeps, so the recorded duration
	// is exactly the requested delay.
	attempts := h.recorder.Attempts()
	if len(attempts) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(attempts))
	}
	if attempts[0].Duration != 2*time.Second {
		t.Errorf("attempt duration = %v, want 2s", attempts[0].Duration)
	}
}

// ─── Full-page mode ──────────────────────────────────────────────────────

func TestCapture_FullPageUsesTallestProbe(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.ProbeHeights = []int{800, 820, 800, 820, 750, 750}

	_, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com/tall", FullPage: true})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	wantViewports := [][2]int{{DefaultWidth, DefaultHeight}, {DefaultWidth, 820}}
	if diff := cmp.Diff(wantViewports, h.session(t).Viewports()); diff != "" {
		t.Errorf("viewport calls mismatch (-want +got):\n%s", diff)
	}

	wantCalls := []string{
		"viewport 1024x768",
		"navigate",
		"evaluate",
		"viewport 1024x820",
		"sleep 500ms",
		"capture",
		"html",
		"release",
	}
	if diff := cmp.Diff(wantCalls, h.session(t).Calls()); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestCapture_FullPageHidesScrollbars(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	if _, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com", FullPage: true}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	configs := h.driver.Configs()
	if len(configs) != 1 || !configs[0].HideScrollbars {
		t.Errorf("full-page capture must hide scrollbars, got configs %+v", configs)
	}

	h2 := newHarness(t)
	if _, err := h2.orch.Capture(context.Background(), Request{URL: "http://example.com"}); err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if configs := h2.driver.Configs(); len(configs) != 1 || configs[0].HideScrollbars {
		t.Errorf("viewport capture must keep scrollbars, got configs %+v", configs)
	}
}

func TestCapture_FullPageFallbackOnProbeError(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.EvaluateErr = fmt.Errorf("page: %w", browser.ErrScriptEvaluation)

	res, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com", FullPage: true})
	if err != nil {
		t.Fatalf("probe failure must not fail the capture: %v", err)
	}
	if res == nil || len(res.ImageBytes) == 0 {
		t.Fatal("expected a usable result despite probe failure")
	}

	wantViewports := [][2]int{{DefaultWidth, DefaultHeight}, {DefaultWidth, FallbackContentHeight}}
	if diff := cmp.Diff(wantViewports, h.session(t).Viewports()); diff != "" {
		t.Errorf("viewport calls mismatch (-want +got):\n%s", diff)
	}
	if h.logger.WarnCount() == 0 {
		t.Error("expected a warning about the failed probe")
	}
}

func TestCapture_FullPageFallbackOnNonPositiveHeight(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.ProbeHeights = []int{0}

	_, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com", FullPage: true})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	wantViewports := [][2]int{{DefaultWidth, DefaultHeight}, {DefaultWidth, FallbackContentHeight}}
	if diff := cmp.Diff(wantViewports, h.session(t).Viewports()); diff != "" {
		t.Errorf("viewport calls mismatch (-want +got):\n%s", diff)
	}
}

// ─── Session release ─────────────────────────────────────────────────────

func TestCapture_ReleasesSessionExactlyOnce(t *testing.T) {
	t.Parallel()

	errRaster := errors.New("raster failed")
	tests := []struct {
		name    string
		req     Request
		setup   func(h *harness)
		wantErr error
	}{
		{
			name:  "success",
			req:   Request{URL: "http://example.com"},
			setup: func(h *harness) {},
		},
		{
			name: "navigation error",
			req:  Request{URL: "http://unreachable.invalid"},
			setup: func(h *harness) {
				h.driver.NavigateErr = fmt.Errorf("dial tcp: %w", browser.ErrNavigation)
			},
			wantErr: browser.ErrNavigation,
		},
		{
			name: "navigation timeout",
			req:  Request{URL: "http://slow.example.com"},
			setup: func(h *harness) {
				h.driver.NavigateErr = fmt.Errorf("load: %w", browser.ErrNavigationTimeout)
			},
			wantErr: browser.ErrNavigationTimeout,
		},
		{
			name: "probe failure stays non-fatal",
			req:  Request{URL: "http://example.com", FullPage: true},
			setup: func(h *harness) {
				h.driver.EvaluateErr = fmt.Errorf("page: %w", browser.ErrScriptEvaluation)
			},
		},
		{
			name: "empty image",
			req:  Request{URL: "http://example.com"},
			setup: func(h *harness) {
				h.driver.ImageBytes = []byte{}
			},
			wantErr: ErrEmptyCapture,
		},
		{
			name: "raster error",
			req:  Request{URL: "http://example.com"},
			setup: func(h *harness) {
				h.driver.CaptureErr = errRaster
			},
			wantErr: errRaster,
		},
		{
			name: "persist failure",
			req:  Request{URL: "http://example.com"},
			setup: func(h *harness) {
				h.store.SaveErr = fmt.Errorf("disk full: %w", storage.ErrPersistence)
			},
			wantErr: storage.ErrPersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newHarness(t)
			tt.setup(h)

			res, err := h.orch.Capture(context.Background(), tt.req)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Capture failed: %v", err)
				}
			} else {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if res != nil {
					t.Errorf("expected nil result on failure, got %+v", res)
				}
			}

			if got := h.driver.AcquireCount(); got != 1 {
				t.Errorf("acquired %d sessions, want 1", got)
			}
			if got := h.driver.ReleaseCount(); got != 1 {
				t.Errorf("released %d times, want exactly 1", got)
			}
		})
	}
}

func TestCapture_AcquireFailureReleasesNothing(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.AcquireErr = fmt.Errorf("chrome not found: %w", browser.ErrBrowserStart)

	res, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"})
	if !errors.Is(err, browser.ErrBrowserStart) {
		t.Fatalf("error = %v, want %v", err, browser.ErrBrowserStart)
	}
	if res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
	if got := len(h.driver.Sessions()); got != 0 {
		t.Errorf("driver handed out %d sessions, want 0", got)
	}
	if got := h.driver.ReleaseCount(); got != 0 {
		t.Errorf("released %d times, want 0", got)
	}

	attempts := h.recorder.Attempts()
	if len(attempts) != 1 || attempts[0].Status != StatusFailed {
		t.Errorf("expected one failed attempt on record, got %+v", attempts)
	}
}

// ─── Persistence ─────────────────────────────────────────────────────────

func TestCapture_ResultOnlyAfterDurableWrite(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.ImageBytes = []byte("png-payload")

	res, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !strings.HasSuffix(res.StoragePath, ".png") {
		t.Errorf("storage path %q does not end in .png", res.StoragePath)
	}
	if !bytes.Equal(res.ImageBytes, []byte("png-payload")) {
		t.Errorf("result bytes = %q, want the captured payload", res.ImageBytes)
	}

	stored, err := h.store.Load(context.Background(), res.StoragePath)
	if err != nil {
		t.Fatalf("stored artifact not readable: %v", err)
	}
	if !bytes.Equal(stored, res.ImageBytes) {
		t.Error("stored bytes differ from result bytes")
	}
}

func TestCapture_FailureSkipsPersist(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.NavigateErr = fmt.Errorf("dns: %w", browser.ErrNavigation)

	if _, err := h.orch.Capture(context.Background(), Request{URL: "http://nxdomain.invalid"}); err == nil {
		t.Fatal("expected a navigation error")
	}
	if paths := h.store.Paths(); len(paths) != 0 {
		t.Errorf("nothing should be persisted after a failed capture, got %v", paths)
	}
}

func TestCapture_ConcurrentCapturesGetDistinctPaths(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	const n = 8
	paths := make([]string, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"})
			if err != nil {
				errs[i] = err
				return
			}
			paths[i] = res.StoragePath
		}(i)
	}
	wg.Wait()

	seen := make(map[string]int)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("capture %d failed: %v", i, errs[i])
		}
		seen[paths[i]]++
	}
	for p, count := range seen {
		if count > 1 {
			t.Errorf("storage path %q handed out %d times", p, count)
		}
	}
	if got := h.driver.ReleaseCount(); got != n {
		t.Errorf("released %d sessions, want %d", got, n)
	}
}

// ─── Events ──────────────────────────────────────────────────────────────

func drainPhases(ch <-chan Event) []Phase {
	var phases []Phase
	for {
		select {
		case ev := <-ch:
			phases = append(phases, ev.Phase)
		default:
			return phases
		}
	}
}

func TestCapture_PublishesLifecyclePhases(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.ProbeHeights = []int{900}

	ch, unsubscribe := h.bus.Subscribe(32)
	defer unsubscribe()

	_, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com", DelaySeconds: 1, FullPage: true})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	want := []Phase{
		PhaseBrowserStarting,
		PhaseNavigating,
		PhaseDelaying,
		PhaseMeasuring,
		PhaseResizing,
		PhaseCapturing,
		PhasePersisting,
		PhaseDone,
	}
	if diff := cmp.Diff(want, drainPhases(ch)); diff != "" {
		t.Errorf("phase sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestCapture_PublishesFailedPhase(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.NavigateErr = fmt.Errorf("refused: %w", browser.ErrNavigation)

	ch, unsubscribe := h.bus.Subscribe(32)
	defer unsubscribe()

	if _, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"}); err == nil {
		t.Fatal("expected a navigation error")
	}

	phases := drainPhases(ch)
	if len(phases) == 0 || phases[len(phases)-1] != PhaseFailed {
		t.Errorf("expected terminal %q phase, got sequence %v", PhaseFailed, phases)
	}
}

// ─── History ─────────────────────────────────────────────────────────────

func TestCapture_RecordsSuccessfulAttempt(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	res, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	attempts := h.recorder.Attempts()
	if len(attempts) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(attempts))
	}
	a := attempts[0]
	if a.Status != StatusOK {
		t.Errorf("status = %q, want %q", a.Status, StatusOK)
	}
	if a.ID == "" {
		t.Error("attempt ID must be set")
	}
	if res.ID != a.ID {
		t.Errorf("result ID %q differs from attempt ID %q", res.ID, a.ID)
	}
	if a.Driver != "fake" {
		t.Errorf("driver = %q, want fake", a.Driver)
	}
	if a.StoragePath != res.StoragePath {
		t.Errorf("attempt storage path %q differs from result %q", a.StoragePath, res.StoragePath)
	}
	if a.Title != "Fake Page" {
		t.Errorf("title = %q, want the page title", a.Title)
	}
	if a.HTMLPath == "" {
		t.Error("expected an archived HTML path")
	}
}

func TestCapture_RecorderErrorDoesNotFailCapture(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.recorder.err = errors.New("database locked")

	if _, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"}); err != nil {
		t.Fatalf("recorder errors must stay invisible to callers: %v", err)
	}
	if h.logger.WarnCount() == 0 {
		t.Error("expected a warning about the failed record")
	}
}

func TestCapture_HTMLArchiveIsBestEffort(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.driver.HTMLErr = errors.New("target closed")

	res, err := h.orch.Capture(context.Background(), Request{URL: "http://example.com"})
	if err != nil {
		t.Fatalf("html capture failure must not fail the capture: %v", err)
	}

	attempts := h.recorder.Attempts()
	if len(attempts) != 1 {
		t.Fatalf("expected one recorded attempt, got %d", len(attempts))
	}
	if attempts[0].HTMLPath != "" {
		t.Errorf("expected empty HTML path, got %q", attempts[0].HTMLPath)
	}
	if paths := h.store.Paths(); len(paths) != 1 || paths[0] != res.StoragePath {
		t.Errorf("expected only the image artifact in the store, got %v", paths)
	}
}

// ─── Construction ────────────────────────────────────────────────────────

func TestNewOrchestrator_DefaultsTimeout(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(Config{}, &testutil.FakeDriver{}, &testutil.FakeStore{}, nil, nil, &testutil.DummyLogger{})
	if o.cfg.TimeoutSeconds != DefaultConfig().TimeoutSeconds {
		t.Errorf("timeout = %d, want default %d", o.cfg.TimeoutSeconds, DefaultConfig().TimeoutSeconds)
	}
}

func TestCapture_NilBusAndRecorder(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(Config{TimeoutSeconds: 30}, &testutil.FakeDriver{}, &testutil.FakeStore{}, nil, nil, &testutil.DummyLogger{})
	if _, err := o.Capture(context.Background(), Request{URL: "http://example.com"}); err != nil {
		t.Fatalf("Capture with nil bus and recorder failed: %v", err)
	}
}
