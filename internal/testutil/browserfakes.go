package testutil

import (
	"context"
	"fmt"
	"path"
	"slices"
	"sync"

	"github.com/raysh454/webshot/internal/browser"
	"github.com/raysh454/webshot/internal/storage"
)

// ─── Browser driver ────────────────────────────────────────────────────

// FakeDriver implements browser.Driver. Every Acquire hands out a fresh
// FakeSession scripted by the driver's fields and remembers it for
// inspection. Acquire and release counts verify the exactly-once release
// contract.
type FakeDriver struct {
	// DriverName defaults to "fake".
	DriverName string

	// AcquireErr makes every Acquire fail.
	AcquireErr error

	// Scripting for handed-out sessions.
	NavigateErr  error
	NavigateFunc func(url string) error
	EvaluateErr  error
	ProbeHeights []int
	ImageBytes   []byte
	CaptureErr   error
	HTML         string
	HTMLErr      error

	mu       sync.Mutex
	acquires int
	configs  []browser.Config
	sessions []*FakeSession
}

func (d *FakeDriver) Name() string {
	if d.DriverName == "" {
		return "fake"
	}
	return d.DriverName
}

func (d *FakeDriver) Close() error { return nil }

func (d *FakeDriver) Acquire(ctx context.Context, cfg browser.Config) (browser.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.acquires++
	d.configs = append(d.configs, cfg)
	if d.AcquireErr != nil {
		return nil, d.AcquireErr
	}

	imageBytes := d.ImageBytes
	if imageBytes == nil && d.CaptureErr == nil {
		imageBytes = []byte("fake-png-bytes")
	}
	html := d.HTML
	if html == "" {
		html = "<html><head><title>Fake Page</title></head><body></body></html>"
	}

	s := &FakeSession{
		NavigateErr:  d.NavigateErr,
		NavigateFunc: d.NavigateFunc,
		EvaluateErr:  d.EvaluateErr,
		ProbeHeights: slices.Clone(d.ProbeHeights),
		ImageBytes:   imageBytes,
		CaptureErr:   d.CaptureErr,
		HTML:         html,
		HTMLErr:      d.HTMLErr,
	}
	d.sessions = append(d.sessions, s)
	return s, nil
}

// AcquireCount reports how many sessions were started.
func (d *FakeDriver) AcquireCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.acquires
}

// ReleaseCount sums releases across all handed-out sessions.
func (d *FakeDriver) ReleaseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, s := range d.sessions {
		total += s.ReleaseCount()
	}
	return total
}

// Sessions returns the sessions handed out so far.
func (d *FakeDriver) Sessions() []*FakeSession {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.sessions)
}

// Configs returns the browser configs passed to Acquire.
func (d *FakeDriver) Configs() []browser.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.configs)
}

// ─── Browser session ───────────────────────────────────────────────────

// FakeSession implements browser.Session in memory. EvaluateInt simulates
// the in-page height probe by returning the max of ProbeHeights, mirroring
// what the Math.max expression would compute in a real page.
type FakeSession struct {
	NavigateErr  error
	NavigateFunc func(url string) error
	EvaluateErr  error
	ProbeHeights []int
	ImageBytes   []byte
	CaptureErr   error
	HTML         string
	HTMLErr      error

	mu        sync.Mutex
	calls     []string
	urls      []string
	viewports [][2]int
	released  int
}

// DefaultProbeHeight is returned by EvaluateInt when no probe values are
// scripted.
const DefaultProbeHeight = 900

func (s *FakeSession) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	s.calls = append(s.calls, "navigate")
	s.urls = append(s.urls, url)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("navigate %s: %w", url, browser.ErrNavigationTimeout)
	}
	if s.NavigateFunc != nil {
		return s.NavigateFunc(url)
	}
	return s.NavigateErr
}

func (s *FakeSession) EvaluateInt(ctx context.Context, expr string) (int, error) {
	s.Trace("evaluate")
	if s.EvaluateErr != nil {
		return 0, s.EvaluateErr
	}
	if len(s.ProbeHeights) == 0 {
		return DefaultProbeHeight, nil
	}
	return slices.Max(s.ProbeHeights), nil
}

func (s *FakeSession) SetViewport(ctx context.Context, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("viewport %dx%d", width, height))
	s.viewports = append(s.viewports, [2]int{width, height})
	return nil
}

func (s *FakeSession) CaptureImage(ctx context.Context) ([]byte, error) {
	s.Trace("capture")
	if s.CaptureErr != nil {
		return nil, s.CaptureErr
	}
	return s.ImageBytes, nil
}

func (s *FakeSession) CaptureHTML(ctx context.Context) (string, error) {
	s.Trace("html")
	if s.HTMLErr != nil {
		return "", s.HTMLErr
	}
	return s.HTML, nil
}

func (s *FakeSession) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
	s.calls = append(s.calls, "release")
	return nil
}

// Trace appends a step to the ordered call trace. Tests inject steps of
// their own (fake sleeps) to assert ordering across seams.
func (s *FakeSession) Trace(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, step)
}

// Calls returns the ordered method trace.
func (s *FakeSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// NavigatedURLs returns every URL passed to Navigate.
func (s *FakeSession) NavigatedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.urls)
}

// Viewports returns every width/height passed to SetViewport, in order.
func (s *FakeSession) Viewports() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.viewports)
}

// ReleaseCount reports how often Release ran; the contract demands exactly 1.
func (s *FakeSession) ReleaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// ─── Store ─────────────────────────────────────────────────────────────

// FakeStore implements storage.Store in memory.
type FakeStore struct {
	// SaveErr makes every Save fail.
	SaveErr error

	// BaseDir is the fake path prefix, default "/fake".
	BaseDir string

	mu    sync.Mutex
	saved map[string][]byte
	paths []string
}

func (f *FakeStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	if f.SaveErr != nil {
		return "", f.SaveErr
	}
	base := f.BaseDir
	if base == "" {
		base = "/fake"
	}
	p := path.Join(base, filename)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[p] = slices.Clone(data)
	f.paths = append(f.paths, p)
	return p, nil
}

func (f *FakeStore) Load(ctx context.Context, storagePath string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.saved[storagePath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, storagePath)
	}
	return slices.Clone(data), nil
}

// Paths returns every storage path handed out, in order.
func (f *FakeStore) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.paths)
}
