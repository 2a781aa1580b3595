package browser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/raysh454/webshot/internal/interfaces"
)

const (
	// defaultNavigateTimeout bounds Goto when the caller ctx carries no
	// deadline.
	defaultNavigateTimeout = 30 * time.Second

	// navigateMargin keeps playwright's own timeout slightly behind the
	// context deadline so timeout classification always comes from ctx,
	// uniform with the chromedp driver.
	navigateMargin = 250 * time.Millisecond
)

// playwrightDriver drives Chromium through playwright. The playwright
// process is driver-scoped; each Acquire launches a fresh Chromium.
type playwrightDriver struct {
	pw     *playwright.Playwright
	logger interfaces.Logger
}

// NewPlaywrightDriver starts the playwright driver process and returns the
// Driver. Requires the playwright browsers to be installed on the host.
func NewPlaywrightDriver(logger interfaces.Logger) (Driver, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}
	return &playwrightDriver{pw: pw, logger: logger}, nil
}

func (d *playwrightDriver) Name() string { return "playwright" }

func (d *playwrightDriver) Close() error { return d.pw.Stop() }

// launchArgs maps session Config onto Chromium switches. Kept as a pure
// function so the flag derivation is testable without a browser.
func launchArgs(cfg Config) []string {
	args := []string{"--disable-gpu"}
	if cfg.DisableSandbox {
		args = append(args, "--no-sandbox", "--disable-setuid-sandbox")
	}
	if cfg.HideScrollbars {
		args = append(args, "--hide-scrollbars")
	}
	return args
}

func (d *playwrightDriver) Acquire(ctx context.Context, cfg Config) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	chromium, err := d.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args:     launchArgs(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: cfg.Width, Height: cfg.Height},
	}
	if cfg.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(cfg.UserAgent)
	}
	browserCtx, err := chromium.NewContext(ctxOpts)
	if err != nil {
		chromium.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		chromium.Close()
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	d.logger.Debug("chromium session started",
		interfaces.F("width", cfg.Width),
		interfaces.F("height", cfg.Height),
		interfaces.F("sandbox_disabled", cfg.DisableSandbox),
	)

	return &playwrightSession{
		browser:    chromium,
		browserCtx: browserCtx,
		page:       page,
	}, nil
}

type playwrightSession struct {
	browser     playwright.Browser
	browserCtx  playwright.BrowserContext
	page        playwright.Page
	releaseOnce sync.Once
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	timeout := defaultNavigateTimeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("navigate %s: %w", url, ErrNavigationTimeout)
		}
		timeout = remaining + navigateMargin
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateLoad,
			Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		})
		done <- err
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("navigate %s: %w", url, ErrNavigationTimeout)
		}
		return fmt.Errorf("navigate %s: %w: %v", url, ErrNavigation, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("navigate %s: %w: %v", url, ErrNavigation, err)
		}
		return nil
	}
}

func (s *playwrightSession) EvaluateInt(ctx context.Context, expr string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScriptEvaluation, err)
	}
	result, err := s.page.Evaluate(expr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScriptEvaluation, err)
	}
	switch v := result.(type) {
	case int:
		return v, nil
	case float64:
		return int(math.Floor(v)), nil
	default:
		return 0, fmt.Errorf("%w: expression returned %T, want number", ErrScriptEvaluation, result)
	}
}

func (s *playwrightSession) SetViewport(ctx context.Context, width, height int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("set viewport %dx%d: %w", width, height, err)
	}
	if err := s.page.SetViewportSize(width, height); err != nil {
		return fmt.Errorf("set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

func (s *playwrightSession) CaptureImage(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	buf, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		Type: playwright.ScreenshotTypePng,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *playwrightSession) CaptureHTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("capture html: %w", err)
	}
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("capture html: %w", err)
	}
	return html, nil
}

func (s *playwrightSession) Release() error {
	var err error
	s.releaseOnce.Do(func() {
		if e := s.page.Close(); e != nil {
			err = e
		}
		if e := s.browserCtx.Close(); e != nil && err == nil {
			err = e
		}
		if e := s.browser.Close(); e != nil && err == nil {
			err = e
		}
	})
	return err
}
