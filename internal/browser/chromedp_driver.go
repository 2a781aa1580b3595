package browser

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/raysh454/webshot/internal/interfaces"
)

// chromedpDriver drives Chrome over the DevTools protocol. Each Acquire
// execs a fresh Chrome with its own profile directory; Release kills it.
type chromedpDriver struct {
	logger interfaces.Logger
}

// NewChromedpDriver returns the chromedp-backed Driver.
func NewChromedpDriver(logger interfaces.Logger) (Driver, error) {
	return &chromedpDriver{logger: logger}, nil
}

func (d *chromedpDriver) Name() string { return "chromedp" }

// Close is a no-op: the driver holds no state, every session owns its own
// Chrome process.
func (d *chromedpDriver) Close() error { return nil }

func (d *chromedpDriver) Acquire(ctx context.Context, cfg Config) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(cfg.Width, cfg.Height),
		chromedp.DisableGPU,
		chromedp.Headless,
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.DisableSandbox {
		opts = append(opts,
			chromedp.NoSandbox,
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}
	if cfg.HideScrollbars {
		opts = append(opts, chromedp.Flag("hide-scrollbars", true))
	}

	// The allocator is rooted at Background, not the caller ctx: the session
	// outlives any per-phase deadline and dies only on Release.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Run with no actions forces the process to start now, so launch
	// failures surface here instead of at first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: %v", ErrBrowserStart, err)
	}

	d.logger.Debug("chrome session started",
		interfaces.F("width", cfg.Width),
		interfaces.F("height", cfg.Height),
		interfaces.F("sandbox_disabled", cfg.DisableSandbox),
	)

	return &chromedpSession{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		logger:        d.logger,
	}, nil
}

type chromedpSession struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	releaseOnce   sync.Once
	logger        interfaces.Logger
}

// run executes actions on the session's browser context, carrying over the
// caller's deadline and cancellation. chromedp requires its own context in
// the chain, so the caller ctx cannot be passed through directly.
func (s *chromedpSession) run(ctx context.Context, actions ...chromedp.Action) error {
	var runCtx context.Context
	var cancel context.CancelFunc
	if deadline, ok := ctx.Deadline(); ok {
		runCtx, cancel = context.WithDeadline(s.browserCtx, deadline)
	} else {
		runCtx, cancel = context.WithCancel(s.browserCtx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *chromedpSession) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("navigate %s: %w", url, ErrNavigationTimeout)
	}
	return fmt.Errorf("navigate %s: %w: %v", url, ErrNavigation, err)
}

func (s *chromedpSession) EvaluateInt(ctx context.Context, expr string) (int, error) {
	var value float64
	if err := s.run(ctx, chromedp.Evaluate(expr, &value)); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrScriptEvaluation, err)
	}
	return int(math.Floor(value)), nil
}

func (s *chromedpSession) SetViewport(ctx context.Context, width, height int) error {
	err := s.run(ctx, emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false))
	if err != nil {
		return fmt.Errorf("set viewport %dx%d: %w", width, height, err)
	}
	return nil
}

func (s *chromedpSession) CaptureImage(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

func (s *chromedpSession) CaptureHTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("capture html: %w", err)
	}
	return html, nil
}

// Release terminates Chrome. chromedp.Cancel waits for the process to clean
// up; the context cancels below are the unconditional backstop and run even
// when the graceful close fails.
func (s *chromedpSession) Release() error {
	var err error
	s.releaseOnce.Do(func() {
		err = chromedp.Cancel(s.browserCtx)
		s.cancelBrowser()
		s.cancelAlloc()
	})
	return err
}
