package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/webshot/internal/browser"
	"github.com/raysh454/webshot/internal/interfaces"
	"github.com/raysh454/webshot/internal/pagemeta"
	"github.com/raysh454/webshot/internal/storage"
)

// contentHeightExpr measures the page's content height inside the browser.
// Different DOM nodes report different overflow heights depending on layout,
// so the probe takes the max of all six candidates.
const contentHeightExpr = `Math.max(document.body.scrollHeight, document.documentElement.scrollHeight, document.body.offsetHeight, document.documentElement.offsetHeight, document.body.clientHeight, document.documentElement.clientHeight)`

// Recorder logs finished capture attempts. Implementations must tolerate
// being called for both outcomes; recording is best-effort and never fails
// a capture.
type Recorder interface {
	Record(ctx context.Context, attempt Attempt) error
}

// Orchestrator runs captures: one browser process per request, strictly
// sequential phases, session release on every exit path. Safe for concurrent
// use; concurrent captures share nothing but the read-only config.
type Orchestrator struct {
	cfg      Config
	driver   browser.Driver
	store    storage.Store
	bus      *Bus
	recorder Recorder
	logger   interfaces.Logger

	// sleep and now are seams for tests; production uses the real clock.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewOrchestrator ties driver, store, event bus, and history recorder
// together. bus and recorder may be nil to disable events or history.
func NewOrchestrator(cfg Config, driver browser.Driver, store storage.Store, bus *Bus, recorder Recorder, logger interfaces.Logger) *Orchestrator {
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = DefaultConfig().TimeoutSeconds
	}
	return &Orchestrator{
		cfg:      cfg,
		driver:   driver,
		store:    store,
		bus:      bus,
		recorder: recorder,
		logger:   logger,
		sleep:    sleepContext,
		now:      time.Now,
	}
}

// Capture runs one request to completion and returns the Result, or the
// first error encountered. No retries; the session is released exactly once
// on every path.
func (o *Orchestrator) Capture(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req = req.withDefaults()

	attempt := Attempt{
		ID:        uuid.NewString(),
		Request:   req,
		Driver:    o.driver.Name(),
		StartedAt: o.now(),
	}

	o.logger.Info("capture started",
		interfaces.F("capture_id", attempt.ID),
		interfaces.F("url", req.URL),
		interfaces.F("width", req.Width),
		interfaces.F("height", req.Height),
		interfaces.F("full_page", req.FullPage),
	)

	o.publish(&attempt, PhaseBrowserStarting, "")
	session, err := o.driver.Acquire(ctx, browser.Config{
		Width:          req.Width,
		Height:         req.Height,
		UserAgent:      o.cfg.UserAgent,
		DisableSandbox: o.cfg.DisableSandbox,
		HideScrollbars: req.FullPage,
	})
	if err != nil {
		return nil, o.fail(ctx, &attempt, err)
	}
	defer func() {
		if err := session.Release(); err != nil {
			o.logger.Warn("session release",
				interfaces.F("capture_id", attempt.ID),
				interfaces.F("error", err.Error()),
			)
		}
	}()

	imageBytes, err := o.capturePage(ctx, &attempt, session, req)
	if err != nil {
		return nil, o.fail(ctx, &attempt, err)
	}

	// The page HTML rides along for history and diffing; losing it never
	// fails the capture.
	o.archivePage(ctx, &attempt, session)

	o.publish(&attempt, PhasePersisting, "")
	storagePath, err := o.store.Save(ctx, storage.NewImageName(o.now()), imageBytes)
	if err != nil {
		return nil, o.fail(ctx, &attempt, err)
	}

	attempt.Status = StatusOK
	attempt.StoragePath = storagePath
	attempt.Duration = o.now().Sub(attempt.StartedAt)
	o.record(ctx, attempt)
	o.publish(&attempt, PhaseDone, storagePath)

	o.logger.Info("capture done",
		interfaces.F("capture_id", attempt.ID),
		interfaces.F("storage_path", storagePath),
		interfaces.F("bytes", len(imageBytes)),
		interfaces.F("duration_ms", attempt.Duration.Milliseconds()),
	)

	return &Result{ID: attempt.ID, Request: req, StoragePath: storagePath, ImageBytes: imageBytes}, nil
}

// capturePage drives the session through the capture sequence: viewport,
// navigate under the shared budget, fixed delay, optional full-page resize,
// raster. Ordering is load-bearing: the height measurement must see the
// delayed, settled DOM.
func (o *Orchestrator) capturePage(ctx context.Context, attempt *Attempt, session browser.Session, req Request) ([]byte, error) {
	if err := session.SetViewport(ctx, req.Width, req.Height); err != nil {
		return nil, err
	}

	// One budget covers load and readiness together, not two timers.
	navCtx, cancel := context.WithTimeout(ctx, time.Duration(o.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	o.publish(attempt, PhaseNavigating, "")
	if err := session.Navigate(navCtx, req.URL); err != nil {
		return nil, err
	}

	if req.DelaySeconds > 0 {
		o.publish(attempt, PhaseDelaying, fmt.Sprintf("%ds", req.DelaySeconds))
		if err := o.sleep(ctx, time.Duration(req.DelaySeconds)*time.Second); err != nil {
			return nil, err
		}
	}

	if req.FullPage {
		o.publish(attempt, PhaseMeasuring, "")
		height, err := session.EvaluateInt(ctx, contentHeightExpr)
		if err != nil || height <= 0 {
			detail := "non-positive height"
			if err != nil {
				detail = err.Error()
			}
			o.logger.Warn("content height probe failed, using fallback",
				interfaces.F("capture_id", attempt.ID),
				interfaces.F("fallback", FallbackContentHeight),
				interfaces.F("reason", detail),
			)
			height = FallbackContentHeight
		}

		o.publish(attempt, PhaseResizing, fmt.Sprintf("%dx%d", req.Width, height))
		if err := session.SetViewport(ctx, req.Width, height); err != nil {
			return nil, err
		}
		// Unconditional reflow pause, independent of DelaySeconds.
		if err := o.sleep(ctx, settleDelay); err != nil {
			return nil, err
		}
	}

	o.publish(attempt, PhaseCapturing, "")
	imageBytes, err := session.CaptureImage(ctx)
	if err != nil {
		return nil, err
	}
	if len(imageBytes) == 0 {
		return nil, ErrEmptyCapture
	}
	return imageBytes, nil
}

// archivePage best-effort saves the rendered HTML and extracts the page
// title into the attempt.
func (o *Orchestrator) archivePage(ctx context.Context, attempt *Attempt, session browser.Session) {
	html, err := session.CaptureHTML(ctx)
	if err != nil {
		o.logger.Debug("html capture skipped",
			interfaces.F("capture_id", attempt.ID),
			interfaces.F("error", err.Error()),
		)
		return
	}
	attempt.Title = pagemeta.Title(html)

	htmlPath, err := o.store.Save(ctx, storage.NewHTMLName(o.now()), []byte(html))
	if err != nil {
		o.logger.Warn("html archive failed",
			interfaces.F("capture_id", attempt.ID),
			interfaces.F("error", err.Error()),
		)
		return
	}
	attempt.HTMLPath = htmlPath
}

// fail finalizes a failed attempt: record, publish, log. The deferred
// release in Capture terminates the browser before control returns to the
// caller.
func (o *Orchestrator) fail(ctx context.Context, attempt *Attempt, err error) error {
	attempt.Status = StatusFailed
	attempt.Error = err.Error()
	attempt.Duration = o.now().Sub(attempt.StartedAt)
	o.record(ctx, *attempt)
	o.publish(attempt, PhaseFailed, err.Error())

	o.logger.Error("capture failed",
		interfaces.F("capture_id", attempt.ID),
		interfaces.F("url", attempt.Request.URL),
		interfaces.F("error", err.Error()),
	)
	return err
}

func (o *Orchestrator) record(ctx context.Context, attempt Attempt) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, attempt); err != nil {
		o.logger.Warn("history record failed",
			interfaces.F("capture_id", attempt.ID),
			interfaces.F("error", err.Error()),
		)
	}
}

func (o *Orchestrator) publish(attempt *Attempt, phase Phase, detail string) {
	if o.bus == nil {
		return
	}
	o.bus.Publish(Event{
		CaptureID: attempt.ID,
		URL:       attempt.Request.URL,
		Phase:     phase,
		Detail:    detail,
		Time:      o.now(),
	})
}

// sleepContext blocks for d or until ctx is done. The fixed waits in the
// capture sequence are deliberate blocking sleeps, not idle-detection.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
