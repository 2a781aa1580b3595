package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/raysh454/webshot/internal/browser"
	"github.com/raysh454/webshot/internal/capture"
	"github.com/raysh454/webshot/internal/cli"
	"github.com/raysh454/webshot/internal/config"
	"github.com/raysh454/webshot/internal/history"
	"github.com/raysh454/webshot/internal/logging"
	"github.com/raysh454/webshot/internal/metrics"
	"github.com/raysh454/webshot/internal/server"
	"github.com/raysh454/webshot/internal/storage"
	"github.com/raysh454/webshot/internal/urlguard"
)

// Application is the global runtime state container.
// It holds settings, parsed CLI args and the core services that are shared
// across modules (orchestrator, server, storage, logger). Pass Application
// into code that needs access to the global state rather than using
// package-level variables.
type Application struct {
	Settings *config.Settings
	Args     *cli.CLIArgs

	// Use the shared logger interface from internal/interfaces
	Logger logging.Logger

	Store   storage.Store
	History *history.Log
	Driver  browser.Driver
	Bus     *capture.Bus
	Guard   *urlguard.Guard
	Metrics *metrics.Metrics
	Orch    *capture.Orchestrator
	Server  *server.Server

	httpServer *http.Server

	// internal context for cancellation / lifecycle
	ctx    context.Context
	cancel context.CancelFunc
}

// NewApplication wires every service from settings and returns the assembled
// Application. Construction fails fast: a component that cannot start closes
// whatever opened before it.
func NewApplication(ctx context.Context, settings *config.Settings, args *cli.CLIArgs, logger logging.Logger) (*Application, error) {
	if settings == nil {
		return nil, errors.New("settings are nil")
	}
	if logger == nil {
		logger = logging.NewStdoutLogger("Webshot")
	}

	store, err := newStore(ctx, settings)
	if err != nil {
		return nil, err
	}

	hist, err := history.Open(settings.HistoryPath, logger.With(logging.Field{Key: "component", Value: "History"}))
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	driver, err := browser.New(settings.Driver, logger.With(logging.Field{Key: "component", Value: "Browser"}))
	if err != nil {
		_ = hist.Close()
		return nil, fmt.Errorf("new browser driver: %w", err)
	}

	guard := urlguard.New(settings.BlockPrivateHosts, logger.With(logging.Field{Key: "component", Value: "URLGuard"}))
	met := metrics.New()
	bus := capture.NewBus()

	orch := capture.NewOrchestrator(capture.Config{
		TimeoutSeconds: settings.TimeoutSeconds,
		UserAgent:      settings.UserAgent,
		DisableSandbox: settings.DisableSandbox,
	}, driver, store, bus, hist, logger.With(logging.Field{Key: "component", Value: "Capture"}))

	srv := server.NewServer(server.Config{
		ListenAddr:            settings.HTTPAddr,
		RateLimitRPS:          settings.RateLimitRPS,
		RateLimitBurst:        settings.RateLimitBurst,
		MaxConcurrentCaptures: settings.MaxConcurrentCaptures,
		Logger:                logger.With(logging.Field{Key: "component", Value: "Server"}),
	}, server.Deps{
		Capturer: orch,
		Store:    store,
		History:  hist,
		Bus:      bus,
		Guard:    guard,
		Metrics:  met,
	})

	appCtx, cancel := context.WithCancel(context.Background())

	return &Application{
		Settings:   settings,
		Args:       args,
		Logger:     logger,
		Store:      store,
		History:    hist,
		Driver:     driver,
		Bus:        bus,
		Guard:      guard,
		Metrics:    met,
		Orch:       orch,
		Server:     srv,
		httpServer: srv.HTTPServer(),
		ctx:        appCtx,
		cancel:     cancel,
	}, nil
}

// newStore selects the artifact storage backend from settings.
func newStore(ctx context.Context, settings *config.Settings) (storage.Store, error) {
	switch settings.StorageBackend {
	case "file":
		return storage.NewFileStore(settings.StorageDirectory), nil
	case "s3":
		st, err := storage.NewS3Store(ctx, settings.S3Bucket, settings.S3KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("new s3 store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", settings.StorageBackend)
	}
}

// Start runs the HTTP server and blocks until Shutdown is called or the
// listener fails. Run it from a goroutine when the caller needs to keep
// control of the main loop.
func (a *Application) Start() error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application starting",
		logging.Field{Key: "addr", Value: a.Settings.HTTPAddr},
		logging.Field{Key: "driver", Value: a.Settings.Driver},
		logging.Field{Key: "storage_backend", Value: a.Settings.StorageBackend})

	err := a.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown attempts a graceful shutdown with a bounded timeout: drain the
// HTTP server first, then close the capture history and the browser driver.
func (a *Application) Shutdown(ctx context.Context) error {
	if a == nil {
		return errors.New("application is nil")
	}
	a.Logger.Info("application shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var firstErr error
	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
			firstErr = fmt.Errorf("shutdown http server: %w", err)
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close history: %w", err)
		}
	}
	if a.Driver != nil {
		if err := a.Driver.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close browser driver: %w", err)
		}
	}

	// cancel internal ctx to signal local components/tests
	a.cancel()

	return firstErr
}
