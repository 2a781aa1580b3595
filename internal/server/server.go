package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"golang.org/x/time/rate"

	_ "github.com/raysh454/webshot/docs" // swagger spec
	"github.com/raysh454/webshot/internal/browser"
	"github.com/raysh454/webshot/internal/capture"
	"github.com/raysh454/webshot/internal/history"
	"github.com/raysh454/webshot/internal/logging"
	"github.com/raysh454/webshot/internal/storage"
	"github.com/raysh454/webshot/internal/urlguard"
)

// Capturer runs one capture request to completion. The production
// implementation is *capture.Orchestrator.
type Capturer interface {
	Capture(ctx context.Context, req capture.Request) (*capture.Result, error)
}

// MetricsRecorder is the slice of internal/metrics the server touches.
type MetricsRecorder interface {
	ObserveCapture(status string, seconds float64, bytes int)
	SessionStarted()
	SessionEnded()
	Handler() http.Handler
}

// Deps are the collaborators behind the HTTP surface. All fields are
// required.
type Deps struct {
	Capturer Capturer
	Store    storage.Store
	History  *history.Log
	Bus      *capture.Bus
	Guard    *urlguard.Guard
	Metrics  MetricsRecorder
}

// Server is the HTTP + WebSocket API surface for Webshot.
type Server struct {
	cfg      Config
	deps     Deps
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger

	limiter  *rate.Limiter
	sessions chan struct{}
}

// NewServer wires the HTTP surface onto its collaborators.
func NewServer(cfg Config, deps Deps) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	maxSessions := cfg.MaxConcurrentCaptures
	if maxSessions <= 0 {
		maxSessions = 4
	}
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: r,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
		limiter:  limiter,
		sessions: make(chan struct{}, maxSessions),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/v1/captures", s.optionsHandler("GET, POST"))
	r.Options("/api/v1/captures/{captureID}", s.optionsHandler("GET"))
	r.Options("/api/v1/captures/{captureID}/image", s.optionsHandler("GET"))
	r.Options("/api/v1/captures/{captureID}/html", s.optionsHandler("GET"))
	r.Options("/api/v1/captures/{captureID}/diff", s.optionsHandler("GET"))
	r.Options("/api/v1/drivers", s.optionsHandler("GET"))

	// Captures
	r.Post("/api/v1/captures", s.handleCreateCapture)
	r.Get("/api/v1/captures", s.handleListCaptures)
	r.Get("/api/v1/captures/{captureID}", s.handleGetCapture)

	// Stored artifacts
	r.Get("/api/v1/captures/{captureID}/image", s.handleGetCaptureImage)
	r.Get("/api/v1/captures/{captureID}/html", s.handleGetCaptureHTML)
	r.Get("/api/v1/captures/{captureID}/diff", s.handleDiffCapture)

	// Drivers
	r.Get("/api/v1/drivers", s.handleListDrivers)

	// WebSocket for capture progress
	r.Get("/ws/captures", s.handleCapturesWS)

	// Operational surface
	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", s.deps.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusForCaptureError maps a failed capture onto an HTTP status. The
// timeout sentinel is distinct from plain navigation failure and must be
// checked first.
func statusForCaptureError(err error) int {
	switch {
	case errors.Is(err, browser.ErrNavigationTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, browser.ErrNavigation):
		return http.StatusBadGateway
	case errors.Is(err, browser.ErrBrowserStart):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// errNoArchivedHTML marks history entries that never stored page source.
var errNoArchivedHTML = errors.New("capture has no archived html")

// statusForLookup maps history and artifact lookups onto an HTTP status.
func statusForLookup(err error) int {
	switch {
	case errors.Is(err, history.ErrEntryNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, errNoArchivedHTML):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// --- HTTP handlers ---

// Captures

// handleCreateCapture godoc
// @Summary Render a page and store a screenshot
// @Tags captures
// @Accept json
// @Produce json
// @Param request body CreateCaptureRequest true "Capture parameters"
// @Success 201 {object} capture.Result
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/v1/captures [post]
func (s *Server) handleCreateCapture(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
		return
	}

	var body struct {
		URL          string `json:"url"`
		Width        int    `json:"width"`
		Height       int    `json:"height"`
		DelaySeconds int    `json:"delaySeconds"`
		FullPage     bool   `json:"fullPage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req := capture.Request{
		URL:          body.URL,
		Width:        body.Width,
		Height:       body.Height,
		DelaySeconds: body.DelaySeconds,
		FullPage:     body.FullPage,
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.deps.Guard.Check(r.Context(), req.URL); err != nil {
		s.logger.Warn("capture target blocked", logging.Field{Key: "url", Value: req.URL}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	select {
	case s.sessions <- struct{}{}:
		s.deps.Metrics.SessionStarted()
		defer func() {
			s.deps.Metrics.SessionEnded()
			<-s.sessions
		}()
	default:
		writeError(w, http.StatusServiceUnavailable, "too many captures in flight, retry later")
		return
	}

	start := time.Now()
	res, err := s.deps.Capturer.Capture(r.Context(), req)
	if err != nil {
		s.deps.Metrics.ObserveCapture("failed", time.Since(start).Seconds(), 0)
		s.logger.Warn("capture failed", logging.Field{Key: "url", Value: req.URL}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusForCaptureError(err), err.Error())
		return
	}
	s.deps.Metrics.ObserveCapture("ok", time.Since(start).Seconds(), len(res.ImageBytes))

	s.logger.Info("created capture", logging.Field{Key: "capture_id", Value: res.ID}, logging.Field{Key: "storage_path", Value: res.StoragePath})
	writeJSON(w, http.StatusCreated, res)
}

// handleListCaptures godoc
// @Summary List finished captures, newest first
// @Tags captures
// @Produce json
// @Param limit query int false "Maximum entries to return"
// @Success 200 {array} history.Entry
// @Router /api/v1/captures [get]
func (s *Server) handleListCaptures(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	entries, err := s.deps.History.List(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing captures", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	s.logger.Info("listed captures", logging.Field{Key: "count", Value: len(entries)})
	writeJSON(w, http.StatusOK, entries)
}

// handleGetCapture godoc
// @Summary Get one capture history entry
// @Tags captures
// @Produce json
// @Param captureID path string true "Capture ID"
// @Success 200 {object} history.Entry
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/captures/{captureID} [get]
func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	captureID := chi.URLParam(r, "captureID")

	entry, err := s.deps.History.Get(r.Context(), captureID)
	if err != nil {
		s.logger.Warn("getting capture", logging.Field{Key: "capture_id", Value: captureID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusForLookup(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Stored artifacts

// handleGetCaptureImage godoc
// @Summary Download the stored screenshot of a capture
// @Tags captures
// @Produce png
// @Param captureID path string true "Capture ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/captures/{captureID}/image [get]
func (s *Server) handleGetCaptureImage(w http.ResponseWriter, r *http.Request) {
	captureID := chi.URLParam(r, "captureID")

	entry, err := s.deps.History.Get(r.Context(), captureID)
	if err != nil {
		s.logger.Warn("getting capture image", logging.Field{Key: "capture_id", Value: captureID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusForLookup(err), err.Error())
		return
	}
	if entry.StoragePath == "" {
		writeError(w, http.StatusNotFound, "capture has no stored image")
		return
	}

	data, err := s.deps.Store.Load(r.Context(), entry.StoragePath)
	if err != nil {
		s.logger.Warn("loading capture image", logging.Field{Key: "capture_id", Value: captureID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusForLookup(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(entry.StoragePath)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleGetCaptureHTML godoc
// @Summary Download the archived page source of a capture
// @Tags captures
// @Produce html
// @Param captureID path string true "Capture ID"
// @Success 200 {string} string
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/captures/{captureID}/html [get]
func (s *Server) handleGetCaptureHTML(w http.ResponseWriter, r *http.Request) {
	captureID := chi.URLParam(r, "captureID")

	data, err := s.loadArchivedHTML(r.Context(), captureID)
	if err != nil {
		s.logger.Warn("getting capture html", logging.Field{Key: "capture_id", Value: captureID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusForLookup(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleDiffCapture godoc
// @Summary Diff the archived page source of two captures
// @Tags captures
// @Produce json
// @Param captureID path string true "Head capture ID"
// @Param base query string true "Base capture ID"
// @Success 200 {object} history.Diff
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/captures/{captureID}/diff [get]
func (s *Server) handleDiffCapture(w http.ResponseWriter, r *http.Request) {
	headID := chi.URLParam(r, "captureID")
	baseID := r.URL.Query().Get("base")
	if baseID == "" {
		s.logger.Warn("diffing captures: missing base query parameter")
		writeError(w, http.StatusBadRequest, "missing base query parameter")
		return
	}

	base, err := s.loadArchivedHTML(r.Context(), baseID)
	if err != nil {
		s.logger.Warn("diffing captures", logging.Field{Key: "capture_id", Value: baseID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusForLookup(err), err.Error())
		return
	}
	head, err := s.loadArchivedHTML(r.Context(), headID)
	if err != nil {
		s.logger.Warn("diffing captures", logging.Field{Key: "capture_id", Value: headID}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, statusForLookup(err), err.Error())
		return
	}

	diff := history.ComputeDiff(baseID, headID, base, head)
	s.logger.Info("diffed captures", logging.Field{Key: "base", Value: baseID}, logging.Field{Key: "head", Value: headID}, logging.Field{Key: "chunks", Value: len(diff.Chunks)})
	writeJSON(w, http.StatusOK, diff)
}

// loadArchivedHTML resolves a capture ID to its stored page source.
func (s *Server) loadArchivedHTML(ctx context.Context, captureID string) ([]byte, error) {
	entry, err := s.deps.History.Get(ctx, captureID)
	if err != nil {
		return nil, err
	}
	if entry.HTMLPath == "" {
		return nil, fmt.Errorf("%w: %s", errNoArchivedHTML, captureID)
	}
	return s.deps.Store.Load(ctx, entry.HTMLPath)
}

// Drivers

// handleListDrivers godoc
// @Summary List the browser drivers this build can run
// @Tags drivers
// @Produce json
// @Success 200 {object} DriversResponse
// @Router /api/v1/drivers [get]
func (s *Server) handleListDrivers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DriversResponse{Drivers: browser.List()})
}

// WebSockets

// handleCapturesWS streams capture lifecycle events to the client. Slow
// readers lose events rather than slowing captures down.
func (s *Server) handleCapturesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	events, unsubscribe := s.deps.Bus.Subscribe(64)
	defer unsubscribe()

	s.logger.Info("websocket subscriber connected", logging.Field{Key: "remote", Value: r.RemoteAddr})

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				// Assume client disconnected
				return
			}
		}
	}
}

// Health

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
