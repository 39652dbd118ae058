package debug

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	lerrors "github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/pkg/app"
	"github.com/vango-dev/lumen/pkg/layout"
)

// Config configures the debug server.
type Config struct {
	// Addr is the listen address (default: "localhost:9191").
	Addr string

	// History is the number of frame reports kept for /frames (default: 120).
	History int

	// Gatherer serves /metrics.
	// Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer

	// Logger is used for request and lifecycle logs.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:     "localhost:9191",
		History:  120,
		Gatherer: prometheus.DefaultGatherer,
	}
}

// Server is the debug HTTP server.
type Server struct {
	config  Config
	tracker *layout.Tracker
	frames  *ring
	stream  *Stream
	router  chi.Router
	logger  *slog.Logger
	started time.Time

	listener net.Listener
}

// New creates a Server reading invalidation state from tracker.
func New(tracker *layout.Tracker, config Config) *Server {
	def := DefaultConfig()
	if config.Addr == "" {
		config.Addr = def.Addr
	}
	if config.History <= 0 {
		config.History = def.History
	}
	if config.Gatherer == nil {
		config.Gatherer = def.Gatherer
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	s := &Server{
		config:  config,
		tracker: tracker,
		frames:  newRing(config.History),
		stream:  NewStream(config.Logger),
		logger:  config.Logger,
		started: time.Now(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/health", s.handleHealth)
	r.Get("/frames", s.handleFrames)
	r.Get("/invalidation", s.handleInvalidation)
	r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/ws", s.stream.HandleWebSocket)
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stream returns the websocket stream.
func (s *Server) Stream() *Stream {
	return s.stream
}

// PublishFrame records report for /frames and sends it to stream clients.
func (s *Server) PublishFrame(report app.FrameReport) {
	s.frames.add(report)
	s.stream.PublishFrame(report)
}

// Addr returns the bound address once the server is listening, or the
// configured address before that.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// Listen binds the configured address. A failure is an E301 error.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return lerrors.New(lerrors.CodeDebugListen).
			WithOp("debug.Server.Listen").
			WithDetail("address " + s.config.Addr).
			Wrap(err)
	}
	s.listener = ln
	return nil
}

// Serve serves on the bound listener until ctx is done, then shuts down.
// Listen must have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(s.listener)
	}()
	s.logger.Info("debug server listening", "addr", s.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.stream.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("debug server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

type healthResponse struct {
	Status  string  `json:"status"`
	Uptime  float64 `json:"uptime_seconds"`
	Clients int     `json:"stream_clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, healthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.started).Seconds(),
		Clients: s.stream.ClientCount(),
	})
}

func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.frames.list())
}

type dirtyNode struct {
	Node  layout.NodeID `json:"node"`
	Flags []string      `json:"flags"`
}

type invalidationResponse struct {
	Dirty           []dirtyNode    `json:"dirty"`
	Metrics         layout.Metrics `json:"metrics"`
	EfficiencyRatio float64        `json:"efficiency_ratio"`
}

func (s *Server) handleInvalidation(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	resp := invalidationResponse{
		Dirty:           make([]dirtyNode, 0, len(snap.Dirty)),
		Metrics:         snap.Metrics,
		EfficiencyRatio: snap.Metrics.EfficiencyRatio(),
	}
	for _, d := range snap.Dirty {
		resp.Dirty = append(resp.Dirty, dirtyNode{Node: d.Node, Flags: d.Flags.Names()})
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
