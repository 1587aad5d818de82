package devtools

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reflow-ui/reflow/pkg/reactive"
)

// Server serves engine inspection endpoints. Engines are registered by
// name; their event sinks fan out to connected WebSocket clients.
type Server struct {
	logger   *slog.Logger
	gatherer prometheus.Gatherer
	hub      *hub

	mu      sync.RWMutex
	engines map[string]*reactive.Engine
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer sets the Prometheus gatherer backing /metrics.
// Default: prometheus.DefaultGatherer.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// New creates a devtools server.
func New(opts ...Option) *Server {
	s := &Server{
		logger:   slog.Default().With("component", "devtools"),
		gatherer: prometheus.DefaultGatherer,
		engines:  make(map[string]*reactive.Engine),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.hub = newHub(s.logger)
	return s
}

// Register makes an engine's snapshot visible under name.
func (s *Server) Register(name string, eng *reactive.Engine) {
	s.mu.Lock()
	s.engines[name] = eng
	s.mu.Unlock()
}

// Sink returns an event sink for reactive.WithEventSink that streams the
// engine's events to connected clients under the given name.
func (s *Server) Sink(name string) func(reactive.Event) {
	return func(ev reactive.Event) {
		s.hub.publish(streamMessage{Engine: name, Event: ev})
	}
}

// Handler returns the HTTP handler tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/engines", s.handleEngines)
	r.Get("/ws", s.handleWS)
	return r
}

// Serve runs the server until ctx is canceled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devtools listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snapshot := make(map[string]reactive.Stats, len(s.engines))
	for name, eng := range s.engines {
		snapshot[name] = eng.Stats()
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Error("snapshot encode failed", "error", err)
	}
}
