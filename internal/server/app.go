package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/sessions"
	"github.com/desertthunder/ytradio/internal/shared"
	"github.com/desertthunder/ytradio/internal/tasks"
)

const (
	defaultKeepAlive = 30 * time.Second
	shutdownTimeout  = 10 * time.Second
)

// Discoverer looks up seed songs and runs related-songs discovery.
type Discoverer interface {
	Lookup(ctx context.Context, songName string) (*models.SongDetails, error)
	Run(ctx context.Context, query string, sink tasks.Sink)
}

// HistoryRecorder stores submitted requests.
type HistoryRecorder interface {
	Record(sessionID, username, query string, details models.SongDetails) (*models.SongRequest, error)
}

// Options configures a [Server].
type Options struct {
	KeepAlive     time.Duration
	SweepInterval time.Duration
	History       HistoryRecorder // optional
	Metrics       *Metrics        // optional; created when nil
	Logger        *log.Logger
}

// Server wires the session registry and discovery to HTTP handlers.
type Server struct {
	registry  *sessions.Registry
	discovery Discoverer
	history   HistoryRecorder
	metrics   *Metrics
	keepAlive time.Duration
	sweep     time.Duration
	logger    *log.Logger

	// base bounds the lifetime of background discoveries
	base   context.Context
	cancel context.CancelFunc
	runs   sync.WaitGroup
}

// New creates a [Server].
func New(registry *sessions.Registry, discovery Discoverer, opts Options) *Server {
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = defaultKeepAlive
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(registry.Len)
	}

	base, cancel := context.WithCancel(context.Background())
	return &Server{
		registry:  registry,
		discovery: discovery,
		history:   opts.History,
		metrics:   opts.Metrics,
		keepAlive: opts.KeepAlive,
		sweep:     opts.SweepInterval,
		logger:    opts.Logger,
		base:      base,
		cancel:    cancel,
	}
}

// Router builds the HTTP router with all handlers and middleware.
func (s *Server) Router() *BasicRouter {
	r := NewBasicRouter()
	r.Use(LoggingMiddleware(s.logger, s.metrics), RecoverMiddleware(s.logger))

	r.Handler(&SubmitHandler{server: s})
	r.Handler(&StreamHandler{server: s})
	r.Handler(&HealthHandler{registry: s.registry})
	r.Handle(http.MethodGet, "/metrics", s.metrics.Handler())
	return r
}

// Launch opens a session for the requested ID and starts discovery for query on it.
//
// Requested IDs that are not UUIDs are replaced by a generated one, as are IDs whose session
// already has a running producer.
func (s *Server) Launch(parent context.Context, requestedID, query string) *sessions.Session {
	id := requestedID
	if !shared.IsValidID(id) {
		id = shared.GenerateID()
	}

	for {
		session, _ := s.registry.Create(id)
		s.runs.Add(1)
		if session.Start(func() { s.discover(parent, session, query) }) {
			return session
		}
		s.runs.Done()
		s.logger.Warn("session already has a producer, assigning a new ID", "requested", id)
		id = shared.GenerateID()
	}
}

func (s *Server) discover(parent context.Context, session *sessions.Session, query string) {
	defer s.runs.Done()

	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	defer cancel()
	stop := context.AfterFunc(s.base, cancel)
	defer stop()

	started := time.Now()
	s.discovery.Run(ctx, query, session)
	s.metrics.Discovery.Observe(time.Since(started).Seconds())
}

// Serve runs an HTTP server on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	router := s.Router()
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.registry.Run(janitorCtx, s.sweep)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "routes", router.Patterns())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// Close cancels running discoveries and waits for them to push their terminal event.
func (s *Server) Close() {
	s.cancel()
	s.runs.Wait()
}
