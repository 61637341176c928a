// Package api provides HTTP handlers and the main API server logic for the
// signup service.
//
// It exposes RESTful endpoints for starting signup conversations, posting
// user messages, and listing finalized applications. The API wires together
// the store, session, genai, and scheduler modules.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tuaspower/signupflow/internal/genai"
	"github.com/tuaspower/signupflow/internal/scheduler"
	"github.com/tuaspower/signupflow/internal/session"
	"github.com/tuaspower/signupflow/internal/store"
)

// Default configuration constants
const (
	// DefaultAPIAddr is the default address the API server listens on.
	DefaultAPIAddr = ":8080"
	// DefaultSweepCron runs the abandoned-session sweep every five minutes.
	DefaultSweepCron = "*/5 * * * *"
)

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	SweepCron   string
	IdleTimeout time.Duration
}

// Option configures the API server.
type Option func(*Opts)

// WithAddr overrides the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithSweepCron overrides the cron expression for the abandonment sweep.
func WithSweepCron(expr string) Option {
	return func(o *Opts) { o.SweepCron = expr }
}

// WithIdleTimeout overrides how long a session may idle before abandonment.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *Opts) { o.IdleTimeout = d }
}

// Server bundles the modules behind the HTTP handlers.
type Server struct {
	mgr   *session.Manager
	st    store.Store
	sched *scheduler.Scheduler
}

// NewServer creates a server around an already-wired session manager and
// store. Used directly by tests; Run performs the full wiring.
func NewServer(mgr *session.Manager, st store.Store) *Server {
	return &Server{mgr: mgr, st: st}
}

// Handler returns the routed HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", s.sessionsHandler)
	mux.HandleFunc("/sessions/", s.sessionDetailHandler)
	mux.HandleFunc("/applications", s.applicationsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run wires the store, text generator, session manager, and sweep scheduler,
// then serves the API. It blocks until the listener fails.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	cfg := Opts{
		Addr:        DefaultAPIAddr,
		SweepCron:   DefaultSweepCron,
		IdleTimeout: session.DefaultIdleTimeout,
	}
	for _, opt := range apiOpts {
		opt(&cfg)
	}

	st, err := store.NewStore(storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	var gen genai.ClientInterface
	client, err := genai.NewClient(genaiOpts...)
	if err != nil {
		slog.Warn("api.Run: text generator unavailable, replies will use the fallback message", "error", err)
	} else {
		gen = client
	}

	mgr := session.NewManager(st, gen)

	sched := scheduler.NewScheduler()
	defer sched.Stop()
	if err := sched.AddJob(cfg.SweepCron, func() {
		if _, err := mgr.SweepAbandoned(cfg.IdleTimeout); err != nil {
			slog.Error("api.Run: abandonment sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule abandonment sweep: %w", err)
	}

	srv := NewServer(mgr, st)
	srv.sched = sched

	slog.Info("Signup API running", "addr", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, srv.Handler())
}
