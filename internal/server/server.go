// Package server exposes the firewall over HTTP.
//
// Routes:
//
//	POST /v1/check        check one text ({"sql": ...}) or a batch ({"sqls": [...]})
//	GET  /v1/checks       registered checks and whether the policy enables them
//	GET  /v1/stats        cumulative counters since start
//	GET  /v1/audit        recent audit entries (?code=, ?denied=true, ?limit=)
//	GET  /v1/audit/{id}   one audit entry
//	GET  /healthz         liveness
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlwall/internal/audit"
	"github.com/leapstack-labs/sqlwall/internal/config"
	"github.com/leapstack-labs/sqlwall/pkg/firewall"
	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server is the firewall HTTP server.
type Server struct {
	firewall *firewall.Firewall
	store    *audit.Store
	registry *wall.Registry
	holder   *config.Holder
	watch    string
	load     func() (*config.Config, error)
	addr     string
	logger   *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Firewall *firewall.Firewall
	// Store, when set, receives every checked text.
	Store *audit.Store
	// Registry is the registry listed by /v1/checks; the default registry
	// otherwise.
	Registry *wall.Registry
	// Holder, when set together with ConfigFile, is kept in sync with the
	// config file and its snapshots are applied to Firewall.
	Holder     *config.Holder
	ConfigFile string
	// Loader rereads the configuration after ConfigFile changes. Defaults to
	// loading ConfigFile without flag overrides.
	Loader func() (*config.Config, error)
	Addr   string
	Logger *slog.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	s := &Server{
		firewall: cfg.Firewall,
		store:    cfg.Store,
		registry: cfg.Registry,
		holder:   cfg.Holder,
		watch:    cfg.ConfigFile,
		load:     cfg.Loader,
		addr:     cfg.Addr,
		logger:   cfg.Logger,
	}
	if s.registry == nil {
		s.registry = wall.DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.load == nil {
		s.load = func() (*config.Config, error) { return config.Load(s.watch, nil) }
	}
	if s.holder != nil {
		s.holder.OnChange(func(c *config.Config) {
			s.firewall.Reload(c.Policy(), wall.WithTablePermitter(c.Tables()))
		})
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Recoverer,
		s.requestLogger,
	)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/check", s.handleCheck)
		r.Get("/checks", s.handleChecks)
		r.Get("/stats", s.handleStats)
		r.Route("/audit", func(r chi.Router) {
			r.Get("/", s.handleAuditList)
			r.Get("/{id}", s.handleAuditGet)
		})
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting firewall server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start config watcher if enabled
	if s.holder != nil && s.watch != "" {
		eg.Go(func() error {
			return config.Watch(egctx, s.watch, s.holder, s.load, s.logger)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down firewall server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}
