// Package server exposes view sessions over HTTP.
//
// Each session wraps one view coordinator; every control action is a small
// JSON request that returns the new snapshot. Graph files are opened from a
// root directory and, with watching enabled, edits to those files reload
// every session that was opened from them.
//
// # Routes
//
//	GET    /healthz
//	GET    /metrics                          when Config.Metrics is set
//	POST   /sessions                         {"path": "arch.yaml"} or {"data": "...", "format": "yaml"}
//	GET    /sessions/{id}                    current snapshot
//	DELETE /sessions/{id}
//	POST   /sessions/{id}/select             {"node": "api"}
//	POST   /sessions/{id}/clear
//	PUT    /sessions/{id}/depth              {"depth": 3}
//	PUT    /sessions/{id}/direction          {"direction": "LR"}
//	POST   /sessions/{id}/filters/{kind}/{tag}  kind is type, group or layer
//	GET    /sessions/{id}/search?q=...&limit=n
//	GET    /sessions/{id}/connections/{node}
//	POST   /sessions/{id}/timeline/{action}  play, pause, reset, tick (?dt=500ms), seek ({"step": 2})
//	GET    /sessions/{id}/export/{format}    svg, png, pdf, dot or json
package server

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/graphilizer/pkg/errors"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/observability"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
	"github.com/matzehuels/graphilizer/pkg/session"
	"github.com/matzehuels/graphilizer/pkg/view"
)

// Config configures a Server.
type Config struct {
	// Root is the directory graph files are opened from.
	Root string
	// Runner loads graphs and provides the layout and export caches.
	Runner *pipeline.Runner
	// Defaults supplies layout overrides and the focus depth for new
	// sessions. Input and view fields are ignored.
	Defaults pipeline.Options
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	// SessionTTL is the idle expiry of sessions (session.DefaultTTL if 0).
	SessionTTL time.Duration
	Logger     *log.Logger
}

// Server holds the session store. It is safe for concurrent use.
type Server struct {
	cfg      Config
	sessions *session.Store
	logger   *log.Logger
}

// New creates a server.
func New(cfg Config) *Server {
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	if cfg.Root == "" {
		cfg.Root = "."
	}
	return &Server{cfg: cfg, sessions: session.NewStore(), logger: cfg.Logger}
}

// Sessions returns the session store.
func (s *Server) Sessions() *session.Store { return s.sessions }

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSnapshot)
			r.Delete("/", s.deleteSession)
			r.Post("/select", s.selectNode)
			r.Post("/clear", s.clearSelection)
			r.Put("/depth", s.setDepth)
			r.Put("/direction", s.setDirection)
			r.Post("/filters/{kind}/{tag}", s.toggleFilter)
			r.Get("/search", s.search)
			r.Get("/connections/{node}", s.connections)
			r.Post("/timeline/{action}", s.timeline)
			r.Get("/export/{format}", s.export)
		})
	})
	return r
}

// instrument reports every request to the HTTP hooks and the debug log.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.HTTP().OnRequest(r.Context(), r.Method, route)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, time.Since(start))
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Session lifecycle
// =============================================================================

// Open loads a graph file below Root and starts a session on it.
func (s *Server) Open(ctx context.Context, path string) (*session.Session, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	opts := s.cfg.Defaults
	opts.Path = filepath.Join(s.cfg.Root, path)
	return s.open(ctx, opts, path)
}

// OpenData starts a session on an uploaded document.
func (s *Server) OpenData(ctx context.Context, data []byte, format graph.Format) (*session.Session, error) {
	opts := s.cfg.Defaults
	opts.Path, opts.Data, opts.Format = "", data, format
	return s.open(ctx, opts, "")
}

func (s *Server) open(ctx context.Context, opts pipeline.Options, source string) (*session.Session, error) {
	opts.Logger = s.logger
	opts.Formats = nil
	g, rep, err := pipeline.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	lay, _, _, err := s.cfg.Runner.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	opts.SetViewDefaults()
	sess := session.New(pipeline.BuildView(g, rep, lay, opts), source, s.cfg.SessionTTL)
	s.sessions.Set(sess)
	s.logger.Info("opened session", "id", sess.ID, "source", source, "nodes", len(g.Nodes), "issues", len(rep.Issues))
	return sess, nil
}

// Reload re-reads a graph file and swaps the new graph into every session
// opened from it. It returns the number of sessions updated.
func (s *Server) Reload(ctx context.Context, path string) (int, error) {
	opts := s.cfg.Defaults
	opts.Path, opts.Data, opts.Logger = filepath.Join(s.cfg.Root, path), nil, s.logger
	g, rep, err := pipeline.Load(ctx, opts)
	if err != nil {
		return 0, err
	}
	n := 0
	s.sessions.Each(path, func(sess *session.Session) {
		sess.Do(func(c *view.Coordinator) *view.Snapshot { return c.SetGraph(g, rep.Issues) })
		n++
	})
	s.logger.Info("reloaded graph", "source", path, "sessions", n, "nodes", len(g.Nodes))
	return n, nil
}

// Run serves on addr until ctx is cancelled, expiring idle sessions once a
// minute.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
				return
			case <-ticker.C:
				if n := s.sessions.Cleanup(); n > 0 {
					s.logger.Debug("expired sessions", "count", n)
				}
			}
		}
	}()

	s.logger.Info("listening", "addr", addr, "root", s.cfg.Root)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return ctx.Err()
}
