// Package server exposes a live family graph over HTTP.
//
// A [Server] owns one [scene.Scene] fed by a [source.Feed]: every snapshot
// the feed delivers is normalized and loaded into the scene, and every view
// settings change published on the [settings.Store] is applied to it. Clients
// poll the current frame as SVG or JSON, add members, drag nodes and export
// settled renders through the shared [pipeline.Runner].
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/pipeline"
	"github.com/matzehuels/familygraph/pkg/scene"
	"github.com/matzehuels/familygraph/pkg/settings"
	"github.com/matzehuels/familygraph/pkg/source"
)

const shutdownTimeout = 5 * time.Second

// Config wires a Server. Feed, Store and Runner are required.
type Config struct {
	Feed   *source.Feed
	Store  *settings.Store
	Runner *pipeline.Runner

	Width  float64
	Height float64
	Seed   uint64
	Params force.Params
	Title  string

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Server serves one live scene.
type Server struct {
	cfg   Config
	scene *scene.Scene

	mu       sync.RWMutex
	snap     source.Snapshot
	graph    family.Graph
	diags    []family.Diagnostic
	notice   *source.Notice
	loadedAt time.Time
}

// New builds a server. The scene starts empty; [Server.Run] loads it.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Title == "" {
		cfg.Title = pipeline.DefaultTitle
	}
	s := &Server{cfg: cfg}
	s.scene = scene.New(scene.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Seed:     cfg.Seed,
		Params:   cfg.Params,
		Settings: cfg.Store.Get(),
		Logger:   cfg.Logger,
	})
	return s
}

// Scene returns the live scene.
func (s *Server) Scene() *scene.Scene { return s.scene }

// Notify records a fetch failure so /api/graph can report it. It satisfies
// [source.Notifier].
func (s *Server) Notify(n source.Notice) {
	s.mu.Lock()
	s.notice = &n
	s.mu.Unlock()
}

// Load normalizes snap and loads it into the scene.
func (s *Server) Load(ctx context.Context, snap source.Snapshot) error {
	g, diags := snap.Graph()
	for _, d := range diags {
		s.cfg.Logger.Warn("skipped relationship", "edge", d.EdgeID, "code", d.Code, "reason", d.Message)
	}
	if err := s.scene.Load(ctx, g); err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = snap
	s.graph = g
	s.diags = diags
	s.loadedAt = time.Now()
	s.mu.Unlock()
	return nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.cfg.Logger))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.getGraph)
		r.Get("/frame", s.getFrame)
		r.Get("/frame.svg", s.getFrameSVG)
		r.Get("/export/{format}", s.export)

		r.Route("/members", func(r chi.Router) {
			r.Get("/", s.listMembers)
			r.Post("/", s.addMember)
		})

		r.Post("/nodes/{nodeID}/drag", s.drag)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.getSettings)
			r.Put("/", s.putSettings)
			r.Patch("/", s.patchSettings)
		})
	})

	if s.cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run loads the scene, follows the feed and settings store, and serves addr
// until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	unbind := s.scene.Bind(s.cfg.Store)
	defer unbind()
	defer s.scene.Close()

	feedErr := make(chan error, 1)
	go func() {
		feedErr <- s.cfg.Feed.Run(ctx, func(snap source.Snapshot) {
			if err := s.Load(ctx, snap); err != nil {
				s.cfg.Logger.Error("load snapshot", "err", err)
			}
		})
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case err := <-feedErr:
		if err != nil && ctx.Err() == nil {
			s.cfg.Logger.Error("data source watch stopped", "err", err)
		}
		<-ctx.Done()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}

func requestLogger(l *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			l.Debug("request", "method", r.Method, "path", r.URL.Path,
				"status", ww.Status(), "duration", time.Since(start).Round(time.Microsecond),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}
