// Package server exposes station analysis over HTTP.
//
// Routes:
//
//	GET    /healthz                     build information
//	GET    /metrics                     Prometheus exposition (when configured)
//	POST   /api/generate                analyse a station from the editor payload
//	POST   /api/upload                  analyse an uploaded RailML, JSON or YAML file
//	POST   /api/render                  draw a station as SVG, PNG or DOT
//	POST   /api/stations                save a station document
//	GET    /api/stations                list saved stations
//	GET    /api/stations/{id}           fetch a saved station document
//	DELETE /api/stations/{id}           remove a saved station
//	GET    /api/stations/{id}/analysis  analyse a saved station
//
// Every request builds its own network, so handlers share nothing but the
// pipeline runner and the store.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/railcdl/pkg/pipeline"
	"github.com/matzehuels/railcdl/pkg/store"
)

// DefaultMaxUploadBytes bounds request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 10 << 20

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Runner executes analyses. Nil selects an uncached runner.
	Runner *pipeline.Runner
	// Store keeps saved stations. Nil selects a MemoryStore.
	Store store.Store
	// Logger receives request logs. Nil selects log.Default().
	Logger *log.Logger
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
	// MaxUploadBytes bounds request bodies.
	MaxUploadBytes int64
	// Threshold and Branch apply when a request leaves them out. Zero
	// values select the analysis defaults.
	Threshold float64
	Branch    string
}

// Server is the HTTP API.
type Server struct {
	runner    *pipeline.Runner
	store     store.Store
	logger    *log.Logger
	metrics   http.Handler
	maxUpload int64
	threshold float64
	branch    string
	validate  *validator.Validate
	router    chi.Router
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}

	s := &Server{
		runner:    opts.Runner,
		store:     opts.Store,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		maxUpload: opts.MaxUploadBytes,
		threshold: opts.Threshold,
		branch:    opts.Branch,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestContext, s.instrument, middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.handleGenerate)
		r.Post("/upload", s.handleUpload)
		r.Post("/render", s.handleRender)

		r.Route("/stations", func(r chi.Router) {
			r.Post("/", s.handleCreateStation)
			r.Get("/", s.handleListStations)
			r.Get("/{id}", s.handleGetStation)
			r.Delete("/{id}", s.handleDeleteStation)
			r.Get("/{id}/analysis", s.handleStationAnalysis)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
