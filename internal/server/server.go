// Package server exposes ingestion and queries over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/pesalens/pesalens/internal/ingest"
	"github.com/pesalens/pesalens/internal/ledger"
	"github.com/pesalens/pesalens/internal/logger"
	"github.com/pesalens/pesalens/internal/queries"
)

// DefaultMaxUploadBytes bounds a statement upload when Options leave it unset.
const DefaultMaxUploadBytes = 32 << 20

func init() {
	// amounts are JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

// Ingester runs the ingestion pipeline.
type Ingester interface {
	Ingest(ctx context.Context, up ingest.Upload) (*ingest.Result, error)
}

// Ledgers lists stored ledgers.
type Ledgers interface {
	List() ([]ledger.Entry, error)
}

// Options configure a Server.
type Options struct {
	Pipeline       Ingester
	Queries        *queries.Service
	Ledgers        Ledgers
	Metrics        http.Handler // served at /metrics when set
	Logger         zerolog.Logger
	MaxUploadBytes int64
}

// Server routes HTTP requests to the pipeline and the query service.
type Server struct {
	pipeline  Ingester
	queries   *queries.Service
	ledgers   Ledgers
	metrics   http.Handler
	log       zerolog.Logger
	maxUpload int64
}

// New creates a Server.
func New(opts Options) *Server {
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	return &Server{
		pipeline:  opts.Pipeline,
		queries:   opts.Queries,
		ledgers:   opts.Ledgers,
		metrics:   opts.Metrics,
		log:       opts.Logger,
		maxUpload: maxUpload,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/ledgers", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", s.listLedgers)
		r.Post("/", s.uploadStatement)
		r.Get("/{ledgerID}/queries", s.listQueries)
		r.Get("/{ledgerID}/queries/{name}", s.runQuery)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger attaches a request-scoped logger to the context and logs
// each completed request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(logger.WithContext(r.Context(), log)))

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
