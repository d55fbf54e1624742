// Package server exposes the market-value pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jumpingmushroom/FlipStash-sub000/models"
	"github.com/jumpingmushroom/FlipStash-sub000/services"
	"github.com/jumpingmushroom/FlipStash-sub000/storage"
	"github.com/jumpingmushroom/FlipStash-sub000/utils"
)

// Market is the part of services.MarketService the handlers use.
type Market interface {
	GetMarketValue(ctx context.Context, q models.PriceQuery) (models.MarketValueResult, []models.SourceObservation, error)
	Search(ctx context.Context, q models.PriceQuery) (models.MultiSearchResult, error)
	PriceFromURL(ctx context.Context, rawURL string, condition models.Condition) (models.SourceObservation, error)
	RefreshGame(ctx context.Context, id int64) (models.MarketValueResult, error)
	RunBatch(ctx context.Context, ids []int64, opts services.BatchOptions, emit services.Emitter) models.BatchSummary
}

type Server struct {
	httpServer *http.Server
	handlers   *Handlers
	logger     *utils.Logger
}

// Options configure a Server. Lister supplies the ids for a refresh request
// that names none and may be nil. BatchDelayMin/Max bound the pause between
// batch items that reached a site.
type Options struct {
	Lister        storage.GameLister
	Logger        *utils.Logger
	BatchDelayMin time.Duration
	BatchDelayMax time.Duration
}

// NewServer builds the router.
func NewServer(addr string, market Market, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewDiscardLogger()
	}
	h := &Handlers{
		market:   market,
		lister:   opts.Lister,
		logger:   logger,
		delayMin: opts.BatchDelayMin,
		delayMax: opts.BatchDelayMax,
	}

	r := chi.NewRouter()
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/market-value", h.HandleMarketValue)
		r.Get("/price-from-url", h.HandlePriceFromURL)
		r.Post("/games/{id}/refresh", h.HandleRefreshGame)
		r.Post("/refresh", h.HandleRefreshBatch)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
		handlers: h,
		logger:   logger,
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until Stop is called or listening fails.
func (s *Server) Start() error {
	s.logger.Info("[server] Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("[server] Stopping")
	return s.httpServer.Shutdown(ctx)
}

// LoggerMiddleware logs every request with its status and duration.
func LoggerMiddleware(logger *utils.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("[server] %s %s %d %dB %dms",
				r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start).Milliseconds())
		})
	}
}
