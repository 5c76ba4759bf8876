// Package server provides the HTTP server and routing for the dashboard API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/config"
	"github.com/seetoh/stockdash/internal/database"
	"github.com/seetoh/stockdash/internal/marketdata"
	marketdatahandlers "github.com/seetoh/stockdash/internal/marketdata/handlers"
	"github.com/seetoh/stockdash/internal/modules/currency"
	currencyhandlers "github.com/seetoh/stockdash/internal/modules/currency/handlers"
	"github.com/seetoh/stockdash/internal/modules/historical"
	historicalhandlers "github.com/seetoh/stockdash/internal/modules/historical/handlers"
	"github.com/seetoh/stockdash/internal/modules/portfolio"
	portfoliohandlers "github.com/seetoh/stockdash/internal/modules/portfolio/handlers"
	"github.com/seetoh/stockdash/internal/modules/rebalancing"
	rebalancinghandlers "github.com/seetoh/stockdash/internal/modules/rebalancing/handlers"
	"github.com/seetoh/stockdash/internal/modules/scoring"
	scoringhandlers "github.com/seetoh/stockdash/internal/modules/scoring/handlers"
	"github.com/seetoh/stockdash/internal/modules/watchlist"
	watchlisthandlers "github.com/seetoh/stockdash/internal/modules/watchlist/handlers"
)

// Config holds everything the server needs to route requests.
type Config struct {
	Log         zerolog.Logger
	Config      *config.Config
	PortfolioDB *database.DB
	CacheDB     *database.DB

	Market      *marketdata.Service
	Currency    *currency.Service
	Scoring     *scoring.Service
	Portfolio   *portfolio.Service
	Watchlist   *watchlist.Service
	Rebalancing *rebalancing.Service
	Historical  *historical.Service
}

// Server is the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates the server and wires all module routes.
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	system := NewSystemHandlers(cfg.Log, cfg.PortfolioDB, cfg.CacheDB, cfg.Market)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", system.HandleHealth)
		r.Get("/system/stats", system.HandleSystemStats)

		marketdatahandlers.NewHandler(cfg.Market, cfg.Log).RegisterRoutes(r)
		currencyhandlers.NewHandler(cfg.Currency, cfg.Log).RegisterRoutes(r)
		scoringhandlers.NewHandler(cfg.Scoring, cfg.Log).RegisterRoutes(r)
		portfoliohandlers.NewHandler(cfg.Portfolio, cfg.Log).RegisterRoutes(r)
		watchlisthandlers.NewHandler(cfg.Watchlist, cfg.Log).RegisterRoutes(r)
		rebalancinghandlers.NewHandler(cfg.Rebalancing, cfg.Log).RegisterRoutes(r)
		historicalhandlers.NewHandler(cfg.Historical, cfg.Rebalancing, cfg.Log).RegisterRoutes(r)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Router exposes the router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. Blocks until the server stops.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
