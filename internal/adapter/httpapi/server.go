// Package httpapi exposes the investment, snapshot, movement and net-worth
// services over HTTP.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mvduarte/patrimonio-backend/internal/usecase/investment"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/movement"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/networth"
	"github.com/mvduarte/patrimonio-backend/internal/usecase/snapshot"
)

// Config holds the server's dependencies
type Config struct {
	Log         zerolog.Logger
	Port        int
	APIToken    string
	DefaultRate decimal.Decimal // fallback LOCAL-per-USD rate for reports
	Investments *investment.Service
	Snapshots   *snapshot.Service
	Movements   *movement.Service
	NetWorth    *networth.Service
}

// Server is the HTTP server
type Server struct {
	router      *chi.Mux
	server      *http.Server
	log         zerolog.Logger
	defaultRate decimal.Decimal
	investments *investment.Service
	snapshots   *snapshot.Service
	movements   *movement.Service
	netWorth    *networth.Service
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:      chi.NewRouter(),
		log:         cfg.Log,
		defaultRate: cfg.DefaultRate,
		investments: cfg.Investments,
		snapshots:   cfg.Snapshots,
		movements:   cfg.Movements,
		netWorth:    cfg.NetWorth,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(RequestLogger(cfg.Log))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuth(cfg.APIToken))

		r.Get("/investments", s.handleListInvestments)
		r.Post("/investments", s.handleCreateInvestment)
		r.Put("/investments/{id}", s.handleUpdateInvestment)
		r.Delete("/investments/{id}", s.handleDeleteInvestment)

		r.Get("/investments/{id}/snapshots", s.handleGetSnapshots)
		r.Put("/investments/{id}/snapshots/{year}/{month}", s.handleUpsertSnapshot)

		r.Get("/movements", s.handleListMovements)
		r.Post("/movements", s.handleCreateMovement)
		r.Put("/movements/{id}", s.handleUpdateMovement)
		r.Delete("/movements/{id}", s.handleDeleteMovement)

		r.Get("/reports/net-worth", s.handleNetWorthReport)
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Router exposes the chi router (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving; blocks until the server stops
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
