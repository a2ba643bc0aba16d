// Package server exposes the journal over a JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"tradejournal/internal/config"
	"tradejournal/internal/store"
)

// Server serves the trading journal API.
type Server struct {
	store    store.DataStore
	defaults config.JournalConfig
	logger   zerolog.Logger
	httpSrv  *http.Server
}

// New creates a Server listening on the configured address.
func New(cfg config.ServerConfig, defaults config.JournalConfig, st store.DataStore, logger zerolog.Logger) *Server {
	s := &Server{
		store:    st,
		defaults: defaults,
		logger:   logger,
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(s.Router())

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Router builds the API route table. Exposed separately so tests can drive
// handlers without a listening socket.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/plans", s.handleListPlans).Methods("GET")
	api.HandleFunc("/plans", s.handleCreatePlan).Methods("POST")
	api.HandleFunc("/plans/{id}", s.handleGetPlan).Methods("GET")
	api.HandleFunc("/plans/{id}", s.handleUpdatePlan).Methods("PUT")
	api.HandleFunc("/plans/{id}", s.handleDeletePlan).Methods("DELETE")

	api.HandleFunc("/trades", s.handleListTrades).Methods("GET")
	api.HandleFunc("/trades", s.handleCreateTrade).Methods("POST")
	api.HandleFunc("/trades/{id}", s.handleGetTrade).Methods("GET")
	api.HandleFunc("/trades/{id}", s.handleUpdateTrade).Methods("PUT")
	api.HandleFunc("/trades/{id}", s.handleDeleteTrade).Methods("DELETE")
	api.HandleFunc("/trades/{id}/open", s.handleOpenTrade).Methods("POST")
	api.HandleFunc("/trades/{id}/close", s.handleCloseTrade).Methods("POST")
	api.HandleFunc("/trades/{id}/cancel", s.handleCancelTrade).Methods("POST")

	api.HandleFunc("/capital-additions", s.handleListCapital).Methods("GET")
	api.HandleFunc("/capital-additions", s.handleCreateCapital).Methods("POST")
	api.HandleFunc("/capital-additions/{id}", s.handleDeleteCapital).Methods("DELETE")

	api.HandleFunc("/stats", s.handleStats).Methods("GET")
	api.HandleFunc("/equity", s.handleEquity).Methods("GET")

	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	return r
}

// Start begins serving and blocks until the listener stops.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("journal API listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
