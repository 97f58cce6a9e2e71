// Package server provides the HTTP API for bookhound: booking queries,
// scrape control and live progress streaming.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/athoward/bookhound/internal/database"
	"github.com/athoward/bookhound/internal/modules/bookings"
	bookingshandlers "github.com/athoward/bookhound/internal/modules/bookings/handlers"
	"github.com/athoward/bookhound/internal/scheduler"
	"github.com/athoward/bookhound/internal/session"
)

// ScrapeTrigger starts a scrape run on demand. Implementations return
// scheduler.ErrAlreadyRunning while a run is in flight.
type ScrapeTrigger interface {
	TriggerScrape() error
}

// Config holds server configuration.
type Config struct {
	Log     zerolog.Logger
	DB      *database.DB
	Repo    *bookings.Repository
	Events  *session.Broadcaster
	Trigger ScrapeTrigger
	Port    int
	DevMode bool
}

// Server is the HTTP server.
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	db      *database.DB
	repo    *bookings.Repository
	events  *session.Broadcaster
	trigger ScrapeTrigger
}

// New creates the server and wires its routes.
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		db:      cfg.DB,
		repo:    cfg.Repo,
		events:  cfg.Events,
		trigger: cfg.Trigger,
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // streaming endpoints manage their own deadlines
		IdleTimeout:  120 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes(cfg Config) {
	bookingsHandler := bookingshandlers.NewHandler(cfg.Repo, cfg.Log)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/scrape", s.handleTriggerScrape)
		r.Get("/progress", s.handleProgress)
		bookingsHandler.RegisterRoutes(r)
	})
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving. Blocks until shutdown or listen failure.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) handleTriggerScrape(w http.ResponseWriter, r *http.Request) {
	if s.trigger == nil {
		respondJSON(s.log, w, http.StatusServiceUnavailable, map[string]string{"error": "scraping is not configured"})
		return
	}
	if err := s.trigger.TriggerScrape(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			status = http.StatusConflict
		}
		respondJSON(s.log, w, status, map[string]string{"error": err.Error()})
		return
	}
	respondJSON(s.log, w, http.StatusAccepted, map[string]string{"status": "scrape started"})
}
