// Package server wires the dependency graph and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/moodart/internal/artgen"
	"github.com/sakif/moodart/internal/auth"
	"github.com/sakif/moodart/internal/config"
	"github.com/sakif/moodart/internal/handler"
	"github.com/sakif/moodart/internal/hosting"
	"github.com/sakif/moodart/internal/middleware"
	sqliteRepo "github.com/sakif/moodart/internal/repository/sqlite"
	"github.com/sakif/moodart/internal/service"
)

// Generation plus upload can take far longer than a normal request.
const writeTimeout = 2 * time.Minute

type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and builds every service. The caller owns the
// returned Server and must call Start or Close.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	authn := auth.NewAuthenticator(tokens, s.logger)

	uploader, err := newUploader(context.Background(), s.config)
	if err != nil {
		return fmt.Errorf("creating uploader: %w", err)
	}

	generator := artgen.New(s.config.ArtGen(), uploader, s.logger)
	if generator.Mocked() {
		s.logger.Warn("image provider or hosting not configured, serving placeholder art",
			slog.Duration("mockDelay", s.config.MockDelay),
		)
	}

	users := s.db.Users()
	authService := service.NewAuthService(users, tokens, auth.NewPasswordService(), s.logger)
	artService := service.NewArtService(s.db.Art(), users, generator, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	artHandler := handler.NewArtHandler(artService, s.logger)

	s.router.Get("/health", handler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.HandleSignup)
			r.Post("/login", authHandler.HandleLogin)
			r.Get("/me", authn.RequireAuth(authHandler.HandleMe))
		})

		r.Route("/art", func(r chi.Router) {
			r.Post("/generate", authn.OptionalAuth(artHandler.HandleGenerate))
			r.Post("/collaborate", authn.RequireAuth(artHandler.HandleCollaborate))
			r.Get("/history", authn.RequireAuth(artHandler.HandleHistory))
			r.Get("/timeline/{mood}", authn.RequireAuth(artHandler.HandleTimeline))
			r.Get("/{id}", artHandler.HandleGetByID)
			r.Post("/{id}/vote", authn.RequireAuth(artHandler.HandleVote))
		})
	})

	return nil
}

// newUploader returns nil when the selected back-end is not configured,
// which puts the generator on its placeholder path.
func newUploader(ctx context.Context, cfg *config.Config) (hosting.Uploader, error) {
	if !cfg.HostingConfigured() {
		return nil, nil
	}

	switch cfg.HostingProvider {
	case config.HostingSupabase:
		return hosting.NewSupabaseUploader(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	default:
		return hosting.NewS3Uploader(ctx, cfg.S3)
	}
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for
// up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("hosting", s.config.HostingProvider),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
