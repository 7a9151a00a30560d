// Package api provides the privileged HTTP endpoints for the ShelfSense
// application: account management and shelf photo scanning. These routes
// need the service-role key or the vision API key, neither of which may
// ever reach the browser.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Ishan-Karpe/ShelfSense/internal/domain"
	"github.com/Ishan-Karpe/ShelfSense/internal/ratelimit"
	"github.com/Ishan-Karpe/ShelfSense/internal/validation"
)

// AdminService verifies user tokens and performs privileged account
// operations. remote.AdminClient satisfies it.
type AdminService interface {
	VerifyToken(ctx context.Context, accessToken string) (*domain.Identity, error)
	UpdateUserEmail(ctx context.Context, userID, email string) error
	UpdateProfileName(ctx context.Context, userID, name string) error
	DeleteBooksForUser(ctx context.Context, userID string) error
	DeleteProfile(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string) error
}

// ShelfScanner identifies books in a shelf photo. shelfscan.Scanner
// satisfies it.
type ShelfScanner interface {
	Scan(ctx context.Context, base64Image string) ([]domain.ShelfCandidate, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	admin     AdminService
	scanner   ShelfScanner
	validator *validation.Validator
	router    *chi.Mux
	logger    *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(admin AdminService, scanner ShelfScanner, logger *slog.Logger) *Server {
	s := &Server{
		admin:     admin,
		scanner:   scanner,
		validator: validation.New(),
		router:    chi.NewRouter(),
		logger:    logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/account", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Patch("/", s.handleUpdateAccount)
			r.Delete("/", s.handleDeleteAccount)
		})

		// Each scan costs a vision API call; throttle per client.
		scanLimiter := ratelimit.New(10.0/60.0, 3)
		r.With(s.rateLimitByIP(scanLimiter), s.requireAuth).Post("/scan-shelf", s.handleScanShelf)
	})
}
