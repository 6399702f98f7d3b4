package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/hongminglow/homeride-be/internal/auth"
	"github.com/hongminglow/homeride-be/internal/config"
	"github.com/hongminglow/homeride-be/internal/http/handlers"
	"github.com/hongminglow/homeride-be/internal/middleware"
	"github.com/hongminglow/homeride-be/internal/service"
	"github.com/hongminglow/homeride-be/internal/storage"
)

// minSigningKeyLen is the length below which startup warns about a weak HS256 key.
const minSigningKeyLen = 32

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New builds the credential components once, wires middleware and routes, and
// returns a ready server. Missing secret material is an error.
func New(cfg config.Config, store storage.Store, log zerolog.Logger) (*Server, error) {
	secrets, err := auth.NewSecrets(cfg.JWTSecret, cfg.PasswordPepper)
	if err != nil {
		return nil, err
	}
	if secrets.SigningKeyLen() < minSigningKeyLen {
		log.Warn().Int("length", secrets.SigningKeyLen()).Msg("JWT_SECRET is shorter than 32 bytes")
	}
	hasher, err := auth.NewHasher(secrets, cfg.HashConfig())
	if err != nil {
		return nil, fmt.Errorf("init hasher: %w", err)
	}
	tokens, err := auth.NewTokenManager(secrets, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("init token manager: %w", err)
	}
	guard := auth.NewGuard(log)

	accounts := service.NewAccountService(store, hasher, tokens, log)
	drivers := service.NewDriverService(store, guard)
	customers := service.NewCustomerService(store, guard)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	handlers.NewHealthHandler(time.Now()).Register(r)
	handlers.NewAuthHandler(accounts, !cfg.IsDevelopment()).Register(r, middleware.RateLimitByIP(middleware.RateLimitConfig{
		RequestsPerWindow: cfg.AuthRatePerMinute,
		Window:            time.Minute,
		Burst:             cfg.AuthRateBurst,
	}))
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(tokens))
		handlers.NewAccountHandler(accounts).Register(r)
		handlers.NewDriverHandler(drivers).Register(r)
		handlers.NewCustomerHandler(customers).Register(r)
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}, nil
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
