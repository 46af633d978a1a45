// Package fakebackend is an in-process stand-in for the marketplace backend.
// It issues HS256 tokens per role, enforces them on its routes, and answers
// with the same {"message": ...} error envelope the real backend uses. The
// CLI serves it as a sandbox and the test suites run against it.
package fakebackend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rentora/access-layer/internal/core/domain"
)

// BasePath is the prefix every route is mounted under.
const BasePath = "/api"

const (
	defaultSecret   = "sandbox-secret"
	defaultTokenTTL = time.Hour
)

// Account is a user the backend accepts at its login endpoints.
type Account struct {
	Email    string
	Password string
	Role     domain.Role
}

type Config struct {
	Secret   string
	TokenTTL time.Duration
	Accounts []Account
	// Export is the body served by the product export route.
	Export []byte
}

// DefaultAccounts are used when Config.Accounts is empty.
var DefaultAccounts = []Account{
	{Email: "staff@example.com", Password: "staff-pass", Role: domain.RoleStaff},
	{Email: "user@example.com", Password: "user-pass", Role: domain.RoleEndUser},
}

type account struct {
	email string
	hash  []byte
	role  domain.Role
}

type Server struct {
	e        *echo.Echo
	secret   []byte
	ttl      time.Duration
	accounts map[string]account
	export   []byte
	log      zerolog.Logger
	registry *prometheus.Registry

	mu     sync.Mutex
	orders map[string]Order
	order  []string
}

func New(cfg Config, log zerolog.Logger) (*Server, error) {
	if cfg.Secret == "" {
		cfg.Secret = defaultSecret
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if len(cfg.Accounts) == 0 {
		cfg.Accounts = DefaultAccounts
	}
	if cfg.Export == nil {
		cfg.Export = []byte("sku,name,price\nA-1,lamp,19.90\n")
	}

	s := &Server{
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TokenTTL,
		accounts: make(map[string]account, len(cfg.Accounts)),
		export:   cfg.Export,
		log:      log,
		registry: prometheus.NewRegistry(),
		orders:   make(map[string]Order),
	}
	for _, a := range cfg.Accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.Email, err)
		}
		s.accounts[a.Email] = account{email: a.Email, hash: hash, role: a.Role}
	}

	e, err := s.routes()
	if err != nil {
		return nil, err
	}
	s.e = e
	return s, nil
}

func (s *Server) routes() (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = newErrorHandler(s.log)

	e.Use(echomiddleware.Recover())

	// Registry is per server.
	requestMetrics, err := echoprometheus.MiddlewareConfig{
		Namespace:  "sandbox",
		Registerer: s.registry,
	}.ToMiddleware()
	if err != nil {
		return nil, fmt.Errorf("sandbox metrics: %w", err)
	}
	e.Use(requestMetrics)
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			s.log.Debug().Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Msg("request")
			return nil
		},
	}))

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: s.registry}))

	api := e.Group(BasePath)

	// --- Login endpoints (no auth required) ---
	api.POST("/admin/auth/login", s.login(domain.RoleStaff))
	api.POST("/auth/login", s.login(domain.RoleEndUser))

	// --- Public ---
	api.GET("/seo", s.metadata)

	authed := api.Group("", s.auth)

	// --- Both roles ---
	authed.GET("/orders", s.listOrders)
	authed.POST("/orders", s.createOrder)
	authed.PUT("/orders/:id", s.replaceOrder)
	authed.DELETE("/orders/:id", s.deleteOrder)

	// --- Staff only ---
	staff := authed.Group("", requireRole(domain.RoleStaff))
	staff.GET("/reports", s.reports)
	staff.GET("/export-product", s.exportProduct)
	staff.POST("/uploads", s.upload)

	return e, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}

// errorResponse is the error envelope for every failing route.
type errorResponse struct {
	Message string `json:"message"`
}

func newErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)})
			return
		}

		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}
