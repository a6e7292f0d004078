package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/gabrielmilitaosantos/acquisitions/docs"
	"github.com/gabrielmilitaosantos/acquisitions/internal/api/handler"
	"github.com/gabrielmilitaosantos/acquisitions/internal/api/middleware"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Users  ports.UserService
	Auth   ports.AuthService
	Audit  ports.AuditService // nil disables the audit history route
	Health map[string]handler.PingFunc
	Logger zerolog.Logger

	CookieSecure    bool
	SignInRateLimit int // requests per minute per IP; 0 disables
	Production      bool

	// Nil means the prometheus default registry.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.SecureHeaders(deps.Production))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: deps.MetricsRegisterer,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, handler.CookieOptions{Secure: deps.CookieSecure})
	userHandler := handler.NewUserHandler(deps.Users)
	healthHandler := handler.NewHealthHandler(deps.Health, deps.Logger)
	authMiddleware := middleware.Auth(deps.Auth)

	// --- Operational routes (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.MetricsGatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", healthHandler.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/sign-up", authHandler.SignUp)
	if deps.SignInRateLimit > 0 {
		auth.POST("/sign-in", authHandler.SignIn, middleware.RateLimit(deps.SignInRateLimit))
	} else {
		auth.POST("/sign-in", authHandler.SignIn)
	}
	auth.POST("/sign-out", authHandler.SignOut, authMiddleware)

	// --- User routes (auth required) ---
	users := e.Group("/api/users", authMiddleware)
	users.GET("", userHandler.List, middleware.RBAC(domain.RoleAdmin))
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	if deps.Audit != nil {
		users.GET("/:id/audit", handler.NewAuditHandler(deps.Audit).History, middleware.RBAC(domain.RoleAdmin))
	}

	return e
}
