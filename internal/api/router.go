package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/stashly/stash-api/docs"
	"github.com/stashly/stash-api/internal/api/handler"
	"github.com/stashly/stash-api/internal/api/middleware"
	"github.com/stashly/stash-api/internal/core/ports"
	"github.com/stashly/stash-api/internal/infrastructure/http/handlers"
)

const defaultBodyLimit = "1M"

// Deps holds everything the HTTP layer needs.
type Deps struct {
	Logger       zerolog.Logger
	AuthService  ports.AuthService
	ItemService  ports.ItemService
	TokenService ports.TokenService

	Version      string
	HealthChecks map[string]handlers.Check

	CORSAllowOrigins []string
	RequestTimeout   time.Duration

	// MetricsRegisterer enables request metrics and GET /metrics when set.
	MetricsRegisterer prometheus.Registerer
	MetricsGatherer   prometheus.Gatherer
	EnableSwagger     bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Pre(echomiddleware.RemoveTrailingSlash())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  corsOrigins(d.CORSAllowOrigins),
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderContentType, echo.HeaderAuthorization, handler.HeaderIdempotencyKey},
		ExposeHeaders: []string{echo.HeaderXRequestID, handler.HeaderIdempotentReplayed},
	}))
	e.Use(echomiddleware.BodyLimit(defaultBodyLimit))
	if d.RequestTimeout > 0 {
		e.Use(echomiddleware.ContextTimeout(d.RequestTimeout))
	}

	if d.MetricsRegisterer != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "http",
			Registerer: d.MetricsRegisterer,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Path(), "/health") || c.Path() == "/metrics"
			},
		}))
		gatherer := d.MetricsGatherer
		if gatherer == nil {
			gatherer = prometheus.DefaultGatherer
		}
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.AuthService)
	itemHandler := handler.NewItemHandler(d.ItemService)
	requireAccess := middleware.Auth(d.TokenService)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me, requireAccess)

	// --- Item routes (access token required) ---
	items := e.Group("/items", requireAccess)
	items.POST("", itemHandler.CreateItem)
	items.GET("", itemHandler.ListItems)
	items.GET("/:id", itemHandler.GetItem)
	items.PUT("/:id", itemHandler.UpdateItem)
	items.DELETE("/:id", itemHandler.DeleteItem)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler(d.Version)
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	if d.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
