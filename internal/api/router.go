package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/recordhub/records-api/docs"
	"github.com/recordhub/records-api/internal/api/handler"
	"github.com/recordhub/records-api/internal/api/middleware"
	"github.com/recordhub/records-api/internal/core/auth"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Accounts  *handler.AccountHandler
	Admin     *handler.AdminHandler
	Posts     *handler.PostHandler
	Items     *handler.ItemHandler
	Health    *handler.HealthHandler
	Readiness *handler.ReadinessHandler
}

// Options tunes the router per deployment.
type Options struct {
	// AllowOrigins lists the browser origins allowed to send the session cookie.
	AllowOrigins []string
	// Registry receives the HTTP metrics and backs /metrics. Nil uses the
	// default Prometheus registry, where the domain counters also live.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(h Handlers, resolver middleware.PrincipalResolver, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     opts.AllowOrigins,
		AllowCredentials: true,
		AllowHeaders: []string{
			echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept,
			echo.HeaderAuthorization, handler.HeaderIdempotencyKey,
		},
	}))
	e.Use(requestLogger(log))

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if opts.Registry != nil {
		registerer, gatherer = opts.Registry, opts.Registry
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "records",
		Registerer: registerer,
	}))

	// --- Ops (no auth required) ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", h.Health.Liveness)
	e.GET("/health/ready", h.Readiness.Readiness)

	// --- Auth routes ---
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)
	e.POST("/auth/logout", h.Auth.Logout)

	authed := middleware.Auth(resolver)

	// --- Users ---
	users := e.Group("/users", authed)
	users.GET("", h.Accounts.List)
	users.GET("/me", h.Accounts.Me)
	users.DELETE("/me", h.Accounts.DeleteMe)
	users.GET("/me/posts", h.Accounts.MyPosts)
	users.GET("/me/items", h.Accounts.MyItems)
	users.GET("/:id", h.Accounts.Get)
	users.PATCH("/:id", h.Accounts.Update)
	users.GET("/:id/posts", h.Accounts.Posts)

	// --- Posts ---
	posts := e.Group("/posts", authed)
	posts.GET("", h.Posts.List)
	posts.POST("", h.Posts.Create)
	posts.GET("/:id", h.Posts.Get)
	posts.PATCH("/:id", h.Posts.Update)
	posts.DELETE("/:id", h.Posts.Delete)

	// --- Items ---
	items := e.Group("/items", authed)
	items.GET("", h.Items.List)
	items.POST("", h.Items.Create)
	items.GET("/:id", h.Items.Get)
	items.PATCH("/:id", h.Items.Update)
	items.DELETE("/:id", h.Items.Delete)

	// --- Admin ---
	admin := e.Group("/admin", authed, middleware.Require(auth.RequireAdmin))
	admin.GET("/users/deleted", h.Admin.Deleted)
	admin.PATCH("/users/:id/promote", h.Admin.Promote)
	admin.PATCH("/users/:id/demote", h.Admin.Demote)
	admin.DELETE("/users/:id", h.Admin.Delete)

	return e
}

// requestLogger feeds echo's request logging into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			}
			evt.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
