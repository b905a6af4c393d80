package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/doomzday403/admin-console/docs"
	"github.com/doomzday403/admin-console/internal/api/handler"
	"github.com/doomzday403/admin-console/internal/api/middleware"
	"github.com/doomzday403/admin-console/internal/core/domain"
	"github.com/doomzday403/admin-console/internal/core/service"
	"github.com/doomzday403/admin-console/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Sessions  *service.Registry
	Tokens    *service.TokenIssuer
	JWTSecret string
	// Checkers back the readiness probe.
	Checkers []handlers.Checker
	// Metrics receives the HTTP metrics. Nil means the default registry.
	Metrics *prometheus.Registry
	Log     zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "admin_console",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Sessions, d.Tokens)
	meHandler := handler.NewMeHandler()
	dashboardHandler := handler.NewDashboardHandler()
	staffHandler := handler.NewStaffHandler()
	messageHandler := handler.NewMessageHandler()
	healthHandler := handlers.NewHealthHandler(d.Checkers...)

	secured := []echo.MiddlewareFunc{
		middleware.Auth(d.JWTSecret),
		middleware.Workspace(d.Sessions),
	}
	managers := append(secured[:len(secured):len(secured)],
		middleware.RBAC(domain.RoleOwner, domain.RoleManager))

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)
	e.POST("/auth/logout", authHandler.Logout, secured...)

	// --- Session ---
	e.GET("/me", meHandler.Get, secured...)
	e.PATCH("/me", meHandler.Update, secured...)
	e.GET("/dashboard", dashboardHandler.Get, secured...)

	// --- Directory ---
	e.GET("/staff", staffHandler.List, secured...)
	e.POST("/staff", staffHandler.Create, managers...)
	e.GET("/staff/:id", staffHandler.Get, secured...)
	e.PATCH("/staff/:id", staffHandler.Update, managers...)
	e.DELETE("/staff/:id", staffHandler.Delete, managers...)
	e.PUT("/staff/:id/role", staffHandler.ChangeRole, managers...)
	e.GET("/staff/:id/contact", staffHandler.Contact, secured...)
	e.GET("/contacts", staffHandler.Contacts, secured...)
	e.GET("/activity", staffHandler.Activity, secured...)

	// --- Conversations ---
	e.GET("/messages", messageHandler.List, secured...)
	e.POST("/messages", messageHandler.Send, secured...)
	e.POST("/messages/:id/read", messageHandler.MarkRead, secured...)
	e.DELETE("/messages/:id", messageHandler.Delete, secured...)
	e.GET("/conversations", messageHandler.Conversations, secured...)
	e.GET("/conversations/:userId", messageHandler.OpenThread, secured...)
	e.GET("/notifications", messageHandler.Notifications, secured...)
	e.POST("/notifications/read-all", messageHandler.ReadAllNotifications, secured...)
	e.POST("/notifications/:id/read", messageHandler.MarkNotificationRead, secured...)

	// --- Probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
