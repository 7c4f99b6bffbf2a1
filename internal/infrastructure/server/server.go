package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	httpHandlers "github.com/jobtrack/core/internal/adapters/http"
	"github.com/jobtrack/core/internal/adapters/repository"
	"github.com/jobtrack/core/internal/application/services"
	"github.com/jobtrack/core/internal/domain/entities"
	"github.com/jobtrack/core/internal/infrastructure/config"
	"github.com/jobtrack/core/internal/infrastructure/database"
	"github.com/jobtrack/core/internal/infrastructure/logger"
	"github.com/jobtrack/core/internal/ports"

	_ "github.com/jobtrack/core/docs"
)

// Server represents the HTTP server
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    *logger.Logger
	db        *database.DB
	syncQueue ports.SyncQueue

	reminderService *services.ReminderService
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}

	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	authRepo := repository.NewAuthRepository(db.DB)
	reminderRepo := repository.NewReminderRepository(db.DB)
	appRepo := repository.NewApplicationRepository(db.DB)
	notifLogRepo := repository.NewNotificationLogRepository(db.DB)
	syncQueue := repository.NewSyncQueueRepository(db.DB)

	// Initialize services
	authService := services.NewAuthService(userRepo, authRepo, cfg.JWT, appLogger)
	reminderService := services.NewReminderService(reminderRepo, appRepo, notifLogRepo, syncQueue, appLogger)
	applicationService := services.NewApplicationService(appRepo, reminderService, appLogger)

	// Initialize handlers
	authHandler := httpHandlers.NewAuthHandler(authService, appLogger)
	reminderHandler := httpHandlers.NewReminderHandler(reminderService, appLogger)
	applicationHandler := httpHandlers.NewApplicationHandler(applicationService, reminderService, appLogger)

	server := &Server{
		echo:            e,
		config:          cfg,
		logger:          appLogger,
		db:              db,
		syncQueue:       syncQueue,
		reminderService: reminderService,
	}

	server.setupMiddleware()
	server.setupRoutes(authHandler, reminderHandler, applicationHandler, authService)

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// ReminderService exposes the wired reminder service so the notifier loop can
// share it with the HTTP layer.
func (s *Server) ReminderService() *services.ReminderService {
	return s.reminderService
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(s.config.Security.RateLimitRequests),
				Burst:     s.config.Security.RateLimitRequests,
				ExpiresIn: s.config.Security.RateLimitWindow,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	authHandler *httpHandlers.AuthHandler,
	reminderHandler *httpHandlers.ReminderHandler,
	applicationHandler *httpHandlers.ApplicationHandler,
	authService *services.AuthService,
) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	// Auth routes (public)
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.RefreshToken)
	authGroup.POST("/logout", authHandler.Logout, s.authMiddleware(authService))

	// Application routes (authenticated)
	appGroup := v1.Group("/applications", s.authMiddleware(authService))
	appGroup.GET("", applicationHandler.ListApplications)
	appGroup.POST("", applicationHandler.CreateApplication)
	appGroup.GET("/:id", applicationHandler.GetApplication)
	appGroup.PUT("/:id", applicationHandler.UpdateApplication)
	appGroup.DELETE("/:id", applicationHandler.DeleteApplication)
	appGroup.PUT("/:id/status", applicationHandler.UpdateApplicationStatus)
	appGroup.GET("/:id/history", applicationHandler.GetStatusHistory)
	appGroup.GET("/:id/reminders", applicationHandler.GetApplicationReminders)
	appGroup.POST("/:id/reminders/generate", applicationHandler.GenerateReminders)

	// Reminder routes (authenticated)
	reminderGroup := v1.Group("/reminders", s.authMiddleware(authService))
	reminderGroup.GET("", reminderHandler.ListReminders)
	reminderGroup.POST("", reminderHandler.CreateReminder)
	reminderGroup.GET("/upcoming", reminderHandler.GetUpcomingReminders)
	reminderGroup.GET("/overdue", reminderHandler.GetOverdueReminders)
	reminderGroup.GET("/today", reminderHandler.GetTodayReminders)
	reminderGroup.GET("/:id", reminderHandler.GetReminder)
	reminderGroup.PUT("/:id", reminderHandler.UpdateReminder)
	reminderGroup.DELETE("/:id", reminderHandler.DeleteReminder)
	reminderGroup.DELETE("/:id/permanent", reminderHandler.HardDeleteReminder)
	reminderGroup.POST("/:id/restore", reminderHandler.RestoreReminder)
	reminderGroup.POST("/:id/complete", reminderHandler.CompleteReminder)
	reminderGroup.POST("/:id/reopen", reminderHandler.ReopenReminder)
	reminderGroup.POST("/:id/snooze", reminderHandler.SnoozeReminder)
	reminderGroup.POST("/:id/unsnooze", reminderHandler.UnsnoozeReminder)
	reminderGroup.GET("/:id/notifications", reminderHandler.GetNotificationHistory)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	syncPending := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sync_queue_pending_records",
			Help: "Number of change records waiting to be synchronized",
		},
		func() float64 {
			count, err := s.syncQueue.PendingCount(context.Background())
			if err != nil {
				return -1
			}
			return float64(count)
		},
	)

	registry.MustRegister(requestsTotal, requestDuration, syncPending)

	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	if pending, err := s.syncQueue.PendingCount(c.Request().Context()); err != nil {
		checks["sync_queue"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["sync_queue"] = map[string]interface{}{
			"status":  "ok",
			"pending": pending,
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler maps domain errors to HTTP responses
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var validationErr *entities.ValidationError
		var bindingErrs validator.ValidationErrors
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &validationErr):
			code = http.StatusUnprocessableEntity
			msg = map[string]interface{}{
				"message": "validation failed",
				"details": map[string]interface{}{"errors": validationErr.Messages},
			}
		case errors.As(err, &bindingErrs):
			code = http.StatusBadRequest
			msg = map[string]interface{}{
				"message": "validation failed",
				"details": map[string]interface{}{"errors": bindingErrs.Error()},
			}
		case errors.Is(err, entities.ErrReminderNotFound),
			errors.Is(err, entities.ErrApplicationNotFound),
			errors.Is(err, entities.ErrUserNotFound):
			code = http.StatusNotFound
			msg = map[string]string{"message": err.Error()}
		case errors.Is(err, entities.ErrInvalidCredentials):
			code = http.StatusUnauthorized
			msg = map[string]string{"message": err.Error()}
		case errors.Is(err, entities.ErrAccountInactive):
			code = http.StatusForbidden
			msg = map[string]string{"message": err.Error()}
		case errors.As(err, &httpErr):
			code = httpErr.Code
			msg = httpErr.Message
			if httpErr.Internal != nil {
				err = fmt.Errorf("%v, %v", err, httpErr.Internal)
			}
		default:
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
