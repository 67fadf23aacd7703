package main

import (
	"context"
	"crypto/subtle"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/cpfauth/pkg/config"
	"github.com/Abraxas-365/cpfauth/pkg/cpfauth/cpfauthapi"
	"github.com/Abraxas-365/cpfauth/pkg/errx"
	"github.com/Abraxas-365/cpfauth/pkg/logx"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// 1. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logx.WithError(err).Fatal("Invalid configuration")
	}

	logx.Infof("🚀 Starting %s...", cfg.Server.AppName)

	// 2. Initialize Dependency Container
	container := NewContainer(cfg)
	defer container.Cleanup()

	// 3. Create Fiber App
	app := newApp(container)

	// 4. Start Server with Graceful Shutdown
	startServer(app, cfg.Server)
}

// newApp builds the fiber app with middleware and routes.
func newApp(container *Container) *fiber.App {
	cfg := container.Config

	app := fiber.New(fiber.Config{
		AppName:               cfg.Server.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          globalErrorHandler,
		BodyLimit:             cfg.Server.BodyLimit,
	})

	// Global Middleware
	app.Use(recover.New())

	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	// Preflights are answered here, before logging and routing.
	app.Use(cpfauthapi.CORS())

	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${respHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	// Health, info & metrics
	app.Get("/health", healthCheckHandler(container))
	app.Get("/info", infoHandler(cfg))
	if cfg.Metrics.Enabled {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}
	if container.PartialFailures != nil {
		if cfg.Security.OpsToken == "" {
			logx.Warn("⚠️  OPS_TOKEN not set; /ops endpoints are disabled")
		} else {
			ops := app.Group("/ops", opsAuth(cfg.Security.OpsToken))
			ops.Get("/partial-failures", partialFailuresHandler(container))
		}
	}

	// CPF authentication: POST / and POST /auth/cpf
	container.AuthHandlers.RegisterRoutes(app)
	logx.Info("✓ CPF auth routes registered")

	app.Use(notFoundHandler)

	return app
}

// ============================================================================
// Handler Functions
// ============================================================================

// healthCheckHandler returns a health check handler
func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":            "healthy",
			"service":           "cpfauth",
			"version":           container.Config.Server.Version,
			"identity_provider": container.Config.Identity.Provider,
		}

		if container.Redis != nil {
			if err := container.Redis.Ping(c.UserContext()).Err(); err != nil {
				health["ledger"] = "unhealthy"
				health["ledger_error"] = err.Error()
				health["status"] = "degraded"
			} else {
				health["ledger"] = "healthy"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

// infoHandler returns basic API information
func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":     cfg.Server.AppName,
			"version":     cfg.Server.Version,
			"description": "CPF login with automatic account provisioning",
			"endpoints": fiber.Map{
				"authenticate": "POST / | POST /auth/cpf",
				"health":       "GET /health",
				"metrics":      "GET " + cfg.Metrics.Path,
				"ops":          "GET /ops/partial-failures",
			},
		})
	}
}

// partialFailuresHandler lists accounts left with a temporary credential,
// newest first. ?limit= caps the result (default 100).
func partialFailuresHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		records, err := container.PartialFailures.List(c.UserContext(), int64(c.QueryInt("limit", 100)))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"count":   len(records),
			"records": records,
		})
	}
}

// opsAuth requires "Authorization: Bearer <token>" on operator endpoints.
func opsAuth(token string) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:" + fiber.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		ErrorHandler: func(c *fiber.Ctx, _ error) error {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			e := errx.Unauthorized("Operator token required")
			return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
		},
	})
}

// notFoundHandler handles 404 errors
func notFoundHandler(c *fiber.Ctx) error {
	e := errx.NotFound("Route not found").WithCause(c.Method()+" "+c.Path(), "NOT_FOUND")
	return c.Status(fiber.StatusNotFound).JSON(e.ToHTTPResponse())
}

// ============================================================================
// Error Handler
// ============================================================================

// globalErrorHandler converts errors that escape handlers to the standard body
func globalErrorHandler(c *fiber.Ctx, err error) error {
	logx.WithFields(logx.Fields{
		"path":       c.Path(),
		"method":     c.Method(),
		"ip":         c.IP(),
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
	}).WithError(err).Error("Request error")

	if e, ok := err.(*fiber.Error); ok {
		return c.Status(e.Code).JSON(errx.HTTPErrorResponse{Message: e.Message})
	}

	var e *errx.Error
	if errx.As(err, &e) {
		return c.Status(e.HTTPStatus).JSON(e.ToHTTPResponse())
	}

	return c.Status(fiber.StatusInternalServerError).JSON(errx.Internal("Internal Server Error").ToHTTPResponse())
}

// ============================================================================
// Server lifecycle
// ============================================================================

// startServer starts the server with graceful shutdown
func startServer(app *fiber.App, cfg config.ServerConfig) {
	go func() {
		logx.Infof("🚀 Server listening on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logx.Info("🛑 Shutting down gracefully...")
	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}
	logx.Info("✅ Server exited successfully")
}
