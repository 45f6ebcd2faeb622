package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/pkg/errors"

	"hackbot/audit"
	controller "hackbot/controllers"
	"hackbot/middleware"
	"hackbot/utils"
)

// NewApp returns the fiber app for the ops server. Errors are answered as
// JSON in the utils.ErrorResponse shape.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		return utils.ErrorResponse(c, code, fe.Message, nil)
	}

	utils.LogError("http_request_failed", err, map[string]interface{}{
		"path":   c.Path(),
		"method": c.Method(),
	})
	return utils.ErrorResponse(c, code, "Internal server error", nil)
}

// SetupHTTP mounts the ops endpoints: status, health and the audit feed.
func SetupHTTP(app *fiber.App, status *controller.StatusController, feed *audit.Feed, limit fiber.Handler) {
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	if limit != nil {
		app.Use(limit)
	}

	app.Get("/", status.GetStatus)
	app.Get("/healthz", status.GetHealth)

	api := app.Group("/api/v1")
	api.Get("/audit/recent", status.GetRecentAudit)

	// WebSocket route for live audit events
	api.Get("/audit", requireUpgrade, websocket.New(controller.HandleAuditWS(feed)))
}

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// DefaultLimiter builds the in-memory rate limiter used when Redis is off.
func DefaultLimiter(max int) fiber.Handler {
	if max <= 0 {
		return nil
	}
	return middleware.RateLimiter(max, nil)
}
