package controller

import (
	"github.com/gofiber/fiber/v2"

	"hackbot/audit"
	"hackbot/platform/discord"
	"hackbot/teams"
)

// Version is reported by the status endpoint.
const Version = "1.0.0"

type StatusController struct {
	gateway func() discord.Status
	gate    *teams.Gate
	feed    *audit.Feed
}

func NewStatusController(gateway func() discord.Status, gate *teams.Gate, feed *audit.Feed) *StatusController {
	return &StatusController{gateway: gateway, gate: gate, feed: feed}
}

// GetStatus reports the service version and whether team creation is open.
func (sc *StatusController) GetStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "running",
		"version":       Version,
		"teams_enabled": sc.gate.Open(),
	})
}

// GetHealth answers 200 while the gateway session is ready and 503 otherwise.
func (sc *StatusController) GetHealth(c *fiber.Ctx) error {
	st := sc.gateway()
	if !st.Connected {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "disconnected",
			"gateway": st,
		})
	}
	return c.JSON(fiber.Map{
		"status":  "ok",
		"gateway": st,
	})
}

// GetRecentAudit returns the remembered audit events.
func (sc *StatusController) GetRecentAudit(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"events": sc.feed.Recent(),
	})
}
