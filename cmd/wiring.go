package cmd

import (
	"context"

	"hackbot/audit"
	"hackbot/config"
	controller "hackbot/controllers"
	"hackbot/models"
	"hackbot/platform"
	"hackbot/routes"
	"hackbot/teams"
	"hackbot/utils"
	"hackbot/worker"
)

// auditKeep is how many events the feed replays to new subscribers.
const auditKeep = 100

// bot holds everything that handles commands and reactions for one guild,
// independent of how the guild is reached.
type bot struct {
	gate         *teams.Gate
	feed         *audit.Feed
	orchestrator *teams.Orchestrator
	purger       *worker.PurgeWorker
	router       *routes.Router
	roleReaction *controller.RoleReactionController
}

func newBot(cfg config.Config, g platform.Guild, reserver teams.Reserver) *bot {
	feed := audit.NewFeed(auditKeep)
	gate := teams.NewGate(cfg.TeamCreationEnabled)

	orch := teams.NewOrchestrator(g, gate, utils.Component("teams"))
	orch.Handshake.Timeout = cfg.ConfirmTimeout
	orch.Provisioner.StaffRoles = cfg.StaffRoles
	orch.CreateChannel = cfg.TeamCreateChannel
	orch.ParticipantRole = cfg.ParticipantRole
	orch.Audit = feed
	if reserver != nil {
		orch.Reserver = reserver
	}

	purger := worker.NewPurgeWorker(g, utils.Component("purge"), 8)
	purger.Audit = feed.Record

	router := routes.NewRouter()
	routes.SetupCommands(router,
		controller.NewTeamController(orch, gate, utils.Component("team")),
		controller.NewAdminController(g, purger, controller.InfoMessages, utils.Component("admin")),
		cfg.OperatorRole,
		utils.Component("commands"),
	)

	return &bot{
		gate:         gate,
		feed:         feed,
		orchestrator: orch,
		purger:       purger,
		router:       router,
		roleReaction: controller.NewRoleReactionController(g, cfg.RoleReactionMessageID, cfg.ParticipantRole, feed.Record, utils.Component("roles")),
	}
}

// dispatch runs a command through the router. Handler failures are
// reported by the router middleware; only routing errors reach here.
func (b *bot) dispatch(ctx context.Context, inv *platform.Invocation) {
	if err := b.router.Dispatch(ctx, inv); err != nil {
		utils.LogError("dispatch_failed", err, map[string]interface{}{
			"command": inv.Command,
		})
	}
}

func (b *bot) reaction(ctx context.Context, r models.Reaction) {
	if err := b.roleReaction.HandleReaction(ctx, r); err != nil {
		utils.LogError("role_reaction_failed", err, map[string]interface{}{
			"user_id":    r.UserID,
			"message_id": r.MessageID,
		})
	}
}
