package controller

import (
	"context"

	"github.com/sirupsen/logrus"

	"hackbot/models"
	"hackbot/platform"
	"hackbot/platform/discord"
	"hackbot/teams"
)

type TeamController struct {
	orchestrator *teams.Orchestrator
	gate         *teams.Gate
	logger       *logrus.Entry
}

func NewTeamController(orchestrator *teams.Orchestrator, gate *teams.Gate, logger *logrus.Entry) *TeamController {
	return &TeamController{
		orchestrator: orchestrator,
		gate:         gate,
		logger:       logger,
	}
}

// CreateTeam handles /team.
func (tc *TeamController) CreateTeam(ctx context.Context, inv *platform.Invocation) error {
	req := models.TeamRequest{
		Name:      inv.Options.String(discord.OptionTeamName),
		Requester: inv.Invoker.User,
		Members:   inv.Options.MembersInOrder(discord.MemberOptions...),
	}

	res, err := tc.orchestrator.CreateTeam(ctx, req, inv)
	if err != nil {
		return err
	}

	tc.logger.WithFields(logrus.Fields{
		"team":    req.Name,
		"state":   res.State.String(),
		"outcome": res.Outcome.String(),
	}).Debug("team command finished")
	return nil
}

// JudgingSignup handles /judging-signup. Judging signup is not open yet;
// the command only acknowledges the request.
func (tc *TeamController) JudgingSignup(ctx context.Context, inv *platform.Invocation) error {
	tc.logger.WithFields(logrus.Fields{
		"team":    inv.Options.String(discord.OptionTeamName),
		"devpost": inv.Options.String(discord.OptionDevpost),
		"repo":    inv.Options.String(discord.OptionRepo),
	}).Info("judging signup requested")

	_, err := inv.Respond(ctx, "Judging signup is not open yet. Check the announcements channel for when it opens.")
	return err
}

// EnableTeams handles /enable-teams.
func (tc *TeamController) EnableTeams(ctx context.Context, inv *platform.Invocation) error {
	return tc.setGate(ctx, inv, true)
}

// DisableTeams handles /disable-teams.
func (tc *TeamController) DisableTeams(ctx context.Context, inv *platform.Invocation) error {
	return tc.setGate(ctx, inv, false)
}

func (tc *TeamController) setGate(ctx context.Context, inv *platform.Invocation, open bool) error {
	was := tc.gate.Set(open)

	tc.logger.WithFields(logrus.Fields{
		"operator": inv.Invoker.Username,
		"was":      was,
		"now":      open,
	}).Info("Team creation toggled")

	msg := "Team creation is now disabled."
	if open {
		msg = "Team creation is now enabled."
	}
	_, err := inv.Respond(ctx, msg)
	return err
}
