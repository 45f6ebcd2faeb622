package controller

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"hackbot/models"
	"hackbot/platform"
)

// GrantEmoji is the reaction that grants the participant role.
const GrantEmoji = "✅"

// RoleGuild is what the role reaction needs from the guild.
type RoleGuild interface {
	platform.NamespaceReader
	platform.RoleWriter
}

// RoleReactionController grants a role to anyone who reacts with
// GrantEmoji on one well-known message.
type RoleReactionController struct {
	guild     RoleGuild
	messageID string
	roleName  string
	audit     func(models.AuditEvent)
	logger    *logrus.Entry
}

func NewRoleReactionController(guild RoleGuild, messageID, roleName string, audit func(models.AuditEvent), logger *logrus.Entry) *RoleReactionController {
	return &RoleReactionController{
		guild:     guild,
		messageID: messageID,
		roleName:  roleName,
		audit:     audit,
		logger:    logger,
	}
}

// HandleReaction assigns the role when r is a GrantEmoji reaction on the
// configured message. Anything else is ignored.
func (rc *RoleReactionController) HandleReaction(ctx context.Context, r models.Reaction) error {
	if rc.messageID == "" || r.MessageID != rc.messageID || r.Emoji != GrantEmoji || r.Bot {
		return nil
	}

	ns, err := rc.guild.Namespace(ctx)
	if err != nil {
		return err
	}

	role, ok := ns.RoleByName(rc.roleName)
	if !ok {
		return errors.Errorf("role %q does not exist", rc.roleName)
	}

	if err := rc.guild.AssignRole(ctx, r.UserID, role.ID); err != nil {
		return err
	}

	rc.logger.WithFields(logrus.Fields{
		"user": r.UserID,
		"role": rc.roleName,
	}).Info("Granted role from reaction")

	if rc.audit != nil {
		rc.audit(models.AuditEvent{
			Kind:   models.AuditRoleGranted,
			Actor:  r.UserID,
			Detail: rc.roleName,
			At:     time.Now().UTC(),
		})
	}
	return nil
}
