package teams

import (
	"context"

	"github.com/sirupsen/logrus"

	"hackbot/models"
	"hackbot/platform"
)

// TeamRoleColor is the accent colour of team roles (#adadad).
const TeamRoleColor = 0xADADAD

// DefaultStaffRoles can see every team category.
var DefaultStaffRoles = []string{"organizer", "mentor", "volunteer", "sponsor", "judge"}

// Provisioning step names, as reported in ProvisionError.Step.
const (
	StepCreateCategory = "create category"
	StepCreateRole     = "create role"
	StepHideCategory   = "hide category from everyone"
	StepGrantTeam      = "grant team role view"
	StepGrantStaff     = "grant staff role view"
	StepCreateText     = "create text channel"
	StepCreateVoice    = "create voice channel"
	StepAssignRole     = "assign team role"
	StepWelcome        = "post welcome message"
)

// ProvisionTarget is the part of the guild a Provisioner writes to.
type ProvisionTarget interface {
	platform.NamespaceReader
	platform.GroupingWriter
	platform.RoleWriter
	platform.ChannelWriter
	platform.Messenger
}

// Provisioner creates a team's category, role, channels and role
// assignments in a fixed order. It never retries and never rolls back.
type Provisioner struct {
	Guild      ProvisionTarget
	StaffRoles []string
	RoleColor  int
	Log        *logrus.Entry
}

// NewProvisioner returns a Provisioner with the default staff roles.
func NewProvisioner(g ProvisionTarget, log *logrus.Entry) *Provisioner {
	return &Provisioner{
		Guild:      g,
		StaffRoles: DefaultStaffRoles,
		RoleColor:  TeamRoleColor,
		Log:        log,
	}
}

// Provision runs every step for the team. The first failing step stops the
// sequence and is returned as a *ProvisionError holding what was created.
func (p *Provisioner) Provision(ctx context.Context, name string, members []models.Member) (*models.TeamResources, error) {
	res := &models.TeamResources{}
	fail := func(step string, err error) (*models.TeamResources, error) {
		return nil, &ProvisionError{Step: step, Partial: *res, Err: err}
	}

	var err error

	if res.Category, err = p.Guild.CreateCategory(ctx, name); err != nil {
		return fail(StepCreateCategory, err)
	}

	if res.Role, err = p.Guild.CreateRole(ctx, models.Role{Name: name, Color: p.RoleColor, Mentionable: true}); err != nil {
		return fail(StepCreateRole, err)
	}

	if err = p.Guild.HideFromEveryone(ctx, res.Category.ID); err != nil {
		return fail(StepHideCategory, err)
	}

	if err = p.Guild.GrantView(ctx, res.Category.ID, res.Role.ID); err != nil {
		return fail(StepGrantTeam, err)
	}

	ns, err := p.Guild.Namespace(ctx)
	if err != nil {
		return fail(StepGrantStaff, err)
	}
	for _, staff := range p.StaffRoles {
		role, ok := ns.RoleByName(staff)
		if !ok {
			continue // optional
		}
		if err = p.Guild.GrantView(ctx, res.Category.ID, role.ID); err != nil {
			return fail(StepGrantStaff, err)
		}
	}

	if res.Text, err = p.Guild.CreateTextChannel(ctx, name, res.Category.ID); err != nil {
		return fail(StepCreateText, err)
	}

	if res.Voice, err = p.Guild.CreateVoiceChannel(ctx, name, res.Category.ID); err != nil {
		return fail(StepCreateVoice, err)
	}

	for _, m := range members {
		if err = p.Guild.AssignRole(ctx, m.ID, res.Role.ID); err != nil {
			return fail(StepAssignRole, err)
		}
		res.Members = append(res.Members, m)
	}

	welcome := "Hey " + models.Mentions(members) + "! Here is your team category & channels."
	if _, err = p.Guild.Send(ctx, res.Text.ID, welcome); err != nil {
		return fail(StepWelcome, err)
	}

	if p.Log != nil {
		p.Log.WithFields(logrus.Fields{
			"team":    name,
			"members": models.Usernames(members),
			"role_id": res.Role.ID,
		}).Info("Team created")
	}

	return res, nil
}
