package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// Command names.
const (
	CommandTeam          = "team"
	CommandJudgingSignup = "judging-signup"
	CommandPostInfo      = "post-info"
	CommandPurge         = "purge"
	CommandPing          = "ping"
	CommandEnableTeams   = "enable-teams"
	CommandDisableTeams  = "disable-teams"
)

// Option names shared by the roster-shaped commands.
const (
	OptionTeamName = "team_name"
	OptionTopic    = "topic"
	OptionDevpost  = "devpost_url"
	OptionRepo     = "repo_url"
)

// MemberOptions are the five member slots, the first one mandatory.
var MemberOptions = []string{"member1", "member2", "member3", "member4", "member5"}

func memberOptions() []*discordgo.ApplicationCommandOption {
	opts := make([]*discordgo.ApplicationCommandOption, 0, len(MemberOptions))
	for i, name := range MemberOptions {
		opts = append(opts, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        name,
			Description: "A team member.",
			Required:    i == 0,
		})
	}
	return opts
}

// Commands returns the slash commands the bot registers. topics are the
// choices offered by post-info.
func Commands(topics []string) []*discordgo.ApplicationCommand {
	var operatorOnly int64 = discordgo.PermissionManageMessages

	team := &discordgo.ApplicationCommand{
		Name:        CommandTeam,
		Description: "Create a team.",
		Options: append([]*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        OptionTeamName,
			Description: "The name of your team.",
			Required:    true,
			MaxLength:   100,
		}}, memberOptions()...),
	}

	judging := &discordgo.ApplicationCommand{
		Name:        CommandJudgingSignup,
		Description: "Sign your team up for judging.",
		Options: append(append([]*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        OptionTeamName,
			Description: "The name of your team.",
			Required:    true,
		}}, memberOptions()...),
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptionDevpost,
				Description: "Link to your project submission.",
				Required:    true,
			},
			&discordgo.ApplicationCommandOption{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptionRepo,
				Description: "Link to your source repository.",
				Required:    true,
			},
		),
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(topics))
	for _, t := range topics {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: t, Value: t})
	}

	return []*discordgo.ApplicationCommand{
		team,
		judging,
		{
			Name:                     CommandPostInfo,
			Description:              "Post an informational message in this channel.",
			DefaultMemberPermissions: &operatorOnly,
			Options: []*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        OptionTopic,
				Description: "Which message to post.",
				Required:    true,
				Choices:     choices,
			}},
		},
		{
			Name:                     CommandPurge,
			Description:              "Delete every message in this channel.",
			DefaultMemberPermissions: &operatorOnly,
		},
		{
			Name:        CommandPing,
			Description: "Check that the bot is alive.",
		},
		{
			Name:                     CommandEnableTeams,
			Description:              "Allow team creation.",
			DefaultMemberPermissions: &operatorOnly,
		},
		{
			Name:                     CommandDisableTeams,
			Description:              "Stop team creation.",
			DefaultMemberPermissions: &operatorOnly,
		},
	}
}

// Register overwrites the guild's commands with cmds.
func Register(s *discordgo.Session, guildID string, cmds []*discordgo.ApplicationCommand) error {
	if s.State == nil || s.State.User == nil {
		return errors.New("session is not ready; open it before registering commands")
	}

	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, cmds)
	if err != nil {
		return errors.Wrap(err, "failed to register commands")
	}
	return nil
}
