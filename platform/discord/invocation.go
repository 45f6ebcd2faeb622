package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"hackbot/models"
	"hackbot/platform"
)

// NewInvocation turns an application-command interaction into an
// Invocation. User options are resolved to guild members with their roles.
func (g *Guild) NewInvocation(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) (*platform.Invocation, error) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil, errors.Errorf("unsupported interaction type %s", i.Type)
	}
	if i.Member == nil {
		return nil, errors.New("command was not invoked inside a guild")
	}

	roles, err := g.roleIndex(ctx)
	if err != nil {
		return nil, err
	}

	data := i.ApplicationCommandData()
	inv := &platform.Invocation{
		Command:   data.Name,
		ChannelID: i.ChannelID,
		Invoker:   g.toMember(i.Member, i.Member.User, roles),
		Options: platform.Options{
			Strings: make(map[string]string),
			Members: make(map[string]*models.Member),
		},
		Responder: &interactionResponder{s: s, i: i.Interaction},
	}

	inv.ChannelName, err = g.channelName(ctx, s, i.ChannelID)
	if err != nil {
		return nil, err
	}

	for _, opt := range data.Options {
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			inv.Options.Strings[opt.Name] = opt.StringValue()

		case discordgo.ApplicationCommandOptionUser:
			userID, _ := opt.Value.(string)
			m, err := g.resolveMember(ctx, data.Resolved, userID, roles)
			if err != nil {
				return nil, err
			}
			inv.Options.Members[opt.Name] = m
		}
	}

	return inv, nil
}

func (g *Guild) channelName(ctx context.Context, s *discordgo.Session, channelID string) (string, error) {
	if c, err := s.State.Channel(channelID); err == nil {
		return c.Name, nil
	}

	c, err := s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", errors.Wrapf(err, "failed to look up channel %s", channelID)
	}
	return c.Name, nil
}

func (g *Guild) resolveMember(ctx context.Context, res *discordgo.ApplicationCommandInteractionDataResolved, userID string, roles map[string]models.Role) (*models.Member, error) {
	if res != nil {
		m, hasMember := res.Members[userID]
		u, hasUser := res.Users[userID]
		if hasMember && hasUser {
			out := g.toMember(m, u, roles)
			return &out, nil
		}
	}

	out, err := g.Member(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// interactionResponder answers with the interaction response first and
// with follow-up messages afterwards.
type interactionResponder struct {
	s *discordgo.Session
	i *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

func (r *interactionResponder) Respond(ctx context.Context, content string) (models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.responded {
		m, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{Content: content}, discordgo.WithContext(ctx))
		if err != nil {
			return models.Message{}, errors.Wrap(err, "failed to send follow-up")
		}
		return toMessage(m), nil
	}

	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return models.Message{}, errors.Wrap(err, "failed to respond to interaction")
	}
	r.responded = true

	m, err := r.s.InteractionResponse(r.i, discordgo.WithContext(ctx))
	if err != nil {
		return models.Message{}, errors.Wrap(err, "failed to fetch interaction response")
	}
	return toMessage(m), nil
}
