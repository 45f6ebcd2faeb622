// Package discord implements the platform capabilities on top of a
// discordgo gateway session bound to one guild.
package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"

	"hackbot/models"
	"hackbot/platform"
)

// Guild is a platform.Guild backed by the Discord REST API. Reaction
// subscriptions are served from the events the session receives, so
// OnReactionAdd must be registered as a session handler.
type Guild struct {
	s   *discordgo.Session
	id  string
	hub *platform.ReactionHub
}

// NewGuild binds s to the guild with the given ID.
func NewGuild(s *discordgo.Session, guildID string) *Guild {
	return &Guild{s: s, id: guildID, hub: platform.NewReactionHub()}
}

// ID returns the guild ID.
func (g *Guild) ID() string { return g.id }

// Subscribe implements platform.ReactionWaiter.
func (g *Guild) Subscribe(messageID string, match func(models.Reaction) bool) *platform.Subscription {
	return g.hub.Subscribe(messageID, match)
}

// Namespace implements platform.NamespaceReader.
func (g *Guild) Namespace(ctx context.Context) (models.Namespace, error) {
	channels, err := g.s.GuildChannels(g.id, discordgo.WithContext(ctx))
	if err != nil {
		return models.Namespace{}, errors.Wrap(err, "failed to list guild channels")
	}

	roles, err := g.s.GuildRoles(g.id, discordgo.WithContext(ctx))
	if err != nil {
		return models.Namespace{}, errors.Wrap(err, "failed to list guild roles")
	}

	ns := models.Namespace{
		Channels: make([]models.Channel, 0, len(channels)),
		Roles:    make([]models.Role, 0, len(roles)),
	}
	for _, c := range channels {
		ns.Channels = append(ns.Channels, toChannel(c))
	}
	for _, r := range roles {
		ns.Roles = append(ns.Roles, toRole(r))
	}
	return ns, nil
}

// Member implements platform.NamespaceReader.
func (g *Guild) Member(ctx context.Context, userID string) (models.Member, error) {
	m, err := g.s.GuildMember(g.id, userID, discordgo.WithContext(ctx))
	if err != nil {
		return models.Member{}, errors.Wrapf(err, "failed to fetch member %s", userID)
	}

	roles, err := g.roleIndex(ctx)
	if err != nil {
		return models.Member{}, err
	}
	return g.toMember(m, m.User, roles), nil
}

// CreateCategory implements platform.GroupingWriter.
func (g *Guild) CreateCategory(ctx context.Context, name string) (models.Channel, error) {
	c, err := g.s.GuildChannelCreateComplex(g.id, discordgo.GuildChannelCreateData{
		Name: name,
		Type: discordgo.ChannelTypeGuildCategory,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return models.Channel{}, errors.Wrapf(err, "failed to create category %q", name)
	}
	return toChannel(c), nil
}

// HideFromEveryone implements platform.GroupingWriter. The @everyone role
// shares its ID with the guild.
func (g *Guild) HideFromEveryone(ctx context.Context, categoryID string) error {
	err := g.s.ChannelPermissionSet(categoryID, g.id, discordgo.PermissionOverwriteTypeRole,
		0, discordgo.PermissionViewChannel, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "failed to hide category %s", categoryID)
}

// GrantView implements platform.GroupingWriter.
func (g *Guild) GrantView(ctx context.Context, categoryID, roleID string) error {
	err := g.s.ChannelPermissionSet(categoryID, roleID, discordgo.PermissionOverwriteTypeRole,
		discordgo.PermissionViewChannel, 0, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "failed to grant role %s view of %s", roleID, categoryID)
}

// CreateRole implements platform.RoleWriter.
func (g *Guild) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	color, mentionable := role.Color, role.Mentionable

	r, err := g.s.GuildRoleCreate(g.id, &discordgo.RoleParams{
		Name:        role.Name,
		Color:       &color,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return models.Role{}, errors.Wrapf(err, "failed to create role %q", role.Name)
	}
	return toRole(r), nil
}

// AssignRole implements platform.RoleWriter.
func (g *Guild) AssignRole(ctx context.Context, userID, roleID string) error {
	err := g.s.GuildMemberRoleAdd(g.id, userID, roleID, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "failed to give role %s to %s", roleID, userID)
}

// CreateTextChannel implements platform.ChannelWriter.
func (g *Guild) CreateTextChannel(ctx context.Context, name, parentID string) (models.Channel, error) {
	return g.createChannel(ctx, name, parentID, discordgo.ChannelTypeGuildText)
}

// CreateVoiceChannel implements platform.ChannelWriter.
func (g *Guild) CreateVoiceChannel(ctx context.Context, name, parentID string) (models.Channel, error) {
	return g.createChannel(ctx, name, parentID, discordgo.ChannelTypeGuildVoice)
}

func (g *Guild) createChannel(ctx context.Context, name, parentID string, kind discordgo.ChannelType) (models.Channel, error) {
	c, err := g.s.GuildChannelCreateComplex(g.id, discordgo.GuildChannelCreateData{
		Name:     name,
		Type:     kind,
		ParentID: parentID,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return models.Channel{}, errors.Wrapf(err, "failed to create channel %q", name)
	}
	return toChannel(c), nil
}

// Send implements platform.Messenger.
func (g *Guild) Send(ctx context.Context, channelID, content string) (models.Message, error) {
	m, err := g.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return models.Message{}, errors.Wrapf(err, "failed to send message to %s", channelID)
	}
	return toMessage(m), nil
}

// Reply implements platform.Messenger.
func (g *Guild) Reply(ctx context.Context, to models.Message, content string) (models.Message, error) {
	m, err := g.s.ChannelMessageSendReply(to.ChannelID, content, &discordgo.MessageReference{
		MessageID: to.ID,
		ChannelID: to.ChannelID,
		GuildID:   g.id,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return models.Message{}, errors.Wrapf(err, "failed to reply to %s", to.ID)
	}
	return toMessage(m), nil
}

// React implements platform.Messenger.
func (g *Guild) React(ctx context.Context, msg models.Message, emoji string) error {
	err := g.s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji, discordgo.WithContext(ctx))
	return errors.Wrapf(err, "failed to react to %s", msg.ID)
}

// PurgeBatch implements platform.MessagePurger. Bulk deletion is refused
// by Discord for messages older than two weeks, so those are deleted one
// at a time.
func (g *Guild) PurgeBatch(ctx context.Context, channelID string, limit int) (int, error) {
	msgs, err := g.s.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to list messages in %s", channelID)
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}

	if len(ids) > 1 {
		if err := g.s.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx)); err == nil {
			return len(ids), nil
		}
	}

	for i, id := range ids {
		if err := g.s.ChannelMessageDelete(channelID, id, discordgo.WithContext(ctx)); err != nil {
			return i, errors.Wrapf(err, "failed to delete message %s", id)
		}
	}
	return len(ids), nil
}

// OnReactionAdd feeds reaction events of this guild into the subscription
// hub. Register it with session.AddHandler.
func (g *Guild) OnReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.GuildID != g.id {
		return
	}
	g.hub.Dispatch(ToReaction(s, r))
}

// ToReaction converts a gateway reaction event.
func ToReaction(s *discordgo.Session, r *discordgo.MessageReactionAdd) models.Reaction {
	bot := r.Member != nil && r.Member.User != nil && r.Member.User.Bot
	if s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == r.UserID {
		bot = true
	}

	return models.Reaction{
		MessageID: r.MessageID,
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Emoji:     r.Emoji.Name,
		Bot:       bot,
	}
}

func (g *Guild) roleIndex(ctx context.Context) (map[string]models.Role, error) {
	roles, err := g.s.GuildRoles(g.id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list guild roles")
	}
	idx := make(map[string]models.Role, len(roles))
	for _, r := range roles {
		idx[r.ID] = toRole(r)
	}
	return idx, nil
}

// toMember prepends the @everyone role, which Discord leaves out of member
// role lists, so role counts include the base role.
func (g *Guild) toMember(m *discordgo.Member, u *discordgo.User, roles map[string]models.Role) models.Member {
	out := models.Member{Roles: make([]models.Role, 0, len(m.Roles)+1)}
	if u != nil {
		out.User = models.User{ID: u.ID, Username: u.Username, Bot: u.Bot}
	}

	everyone, ok := roles[g.id]
	if !ok {
		everyone = models.Role{ID: g.id, Name: "@everyone"}
	}
	out.Roles = append(out.Roles, everyone)

	for _, id := range m.Roles {
		if r, ok := roles[id]; ok {
			out.Roles = append(out.Roles, r)
		} else {
			out.Roles = append(out.Roles, models.Role{ID: id})
		}
	}
	return out
}

func toChannel(c *discordgo.Channel) models.Channel {
	out := models.Channel{ID: c.ID, Name: c.Name, ParentID: c.ParentID}
	switch c.Type {
	case discordgo.ChannelTypeGuildCategory:
		out.Kind = models.ChannelCategory
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		out.Kind = models.ChannelVoice
	default:
		out.Kind = models.ChannelText
	}
	return out
}

func toRole(r *discordgo.Role) models.Role {
	return models.Role{ID: r.ID, Name: r.Name, Color: r.Color, Mentionable: r.Mentionable}
}

func toMessage(m *discordgo.Message) models.Message {
	return models.Message{ID: m.ID, ChannelID: m.ChannelID, Content: m.Content}
}

var _ platform.Guild = (*Guild)(nil)
