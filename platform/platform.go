// Package platform defines the narrow capabilities the bot needs from the
// chat platform. The team workflow only depends on these interfaces; the
// discord subpackage implements them on top of a live gateway session and
// memguild implements them in memory.
package platform

import (
	"context"

	"hackbot/models"
)

// NamespaceReader reads the guild's current channels, roles and members.
type NamespaceReader interface {
	Namespace(ctx context.Context) (models.Namespace, error)
	Member(ctx context.Context, userID string) (models.Member, error)
}

// GroupingWriter creates categories and edits their visibility.
type GroupingWriter interface {
	CreateCategory(ctx context.Context, name string) (models.Channel, error)
	HideFromEveryone(ctx context.Context, categoryID string) error
	GrantView(ctx context.Context, categoryID, roleID string) error
}

// RoleWriter creates roles and hands them out.
type RoleWriter interface {
	CreateRole(ctx context.Context, role models.Role) (models.Role, error)
	AssignRole(ctx context.Context, userID, roleID string) error
}

// ChannelWriter creates channels inside a category.
type ChannelWriter interface {
	CreateTextChannel(ctx context.Context, name, parentID string) (models.Channel, error)
	CreateVoiceChannel(ctx context.Context, name, parentID string) (models.Channel, error)
}

// Messenger posts, replies to and reacts on messages.
type Messenger interface {
	Send(ctx context.Context, channelID, content string) (models.Message, error)
	Reply(ctx context.Context, to models.Message, content string) (models.Message, error)
	React(ctx context.Context, msg models.Message, emoji string) error
}

// MessagePurger deletes channel history.
type MessagePurger interface {
	// PurgeBatch deletes up to limit of the most recent messages in the
	// channel and returns how many were removed.
	PurgeBatch(ctx context.Context, channelID string, limit int) (int, error)
}

// ReactionWaiter hands out subscriptions to reaction-added events.
type ReactionWaiter interface {
	Subscribe(messageID string, match func(models.Reaction) bool) *Subscription
}

// Guild is everything the bot needs from one guild.
type Guild interface {
	NamespaceReader
	GroupingWriter
	RoleWriter
	ChannelWriter
	Messenger
	MessagePurger
	ReactionWaiter
}

// Responder answers the command invocation that triggered a handler. The
// first call is the initial response; later calls are follow-ups.
type Responder interface {
	Respond(ctx context.Context, content string) (models.Message, error)
}

// Invocation is one slash-command call.
type Invocation struct {
	Command     string
	ChannelID   string
	ChannelName string
	Invoker     models.Member
	Options     Options
	Responder   Responder
}

// Respond is shorthand for inv.Responder.Respond.
func (inv *Invocation) Respond(ctx context.Context, content string) (models.Message, error) {
	return inv.Responder.Respond(ctx, content)
}

// CommandHandler handles one slash command. A returned error is an
// internal failure; user mistakes are answered through the Responder and
// reported as nil.
type CommandHandler func(ctx context.Context, inv *Invocation) error
