// Package memguild is an in-memory platform.Guild. Every call is recorded
// so tests can assert exactly which platform operations a flow issued, and
// any operation can be made to fail.
package memguild

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"hackbot/models"
	"hackbot/platform"
)

// Operation names recorded in the call log.
const (
	OpCreateCategory     = "create_category"
	OpCreateRole         = "create_role"
	OpHideFromEveryone   = "hide_from_everyone"
	OpGrantView          = "grant_view"
	OpCreateTextChannel  = "create_text_channel"
	OpCreateVoiceChannel = "create_voice_channel"
	OpAssignRole         = "assign_role"
	OpSend               = "send"
	OpReply              = "reply"
	OpReact              = "react"
	OpRespond            = "respond"
	OpPurge              = "purge"
)

// Mutations are the operations that change guild structure or post into a
// team's channels. Prompts, replies and reactions are not counted.
var Mutations = map[string]bool{
	OpCreateCategory:     true,
	OpCreateRole:         true,
	OpHideFromEveryone:   true,
	OpGrantView:          true,
	OpCreateTextChannel:  true,
	OpCreateVoiceChannel: true,
	OpAssignRole:         true,
	OpSend:               true,
}

// BotUserID is the user ID the guild's own reactions are attributed to.
const BotUserID = "bot"

// Call is one recorded platform call.
type Call struct {
	Op     string
	Target string
	Arg    string
}

// Overwrite is a recorded permission overwrite on a category.
type Overwrite struct {
	RoleID string
	Allow  bool
}

// Guild is an in-memory guild. The zero value is not usable; call New.
type Guild struct {
	*platform.ReactionHub

	// OnReact, when set, is called after every React call, outside the lock.
	OnReact func(msg models.Message, emoji string)

	mu         sync.Mutex
	id         string
	seq        int
	channels   []models.Channel
	roles      []models.Role
	members    map[string]*models.Member
	messages   map[string][]models.Message
	overwrites map[string][]Overwrite
	calls      []Call
	failures   map[string]error
}

// New returns a guild holding only the @everyone role.
func New(id string) *Guild {
	return &Guild{
		ReactionHub: platform.NewReactionHub(),
		id:          id,
		roles:       []models.Role{{ID: id, Name: "@everyone"}},
		members:     make(map[string]*models.Member),
		messages:    make(map[string][]models.Message),
		overwrites:  make(map[string][]Overwrite),
		failures:    make(map[string]error),
	}
}

// Everyone returns the base role every member holds.
func (g *Guild) Everyone() models.Role {
	return g.roles[0]
}

func (g *Guild) nextID(prefix string) string {
	g.seq++
	return prefix + strconv.Itoa(g.seq)
}

// AddRole seeds a role and returns it.
func (g *Guild) AddRole(name string) models.Role {
	g.mu.Lock()
	defer g.mu.Unlock()

	r := models.Role{ID: g.nextID("role-"), Name: name}
	g.roles = append(g.roles, r)
	return r
}

// AddChannel seeds a channel and returns it.
func (g *Guild) AddChannel(name string, kind models.ChannelKind) models.Channel {
	g.mu.Lock()
	defer g.mu.Unlock()

	c := models.Channel{ID: g.nextID("chan-"), Name: name, Kind: kind}
	g.channels = append(g.channels, c)
	return c
}

// AddMember seeds a member holding @everyone plus the named roles, which
// are created when missing.
func (g *Guild) AddMember(user models.User, roleNames ...string) *models.Member {
	g.mu.Lock()
	defer g.mu.Unlock()

	m := &models.Member{User: user, Roles: []models.Role{g.roles[0]}}
	for _, name := range roleNames {
		r, ok := g.roleByNameLocked(name)
		if !ok {
			r = models.Role{ID: g.nextID("role-"), Name: name}
			g.roles = append(g.roles, r)
		}
		m.Roles = append(m.Roles, r)
	}
	g.members[user.ID] = m

	cp := *m
	cp.Roles = append([]models.Role(nil), m.Roles...)
	return &cp
}

// FailOn makes every later call of op return err.
func (g *Guild) FailOn(op string, err error) {
	g.mu.Lock()
	g.failures[op] = err
	g.mu.Unlock()
}

// Calls returns a copy of the call log.
func (g *Guild) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// MutationCalls returns the recorded calls that are in Mutations.
func (g *Guild) MutationCalls() []Call {
	var out []Call
	for _, c := range g.Calls() {
		if Mutations[c.Op] {
			out = append(out, c)
		}
	}
	return out
}

// CallsOf returns the recorded calls of a single operation.
func (g *Guild) CallsOf(op string) []Call {
	var out []Call
	for _, c := range g.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Messages returns the messages posted in a channel, oldest first.
func (g *Guild) Messages(channelID string) []models.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]models.Message(nil), g.messages[channelID]...)
}

// Overwrites returns the permission overwrites recorded on a category.
func (g *Guild) Overwrites(categoryID string) []Overwrite {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Overwrite(nil), g.overwrites[categoryID]...)
}

// record appends to the call log and returns the injected failure, if any.
// Callers hold g.mu.
func (g *Guild) record(op, target, arg string) error {
	g.calls = append(g.calls, Call{Op: op, Target: target, Arg: arg})
	return g.failures[op]
}

func (g *Guild) roleByNameLocked(name string) (models.Role, bool) {
	for _, r := range g.roles {
		if r.Name == name {
			return r, true
		}
	}
	return models.Role{}, false
}

// Namespace implements platform.NamespaceReader.
func (g *Guild) Namespace(ctx context.Context) (models.Namespace, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	return models.Namespace{
		Channels: append([]models.Channel(nil), g.channels...),
		Roles:    append([]models.Role(nil), g.roles...),
	}, nil
}

// Member implements platform.NamespaceReader.
func (g *Guild) Member(ctx context.Context, userID string) (models.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	m, ok := g.members[userID]
	if !ok {
		return models.Member{}, fmt.Errorf("unknown member %s", userID)
	}
	cp := *m
	cp.Roles = append([]models.Role(nil), m.Roles...)
	return cp, nil
}

// CreateCategory implements platform.GroupingWriter.
func (g *Guild) CreateCategory(ctx context.Context, name string) (models.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(OpCreateCategory, name, ""); err != nil {
		return models.Channel{}, err
	}
	c := models.Channel{ID: g.nextID("chan-"), Name: name, Kind: models.ChannelCategory}
	g.channels = append(g.channels, c)
	return c, nil
}

// HideFromEveryone implements platform.GroupingWriter.
func (g *Guild) HideFromEveryone(ctx context.Context, categoryID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(OpHideFromEveryone, categoryID, g.id); err != nil {
		return err
	}
	g.overwrites[categoryID] = append(g.overwrites[categoryID], Overwrite{RoleID: g.id})
	return nil
}

// GrantView implements platform.GroupingWriter.
func (g *Guild) GrantView(ctx context.Context, categoryID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(OpGrantView, categoryID, roleID); err != nil {
		return err
	}
	g.overwrites[categoryID] = append(g.overwrites[categoryID], Overwrite{RoleID: roleID, Allow: true})
	return nil
}

// CreateRole implements platform.RoleWriter.
func (g *Guild) CreateRole(ctx context.Context, role models.Role) (models.Role, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(OpCreateRole, role.Name, ""); err != nil {
		return models.Role{}, err
	}
	role.ID = g.nextID("role-")
	g.roles = append(g.roles, role)
	return role, nil
}

// AssignRole implements platform.RoleWriter.
func (g *Guild) AssignRole(ctx context.Context, userID, roleID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(OpAssignRole, userID, roleID); err != nil {
		return err
	}

	m, ok := g.members[userID]
	if !ok {
		return fmt.Errorf("unknown member %s", userID)
	}
	for _, r := range g.roles {
		if r.ID == roleID {
			m.Roles = append(m.Roles, r)
			return nil
		}
	}
	return fmt.Errorf("unknown role %s", roleID)
}

// CreateTextChannel implements platform.ChannelWriter.
func (g *Guild) CreateTextChannel(ctx context.Context, name, parentID string) (models.Channel, error) {
	return g.createChannel(OpCreateTextChannel, name, parentID, models.ChannelText)
}

// CreateVoiceChannel implements platform.ChannelWriter.
func (g *Guild) CreateVoiceChannel(ctx context.Context, name, parentID string) (models.Channel, error) {
	return g.createChannel(OpCreateVoiceChannel, name, parentID, models.ChannelVoice)
}

func (g *Guild) createChannel(op, name, parentID string, kind models.ChannelKind) (models.Channel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(op, name, parentID); err != nil {
		return models.Channel{}, err
	}
	c := models.Channel{ID: g.nextID("chan-"), Name: name, Kind: kind, ParentID: parentID}
	g.channels = append(g.channels, c)
	return c, nil
}

// Send implements platform.Messenger.
func (g *Guild) Send(ctx context.Context, channelID, content string) (models.Message, error) {
	return g.post(OpSend, channelID, content)
}

// Reply implements platform.Messenger.
func (g *Guild) Reply(ctx context.Context, to models.Message, content string) (models.Message, error) {
	return g.post(OpReply, to.ChannelID, content)
}

func (g *Guild) post(op, channelID, content string) (models.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(op, channelID, content); err != nil {
		return models.Message{}, err
	}
	msg := models.Message{ID: g.nextID("msg-"), ChannelID: channelID, Content: content}
	g.messages[channelID] = append(g.messages[channelID], msg)
	return msg, nil
}

// React implements platform.Messenger. The reaction is attributed to
// BotUserID and dispatched to subscribers like any other reaction.
func (g *Guild) React(ctx context.Context, msg models.Message, emoji string) error {
	g.mu.Lock()
	err := g.record(OpReact, msg.ID, emoji)
	hook := g.OnReact
	g.mu.Unlock()

	if err != nil {
		return err
	}

	g.Dispatch(models.Reaction{
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		UserID:    BotUserID,
		Emoji:     emoji,
		Bot:       true,
	})

	if hook != nil {
		hook(msg, emoji)
	}
	return nil
}

// PurgeBatch implements platform.MessagePurger.
func (g *Guild) PurgeBatch(ctx context.Context, channelID string, limit int) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.record(OpPurge, channelID, strconv.Itoa(limit)); err != nil {
		return 0, err
	}

	msgs := g.messages[channelID]
	n := limit
	if n > len(msgs) {
		n = len(msgs)
	}
	g.messages[channelID] = msgs[:len(msgs)-n]
	return n, nil
}

// Responder answers invocations by posting in a channel of the guild.
type Responder struct {
	Guild     *Guild
	ChannelID string
}

// Respond implements platform.Responder.
func (r *Responder) Respond(ctx context.Context, content string) (models.Message, error) {
	return r.Guild.post(OpRespond, r.ChannelID, content)
}

// Responses returns the contents of every response posted in the channel.
func (r *Responder) Responses() []string {
	var out []string
	for _, c := range r.Guild.CallsOf(OpRespond) {
		if c.Target == r.ChannelID {
			out = append(out, c.Arg)
		}
	}
	return out
}

var _ platform.Guild = (*Guild)(nil)
