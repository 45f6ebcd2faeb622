package models

// ChannelKind distinguishes categories from text and voice channels.
type ChannelKind int

const (
	ChannelText ChannelKind = iota
	ChannelVoice
	ChannelCategory
)

func (k ChannelKind) String() string {
	switch k {
	case ChannelText:
		return "text"
	case ChannelVoice:
		return "voice"
	case ChannelCategory:
		return "category"
	default:
		return "unknown"
	}
}

// Channel is a guild channel. Categories are channels of kind ChannelCategory.
type Channel struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Kind     ChannelKind `json:"kind"`
	ParentID string      `json:"parent_id,omitempty"`
}

// Role is a guild role.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color,omitempty"`
	Mentionable bool   `json:"mentionable,omitempty"`
}

// Message identifies a message posted in a channel.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content,omitempty"`
}

// Reaction is a reaction-added event.
type Reaction struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	Emoji     string `json:"emoji"`
	Bot       bool   `json:"bot"`
}

// Namespace is a read-only snapshot of the guild's channel and role names,
// valid only at the time it was read.
type Namespace struct {
	Channels []Channel
	Roles    []Role
}

// HasChannel reports whether any channel, categories included, has the name.
func (ns Namespace) HasChannel(name string) bool {
	for _, c := range ns.Channels {
		if c.Name == name {
			return true
		}
	}
	return false
}

// HasCategory reports whether a category has the name.
func (ns Namespace) HasCategory(name string) bool {
	for _, c := range ns.Channels {
		if c.Kind == ChannelCategory && c.Name == name {
			return true
		}
	}
	return false
}

// RoleByName returns the role with the exact name.
func (ns Namespace) RoleByName(name string) (Role, bool) {
	for _, r := range ns.Roles {
		if r.Name == name {
			return r, true
		}
	}
	return Role{}, false
}

// HasRole reports whether a role has the name.
func (ns Namespace) HasRole(name string) bool {
	_, ok := ns.RoleByName(name)
	return ok
}
