package discord

import (
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// Intents the bot identifies with. Guild members is privileged and must be
// enabled for the application.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions

// NewSession returns an unopened session authenticated with a bot token.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create discord session")
	}

	s.Identify.Intents = Intents
	s.StateEnabled = true
	return s, nil
}

// Status summarises the gateway connection for health checks.
type Status struct {
	Connected bool   `json:"connected"`
	User      string `json:"user,omitempty"`
	Latency   string `json:"latency,omitempty"`
}

// SessionStatus reports the state of s.
func SessionStatus(s *discordgo.Session) Status {
	st := Status{Connected: s.DataReady}
	if s.State != nil && s.State.User != nil {
		st.User = s.State.User.Username
	}
	if st.Connected {
		st.Latency = s.HeartbeatLatency().String()
	}
	return st
}
