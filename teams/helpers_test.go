package teams

import (
	"io"

	"github.com/sirupsen/logrus"

	"hackbot/models"
	"hackbot/platform"
	"hackbot/platform/memguild"
)

var (
	alice = models.User{ID: "u-alice", Username: "alice"}
	bob   = models.User{ID: "u-bob", Username: "bob"}
	robot = models.User{ID: "u-robot", Username: "robot", Bot: true}
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// testGuild seeds the channels and roles a hackathon guild starts with.
type testGuild struct {
	*memguild.Guild
	createChannel models.Channel
}

func newTestGuild() *testGuild {
	g := memguild.New("guild-1")
	g.AddRole(DefaultParticipantRole)
	g.AddRole("organizer")
	c := g.AddChannel(DefaultCreateChannel, models.ChannelText)
	return &testGuild{Guild: g, createChannel: c}
}

func (g *testGuild) invocation(invoker *models.Member, channel models.Channel) (*platform.Invocation, *memguild.Responder) {
	r := &memguild.Responder{Guild: g.Guild, ChannelID: channel.ID}
	return &platform.Invocation{
		Command:     "team",
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		Invoker:     *invoker,
		Responder:   r,
	}, r
}

// reactWith makes user answer every confirmation prompt with emoji once the
// bot has attached both options.
func (g *testGuild) reactWith(user models.User, emoji string) {
	g.OnReact = func(msg models.Message, added string) {
		if added != DeclineEmoji {
			return
		}
		g.Dispatch(models.Reaction{MessageID: msg.ID, ChannelID: msg.ChannelID, UserID: user.ID, Emoji: emoji})
	}
}
