package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hackbot/config"
	"hackbot/models"
	"hackbot/platform"
	"hackbot/platform/discord"
	"hackbot/platform/memguild"
	"hackbot/teams"
	"hackbot/utils"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run /team against an in-memory guild",
	Long: `Run the team creation flow against an in-memory guild and print every
platform call it makes. Nothing is sent to Discord.

Examples:
  # Create a two person team and confirm
  hackbot simulate --name byte-me --members alice,bob

  # Decline the confirmation
  hackbot simulate --name byte-me --members alice --answer decline

  # Let the confirmation time out after one second
  hackbot simulate --name byte-me --members alice --answer none --timeout 1s`,
	RunE: runSimulate,
}

var (
	simName     string
	simMembers  []string
	simTaken    []string
	simAnswer   string
	simTimeout  time.Duration
	simLogLevel string
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVar(&simName, "name", "", "team name")
	simulateCmd.Flags().StringSliceVar(&simMembers, "members", nil, "member usernames, the first one runs the command")
	simulateCmd.Flags().StringSliceVar(&simTaken, "taken", nil, "channel names that already exist in the guild")
	simulateCmd.Flags().StringVar(&simAnswer, "answer", "affirm", "requester reaction: affirm, decline or none")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", teams.DefaultConfirmTimeout, "confirmation window")
	simulateCmd.Flags().StringVar(&simLogLevel, "log-level", "warn", "log level")
	_ = simulateCmd.MarkFlagRequired("name")
	_ = simulateCmd.MarkFlagRequired("members")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if err := utils.ValidateVar("answer", simAnswer, "oneof=affirm decline none"); err != nil {
		return err
	}
	if len(simMembers) > len(discord.MemberOptions) {
		return errors.Errorf("at most %d members", len(discord.MemberOptions))
	}
	utils.SetupLogger("development", simLogLevel)

	cfg := config.Config{
		TeamCreationEnabled: true,
		TeamCreateChannel:   teams.DefaultCreateChannel,
		ParticipantRole:     teams.DefaultParticipantRole,
		OperatorRole:        "organizer",
		StaffRoles:          teams.DefaultStaffRoles,
		ConfirmTimeout:      simTimeout,
	}

	g := memguild.New("simulated")
	g.AddRole(cfg.ParticipantRole)
	for _, r := range cfg.StaffRoles {
		g.AddRole(r)
	}
	createChannel := g.AddChannel(cfg.TeamCreateChannel, models.ChannelText)
	for _, name := range simTaken {
		g.AddChannel(name, models.ChannelText)
	}

	opts := platform.Options{
		Strings: map[string]string{discord.OptionTeamName: simName},
		Members: make(map[string]*models.Member),
	}
	for i, username := range simMembers {
		user := models.User{ID: "user-" + strings.TrimSpace(username), Username: strings.TrimSpace(username)}
		opts.Members[discord.MemberOptions[i]] = g.AddMember(user, cfg.ParticipantRole)
	}
	requester := opts.Members[discord.MemberOptions[0]]

	answer := map[string]string{"affirm": teams.AffirmEmoji, "decline": teams.DeclineEmoji}[simAnswer]
	g.OnReact = func(msg models.Message, emoji string) {
		if answer == "" || emoji != teams.DeclineEmoji {
			return
		}
		g.Dispatch(models.Reaction{MessageID: msg.ID, ChannelID: msg.ChannelID, UserID: requester.ID, Emoji: answer})
	}

	b := newBot(cfg, g, nil)
	inv := &platform.Invocation{
		Command:     discord.CommandTeam,
		ChannelID:   createChannel.ID,
		ChannelName: createChannel.Name,
		Invoker:     *requester,
		Options:     opts,
		Responder:   &memguild.Responder{Guild: g, ChannelID: createChannel.ID},
	}
	b.dispatch(context.Background(), inv)

	out := cmd.OutOrStdout()
	for _, c := range g.Calls() {
		fmt.Fprintf(out, "%-20s %-12s %s\n", c.Op, c.Target, c.Arg)
	}
	fmt.Fprintf(out, "\n%d mutating calls\n", len(g.MutationCalls()))
	return nil
}
