package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hackbot/config"
	controller "hackbot/controllers"
	"hackbot/platform/discord"
	"hackbot/utils"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the slash commands for the configured guild",
	Long: `Overwrite the slash commands of DISCORD_GUILD with the bot's command set
and exit. run does this on startup unless --skip-register is given.`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	utils.SetupLogger(cfg.Environment, cfg.LogLevel)

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return err
	}

	if err := session.Open(); err != nil {
		return errors.Wrap(err, "failed to open gateway session")
	}
	defer session.Close()

	cmds := discord.Commands(controller.InfoTopics())
	if err := discord.Register(session, cfg.GuildID, cmds); err != nil {
		return err
	}

	utils.Component("register").WithField("count", len(cmds)).Info("Registered slash commands")
	return nil
}
