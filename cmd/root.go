package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "hackbot",
	Short: "Discord bot for hackathon team formation",
	Long: `hackbot creates hackathon teams on Discord: it validates the team name
and roster, asks the requester to confirm, and provisions a private category,
text channel, voice channel and role for the team.

Configuration is read from the environment and from a .env file in the
working directory.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
