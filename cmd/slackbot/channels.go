package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/slackbot/internal/announcer"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List the channels the next announcement would include",
	Long: `Fetch every public channel and show the ones that pass the lookback
window and exclusion rules, without posting anything.

Runs even when the announcer is disabled in settings.

Examples:
  slackbot channels
  slackbot channels --human`,
	Args: cobra.NoArgs,
	RunE: runChannels,
}

func init() {
	rootCmd.AddCommand(channelsCmd)
}

func runChannels(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	a, err := announcer.New(settings, newSlackClient(settings), logger)
	if err != nil {
		return err
	}

	ann, err := a.Compose(cmd.Context())
	if err != nil {
		return err
	}

	if humanOutput {
		return outputAnnouncementHuman(os.Stdout, ann)
	}
	return outputJSON(ann)
}
