package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/slackbot/internal/announcer"
	"github.com/matsen/slackbot/internal/config"
	"github.com/matsen/slackbot/internal/logging"
	"github.com/matsen/slackbot/internal/schedule"
)

func runRoot(cmd *cobra.Command, args []string) error {
	promptOnExit = !isAutorun(args) && scheduleSpec == ""

	if scheduleSpec != "" {
		if _, err := schedule.Parse(scheduleSpec); err != nil {
			return &config.Error{Message: "invalid --schedule", Err: err}
		}
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	if scheduleSpec == "" {
		return runOnce(cmd.Context(), settings, cmd.OutOrStdout())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return schedule.Run(ctx, scheduleSpec, time.Local, func(ctx context.Context) error {
		err := runOnce(ctx, settings, cmd.OutOrStdout())
		if err != nil {
			logFailure(logger, err)
		}
		logger.WriteFile()
		return err
	}, logger)
}

// runOnce performs a single announcement pass.
func runOnce(ctx context.Context, settings *config.Settings, out io.Writer) error {
	a, err := announcer.New(settings, newSlackClient(settings), logger)
	if err != nil {
		return err
	}

	if !a.Settings().Enabled {
		logger.Info("Channel announcer was not enabled. Skipping announcement.")
		return nil
	}

	if dryRun {
		ann, err := a.Compose(ctx)
		if err != nil {
			return err
		}
		logger.Info("dry run, not posting", logging.String("channel", ann.Channel))
		fmt.Fprintln(out, ann.Message)
		return nil
	}

	return a.Announce(ctx)
}
