// Package main provides the slackbot CLI entry point.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/slackbot/internal/config"
	"github.com/matsen/slackbot/internal/logging"
	"github.com/matsen/slackbot/internal/slackapi"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	configPath   string
	humanOutput  bool
	dryRun       bool
	scheduleSpec string
	apiURL       string
)

// logger starts as a plain console logger and is replaced once settings load.
var logger = logging.New(logging.Config{})

// promptOnExit is set by the root command for interactive runs.
var promptOnExit bool

func main() {
	err := rootCmd.Execute()
	if err != nil {
		logFailure(logger, err)
	}

	logger.WriteFile()

	if promptOnExit {
		waitForKey(os.Stdin, logger)
	}
	os.Exit(exitCode(err))
}

var rootCmd = &cobra.Command{
	Use:   "slackbot [autorun]",
	Short: "Announce newly created Slack channels",
	Long: `slackbot lists the workspace's public channels, picks the ones created
within the configured lookback window, and posts a summary to the
announcement channel.

Settings are read from appsettings.yml, overlaid by
appsettings.<SLACKBOT_ENVIRONMENT>.yml when that variable is set, then by
environment variables using "__" between nested keys, e.g.
CHANNEL_ANNOUNCER__LOOKBACK_DAYS=9.

Pass "autorun" to exit as soon as the run completes instead of waiting
for a key press.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "Path to the settings file")
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Override the Slack API base URL")
	_ = rootCmd.PersistentFlags().MarkHidden("api-url")

	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the announcement instead of posting it")
	rootCmd.Flags().StringVar(&scheduleSpec, "schedule", "", `Keep running and announce on a cron schedule (e.g. "0 9 * * MON")`)

	rootCmd.Version = Version
}

// isAutorun reports whether the first argument asks for a non-interactive run.
func isAutorun(args []string) bool {
	return len(args) > 0 && strings.EqualFold(strings.TrimSpace(args[0]), "autorun")
}

// loadSettings reads .env, the settings files and environment overrides,
// then validates the result and swaps in the configured logger.
func loadSettings() (*config.Settings, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, &config.Error{Message: "loading .env", Err: err}
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger = logging.New(logging.Config{
		Debug:      settings.EnableDebugLogging,
		FileOutput: settings.OutputLogFile,
		Directory:  settings.LogFileDirectory,
	})
	return settings, nil
}

func newSlackClient(settings *config.Settings) *slackapi.Client {
	var opts []slackapi.ClientOption
	if apiURL != "" {
		opts = append(opts, slackapi.WithAPIURL(apiURL))
	}
	return slackapi.New(settings.SlackAPIToken, opts...)
}

// logFailure logs err with whatever detail its type carries.
func logFailure(log *logging.Logger, err error) {
	fields := []logging.Field{logging.Err(err)}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) && cfgErr.Setting != "" {
		fields = append(fields, logging.String("setting", cfgErr.Setting))
	}
	var apiErr *slackapi.APIError
	if errors.As(err, &apiErr) {
		fields = append(fields,
			logging.String("slack_error", apiErr.Code),
			logging.Any("response", apiErr.Response),
		)
	}
	log.Error("run failed", fields...)
}

func waitForKey(in io.Reader, log *logging.Logger) {
	log.Info("Press Enter to exit.")
	if _, err := bufio.NewReader(in).ReadByte(); err != nil && !errors.Is(err, io.EOF) {
		fmt.Fprintf(os.Stderr, "reading input: %v\n", err)
	}
}
