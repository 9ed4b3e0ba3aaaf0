package main

import (
	"github.com/matsen/slackbot/internal/config"
	"github.com/matsen/slackbot/internal/slackapi"
)

// Exit codes reported to the calling automation.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // Unexpected failure (network, I/O, invalid arguments)
	ExitConfigError = 2 // Missing or invalid settings
	ExitSlackError  = 3 // Slack answered ok=false
)

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case config.IsConfigError(err):
		return ExitConfigError
	case slackapi.IsAPIError(err):
		return ExitSlackError
	default:
		return ExitError
	}
}
