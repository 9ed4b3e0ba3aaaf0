// Package config loads and validates slackbot settings.
package config

import (
	"strings"
)

// DefaultLookbackDays is used when lookback_days is missing or not positive.
const DefaultLookbackDays = 7

// Settings is the top-level configuration read from appsettings.yml.
type Settings struct {
	SlackAPIToken      string             `yaml:"slack_api_token"`
	EnableDebugLogging bool               `yaml:"enable_debug_logging"`
	OutputLogFile      bool               `yaml:"output_log_file"`
	LogFileDirectory   string             `yaml:"log_file_directory,omitempty"`
	ChannelAnnouncer   *AnnouncerSettings `yaml:"channel_announcer"`
}

// AnnouncerSettings configures the new-channel announcement.
type AnnouncerSettings struct {
	Enabled             bool     `yaml:"enabled"`
	LookbackDays        int      `yaml:"lookback_days"`
	AnnouncementChannel string   `yaml:"announcement_channel"`
	ExcludeChannels     []string `yaml:"exclude_channels,omitempty"`
	ExcludePrefixes     []string `yaml:"exclude_prefixes,omitempty"`
	Emojis              []string `yaml:"emojis,omitempty"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	return &Settings{
		ChannelAnnouncer: &AnnouncerSettings{
			Enabled:      true,
			LookbackDays: DefaultLookbackDays,
		},
	}
}

// Validate checks the settings needed before anything talks to Slack.
func (s *Settings) Validate() error {
	if s == nil {
		return ErrMissingSettings
	}
	if strings.TrimSpace(s.SlackAPIToken) == "" {
		return &Error{Message: "missing the Slack API token in the settings file", Setting: "slack_api_token"}
	}
	if s.OutputLogFile && strings.TrimSpace(s.LogFileDirectory) == "" {
		return &Error{Message: "output_log_file is set but no log directory was provided", Setting: "log_file_directory"}
	}
	return nil
}

// Normalized returns a copy with the announcement channel prefixed by '#'
// and a positive lookback window. The receiver is left untouched.
func (a *AnnouncerSettings) Normalized() AnnouncerSettings {
	out := *a
	out.ExcludeChannels = append([]string(nil), a.ExcludeChannels...)
	out.ExcludePrefixes = append([]string(nil), a.ExcludePrefixes...)
	out.Emojis = append([]string(nil), a.Emojis...)

	out.AnnouncementChannel = strings.TrimSpace(out.AnnouncementChannel)
	if out.AnnouncementChannel != "" && !strings.HasPrefix(out.AnnouncementChannel, "#") {
		out.AnnouncementChannel = "#" + out.AnnouncementChannel
	}
	if out.LookbackDays <= 0 {
		out.LookbackDays = DefaultLookbackDays
	}
	return out
}
