package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the settings file looked up when no path is given.
	DefaultFile = "appsettings.yml"
	// EnvironmentVar selects the optional appsettings.<env>.yml overlay.
	EnvironmentVar = "SLACKBOT_ENVIRONMENT"
	// EnvSeparator separates nested keys in environment overrides.
	EnvSeparator = "__"
)

// environ is swapped in tests.
var environ = os.Environ

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the base settings file, applies the environment-specific overlay
// if SLACKBOT_ENVIRONMENT is set, then applies environment variable overrides.
// The result is not validated; call Validate.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultFile
	}

	s := Default()
	if err := decodeFile(path, s, false); err != nil {
		return nil, err
	}

	if env := strings.TrimSpace(os.Getenv(EnvironmentVar)); env != "" {
		if err := decodeFile(OverlayPath(path, env), s, true); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(s, environ()); err != nil {
		return nil, err
	}
	return s, nil
}

// OverlayPath returns the environment-specific file for a base settings path,
// e.g. appsettings.yml -> appsettings.production.yml.
func OverlayPath(base, env string) string {
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "." + env + ext
}

func decodeFile(path string, s *Settings, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return &Error{Message: fmt.Sprintf("reading settings file %s", path), Err: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return &Error{Message: fmt.Sprintf("parsing settings file %s", path), Err: err}
	}
	return nil
}

// envBinding maps one nested settings key onto a setter.
type envBinding struct {
	key string
	set func(s *Settings, v string) error
}

var envBindings = []envBinding{
	{"slack_api_token", func(s *Settings, v string) error { s.SlackAPIToken = v; return nil }},
	{"enable_debug_logging", boolSetter(func(s *Settings) *bool { return &s.EnableDebugLogging })},
	{"output_log_file", boolSetter(func(s *Settings) *bool { return &s.OutputLogFile })},
	{"log_file_directory", func(s *Settings, v string) error { s.LogFileDirectory = v; return nil }},
	{"channel_announcer__enabled", boolSetter(func(s *Settings) *bool { return &announcer(s).Enabled })},
	{"channel_announcer__lookback_days", func(s *Settings, v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		announcer(s).LookbackDays = n
		return nil
	}},
	{"channel_announcer__announcement_channel", func(s *Settings, v string) error {
		announcer(s).AnnouncementChannel = v
		return nil
	}},
	{"channel_announcer__exclude_channels", func(s *Settings, v string) error {
		announcer(s).ExcludeChannels = splitList(v)
		return nil
	}},
	{"channel_announcer__exclude_prefixes", func(s *Settings, v string) error {
		announcer(s).ExcludePrefixes = splitList(v)
		return nil
	}},
	{"channel_announcer__emojis", func(s *Settings, v string) error {
		announcer(s).Emojis = splitList(v)
		return nil
	}},
}

// applyEnvOverrides applies KEY=value pairs whose key matches a binding,
// compared case-insensitively.
func applyEnvOverrides(s *Settings, env []string) error {
	for _, kv := range env {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		for _, b := range envBindings {
			if !strings.EqualFold(name, b.key) {
				continue
			}
			if err := b.set(s, value); err != nil {
				return &Error{Message: fmt.Sprintf("invalid value %q in environment variable %s", value, name), Setting: b.key, Err: err}
			}
		}
	}
	return nil
}

func boolSetter(field func(*Settings) *bool) func(*Settings, string) error {
	return func(s *Settings, v string) error {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return err
		}
		*field(s) = b
		return nil
	}
}

func announcer(s *Settings) *AnnouncerSettings {
	if s.ChannelAnnouncer == nil {
		s.ChannelAnnouncer = &AnnouncerSettings{Enabled: true, LookbackDays: DefaultLookbackDays}
	}
	return s.ChannelAnnouncer
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
