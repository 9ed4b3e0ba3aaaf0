// Package announcer finds Slack channels created within a lookback window
// and posts a summary of them to an announcement channel.
package announcer

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/matsen/slackbot/internal/config"
	"github.com/matsen/slackbot/internal/logging"
	"github.com/matsen/slackbot/internal/slackapi"
)

// Notifier is the part of the Slack client the announcer uses.
type Notifier interface {
	ListChannels(ctx context.Context, req slackapi.ListChannelsRequest) (*slackapi.ChannelPage, error)
	PostMessage(ctx context.Context, channel, markdown string) error
}

// RandomSource picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// Announcer runs one discovery-and-announce pass per call.
type Announcer struct {
	settings config.AnnouncerSettings
	client   Notifier
	log      *logging.Logger
	rand     RandomSource
	now      func() time.Time
	maxPages int
}

// Option configures an Announcer.
type Option func(*Announcer)

// WithRand sets the random source used to pick the announcement emoji.
func WithRand(r RandomSource) Option {
	return func(a *Announcer) {
		a.rand = r
	}
}

// WithClock sets the time source used for the lookback window.
func WithClock(now func() time.Time) Option {
	return func(a *Announcer) {
		a.now = now
	}
}

// WithMaxPages caps how many conversations.list pages one run may fetch.
func WithMaxPages(n int) Option {
	return func(a *Announcer) {
		if n > 0 {
			a.maxPages = n
		}
	}
}

// globalRand uses the runtime-seeded top-level generator.
type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// New validates settings and returns an Announcer working on a normalized
// copy of them. A nil logger discards output.
func New(settings *config.Settings, client Notifier, log *logging.Logger, opts ...Option) (*Announcer, error) {
	if settings == nil {
		return nil, config.ErrMissingSettings
	}
	if settings.ChannelAnnouncer == nil {
		return nil, &config.Error{Message: "no channel_announcer settings were provided", Setting: "channel_announcer"}
	}
	if strings.TrimSpace(settings.ChannelAnnouncer.AnnouncementChannel) == "" {
		return nil, &config.Error{Message: "no announcement channel was provided", Setting: "channel_announcer.announcement_channel"}
	}

	a := &Announcer{
		settings: settings.ChannelAnnouncer.Normalized(),
		client:   client,
		log:      log,
		rand:     globalRand{},
		now:      time.Now,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.log.Debug("channel announcer configured",
		logging.Int("lookback_days", a.settings.LookbackDays),
		logging.String("announcement_channel", a.settings.AnnouncementChannel),
		logging.String("exclude_channels", listOrNone(a.settings.ExcludeChannels)),
		logging.String("exclude_prefixes", listOrNone(a.settings.ExcludePrefixes)),
	)
	return a, nil
}

// Settings returns the normalized settings in use.
func (a *Announcer) Settings() config.AnnouncerSettings {
	return a.settings
}

// Announcement is the result of a run before (or without) posting.
type Announcement struct {
	Channel     string             `json:"channel"`
	Message     string             `json:"message"`
	NewChannels []slackapi.Channel `json:"new_channels"`
	Fetched     int                `json:"fetched"`
}

// Compose fetches every channel, filters to the new ones, and builds the message.
func (a *Announcer) Compose(ctx context.Context) (*Announcement, error) {
	all, err := a.FetchAllChannels(ctx)
	if err != nil {
		return nil, err
	}
	fresh := a.NewChannels(all)
	if fresh == nil {
		fresh = []slackapi.Channel{}
	}
	return &Announcement{
		Channel:     a.settings.AnnouncementChannel,
		Message:     a.formatMessage(fresh),
		NewChannels: fresh,
		Fetched:     len(all),
	}, nil
}

// Announce composes the announcement and posts it.
func (a *Announcer) Announce(ctx context.Context) error {
	ann, err := a.Compose(ctx)
	if err != nil {
		return err
	}

	a.log.Info("posting announcement", logging.String("channel", ann.Channel))
	a.log.Debug("announcement message", logging.String("message", ann.Message))

	if err := a.client.PostMessage(ctx, ann.Channel, ann.Message); err != nil {
		return err
	}
	a.log.Success("Success", logging.Int("new_channels", len(ann.NewChannels)))
	return nil
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
