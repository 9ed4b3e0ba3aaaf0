package announcer

import (
	"fmt"
	"strings"

	"github.com/matsen/slackbot/internal/logging"
	"github.com/matsen/slackbot/internal/slackapi"
)

const (
	// NoNewChannelsMessage is posted when nothing qualifies.
	NoNewChannelsMessage = "No new channels were created recently. See you again next week!"

	// FallbackEmoji is used when no configured emoji survives cleaning.
	FallbackEmoji = "tada"
)

// NewChannels returns the channels created within the lookback window that
// are not excluded by name or prefix, in their original order.
func (a *Announcer) NewChannels(all []slackapi.Channel) []slackapi.Channel {
	cutoff := a.now().AddDate(0, 0, -a.settings.LookbackDays)

	var out []slackapi.Channel
	for _, ch := range all {
		if ch.Name == "" || ch.Created.Before(cutoff) {
			continue
		}
		if hasAnyPrefixFold(ch.Name, a.settings.ExcludePrefixes) {
			continue
		}
		if equalsAnyFold(ch.Name, a.settings.ExcludeChannels) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// BuildMessage filters all and formats the announcement text.
func (a *Announcer) BuildMessage(all []slackapi.Channel) string {
	return a.formatMessage(a.NewChannels(all))
}

func (a *Announcer) formatMessage(fresh []slackapi.Channel) string {
	if len(fresh) == 0 {
		return NoNewChannelsMessage
	}
	return FormatMessage(fresh, a.pickEmoji())
}

// FormatMessage renders already-filtered channels with the given emoji.
func FormatMessage(channels []slackapi.Channel, emoji string) string {
	if len(channels) == 0 {
		return NoNewChannelsMessage
	}

	var b strings.Builder
	if len(channels) == 1 {
		fmt.Fprintf(&b, "There was 1 new channel created recently! :%s:", emoji)
	} else {
		fmt.Fprintf(&b, "There were %d new channels created recently! :%s:", len(channels), emoji)
	}

	for _, ch := range channels {
		if ch.Name == "" {
			continue
		}
		fmt.Fprintf(&b, "\n• #%s (%d members)", ch.Name, ch.NumMembers)
		if topic := strings.TrimSpace(ch.Topic); topic != "" {
			b.WriteString(" - " + ch.Topic)
		} else if purpose := strings.TrimSpace(ch.Purpose); purpose != "" {
			b.WriteString(" - " + ch.Purpose)
		}
	}
	return b.String()
}

// CleanEmojis strips colons and whitespace and drops blanks.
func CleanEmojis(pool []string) []string {
	var out []string
	for _, e := range pool {
		if e = strings.TrimSpace(strings.ReplaceAll(e, ":", "")); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func (a *Announcer) pickEmoji() string {
	candidates := CleanEmojis(a.settings.Emojis)
	if len(candidates) == 0 {
		a.log.Warn("no valid emojis were found, falling back to default", logging.String("emoji", FallbackEmoji))
		return FallbackEmoji
	}
	emoji := candidates[a.rand.IntN(len(candidates))]
	a.log.Debug("selected announcement emoji", logging.String("emoji", emoji))
	return emoji
}

func hasAnyPrefixFold(name string, prefixes []string) bool {
	lower := strings.ToLower(name)
	for _, p := range prefixes {
		if p == "" {
			continue
		}
		if strings.HasPrefix(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

func equalsAnyFold(name string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}
