package announcer

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/matsen/slackbot/internal/logging"
	"github.com/matsen/slackbot/internal/slackapi"
)

const (
	// PageSize is the conversations.list limit per request.
	PageSize = 100

	// DefaultMaxPages bounds pagination against a misbehaving API.
	DefaultMaxPages = 1000
)

// ErrPaginationLimit is returned when pagination does not terminate.
var ErrPaginationLimit = errors.New("channel pagination did not terminate")

// Pages lazily walks conversations.list for non-archived public channels.
// Each range over the sequence starts again from the first page. Iteration
// stops after the first error, a nil page, or a blank next cursor.
func (a *Announcer) Pages(ctx context.Context) iter.Seq2[*slackapi.ChannelPage, error] {
	return func(yield func(*slackapi.ChannelPage, error) bool) {
		cursor := ""
		seen := make(map[string]bool)

		for n := 0; ; n++ {
			if n >= a.maxPages {
				yield(nil, fmt.Errorf("%w: more than %d pages", ErrPaginationLimit, a.maxPages))
				return
			}

			page, err := a.client.ListChannels(ctx, slackapi.ListChannelsRequest{
				Cursor:          cursor,
				ExcludeArchived: true,
				Limit:           PageSize,
				Types:           []string{slackapi.PublicChannel},
			})
			if err != nil {
				yield(nil, err)
				return
			}
			if page == nil {
				return
			}
			if !yield(page, nil) {
				return
			}

			next := strings.TrimSpace(page.NextCursor)
			if next == "" {
				return
			}
			if seen[next] {
				yield(nil, fmt.Errorf("%w: cursor %q returned twice", ErrPaginationLimit, next))
				return
			}
			seen[next] = true
			cursor = next
		}
	}
}

// FetchAllChannels accumulates every page in the order Slack returns them.
func (a *Announcer) FetchAllChannels(ctx context.Context) ([]slackapi.Channel, error) {
	var all []slackapi.Channel
	pages := 0
	for page, err := range a.Pages(ctx) {
		if err != nil {
			return nil, err
		}
		pages++
		all = append(all, page.Channels...)
	}
	a.log.Debug("fetched channels", logging.Int("channels", len(all)), logging.Int("pages", pages))
	return all, nil
}
