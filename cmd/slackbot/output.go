package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/matsen/slackbot/internal/announcer"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputAnnouncementHuman prints the channels an announcement would list.
func outputAnnouncementHuman(w io.Writer, ann *announcer.Announcement) error {
	fmt.Fprintf(w, "# New channels (announcing to %s)\n\n", ann.Channel)

	if len(ann.NewChannels) == 0 {
		fmt.Fprintln(w, "No new channels.")
		fmt.Fprintf(w, "\nScanned: %d channels\n", ann.Fetched)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	now := time.Now()
	fmt.Fprintln(tw, "NAME\tCREATED\tAGE\tMEMBERS\tTOPIC")
	fmt.Fprintln(tw, "----\t-------\t---\t-------\t-----")
	for _, ch := range ann.NewChannels {
		topic := ch.Topic
		if topic == "" {
			topic = ch.Purpose
		}
		fmt.Fprintf(tw, "#%s\t%s\t%s\t%d\t%s\n", ch.Name, ch.Created.Format("2006-01-02"), formatAge(ch.Created, now), ch.NumMembers, topic)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nTotal: %d new of %d channels\n", len(ann.NewChannels), ann.Fetched)
	return nil
}

// formatAge formats how long before now t was, e.g. "2d ago", "5h ago".
func formatAge(t, now time.Time) string {
	delta := now.Sub(t)
	switch {
	case delta < 0:
		return "future"
	case delta >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(delta.Hours()/24))
	case delta >= time.Hour:
		return fmt.Sprintf("%dh ago", int(delta.Hours()))
	default:
		return fmt.Sprintf("%dm ago", int(delta.Minutes()))
	}
}
