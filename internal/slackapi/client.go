// Package slackapi is the thin Slack Web API client the announcer talks to.
package slackapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slack-go/slack"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// PublicChannel is the conversations.list type for public channels.
	PublicChannel = "public_channel"

	methodConversationsList = "conversations.list"
	methodChatPostMessage   = "chat.postMessage"
)

// Channel is the subset of a Slack conversation the announcer needs.
type Channel struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Created    time.Time `json:"created"`
	NumMembers int       `json:"num_members"`
	Topic      string    `json:"topic,omitempty"`
	Purpose    string    `json:"purpose,omitempty"`
}

// ChannelPage is one page of conversations.list.
type ChannelPage struct {
	Channels   []Channel
	NextCursor string
}

// ListChannelsRequest mirrors the conversations.list parameters we use.
type ListChannelsRequest struct {
	Cursor          string
	ExcludeArchived bool
	Limit           int
	Types           []string
}

// Client wraps slack.Client.
type Client struct {
	api        *slack.Client
	httpClient *http.Client
	apiURL     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithAPIURL sets a custom API base URL (for testing).
func WithAPIURL(url string) ClientOption {
	return func(c *Client) {
		if !strings.HasSuffix(url, "/") {
			url += "/"
		}
		c.apiURL = url
	}
}

// New creates a client authenticated with a bot token.
func New(token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	slackOpts := []slack.Option{slack.OptionHTTPClient(c.httpClient)}
	if c.apiURL != "" {
		slackOpts = append(slackOpts, slack.OptionAPIURL(c.apiURL))
	}
	c.api = slack.New(token, slackOpts...)
	return c
}

// ListChannels fetches one page of conversations.
func (c *Client) ListChannels(ctx context.Context, req ListChannelsRequest) (*ChannelPage, error) {
	channels, next, err := c.api.GetConversationsContext(ctx, &slack.GetConversationsParameters{
		Cursor:          req.Cursor,
		ExcludeArchived: req.ExcludeArchived,
		Limit:           req.Limit,
		Types:           req.Types,
	})
	if err != nil {
		return nil, wrapError(methodConversationsList, req.Cursor, err)
	}

	page := &ChannelPage{
		Channels:   make([]Channel, 0, len(channels)),
		NextCursor: next,
	}
	for _, ch := range channels {
		page.Channels = append(page.Channels, fromSlack(ch))
	}
	return page, nil
}

// PostMessage posts markdown text to a channel as a single section block.
// channel may be a name ("#general") or an ID.
func (c *Client) PostMessage(ctx context.Context, channel, markdown string) error {
	block := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, markdown, false, false),
		nil, nil,
	)
	_, _, err := c.api.PostMessageContext(ctx, channel, slack.MsgOptionBlocks(block))
	if err != nil {
		return wrapError(methodChatPostMessage, "", err)
	}
	return nil
}

func fromSlack(ch slack.Channel) Channel {
	return Channel{
		ID:         ch.ID,
		Name:       ch.Name,
		Created:    ch.Created.Time(),
		NumMembers: ch.NumMembers,
		Topic:      ch.Topic.Value,
		Purpose:    ch.Purpose.Value,
	}
}

// wrapError turns an ok=false envelope into an *APIError. Anything else
// (network, HTTP status, decoding) is returned with context only.
func wrapError(method, cursor string, err error) error {
	var envelope slack.SlackErrorResponse
	if errors.As(err, &envelope) {
		return &APIError{
			Method:   method,
			Cursor:   cursor,
			Code:     envelope.Err,
			Response: envelope,
		}
	}
	return fmt.Errorf("calling %s: %w", method, err)
}
