package slackapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newTestServer routes Slack API methods to handlers keyed by method name.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.TrimPrefix(r.URL.Path, "/")
		h, ok := handlers[method]
		if !ok {
			t.Errorf("unexpected Slack method %q", method)
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parsing form: %v", err)
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func TestListChannels(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	srv := newTestServer(t, map[string]http.HandlerFunc{
		"conversations.list": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Form.Get("cursor"); got != "page-2" {
				t.Errorf("cursor = %q, want page-2", got)
			}
			if got := r.Form.Get("limit"); got != "100" {
				t.Errorf("limit = %q, want 100", got)
			}
			if got := r.Form.Get("exclude_archived"); got != "true" {
				t.Errorf("exclude_archived = %q, want true", got)
			}
			if got := r.Form.Get("types"); got != PublicChannel {
				t.Errorf("types = %q, want %s", got, PublicChannel)
			}
			writeJSON(w, map[string]any{
				"ok": true,
				"channels": []map[string]any{
					{
						"id":          "C1",
						"name":        "new-project",
						"created":     created.Unix(),
						"num_members": 4,
						"topic":       map[string]any{"value": "all things new"},
						"purpose":     map[string]any{"value": "a purpose"},
					},
				},
				"response_metadata": map[string]any{"next_cursor": "page-3"},
			})
		},
	})

	c := New("xoxb-test", WithAPIURL(srv.URL))
	page, err := c.ListChannels(context.Background(), ListChannelsRequest{
		Cursor:          "page-2",
		ExcludeArchived: true,
		Limit:           100,
		Types:           []string{PublicChannel},
	})
	if err != nil {
		t.Fatalf("ListChannels() error: %v", err)
	}

	if page.NextCursor != "page-3" {
		t.Errorf("NextCursor = %q, want page-3", page.NextCursor)
	}
	if len(page.Channels) != 1 {
		t.Fatalf("got %d channels, want 1", len(page.Channels))
	}
	ch := page.Channels[0]
	if ch.Name != "new-project" || ch.ID != "C1" {
		t.Errorf("channel = %+v", ch)
	}
	if !ch.Created.Equal(created) {
		t.Errorf("Created = %v, want %v", ch.Created, created)
	}
	if ch.NumMembers != 4 {
		t.Errorf("NumMembers = %d, want 4", ch.NumMembers)
	}
	if ch.Topic != "all things new" || ch.Purpose != "a purpose" {
		t.Errorf("topic/purpose = %q/%q", ch.Topic, ch.Purpose)
	}
}

func TestListChannels_EnvelopeError(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"conversations.list": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"ok": false, "error": "invalid_auth"})
		},
	})

	c := New("xoxb-bad", WithAPIURL(srv.URL))
	_, err := c.ListChannels(context.Background(), ListChannelsRequest{Cursor: "abc"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("ListChannels() error = %v, want *APIError", err)
	}
	if apiErr.Code != "invalid_auth" {
		t.Errorf("Code = %q, want invalid_auth", apiErr.Code)
	}
	if apiErr.Cursor != "abc" {
		t.Errorf("Cursor = %q, want abc", apiErr.Cursor)
	}
	if apiErr.Method != "conversations.list" {
		t.Errorf("Method = %q", apiErr.Method)
	}
	if apiErr.Response == nil {
		t.Error("Response should carry the raw envelope")
	}
	if !strings.Contains(err.Error(), `cursor "abc"`) {
		t.Errorf("error message %q should mention the cursor", err.Error())
	}
}

func TestListChannels_HTTPErrorIsNotAPIError(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"conversations.list": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		},
	})

	c := New("xoxb-test", WithAPIURL(srv.URL))
	_, err := c.ListChannels(context.Background(), ListChannelsRequest{})
	if err == nil {
		t.Fatal("expected error for HTTP 500")
	}
	if IsAPIError(err) {
		t.Errorf("HTTP failure should not be an *APIError: %v", err)
	}
}

func TestPostMessage(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"chat.postMessage": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Form.Get("channel"); got != "#new-channels" {
				t.Errorf("channel = %q, want #new-channels", got)
			}
			blocks := r.Form.Get("blocks")
			if !strings.Contains(blocks, `"mrkdwn"`) || !strings.Contains(blocks, "There was 1 new channel") {
				t.Errorf("blocks = %s", blocks)
			}
			writeJSON(w, map[string]any{"ok": true, "channel": "C9", "ts": "1700000000.000100"})
		},
	})

	c := New("xoxb-test", WithAPIURL(srv.URL))
	if err := c.PostMessage(context.Background(), "#new-channels", "There was 1 new channel created recently! :tada:"); err != nil {
		t.Fatalf("PostMessage() error: %v", err)
	}
}

func TestPostMessage_EnvelopeError(t *testing.T) {
	srv := newTestServer(t, map[string]http.HandlerFunc{
		"chat.postMessage": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]any{"ok": false, "error": "channel_not_found"})
		},
	})

	c := New("xoxb-test", WithAPIURL(srv.URL))
	err := c.PostMessage(context.Background(), "#missing", "hi")
	if got := ErrorCode(err); got != "channel_not_found" {
		t.Errorf("ErrorCode() = %q, want channel_not_found (err: %v)", got, err)
	}
}

func TestWithAPIURL_AddsTrailingSlash(t *testing.T) {
	c := &Client{}
	WithAPIURL("http://localhost:1234/api")(c)
	if c.apiURL != "http://localhost:1234/api/" {
		t.Errorf("apiURL = %q", c.apiURL)
	}
}
