// Package live mirrors server-side session events into the local session
// store over a WebSocket stream, providing lower-latency updates than the
// polling loop. Polling remains the default; the stream is opt-in and the
// poller's sequence rule still protects against the two racing.
package live

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"meridian/internal/session"
)

// Event is one server-pushed session update.
type Event struct {
	Type        string `json:"type"` // message | tool_call | agent_status | report | status
	SessionID   string `json:"session_id"`
	Agent       string `json:"agent,omitempty"`
	Status      string `json:"status,omitempty"`
	MessageType string `json:"message_type,omitempty"`
	Content     string `json:"content,omitempty"`
	ToolName    string `json:"tool_name,omitempty"`
	Args        string `json:"args,omitempty"`
	Section     string `json:"section,omitempty"`
}

// Client connects to the backend's event stream and applies events to a
// session store, keeping it an automatic mirror of the server-side session.
type Client struct {
	url   string
	hc    *http.Client
	store *session.Store
	log   *slog.Logger
}

// NewClient creates a stream client. hc should be the rest.Client's
// underlying http.Client so the dial carries the session cookies.
func NewClient(url string, hc *http.Client, store *session.Store, log *slog.Logger) *Client {
	return &Client{url: url, hc: hc, store: store, log: log}
}

// Sync connects to the stream and applies events to the store. It blocks
// until ctx is cancelled or the server closes the stream.
func (c *Client) Sync(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{
		HTTPClient: c.hc,
	})
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", c.url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c.log.Info("connected to session event stream", "url", c.url)

	for {
		var evt Event
		if err := wsjson.Read(ctx, conn, &evt); err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading event: %w", err)
		}
		c.apply(evt)
	}
}

// apply routes one event to the matching store reducer. Events for other
// sessions are dropped.
func (c *Client) apply(evt Event) {
	if evt.SessionID != "" && evt.SessionID != c.store.CurrentSessionID() {
		return
	}

	switch evt.Type {
	case "message":
		c.store.AddMessage(session.Message{
			Type:    evt.MessageType,
			Content: evt.Content,
			Agent:   evt.Agent,
		})
	case "tool_call":
		c.store.AddToolCall(session.ToolCall{
			ToolName: evt.ToolName,
			Args:     evt.Args,
			Agent:    evt.Agent,
		})
	case "agent_status":
		c.store.UpdateAgentStatus(evt.Agent, session.AgentStatus(evt.Status))
	case "report":
		c.store.UpdateReport(session.ReportSection(evt.Section), evt.Agent, evt.Content)
	case "status":
		status, err := session.ParseStatus(evt.Status)
		if err != nil {
			c.log.Warn("stream reported unknown status", "status", evt.Status)
			return
		}
		c.store.ApplyStatus(status)
	default:
		c.log.Debug("ignoring unknown event type", "type", evt.Type)
	}
}
