package live

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"meridian/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// streamServer accepts one WebSocket connection, writes the given events, and
// closes cleanly.
func streamServer(t *testing.T, events []Event) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("accepting websocket: %v", err)
			return
		}
		ctx := r.Context()
		for _, evt := range events {
			if err := wsjson.Write(ctx, conn, evt); err != nil {
				t.Errorf("writing event: %v", err)
				return
			}
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}))
}

func TestSyncAppliesEventsToStore(t *testing.T) {
	events := []Event{
		{Type: "status", Status: "running"},
		{Type: "agent_status", Agent: "Market Analyst", Status: "in_progress"},
		{Type: "message", MessageType: session.MessageReasoning, Content: "scanning momentum", Agent: "Market Analyst"},
		{Type: "tool_call", ToolName: "get_indicators", Args: `{"symbol":"AAPL"}`, Agent: "Market Analyst"},
		{Type: "report", Section: string(session.SectionMarket), Agent: "Market Analyst", Content: "uptrend intact"},
		{Type: "agent_status", Agent: "Market Analyst", Status: "completed"},
	}
	srv := streamServer(t, events)
	defer srv.Close()

	store := session.NewStore(nil, testLogger())
	c := NewClient("ws"+srv.URL[len("http"):], srv.Client(), store, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Sync(ctx); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}

	snap := store.Snapshot()
	if snap.Status != session.StatusRunning {
		t.Errorf("Status = %q, want running", snap.Status)
	}
	if snap.Agents["Market Analyst"] != session.AgentCompleted {
		t.Errorf("agent status = %q, want completed", snap.Agents["Market Analyst"])
	}
	if snap.LLMCalls != 1 {
		t.Errorf("LLMCalls = %d, want 1 (one reasoning message)", snap.LLMCalls)
	}
	if snap.ToolCount != 1 || len(snap.ToolCalls) != 1 || snap.ToolCalls[0].ToolName != "get_indicators" {
		t.Errorf("tool calls = %+v", snap.ToolCalls)
	}
	report, ok := snap.Reports[session.SectionMarket]
	if !ok || report.Content != "uptrend intact" {
		t.Errorf("market report = %+v", report)
	}
	// Two agent_status events synthesize two system messages on top of the
	// streamed reasoning message.
	if len(snap.Messages) != 3 {
		t.Errorf("len(Messages) = %d, want 3", len(snap.Messages))
	}
}

func TestSyncDropsEventsForOtherSessions(t *testing.T) {
	srv := streamServer(t, []Event{
		{Type: "report", SessionID: "someone-else", Section: string(session.SectionNews), Content: "ignored"},
	})
	defer srv.Close()

	store := session.NewStore(nil, testLogger())
	c := NewClient("ws"+srv.URL[len("http"):], srv.Client(), store, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Sync(ctx); err != nil {
		t.Fatalf("Sync returned error: %v", err)
	}
	if len(store.Snapshot().Reports) != 0 {
		t.Error("report for another session should have been dropped")
	}
}

func TestSyncFailsWhenServerUnreachable(t *testing.T) {
	store := session.NewStore(nil, testLogger())
	c := NewClient("ws://127.0.0.1:1/stream", http.DefaultClient, store, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Sync(ctx); err == nil {
		t.Error("Sync should fail when the endpoint is unreachable")
	}
}
