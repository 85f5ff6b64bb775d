// Package session tracks zero or one active analysis session plus a bounded
// history list, reducing asynchronous backend responses into a coherent view
// for the CLI. It is the client-side mirror of the backend's multi-agent
// analysis pipeline.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an analysis session. It is a closed set:
// server-reported strings are parsed with ParseStatus and changes are checked
// against the transition table before being applied.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// ParseStatus validates an untrusted status string from the backend.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusRunning, StatusPaused, StatusCompleted, StatusFailed, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown session status %q", s)
}

// AgentStatus is the per-agent progress state. Unlike Status it is not a
// state machine: the backend may legitimately report any value at any time
// (agents can be retried), so writes overwrite unconditionally.
type AgentStatus string

const (
	AgentPending    AgentStatus = "pending"
	AgentInProgress AgentStatus = "in_progress"
	AgentCompleted  AgentStatus = "completed"
	AgentError      AgentStatus = "error"
)

// DefaultAgents is the roster of the backend's analysis pipeline, used to
// seed the per-agent status map when a session starts.
var DefaultAgents = []string{
	"Market Analyst",
	"Social Analyst",
	"News Analyst",
	"Fundamentals Analyst",
	"Bull Researcher",
	"Bear Researcher",
	"Research Manager",
	"Trader",
	"Risky Analyst",
	"Neutral Analyst",
	"Safe Analyst",
	"Portfolio Manager",
}

// Message types observed in the session log.
const (
	MessageSystem    = "system"
	MessageReasoning = "reasoning"
	MessageTool      = "tool"
	MessageError     = "error"
)

// Message is an append-only log entry in a session.
type Message struct {
	ID        string
	Timestamp time.Time
	Type      string
	Content   string
	Agent     string
}

// NewMessage builds a Message with a generated id and the given content.
func NewMessage(msgType, content, agent string, at time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Timestamp: at,
		Type:      msgType,
		Content:   content,
		Agent:     agent,
	}
}

// ToolCall is one recorded tool invocation.
type ToolCall struct {
	ID        string
	Timestamp time.Time
	ToolName  string
	Args      string
	Agent     string
}

// ReportSection names one slice of analysis output. Within a session each
// section is keyed uniquely; the latest write wins.
type ReportSection string

const (
	SectionMarket       ReportSection = "market_report"
	SectionSentiment    ReportSection = "sentiment_report"
	SectionNews         ReportSection = "news_report"
	SectionFundamentals ReportSection = "fundamentals_report"
	SectionResearch     ReportSection = "investment_plan"
	SectionTraderPlan   ReportSection = "trader_investment_plan"
	SectionDecision     ReportSection = "final_trade_decision"
)

// Report is the content of one report section.
type Report struct {
	Section   ReportSection
	Agent     string
	Content   string
	UpdatedAt time.Time
}

// Session is the client-side projection of one analysis run.
type Session struct {
	ID           string
	Ticker       string
	Status       Status
	CurrentAgent string
	Progress     float64 // 0–100
	StartedAt    time.Time
	CompletedAt  time.Time
	Messages     []Message
	ToolCalls    []ToolCall
	Agents       map[string]AgentStatus
	Reports      map[ReportSection]Report
	LLMCalls     int
	ToolCount    int
	LastError    string
}

// Duration returns wall-clock session duration, or 0 when either timestamp
// is missing.
func (s *Session) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.CompletedAt.IsZero() {
		return 0
	}
	return s.CompletedAt.Sub(s.StartedAt)
}

// Config is the analysis configuration submitted on start.
type Config struct {
	Ticker             string
	AnalysisDate       string
	Analysts           []string
	ResearchDepth      int
	Provider           string
	QuickModel         string
	DeepModel          string
	CustomInstructions string
}

// Validate checks all fields a start request needs. Validation failures
// never reach the network.
func (c *Config) Validate() error {
	if c.Ticker == "" {
		return errors.New("ticker is required")
	}
	if c.AnalysisDate == "" {
		return errors.New("analysis date is required")
	}
	if len(c.Analysts) == 0 {
		return errors.New("at least one analyst must be selected")
	}
	if c.ResearchDepth <= 0 {
		return errors.New("research depth must be positive")
	}
	if c.Provider == "" {
		return errors.New("llm provider is required")
	}
	if c.QuickModel == "" {
		return errors.New("quick-thinking model is required")
	}
	if c.DeepModel == "" {
		return errors.New("deep-thinking model is required")
	}
	return nil
}

// IsValid reports whether the config would pass Validate.
func (c *Config) IsValid() bool {
	return c.Validate() == nil
}
