package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"meridian/internal/api"
	"meridian/internal/session"
)

// RenderSession renders a one-screen status view of an active or finished
// session: header, progress bar, agent states and latest messages.
func RenderSession(s *session.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  [%s]  %s\n", s.Ticker, s.Status, s.ID)
	fmt.Fprintf(&b, "%s\n", ProgressBar(int(s.Progress), 30))
	if s.CurrentAgent != "" {
		fmt.Fprintf(&b, "current: %s\n", s.CurrentAgent)
	}
	if d := s.Duration(); d > 0 {
		fmt.Fprintf(&b, "duration: %s\n", FormatDuration(d))
	}
	fmt.Fprintf(&b, "llm calls: %s  tool calls: %s\n",
		FormatInt(s.LLMCalls), FormatInt(s.ToolCount))
	if s.LastError != "" {
		fmt.Fprintf(&b, "error: %s\n", s.LastError)
	}

	if len(s.Agents) > 0 {
		b.WriteString("\nagents:\n")
		names := make([]string, 0, len(s.Agents))
		for name := range s.Agents {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "  %-22s %s\n", name, agentMark(s.Agents[name]))
		}
	}

	if n := len(s.Messages); n > 0 {
		b.WriteString("\nrecent:\n")
		start := n - 5
		if start < 0 {
			start = 0
		}
		for _, m := range s.Messages[start:] {
			fmt.Fprintf(&b, "  %s [%s] %s\n",
				m.Timestamp.Format("15:04:05"), m.Type, m.Content)
		}
	}
	return b.String()
}

func agentMark(st session.AgentStatus) string {
	switch st {
	case session.AgentCompleted:
		return "done"
	case session.AgentInProgress:
		return "running"
	case session.AgentError:
		return "ERROR"
	default:
		return "-"
	}
}

// RenderReports renders every populated report section in pipeline order.
func RenderReports(s *session.Session) string {
	order := []session.ReportSection{
		session.SectionMarket,
		session.SectionSentiment,
		session.SectionNews,
		session.SectionFundamentals,
		session.SectionResearch,
		session.SectionTraderPlan,
		session.SectionDecision,
	}

	var b strings.Builder
	for _, sec := range order {
		r, ok := s.Reports[sec]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "== %s (%s) ==\n%s\n\n", sec, r.Agent, r.Content)
	}
	if b.Len() == 0 {
		return "no reports yet\n"
	}
	return b.String()
}

// RenderHistory renders session summaries as a fixed-width table.
func RenderHistory(page *api.SessionPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-14s %-8s %-10s %-20s %s\n",
		"SESSION", "TICKER", "STATUS", "CREATED", "DECISION")
	for _, s := range page.Sessions {
		fmt.Fprintf(&b, "%-14s %-8s %-10s %-20s %s\n",
			shorten(s.SessionID, 14), s.Ticker, s.Status, s.CreatedAt, s.Decision)
	}
	fmt.Fprintf(&b, "page %d/%d (%s sessions)\n",
		page.Page, page.Pages, FormatInt(page.Total))
	return b.String()
}

// RenderStats renders the aggregate history counters.
func RenderStats(st *api.SessionStats) string {
	avg := time.Duration(st.AvgDurationSec * float64(time.Second))
	return fmt.Sprintf("sessions: %s  completed: %s  failed: %s  avg duration: %s\n",
		FormatInt(st.TotalSessions), FormatInt(st.CompletedSessions),
		FormatInt(st.FailedSessions), FormatDuration(avg))
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
