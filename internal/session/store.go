package session

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meridian/internal/api"
)

// Store reduces backend responses into a coherent local view of the active
// analysis session and the history list. All methods are safe for concurrent
// use. Network-calling methods never panic: failures are logged, recorded in
// the store's error field for the view layer, and returned.
type Store struct {
	analysis *api.AnalysisAPI
	log      *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	config  Config
	sess    Session
	running bool
	loading bool
	lastErr string
	history []api.SessionSummary
	stats   *api.SessionStats

	// Poll ordering: every refresh takes a sequence number when issued and
	// applies its snapshot only if no later refresh has already applied.
	// Out-of-order responses from overlapping polls are discarded.
	nextSeq    uint64
	appliedSeq uint64
}

// NewStore creates a Store bound to the analysis API module.
func NewStore(analysis *api.AnalysisAPI, log *slog.Logger) *Store {
	return &Store{
		analysis: analysis,
		log:      log,
		now:      time.Now,
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// SetConfig replaces the pending analysis configuration.
func (s *Store) SetConfig(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

// Config returns the pending analysis configuration.
func (s *Store) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// CurrentSessionID returns the active session id, or "" when idle.
func (s *Store) CurrentSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess.ID
}

// IsRunning reports whether an analysis is in flight.
func (s *Store) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// IsLoading reports whether a history/refresh request is in flight.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Error returns the last user-visible error, or "".
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// History returns the last loaded history page.
func (s *Store) History() []api.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.SessionSummary, len(s.history))
	copy(out, s.history)
	return out
}

// Stats returns the last loaded aggregate stats, or nil.
func (s *Store) Stats() *api.SessionStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	st := *s.stats
	return &st
}

// Snapshot returns a copy of the current session state for rendering.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(&s.sess)
}

func copySession(src *Session) Session {
	out := *src
	out.Messages = append([]Message(nil), src.Messages...)
	out.ToolCalls = append([]ToolCall(nil), src.ToolCalls...)
	out.Agents = make(map[string]AgentStatus, len(src.Agents))
	for k, v := range src.Agents {
		out.Agents[k] = v
	}
	out.Reports = make(map[ReportSection]Report, len(src.Reports))
	for k, v := range src.Reports {
		out.Reports[k] = v
	}
	return out
}

// ---------------------------------------------------------------------------
// Lifecycle actions
// ---------------------------------------------------------------------------

// StartAnalysis validates the pending config and launches a new session.
// Validation failures are recorded locally and never reach the network. On
// success all per-session buffers and counters are reset, the new session id
// and server-reported creation time are stored, and two system messages are
// logged (start notice, analyst list).
func (s *Store) StartAnalysis(ctx context.Context) error {
	s.mu.Lock()
	cfg := s.config
	s.mu.Unlock()

	if err := cfg.Validate(); err != nil {
		s.mu.Lock()
		s.lastErr = "invalid analysis config: " + err.Error()
		s.mu.Unlock()
		s.log.Warn("rejected invalid analysis config", "error", err)
		return err
	}

	s.setLoading(true)
	resp, err := s.analysis.Start(ctx, api.StartRequest{
		Ticker:             cfg.Ticker,
		AnalysisDate:       cfg.AnalysisDate,
		Analysts:           cfg.Analysts,
		ResearchDepth:      cfg.ResearchDepth,
		LLMProvider:        cfg.Provider,
		QuickModel:         cfg.QuickModel,
		DeepModel:          cfg.DeepModel,
		CustomInstructions: cfg.CustomInstructions,
	})
	s.setLoading(false)
	if err != nil {
		return s.fail("starting analysis", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	agents := make(map[string]AgentStatus, len(DefaultAgents))
	for _, a := range DefaultAgents {
		agents[a] = AgentPending
	}
	s.sess = Session{
		ID:        resp.SessionID,
		Ticker:    cfg.Ticker,
		Status:    StatusRunning,
		StartedAt: parseTime(resp.CreatedAt, now),
		Agents:    agents,
		Reports:   make(map[ReportSection]Report),
	}
	s.running = true
	s.lastErr = ""
	s.nextSeq = 0
	s.appliedSeq = 0

	s.appendMessageLocked(NewMessage(MessageSystem,
		fmt.Sprintf("Analysis started for %s (session %s)", cfg.Ticker, resp.SessionID), "", now))
	s.appendMessageLocked(NewMessage(MessageSystem,
		"Selected analysts: "+strings.Join(cfg.Analysts, ", "), "", now))

	s.log.Info("analysis started", "ticker", cfg.Ticker, "session_id", resp.SessionID)
	return nil
}

// StopAnalysis requests cancellation of the active session. No-op when idle.
func (s *Store) StopAnalysis(ctx context.Context) error {
	return s.control(ctx, api.ActionStop, StatusCancelled)
}

// PauseAnalysis requests a pause of the active session. No-op when idle.
func (s *Store) PauseAnalysis(ctx context.Context) error {
	return s.control(ctx, api.ActionPause, StatusPaused)
}

// ResumeAnalysis resumes a paused session. No-op when idle.
func (s *Store) ResumeAnalysis(ctx context.Context) error {
	return s.control(ctx, api.ActionResume, StatusRunning)
}

// control sends one control action and applies the expected status
// optimistically; the next refresh confirms or corrects it.
func (s *Store) control(ctx context.Context, action string, optimistic Status) error {
	s.mu.Lock()
	id := s.sess.ID
	s.mu.Unlock()
	if id == "" {
		return nil
	}

	if err := s.analysis.Control(ctx, id, action); err != nil {
		return s.fail(action+" analysis", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyStatusLocked(optimistic)
	s.log.Info("analysis control applied", "session_id", id, "action", action)
	return nil
}

// CompleteAnalysis finalizes local state for a finished session: every agent
// is marked completed, progress is pinned to 100, and the wall-clock
// duration is logged.
func (s *Store) CompleteAnalysis() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for agent := range s.sess.Agents {
		s.sess.Agents[agent] = AgentCompleted
	}
	s.applyStatusLocked(StatusCompleted)
	if s.sess.CompletedAt.IsZero() {
		s.sess.CompletedAt = s.now()
	}
	s.sess.Progress = 100
	s.sess.CurrentAgent = ""

	s.appendMessageLocked(NewMessage(MessageSystem,
		fmt.Sprintf("Analysis complete in %s", s.sess.Duration().Round(time.Second)), "", s.now()))
}

// Reset clears all per-session state back to empty defaults.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *Store) resetLocked() {
	s.sess = Session{}
	s.running = false
	s.nextSeq = 0
	s.appliedSeq = 0
}

// ---------------------------------------------------------------------------
// Log reducers
// ---------------------------------------------------------------------------

// AddMessage appends a log entry, assigning an id and timestamp when absent.
// Reasoning messages bump the locally derived LLM-call counter; the counter
// is reconciled against server truth on every refresh (max wins).
func (s *Store) AddMessage(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg.ID == "" {
		msg = NewMessage(msg.Type, msg.Content, msg.Agent, msg.Timestamp)
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	s.appendMessageLocked(msg)
}

func (s *Store) appendMessageLocked(msg Message) {
	s.sess.Messages = append(s.sess.Messages, msg)
	if msg.Type == MessageReasoning {
		s.sess.LLMCalls++
	}
}

// AddToolCall appends a tool invocation record and bumps the tool counter.
func (s *Store) AddToolCall(tc ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tc.ID == "" {
		tc.ID = uuid.NewString()
	}
	if tc.Timestamp.IsZero() {
		tc.Timestamp = s.now()
	}
	s.sess.ToolCalls = append(s.sess.ToolCalls, tc)
	s.sess.ToolCount++
}

// UpdateAgentStatus writes the per-agent status map, promotes the agent to
// "current" when it enters in_progress, logs a synthetic system message, and
// recomputes overall progress.
func (s *Store) UpdateAgentStatus(agent string, status AgentStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess.Agents == nil {
		s.sess.Agents = make(map[string]AgentStatus)
	}
	s.sess.Agents[agent] = status
	if status == AgentInProgress {
		s.sess.CurrentAgent = agent
	} else if s.sess.CurrentAgent == agent && status == AgentCompleted {
		s.sess.CurrentAgent = ""
	}

	s.appendMessageLocked(NewMessage(MessageSystem,
		fmt.Sprintf("%s: %s", agent, status), agent, s.now()))
	s.recalcProgressLocked()
}

// UpdateReport stores a report section; within a session the latest write
// for a section wins.
func (s *Store) UpdateReport(section ReportSection, agent, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess.Reports == nil {
		s.sess.Reports = make(map[ReportSection]Report)
	}
	s.sess.Reports[section] = Report{
		Section:   section,
		Agent:     agent,
		Content:   content,
		UpdatedAt: s.now(),
	}
}

// ---------------------------------------------------------------------------
// Progress
// ---------------------------------------------------------------------------

// recalcProgressLocked blends two estimates: the fraction of known agents
// completed, and (while running) elapsed minutes times a fixed rate of 10
// points per minute. The agent count can stall on long single-agent steps,
// so the time floor keeps the indicator moving. The max of the two wins,
// clamped to [0,100].
func (s *Store) recalcProgressLocked() {
	agentEst := 0.0
	if n := len(s.sess.Agents); n > 0 {
		done := 0
		for _, st := range s.sess.Agents {
			if st == AgentCompleted {
				done++
			}
		}
		agentEst = math.Round(float64(done) / float64(n) * 100)
	}

	timeEst := 0.0
	if s.running && !s.sess.StartedAt.IsZero() {
		timeEst = s.now().Sub(s.sess.StartedAt).Minutes() * 10
	}

	p := math.Max(agentEst, timeEst)
	p = math.Max(0, math.Min(100, p))
	s.sess.Progress = p
}

// ---------------------------------------------------------------------------
// Refresh / history
// ---------------------------------------------------------------------------

// RefreshCurrent fetches the live snapshot (while running) or the completed
// snapshot (otherwise) and merges it into local state. Each refresh carries
// a sequence number; a response that arrives after a later refresh has
// already applied is discarded, so overlapping polls cannot regress state.
func (s *Store) RefreshCurrent(ctx context.Context) error {
	s.mu.Lock()
	id := s.sess.ID
	running := s.running
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()
	if id == "" {
		return nil
	}

	var snap *api.SessionSnapshot
	var err error
	if running {
		snap, err = s.analysis.Live(ctx, id)
	} else {
		snap, err = s.analysis.Completed(ctx, id)
	}
	if err != nil {
		return s.fail("refreshing session", err)
	}

	s.applySnapshot(seq, snap)
	return nil
}

// applySnapshot merges one server snapshot into local state field-by-field.
func (s *Store) applySnapshot(seq uint64, snap *api.SessionSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq <= s.appliedSeq {
		s.log.Debug("discarding stale poll response", "seq", seq, "applied", s.appliedSeq)
		return
	}
	if snap.SessionID != "" && snap.SessionID != s.sess.ID {
		s.log.Debug("discarding snapshot for inactive session", "session_id", snap.SessionID)
		return
	}
	s.appliedSeq = seq

	if snap.Status != "" {
		if status, err := ParseStatus(snap.Status); err != nil {
			s.log.Warn("server reported unknown status", "status", snap.Status)
		} else {
			s.applyStatusLocked(status)
		}
	}

	if snap.CurrentAgent != "" {
		s.sess.CurrentAgent = snap.CurrentAgent
	}
	if s.sess.StartedAt.IsZero() && snap.StartedAt != "" {
		s.sess.StartedAt = parseTime(snap.StartedAt, time.Time{})
	}
	if s.sess.CompletedAt.IsZero() && snap.CompletedAt != "" {
		s.sess.CompletedAt = parseTime(snap.CompletedAt, time.Time{})
	}

	// agents_status is merged by key: the server may report only the agents
	// that changed since the last poll.
	if len(snap.AgentsStatus) > 0 {
		if s.sess.Agents == nil {
			s.sess.Agents = make(map[string]AgentStatus)
		}
		for agent, raw := range snap.AgentsStatus {
			switch st := AgentStatus(raw); st {
			case AgentPending, AgentInProgress, AgentCompleted, AgentError:
				s.sess.Agents[agent] = st
			default:
				s.log.Warn("server reported unknown agent status", "agent", agent, "status", raw)
			}
		}
	}

	// The server message log is cumulative; adopt it when it is at least as
	// long as ours so locally synthesized notices are not lost mid-run.
	if len(snap.Messages) >= len(s.sess.Messages) {
		msgs := make([]Message, 0, len(snap.Messages))
		for _, m := range snap.Messages {
			msgs = append(msgs, NewMessage(m.Type, m.Content, m.Agent, parseTime(m.Timestamp, time.Time{})))
		}
		s.sess.Messages = msgs
	}
	if len(snap.ToolCalls) >= len(s.sess.ToolCalls) {
		tcs := make([]ToolCall, 0, len(snap.ToolCalls))
		for _, tc := range snap.ToolCalls {
			tcs = append(tcs, ToolCall{
				ID:        uuid.NewString(),
				Timestamp: parseTime(tc.Timestamp, time.Time{}),
				ToolName:  tc.ToolName,
				Args:      tc.Args,
				Agent:     tc.Agent,
			})
		}
		s.sess.ToolCalls = tcs
	}

	for _, r := range snap.Reports {
		if s.sess.Reports == nil {
			s.sess.Reports = make(map[ReportSection]Report)
		}
		s.sess.Reports[ReportSection(r.Section)] = Report{
			Section:   ReportSection(r.Section),
			Agent:     r.Agent,
			Content:   r.Content,
			UpdatedAt: parseTime(r.Timestamp, s.now()),
		}
	}

	// Server counters are authoritative; the locally derived count can lag
	// but never exceeds the truth, so max reconciles the two.
	if snap.LLMCalls > s.sess.LLMCalls {
		s.sess.LLMCalls = snap.LLMCalls
	}
	if snap.ToolCount > s.sess.ToolCount {
		s.sess.ToolCount = snap.ToolCount
	}
	if snap.Error != "" {
		s.sess.LastError = snap.Error
	}

	s.recalcProgressLocked()
	if snap.Progress > s.sess.Progress {
		s.sess.Progress = math.Min(100, snap.Progress)
	}
}

// ApplyStatus applies a pushed status change through the transition table.
// Used by the live event stream; polling goes through applySnapshot.
func (s *Store) ApplyStatus(to Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyStatusLocked(to)
}

// applyStatusLocked consults the transition table before accepting a status
// change; disallowed transitions are logged and dropped.
func (s *Store) applyStatusLocked(to Status) {
	from := s.sess.Status
	if !CanTransition(from, to) {
		s.log.Warn("rejected disallowed status transition", "from", from, "to", to)
		return
	}
	s.sess.Status = to
	s.running = to == StatusRunning || to == StatusPending
	if to.Terminal() {
		if s.sess.CompletedAt.IsZero() {
			s.sess.CompletedAt = s.now()
		}
		s.sess.CurrentAgent = ""
	}
}

// LoadHistory fetches one page of the session list and the aggregate stats
// in parallel, joining both before updating state.
func (s *Store) LoadHistory(ctx context.Context, page, perPage int) error {
	s.setLoading(true)
	defer s.setLoading(false)

	var (
		wg        sync.WaitGroup
		pageResp  *api.SessionPage
		statsResp *api.SessionStats
		pageErr   error
		statsErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		pageResp, pageErr = s.analysis.Sessions(ctx, page, perPage)
	}()
	go func() {
		defer wg.Done()
		statsResp, statsErr = s.analysis.Stats(ctx)
	}()
	wg.Wait()

	if pageErr != nil {
		return s.fail("loading analysis history", pageErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = pageResp.Sessions
	if statsErr == nil {
		s.stats = statsResp
	} else {
		// Stats are decorative; a failure there should not blank the list.
		s.log.Warn("loading session stats failed", "error", statsErr)
	}
	s.lastErr = ""
	return nil
}

// DeleteSession removes a session from the backend and from the local
// history list. Deleting the active session fully resets live state.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.analysis.Delete(ctx, id); err != nil {
		return s.fail("deleting session", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.history[:0]
	for _, entry := range s.history {
		if entry.SessionID != id {
			kept = append(kept, entry)
		}
	}
	s.history = kept
	if s.sess.ID == id {
		s.resetLocked()
	}
	s.log.Info("session deleted", "session_id", id)
	return nil
}

// ---------------------------------------------------------------------------
// Error containment
// ---------------------------------------------------------------------------

// fail records a user-visible error and returns the wrapped cause. Store
// actions never panic into the caller; the view observes Error().
func (s *Store) fail(op string, err error) error {
	s.mu.Lock()
	s.lastErr = op + ": " + err.Error()
	s.mu.Unlock()
	s.log.Error(op+" failed", "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// parseTime accepts the timestamp layouts the backend emits, falling back to
// the provided default when none match.
func parseTime(v string, fallback time.Time) time.Time {
	if v == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return fallback
}
