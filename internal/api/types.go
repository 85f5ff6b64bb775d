package api

// User identifies the authenticated account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// StartRequest is the analysis configuration sent to POST /analysis/start.
type StartRequest struct {
	Ticker             string   `json:"ticker"`
	AnalysisDate       string   `json:"analysis_date"`
	Analysts           []string `json:"analysts"`
	ResearchDepth      int      `json:"research_depth"`
	LLMProvider        string   `json:"llm_provider"`
	QuickModel         string   `json:"shallow_thinker"`
	DeepModel          string   `json:"deep_thinker"`
	CustomInstructions string   `json:"custom_instructions,omitempty"`
}

// StartResponse is returned when an analysis session is accepted.
type StartResponse struct {
	SessionID string `json:"session_id"`
	CreatedAt string `json:"created_at"`
}

// ControlRequest drives POST /analysis/control.
type ControlRequest struct {
	SessionID string `json:"session_id"`
	Action    string `json:"action"` // stop | pause | resume
}

// SnapshotMessage is one log entry in a session snapshot.
type SnapshotMessage struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Content   string `json:"content"`
	Agent     string `json:"agent,omitempty"`
}

// SnapshotToolCall is one tool invocation record in a session snapshot.
type SnapshotToolCall struct {
	Timestamp string `json:"timestamp"`
	ToolName  string `json:"tool_name"`
	Args      string `json:"args,omitempty"`
	Agent     string `json:"agent,omitempty"`
}

// SnapshotReport is one report section in a session snapshot.
type SnapshotReport struct {
	Section   string `json:"section"`
	Agent     string `json:"agent"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// SessionSnapshot is the server's view of one analysis session, returned by
// both the live and completed endpoints.
type SessionSnapshot struct {
	SessionID    string             `json:"session_id"`
	Ticker       string             `json:"ticker"`
	Status       string             `json:"status"`
	CurrentAgent string             `json:"current_agent,omitempty"`
	Progress     float64            `json:"progress"`
	StartedAt    string             `json:"started_at,omitempty"`
	CompletedAt  string             `json:"completed_at,omitempty"`
	AgentsStatus map[string]string  `json:"agents_status,omitempty"`
	Messages     []SnapshotMessage  `json:"messages,omitempty"`
	ToolCalls    []SnapshotToolCall `json:"tool_calls,omitempty"`
	Reports      []SnapshotReport   `json:"reports,omitempty"`
	LLMCalls     int                `json:"llm_call_count"`
	ToolCount    int                `json:"tool_call_count"`
	Error        string             `json:"error,omitempty"`
}

// SessionSummary is one row in the paginated session history list.
type SessionSummary struct {
	SessionID   string `json:"session_id"`
	Ticker      string `json:"ticker"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	Decision    string `json:"decision,omitempty"`
}

// SessionPage is the paginated response from GET /analysis/sessions.
type SessionPage struct {
	Sessions []SessionSummary `json:"sessions"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PerPage  int              `json:"per_page"`
	Pages    int              `json:"pages"`
	HasNext  bool             `json:"has_next"`
	HasPrev  bool             `json:"has_prev"`
}

// SessionStats aggregates history counts for the dashboard header.
type SessionStats struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	FailedSessions    int     `json:"failed_sessions"`
	AvgDurationSec    float64 `json:"avg_duration_sec"`
}

// IndicatorPoint is one observation in an economic indicator series.
type IndicatorPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// IndicatorSeries is a named economic time series.
type IndicatorSeries struct {
	Indicator string           `json:"indicator"`
	Unit      string           `json:"unit,omitempty"`
	Points    []IndicatorPoint `json:"points"`
}

// EconomicEvent is a dated calendar marker with severity classification.
type EconomicEvent struct {
	Date     string `json:"date"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Severity string `json:"severity"` // low | medium | high
	Actual   string `json:"actual,omitempty"`
	Forecast string `json:"forecast,omitempty"`
}

// NewsArticle is one backend-served news item with sentiment scoring.
type NewsArticle struct {
	Title       string  `json:"title"`
	Source      string  `json:"source"`
	URL         string  `json:"url,omitempty"`
	PublishedAt string  `json:"published_at"`
	Summary     string  `json:"summary,omitempty"`
	Sentiment   string  `json:"sentiment,omitempty"` // positive | negative | neutral
	Score       float64 `json:"score,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// NewsFeed is a list of articles plus an explicit degradation tag. Degraded
// is true when the backend call failed and the articles were fetched through
// the direct fallback path; callers must be able to tell the two apart.
type NewsFeed struct {
	Articles []NewsArticle
	Degraded bool
	Source   string // "backend" or the fallback source name
}

// OptimizeRequest drives POST /portfolio/optimize.
type OptimizeRequest struct {
	Tickers    []string `json:"tickers"`
	Objective  string   `json:"objective"` // max_sharpe | min_volatility | risk_parity
	Start      string   `json:"start_date"`
	End        string   `json:"end_date"`
	RiskFree   float64  `json:"risk_free_rate,omitempty"`
	MaxWeight  float64  `json:"max_weight,omitempty"`
	Constraint string   `json:"constraint,omitempty"`
}

// OptimizeResult is the backend's optimized allocation.
type OptimizeResult struct {
	Weights        map[string]float64 `json:"weights"`
	ExpectedReturn float64            `json:"expected_return"`
	Volatility     float64            `json:"volatility"`
	SharpeRatio    float64            `json:"sharpe_ratio"`
}

// WalkForwardRequest drives POST /portfolio/backtest/walk-forward.
type WalkForwardRequest struct {
	Tickers      []string `json:"tickers"`
	Objective    string   `json:"objective"`
	Start        string   `json:"start_date"`
	End          string   `json:"end_date"`
	WindowMonths int      `json:"window_months"`
	StepMonths   int      `json:"step_months"`
}

// EquityPoint is one point on a backtest equity curve.
type EquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

// WalkForwardResult summarizes a walk-forward backtest.
type WalkForwardResult struct {
	TotalReturn float64       `json:"total_return"`
	SharpeRatio float64       `json:"sharpe_ratio"`
	MaxDrawdown float64       `json:"max_drawdown"`
	Windows     int           `json:"windows"`
	EquityCurve []EquityPoint `json:"equity_curve"`
}

// SavedPortfolio is a user-saved ticker basket.
type SavedPortfolio struct {
	ID      string             `json:"id,omitempty"`
	Name    string             `json:"name"`
	Tickers []string           `json:"tickers"`
	Weights map[string]float64 `json:"weights,omitempty"`
}

// StockMatch is one result from the stock search endpoint.
type StockMatch struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type,omitempty"`
	Exchange    string `json:"exchange,omitempty"`
}

// RecommendationTrend is one month of analyst recommendation counts.
type RecommendationTrend struct {
	Period     string `json:"period"`
	StrongBuy  int    `json:"strong_buy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strong_sell"`
}

// EarningsSurprise is one quarter's actual-vs-estimate earnings.
type EarningsSurprise struct {
	Period   string  `json:"period"`
	Actual   float64 `json:"actual"`
	Estimate float64 `json:"estimate"`
	Surprise float64 `json:"surprise_pct"`
}
