package api

import (
	"context"
	"fmt"
	"strconv"

	"meridian/internal/rest"
)

// Control actions accepted by the backend.
const (
	ActionStop   = "stop"
	ActionPause  = "pause"
	ActionResume = "resume"
)

// AnalysisAPI wraps the /analysis endpoint group: starting and controlling
// multi-agent analysis sessions and reading their live or completed state.
type AnalysisAPI struct {
	c *rest.Client
}

// NewAnalysisAPI creates the analysis module on the given client.
func NewAnalysisAPI(c *rest.Client) *AnalysisAPI {
	return &AnalysisAPI{c: c}
}

// Start launches a new analysis session and returns its id and server-side
// creation time.
func (a *AnalysisAPI) Start(ctx context.Context, req StartRequest) (*StartResponse, error) {
	var env envelope[StartResponse]
	if err := a.c.Post(ctx, "/analysis/start", req, &env); err != nil {
		return nil, err
	}
	resp, err := unwrap(env, "starting analysis")
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Control sends a stop/pause/resume action for a session.
func (a *AnalysisAPI) Control(ctx context.Context, sessionID, action string) error {
	var env envelope[struct{}]
	if err := a.c.Post(ctx, "/analysis/control", ControlRequest{SessionID: sessionID, Action: action}, &env); err != nil {
		return err
	}
	_, err := unwrap(env, fmt.Sprintf("%s analysis", action))
	return err
}

// Live returns the in-flight snapshot for a running session.
func (a *AnalysisAPI) Live(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	var env envelope[SessionSnapshot]
	if err := a.c.Get(ctx, "/analysis/"+sessionID+"/live", nil, &env); err != nil {
		return nil, err
	}
	snap, err := unwrap(env, "fetching live session")
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Completed returns the final snapshot for a finished session.
func (a *AnalysisAPI) Completed(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	var env envelope[SessionSnapshot]
	if err := a.c.Get(ctx, "/analysis/"+sessionID, nil, &env); err != nil {
		return nil, err
	}
	snap, err := unwrap(env, "fetching session")
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Sessions returns one page of the session history list.
func (a *AnalysisAPI) Sessions(ctx context.Context, page, perPage int) (*SessionPage, error) {
	query := map[string]string{}
	if page > 0 {
		query["page"] = strconv.Itoa(page)
	}
	if perPage > 0 {
		query["per_page"] = strconv.Itoa(perPage)
	}
	var out SessionPage
	if err := a.c.Get(ctx, "/analysis/sessions", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns aggregate history statistics.
func (a *AnalysisAPI) Stats(ctx context.Context) (*SessionStats, error) {
	var env envelope[SessionStats]
	if err := a.c.Get(ctx, "/analysis/stats", nil, &env); err != nil {
		return nil, err
	}
	stats, err := unwrap(env, "fetching session stats")
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Delete removes a session from the backend history.
func (a *AnalysisAPI) Delete(ctx context.Context, sessionID string) error {
	return a.c.Delete(ctx, "/analysis/"+sessionID, nil)
}
