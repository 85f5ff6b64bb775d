package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"meridian/internal/rest"
)

func TestHistoricalCachesResponses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"indicator":"cpi","unit":"index","points":[{"date":"2024-01-01","value":308.4}]}}`))
	}))
	defer srv.Close()

	econ := NewEconomicAPI(rest.NewClient(srv.URL, 5*time.Second, testLogger()))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		series, err := econ.Historical(ctx, "cpi", "2024-01-01", "2024-12-31")
		if err != nil {
			t.Fatalf("Historical returned error: %v", err)
		}
		if len(series.Points) != 1 || series.Points[0].Value != 308.4 {
			t.Fatalf("series = %+v", series)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("backend hit %d times, want 1 (cached)", got)
	}

	// A different range is a different cache key.
	if _, err := econ.Historical(ctx, "cpi", "2023-01-01", "2023-12-31"); err != nil {
		t.Fatalf("Historical returned error: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("backend hit %d times, want 2", got)
	}
}

func TestEventsPassSeverityFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("severity"); got != "high" {
			t.Errorf("severity = %q, want high", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"date":"2024-03-20","name":"FOMC rate decision","type":"fomc","severity":"high"}]}`))
	}))
	defer srv.Close()

	econ := NewEconomicAPI(rest.NewClient(srv.URL, 5*time.Second, testLogger()))
	events, err := econ.Events(context.Background(), "2024-03-01", "2024-03-31", "high")
	if err != nil {
		t.Fatalf("Events returned error: %v", err)
	}
	if len(events) != 1 || events[0].Name != "FOMC rate decision" {
		t.Errorf("events = %+v", events)
	}
}
