package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meridian/internal/news"
	"meridian/internal/rest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testClient(t *testing.T, handler http.Handler) *rest.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return rest.NewClient(srv.URL, 5*time.Second, testLogger())
}

func TestCategorizedBackendPath(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/news/categorized" || r.URL.Query().Get("symbol") != "AAPL" {
			t.Errorf("unexpected request: %s %s", r.URL.Path, r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[{"title":"Apple ships","source":"wire","published_at":"2024-01-15T10:00:00Z"}]}`))
	}))

	n := NewNewsAPI(client, nil, testLogger())
	feed, err := n.Categorized(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Categorized returned error: %v", err)
	}
	if feed.Degraded {
		t.Error("feed should not be degraded when the backend answers")
	}
	if feed.Source != "backend" {
		t.Errorf("Source = %q, want backend", feed.Source)
	}
	if len(feed.Articles) != 1 || feed.Articles[0].Title != "Apple ships" {
		t.Errorf("Articles = %+v", feed.Articles)
	}
}

func TestCategorizedFallsBackWhenBackendDown(t *testing.T) {
	// Backend that refuses everything.
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"unavailable"}`, http.StatusServiceUnavailable)
	}))

	rssDate := time.Now().Add(-24 * time.Hour).Format(time.RFC1123Z)
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(formatRSS(rssDate)))
	}))
	defer google.Close()

	fallback := news.NewFetcher("", "", testLogger())
	fallback.GoogleBase = google.URL

	n := NewNewsAPI(client, fallback, testLogger())
	feed, err := n.Categorized(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Categorized returned error: %v", err)
	}
	if !feed.Degraded {
		t.Error("feed should be tagged degraded on the fallback path")
	}
	if feed.Source != "direct" {
		t.Errorf("Source = %q, want direct", feed.Source)
	}
	if len(feed.Articles) != 1 || feed.Articles[0].Title != "Apple rallies" {
		t.Errorf("Articles = %+v", feed.Articles)
	}
}

func formatRSS(date string) string {
	return `<?xml version="1.0"?>
<rss version="2.0"><channel>
  <item>
    <title>Apple rallies - Reuters</title>
    <pubDate>` + date + `</pubDate>
    <description>direct article</description>
  </item>
</channel></rss>`
}

func TestCategorizedReturnsOriginalErrorWithoutFallback(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"unavailable"}`, http.StatusServiceUnavailable)
	}))

	n := NewNewsAPI(client, nil, testLogger())
	if _, err := n.Categorized(context.Background(), "AAPL"); !rest.IsStatus(err, http.StatusServiceUnavailable) {
		t.Errorf("err = %v, want the backend 503", err)
	}
}

func TestBySentimentHasNoFallback(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"unavailable"}`, http.StatusServiceUnavailable)
	}))

	// Even with a fallback configured, sentiment queries must fail loudly.
	fallback := news.NewFetcher("", "", testLogger())
	n := NewNewsAPI(client, fallback, testLogger())
	if _, err := n.BySentiment(context.Background(), "positive"); err == nil {
		t.Error("BySentiment should not degrade to unscored articles")
	}
}

func TestEnvelopeFailureSurfacesMessage(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"message":"symbol not covered"}`))
	}))

	n := NewNewsAPI(client, nil, testLogger())
	_, err := n.BySentiment(context.Background(), "positive")
	if err == nil || err.Error() != "fetching positive news: symbol not covered" {
		t.Errorf("err = %v, want envelope message", err)
	}
}
