package api

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"meridian/internal/news"
	"meridian/internal/rest"
)

// NewsAPI wraps the /news endpoint group. When a backend call fails and a
// fallback fetcher is configured, articles are fetched directly from public
// sources and the returned feed is tagged Degraded so the caller can render
// the difference.
type NewsAPI struct {
	c        *rest.Client
	fallback *news.Fetcher
	log      *slog.Logger
}

// NewNewsAPI creates the news module. fallback may be nil to disable the
// degraded path.
func NewNewsAPI(c *rest.Client, fallback *news.Fetcher, log *slog.Logger) *NewsAPI {
	return &NewsAPI{c: c, fallback: fallback, log: log}
}

// Categorized returns the category-bucketed feed for a symbol.
func (n *NewsAPI) Categorized(ctx context.Context, symbol string) (*NewsFeed, error) {
	var env envelope[[]NewsArticle]
	err := n.c.Get(ctx, "/news/categorized", map[string]string{"symbol": symbol}, &env)
	if err == nil {
		articles, uerr := unwrap(env, "fetching categorized news")
		if uerr == nil {
			return &NewsFeed{Articles: articles, Source: "backend"}, nil
		}
		err = uerr
	}
	return n.degrade(ctx, symbol, err)
}

// Search returns articles matching a free-text query.
func (n *NewsAPI) Search(ctx context.Context, query string, limit int) (*NewsFeed, error) {
	params := map[string]string{"q": query}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	var env envelope[[]NewsArticle]
	err := n.c.Get(ctx, "/news/search", params, &env)
	if err == nil {
		articles, uerr := unwrap(env, "searching news")
		if uerr == nil {
			return &NewsFeed{Articles: articles, Source: "backend"}, nil
		}
		err = uerr
	}
	return n.degrade(ctx, query, err)
}

// BySentiment returns articles filtered by sentiment bucket
// (positive/negative/neutral). No fallback: sentiment scoring only exists on
// the backend, so a degraded feed cannot satisfy the filter.
func (n *NewsAPI) BySentiment(ctx context.Context, sentiment string) ([]NewsArticle, error) {
	var env envelope[[]NewsArticle]
	if err := n.c.Get(ctx, "/news/"+sentiment, nil, &env); err != nil {
		return nil, err
	}
	return unwrap(env, "fetching "+sentiment+" news")
}

// degrade serves the direct-fetch path after a backend failure. The original
// error is returned when no fallback is configured or it fails too.
func (n *NewsAPI) degrade(ctx context.Context, symbol string, cause error) (*NewsFeed, error) {
	if n.fallback == nil {
		return nil, cause
	}
	n.log.Warn("news backend unavailable, using direct fetch", "symbol", symbol, "error", cause)

	end := time.Now()
	start := end.AddDate(0, 0, -7)
	articles, err := n.fallback.Fetch(ctx, symbol, start, end)
	if err != nil {
		return nil, cause
	}

	converted := make([]NewsArticle, 0, len(articles))
	for _, a := range articles {
		converted = append(converted, NewsArticle{
			Title:       a.Headline,
			Source:      a.Source,
			PublishedAt: a.Time.Format(time.RFC3339),
			Summary:     a.Content,
		})
	}
	return &NewsFeed{Articles: converted, Degraded: true, Source: "direct"}, nil
}
