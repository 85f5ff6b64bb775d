// Package news provides a direct news-fetch fallback for when the backend
// news endpoints are unreachable: Google News RSS plus (optionally) the
// Alpaca marketdata news API. Results from this package are always tagged as
// degraded by the caller so they are distinguishable from backend data.
package news

import (
	"context"
	"encoding/xml"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"meridian/internal/util"
)

// Article is a single news article from any fallback source.
type Article struct {
	Time     time.Time
	Source   string
	Headline string
	Content  string
}

// defaultGoogleBase is the Google News RSS search endpoint. Tests override
// it via Fetcher.GoogleBase.
const defaultGoogleBase = "https://news.google.com/rss/search"

// Fetcher fetches articles directly from public sources. The Alpaca client
// is optional; when nil only Google News RSS is used.
type Fetcher struct {
	// GoogleBase is the RSS search endpoint; set in tests.
	GoogleBase string

	mdc     *marketdata.Client
	hc      *http.Client
	limiter *util.RateLimiter
	log     *slog.Logger
}

// NewFetcher builds a Fetcher. Alpaca is enabled only when both credentials
// are non-empty.
func NewFetcher(apiKey, apiSecret string, log *slog.Logger) *Fetcher {
	f := &Fetcher{
		GoogleBase: defaultGoogleBase,
		hc:         &http.Client{Timeout: 10 * time.Second},
		limiter:    util.NewRateLimiter(30), // Google News throttles aggressive RSS polling
		log:        log,
	}
	if apiKey != "" && apiSecret != "" {
		f.mdc = marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    apiKey,
			APISecret: apiSecret,
		})
	}
	return f
}

// Fetch returns articles about a symbol in [start, end], merged from all
// configured sources and sorted by time ascending. A source failing is
// logged and skipped; an error is returned only when every source fails.
func (f *Fetcher) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]Article, error) {
	var all []Article
	var lastErr error

	google, err := f.fetchGoogle(ctx, symbol, start, end)
	if err != nil {
		f.log.Warn("google news fallback failed", "symbol", symbol, "error", err)
		lastErr = err
	} else {
		all = append(all, google...)
	}

	if f.mdc != nil {
		alpaca, err := f.fetchAlpaca(symbol, start, end)
		if err != nil {
			f.log.Warn("alpaca news fallback failed", "symbol", symbol, "error", err)
			lastErr = err
		} else {
			all = append(all, alpaca...)
		}
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Time.Before(all[j].Time) })
	return all, nil
}

// --- Google News RSS ---

type rssResponse struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title   string `xml:"title"`
	PubDate string `xml:"pubDate"`
	Desc    string `xml:"description"`
}

func (f *Fetcher) fetchGoogle(ctx context.Context, symbol string, start, end time.Time) ([]Article, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.QueryEscape(symbol + " stock")
	u := f.GoogleBase + "?q=" + q + "&hl=en-US&gl=US&ceid=US:en"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rss rssResponse
	if err := xml.NewDecoder(resp.Body).Decode(&rss); err != nil {
		return nil, err
	}

	var articles []Article
	for _, item := range rss.Channel.Items {
		t, err := time.Parse(time.RFC1123Z, item.PubDate)
		if err != nil {
			t, err = time.Parse(time.RFC1123, item.PubDate)
			if err != nil {
				continue
			}
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		// Google appends " - Publisher" to titles.
		headline := item.Title
		if idx := strings.LastIndex(headline, " - "); idx > 0 {
			headline = headline[:idx]
		}
		articles = append(articles, Article{
			Time:     t,
			Source:   "google",
			Headline: headline,
			Content:  StripHTML(item.Desc),
		})
	}
	return articles, nil
}

// --- Alpaca ---

func (f *Fetcher) fetchAlpaca(symbol string, start, end time.Time) ([]Article, error) {
	items, err := f.mdc.GetNews(marketdata.GetNewsRequest{
		Symbols:            []string{symbol},
		Start:              start,
		End:                end,
		TotalLimit:         50,
		IncludeContent:     false,
		ExcludeContentless: false,
		Sort:               marketdata.SortAsc,
	})
	if err != nil {
		return nil, err
	}

	articles := make([]Article, 0, len(items))
	for _, a := range items {
		body := a.Summary
		if body == "" {
			body = StripHTML(a.Content)
		}
		articles = append(articles, Article{
			Time:     a.CreatedAt,
			Source:   "alpaca",
			Headline: a.Headline,
			Content:  body,
		})
	}
	return articles, nil
}

// --- HTML helpers ---

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// StripHTML removes HTML tags and normalizes whitespace.
func StripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
