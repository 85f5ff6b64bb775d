package api

import (
	"context"

	"meridian/internal/rest"
)

// StocksAPI wraps the /stocks endpoint group: symbol search and analyst
// context for the analysis configuration form.
type StocksAPI struct {
	c *rest.Client
}

// NewStocksAPI creates the stocks module on the given client.
func NewStocksAPI(c *rest.Client) *StocksAPI {
	return &StocksAPI{c: c}
}

// Search returns symbols matching a query string.
func (s *StocksAPI) Search(ctx context.Context, query string) ([]StockMatch, error) {
	var env envelope[[]StockMatch]
	if err := s.c.Get(ctx, "/stocks/search/stocks", map[string]string{"q": query}, &env); err != nil {
		return nil, err
	}
	return unwrap(env, "searching stocks")
}

// RecommendationTrends returns monthly analyst recommendation counts.
func (s *StocksAPI) RecommendationTrends(ctx context.Context, symbol string) ([]RecommendationTrend, error) {
	var env envelope[[]RecommendationTrend]
	if err := s.c.Get(ctx, "/stocks/"+symbol+"/recommendation-trends", nil, &env); err != nil {
		return nil, err
	}
	return unwrap(env, "fetching recommendation trends")
}

// EarningsSurprises returns quarterly actual-vs-estimate earnings.
func (s *StocksAPI) EarningsSurprises(ctx context.Context, symbol string) ([]EarningsSurprise, error) {
	var env envelope[[]EarningsSurprise]
	if err := s.c.Get(ctx, "/stocks/"+symbol+"/earnings-surprises", nil, &env); err != nil {
		return nil, err
	}
	return unwrap(env, "fetching earnings surprises")
}
