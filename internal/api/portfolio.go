package api

import (
	"context"

	"meridian/internal/rest"
)

// PortfolioAPI wraps the /portfolio endpoint group: optimization,
// walk-forward backtests, and saved-portfolio CRUD.
type PortfolioAPI struct {
	c *rest.Client
}

// NewPortfolioAPI creates the portfolio module on the given client.
func NewPortfolioAPI(c *rest.Client) *PortfolioAPI {
	return &PortfolioAPI{c: c}
}

// Optimize requests an optimized allocation for a ticker basket.
func (p *PortfolioAPI) Optimize(ctx context.Context, req OptimizeRequest) (*OptimizeResult, error) {
	var env envelope[OptimizeResult]
	if err := p.c.Post(ctx, "/portfolio/optimize", req, &env); err != nil {
		return nil, err
	}
	result, err := unwrap(env, "optimizing portfolio")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// WalkForward runs a walk-forward backtest of the optimization strategy.
func (p *PortfolioAPI) WalkForward(ctx context.Context, req WalkForwardRequest) (*WalkForwardResult, error) {
	var env envelope[WalkForwardResult]
	if err := p.c.Post(ctx, "/portfolio/backtest/walk-forward", req, &env); err != nil {
		return nil, err
	}
	result, err := unwrap(env, "running walk-forward backtest")
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// List returns the user's saved portfolios.
func (p *PortfolioAPI) List(ctx context.Context) ([]SavedPortfolio, error) {
	var env envelope[[]SavedPortfolio]
	if err := p.c.Get(ctx, "/portfolio", nil, &env); err != nil {
		return nil, err
	}
	return unwrap(env, "listing portfolios")
}

// Save creates or updates a saved portfolio; the backend assigns the id on
// create.
func (p *PortfolioAPI) Save(ctx context.Context, pf SavedPortfolio) (*SavedPortfolio, error) {
	var env envelope[SavedPortfolio]
	var err error
	if pf.ID == "" {
		err = p.c.Post(ctx, "/portfolio", pf, &env)
	} else {
		err = p.c.Put(ctx, "/portfolio/"+pf.ID, pf, &env)
	}
	if err != nil {
		return nil, err
	}
	saved, err := unwrap(env, "saving portfolio")
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Delete removes a saved portfolio.
func (p *PortfolioAPI) Delete(ctx context.Context, id string) error {
	return p.c.Delete(ctx, "/portfolio/"+id, nil)
}
