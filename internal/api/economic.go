package api

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"meridian/internal/rest"
)

// Indicator series change at most daily; events a few times a day. Five
// minutes keeps chart redraws from hammering the backend while polling.
const economicCacheTTL = 5 * time.Minute

// EconomicAPI wraps the /economic endpoint group with a short-lived response
// cache, since the dashboard re-requests the same series on every refresh.
type EconomicAPI struct {
	c     *rest.Client
	cache *gocache.Cache
}

// NewEconomicAPI creates the economic module on the given client.
func NewEconomicAPI(c *rest.Client) *EconomicAPI {
	return &EconomicAPI{
		c:     c,
		cache: gocache.New(economicCacheTTL, 10*time.Minute),
	}
}

// Historical returns the time series for one indicator over a date range.
func (e *EconomicAPI) Historical(ctx context.Context, indicator, start, end string) (*IndicatorSeries, error) {
	key := cacheKey("historical", indicator, start, end)
	if v, ok := e.cache.Get(key); ok {
		return v.(*IndicatorSeries), nil
	}

	var env envelope[IndicatorSeries]
	err := e.c.Get(ctx, "/economic/historical", map[string]string{
		"indicator":  indicator,
		"start_date": start,
		"end_date":   end,
	}, &env)
	if err != nil {
		return nil, err
	}
	series, err := unwrap(env, "fetching indicator history")
	if err != nil {
		return nil, err
	}

	e.cache.Set(key, &series, gocache.DefaultExpiration)
	return &series, nil
}

// Events returns dated economic calendar markers in a date range, optionally
// filtered by severity.
func (e *EconomicAPI) Events(ctx context.Context, start, end, severity string) ([]EconomicEvent, error) {
	key := cacheKey("events", start, end, severity)
	if v, ok := e.cache.Get(key); ok {
		return v.([]EconomicEvent), nil
	}

	var env envelope[[]EconomicEvent]
	err := e.c.Get(ctx, "/economic/events", map[string]string{
		"start_date": start,
		"end_date":   end,
		"severity":   severity,
	}, &env)
	if err != nil {
		return nil, err
	}
	events, err := unwrap(env, "fetching economic events")
	if err != nil {
		return nil, err
	}

	e.cache.Set(key, events, gocache.DefaultExpiration)
	return events, nil
}

func cacheKey(parts ...string) string {
	return strings.Join(parts, "|")
}
