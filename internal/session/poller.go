package session

import (
	"context"
	"log/slog"
	"time"
)

// Poller drives the auto-refresh loop: one RefreshCurrent per tick until the
// session reaches a terminal status or the context is cancelled. Transient
// refresh failures are recorded by the store and do not stop the loop, so a
// flaky network cannot kill an in-progress analysis view.
type Poller struct {
	store    *Store
	interval time.Duration
	log      *slog.Logger
}

// NewPoller creates a Poller with the given tick interval.
func NewPoller(store *Store, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Poller{store: store, interval: interval, log: log}
}

// Run blocks until the watched session terminates or ctx is cancelled. It
// returns the final session snapshot.
func (p *Poller) Run(ctx context.Context) (Session, error) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return p.store.Snapshot(), ctx.Err()
		case <-ticker.C:
			if err := p.store.RefreshCurrent(ctx); err != nil {
				p.log.Debug("poll tick failed", "error", err)
				continue
			}
			snap := p.store.Snapshot()
			if snap.Status.Terminal() {
				return snap, nil
			}
		}
	}
}
