// Package maintenance runs periodic background tasks as Go tickers: pruning
// stale client preferences and watching graph database connectivity.
package maintenance

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes preferences not written since before.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	PruneInterval  time.Duration // Stale client preferences
	Retention      time.Duration // Age at which a preference is stale
	HealthInterval time.Duration // Graph database connectivity probe
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig(retention time.Duration) Config {
	return Config{
		PruneInterval:  6 * time.Hour,
		Retention:      retention,
		HealthInterval: 5 * time.Minute,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, prefs Pruner, graph Pinger, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"prune", cfg.PruneInterval,
		"retention", cfg.Retention,
		"health", cfg.HealthInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	done := make(chan struct{})
	running := 0

	if cfg.PruneInterval > 0 && cfg.Retention > 0 && prefs != nil {
		t := time.NewTicker(cfg.PruneInterval)
		tickers = append(tickers, t)
		running++
		go runLoop(ctx, t.C, done, func() { PrunePrefs(ctx, prefs, cfg.Retention, time.Now(), logger) })
	}

	if cfg.HealthInterval > 0 && graph != nil {
		t := time.NewTicker(cfg.HealthInterval)
		tickers = append(tickers, t)
		running++
		go runLoop(ctx, t.C, done, func() { CheckGraph(ctx, graph, logger) })
	}

	<-ctx.Done()
	for range running {
		<-done
	}
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, done chan<- struct{}, fn func()) {
	defer func() { done <- struct{}{} }()
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

// PrunePrefs removes preferences last written before now minus retention.
// Returns the number of rows removed.
func PrunePrefs(ctx context.Context, p Pruner, retention time.Duration, now time.Time, logger *slog.Logger) int64 {
	n, err := p.Prune(ctx, now.Add(-retention))
	if err != nil {
		logger.Warn("Prune: failed to purge stale preferences", "error", err)
		return 0
	}
	if n > 0 {
		logger.Info("Prune: purged stale preferences", "count", n)
	}
	return n
}

// CheckGraph logs a warning when the graph database is unreachable.
func CheckGraph(ctx context.Context, g Pinger, logger *slog.Logger) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := g.Ping(pingCtx); err != nil {
		logger.Warn("Health: graph database unreachable", "error", err)
		return false
	}
	return true
}
