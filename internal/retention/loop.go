// Package retention prunes stored simulation runs older than a configured age.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pruner deletes runs created before a cutoff.
type Pruner interface {
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Config holds retention configuration.
type Config struct {
	// MaxAge is how long runs are kept. Zero disables pruning.
	MaxAge   time.Duration
	Interval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxAge: 7 * 24 * time.Hour, Interval: time.Hour}
}

// Loop periodically deletes expired runs.
type Loop struct {
	pruner Pruner
	config Config
	logger *slog.Logger
	now    func() time.Time
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewLoop creates a new retention loop.
func NewLoop(p Pruner, cfg Config, logger *slog.Logger) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Loop{
		pruner: p,
		config: cfg,
		logger: logger.With("component", "retention"),
		now:    time.Now,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start prunes once, then on every interval. Blocks until ctx is cancelled or Stop is called.
func (l *Loop) Start(ctx context.Context) error {
	l.logger.Info("retention started", "max_age", l.config.MaxAge, "interval", l.config.Interval)
	ticker := time.NewTicker(l.config.Interval)
	defer ticker.Stop()

	if _, err := l.Tick(ctx); err != nil {
		l.logger.Error("tick error", "error", err)
	}
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("retention stopping (context cancelled)")
			close(l.doneCh)
			return ctx.Err()
		case <-l.stopCh:
			l.logger.Info("retention stopping (stop called)")
			close(l.doneCh)
			return nil
		case <-ticker.C:
			if _, err := l.Tick(ctx); err != nil {
				l.logger.Error("tick error", "error", err)
			}
		}
	}
}

// Stop shuts the loop down and waits for the current tick to finish.
// It must only be called after Start.
func (l *Loop) Stop() error {
	close(l.stopCh)
	<-l.doneCh
	return nil
}

// Tick deletes runs older than MaxAge and returns how many were removed.
func (l *Loop) Tick(ctx context.Context) (int64, error) {
	if l.config.MaxAge <= 0 {
		return 0, nil
	}
	cutoff := l.now().Add(-l.config.MaxAge)
	n, err := l.pruner.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	if n > 0 {
		l.logger.Info("pruned runs", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
