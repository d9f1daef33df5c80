package simulation

import (
	"context"
	"log/slog"
	"time"
)

// Step is one unit of periodic work.
type Step func(ctx context.Context) error

// Run executes steps once immediately and then once per interval until ctx is
// done. A failing step is logged and the remaining steps of the tick still run.
func Run(ctx context.Context, interval time.Duration, logger *slog.Logger, name string, steps ...Step) {
	logger.Info("periodic loop started", "loop", name, "interval", interval.String())

	tick := func() {
		for _, step := range steps {
			if err := step(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Error("periodic step failed", "loop", name, "err", err)
			}
		}
	}
	tick()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("periodic loop stopped", "loop", name)
			return
		case <-timer.C:
			tick()
			timer.Reset(interval)
		}
	}
}
