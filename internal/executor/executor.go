// Package executor drains pending control commands and hands them to an actuator.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smart-orchard-backend/internal/metrics"
	"smart-orchard-backend/internal/model"
	"smart-orchard-backend/internal/simulation"
)

// CommandQueue is the part of the command log the executor consumes.
type CommandQueue interface {
	ListPending(ctx context.Context) ([]model.ControlCommand, error)
	MarkDone(ctx context.Context, at time.Time, ids ...int64) error
}

// Executor periodically executes pending commands in submission order.
type Executor struct {
	commands CommandQueue
	actuator Actuator
	interval time.Duration
	log      *slog.Logger
	now      func() time.Time
}

// New creates an Executor that drains commands through actuator every interval.
func New(commands CommandQueue, actuator Actuator, interval time.Duration, logger *slog.Logger) *Executor {
	return &Executor{
		commands: commands,
		actuator: actuator,
		interval: interval,
		log:      logger,
		now:      time.Now,
	}
}

// DrainOnce executes every pending command and marks the executed ones done in
// one batch with a shared timestamp. An actuator failure stops the drain; the
// failed command and those after it stay pending. It returns how many commands
// were marked done.
func (e *Executor) DrainOnce(ctx context.Context) (int, error) {
	pending, err := e.commands.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	executed := make([]int64, 0, len(pending))
	var execErr error
	for _, cmd := range pending {
		if err := e.actuator.Execute(ctx, cmd); err != nil {
			execErr = fmt.Errorf("execute command %d on %s: %w", cmd.ID, cmd.Device, err)
			break
		}
		executed = append(executed, cmd.ID)
	}

	if len(executed) > 0 {
		if err := e.commands.MarkDone(ctx, e.now(), executed...); err != nil {
			return 0, err
		}
		metrics.CommandsExecutedTotal.WithLabelValues(e.actuator.Name()).Add(float64(len(executed)))
		e.log.Info("commands executed", "count", len(executed), "actuator", e.actuator.Name())
	}
	return len(executed), execErr
}

// Step adapts DrainOnce to the periodic runner.
func (e *Executor) Step(ctx context.Context) error {
	_, err := e.DrainOnce(ctx)
	return err
}

// Run drains the queue every interval until ctx is done.
func (e *Executor) Run(ctx context.Context) {
	simulation.Run(ctx, e.interval, e.log, "executor", e.Step)
}
