package executor

import (
	"context"
	"fmt"
	"log/slog"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/model"
)

// Actuator carries out a single control command on its device.
type Actuator interface {
	Name() string
	Execute(ctx context.Context, cmd model.ControlCommand) error
}

// LogActuator only records the command. It is the actuator used when no
// device transport is configured.
type LogActuator struct {
	log *slog.Logger
}

// NewLogActuator creates a LogActuator writing to logger.
func NewLogActuator(logger *slog.Logger) *LogActuator {
	return &LogActuator{log: logger}
}

// Name identifies the actuator in metrics.
func (a *LogActuator) Name() string { return "log" }

// Execute logs the command and always succeeds.
func (a *LogActuator) Execute(_ context.Context, cmd model.ControlCommand) error {
	a.log.Info("executing command",
		"command_id", cmd.ID,
		"device", cmd.Device,
		"command", cmd.Command,
	)
	return nil
}

// NewActuator builds the actuator named by cfg.Executor.Actuator. The returned
// close function releases any broker connection.
func NewActuator(cfg *config.Config, logger *slog.Logger) (Actuator, func(), error) {
	switch cfg.Executor.Actuator {
	case "", "log":
		return NewLogActuator(logger), func() {}, nil
	case "mqtt":
		client, err := DialMQTT(cfg.MQTT)
		if err != nil {
			return nil, nil, err
		}
		return NewMQTTActuator(client, cfg.MQTT), func() { client.Disconnect(250) }, nil
	}
	return nil, nil, fmt.Errorf("unknown actuator %q", cfg.Executor.Actuator)
}
