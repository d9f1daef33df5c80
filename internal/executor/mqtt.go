package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/model"
)

// Publisher is the subset of mqtt.Client the actuator needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type commandMessage struct {
	ID       int64     `json:"id"`
	Device   string    `json:"device"`
	Command  string    `json:"command"`
	IssuedAt time.Time `json:"issued_at"`
}

// MQTTActuator publishes each command to <prefix>/<device>.
type MQTTActuator struct {
	client  Publisher
	prefix  string
	qos     byte
	timeout time.Duration
}

// NewMQTTActuator creates an actuator publishing through client.
func NewMQTTActuator(client Publisher, cfg config.MQTTConfig) *MQTTActuator {
	timeout := time.Duration(cfg.ConnectTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MQTTActuator{
		client:  client,
		prefix:  cfg.TopicPrefix,
		qos:     cfg.QoS,
		timeout: timeout,
	}
}

// Name identifies the actuator in metrics.
func (a *MQTTActuator) Name() string { return "mqtt" }

// Topic returns the topic commands for device are published to.
func (a *MQTTActuator) Topic(device string) string {
	return a.prefix + "/" + device
}

// Execute publishes cmd as JSON and waits for the broker to accept it.
func (a *MQTTActuator) Execute(ctx context.Context, cmd model.ControlCommand) error {
	payload, err := json.Marshal(commandMessage{
		ID:       cmd.ID,
		Device:   cmd.Device,
		Command:  cmd.Command,
		IssuedAt: cmd.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal command %d: %w", cmd.ID, err)
	}

	token := a.client.Publish(a.Topic(cmd.Device), a.qos, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(a.timeout):
		return fmt.Errorf("publish command %d: timed out after %s", cmd.ID, a.timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish command %d: %w", cmd.ID, err)
	}
	return nil
}

// DialMQTT connects a client to the configured broker.
func DialMQTT(cfg config.MQTTConfig) (mqtt.Client, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker is not configured")
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(time.Duration(cfg.ConnectTimeoutSeconds) * time.Second)

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to mqtt broker %s: %w", cfg.Broker, token.Error())
	}
	return c, nil
}
