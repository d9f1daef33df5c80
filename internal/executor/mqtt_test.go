package executor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/model"
)

type doneToken struct {
	err error
}

func (t *doneToken) Wait() bool                     { return true }
func (t *doneToken) WaitTimeout(time.Duration) bool { return true }
func (t *doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *doneToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	p.msgs = append(p.msgs, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &doneToken{err: p.err}
}

func TestMQTTActuator_PublishesToDeviceTopic(t *testing.T) {
	pub := &fakePublisher{}
	a := NewMQTTActuator(pub, config.MQTTConfig{TopicPrefix: "orchard/control", QoS: 1})
	issued := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	err := a.Execute(context.Background(), model.ControlCommand{ID: 9, Device: "pump", Command: "on", CreatedAt: issued})
	require.NoError(t, err)
	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "orchard/control/pump", pub.msgs[0].topic)
	assert.Equal(t, byte(1), pub.msgs[0].qos)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &msg))
	assert.Equal(t, float64(9), msg["id"])
	assert.Equal(t, "pump", msg["device"])
	assert.Equal(t, "on", msg["command"])
	assert.Equal(t, "2026-06-01T08:00:00Z", msg["issued_at"])
}

func TestMQTTActuator_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("not connected")}
	a := NewMQTTActuator(pub, config.MQTTConfig{TopicPrefix: "orchard/control"})

	err := a.Execute(context.Background(), model.ControlCommand{ID: 3, Device: "fan", Command: "off"})
	assert.ErrorContains(t, err, "not connected")
}

func TestDialMQTT_RequiresBroker(t *testing.T) {
	_, err := DialMQTT(config.MQTTConfig{})
	assert.ErrorContains(t, err, "broker is not configured")
}
