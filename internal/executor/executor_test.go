package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smart-orchard-backend/config"
	"smart-orchard-backend/internal/model"
	"smart-orchard-backend/internal/store"
)

type fakeActuator struct {
	seen   []int64
	failOn int64
}

func (a *fakeActuator) Name() string { return "fake" }

func (a *fakeActuator) Execute(_ context.Context, cmd model.ControlCommand) error {
	if cmd.ID == a.failOn {
		return errors.New("device offline")
	}
	a.seen = append(a.seen, cmd.ID)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCommandLog(t *testing.T) store.Store {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, gormDB.AutoMigrate(&model.SensorReading{}, &model.ControlCommand{}, &model.PushSubscription{}))
	return store.NewGormStore(gormDB)
}

func submit(t *testing.T, s store.Store, device, command string) int64 {
	t.Helper()
	id, err := s.SubmitCommand(context.Background(), device, command, nil)
	require.NoError(t, err)
	return id
}

func TestExecutor_DrainOnceMarksAllDone(t *testing.T) {
	s := newCommandLog(t)
	ids := []int64{submit(t, s, "pump", "on"), submit(t, s, "fan", "off"), submit(t, s, "valve", "open")}

	act := &fakeActuator{}
	e := New(s, act, time.Minute, discardLogger())
	at := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return at }

	n, err := e.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, ids, act.seen, "commands execute in submission order")

	pending, err := s.ListPending(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pending)

	for _, id := range ids {
		cmd, err := s.GetCommand(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, model.CommandStatusDone, cmd.Status)
		require.NotNil(t, cmd.ExecutedAt)
		assert.WithinDuration(t, at, *cmd.ExecutedAt, time.Millisecond)
	}

	n, err = e.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n, "a drained queue stays drained")
}

func TestExecutor_ActuatorFailureLeavesRestPending(t *testing.T) {
	s := newCommandLog(t)
	first := submit(t, s, "pump", "on")
	second := submit(t, s, "fan", "off")
	third := submit(t, s, "valve", "open")

	act := &fakeActuator{failOn: second}
	e := New(s, act, time.Minute, discardLogger())

	n, err := e.DrainOnce(context.Background())
	assert.ErrorContains(t, err, "device offline")
	assert.Equal(t, 1, n)

	pending, err := s.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, second, pending[0].ID)
	assert.Equal(t, third, pending[1].ID)

	cmd, err := s.GetCommand(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, model.CommandStatusDone, cmd.Status)
}

func TestExecutor_CommandsSubmittedLaterWaitForNextDrain(t *testing.T) {
	s := newCommandLog(t)
	submit(t, s, "pump", "on")

	e := New(s, &fakeActuator{}, time.Minute, discardLogger())
	n, err := e.DrainOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	late := submit(t, s, "pump", "off")
	pending, err := s.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, late, pending[0].ID)
	assert.Equal(t, model.CommandStatusPending, pending[0].Status)
}

type failingQueue struct {
	listErr, markErr error
	pending          []model.ControlCommand
}

func (q *failingQueue) ListPending(context.Context) ([]model.ControlCommand, error) {
	return q.pending, q.listErr
}

func (q *failingQueue) MarkDone(context.Context, time.Time, ...int64) error {
	return q.markErr
}

func TestExecutor_StorageErrors(t *testing.T) {
	boom := errors.New("connection reset")

	e := New(&failingQueue{listErr: boom}, &fakeActuator{}, time.Minute, discardLogger())
	_, err := e.DrainOnce(context.Background())
	assert.ErrorIs(t, err, boom)

	e = New(&failingQueue{markErr: boom, pending: []model.ControlCommand{{ID: 1}}}, &fakeActuator{}, time.Minute, discardLogger())
	n, err := e.DrainOnce(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
}

func TestLogActuator_AlwaysSucceeds(t *testing.T) {
	a := NewLogActuator(discardLogger())
	assert.Equal(t, "log", a.Name())
	assert.NoError(t, a.Execute(context.Background(), model.ControlCommand{ID: 1, Device: "pump", Command: "on"}))
}

func TestNewActuator(t *testing.T) {
	cfg := &config.Config{}
	cfg.ApplyDefaults()

	a, closeFn, err := NewActuator(cfg, discardLogger())
	require.NoError(t, err)
	defer closeFn()
	assert.Equal(t, "log", a.Name())

	cfg.Executor.Actuator = "mqtt"
	cfg.MQTT.Broker = ""
	_, _, err = NewActuator(cfg, discardLogger())
	assert.Error(t, err)

	cfg.Executor.Actuator = "carrier-pigeon"
	_, _, err = NewActuator(cfg, discardLogger())
	assert.ErrorContains(t, err, "unknown actuator")
}
