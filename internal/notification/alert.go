package notification

import (
	"context"
	"sync"

	"smart-orchard-backend/internal/advice"
	"smart-orchard-backend/internal/model"
)

// Dispatcher queues alerts for delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, alert Alert) error
}

// AlertSink raises an alert when a reading first trips a warning. The same
// warning is not raised again until conditions return to normal or another
// warning takes its place.
type AlertSink struct {
	dispatcher Dispatcher

	mu     sync.Mutex
	active advice.Code
}

// NewAlertSink creates a sink dispatching alerts to d.
func NewAlertSink(d Dispatcher) *AlertSink {
	return &AlertSink{dispatcher: d}
}

// Name identifies the sink in metrics and logs.
func (s *AlertSink) Name() string { return "alerts" }

// Publish evaluates the reading and dispatches an alert on a new warning.
func (s *AlertSink) Publish(ctx context.Context, reading model.SensorReading) error {
	a := advice.ForReading(reading.Temperature, reading.Humidity)

	s.mu.Lock()
	if !a.IsWarning() {
		s.active = ""
		s.mu.Unlock()
		return nil
	}
	if a.Code == s.active {
		s.mu.Unlock()
		return nil
	}
	prev := s.active
	s.active = a.Code
	s.mu.Unlock()

	err := s.dispatcher.Dispatch(ctx, Alert{
		ReadingID: reading.ID,
		Code:      a.Code,
		Title:     "Orchard alert",
		Body:      a.Message,
	})
	if err != nil {
		// Retry on the next reading.
		s.mu.Lock()
		if s.active == a.Code {
			s.active = prev
		}
		s.mu.Unlock()
	}
	return err
}
