package model

import "time"

// SensorReading is one timestamped temperature/humidity/light sample.
// Rows are append-only: ID order equals Timestamp order.
type SensorReading struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	Light       float64   `json:"light"`
}
