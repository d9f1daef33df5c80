package model

import "time"

// CommandStatus is the lifecycle state of a control command.
type CommandStatus string

const (
	CommandStatusPending CommandStatus = "pending"
	CommandStatusDone    CommandStatus = "done"
)

// ControlCommand is a device control request. ExecutedAt is set if and only if
// Status is done, and a done command never returns to pending.
type ControlCommand struct {
	ID         int64         `gorm:"primaryKey" json:"id"`
	Device     string        `gorm:"size:50" json:"device"`
	Command    string        `gorm:"size:64" json:"command"`
	Status     CommandStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt  time.Time     `gorm:"not null" json:"created_at"`
	ExecutedAt *time.Time    `json:"executed_at"`
	UserID     *int64        `gorm:"index" json:"user_id,omitempty"`
}
