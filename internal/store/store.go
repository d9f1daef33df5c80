package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-orchard-backend/internal/model"
)

// ReadingStore is the append-only log of sensor readings.
type ReadingStore interface {
	AppendReading(ctx context.Context, reading *model.SensorReading) error
	LatestReading(ctx context.Context) (*model.SensorReading, error)
	RecentReadings(ctx context.Context, n int) ([]model.SensorReading, error)
}

// CommandLog records device control requests and their completion.
type CommandLog interface {
	SubmitCommand(ctx context.Context, device, command string, userRef *int64) (int64, error)
	ListPending(ctx context.Context) ([]model.ControlCommand, error)
	MarkDone(ctx context.Context, at time.Time, ids ...int64) error
	GetCommand(ctx context.Context, id int64) (*model.ControlCommand, error)
	LatestCommand(ctx context.Context) (*model.ControlCommand, error)
}

// SubscriptionStore persists browser push subscriptions.
type SubscriptionStore interface {
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// Store defines the interface for all database operations.
type Store interface {
	ReadingStore
	CommandLog
	SubscriptionStore
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

// AppendReading inserts a reading. The database assigns the ID; a zero Timestamp
// is replaced by the insertion time. Values are stored as given.
func (s *gormStore) AppendReading(ctx context.Context, reading *model.SensorReading) error {
	if reading.Timestamp.IsZero() {
		reading.Timestamp = s.now()
	}
	if err := s.db.WithContext(ctx).Create(reading).Error; err != nil {
		return fmt.Errorf("failed to append sensor reading: %w", err)
	}
	return nil
}

// LatestReading returns the most recently inserted reading, or nil if there is none.
func (s *gormStore) LatestReading(ctx context.Context) (*model.SensorReading, error) {
	var rows []model.SensorReading
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch latest sensor reading: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// RecentReadings returns up to the last n readings ordered oldest to newest.
func (s *gormStore) RecentReadings(ctx context.Context, n int) ([]model.SensorReading, error) {
	if n <= 0 {
		return []model.SensorReading{}, nil
	}
	var rows []model.SensorReading
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent sensor readings: %w", err)
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// SubmitCommand records a new pending command and returns its ID.
func (s *gormStore) SubmitCommand(ctx context.Context, device, command string, userRef *int64) (int64, error) {
	cmd := model.ControlCommand{
		Device:    device,
		Command:   command,
		Status:    model.CommandStatusPending,
		CreatedAt: s.now(),
		UserID:    userRef,
	}
	if err := s.db.WithContext(ctx).Create(&cmd).Error; err != nil {
		return 0, fmt.Errorf("failed to submit command for device %q: %w", device, err)
	}
	return cmd.ID, nil
}

// ListPending returns every pending command ordered by ID ascending.
func (s *gormStore) ListPending(ctx context.Context) ([]model.ControlCommand, error) {
	var cmds []model.ControlCommand
	if err := s.db.WithContext(ctx).
		Where("status = ?", model.CommandStatusPending).
		Order("id ASC").
		Find(&cmds).Error; err != nil {
		return nil, fmt.Errorf("failed to list pending commands: %w", err)
	}
	return cmds, nil
}

// MarkDone transitions the given commands to done with executed time at, in one
// transaction. Commands that are already done are left untouched.
func (s *gormStore) MarkDone(ctx context.Context, at time.Time, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ControlCommand{}).
			Where("id IN ? AND status = ?", ids, model.CommandStatusPending).
			Updates(map[string]any{
				"status":      model.CommandStatusDone,
				"executed_at": at,
			}).Error; err != nil {
			return fmt.Errorf("failed to mark %d commands done: %w", len(ids), err)
		}
		return nil
	})
}

// GetCommand returns the command with the given ID or ErrNotFound.
func (s *gormStore) GetCommand(ctx context.Context, id int64) (*model.ControlCommand, error) {
	var cmd model.ControlCommand
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&cmd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch command %d: %w", id, err)
	}
	return &cmd, nil
}

// LatestCommand returns the most recently submitted command or ErrNotFound.
func (s *gormStore) LatestCommand(ctx context.Context) (*model.ControlCommand, error) {
	var cmds []model.ControlCommand
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(1).Find(&cmds).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch latest command: %w", err)
	}
	if len(cmds) == 0 {
		return nil, ErrNotFound
	}
	return &cmds[0], nil
}

// UpsertSubscription creates a subscription or refreshes the keys of an existing one.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = s.now()
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes the subscription for endpoint, if any.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Delete(&model.PushSubscription{}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	return nil
}

// GetSubscription returns the subscription for endpoint or ErrNotFound.
func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).Take(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	return &sub, nil
}

// ListSubscriptions returns every stored subscription.
func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}
