package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"socialfeed/internal/core/fanout"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultClaimInterval = 200 * time.Millisecond

// FanoutQueueDatabase keeps queue events in the fanout_queues table. Dequeue
// claims the oldest pending row and marks it done in the same transaction.
type FanoutQueueDatabase struct {
	DB            *gorm.DB
	ClaimInterval time.Duration
}

func NewFanoutQueueDatabase(db *gorm.DB) *FanoutQueueDatabase {
	return &FanoutQueueDatabase{
		DB:            db,
		ClaimInterval: defaultClaimInterval,
	}
}

func (repo *FanoutQueueDatabase) Enqueue(ctx context.Context, event fanout.Event) error {
	payload, err := fanout.Marshal(event)
	if err != nil {
		return err
	}
	row := &fanout.FanoutQueue{
		ID:      uuid.Must(uuid.NewV4()),
		Kind:    string(event.Kind),
		Payload: string(payload),
		Status:  fanout.StatusPending,
	}
	if err := repo.DB.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("enqueue %s event %s: %w", event.Kind, event.ID, err)
	}
	return nil
}

// Dequeue polls for a pending row until timeout elapses. It returns nil, nil
// when nothing arrived in time.
func (repo *FanoutQueueDatabase) Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	interval := repo.ClaimInterval
	if interval <= 0 {
		interval = defaultClaimInterval
	}

	for {
		payload, err := repo.claim(ctx)
		if err != nil || payload != nil {
			return payload, err
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			return nil, nil
		}
		if wait > interval {
			wait = interval
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (repo *FanoutQueueDatabase) claim(ctx context.Context) ([]byte, error) {
	var row fanout.FanoutQueue
	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", fanout.StatusPending).
			Order("created_at ASC").
			Limit(1).
			Take(&row).Error
		if err != nil {
			return err
		}
		return tx.Model(&fanout.FanoutQueue{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"status":       fanout.StatusDone,
				"processed_at": time.Now().UTC(),
			}).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim fanout event: %w", err)
	}
	return []byte(row.Payload), nil
}
