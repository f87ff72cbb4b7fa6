package fanout

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
)

// FanoutQueue is a row of the table-backed fan-out queue.
type FanoutQueue struct {
	ID          uuid.UUID  `gorm:"primary_key;type:char(36)"`
	Kind        string     `gorm:"type:varchar(32);not null"`
	Payload     string     `gorm:"type:text;not null"`
	Status      string     `gorm:"type:varchar(20);not null;index:idx_fanout_status_created,priority:1"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index:idx_fanout_status_created,priority:2"`
	ProcessedAt *time.Time `gorm:"index"`
}
