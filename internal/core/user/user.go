package user

import (
	"time"

	"github.com/zeebo/errs"
)

var ErrNotFound = errs.Class("user not found")

type User struct {
	ID        int64      `gorm:"primaryKey;autoIncrement"`
	Name      string     `gorm:"not null"`
	Family    string     `gorm:"not null"`
	Username  string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
	DeletedAt *time.Time `gorm:"index"`
}
