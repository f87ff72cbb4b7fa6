package follower

import (
	"time"

	"socialfeed/internal/core/user"

	"github.com/zeebo/errs"
)

var (
	ErrSelfFollow = errs.Class("cannot follow yourself")
	ErrConflict   = errs.Class("follow conflict")
)

// Follower records that FollowerID follows UserID.
type Follower struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	UserID     int64     `gorm:"not null;uniqueIndex:uniq_followee_follower,priority:1"`
	User       user.User `gorm:"foreignKey:UserID"`
	FollowerID int64     `gorm:"not null;uniqueIndex:uniq_followee_follower,priority:2;index"`
	Follower   user.User `gorm:"foreignKey:FollowerID"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
