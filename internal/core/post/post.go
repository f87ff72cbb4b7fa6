package post

import (
	"time"

	"socialfeed/internal/core/user"

	"github.com/zeebo/errs"
)

var (
	ErrNotFound  = errs.Class("post not found")
	ErrForbidden = errs.Class("post forbidden")
	ErrConflict  = errs.Class("post conflict")
	ErrInvalid   = errs.Class("invalid post")
)

// Post is a row of the system of record. A repost carries RepostOfID and no
// content of its own; a reply carries ParentID.
type Post struct {
	ID          int64      `gorm:"primaryKey;autoIncrement"`
	Content     string     `gorm:"type:text"`
	UserID      int64      `gorm:"not null;index:idx_posts_user_created,priority:1;uniqueIndex:uniq_user_repost,priority:1"`
	User        user.User  `gorm:"foreignKey:UserID"`
	RepostOfID  *int64     `gorm:"uniqueIndex:uniq_user_repost,priority:2"`
	ParentID    *int64     `gorm:"index"`
	LikeCount   int64      `gorm:"not null;default:0"`
	RepostCount int64      `gorm:"not null;default:0"`
	ReplyCount  int64      `gorm:"not null;default:0"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index:idx_posts_user_created,priority:2"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
	DeletedAt   *time.Time `gorm:"index"`
}

func (p *Post) IsRepost() bool { return p.RepostOfID != nil }

func (p *Post) IsReply() bool { return p.ParentID != nil }

// FansOut reports whether the post belongs on home timelines.
func (p *Post) FansOut() bool { return p.ParentID == nil }
