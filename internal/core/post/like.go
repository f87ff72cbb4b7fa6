package post

import "time"

type Like struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"not null;uniqueIndex:uniq_like_user_post,priority:1"`
	PostID    int64     `gorm:"not null;uniqueIndex:uniq_like_user_post,priority:2;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
