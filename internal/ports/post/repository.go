package post

import (
	"context"
	"time"

	"socialfeed/internal/core/post"
)

// PostRepository is the write side of posts.
type PostRepository interface {
	Create(ctx context.Context, post *post.Post) (*post.Post, error)
	// CreateRepost inserts the repost row and bumps the original's counter.
	CreateRepost(ctx context.Context, repost *post.Post) (*post.Post, error)
	// CreateReply inserts the reply row and bumps the parent's counter.
	CreateReply(ctx context.Context, reply *post.Post) (*post.Post, error)
	FindByID(ctx context.Context, id int64) (*post.Post, error)
	// SoftDelete marks the post deleted; it reports false if it was not live.
	SoftDelete(ctx context.Context, id int64) (bool, error)
	Like(ctx context.Context, userID, postID int64) (bool, error)
	Unlike(ctx context.Context, userID, postID int64) (bool, error)
}

type PostDTO struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	UserID     int64     `json:"user_id"`
	RepostOfID *int64    `json:"repost_of_id,omitempty"`
	ParentID   *int64    `json:"parent_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func ToDTO(p *post.Post) *PostDTO {
	return &PostDTO{
		ID:         p.ID,
		Content:    p.Content,
		UserID:     p.UserID,
		RepostOfID: p.RepostOfID,
		ParentID:   p.ParentID,
		CreatedAt:  p.CreatedAt,
	}
}
