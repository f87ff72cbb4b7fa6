package follower

import (
	"context"

	"socialfeed/internal/core/follower"
)

// FollowerRepository stores follow relationships.
type FollowerRepository interface {
	FollowUser(ctx context.Context, follower *follower.Follower) (*follower.Follower, error)
	// UnfollowUser reports whether a relationship was actually removed.
	UnfollowUser(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowersByUserID(ctx context.Context, userID int64) ([]*follower.Follower, error)
	GetFollowingByUserID(ctx context.Context, followerID int64) ([]*follower.Follower, error)
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)
}

// FollowerResolver lists who follows a user; fan-out only needs the ids.
type FollowerResolver interface {
	FollowerIDsOf(ctx context.Context, userID int64) ([]int64, error)
}

type FollowerDTO struct {
	ID         int64 `json:"id"`
	UserID     int64 `json:"user_id"`
	FollowerID int64 `json:"follower_id"`
}
