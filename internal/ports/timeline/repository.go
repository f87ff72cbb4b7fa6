package timeline

import (
	"context"

	"socialfeed/internal/core/timeline"
)

// TimelineCache is the capped, score-ordered per-user home timeline. Every
// single call is atomic; Add followed by its trim is not atomic as a pair.
type TimelineCache interface {
	// Add upserts postID with score and trims the owner's set to the cache limit.
	Add(ctx context.Context, ownerID, postID int64, score float64) error
	// Remove deletes the given posts; absent ids are ignored.
	Remove(ctx context.Context, ownerID int64, postIDs ...int64) error
	// RangeDescending returns post ids ranked start..end inclusive, highest score first.
	// An empty result cannot tell an empty timeline from an unpopulated one.
	RangeDescending(ctx context.Context, ownerID, start, end int64) ([]int64, error)
	Size(ctx context.Context, ownerID int64) (int64, error)
}

// TimelineReader is the authoritative, keyset-paginated read side of the
// system of record. List methods return at most limit items and report
// whether a further page exists.
type TimelineReader interface {
	FindUserTimeline(ctx context.Context, targetUserID, viewerID int64, cursor *timeline.Keyset, limit int) ([]*FeedItem, bool, error)
	FindHomeTimeline(ctx context.Context, viewerID int64, cursor *timeline.Keyset, limit int) ([]*FeedItem, bool, error)
	FindReplies(ctx context.Context, parentID, viewerID int64, cursor *timeline.Keyset, limit int) ([]*FeedItem, bool, error)
	// FindFeedItemsByIDs hydrates ids in no particular order; missing or deleted ids are skipped.
	FindFeedItemsByIDs(ctx context.Context, ids []int64, viewerID int64) ([]*FeedItem, error)
	// FindRecentPosts returns the author's newest non-deleted, non-repost top-level posts.
	FindRecentPosts(ctx context.Context, authorID int64, limit int) ([]*PostSummary, error)
	FindAllPostIDs(ctx context.Context, authorID int64) ([]int64, error)
}
