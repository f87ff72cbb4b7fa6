package timeline

import (
	"time"

	"socialfeed/internal/core/timeline"
)

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Family   string `json:"family"`
}

// FeedItem is one entry of any timeline page. For a repost, ID and RepostedAt
// belong to the repost row while content, author and counts are the original's.
type FeedItem struct {
	ID             int64        `json:"id"`
	Content        string       `json:"content"`
	Author         UserSummary  `json:"author"`
	CreatedAt      time.Time    `json:"created_at"`
	ParentID       *int64       `json:"parent_id,omitempty"`
	LikeCount      int64        `json:"like_count"`
	RepostCount    int64        `json:"repost_count"`
	ReplyCount     int64        `json:"reply_count"`
	Liked          bool         `json:"liked"`
	Reposted       bool         `json:"reposted"`
	IsRepost       bool         `json:"is_repost"`
	OriginalPostID int64        `json:"original_post_id,omitempty"`
	RepostedBy     *UserSummary `json:"reposted_by,omitempty"`
	RepostedAt     *time.Time   `json:"reposted_at,omitempty"`
}

// SortKey is the (timestamp, id) pair the item is ordered by.
func (i *FeedItem) SortKey() (time.Time, int64) {
	if i.IsRepost && i.RepostedAt != nil {
		return *i.RepostedAt, i.ID
	}
	return i.CreatedAt, i.ID
}

type PostSummary struct {
	ID        int64
	AuthorID  int64
	CreatedAt time.Time
}

// Page is the response envelope of every timeline read.
type Page struct {
	Items      []*FeedItem         `json:"items"`
	HasNext    bool                `json:"has_next"`
	NextCursor string              `json:"next_cursor,omitempty"`
	CursorKind timeline.CursorKind `json:"cursor_kind"`
}
