package database

import (
	"context"

	"socialfeed/internal/core/follower"
	"socialfeed/internal/core/post"
	"socialfeed/internal/core/timeline"
	"socialfeed/internal/core/user"
	timelinePort "socialfeed/internal/ports/timeline"

	"github.com/ecodeclub/ekit/slice"
	"gorm.io/gorm"
)

// TimelineReaderDatabase serves every timeline straight from MySQL, newest
// first by (created_at, id).
type TimelineReaderDatabase struct {
	DB *gorm.DB
}

func NewTimelineReaderDatabase(db *gorm.DB) *TimelineReaderDatabase {
	return &TimelineReaderDatabase{DB: db}
}

// livePosts selects non-deleted rows, dropping reposts whose original is gone.
func (repo *TimelineReaderDatabase) livePosts(ctx context.Context) *gorm.DB {
	return repo.DB.WithContext(ctx).
		Model(&post.Post{}).
		Select("posts.*").
		Joins("LEFT JOIN posts AS originals ON originals.id = posts.repost_of_id").
		Where("posts.deleted_at IS NULL").
		Where("(posts.repost_of_id IS NULL OR originals.deleted_at IS NULL)")
}

func (repo *TimelineReaderDatabase) page(ctx context.Context, q *gorm.DB, viewerID int64, cursor *timeline.Keyset, limit int) ([]*timelinePort.FeedItem, bool, error) {
	if cursor != nil {
		q = q.Where("(posts.created_at < ? OR (posts.created_at = ? AND posts.id < ?))",
			cursor.Timestamp, cursor.Timestamp, cursor.ID)
	}

	var rows []*post.Post
	if err := q.Order("posts.created_at DESC").Order("posts.id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, false, err
	}

	hasNext := len(rows) > limit
	if hasNext {
		rows = rows[:limit]
	}
	items, err := repo.hydrate(ctx, rows, viewerID)
	if err != nil {
		return nil, false, err
	}
	return items, hasNext, nil
}

func (repo *TimelineReaderDatabase) FindUserTimeline(ctx context.Context, targetUserID, viewerID int64, cursor *timeline.Keyset, limit int) ([]*timelinePort.FeedItem, bool, error) {
	q := repo.livePosts(ctx).
		Where("posts.user_id = ? AND posts.parent_id IS NULL", targetUserID)
	return repo.page(ctx, q, viewerID, cursor, limit)
}

// FindHomeTimeline merges the viewer's own top-level posts with those of
// everyone the viewer follows.
func (repo *TimelineReaderDatabase) FindHomeTimeline(ctx context.Context, viewerID int64, cursor *timeline.Keyset, limit int) ([]*timelinePort.FeedItem, bool, error) {
	followees := repo.DB.Model(&follower.Follower{}).
		Select("user_id").
		Where("follower_id = ?", viewerID)

	q := repo.livePosts(ctx).
		Where("(posts.user_id IN (?) OR posts.user_id = ?)", followees, viewerID).
		Where("posts.parent_id IS NULL")
	return repo.page(ctx, q, viewerID, cursor, limit)
}

func (repo *TimelineReaderDatabase) FindReplies(ctx context.Context, parentID, viewerID int64, cursor *timeline.Keyset, limit int) ([]*timelinePort.FeedItem, bool, error) {
	q := repo.livePosts(ctx).Where("posts.parent_id = ?", parentID)
	return repo.page(ctx, q, viewerID, cursor, limit)
}

func (repo *TimelineReaderDatabase) FindFeedItemsByIDs(ctx context.Context, ids []int64, viewerID int64) ([]*timelinePort.FeedItem, error) {
	if len(ids) == 0 {
		return []*timelinePort.FeedItem{}, nil
	}
	var rows []*post.Post
	if err := repo.livePosts(ctx).Where("posts.id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return repo.hydrate(ctx, rows, viewerID)
}

// FindRecentPosts returns the author's newest live top-level posts, reposts
// excluded. A new follower's home timeline is seeded with them.
func (repo *TimelineReaderDatabase) FindRecentPosts(ctx context.Context, authorID int64, limit int) ([]*timelinePort.PostSummary, error) {
	var rows []*post.Post
	err := repo.DB.WithContext(ctx).
		Where("user_id = ? AND deleted_at IS NULL", authorID).
		Where("parent_id IS NULL AND repost_of_id IS NULL").
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return slice.Map(rows, func(idx int, src *post.Post) *timelinePort.PostSummary {
		return &timelinePort.PostSummary{ID: src.ID, AuthorID: src.UserID, CreatedAt: src.CreatedAt}
	}), nil
}

// FindAllPostIDs includes deleted rows; removing them from a cache is a no-op.
func (repo *TimelineReaderDatabase) FindAllPostIDs(ctx context.Context, authorID int64) ([]int64, error) {
	var ids []int64
	if err := repo.DB.WithContext(ctx).Model(&post.Post{}).
		Where("user_id = ?", authorID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// hydrate loads what the rows point at (originals, authors, viewer flags)
// with one query each and hands off to assembleFeedItems.
func (repo *TimelineReaderDatabase) hydrate(ctx context.Context, rows []*post.Post, viewerID int64) ([]*timelinePort.FeedItem, error) {
	if len(rows) == 0 {
		return []*timelinePort.FeedItem{}, nil
	}
	db := repo.DB.WithContext(ctx)

	var originalIDs []int64
	for _, r := range rows {
		if r.RepostOfID != nil {
			originalIDs = append(originalIDs, *r.RepostOfID)
		}
	}
	originals := make(map[int64]*post.Post, len(originalIDs))
	if len(originalIDs) > 0 {
		var list []*post.Post
		if err := db.Where("id IN ? AND deleted_at IS NULL", originalIDs).Find(&list).Error; err != nil {
			return nil, err
		}
		for _, o := range list {
			originals[o.ID] = o
		}
	}

	userIDs := slice.Map(rows, func(idx int, src *post.Post) int64 { return src.UserID })
	for _, o := range originals {
		userIDs = append(userIDs, o.UserID)
	}
	var userList []*user.User
	if err := db.Where("id IN ?", userIDs).Find(&userList).Error; err != nil {
		return nil, err
	}
	users := make(map[int64]*user.User, len(userList))
	for _, u := range userList {
		users[u.ID] = u
	}

	liked := map[int64]bool{}
	reposted := map[int64]bool{}
	if viewerID > 0 {
		contentIDs := slice.Map(rows, func(idx int, src *post.Post) int64 {
			if src.RepostOfID != nil {
				return *src.RepostOfID
			}
			return src.ID
		})

		var likedIDs []int64
		if err := db.Model(&post.Like{}).
			Where("user_id = ? AND post_id IN ?", viewerID, contentIDs).
			Pluck("post_id", &likedIDs).Error; err != nil {
			return nil, err
		}
		var repostedIDs []int64
		if err := db.Model(&post.Post{}).
			Where("user_id = ? AND repost_of_id IN ? AND deleted_at IS NULL", viewerID, contentIDs).
			Pluck("repost_of_id", &repostedIDs).Error; err != nil {
			return nil, err
		}
		for _, id := range likedIDs {
			liked[id] = true
		}
		for _, id := range repostedIDs {
			reposted[id] = true
		}
	}

	return assembleFeedItems(rows, originals, users, liked, reposted), nil
}

// assembleFeedItems keeps the order of rows. Reposts whose original is
// missing from originals are skipped.
func assembleFeedItems(
	rows []*post.Post,
	originals map[int64]*post.Post,
	users map[int64]*user.User,
	liked, reposted map[int64]bool,
) []*timelinePort.FeedItem {
	items := make([]*timelinePort.FeedItem, 0, len(rows))
	for _, r := range rows {
		content := r
		if r.RepostOfID != nil {
			content = originals[*r.RepostOfID]
			if content == nil {
				continue
			}
		}

		item := &timelinePort.FeedItem{
			ID:          r.ID,
			Content:     content.Content,
			Author:      summarize(content.UserID, users),
			CreatedAt:   content.CreatedAt,
			ParentID:    content.ParentID,
			LikeCount:   content.LikeCount,
			RepostCount: content.RepostCount,
			ReplyCount:  content.ReplyCount,
			Liked:       liked[content.ID],
			Reposted:    reposted[content.ID],
		}
		if r.RepostOfID != nil {
			by := summarize(r.UserID, users)
			at := r.CreatedAt
			item.IsRepost = true
			item.OriginalPostID = content.ID
			item.RepostedBy = &by
			item.RepostedAt = &at
		}
		items = append(items, item)
	}
	return items
}

func summarize(id int64, users map[int64]*user.User) timelinePort.UserSummary {
	u, ok := users[id]
	if !ok {
		return timelinePort.UserSummary{ID: id}
	}
	return timelinePort.UserSummary{ID: u.ID, Username: u.Username, Name: u.Name, Family: u.Family}
}
