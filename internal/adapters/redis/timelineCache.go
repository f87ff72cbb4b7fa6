package redis

import (
	"context"
	"fmt"
	"strconv"

	"socialfeed/internal/core/timeline"

	"github.com/go-redis/redis/v8"
)

// TimelineCacheRedis keeps each user's home timeline in the sorted set
// timeline:<userID>, members being post ids scored by feed instant.
type TimelineCacheRedis struct {
	Client redis.Cmdable
	Limit  int64
}

func NewTimelineCacheRedis(client redis.Cmdable, limit int64) *TimelineCacheRedis {
	if limit <= 0 {
		limit = timeline.DefaultCacheLimit
	}
	return &TimelineCacheRedis{
		Client: client,
		Limit:  limit,
	}
}

func timelineKey(userID int64) string {
	return "timeline:" + strconv.FormatInt(userID, 10)
}

// Add upserts the post and trims everything ranked below Limit. Both commands
// go out in one pipeline, each is atomic on its own.
func (r *TimelineCacheRedis) Add(ctx context.Context, ownerID, postID int64, score float64) error {
	key := timelineKey(ownerID)
	_, err := r.Client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, &redis.Z{
			Score:  score,
			Member: strconv.FormatInt(postID, 10),
		})
		// ranks are ascending by score; keep the last Limit of them
		pipe.ZRemRangeByRank(ctx, key, 0, -(r.Limit + 1))
		return nil
	})
	if err != nil {
		return timeline.ErrCacheUnavailable.Wrap(fmt.Errorf("add %d to %s: %w", postID, key, err))
	}
	return nil
}

func (r *TimelineCacheRedis) Remove(ctx context.Context, ownerID int64, postIDs ...int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	members := make([]interface{}, 0, len(postIDs))
	for _, id := range postIDs {
		members = append(members, strconv.FormatInt(id, 10))
	}

	key := timelineKey(ownerID)
	if err := r.Client.ZRem(ctx, key, members...).Err(); err != nil {
		return timeline.ErrCacheUnavailable.Wrap(fmt.Errorf("remove %d posts from %s: %w", len(postIDs), key, err))
	}
	return nil
}

func (r *TimelineCacheRedis) RangeDescending(ctx context.Context, ownerID, start, end int64) ([]int64, error) {
	if start < 0 || end < start {
		return nil, nil
	}

	key := timelineKey(ownerID)
	members, err := r.Client.ZRevRange(ctx, key, start, end).Result()
	if err != nil {
		return nil, timeline.ErrCacheUnavailable.Wrap(fmt.Errorf("range %s[%d:%d]: %w", key, start, end, err))
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, timeline.ErrCacheUnavailable.Wrap(fmt.Errorf("corrupt member %q in %s", m, key))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *TimelineCacheRedis) Size(ctx context.Context, ownerID int64) (int64, error) {
	n, err := r.Client.ZCard(ctx, timelineKey(ownerID)).Result()
	if err != nil {
		return 0, timeline.ErrCacheUnavailable.Wrap(err)
	}
	return n, nil
}
