package fanoutapp

import (
	"context"
	"sync"

	"socialfeed/internal/core/fanout"
	"socialfeed/internal/core/timeline"
	followerPort "socialfeed/internal/ports/follower"
	timelinePort "socialfeed/internal/ports/timeline"

	"github.com/zeebo/errs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBatchSize   = 100
	defaultParallelism = 16
	defaultSeedLimit   = 50
)

// FanoutService holds the handlers that keep per-user home timelines in
// step with posts and follows.
type FanoutService struct {
	Cache     timelinePort.TimelineCache
	Followers followerPort.FollowerResolver
	Posts     timelinePort.TimelineReader
	Logger    *zap.Logger

	// BatchSize bounds how many targets are in flight for one event.
	BatchSize int
	// Parallelism bounds concurrent cache calls within a batch.
	Parallelism int
	// SeedLimit is how many of a followee's posts a new follower receives.
	SeedLimit int
}

func NewFanoutService(
	cache timelinePort.TimelineCache,
	followers followerPort.FollowerResolver,
	posts timelinePort.TimelineReader,
	batchSize, seedLimit int,
	logger *zap.Logger,
) *FanoutService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if seedLimit <= 0 {
		seedLimit = defaultSeedLimit
	}
	return &FanoutService{
		Cache:       cache,
		Followers:   followers,
		Posts:       posts,
		Logger:      logger,
		BatchSize:   batchSize,
		Parallelism: defaultParallelism,
		SeedLimit:   seedLimit,
	}
}

// RegisterHandlers wires every event kind to its handler on d.
func RegisterHandlers(d *Dispatcher, s *FanoutService) {
	d.Register(fanout.KindPostCreated, s.HandlePostCreated)
	d.Register(fanout.KindPostDeleted, s.HandlePostDeleted)
	d.Register(fanout.KindFollowCreated, s.HandleFollowCreated)
	d.Register(fanout.KindFollowRemoved, s.HandleFollowRemoved)
}

// HandlePostCreated puts the post on the timelines of the author and every
// follower, scored by its creation time.
func (s *FanoutService) HandlePostCreated(ctx context.Context, e fanout.Event) error {
	targets, err := s.audience(ctx, e.AuthorID)
	if err != nil {
		return err
	}
	score := timeline.Score(*e.CreatedAt)

	err = s.forEachTarget(ctx, targets, func(ctx context.Context, ownerID int64) error {
		return s.Cache.Add(ctx, ownerID, e.PostID, score)
	})
	s.Logger.Debug("post fanned out",
		zap.Int64("postID", e.PostID),
		zap.Int64("authorID", e.AuthorID),
		zap.Int("targets", len(targets)),
		zap.Error(err))
	return err
}

// HandlePostDeleted removes the post from the same audience HandlePostCreated
// wrote to. Followers gained after the post was created may never have had it.
func (s *FanoutService) HandlePostDeleted(ctx context.Context, e fanout.Event) error {
	targets, err := s.audience(ctx, e.AuthorID)
	if err != nil {
		return err
	}
	return s.forEachTarget(ctx, targets, func(ctx context.Context, ownerID int64) error {
		return s.Cache.Remove(ctx, ownerID, e.PostID)
	})
}

// HandleFollowCreated seeds the follower's timeline with the followee's
// most recent posts.
func (s *FanoutService) HandleFollowCreated(ctx context.Context, e fanout.Event) error {
	posts, err := s.Posts.FindRecentPosts(ctx, e.FolloweeID, s.SeedLimit)
	if err != nil {
		return fanout.ErrProcessing.Wrap(err)
	}

	var group errs.Group
	for _, p := range posts {
		if err := ctx.Err(); err != nil {
			group.Add(err)
			break
		}
		group.Add(s.Cache.Add(ctx, e.FollowerID, p.ID, timeline.Score(p.CreatedAt)))
	}
	return group.Err()
}

// HandleFollowRemoved strips everything the followee ever posted from the
// follower's timeline.
func (s *FanoutService) HandleFollowRemoved(ctx context.Context, e fanout.Event) error {
	ids, err := s.Posts.FindAllPostIDs(ctx, e.FolloweeID)
	if err != nil {
		return fanout.ErrProcessing.Wrap(err)
	}

	var group errs.Group
	for start := 0; start < len(ids); start += s.BatchSize {
		end := min(start+s.BatchSize, len(ids))
		group.Add(s.Cache.Remove(ctx, e.FollowerID, ids[start:end]...))
	}
	return group.Err()
}

// audience is the author followed by every follower, without duplicates.
func (s *FanoutService) audience(ctx context.Context, authorID int64) ([]int64, error) {
	followers, err := s.Followers.FollowerIDsOf(ctx, authorID)
	if err != nil {
		return nil, fanout.ErrProcessing.Wrap(err)
	}

	seen := make(map[int64]struct{}, len(followers)+1)
	targets := make([]int64, 0, len(followers)+1)
	for _, id := range append([]int64{authorID}, followers...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}
	return targets, nil
}

// forEachTarget runs fn for every target, BatchSize at a time. A failing
// target does not stop the others; all failures come back combined.
func (s *FanoutService) forEachTarget(ctx context.Context, targets []int64, fn func(ctx context.Context, ownerID int64) error) error {
	var (
		mu    sync.Mutex
		group errs.Group
	)
	parallelism := s.Parallelism
	if parallelism <= 0 {
		parallelism = defaultParallelism
	}

	for start := 0; start < len(targets); start += s.BatchSize {
		if err := ctx.Err(); err != nil {
			group.Add(err)
			break
		}
		end := min(start+s.BatchSize, len(targets))

		var eg errgroup.Group
		eg.SetLimit(parallelism)
		for _, ownerID := range targets[start:end] {
			eg.Go(func() error {
				if err := fn(ctx, ownerID); err != nil {
					mu.Lock()
					group.Add(err)
					mu.Unlock()
				}
				return nil
			})
		}
		_ = eg.Wait()
	}
	return group.Err()
}
