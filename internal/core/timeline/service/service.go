package timelineapp

import (
	"context"

	"socialfeed/internal/core/timeline"
	"socialfeed/internal/metrics"
	timelinePort "socialfeed/internal/ports/timeline"

	"go.uber.org/zap"
)

const (
	standardPageSize = 20
	largestPageSize  = 100
)

// TimelineService serves the home, user and replies timelines. Only the home
// timeline goes through the cache.
type TimelineService struct {
	Cache        timelinePort.TimelineCache
	Reader       timelinePort.TimelineReader
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	DefaultLimit int
	MaxLimit     int
}

func NewTimelineService(
	cache timelinePort.TimelineCache,
	reader timelinePort.TimelineReader,
	defaultLimit, maxLimit int,
	m *metrics.Metrics,
	logger *zap.Logger,
) *TimelineService {
	if defaultLimit <= 0 {
		defaultLimit = standardPageSize
	}
	if maxLimit <= 0 {
		maxLimit = largestPageSize
	}
	return &TimelineService{
		Cache:        cache,
		Reader:       reader,
		Logger:       logger,
		Metrics:      m,
		DefaultLimit: defaultLimit,
		MaxLimit:     maxLimit,
	}
}

func (s *TimelineService) pageSize(limit int) int {
	switch {
	case limit <= 0:
		return s.DefaultLimit
	case limit > s.MaxLimit:
		return s.MaxLimit
	}
	return limit
}

// GetHomeTimeline reads a page of the viewer's home timeline. A blank or
// numeric cursor pages through the cache by offset; when the cache has
// nothing at that offset, or fails, the page comes from the authoritative
// store instead and carries a keyset cursor. A keyset cursor goes straight
// to the authoritative store.
//
// An empty cache is indistinguishable from an unpopulated one, so a viewer
// with no home entries always costs an authoritative query.
func (s *TimelineService) GetHomeTimeline(ctx context.Context, viewerID int64, cursor string, limit int) (*timelinePort.Page, error) {
	hc, err := timeline.ParseHomeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = s.pageSize(limit)

	if hc.Kind == timeline.KeysetCursor {
		return s.homeFromStore(ctx, viewerID, hc.Keyset, limit)
	}

	// one id past the page tells whether another page exists
	ids, err := s.Cache.RangeDescending(ctx, viewerID, hc.Offset, hc.Offset+int64(limit))
	if err != nil {
		s.Logger.Warn("home timeline cache read failed, using store",
			zap.Int64("viewerID", viewerID),
			zap.Error(err))
		return s.homeFromStore(ctx, viewerID, nil, limit)
	}
	if len(ids) == 0 {
		return s.homeFromStore(ctx, viewerID, nil, limit)
	}

	hasNext := len(ids) > limit
	if hasNext {
		ids = ids[:limit]
	}
	items, err := s.Reader.FindFeedItemsByIDs(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	page := &timelinePort.Page{
		Items:      orderByIDs(items, ids),
		HasNext:    hasNext,
		CursorKind: timeline.OffsetCursor,
	}
	if hasNext {
		page.NextCursor = timeline.EncodeOffset(hc.Offset + int64(limit))
	}
	s.Metrics.HomeRead(metrics.SourceCache)
	return page, nil
}

func (s *TimelineService) homeFromStore(ctx context.Context, viewerID int64, cursor *timeline.Keyset, limit int) (*timelinePort.Page, error) {
	items, hasNext, err := s.Reader.FindHomeTimeline(ctx, viewerID, cursor, limit)
	if err != nil {
		return nil, err
	}
	s.Metrics.HomeRead(metrics.SourceFallback)
	return keysetPage(items, hasNext)
}

func (s *TimelineService) GetUserTimeline(ctx context.Context, targetUserID, viewerID int64, cursor string, limit int) (*timelinePort.Page, error) {
	keyset, err := timeline.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	items, hasNext, err := s.Reader.FindUserTimeline(ctx, targetUserID, viewerID, keyset, s.pageSize(limit))
	if err != nil {
		return nil, err
	}
	return keysetPage(items, hasNext)
}

func (s *TimelineService) GetReplies(ctx context.Context, postID, viewerID int64, cursor string, limit int) (*timelinePort.Page, error) {
	keyset, err := timeline.DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	items, hasNext, err := s.Reader.FindReplies(ctx, postID, viewerID, keyset, s.pageSize(limit))
	if err != nil {
		return nil, err
	}
	return keysetPage(items, hasNext)
}

func keysetPage(items []*timelinePort.FeedItem, hasNext bool) (*timelinePort.Page, error) {
	if items == nil {
		items = []*timelinePort.FeedItem{}
	}
	page := &timelinePort.Page{
		Items:      items,
		HasNext:    hasNext,
		CursorKind: timeline.KeysetCursor,
	}
	if hasNext && len(items) > 0 {
		ts, id := items[len(items)-1].SortKey()
		next, err := timeline.EncodeCursor(ts, id)
		if err != nil {
			return nil, err
		}
		page.NextCursor = next
	}
	return page, nil
}

// orderByIDs returns items in the order of ids, skipping ids with no item.
func orderByIDs(items []*timelinePort.FeedItem, ids []int64) []*timelinePort.FeedItem {
	byID := make(map[int64]*timelinePort.FeedItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	ordered := make([]*timelinePort.FeedItem, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			ordered = append(ordered, it)
		}
	}
	return ordered
}
