package postapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialfeed/internal/core/fanout"
	postEntity "socialfeed/internal/core/post"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryPosts struct {
	rows   map[int64]*postEntity.Post
	nextID int64
	likes  map[[2]int64]bool
}

func newMemoryPosts(seed ...*postEntity.Post) *memoryPosts {
	m := &memoryPosts{rows: map[int64]*postEntity.Post{}, nextID: 100, likes: map[[2]int64]bool{}}
	for _, p := range seed {
		m.rows[p.ID] = p
	}
	return m
}

func (m *memoryPosts) insert(p *postEntity.Post) *postEntity.Post {
	m.nextID++
	p.ID = m.nextID
	p.CreatedAt = time.Now().UTC()
	m.rows[p.ID] = p
	return p
}

func (m *memoryPosts) Create(_ context.Context, p *postEntity.Post) (*postEntity.Post, error) {
	return m.insert(p), nil
}

func (m *memoryPosts) CreateRepost(_ context.Context, p *postEntity.Post) (*postEntity.Post, error) {
	for _, r := range m.rows {
		if r.RepostOfID != nil && *r.RepostOfID == *p.RepostOfID && r.UserID == p.UserID && r.DeletedAt == nil {
			return nil, postEntity.ErrConflict.New("duplicate")
		}
	}
	return m.insert(p), nil
}

func (m *memoryPosts) CreateReply(_ context.Context, p *postEntity.Post) (*postEntity.Post, error) {
	return m.insert(p), nil
}

func (m *memoryPosts) FindByID(_ context.Context, id int64) (*postEntity.Post, error) {
	p, ok := m.rows[id]
	if !ok || p.DeletedAt != nil {
		return nil, postEntity.ErrNotFound.New("%d", id)
	}
	return p, nil
}

func (m *memoryPosts) SoftDelete(_ context.Context, id int64) (bool, error) {
	p, ok := m.rows[id]
	if !ok || p.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	p.DeletedAt = &now
	return true, nil
}

func (m *memoryPosts) Like(_ context.Context, userID, postID int64) (bool, error) {
	key := [2]int64{userID, postID}
	if m.likes[key] {
		return false, nil
	}
	m.likes[key] = true
	return true, nil
}

func (m *memoryPosts) Unlike(_ context.Context, userID, postID int64) (bool, error) {
	key := [2]int64{userID, postID}
	if !m.likes[key] {
		return false, nil
	}
	delete(m.likes, key)
	return true, nil
}

type recordingQueue struct {
	events []fanout.Event
	err    error
}

func (q *recordingQueue) Enqueue(_ context.Context, e fanout.Event) error {
	if q.err != nil {
		return q.err
	}
	q.events = append(q.events, e)
	return nil
}

func int64p(v int64) *int64 { return &v }

func TestCreatePostQueuesFanout(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewPostService(newMemoryPosts(), queue, zap.NewNop())

	dto, err := svc.CreatePost(context.Background(), 7, "  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", dto.Content)

	require.Len(t, queue.events, 1)
	e := queue.events[0]
	assert.Equal(t, fanout.KindPostCreated, e.Kind)
	assert.Equal(t, dto.ID, e.PostID)
	assert.Equal(t, int64(7), e.AuthorID)
	require.NotNil(t, e.CreatedAt)
	assert.True(t, dto.CreatedAt.Equal(*e.CreatedAt))
}

func TestCreatePostRejectsBlankContent(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewPostService(newMemoryPosts(), queue, zap.NewNop())

	_, err := svc.CreatePost(context.Background(), 7, " \n\t")
	assert.True(t, postEntity.ErrInvalid.Has(err))
	assert.Empty(t, queue.events)
}

func TestCreatePostSurvivesQueueOutage(t *testing.T) {
	posts := newMemoryPosts()
	svc := NewPostService(posts, &recordingQueue{err: errors.New("queue down")}, zap.NewNop())

	dto, err := svc.CreatePost(context.Background(), 7, "still saved")
	require.NoError(t, err)
	assert.Contains(t, posts.rows, dto.ID)
}

func TestReplyStaysOffHomeTimelines(t *testing.T) {
	queue := &recordingQueue{}
	svc := NewPostService(newMemoryPosts(&postEntity.Post{ID: 1, UserID: 2, Content: "root"}), queue, zap.NewNop())

	dto, err := svc.Reply(context.Background(), 3, 1, "agreed")
	require.NoError(t, err)
	require.NotNil(t, dto.ParentID)
	assert.Equal(t, int64(1), *dto.ParentID)
	assert.Empty(t, queue.events)

	_, err = svc.Reply(context.Background(), 3, 999, "to nothing")
	assert.True(t, postEntity.ErrNotFound.Has(err))
}

func TestRepostTargetsTheOriginal(t *testing.T) {
	queue := &recordingQueue{}
	posts := newMemoryPosts(
		&postEntity.Post{ID: 1, UserID: 2, Content: "root"},
		&postEntity.Post{ID: 5, UserID: 3, RepostOfID: int64p(1)},
	)
	svc := NewPostService(posts, queue, zap.NewNop())

	dto, err := svc.Repost(context.Background(), 4, 5)
	require.NoError(t, err)
	require.NotNil(t, dto.RepostOfID)
	assert.Equal(t, int64(1), *dto.RepostOfID)

	require.Len(t, queue.events, 1)
	assert.Equal(t, dto.ID, queue.events[0].PostID, "the repost row is what fans out")
	assert.Equal(t, int64(4), queue.events[0].AuthorID)

	_, err = svc.Repost(context.Background(), 4, 1)
	assert.True(t, postEntity.ErrConflict.Has(err))
	assert.Len(t, queue.events, 1)
}

func TestDeletePost(t *testing.T) {
	testCases := []struct {
		name      string
		userID    int64
		postID    int64
		wantErr   func(error) bool
		wantEvent bool
	}{
		{name: "owner deletes top-level post", userID: 2, postID: 1, wantEvent: true},
		{name: "owner deletes reply", userID: 3, postID: 2},
		{name: "someone else's post", userID: 9, postID: 1, wantErr: postEntity.ErrForbidden.Has},
		{name: "missing post", userID: 2, postID: 404, wantErr: postEntity.ErrNotFound.Has},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			queue := &recordingQueue{}
			posts := newMemoryPosts(
				&postEntity.Post{ID: 1, UserID: 2, Content: "root"},
				&postEntity.Post{ID: 2, UserID: 3, Content: "reply", ParentID: int64p(1)},
			)
			svc := NewPostService(posts, queue, zap.NewNop())

			err := svc.DeletePost(context.Background(), tc.userID, tc.postID)
			if tc.wantErr != nil {
				assert.True(t, tc.wantErr(err), "got %v", err)
				assert.Empty(t, queue.events)
				return
			}
			require.NoError(t, err)
			if tc.wantEvent {
				require.Len(t, queue.events, 1)
				assert.Equal(t, fanout.KindPostDeleted, queue.events[0].Kind)
				assert.Equal(t, tc.postID, queue.events[0].PostID)
			} else {
				assert.Empty(t, queue.events)
			}

			err = svc.DeletePost(context.Background(), tc.userID, tc.postID)
			assert.True(t, postEntity.ErrNotFound.Has(err), "second delete: %v", err)
		})
	}
}

func TestLikeIsIdempotent(t *testing.T) {
	svc := NewPostService(newMemoryPosts(&postEntity.Post{ID: 1, UserID: 2}), &recordingQueue{}, zap.NewNop())

	liked, err := svc.LikePost(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = svc.LikePost(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.False(t, liked)

	unliked, err := svc.UnlikePost(context.Background(), 3, 1)
	require.NoError(t, err)
	assert.True(t, unliked)

	_, err = svc.LikePost(context.Background(), 3, 77)
	assert.True(t, postEntity.ErrNotFound.Has(err))
}
