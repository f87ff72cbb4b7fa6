package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"socialfeed/internal/adapters/httpapi/middleware"
	"socialfeed/internal/core/follower"
	"socialfeed/internal/core/post"
	"socialfeed/internal/core/timeline"
	followerPort "socialfeed/internal/ports/follower"
	postPort "socialfeed/internal/ports/post"
	timelinePort "socialfeed/internal/ports/timeline"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("router-test-secret")

type stubPosts struct {
	deleteErr  error
	lastUserID int64
}

func (s *stubPosts) CreatePost(_ context.Context, userID int64, content string) (*postPort.PostDTO, error) {
	s.lastUserID = userID
	if strings.TrimSpace(content) == "" {
		return nil, post.ErrInvalid.New("content is empty")
	}
	return &postPort.PostDTO{ID: 1, UserID: userID, Content: content}, nil
}

func (s *stubPosts) Reply(_ context.Context, userID, parentID int64, content string) (*postPort.PostDTO, error) {
	return &postPort.PostDTO{ID: 2, UserID: userID, Content: content, ParentID: &parentID}, nil
}

func (s *stubPosts) Repost(_ context.Context, userID, postID int64) (*postPort.PostDTO, error) {
	return &postPort.PostDTO{ID: 3, UserID: userID, RepostOfID: &postID}, nil
}

func (s *stubPosts) DeletePost(_ context.Context, userID, _ int64) error {
	s.lastUserID = userID
	return s.deleteErr
}

func (s *stubPosts) LikePost(context.Context, int64, int64) (bool, error)   { return true, nil }
func (s *stubPosts) UnlikePost(context.Context, int64, int64) (bool, error) { return true, nil }

type stubFollowers struct{ err error }

func (s *stubFollowers) FollowUser(_ context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return follower.ErrSelfFollow.New("user %d", followerID)
	}
	return s.err
}

func (s *stubFollowers) UnfollowUser(context.Context, int64, int64) error { return s.err }

func (s *stubFollowers) GetFollowersByUserID(context.Context, int64) ([]*followerPort.FollowerDTO, error) {
	return []*followerPort.FollowerDTO{}, nil
}

func (s *stubFollowers) GetFollowingByUserID(context.Context, int64) ([]*followerPort.FollowerDTO, error) {
	return []*followerPort.FollowerDTO{}, nil
}

func (s *stubFollowers) IsFollowing(context.Context, int64, int64) (bool, error) { return true, nil }

type stubTimelines struct {
	viewerID int64
	cursor   string
	limit    int
	err      error
}

func (s *stubTimelines) GetHomeTimeline(_ context.Context, viewerID int64, cursor string, limit int) (*timelinePort.Page, error) {
	s.viewerID, s.cursor, s.limit = viewerID, cursor, limit
	if s.err != nil {
		return nil, s.err
	}
	return &timelinePort.Page{
		Items:      []*timelinePort.FeedItem{{ID: 9, Content: "hi"}},
		HasNext:    true,
		NextCursor: "20",
		CursorKind: timeline.OffsetCursor,
	}, nil
}

func (s *stubTimelines) GetUserTimeline(context.Context, int64, int64, string, int) (*timelinePort.Page, error) {
	return &timelinePort.Page{Items: []*timelinePort.FeedItem{}, CursorKind: timeline.KeysetCursor}, s.err
}

func (s *stubTimelines) GetReplies(context.Context, int64, int64, string, int) (*timelinePort.Page, error) {
	return &timelinePort.Page{Items: []*timelinePort.FeedItem{}, CursorKind: timeline.KeysetCursor}, s.err
}

type testServer struct {
	engine    *gin.Engine
	posts     *stubPosts
	followers *stubFollowers
	timelines *stubTimelines
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &testServer{posts: &stubPosts{}, followers: &stubFollowers{}, timelines: &stubTimelines{}}
	s.engine = SetupRoutes(s.posts, s.followers, s.timelines, RouterDeps{
		JWTSecret:  testSecret,
		Registry:   prometheus.NewRegistry(),
		InstanceID: "test",
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID > 0 {
		token, err := middleware.IssueToken(testSecret, userID, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	foreign, err := middleware.IssueToken([]byte("someone else"), 1, time.Hour)
	require.NoError(t, err)
	expired, err := middleware.IssueToken(testSecret, 1, -time.Minute)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		header string
	}{
		{name: "no header"},
		{name: "not bearer", header: "Basic abc"},
		{name: "garbage token", header: "Bearer abc.def.ghi"},
		{name: "wrong secret", header: "Bearer " + foreign},
		{name: "expired", header: "Bearer " + expired},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/timeline/home", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			s.engine.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestHomeTimelineRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/timeline/home?cursor=20&limit=5", "", 42)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), s.timelines.viewerID)
	assert.Equal(t, "20", s.timelines.cursor)
	assert.Equal(t, 5, s.timelines.limit)

	var body struct {
		Items []struct {
			ID int64 `json:"id"`
		} `json:"items"`
		HasNext    bool   `json:"has_next"`
		NextCursor string `json:"next_cursor"`
		CursorKind string `json:"cursor_kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(9), body.Items[0].ID)
	assert.True(t, body.HasNext)
	assert.Equal(t, "20", body.NextCursor)
	assert.Equal(t, "offset", body.CursorKind)
}

func TestTimelineRouteErrors(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{name: "invalid cursor", path: "/timeline/home?cursor=zz", err: timeline.ErrInvalidCursor.New("bad"), wantCode: http.StatusBadRequest, wantMsg: "invalid cursor"},
		{name: "invalid limit", path: "/timeline/home?limit=ten", wantCode: http.StatusBadRequest, wantMsg: "invalid limit"},
		{name: "store failure", path: "/timeline/home", err: errors.New("db gone"), wantCode: http.StatusInternalServerError, wantMsg: "could not fetch timeline"},
		{name: "bad user id", path: "/users/abc/timeline", wantCode: http.StatusBadRequest, wantMsg: "invalid id"},
		{name: "replies bad cursor", path: "/posts/3/replies?cursor=zz", err: timeline.ErrInvalidCursor.New("bad"), wantCode: http.StatusBadRequest, wantMsg: "invalid cursor"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.timelines.err = tc.err

			rec := s.do(t, http.MethodGet, tc.path, "", 1)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.JSONEq(t, `{"error":"`+tc.wantMsg+`"}`, rec.Body.String())
		})
	}
}

func TestPostRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/posts", `{"content":"hello"}`, 7)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), s.posts.lastUserID)

	rec = s.do(t, http.MethodPost, "/posts", `{}`, 7)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/posts", `{"content":"   "}`, 7)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/posts/5/replies", `{"content":"re"}`, 7)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/posts/5/repost", "", 7)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/posts/5/like", "", 7)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"liked":true,"changed":true}`, rec.Body.String())
}

func TestDeletePostRoute(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "deleted", wantCode: http.StatusNoContent},
		{name: "not owner", err: post.ErrForbidden.New("x"), wantCode: http.StatusForbidden},
		{name: "missing", err: post.ErrNotFound.New("x"), wantCode: http.StatusNotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestServer(t)
			s.posts.deleteErr = tc.err

			rec := s.do(t, http.MethodDelete, "/posts/5", "", 7)
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestFollowRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/follow", `{"followed_id":2}`, 1)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/follow", `{"followed_id":1}`, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/follow", `{"followed_id":0}`, 1)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.followers.err = follower.ErrConflict.New("already")
	rec = s.do(t, http.MethodPost, "/follow", `{"followed_id":2}`, 1)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/followers", "", 1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/following/2", "", 1)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"following":true}`, rec.Body.String())
}

func TestMetricsEndpointIsPublic(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/timeline/home", "", 1)

	rec := s.do(t, http.MethodGet, "/metrics", "", 0)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "socialfeed_http_request_active_req")
	assert.Contains(t, rec.Body.String(), `pattern="/timeline/home"`)
}
