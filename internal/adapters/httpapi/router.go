package httpapi

import (
	"context"

	"socialfeed/internal/adapters/httpapi/middleware"
	followerPort "socialfeed/internal/ports/follower"
	postPort "socialfeed/internal/ports/post"
	timelinePort "socialfeed/internal/ports/timeline"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type PostUseCase interface {
	CreatePost(ctx context.Context, userID int64, content string) (*postPort.PostDTO, error)
	Reply(ctx context.Context, userID, parentID int64, content string) (*postPort.PostDTO, error)
	Repost(ctx context.Context, userID, postID int64) (*postPort.PostDTO, error)
	DeletePost(ctx context.Context, userID, postID int64) error
	LikePost(ctx context.Context, userID, postID int64) (bool, error)
	UnlikePost(ctx context.Context, userID, postID int64) (bool, error)
}

type FollowerUseCase interface {
	FollowUser(ctx context.Context, followerID, followeeID int64) error
	UnfollowUser(ctx context.Context, followerID, followeeID int64) error
	GetFollowersByUserID(ctx context.Context, userID int64) ([]*followerPort.FollowerDTO, error)
	GetFollowingByUserID(ctx context.Context, userID int64) ([]*followerPort.FollowerDTO, error)
	IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error)
}

type TimelineUseCase interface {
	GetHomeTimeline(ctx context.Context, viewerID int64, cursor string, limit int) (*timelinePort.Page, error)
	GetUserTimeline(ctx context.Context, targetUserID, viewerID int64, cursor string, limit int) (*timelinePort.Page, error)
	GetReplies(ctx context.Context, postID, viewerID int64, cursor string, limit int) (*timelinePort.Page, error)
}

// RouterDeps carries what SetupRoutes needs besides the use cases.
type RouterDeps struct {
	JWTSecret  []byte
	Registry   *prometheus.Registry
	InstanceID string
}

// SetupRoutes only routes; the use cases are injected from outside.
func SetupRoutes(
	postUC PostUseCase,
	followerUC FollowerUseCase,
	timelineUC TimelineUseCase,
	deps RouterDeps,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Registry != nil {
		r.Use(middleware.NewMetricBuilder("socialfeed", "http", "request",
			"HTTP requests by route", deps.InstanceID).Build(deps.Registry))
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	pc := NewPostController(postUC)
	fc := NewFollowerController(followerUC)
	tc := NewTimelineController(timelineUC)

	auth := r.Group("/", middleware.JWTAuthMiddleware(deps.JWTSecret))

	auth.GET("/timeline/home", tc.GetHomeTimeline)
	auth.GET("/users/:id/timeline", tc.GetUserTimeline)
	auth.GET("/posts/:id/replies", tc.GetReplies)

	auth.POST("/posts", pc.CreatePost)
	auth.POST("/posts/:id/replies", pc.Reply)
	auth.POST("/posts/:id/repost", pc.Repost)
	auth.DELETE("/posts/:id", pc.DeletePost)
	auth.POST("/posts/:id/like", pc.LikePost)
	auth.DELETE("/posts/:id/like", pc.UnlikePost)

	auth.POST("/follow", fc.FollowUser)
	auth.POST("/unfollow", fc.UnfollowUser)
	auth.GET("/followers", fc.GetFollowersByUserID)
	auth.GET("/following", fc.GetFollowingByUserID)
	auth.GET("/following/:id", fc.IsFollowing)
	return r
}
