package postapp

import (
	"context"
	"strings"

	"socialfeed/internal/core/fanout"
	postEntity "socialfeed/internal/core/post"
	fanoutPort "socialfeed/internal/ports/fanout"
	postPort "socialfeed/internal/ports/post"

	"go.uber.org/zap"
)

type PostService struct {
	PostRepository postPort.PostRepository
	Queue          fanoutPort.Producer
	Logger         *zap.Logger
}

func NewPostService(postRepo postPort.PostRepository, queue fanoutPort.Producer, logger *zap.Logger) *PostService {
	return &PostService{
		PostRepository: postRepo,
		Queue:          queue,
		Logger:         logger,
	}
}

// CreatePost stores a top-level post and queues its fan-out.
func (s *PostService) CreatePost(ctx context.Context, userID int64, content string) (*postPort.PostDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, postEntity.ErrInvalid.New("content is empty")
	}

	created, err := s.PostRepository.Create(ctx, &postEntity.Post{
		Content: content,
		UserID:  userID,
	})
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, fanout.NewPostCreated(created.ID, created.UserID, created.CreatedAt))
	return postPort.ToDTO(created), nil
}

// Reply answers parentID. Replies stay off home timelines.
func (s *PostService) Reply(ctx context.Context, userID, parentID int64, content string) (*postPort.PostDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, postEntity.ErrInvalid.New("content is empty")
	}
	if _, err := s.PostRepository.FindByID(ctx, parentID); err != nil {
		return nil, err
	}

	created, err := s.PostRepository.CreateReply(ctx, &postEntity.Post{
		Content:  content,
		UserID:   userID,
		ParentID: &parentID,
	})
	if err != nil {
		return nil, err
	}
	return postPort.ToDTO(created), nil
}

// Repost shares postID with the user's followers. Reposting a repost shares
// its original.
func (s *PostService) Repost(ctx context.Context, userID, postID int64) (*postPort.PostDTO, error) {
	original, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if original.IsRepost() {
		if original, err = s.PostRepository.FindByID(ctx, *original.RepostOfID); err != nil {
			return nil, err
		}
	}

	originalID := original.ID
	created, err := s.PostRepository.CreateRepost(ctx, &postEntity.Post{
		UserID:     userID,
		RepostOfID: &originalID,
	})
	if err != nil {
		return nil, err
	}
	s.enqueue(ctx, fanout.NewPostCreated(created.ID, created.UserID, created.CreatedAt))
	return postPort.ToDTO(created), nil
}

// DeletePost soft-deletes a post of userID and pulls it from home timelines.
func (s *PostService) DeletePost(ctx context.Context, userID, postID int64) error {
	p, err := s.PostRepository.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if p.UserID != userID {
		return postEntity.ErrForbidden.New("post %d belongs to user %d", postID, p.UserID)
	}

	deleted, err := s.PostRepository.SoftDelete(ctx, postID)
	if err != nil {
		return err
	}
	if !deleted {
		return postEntity.ErrNotFound.New("%d", postID)
	}
	if p.FansOut() {
		s.enqueue(ctx, fanout.NewPostDeleted(p.ID, p.UserID))
	}
	return nil
}

// LikePost reports false when the user already liked the post.
func (s *PostService) LikePost(ctx context.Context, userID, postID int64) (bool, error) {
	if _, err := s.PostRepository.FindByID(ctx, postID); err != nil {
		return false, err
	}
	return s.PostRepository.Like(ctx, userID, postID)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID int64) (bool, error) {
	return s.PostRepository.Unlike(ctx, userID, postID)
}

// enqueue never fails the write; a lost event only costs cache freshness.
func (s *PostService) enqueue(ctx context.Context, event fanout.Event) {
	if err := s.Queue.Enqueue(ctx, event); err != nil {
		s.Logger.Error("could not enqueue fanout event",
			zap.String("kind", string(event.Kind)),
			zap.String("eventID", event.ID),
			zap.Int64("postID", event.PostID),
			zap.Error(err))
	}
}
