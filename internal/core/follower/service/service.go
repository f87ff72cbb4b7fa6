package followerapp

import (
	"context"

	"socialfeed/internal/core/fanout"
	followerEntity "socialfeed/internal/core/follower"
	fanoutPort "socialfeed/internal/ports/fanout"
	followerPort "socialfeed/internal/ports/follower"
	userPort "socialfeed/internal/ports/user"

	"github.com/ecodeclub/ekit/slice"
	"go.uber.org/zap"
)

type FollowerService struct {
	FollowerRepository followerPort.FollowerRepository
	UserRepository     userPort.UserRepository
	Queue              fanoutPort.Producer
	Logger             *zap.Logger
}

func NewFollowerService(
	repo followerPort.FollowerRepository,
	users userPort.UserRepository,
	queue fanoutPort.Producer,
	logger *zap.Logger,
) *FollowerService {
	return &FollowerService{
		FollowerRepository: repo,
		UserRepository:     users,
		Queue:              queue,
		Logger:             logger,
	}
}

func (s *FollowerService) FollowUser(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return followerEntity.ErrSelfFollow.New("user %d", followerID)
	}
	if _, err := s.UserRepository.FindByID(ctx, followeeID); err != nil {
		return err
	}

	_, err := s.FollowerRepository.FollowUser(ctx, &followerEntity.Follower{
		UserID:     followeeID,
		FollowerID: followerID,
	})
	if err != nil {
		return err
	}
	s.enqueue(ctx, fanout.NewFollowCreated(followerID, followeeID))
	return nil
}

func (s *FollowerService) UnfollowUser(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return followerEntity.ErrSelfFollow.New("user %d", followerID)
	}
	removed, err := s.FollowerRepository.UnfollowUser(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !removed {
		return followerEntity.ErrConflict.New("user %d does not follow %d", followerID, followeeID)
	}
	s.enqueue(ctx, fanout.NewFollowRemoved(followerID, followeeID))
	return nil
}

func (s *FollowerService) GetFollowersByUserID(ctx context.Context, userID int64) ([]*followerPort.FollowerDTO, error) {
	followers, err := s.FollowerRepository.GetFollowersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(followers), nil
}

func (s *FollowerService) GetFollowingByUserID(ctx context.Context, userID int64) ([]*followerPort.FollowerDTO, error) {
	following, err := s.FollowerRepository.GetFollowingByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(following), nil
}

func (s *FollowerService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.FollowerRepository.IsFollowing(ctx, followerID, followeeID)
}

func (s *FollowerService) enqueue(ctx context.Context, event fanout.Event) {
	if err := s.Queue.Enqueue(ctx, event); err != nil {
		s.Logger.Error("could not enqueue fanout event",
			zap.String("kind", string(event.Kind)),
			zap.String("eventID", event.ID),
			zap.Int64("followerID", event.FollowerID),
			zap.Int64("followeeID", event.FolloweeID),
			zap.Error(err))
	}
}

// toDTOs never returns nil so the JSON body is [] rather than null.
func toDTOs(rows []*followerEntity.Follower) []*followerPort.FollowerDTO {
	if len(rows) == 0 {
		return []*followerPort.FollowerDTO{}
	}
	return slice.Map(rows, func(idx int, src *followerEntity.Follower) *followerPort.FollowerDTO {
		return &followerPort.FollowerDTO{
			ID:         src.ID,
			UserID:     src.UserID,
			FollowerID: src.FollowerID,
		}
	})
}
