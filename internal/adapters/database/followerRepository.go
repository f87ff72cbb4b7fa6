package database

import (
	"context"
	"errors"

	"socialfeed/internal/core/follower"

	"gorm.io/gorm"
)

type FollowerRepositoryDatabase struct {
	DB *gorm.DB
}

func NewFollowerRepositoryDatabase(db *gorm.DB) *FollowerRepositoryDatabase {
	return &FollowerRepositoryDatabase{DB: db}
}

func (repo *FollowerRepositoryDatabase) FollowUser(ctx context.Context, f *follower.Follower) (*follower.Follower, error) {
	if err := repo.DB.WithContext(ctx).Create(f).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, follower.ErrConflict.New("user %d already follows %d", f.FollowerID, f.UserID)
		}
		return nil, err
	}
	return f, nil
}

func (repo *FollowerRepositoryDatabase) UnfollowUser(ctx context.Context, followerID, followeeID int64) (bool, error) {
	res := repo.DB.WithContext(ctx).
		Where("follower_id = ? AND user_id = ?", followerID, followeeID).
		Delete(&follower.Follower{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (repo *FollowerRepositoryDatabase) GetFollowersByUserID(ctx context.Context, userID int64) ([]*follower.Follower, error) {
	var followers []*follower.Follower
	if err := repo.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&followers).Error; err != nil {
		return nil, err
	}
	return followers, nil
}

func (repo *FollowerRepositoryDatabase) GetFollowingByUserID(ctx context.Context, followerID int64) ([]*follower.Follower, error) {
	var following []*follower.Follower
	if err := repo.DB.WithContext(ctx).Where("follower_id = ?", followerID).Order("id DESC").Find(&following).Error; err != nil {
		return nil, err
	}
	return following, nil
}

func (repo *FollowerRepositoryDatabase) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var count int64
	if err := repo.DB.WithContext(ctx).Model(&follower.Follower{}).
		Where("follower_id = ? AND user_id = ?", followerID, followeeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FollowerIDsOf lists everyone following userID.
func (repo *FollowerRepositoryDatabase) FollowerIDsOf(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := repo.DB.WithContext(ctx).Model(&follower.Follower{}).
		Where("user_id = ?", userID).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
