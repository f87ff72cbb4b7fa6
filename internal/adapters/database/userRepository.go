package database

import (
	"context"
	"errors"

	"socialfeed/internal/core/user"

	"gorm.io/gorm"
)

type UserRepositoryDatabase struct {
	DB *gorm.DB
}

func NewUserRepositoryDatabase(db *gorm.DB) *UserRepositoryDatabase {
	return &UserRepositoryDatabase{DB: db}
}

func (repo *UserRepositoryDatabase) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if err := repo.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func (repo *UserRepositoryDatabase) FindByID(ctx context.Context, id int64) (*user.User, error) {
	var u user.User
	err := repo.DB.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrNotFound.New("%d", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
