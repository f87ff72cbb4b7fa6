package database

import (
	"context"
	"errors"
	"time"

	"socialfeed/internal/core/post"

	"gorm.io/gorm"
)

type PostRepositoryDatabase struct {
	DB *gorm.DB
}

func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{DB: db}
}

func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) (*post.Post, error) {
	if err := repo.DB.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (repo *PostRepositoryDatabase) CreateRepost(ctx context.Context, repost *post.Post) (*post.Post, error) {
	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(repost).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return post.ErrConflict.New("post %d already reposted by user %d", *repost.RepostOfID, repost.UserID)
			}
			return err
		}
		return bumpCounter(tx, *repost.RepostOfID, "repost_count", 1)
	})
	if err != nil {
		return nil, err
	}
	return repost, nil
}

func (repo *PostRepositoryDatabase) CreateReply(ctx context.Context, reply *post.Post) (*post.Post, error) {
	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return bumpCounter(tx, *reply.ParentID, "reply_count", 1)
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// FindByID returns a live post or post.ErrNotFound.
func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id int64) (*post.Post, error) {
	var p post.Post
	err := repo.DB.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, post.ErrNotFound.New("%d", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SoftDelete stamps deleted_at and undoes the counter the row contributed to
// its original or parent.
func (repo *PostRepositoryDatabase) SoftDelete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p post.Post
		if err := tx.Where("id = ? AND deleted_at IS NULL", id).Take(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		res := tx.Model(&post.Post{}).
			Where("id = ? AND deleted_at IS NULL", id).
			Update("deleted_at", time.Now().UTC())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true

		switch {
		case p.RepostOfID != nil:
			// frees (user_id, repost_of_id) so the user may repost again
			if err := tx.Model(&post.Post{}).Where("id = ?", id).Update("repost_of_id", nil).Error; err != nil {
				return err
			}
			return bumpCounter(tx, *p.RepostOfID, "repost_count", -1)
		case p.ParentID != nil:
			return bumpCounter(tx, *p.ParentID, "reply_count", -1)
		}
		return nil
	})
	return deleted, err
}

func (repo *PostRepositoryDatabase) Like(ctx context.Context, userID, postID int64) (bool, error) {
	var liked bool
	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Create(&post.Like{UserID: userID, PostID: postID}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		if err != nil {
			return err
		}
		liked = true
		return bumpCounter(tx, postID, "like_count", 1)
	})
	return liked, err
}

func (repo *PostRepositoryDatabase) Unlike(ctx context.Context, userID, postID int64) (bool, error) {
	var unliked bool
	err := repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&post.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		unliked = true
		return bumpCounter(tx, postID, "like_count", -1)
	})
	return unliked, err
}

func bumpCounter(tx *gorm.DB, postID int64, column string, delta int) error {
	q := tx.Model(&post.Post{}).Where("id = ?", postID)
	if delta < 0 {
		q = q.Where(column+" > 0")
	}
	return q.UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}
