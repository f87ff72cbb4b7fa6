package database

import (
	"context"
	"errors"
	"testing"

	"socialfeed/internal/core/post"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepositoryLike(t *testing.T) {
	testCases := []struct {
		name      string
		mock      func(mock sqlmock.Sqlmock)
		wantLiked bool
		wantErr   bool
	}{
		{
			name: "first like bumps the counter",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO `likes`").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("UPDATE `posts` SET `like_count`=like_count \\+ \\?").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantLiked: true,
		},
		{
			name: "second like is a no-op",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO `likes`").WillReturnError(&mysql.MySQLError{Number: 1062})
				mock.ExpectCommit()
			},
		},
		{
			name: "database error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO `likes`").WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			tc.mock(mock)

			liked, err := NewPostRepositoryDatabase(db).Like(context.Background(), 1, 10)
			assert.Equal(t, tc.wantErr, err != nil, "err: %v", err)
			assert.Equal(t, tc.wantLiked, liked)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostRepositoryFindByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT \\* FROM `posts` WHERE id = \\? AND deleted_at IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewPostRepositoryDatabase(db).FindByID(context.Background(), 5)
	require.Error(t, err)
	assert.True(t, post.ErrNotFound.Has(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryRepostDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `posts`").WillReturnError(&mysql.MySQLError{Number: 1062})
	mock.ExpectRollback()

	_, err := NewPostRepositoryDatabase(db).CreateRepost(context.Background(),
		&post.Post{UserID: 2, RepostOfID: int64p(1)})
	require.Error(t, err)
	assert.True(t, post.ErrConflict.Has(err), "got %v", err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
