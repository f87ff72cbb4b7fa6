package database

import (
	"context"
	"testing"
	"time"

	"socialfeed/internal/core/fanout"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanoutQueueDatabaseEnqueue(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `fanout_queues`").WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewFanoutQueueDatabase(db).Enqueue(context.Background(), fanout.NewFollowCreated(1, 2))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFanoutQueueDatabaseClaimsOldestPending(t *testing.T) {
	db, mock := newMockDB(t)
	payload, err := fanout.Marshal(fanout.NewPostDeleted(5, 6))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `fanout_queues` WHERE status = \\? ORDER BY created_at ASC LIMIT .* FOR UPDATE SKIP LOCKED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "status"}).
			AddRow("5b0c5d2e-4a5f-4c0e-9d59-0f0b6b8f6a11", "post_deleted", string(payload), fanout.StatusPending))
	mock.ExpectExec("UPDATE `fanout_queues` SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	raw, err := NewFanoutQueueDatabase(db).Dequeue(context.Background(), time.Second)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFanoutQueueDatabaseEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `fanout_queues`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "kind", "payload", "status"}))
	mock.ExpectRollback()

	raw, err := NewFanoutQueueDatabase(db).Dequeue(context.Background(), 0)
	assert.NoError(t, err)
	assert.Nil(t, raw)
	assert.NoError(t, mock.ExpectationsWereMet())
}
