package fanout

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventValidate(t *testing.T) {
	now := time.Now()
	testCases := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{name: "post created", event: NewPostCreated(1, 2, now)},
		{name: "post created without time", event: Event{Kind: KindPostCreated, PostID: 1, AuthorID: 2}, wantErr: true},
		{name: "post created without author", event: Event{Kind: KindPostCreated, PostID: 1, CreatedAt: &now}, wantErr: true},
		{name: "post deleted", event: NewPostDeleted(1, 2)},
		{name: "post deleted without post", event: Event{Kind: KindPostDeleted, AuthorID: 2}, wantErr: true},
		{name: "follow created", event: NewFollowCreated(3, 4)},
		{name: "follow removed without followee", event: Event{Kind: KindFollowRemoved, FollowerID: 3}, wantErr: true},
		{name: "empty kind", event: Event{PostID: 1}, wantErr: true},
		{name: "unknown kind passes", event: Event{Kind: "post_pinned"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if tc.wantErr {
				assert.True(t, ErrProcessing.Has(err), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConstructorsAssignIDs(t *testing.T) {
	a, b := NewFollowCreated(1, 2), NewFollowCreated(1, 2)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestMarshalOmitsOtherKindsFields(t *testing.T) {
	raw, err := Marshal(NewFollowRemoved(7, 8))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "follow_removed", fields["kind"])
	assert.EqualValues(t, 7, fields["follower_id"])
	assert.EqualValues(t, 8, fields["followee_id"])
	assert.NotContains(t, fields, "post_id")
	assert.NotContains(t, fields, "created_at")
}

func TestUnmarshalPostCreated(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	raw, err := Marshal(NewPostCreated(101, 9, createdAt))
	require.NoError(t, err)

	got, err := Unmarshal(raw)
	require.NoError(t, err)
	assert.Equal(t, KindPostCreated, got.Kind)
	assert.Equal(t, int64(101), got.PostID)
	assert.Equal(t, int64(9), got.AuthorID)
	require.NotNil(t, got.CreatedAt)
	assert.True(t, createdAt.Equal(*got.CreatedAt))
}

func TestUnmarshalGarbage(t *testing.T) {
	_, err := Unmarshal([]byte("{not json"))
	assert.True(t, ErrProcessing.Has(err))
}

func TestPartitionKey(t *testing.T) {
	assert.Equal(t, "9", NewPostCreated(101, 9, time.Now()).PartitionKey())
	assert.Equal(t, "9", NewPostDeleted(101, 9).PartitionKey())
	assert.Equal(t, "3", NewFollowCreated(3, 4).PartitionKey())
}
