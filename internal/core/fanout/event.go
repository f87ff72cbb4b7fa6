package fanout

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/zeebo/errs"
)

var (
	// ErrProcessing wraps any failure while handling one queue event. Such
	// events are logged and dropped.
	ErrProcessing = errs.Class("fanout processing")
	// ErrUnknownKind is returned for events no handler is registered for.
	ErrUnknownKind = errs.Class("unknown fanout event kind")
)

type Kind string

const (
	KindPostCreated   Kind = "post_created"
	KindPostDeleted   Kind = "post_deleted"
	KindFollowCreated Kind = "follow_created"
	KindFollowRemoved Kind = "follow_removed"
)

// Event is the queue payload. Only the fields of its Kind are set; the rest
// stay zero and are left out of the wire form.
type Event struct {
	ID         string     `json:"id,omitempty"`
	Kind       Kind       `json:"kind"`
	PostID     int64      `json:"post_id,omitempty"`
	AuthorID   int64      `json:"author_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	FollowerID int64      `json:"follower_id,omitempty"`
	FolloweeID int64      `json:"followee_id,omitempty"`
}

func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}

func NewPostCreated(postID, authorID int64, createdAt time.Time) Event {
	ts := createdAt.UTC()
	return Event{ID: newID(), Kind: KindPostCreated, PostID: postID, AuthorID: authorID, CreatedAt: &ts}
}

func NewPostDeleted(postID, authorID int64) Event {
	return Event{ID: newID(), Kind: KindPostDeleted, PostID: postID, AuthorID: authorID}
}

func NewFollowCreated(followerID, followeeID int64) Event {
	return Event{ID: newID(), Kind: KindFollowCreated, FollowerID: followerID, FolloweeID: followeeID}
}

func NewFollowRemoved(followerID, followeeID int64) Event {
	return Event{ID: newID(), Kind: KindFollowRemoved, FollowerID: followerID, FolloweeID: followeeID}
}

// Validate checks that the fields of a known kind are present. Unknown kinds
// pass; the dispatcher decides what to do with them.
func (e Event) Validate() error {
	switch e.Kind {
	case KindPostCreated:
		if e.PostID <= 0 || e.AuthorID <= 0 || e.CreatedAt == nil || e.CreatedAt.IsZero() {
			return ErrProcessing.New("%s needs post_id, author_id and created_at", e.Kind)
		}
	case KindPostDeleted:
		if e.PostID <= 0 || e.AuthorID <= 0 {
			return ErrProcessing.New("%s needs post_id and author_id", e.Kind)
		}
	case KindFollowCreated, KindFollowRemoved:
		if e.FollowerID <= 0 || e.FolloweeID <= 0 {
			return ErrProcessing.New("%s needs follower_id and followee_id", e.Kind)
		}
	case "":
		return ErrProcessing.New("event kind is empty")
	}
	return nil
}

// PartitionKey groups an event with the others that must stay ordered with
// it: post events by author, follow events by follower.
func (e Event) PartitionKey() string {
	switch e.Kind {
	case KindFollowCreated, KindFollowRemoved:
		return strconv.FormatInt(e.FollowerID, 10)
	default:
		return strconv.FormatInt(e.AuthorID, 10)
	}
}

func Marshal(e Event) ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(raw []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return Event{}, ErrProcessing.New("decoding event: %v", err)
	}
	return e, nil
}
