package timeline

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// cursorDelimiter never appears in an RFC 3339 timestamp.
const cursorDelimiter = "|"

// Keyset is the decoded (timestamp, id) position of the last row of a page.
type Keyset struct {
	Timestamp time.Time
	ID        int64
}

// EncodeCursor builds an opaque keyset token for the row (ts, id).
func EncodeCursor(ts time.Time, id int64) (string, error) {
	if ts.IsZero() {
		return "", ErrInvalidCursor.New("missing timestamp")
	}
	if id <= 0 {
		return "", ErrInvalidCursor.New("id must be positive, got %d", id)
	}
	raw := ts.UTC().Format(time.RFC3339Nano) + cursorDelimiter + strconv.FormatInt(id, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw)), nil
}

// DecodeCursor parses a keyset token. A blank token means "first page" and
// yields nil without error; anything malformed is ErrInvalidCursor.
func DecodeCursor(token string) (*Keyset, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor.New("not base64: %v", err)
	}

	parts := strings.Split(string(b), cursorDelimiter)
	if len(parts) != 2 {
		return nil, ErrInvalidCursor.New("expected 2 fields, got %d", len(parts))
	}

	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, ErrInvalidCursor.New("bad timestamp: %v", err)
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor.New("bad id: %v", err)
	}
	if id <= 0 {
		return nil, ErrInvalidCursor.New("id must be positive, got %d", id)
	}

	return &Keyset{Timestamp: ts, ID: id}, nil
}

// CursorKind tags which pagination scheme produced a token.
type CursorKind string

const (
	// OffsetCursor is a decimal skip count over the cached timeline.
	OffsetCursor CursorKind = "offset"
	// KeysetCursor is an EncodeCursor token over the system of record.
	KeysetCursor CursorKind = "keyset"
)

// HomeCursor is the parsed cursor of a home timeline request. Exactly one of
// Offset or Keyset is meaningful, depending on Kind.
type HomeCursor struct {
	Kind   CursorKind
	Offset int64
	Keyset *Keyset
}

// ParseHomeCursor accepts a blank token (offset 0), a non-negative decimal
// offset, or a keyset token handed out by a fallback page.
func ParseHomeCursor(token string) (HomeCursor, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return HomeCursor{Kind: OffsetCursor}, nil
	}

	if isDecimal(token) {
		offset, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return HomeCursor{}, ErrInvalidCursor.New("offset out of range: %q", token)
		}
		return HomeCursor{Kind: OffsetCursor, Offset: offset}, nil
	}

	ks, err := DecodeCursor(token)
	if err != nil {
		return HomeCursor{}, ErrInvalidCursor.New("%q is neither an offset nor a keyset cursor", token)
	}
	return HomeCursor{Kind: KeysetCursor, Keyset: ks}, nil
}

// EncodeOffset renders an offset cursor.
func EncodeOffset(offset int64) string {
	return strconv.FormatInt(offset, 10)
}

func isDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
