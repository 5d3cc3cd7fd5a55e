// Package pagination provides opaque cursor encoding for keyset pagination.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// ErrInvalidCursor is returned when a cursor cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor format")

// Cursor marks a position in a result set ordered by (timestamp, id).
type Cursor struct {
	LastID    string    `json:"last_id"`
	Timestamp time.Time `json:"ts"`
}

// PageResult is a single page of items plus the cursor for the next one.
type PageResult[T any] struct {
	Items   []T    `json:"items"`
	Cursor  string `json:"cursor,omitempty"`
	HasMore bool   `json:"has_more"`
}

// EncodeCursor serializes a position into an opaque URL-safe token.
// An empty lastID yields an empty token.
func EncodeCursor(lastID string, timestamp time.Time) string {
	if lastID == "" {
		return ""
	}
	payload, err := json.Marshal(Cursor{LastID: lastID, Timestamp: timestamp})
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(payload)
}

// DecodeCursor parses a token produced by EncodeCursor. An empty token
// decodes to a nil cursor, meaning the first page.
func DecodeCursor(cursor string) (*Cursor, error) {
	if cursor == "" {
		return nil, nil
	}
	payload, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c Cursor
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, ErrInvalidCursor
	}
	if c.LastID == "" || c.Timestamp.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}
