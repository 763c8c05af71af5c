package dto

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is a position in a listing ordered by published time and ID, both
// descending. It is handed to clients as an opaque page token.
type Cursor struct {
	PublishedAt time.Time `json:"p"`
	ID          string    `json:"i"`
}

// EncodeCursor converts a position into a base64-encoded page token.
func EncodeCursor(publishedAt time.Time, id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("cursor ID cannot be empty")
	}

	b, err := json.Marshal(Cursor{PublishedAt: publishedAt.UTC(), ID: id})
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}

	return base64.URLEncoding.EncodeToString(b), nil
}

// DecodeCursor parses a page token. An empty token is the first page.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	b, err := base64.URLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor: %w", err)
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cursor: %w", err)
	}

	if c.ID == "" {
		return nil, fmt.Errorf("invalid cursor: ID cannot be empty")
	}

	return &c, nil
}

// After reports whether an item at (publishedAt, id) comes after the cursor
// in the listing order.
func (c *Cursor) After(publishedAt time.Time, id string) bool {
	if c == nil {
		return true
	}
	if !publishedAt.Equal(c.PublishedAt) {
		return publishedAt.Before(c.PublishedAt)
	}
	return id < c.ID
}
