package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cursorTime = time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)

func TestEncodeCursor(t *testing.T) {
	token, err := EncodeCursor(cursorTime, "9f86d081884c7d659a2feaa0c55ad015")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	token, err = EncodeCursor(time.Time{}, "abc")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = EncodeCursor(cursorTime, "")
	assert.ErrorContains(t, err, "cannot be empty")
}

func TestDecodeCursor_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{"invalid base64", "not-valid-base64!!!", "decode cursor"},
		// "invalid-json"
		{"invalid json", "aW52YWxpZC1qc29u", "unmarshal cursor"},
		// {"p":"2024-03-05T10:30:00Z"}
		{"missing id", "eyJwIjoiMjAyNC0wMy0wNVQxMDozMDowMFoifQ==", "ID cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeCursor(tt.token)
			assert.Nil(t, c)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDecodeCursor_EmptyIsFirstPage(t *testing.T) {
	c, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestCursor_NormalizesToUTC(t *testing.T) {
	local := time.Date(2024, 3, 5, 12, 30, 0, 123456000, time.FixedZone("CET", 3600))

	token, err := EncodeCursor(local, "abc")
	require.NoError(t, err)

	c, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.True(t, c.PublishedAt.Equal(local))
	assert.Equal(t, time.UTC, c.PublishedAt.Location())
	assert.Equal(t, "abc", c.ID)
}

func TestCursor_After(t *testing.T) {
	c := &Cursor{PublishedAt: cursorTime, ID: "m"}

	tests := []struct {
		name        string
		publishedAt time.Time
		id          string
		want        bool
	}{
		{"older item", cursorTime.Add(-time.Second), "z", true},
		{"newer item", cursorTime.Add(time.Second), "a", false},
		{"same time lower id", cursorTime, "a", true},
		{"same time same id", cursorTime, "m", false},
		{"same time higher id", cursorTime, "z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.After(tt.publishedAt, tt.id))
		})
	}

	var first *Cursor
	assert.True(t, first.After(cursorTime, "a"), "nil cursor accepts every item")
}
