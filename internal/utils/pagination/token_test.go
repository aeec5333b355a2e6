package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	// Test case 1: Full cursor
	cursor := Cursor{
		Date:      time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC),
		ID:        "8a5c8a0e-entry",
		Seq:       3,
	}

	token := EncodeCursor(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeCursor(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, cursor, decoded, "Cursor should match after decode")

	// Test case 2: Zero values, as used by listings that only sort on created_at
	zero := Cursor{}
	decodedZero, err := DecodeCursor(EncodeCursor(zero))
	assert.NoError(t, err, "Decoding zero cursor should not return an error")
	assert.Equal(t, zero, decodedZero)

	// Test case 3: Current time values
	now := time.Now().UTC()
	decodedNow, err := DecodeCursor(EncodeCursor(Cursor{CreatedAt: now, ID: "item"}))
	assert.NoError(t, err)
	assert.True(t, now.Equal(decodedNow.CreatedAt), "Current time should match after decode")
}

func TestDecodeCursorError(t *testing.T) {
	// Test invalid base64
	_, err := DecodeCursor("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separators)
	_, err = DecodeCursor(base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z")))
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid date format
	_, err = DecodeCursor(base64.StdEncoding.EncodeToString([]byte("notadate|2023-05-15T14:30:45Z|id|0")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "date parse", "Error should mention date parsing issue")

	// Test invalid sequence
	_, err = DecodeCursor(base64.StdEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z|2023-05-15T14:30:45Z|id|x")))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "seq parse")
}

func TestNextToken(t *testing.T) {
	last := Cursor{CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ID: "abc"}

	assert.Nil(t, NextToken(3, 10, last), "Short page has no next token")

	token := NextToken(10, 10, last)
	require.NotNil(t, token)
	decoded, err := DecodeCursor(*token)
	require.NoError(t, err)
	assert.Equal(t, last, decoded)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 50, ClampLimit(0, 50, 200))
	assert.Equal(t, 50, ClampLimit(-4, 50, 200))
	assert.Equal(t, 20, ClampLimit(20, 50, 200))
	assert.Equal(t, 200, ClampLimit(1000, 50, 200))
}
