package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// Cursor is the sort key of the last row of a page. Listings resume strictly after it.
// Fields a listing does not sort on are left zero.
type Cursor struct {
	Date      time.Time // business date (entry date)
	CreatedAt time.Time
	ID        string // tie-breaker
	Seq       int    // position inside ID (line number)
}

// EncodeCursor creates a base64 encoded token from a cursor.
func EncodeCursor(c Cursor) string {
	tokenStr := strings.Join([]string{
		c.Date.Format(timeFormat),
		c.CreatedAt.Format(timeFormat),
		c.ID,
		strconv.Itoa(c.Seq),
	}, "|")
	return base64.StdEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (Cursor, error) {
	decodedBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 4)
	if len(parts) != 4 {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}
	seq, err := strconv.Atoi(parts[3])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (seq parse): %w", err)
	}

	return Cursor{Date: date, CreatedAt: createdAt, ID: parts[2], Seq: seq}, nil
}

// NextToken returns a token for the row after last, or nil when the page was not full.
func NextToken(rows, limit int, last Cursor) *string {
	if limit <= 0 || rows < limit {
		return nil
	}
	token := EncodeCursor(last)
	return &token
}

// ClampLimit applies the default and the upper bound to a requested page size.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
