// Package cursor converts between array offsets and opaque connection cursors.
//
// A cursor is the standard base64 encoding of PREFIX followed by the decimal
// offset. The format is shared with graphql-relay-js and graphql-relay-py so
// cursors handed to clients remain valid across implementations.
package cursor

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// PREFIX tags every offset cursor before encoding.
const PREFIX = "arrayconnection:"

// Cursor is an opaque position within a connection.
type Cursor string

func (c Cursor) String() string { return string(c) }

// Offset decodes the cursor. See CursorToOffset.
func (c Cursor) Offset() (int, bool) { return CursorToOffset(c) }

// Ptr returns a pointer to c.
func (c Cursor) Ptr() *Cursor { return &c }

// OffsetToCursor creates the cursor string from an offset.
func OffsetToCursor(offset int) Cursor {
	return Cursor(base64.StdEncoding.EncodeToString([]byte(PREFIX + strconv.Itoa(offset))))
}

// CursorToOffset rederives the offset from the cursor string. It reports
// false if the cursor is not valid base64, does not carry PREFIX, or does not
// end in an integer.
func CursorToOffset(c Cursor) (int, bool) {
	b, err := base64.StdEncoding.DecodeString(string(c))
	if err != nil {
		return 0, false
	}

	s := string(b)
	if !strings.HasPrefix(s, PREFIX) {
		return 0, false
	}

	offset, err := strconv.Atoi(s[len(PREFIX):])
	if err != nil {
		return 0, false
	}

	return offset, true
}

// GetOffsetWithDefault returns the offset held by c, or defaultOffset if c is
// nil or does not decode.
func GetOffsetWithDefault(c *Cursor, defaultOffset int) int {
	if c == nil {
		return defaultOffset
	}
	if offset, ok := CursorToOffset(*c); ok {
		return offset
	}
	return defaultOffset
}
