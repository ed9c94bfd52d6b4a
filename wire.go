package unb

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// flexID is a numeric identifier that may arrive as a JSON number or as a
// quoted string. Discord snowflakes exceed the safe float64 integer range,
// so the API quotes them in most payloads.
type flexID int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid id", ErrParse, data)
	}

	*f = flexID(n)

	return nil
}

// flexInt is an integer field that may arrive quoted or bare.
type flexInt int64

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s is not a valid integer", ErrParse, data)
	}

	*f = flexInt(n)

	return nil
}

// parseWireTime parses an RFC 3339 timestamp from the API.
func parseWireTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a valid timestamp", ErrParse, s)
	}

	return t, nil
}

// optInt64 converts a flexInt pointer from a wire payload to a plain pointer.
func optInt64(f *flexInt) *int64 {
	if f == nil {
		return nil
	}

	n := int64(*f)

	return &n
}

// idSlice converts a wire ID list to plain int64s.
func idSlice(ids []flexID) []int64 {
	if ids == nil {
		return nil
	}

	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}

	return out
}
