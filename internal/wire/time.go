// Package wire handles JSON representations used on the remote API boundary.
package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Time is a time.Time that unmarshals from either an RFC 3339 string or an
// epoch number (seconds or milliseconds). The backend has emitted both
// shapes across versions; the conversion happens here once so nothing past
// the gateway boundary sees raw wire values.
type Time struct {
	time.Time
}

// epoch values above this threshold are treated as milliseconds.
const millisThreshold = 1e12

// NewTime wraps a time.Time.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// UnmarshalJSON accepts RFC 3339 strings, epoch numbers, and null.
func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse time %q: %w", s, err)
		}
		t.Time = parsed
		return nil
	}

	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse time %s: expected RFC 3339 string or epoch number", data)
	}
	if n >= millisThreshold {
		t.Time = time.UnixMilli(int64(n))
	} else {
		t.Time = time.Unix(int64(n), 0)
	}
	return nil
}

// MarshalJSON emits RFC 3339 UTC, or null for the zero time.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}
