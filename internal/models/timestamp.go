package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp normalizes the capture times clients send into a single instant.
// Accepted encodings: RFC 3339 strings, YYYY-MM-DD dates (midnight UTC),
// Unix seconds, and provider objects of the form {"seconds": n, "nanoseconds": n}.
// JSON null or an empty string leaves the zero value.
type Timestamp struct {
	time.Time
}

// Unix seconds of 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z, the range
// RFC 3339 can represent.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

type providerTimestamp struct {
	Seconds     *int64 `json:"seconds"`
	Nanoseconds int64  `json:"nanoseconds"`
	// Some SDKs serialize with a leading underscore.
	AltSeconds     *int64 `json:"_seconds"`
	AltNanoseconds int64  `json:"_nanoseconds"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		return t.parseString(s)
	case '{':
		var p providerTimestamp
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		switch {
		case p.Seconds != nil:
			return t.setUnix(*p.Seconds, p.Nanoseconds)
		case p.AltSeconds != nil:
			return t.setUnix(*p.AltSeconds, p.AltNanoseconds)
		default:
			return fmt.Errorf("%w: timestamp object without seconds", ErrInvalidInput)
		}
	default:
		var secs float64
		if err := json.Unmarshal(data, &secs); err != nil {
			return fmt.Errorf("%w: unsupported timestamp %s", ErrInvalidInput, string(data))
		}
		if secs < minUnixSeconds || secs > maxUnixSeconds {
			return fmt.Errorf("%w: timestamp %s out of range", ErrInvalidInput, string(data))
		}
		whole := int64(secs)
		return t.setUnix(whole, int64((secs-float64(whole))*1e9))
	}
}

func (t *Timestamp) setUnix(secs, nanos int64) error {
	if secs < minUnixSeconds || secs > maxUnixSeconds {
		return fmt.Errorf("%w: timestamp %d out of range", ErrInvalidInput, secs)
	}
	t.Time = time.Unix(secs, nanos).UTC()
	return nil
}

func (t *Timestamp) parseString(s string) error {
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = ts
		return nil
	}
	if ts, err := time.Parse(DateLayout, s); err == nil {
		t.Time = ts
		return nil
	}
	return fmt.Errorf("%w: unsupported timestamp %q", ErrInvalidInput, s)
}

// MarshalJSON writes the instant as RFC 3339, or null when unset.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
