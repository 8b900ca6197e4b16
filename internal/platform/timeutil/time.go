package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// RFC3339Millis is the wire format for API timestamps.
	RFC3339Millis = "2006-01-02T15:04:05.000Z07:00"
	// RFC3339Micros is used for log timestamps.
	RFC3339Micros = "2006-01-02T15:04:05.000000Z07:00"
)

// cborTagDateTime is CBOR tag 0 (standard date/time string, RFC 8949 §3.4.1).
const cborTagDateTime = 0xc0

var errInvalidCBOR = errors.New("timeutil: invalid CBOR time")

// Time wraps time.Time and always serializes in UTC with millisecond precision.
type Time struct {
	time.Time
}

// NewTime wraps t.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}

// Now returns the current time.
func Now() Time {
	return Time{Time: time.Now()}
}

func (t Time) format() string {
	return t.UTC().Format(RFC3339Millis)
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.format() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. A JSON null leaves the value unchanged.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || !strings.HasPrefix(s, `"`) || !strings.HasSuffix(s, `"`) {
		return fmt.Errorf("timeutil: invalid JSON time %q", s)
	}
	parsed, err := parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalCBOR encodes the time as a tag 0 text string.
func (t Time) MarshalCBOR() ([]byte, error) {
	s := t.format()
	out := make([]byte, 0, len(s)+3)
	out = append(out, cborTagDateTime)
	return appendCBORTextString(out, s), nil
}

// UnmarshalCBOR accepts a tag 0 text string or a bare text string.
func (t *Time) UnmarshalCBOR(data []byte) error {
	if len(data) == 0 {
		return errInvalidCBOR
	}
	if data[0] == cborTagDateTime {
		data = data[1:]
	}
	s, err := decodeCBORTextString(data)
	if err != nil {
		return err
	}
	parsed, err := parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func parse(s string) (time.Time, error) {
	for _, layout := range []string{RFC3339Millis, time.RFC3339Nano, time.RFC3339} {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timeutil: cannot parse %q", s)
}

// appendCBORTextString appends a major type 3 text string header and payload.
func appendCBORTextString(dst []byte, s string) []byte {
	n := len(s)
	switch {
	case n < 24:
		dst = append(dst, 0x60|byte(n))
	case n <= 0xff:
		dst = append(dst, 0x78, byte(n))
	default:
		dst = append(dst, 0x79, byte(n>>8), byte(n))
	}
	return append(dst, s...)
}

func decodeCBORTextString(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errInvalidCBOR
	}
	if data[0]&0xe0 != 0x60 {
		return "", errInvalidCBOR
	}
	info := data[0] & 0x1f
	var n, offset int
	switch {
	case info < 24:
		n, offset = int(info), 1
	case info == 24:
		if len(data) < 2 {
			return "", errInvalidCBOR
		}
		n, offset = int(data[1]), 2
	case info == 25:
		if len(data) < 3 {
			return "", errInvalidCBOR
		}
		n, offset = int(data[1])<<8|int(data[2]), 3
	default:
		return "", errInvalidCBOR
	}
	if len(data) < offset+n {
		return "", errInvalidCBOR
	}
	return string(data[offset : offset+n]), nil
}
