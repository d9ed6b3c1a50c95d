package zone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidOffset is returned for UTC offsets outside of ±18:00:00 or
// offsets that cannot be parsed.
var ErrInvalidOffset = errors.New("invalid UTC offset: must be within ±18:00:00")

// MaxOffset is the largest absolute UTC offset accepted, in seconds.
const MaxOffset = 18 * 60 * 60

// Offset is a UTC offset in seconds east of Greenwich.
type Offset int32

// OffsetFromSeconds returns the Offset for the given number of seconds.
func OffsetFromSeconds(sec int64) (Offset, error) {
	if sec < -MaxOffset || sec > MaxOffset {
		return 0, fmt.Errorf("%w: %d seconds", ErrInvalidOffset, sec)
	}
	return Offset(sec), nil
}

// ParseOffset parses an ISO 8601 style UTC offset.
//
// Accepted forms are "Z", "±hh", "±hhmm", "±hh:mm", "±hhmmss" and
// "±hh:mm:ss". The minus sign may also be written as U+2212.
func ParseOffset(s string) (Offset, error) {
	if s == "Z" || s == "z" {
		return 0, nil
	}
	invalid := fmt.Errorf("%w: %q", ErrInvalidOffset, s)

	var neg bool
	switch {
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasPrefix(s, "-"):
		neg, s = true, s[1:]
	case strings.HasPrefix(s, "−"):
		neg, s = true, s[len("−"):]
	default:
		return 0, invalid
	}

	var parts []string
	if strings.Contains(s, ":") {
		parts = strings.Split(s, ":")
	} else {
		for len(s) > 2 {
			parts = append(parts, s[:2])
			s = s[2:]
		}
		parts = append(parts, s)
	}
	if len(parts) > 3 {
		return 0, invalid
	}

	var sec int64
	for i, p := range parts {
		if len(p) != 2 || p[0] < '0' || p[0] > '9' || p[1] < '0' || p[1] > '9' {
			return 0, invalid
		}
		n, _ := strconv.Atoi(p)
		switch i {
		case 0:
			sec += int64(n) * 3600
		default:
			if n > 59 {
				return 0, invalid
			}
			if i == 1 {
				sec += int64(n) * 60
			} else {
				sec += int64(n)
			}
		}
	}
	if neg {
		sec = -sec
	}
	return OffsetFromSeconds(sec)
}

// Seconds returns the offset in seconds.
func (o Offset) Seconds() int64 { return int64(o) }

// Parts returns the absolute hour, minute and second parts of o.
func (o Offset) Parts() (hours, minutes, seconds int) {
	abs := int(o)
	if abs < 0 {
		abs = -abs
	}
	return abs / 3600, abs / 60 % 60, abs % 60
}

// String formats o as ±HH[:MM[:SS]]. Minutes are written when either
// minutes or seconds are non-zero, seconds only when non-zero.
func (o Offset) String() string {
	var b strings.Builder
	if o < 0 {
		b.WriteByte('-')
	} else {
		b.WriteByte('+')
	}
	h, m, s := o.Parts()
	fmt.Fprintf(&b, "%02d", h)
	if m != 0 || s != 0 {
		fmt.Fprintf(&b, ":%02d", m)
		if s != 0 {
			fmt.Fprintf(&b, ":%02d", s)
		}
	}
	return b.String()
}
