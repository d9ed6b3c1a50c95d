// Package pattern formats resolved values with CLDR date format patterns
// such as "EEEE, MMMM d, y 'at' HH:mm zzzz".
//
// Letters a-z and A-Z are fields; a run of the same letter selects the
// field width. Text in single quotes is literal and two single quotes
// stand for one. All other characters are literal.
//
// Names are English. The date is converted to the calendar preferred by
// the locale before it is rendered, see Registry.
package pattern

import (
	"fmt"
	"strings"

	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/resolve"
)

// SyntaxError is returned for patterns that cannot be parsed.
type SyntaxError struct {
	Pattern string
	// Offset is the byte offset of the error in Pattern.
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pattern %q: offset %d: %s", e.Pattern, e.Offset, e.Msg)
}

// ErrorKind implements resolve.KindError.
func (e *SyntaxError) ErrorKind() resolve.Kind { return resolve.KindParse }

// item is a literal or a field of a parsed pattern.
type item struct {
	literal string
	symbol  byte
	count   int
}

// Pattern is a parsed pattern.
type Pattern struct {
	s     string
	items []item
}

func (p *Pattern) String() string { return p.s }

// part tells which part of a value a field renders.
type part uint8

const (
	partDate part = 1 << iota
	partTime
	partZone
)

// maxCount is the widest supported run of each field symbol.
var maxCount = map[byte]int{
	'G': 5,
	'y': 9, 'u': 9, 'Q': 5, 'q': 5,
	'M': 5, 'L': 5, 'd': 2, 'D': 3,
	'E': 6, 'e': 6, 'c': 6,
	'a': 5,
	'h': 2, 'H': 2, 'K': 2, 'k': 2,
	'm': 2, 's': 2, 'S': 9,
	'z': 4, 'Z': 5, 'O': 4, 'v': 4, 'V': 4, 'X': 5, 'x': 5,
}

func (it item) part() part {
	switch it.symbol {
	case 0:
		return 0
	case 'a', 'h', 'H', 'K', 'k', 'm', 's', 'S':
		return partTime
	case 'z', 'Z', 'O', 'v', 'V', 'X', 'x':
		return partZone
	}
	return partDate
}

// Parse parses a pattern.
func Parse(s string) (*Pattern, error) {
	p := &Pattern{s: s}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.items = append(p.items, item{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '\'':
			if i+1 < len(s) && s[i+1] == '\'' {
				lit.WriteByte('\'')
				i += 2
				continue
			}
			start := i
			i++
			for {
				if i >= len(s) {
					return nil, &SyntaxError{Pattern: s, Offset: start, Msg: "unterminated quoted literal"}
				}
				if s[i] == '\'' {
					if i+1 < len(s) && s[i+1] == '\'' {
						lit.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				lit.WriteByte(s[i])
				i++
			}
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
			n := 1
			for i+n < len(s) && s[i+n] == c {
				n++
			}
			limit, ok := maxCount[c]
			if !ok {
				return nil, &SyntaxError{Pattern: s, Offset: i, Msg: fmt.Sprintf("unsupported field %q", c)}
			}
			if n > limit {
				return nil, &SyntaxError{Pattern: s, Offset: i, Msg: fmt.Sprintf("field %q is at most %d wide", c, limit)}
			}
			flush()
			p.items = append(p.items, item{symbol: c, count: n})
			i += n
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return p, nil
}

// Kind returns the field set kind whose presence requirements match the
// fields of p. Patterns with only literals need no values and report
// false.
func (p *Pattern) Kind() (fieldset.Kind, bool) {
	var parts part
	for _, it := range p.items {
		parts |= it.part()
	}
	switch parts {
	case partDate:
		return fieldset.Date, true
	case partTime:
		return fieldset.Time, true
	case partZone:
		return fieldset.Zone, true
	case partDate | partTime:
		return fieldset.DateTime, true
	case partDate | partZone:
		return fieldset.DateZone, true
	case partTime | partZone:
		return fieldset.TimeZone, true
	case partDate | partTime | partZone:
		return fieldset.DateTimeZone, true
	}
	return 0, false
}
