package tzif

import (
	"fmt"
	"time"

	"github.com/ngrash/go-zoned/civil"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// Rule is a parsed POSIX TZ string, as found in the footer of version 2+
// files. It describes local time after the last explicit transition.
//
// Offsets are stored the way TZif stores them: seconds east of UT. The
// string itself uses the opposite sign.
type Rule struct {
	StdName string
	StdOff  int32
	DstName string
	DstOff  int32
	// HasDST is false for zones that observe standard time all year.
	HasDST bool
	Start  TransitionRule
	End    TransitionRule
}

// RuleKind is the form of a transition date in a TZ string.
type RuleKind int

const (
	RuleJulian       RuleKind = iota // Jn: 1 <= n <= 365, February 29 never counted
	RuleDayOfYear                    // n: 0 <= n <= 365, February 29 counted
	RuleMonthWeekDay                 // Mm.w.d: day d of week w of month m
)

// TransitionRule is one of the two rules after the comma in a TZ string.
type TransitionRule struct {
	Kind  RuleKind
	Day   int
	Week  int
	Month int
	// Time is the local time of the transition in seconds. Version 3
	// files may use values from -167 to 167 hours.
	Time int
}

// ParseRule parses a POSIX TZ string including the RFC 8536 extensions.
func ParseRule(s string) (Rule, error) {
	var (
		r   Rule
		off int
		ok  bool
		in  = s
	)
	fail := func(what string) (Rule, error) {
		return Rule{}, fmt.Errorf("invalid TZ string %q: %s", in, what)
	}

	if r.StdName, s, ok = ruleName(s); !ok {
		return fail("standard time designation")
	}
	if off, s, ok = ruleOffset(s); !ok {
		return fail("standard time offset")
	}
	r.StdOff = int32(-off)
	if len(s) == 0 {
		return r, nil
	}

	r.HasDST = true
	if r.DstName, s, ok = ruleName(s); !ok {
		return fail("daylight saving time designation")
	}
	if len(s) == 0 || s[0] == ',' {
		r.DstOff = r.StdOff + secondsPerHour
	} else {
		if off, s, ok = ruleOffset(s); !ok {
			return fail("daylight saving time offset")
		}
		r.DstOff = int32(-off)
	}

	if len(s) == 0 {
		// United States rules, the POSIX default.
		s = ",M3.2.0,M11.1.0"
	}
	if s[0] != ',' {
		return fail("expected ',' before start rule")
	}
	if r.Start, s, ok = ruleTransition(s[1:]); !ok {
		return fail("start rule")
	}
	if len(s) == 0 || s[0] != ',' {
		return fail("expected ',' before end rule")
	}
	if r.End, s, ok = ruleTransition(s[1:]); !ok || len(s) > 0 {
		return fail("end rule")
	}
	return r, nil
}

// ruleName returns the designation at the start of s, either alphabetic or
// quoted in angle brackets, and the remainder of s.
func ruleName(s string) (string, string, bool) {
	if len(s) == 0 {
		return "", "", false
	}
	if s[0] == '<' {
		for i := 1; i < len(s); i++ {
			if s[i] == '>' {
				if i < 4 {
					return "", "", false
				}
				return s[1:i], s[i+1:], true
			}
		}
		return "", "", false
	}
	i := 0
	for i < len(s) && (s[i] >= 'a' && s[i] <= 'z' || s[i] >= 'A' && s[i] <= 'Z') {
		i++
	}
	if i < 3 {
		return "", "", false
	}
	return s[:i], s[i:], true
}

// ruleOffset returns [+-]hh[:mm[:ss]] at the start of s in seconds.
// The hour may be up to 167 as permitted by RFC 8536.
func ruleOffset(s string) (int, string, bool) {
	if len(s) == 0 {
		return 0, "", false
	}
	neg := false
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		neg = true
		s = s[1:]
	}
	hours, s, ok := ruleNum(s, 0, 24*7-1)
	if !ok {
		return 0, "", false
	}
	off := hours * secondsPerHour
	for _, unit := range []int{secondsPerMinute, 1} {
		if len(s) == 0 || s[0] != ':' {
			break
		}
		var n int
		if n, s, ok = ruleNum(s[1:], 0, 59); !ok {
			return 0, "", false
		}
		off += n * unit
	}
	if neg {
		off = -off
	}
	return off, s, true
}

func ruleTransition(s string) (TransitionRule, string, bool) {
	var (
		r  TransitionRule
		ok bool
	)
	if len(s) == 0 {
		return r, "", false
	}
	switch s[0] {
	case 'J':
		r.Kind = RuleJulian
		if r.Day, s, ok = ruleNum(s[1:], 1, 365); !ok {
			return r, "", false
		}
	case 'M':
		r.Kind = RuleMonthWeekDay
		if r.Month, s, ok = ruleNum(s[1:], 1, 12); !ok || len(s) == 0 || s[0] != '.' {
			return r, "", false
		}
		if r.Week, s, ok = ruleNum(s[1:], 1, 5); !ok || len(s) == 0 || s[0] != '.' {
			return r, "", false
		}
		if r.Day, s, ok = ruleNum(s[1:], 0, 6); !ok {
			return r, "", false
		}
	default:
		r.Kind = RuleDayOfYear
		if r.Day, s, ok = ruleNum(s, 0, 365); !ok {
			return r, "", false
		}
	}
	r.Time = 2 * secondsPerHour
	if len(s) > 0 && s[0] == '/' {
		if r.Time, s, ok = ruleOffset(s[1:]); !ok {
			return r, "", false
		}
	}
	return r, s, true
}

func ruleNum(s string, min, max int) (int, string, bool) {
	n, i := 0, 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > max {
			return 0, "", false
		}
	}
	if i == 0 || n < min {
		return 0, "", false
	}
	return n, s[i:], true
}

// date returns the day in year on which r applies.
func (r TransitionRule) date(year int) civil.Date {
	switch r.Kind {
	case RuleJulian:
		d := civil.Date{Year: year, Month: time.January, Day: 1}.AddDays(r.Day - 1)
		if civil.IsLeapYear(year) && r.Day >= 60 {
			d = d.AddDays(1)
		}
		return d
	case RuleDayOfYear:
		return civil.Date{Year: year, Month: time.January, Day: 1}.AddDays(r.Day)
	default:
		first := civil.Date{Year: year, Month: time.Month(r.Month), Day: 1}
		day := 1 + (r.Day-int(first.Weekday())+7)%7 + 7*(r.Week-1)
		for day > civil.DaysInMonth(year, first.Month) {
			day -= 7
		}
		first.Day = day
		return first
	}
}

// at returns the instant of the transition in year, given the offset in
// effect before it.
func (r TransitionRule) at(year int, before int32) int64 {
	midnight := civil.DateTime{Date: r.date(year)}.Unix()
	return midnight + int64(r.Time) - int64(before)
}

// Lookup returns the offset, daylight flag and designation in effect at
// unix according to the rule.
func (r Rule) Lookup(unix int64) (off int32, dst bool, name string) {
	if !r.HasDST {
		return r.StdOff, false, r.StdName
	}
	year := civil.FromUnix(unix + int64(r.StdOff)).Date.Year
	start := r.Start.at(year, r.StdOff)
	end := r.End.at(year, r.DstOff)
	if start < end {
		dst = unix >= start && unix < end
	} else {
		// Southern hemisphere: daylight time spans the new year.
		dst = !(unix >= end && unix < start)
	}
	if dst {
		return r.DstOff, true, r.DstName
	}
	return r.StdOff, false, r.StdName
}

func (r Rule) String() string {
	if !r.HasDST {
		return fmt.Sprintf("%s(%+d)", r.StdName, r.StdOff)
	}
	return fmt.Sprintf("%s(%+d)/%s(%+d)", r.StdName, r.StdOff, r.DstName, r.DstOff)
}
