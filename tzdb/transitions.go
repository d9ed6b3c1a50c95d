package tzdb

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/internal/tzexpand"
	"github.com/ngrash/go-zoned/tzdata"
	"github.com/ngrash/go-zoned/zone"
)

// LocalTime is a local time type: the total offset from UTC, whether it is
// daylight saving time and its abbreviation.
type LocalTime struct {
	Offset zone.Offset
	DST    bool
	Abbrev string
}

// Transition is an instant at which a zone switches to another local time
// type.
type Transition struct {
	At int64
	LocalTime
}

// LocalTime returns the local time type of name at unix.
func (db *Database) LocalTime(name string, unix int64) (LocalTime, bool) {
	canonical, ok := db.resolve(name)
	if !ok {
		return LocalTime{}, false
	}
	return db.localTime(spanAt(db.zones[canonical], unix), unix), true
}

// Transitions returns the local time type of name at the start of the
// year from, and every change of local time type up to the end of the year
// to, in UTC.
func (db *Database) Transitions(name string, from, to int) (LocalTime, []Transition, bool) {
	canonical, ok := db.resolve(name)
	if !ok {
		return LocalTime{}, nil, false
	}
	spans := db.zones[canonical]
	start := civil.DateTime{Date: civil.Date{Year: from, Month: time.January, Day: 1}}.Unix()
	end := civil.DateTime{Date: civil.Date{Year: to + 1, Month: time.January, Day: 1}}.Unix()

	initial := db.localTime(spanAt(spans, start), start)
	var candidates []int64
	for _, sp := range spans {
		if sp.start > start && sp.start < end {
			candidates = append(candidates, sp.start)
		}
		if sp.line.Rules.Form != tzdata.ZoneRulesName || sp.end <= start || sp.start >= end {
			continue
		}
		for _, at := range db.ruleInstants(sp.line, from, to) {
			if at > start && at < end && at >= sp.start && at < sp.end {
				candidates = append(candidates, at)
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	var (
		out  []Transition
		prev = initial
		last = int64(math.MinInt64)
	)
	for _, at := range candidates {
		if at == last {
			continue
		}
		last = at
		lt := db.localTime(spanAt(spans, at), at)
		if lt == prev {
			continue
		}
		out = append(out, Transition{At: at, LocalTime: lt})
		prev = lt
	}
	return initial, out, true
}

// ruleInstants returns the instants at which the rules of l take effect in
// the years from through to. Each instant is computed with the daylight
// saving time in effect just before it.
func (db *Database) ruleInstants(l tzdata.ZoneLine, from, to int) []int64 {
	rules := db.rules[l.Rules.Name]
	var before time.Duration
	if r, ok := latestBefore(rules, from-2); ok {
		before = r.Save.Duration
	}
	var out []int64
	for _, o := range tzexpand.ExpandRules(from-1, to, rules) {
		out = append(out, o.Instant(l.Offset, before))
		before = o.Rule.Save.Duration
	}
	return out
}

// localTime returns the local time type of sp at unix.
func (db *Database) localTime(sp span, unix int64) LocalTime {
	l := sp.line
	var (
		save   time.Duration
		dst    bool
		letter string
	)
	switch l.Rules.Form {
	case tzdata.ZoneRulesTime:
		save, dst = l.Rules.Time.Duration, l.Rules.Time.Duration != 0
	case tzdata.ZoneRulesName:
		if r, ok := db.rule(l, unix); ok {
			save, dst, letter = r.Save.Duration, r.IsDST(), r.Letter
		} else if r, ok := firstStandard(db.rules[l.Rules.Name]); ok {
			letter = r.Letter
		}
	}
	return LocalTime{
		Offset: offset(l.Offset + save),
		DST:    dst,
		Abbrev: abbrev(l.Format, letter, dst, offset(l.Offset+save)),
	}
}

// firstStandard returns the earliest standard time rule. Its letter names
// standard time before any rule has applied.
func firstStandard(rules []tzdata.RuleLine) (tzdata.RuleLine, bool) {
	var (
		best  tzdata.RuleLine
		found bool
	)
	for _, r := range rules {
		if r.IsDST() {
			continue
		}
		if !found || r.From < best.From {
			best, found = r, true
		}
	}
	return best, found
}

// abbrev expands the FORMAT column of a zone line.
func abbrev(format, letter string, dst bool, off zone.Offset) string {
	if std, daylight, ok := strings.Cut(format, "/"); ok {
		if dst {
			return daylight
		}
		return std
	}
	if letter == "-" {
		letter = ""
	}
	format = strings.Replace(format, "%s", letter, 1)
	return strings.Replace(format, "%z", numericAbbrev(off), 1)
}

// numericAbbrev formats off as +hh, +hhmm or +hhmmss.
func numericAbbrev(off zone.Offset) string {
	sign := '+'
	if off < 0 {
		sign, off = '-', -off
	}
	h, m, s := off/3600, off/60%60, off%60
	switch {
	case s != 0:
		return fmt.Sprintf("%c%02d%02d%02d", sign, h, m, s)
	case m != 0:
		return fmt.Sprintf("%c%02d%02d", sign, h, m)
	}
	return fmt.Sprintf("%c%02d", sign, h)
}
