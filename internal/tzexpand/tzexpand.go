// Package tzexpand expands the recurring rules of tzdata source files into
// concrete dates and instants.
package tzexpand

import (
	"fmt"
	"sort"
	"time"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/tzdata"
)

// DayOfMonth resolves d in the given month. The >= and <= forms may
// resolve to a day in the neighbouring month, or year.
func DayOfMonth(year int, month time.Month, d tzdata.Day) civil.Date {
	first := civil.Date{Year: year, Month: month, Day: 1}
	switch d.Form {
	case tzdata.DayFormNum:
		return first.AddDays(d.Num - 1)
	case tzdata.DayFormLast:
		last := first.AddDays(civil.DaysInMonth(year, month) - 1)
		back := (int(last.Weekday()) - int(d.Weekday) + 7) % 7
		return last.AddDays(-back)
	case tzdata.DayFormAfter:
		from := first.AddDays(d.Num - 1)
		return from.AddDays((int(d.Weekday) - int(from.Weekday()) + 7) % 7)
	case tzdata.DayFormBefore:
		from := first.AddDays(d.Num - 1)
		return from.AddDays(-((int(from.Weekday()) - int(d.Weekday) + 7) % 7))
	}
	panic(fmt.Errorf("invalid DayForm: %v", d.Form))
}

// Earliest returns the date and time of day an UNTIL column stands for,
// with missing trailing fields set to their earliest value.
func Earliest(u tzdata.Until) (civil.Date, tzdata.Time) {
	month := time.January
	if u.Parts.Has(tzdata.UntilMonth) {
		month = u.Month
	}
	day := tzdata.NewDayNum(1)
	if u.Parts.Has(tzdata.UntilDay) {
		day = u.Day
	}
	t := tzdata.NewWallClock(0)
	if u.Parts.Has(tzdata.UntilTime) {
		t = u.Time
	}
	return DayOfMonth(u.Year, month, day), t
}

// Seconds returns the instant of a local date-time plus the offset t into
// that day, interpreted according to t.Form. stdoff is the standard offset
// of the zone and save the amount of daylight saving time in effect just
// before the instant.
func Seconds(dt civil.DateTime, t tzdata.Time, stdoff, save time.Duration) int64 {
	unix := dt.Unix() + int64(t.Duration/time.Second)
	switch t.Form {
	case tzdata.UniversalTime:
		return unix
	case tzdata.StandardTime:
		return unix - int64(stdoff/time.Second)
	default:
		return unix - int64((stdoff+save)/time.Second)
	}
}

// Occurrence is one application of a rule line.
type Occurrence struct {
	Rule tzdata.RuleLine
	Date civil.Date
}

// Instant returns the moment the occurrence takes effect.
func (o Occurrence) Instant(stdoff, save time.Duration) int64 {
	return Seconds(civil.DateTime{Date: o.Date}, o.Rule.At, stdoff, save)
}

// ExpandRules returns every occurrence of rules in the years from through
// to, ordered by date and time of day. Unbounded FROM and TO columns are
// clamped to the range.
func ExpandRules(from, to int, rules []tzdata.RuleLine) []Occurrence {
	var out []Occurrence
	for _, r := range rules {
		out = append(out, expandRule(from, to, r)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date.DaysSinceEpoch(), out[j].Date.DaysSinceEpoch()
		if a != b {
			return a < b
		}
		return out[i].Rule.At.Duration < out[j].Rule.At.Duration
	})
	return out
}

func expandRule(from, to int, r tzdata.RuleLine) []Occurrence {
	first, last := from, to
	if r.From != tzdata.MinYear && int(r.From) > first {
		first = int(r.From)
	}
	if r.To != tzdata.MaxYear && int(r.To) < last {
		last = int(r.To)
	}
	var out []Occurrence
	for year := first; year <= last; year++ {
		out = append(out, Occurrence{Rule: r, Date: DayOfMonth(year, r.In, r.On)})
	}
	return out
}
