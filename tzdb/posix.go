package tzdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/ngrash/go-zoned/tzdata"
	"github.com/ngrash/go-zoned/zone"
)

// TZString returns the POSIX TZ string describing name after its last
// zone line took effect, as written to the footer of TZif files. It
// reports false if the rules in force forever cannot be expressed as a TZ
// string, for example because they use fixed days of the month.
func (db *Database) TZString(name string) (string, bool) {
	canonical, ok := db.resolve(name)
	if !ok {
		return "", false
	}
	spans := db.zones[canonical]
	l := spans[len(spans)-1].line
	std := offset(l.Offset)

	switch l.Rules.Form {
	case tzdata.ZoneRulesStandard:
		return posixName(abbrev(l.Format, "", false, std)) + posixOffset(std), true
	case tzdata.ZoneRulesTime:
		if l.Rules.Time.Duration != 0 {
			return "", false
		}
		return posixName(abbrev(l.Format, "", false, std)) + posixOffset(std), true
	}

	var ongoing []tzdata.RuleLine
	for _, r := range db.rules[l.Rules.Name] {
		if r.To == tzdata.MaxYear {
			ongoing = append(ongoing, r)
		}
	}
	switch len(ongoing) {
	case 0:
		r, ok := latestBefore(db.rules[l.Rules.Name], maxYear)
		if ok && r.IsDST() {
			return "", false
		}
		return posixName(abbrev(l.Format, r.Letter, false, std)) + posixOffset(std), true
	case 2:
	default:
		return "", false
	}

	start, end := ongoing[0], ongoing[1]
	if !start.IsDST() {
		start, end = end, start
	}
	if !start.IsDST() || end.IsDST() {
		return "", false
	}
	dst := offset(l.Offset + start.Save.Duration)
	startRule, ok := posixRule(start, l.Offset, end.Save.Duration)
	if !ok {
		return "", false
	}
	endRule, ok := posixRule(end, l.Offset, start.Save.Duration)
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString(posixName(abbrev(l.Format, end.Letter, false, std)))
	b.WriteString(posixOffset(std))
	b.WriteString(posixName(abbrev(l.Format, start.Letter, true, dst)))
	if dst != std+3600 {
		b.WriteString(posixOffset(dst))
	}
	b.WriteString(",")
	b.WriteString(startRule)
	b.WriteString(",")
	b.WriteString(endRule)
	return b.String(), true
}

// maxYear is the last year a TZ string may be derived from.
const maxYear = 9999

// posixRule formats the date and local time at which r takes effect as
// Mm.w.d[/time]. save is the daylight saving time in effect before it.
func posixRule(r tzdata.RuleLine, stdoff, save time.Duration) (string, bool) {
	var week int
	switch r.On.Form {
	case tzdata.DayFormLast:
		week = 5
	case tzdata.DayFormAfter:
		if (r.On.Num-1)%7 != 0 {
			return "", false
		}
		week = (r.On.Num-1)/7 + 1
	default:
		return "", false
	}
	s := fmt.Sprintf("M%d.%d.%d", int(r.In), week, int(r.On.Weekday))

	at := r.At.Duration
	switch r.At.Form {
	case tzdata.StandardTime:
		at += save
	case tzdata.UniversalTime:
		at += stdoff + save
	}
	if at != 2*time.Hour {
		s += "/" + posixTime(int64(at/time.Second))
	}
	return s, true
}

// posixName quotes abbreviations that are not purely alphabetic.
func posixName(s string) string {
	for _, c := range s {
		if c < 'A' || c > 'Z' && c < 'a' || c > 'z' {
			return "<" + s + ">"
		}
	}
	return s
}

// posixOffset formats off with the inverted sign of TZ strings.
func posixOffset(off zone.Offset) string {
	return posixTime(-int64(off))
}

// posixTime formats secs as [-]h[:mm[:ss]].
func posixTime(secs int64) string {
	var sign string
	if secs < 0 {
		sign, secs = "-", -secs
	}
	h, m, s := secs/3600, secs/60%60, secs%60
	switch {
	case s != 0:
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	case m != 0:
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	}
	return fmt.Sprintf("%s%d", sign, h)
}
