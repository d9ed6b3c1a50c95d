// Package tzdata parses the tzdata source files distributed by IANA at
// https://www.iana.org/time-zones, in the format described by zic(8).
//
// Only Zone, Rule and Link lines are kept. Leap and Expires lines, which
// appear in the separate leapseconds file, are recognised and skipped.
package tzdata

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

// File is the result of parsing one or more tzdata source files. Lines
// are kept in the order they appear.
type File struct {
	ZoneLines []ZoneLine
	RuleLines []RuleLine
	LinkLines []LinkLine
}

// Merge appends the lines of other to f.
func (f *File) Merge(other File) {
	f.ZoneLines = append(f.ZoneLines, other.ZoneLines...)
	f.RuleLines = append(f.RuleLines, other.RuleLines...)
	f.LinkLines = append(f.LinkLines, other.LinkLines...)
}

// ParseError reports the line that failed to parse.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse parses the content of a tzdata source file.
func Parse(r io.Reader) (File, error) {
	var (
		result               File
		scanner              = bufio.NewScanner(r)
		lineNumber           int
		continuationExpected bool
		zoneName             string
	)
	fail := func(line, what string, err error) error {
		return &ParseError{Line: lineNumber, Text: line, Err: fmt.Errorf("parse %s: %w", what, err)}
	}
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		fields := splitLine(line)
		if fields == nil {
			continue
		}
		switch {
		case continuationExpected:
			z, err := parseZoneContinuationLine(fields)
			if err != nil {
				return result, fail(line, "zone continuation", err)
			}
			z.Name = zoneName
			result.ZoneLines = append(result.ZoneLines, z)
			continuationExpected = z.Until.Defined
		case isAbbrev(fields[0], "Zone", "Z"):
			z, err := parseZoneLine(fields)
			if err != nil {
				return result, fail(line, "zone", err)
			}
			result.ZoneLines = append(result.ZoneLines, z)
			zoneName = z.Name
			// An UNTIL column announces a continuation line.
			continuationExpected = z.Until.Defined
		case isAbbrev(fields[0], "Rule", "R"):
			rule, err := parseRuleLine(fields)
			if err != nil {
				return result, fail(line, "rule", err)
			}
			result.RuleLines = append(result.RuleLines, rule)
		case isAbbrev(fields[0], "Link", "L"):
			link, err := parseLinkLine(fields)
			if err != nil {
				return result, fail(line, "link", err)
			}
			result.LinkLines = append(result.LinkLines, link)
		case fields[0] == "Leap" || fields[0] == "Expires":
		default:
			return result, &ParseError{Line: lineNumber, Text: line, Err: errors.New("unexpected line")}
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("scanner: %w", err)
	}
	return result, nil
}

// splitLine strips comments and splits line into fields. It returns nil
// for blank lines.
func splitLine(line string) []string {
	if i := strings.IndexByte(line, '#'); i != -1 {
		line = line[:i]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// LinkLine is a Link line:
//
//	Link  TARGET           LINK-NAME
//	Link  Europe/Istanbul  Asia/Istanbul
//
// Links can chain and can appear before the line defining their target.
type LinkLine struct {
	Target string
	Name   string
}

func parseLinkLine(fields []string) (LinkLine, error) {
	if len(fields) != 3 {
		return LinkLine{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	return LinkLine{Target: fields[1], Name: fields[2]}, nil
}

// Year is a year in the proleptic Gregorian calendar.
type Year int

const (
	// MinYear means the indefinite past.
	MinYear Year = math.MinInt
	// MaxYear means the indefinite future.
	MaxYear Year = math.MaxInt
)

func (y Year) String() string {
	switch y {
	case MinYear:
		return "<indefinite past>"
	case MaxYear:
		return "<indefinite future>"
	}
	return strconv.Itoa(int(y))
}

// TimeForm says which clock a time of day refers to.
type TimeForm int

const (
	WallClock TimeForm = iota
	StandardTime
	DaylightSavingTime
	UniversalTime
)

func (f TimeForm) String() string {
	switch f {
	case WallClock:
		return "WallClock"
	case StandardTime:
		return "StandardTime"
	case DaylightSavingTime:
		return "DaylightSavingTime"
	case UniversalTime:
		return "UniversalTime"
	default:
		return "<UNDEFINED>"
	}
}

// Time is a time relative to 00:00, or an amount of saved time.
type Time struct {
	Duration time.Duration
	Form     TimeForm
}

// NewWallClock returns d as wall clock time.
func NewWallClock(d time.Duration) Time { return Time{Duration: d, Form: WallClock} }

// DayForm is the form of the ON column.
type DayForm int

const (
	DayFormNum    DayForm = iota // 5
	DayFormLast                  // lastSun
	DayFormAfter                 // Sun>=8
	DayFormBefore                // Sun<=25
)

func (f DayForm) String() string {
	switch f {
	case DayFormNum:
		return "Num"
	case DayFormLast:
		return "Last"
	case DayFormAfter:
		return "After"
	case DayFormBefore:
		return "Before"
	default:
		return "<UNDEFINED>"
	}
}

// Day is the ON column of a rule or the day of an UNTIL column.
type Day struct {
	Form    DayForm
	Num     int
	Weekday time.Weekday
}

func NewDayNum(n int) Day { return Day{Form: DayFormNum, Num: n} }

func NewDayLast(wd time.Weekday) Day { return Day{Form: DayFormLast, Weekday: wd} }

func NewDayAfter(n int, wd time.Weekday) Day { return Day{Form: DayFormAfter, Num: n, Weekday: wd} }

func NewDayBefore(n int, wd time.Weekday) Day { return Day{Form: DayFormBefore, Num: n, Weekday: wd} }

// RuleLine is a Rule line:
//
//	Rule  NAME  FROM  TO    -  IN   ON       AT     SAVE   LETTER/S
//	Rule  US    1967  1973  -  Apr  lastSun  2:00w  1:00d  D
type RuleLine struct {
	Name   string
	From   Year
	To     Year
	In     time.Month
	On     Day
	At     Time
	Save   Time
	Letter string
}

// IsDST reports whether the rule starts daylight saving time.
func (r RuleLine) IsDST() bool { return r.Save.Form == DaylightSavingTime }

func parseRuleLine(fields []string) (RuleLine, error) {
	if len(fields) != 10 {
		return RuleLine{}, fmt.Errorf("expected 10 fields, got %d", len(fields))
	}
	var (
		r    RuleLine
		errs []error
		err  error
	)
	col := func(name, value string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %q: %w", name, value, err))
		}
	}
	r.Name, err = parseRuleName(fields[1])
	col("NAME", fields[1], err)
	r.From, err = parseYear(fields[2], 0)
	col("FROM", fields[2], err)
	r.To, err = parseYear(fields[3], r.From)
	col("TO", fields[3], err)
	r.In, err = parseMonth(fields[5])
	col("IN", fields[5], err)
	r.On, err = parseDay(fields[6])
	col("ON", fields[6], err)
	r.At, err = parseAt(fields[7])
	col("AT", fields[7], err)
	r.Save, err = parseSave(fields[8])
	col("SAVE", fields[8], err)
	r.Letter = fields[9]
	if r.Letter == "-" {
		r.Letter = ""
	}
	return r, errors.Join(errs...)
}

// parseRuleName rejects names starting with a digit or sign and unquoted
// names containing characters zic reserves for future extensions.
func parseRuleName(s string) (string, error) {
	if s[0] >= '0' && s[0] <= '9' || s[0] == '-' || s[0] == '+' {
		return "", fmt.Errorf("name must not start with %q", s[0])
	}
	if strings.ContainsAny(s, "!$%&'()*,/:;<=>?@[\\]^`{|}~") {
		return "", fmt.Errorf("name contains a reserved character")
	}
	return s, nil
}

// parseYear parses FROM and TO. "only" repeats from.
func parseYear(s string, from Year) (Year, error) {
	l := strings.ToLower(s)
	switch {
	case isAbbrev(l, "minimum", "mi"):
		return MinYear, nil
	case isAbbrev(l, "maximum", "ma"):
		return MaxYear, nil
	case from != 0 && isAbbrev(l, "only", "o"):
		return from, nil
	}
	n, err := strconv.Atoi(s)
	return Year(n), err
}

var months = [...]string{"january", "february", "march", "april", "may", "june", "july", "august", "september", "october", "november", "december"}

func parseMonth(s string) (time.Month, error) {
	l := strings.ToLower(s)
	for i, name := range months {
		if isAbbrev(l, name, name[:3]) {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("invalid month")
}

var weekdays = [...]struct{ name, min string }{
	{"sunday", "su"}, {"monday", "m"}, {"tuesday", "tu"}, {"wednesday", "w"},
	{"thursday", "th"}, {"friday", "f"}, {"saturday", "sa"},
}

func parseWeekday(s string) (time.Weekday, error) {
	l := strings.ToLower(s)
	for i, wd := range weekdays {
		if isAbbrev(l, wd.name, wd.min) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// parseDay parses the ON column: 5, lastSun, Sun>=8 or Sun<=25.
func parseDay(s string) (Day, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return NewDayNum(n), nil
	}
	if strings.HasPrefix(s, "last") {
		wd, err := parseWeekday(s[4:])
		if err != nil {
			return Day{}, err
		}
		return NewDayLast(wd), nil
	}
	for _, op := range []struct {
		sep  string
		form DayForm
	}{{">=", DayFormAfter}, {"<=", DayFormBefore}} {
		left, right, ok := strings.Cut(s, op.sep)
		if !ok {
			continue
		}
		wd, err := parseWeekday(left)
		if err != nil {
			return Day{}, err
		}
		n, err := strconv.Atoi(right)
		if err != nil {
			return Day{}, fmt.Errorf("day of month %q: %w", right, err)
		}
		return Day{Form: op.form, Num: n, Weekday: wd}, nil
	}
	return Day{}, fmt.Errorf("invalid day")
}

// parseAt parses the AT column: a time followed by an optional w, s, u, g
// or z suffix. Wall clock time is the default.
func parseAt(s string) (Time, error) {
	form := WallClock
	switch s[len(s)-1] {
	case 'w':
		s = s[:len(s)-1]
	case 's':
		form, s = StandardTime, s[:len(s)-1]
	case 'u', 'g', 'z':
		form, s = UniversalTime, s[:len(s)-1]
	}
	d, err := parseDuration(s)
	return Time{Duration: d, Form: form}, err
}

// parseSave parses the SAVE column. Without a suffix, zero means standard
// time and anything else daylight saving time, including negative values
// like Ireland's winter time.
func parseSave(s string) (Time, error) {
	var form TimeForm
	switch s[len(s)-1] {
	case 's':
		form, s = StandardTime, s[:len(s)-1]
	case 'd':
		form, s = DaylightSavingTime, s[:len(s)-1]
	default:
		form = -1
	}
	d, err := parseDuration(s)
	if err != nil {
		return Time{}, err
	}
	if form == -1 {
		form = DaylightSavingTime
		if d == 0 {
			form = StandardTime
		}
	}
	return Time{Duration: d, Form: form}, nil
}

// parseDuration parses [-]h[:mm[:ss[.frac]]] or "-" for zero. Fractions
// are kept to the millisecond.
func parseDuration(s string) (time.Duration, error) {
	if s == "-" {
		return 0, nil
	}
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("too many components")
	}
	var frac string
	if len(parts) == 3 {
		parts[2], frac, _ = strings.Cut(parts[2], ".")
	}
	var d time.Duration
	for i, unit := range []time.Duration{time.Hour, time.Minute, time.Second} {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		d += time.Duration(n) * unit
	}
	if frac != "" {
		frac = (frac + "000")[:3]
		ms, err := strconv.Atoi(frac)
		if err != nil {
			return 0, fmt.Errorf("invalid fraction %q", frac)
		}
		d += time.Duration(ms) * time.Millisecond
	}
	if neg {
		d = -d
	}
	return d, nil
}

// UntilPartsMask records which parts of an UNTIL column were given. Missing
// trailing parts default to the earliest possible value.
type UntilPartsMask uint8

// Has reports whether all parts in parts are set.
func (p UntilPartsMask) Has(parts UntilPartsMask) bool { return p&parts == parts }

const (
	UntilYear  UntilPartsMask = 1 << iota
	UntilMonth
	UntilDay
	UntilTime
)

// Until is the UNTIL column of a zone line. The zero value means the
// column is absent.
type Until struct {
	Defined bool
	Parts   UntilPartsMask
	Year    int
	Month   time.Month
	Day     Day
	Time    Time
}

func parseUntil(fields []string) (Until, error) {
	if len(fields) == 0 {
		return Until{}, nil
	}
	if len(fields) > 4 {
		return Until{}, fmt.Errorf("too many fields: %d", len(fields))
	}
	u := Until{Defined: true, Parts: UntilYear, Month: time.January, Day: NewDayNum(1)}
	var err error
	if u.Year, err = strconv.Atoi(fields[0]); err != nil {
		return Until{}, fmt.Errorf("year: %w", err)
	}
	if len(fields) > 1 {
		if u.Month, err = parseMonth(fields[1]); err != nil {
			return Until{}, fmt.Errorf("month: %w", err)
		}
		u.Parts |= UntilMonth
	}
	if len(fields) > 2 {
		if u.Day, err = parseDay(fields[2]); err != nil {
			return Until{}, fmt.Errorf("day: %w", err)
		}
		u.Parts |= UntilDay
	}
	if len(fields) > 3 {
		if u.Time, err = parseAt(fields[3]); err != nil {
			return Until{}, fmt.Errorf("time: %w", err)
		}
		u.Parts |= UntilTime
	}
	return u, nil
}

// ZoneRulesForm is the form of the RULES column of a zone line.
type ZoneRulesForm int

const (
	// ZoneRulesStandard means standard time always applies ("-").
	ZoneRulesStandard ZoneRulesForm = iota
	// ZoneRulesName references rule lines by name.
	ZoneRulesName
	// ZoneRulesTime is a fixed amount of saved time.
	ZoneRulesTime
)

// ZoneRules is the RULES column of a zone line.
type ZoneRules struct {
	Form ZoneRulesForm
	Name string
	Time Time
}

func parseZoneRules(s string) ZoneRules {
	if s == "-" {
		return ZoneRules{Form: ZoneRulesStandard}
	}
	if t, err := parseSave(s); err == nil {
		return ZoneRules{Form: ZoneRulesTime, Time: t}
	}
	// Whether a rule with that name exists is checked once all files are read.
	return ZoneRules{Form: ZoneRulesName, Name: s}
}

// ZoneLine is a Zone line or one of its continuation lines:
//
//	Zone  NAME        STDOFF  RULES   FORMAT  [UNTIL]
//	Zone  Asia/Amman  2:00    Jordan  EE%sT   2017 Oct 27 01:00
//	                  2:00    Jordan  EE%sT
//
// Continuation lines carry the name of the zone they continue.
type ZoneLine struct {
	Continuation bool
	Name         string
	Offset       time.Duration
	Rules        ZoneRules
	Format       string
	Until        Until
}

func parseZoneLine(fields []string) (ZoneLine, error) {
	if len(fields) < 5 || len(fields) > 9 {
		return ZoneLine{}, fmt.Errorf("expected 5 to 9 fields, got %d", len(fields))
	}
	name := fields[1]
	if strings.Contains(name, "..") || strings.HasPrefix(name, "/") {
		return ZoneLine{}, fmt.Errorf("NAME %q: invalid file name", name)
	}
	z, err := parseZoneFields(fields[2:])
	z.Name = name
	return z, err
}

func parseZoneContinuationLine(fields []string) (ZoneLine, error) {
	if len(fields) < 3 || len(fields) > 7 {
		return ZoneLine{}, fmt.Errorf("expected 3 to 7 fields, got %d", len(fields))
	}
	z, err := parseZoneFields(fields)
	z.Continuation = true
	return z, err
}

// parseZoneFields parses STDOFF RULES FORMAT [UNTIL].
func parseZoneFields(fields []string) (ZoneLine, error) {
	var (
		z    ZoneLine
		errs []error
		err  error
	)
	if z.Offset, err = parseDuration(fields[0]); err != nil {
		errs = append(errs, fmt.Errorf("STDOFF %q: %w", fields[0], err))
	}
	z.Rules = parseZoneRules(fields[1])
	z.Format = strings.Trim(fields[2], `"`)
	if z.Until, err = parseUntil(fields[3:]); err != nil {
		errs = append(errs, fmt.Errorf("UNTIL %q: %w", strings.Join(fields[3:], " "), err))
	}
	return z, errors.Join(errs...)
}

// isAbbrev reports whether s abbreviates long to at least min.
func isAbbrev(s, long, min string) bool {
	return strings.HasPrefix(s, min) && strings.HasPrefix(long, s)
}
