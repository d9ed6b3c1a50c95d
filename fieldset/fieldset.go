// Package fieldset describes which fields of a date, time and time zone a
// formatter is asked to produce.
//
// A Builder collects optional knobs and is validated once by Build into a
// Set, whose Kind determines which parts of a value must be present.
package fieldset

import (
	"errors"
	"fmt"
)

// Kind is the shape of a composite field set.
type Kind uint8

const (
	Date Kind = iota + 1
	CalendarPeriod
	Time
	Zone
	DateTime
	DateZone
	TimeZone
	DateTimeZone
)

var kindNames = map[Kind]string{
	Date:           "date",
	CalendarPeriod: "calendar-period",
	Time:           "time",
	Zone:           "zone",
	DateTime:       "date-time",
	DateZone:       "date-zone",
	TimeZone:       "time-zone",
	DateTimeZone:   "date-time-zone",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("<undefined field set kind (%d)>", k)
}

// HasDate reports whether sets of kind k render date fields.
func (k Kind) HasDate() bool {
	return k == Date || k == CalendarPeriod || k == DateTime || k == DateZone || k == DateTimeZone
}

// HasTime reports whether sets of kind k render time fields.
func (k Kind) HasTime() bool {
	return k == Time || k == DateTime || k == TimeZone || k == DateTimeZone
}

// HasZone reports whether sets of kind k render a time zone.
func (k Kind) HasZone() bool {
	return k == Zone || k == DateZone || k == TimeZone || k == DateTimeZone
}

// Length is the overall length of the formatted text.
type Length uint8

const (
	Medium Length = iota
	Long
	Short
)

// DateFields selects date fields. Y is year, M month, D day and E
// weekday.
type DateFields uint8

const (
	D DateFields = iota + 1
	MD
	YMD
	DE
	MDE
	YMDE
	E
	M
	YM
	Y
)

// IsCalendarPeriod reports whether f describes a period without a day.
func (f DateFields) IsCalendarPeriod() bool {
	return f == M || f == YM || f == Y
}

// HasYear reports whether f includes the year.
func (f DateFields) HasYear() bool {
	return f == YMD || f == YMDE || f == YM || f == Y
}

// TimePrecision is the smallest time unit rendered.
type TimePrecision uint8

const (
	Hour TimePrecision = iota + 1
	Minute
	Second
	Subsecond1
	Subsecond2
	Subsecond3
	Subsecond4
	Subsecond5
	Subsecond6
	Subsecond7
	Subsecond8
	Subsecond9
	// MinuteOptional renders minutes only when they are not zero.
	MinuteOptional
)

// SubsecondDigits returns the number of fractional second digits, or 0.
func (p TimePrecision) SubsecondDigits() int {
	if p >= Subsecond1 && p <= Subsecond9 {
		return int(p-Subsecond1) + 1
	}
	return 0
}

// ZoneStyle is the way a time zone is rendered.
type ZoneStyle uint8

const (
	SpecificLong ZoneStyle = iota + 1
	SpecificShort
	LocalizedOffsetLong
	LocalizedOffsetShort
	GenericLong
	GenericShort
	Location
	ExemplarCity
)

// Alignment controls padding of numeric fields.
type Alignment uint8

const (
	AlignAuto Alignment = iota
	// AlignColumn pads numeric fields so that values line up in columns.
	AlignColumn
)

// YearStyle controls how the year and era are rendered.
type YearStyle uint8

const (
	YearAuto YearStyle = iota
	YearFull
	YearWithEra
)

// Builder collects field set options. All fields are optional.
type Builder struct {
	Length        *Length
	DateFields    *DateFields
	TimePrecision *TimePrecision
	ZoneStyle     *ZoneStyle
	Alignment     *Alignment
	YearStyle     *YearStyle
}

// Set is a validated composite field set.
type Set struct {
	kind          Kind
	length        Length
	dateFields    DateFields
	timePrecision TimePrecision
	zoneStyle     ZoneStyle
	alignment     Alignment
	yearStyle     YearStyle
}

// Of returns a minimal set of the given kind with default options. It is
// meant for tests and callers that only care about presence.
func Of(k Kind) Set {
	s := Set{kind: k}
	switch k {
	case Date, DateTime, DateZone, DateTimeZone:
		s.dateFields = YMD
	case CalendarPeriod:
		s.dateFields = YM
	}
	if k.HasTime() {
		s.timePrecision = Second
	}
	if k.HasZone() {
		s.zoneStyle = SpecificLong
	}
	return s
}

func (s Set) Kind() Kind                   { return s.kind }
func (s Set) Length() Length               { return s.length }
func (s Set) DateFields() DateFields       { return s.dateFields }
func (s Set) TimePrecision() TimePrecision { return s.timePrecision }
func (s Set) ZoneStyle() ZoneStyle         { return s.zoneStyle }
func (s Set) Alignment() Alignment         { return s.alignment }
func (s Set) YearStyle() YearStyle         { return s.yearStyle }

var (
	// ErrNoFields is returned when neither date fields, a time precision
	// nor a zone style is given.
	ErrNoFields = errors.New("no date fields, time precision or zone style")
	// ErrInvalidDateFields is returned for date fields that cannot be
	// combined with the other options.
	ErrInvalidDateFields = errors.New("invalid date fields")
	// ErrSuperfluousOptions is returned for options that have no effect
	// on the resulting field set.
	ErrSuperfluousOptions = errors.New("superfluous options")
)

// BuilderError is returned by Build for invalid option combinations.
type BuilderError struct {
	// Options names the offending options.
	Options []string
	Err     error
}

func (e *BuilderError) Error() string {
	if len(e.Options) == 0 {
		return "build field set: " + e.Err.Error()
	}
	return fmt.Sprintf("build field set: %v: %v", e.Err, e.Options)
}

func (e *BuilderError) Unwrap() error { return e.Err }

// Build validates the options and returns the composite field set.
//
// Calendar periods (M, YM, Y) cannot be combined with a time or zone.
// Length and alignment need date or time fields; year style needs date
// fields that include the year.
func (b Builder) Build() (Set, error) {
	var s Set
	hasDate := b.DateFields != nil
	hasTime := b.TimePrecision != nil
	hasZone := b.ZoneStyle != nil

	switch {
	case hasDate && b.DateFields.IsCalendarPeriod():
		if hasTime || hasZone {
			return Set{}, &BuilderError{Options: []string{"date-fields"}, Err: ErrInvalidDateFields}
		}
		s.kind = CalendarPeriod
	case hasDate && hasTime && hasZone:
		s.kind = DateTimeZone
	case hasDate && hasTime:
		s.kind = DateTime
	case hasDate && hasZone:
		s.kind = DateZone
	case hasDate:
		s.kind = Date
	case hasTime && hasZone:
		s.kind = TimeZone
	case hasTime:
		s.kind = Time
	case hasZone:
		s.kind = Zone
	default:
		return Set{}, &BuilderError{Err: ErrNoFields}
	}

	if hasDate {
		if *b.DateFields < D || *b.DateFields > Y {
			return Set{}, &BuilderError{Options: []string{"date-fields"}, Err: ErrInvalidDateFields}
		}
		s.dateFields = *b.DateFields
	}
	if hasTime {
		s.timePrecision = *b.TimePrecision
	}
	if hasZone {
		s.zoneStyle = *b.ZoneStyle
	}

	var superfluous []string
	if b.Length != nil {
		if s.kind == Zone {
			superfluous = append(superfluous, "length")
		} else {
			s.length = *b.Length
		}
	}
	if b.Alignment != nil {
		if s.kind == Zone {
			superfluous = append(superfluous, "alignment")
		} else {
			s.alignment = *b.Alignment
		}
	}
	if b.YearStyle != nil {
		if !hasDate || !s.dateFields.HasYear() {
			superfluous = append(superfluous, "year-style")
		} else {
			s.yearStyle = *b.YearStyle
		}
	}
	if len(superfluous) > 0 {
		return Set{}, &BuilderError{Options: superfluous, Err: ErrSuperfluousOptions}
	}
	return s, nil
}

// Ptr returns a pointer to v. It is a convenience for filling a Builder.
func Ptr[T any](v T) *T {
	return &v
}
