// Package civil provides calendar dates and times of day on the proleptic
// ISO (Gregorian) calendar, without reference to a time zone.
//
// Values are validated on construction. Out-of-range fields are reported
// as a *RangeError naming the offending field.
package civil

import (
	"fmt"
	"time"
)

const (
	// MinYear is the smallest year accepted by NewDate.
	MinYear = -9999
	// MaxYear is the largest year accepted by NewDate.
	MaxYear = 9999
)

// RangeError is returned when a date or time field is outside of its
// calendrical bounds.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

func checkRange(field string, v, min, max int) error {
	if v < min || v > max {
		return &RangeError{Field: field, Value: v, Min: min, Max: max}
	}
	return nil
}

// Date is a day on the proleptic ISO calendar.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// Epoch is 1970-01-01.
var Epoch = Date{Year: 1970, Month: time.January, Day: 1}

// NewDate validates the fields and returns the corresponding Date.
func NewDate(year, month, day int) (Date, error) {
	if err := checkRange("year", year, MinYear, MaxYear); err != nil {
		return Date{}, err
	}
	if err := checkRange("month", month, 1, 12); err != nil {
		return Date{}, err
	}
	if err := checkRange("day", day, 1, DaysInMonth(year, time.Month(month))); err != nil {
		return Date{}, err
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// Weekday returns the day of the week of d.
func (d Date) Weekday() time.Weekday {
	// 1970-01-01 was a Thursday.
	days := d.daysSinceUnixEpoch()
	w := (days + int64(time.Thursday)) % 7
	if w < 0 {
		w += 7
	}
	return time.Weekday(w)
}

// YearDay returns the day of the year, in the range [1, 366].
func (d Date) YearDay() int {
	n := daysBefore[d.Month-1] + d.Day
	if d.Month > time.February && IsLeapYear(d.Year) {
		n++
	}
	return n
}

// AddDays returns d moved by n days, which may be negative.
func (d Date) AddDays(n int) Date {
	return dateFromDays(d.daysSinceUnixEpoch() + int64(n))
}

// DaysSinceEpoch returns the number of days between 1970-01-01 and d.
func (d Date) DaysSinceEpoch() int64 {
	return d.daysSinceUnixEpoch()
}

func (d Date) String() string {
	if d.Year < 0 {
		return fmt.Sprintf("-%04d-%02d-%02d", -d.Year, int(d.Month), d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Time is a time of day with nanosecond precision.
type Time struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// Midnight is the start of a day.
var Midnight = Time{}

// NewTime validates the fields and returns the corresponding Time.
func NewTime(hour, minute, second, nanosecond int) (Time, error) {
	if err := checkRange("hour", hour, 0, 23); err != nil {
		return Time{}, err
	}
	if err := checkRange("minute", minute, 0, 59); err != nil {
		return Time{}, err
	}
	if err := checkRange("second", second, 0, 59); err != nil {
		return Time{}, err
	}
	if err := checkRange("nanosecond", nanosecond, 0, 999_999_999); err != nil {
		return Time{}, err
	}
	return Time{Hour: hour, Minute: minute, Second: second, Nanosecond: nanosecond}, nil
}

// SecondsOfDay returns the number of whole seconds since midnight.
func (t Time) SecondsOfDay() int {
	return t.Hour*secondsPerHour + t.Minute*secondsPerMinute + t.Second
}

func (t Time) String() string {
	if t.Nanosecond == 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%09d", t.Hour, t.Minute, t.Second, t.Nanosecond)
}

// DateTime is a date and a time of day.
type DateTime struct {
	Date Date
	Time Time
}

// Unix returns the number of seconds between 1970-01-01 00:00:00 UTC and
// dt interpreted as UTC. The sub-second part of dt is dropped.
func (dt DateTime) Unix() int64 {
	return dt.Date.daysSinceUnixEpoch()*secondsPerDay + int64(dt.Time.SecondsOfDay())
}

func (dt DateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// FromUnix returns the UTC date and time for the given Unix timestamp.
func FromUnix(sec int64) DateTime {
	days := sec / secondsPerDay
	rem := sec % secondsPerDay
	if rem < 0 {
		rem += secondsPerDay
		days--
	}
	d := dateFromDays(days)
	return DateTime{
		Date: d,
		Time: Time{
			Hour:   int(rem / secondsPerHour),
			Minute: int(rem % secondsPerHour / secondsPerMinute),
			Second: int(rem % secondsPerMinute),
		},
	}
}
