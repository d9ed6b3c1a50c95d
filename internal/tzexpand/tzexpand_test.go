package tzexpand

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/tzdata"
)

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func TestDayOfMonth(t *testing.T) {
	type in struct {
		Year  int
		Month time.Month
		Day   tzdata.Day
	}
	cases := []struct {
		in   in
		want civil.Date
	}{
		{in{2021, time.March, tzdata.NewDayNum(23)}, date(2021, time.March, 23)},
		{in{2021, time.March, tzdata.NewDayLast(time.Sunday)}, date(2021, time.March, 28)},

		// Leap day
		{in{2020, time.February, tzdata.NewDayAfter(28, time.Saturday)}, date(2020, time.February, 29)},
		{in{2020, time.February, tzdata.NewDayLast(time.Saturday)}, date(2020, time.February, 29)},
		// Day Leap day in a non-leap year
		{in{2021, time.February, tzdata.NewDayAfter(28, time.Saturday)}, date(2021, time.March, 6)},

		// Day of week is on the exact day of month
		{in{2021, time.March, tzdata.NewDayAfter(28, time.Sunday)}, date(2021, time.March, 28)},
		// Day of week is later in the same month
		{in{2021, time.March, tzdata.NewDayAfter(15, time.Sunday)}, date(2021, time.March, 21)},
		// Day of week is next month
		{in{2021, time.March, tzdata.NewDayAfter(30, time.Sunday)}, date(2021, time.April, 4)},
		// Day of week is next year
		{in{2021, time.December, tzdata.NewDayAfter(30, time.Sunday)}, date(2022, time.January, 2)},

		// Day of week is on the exact day of month
		{in{2021, time.March, tzdata.NewDayBefore(28, time.Sunday)}, date(2021, time.March, 28)},
		// Day of week is earlier in the same month
		{in{2021, time.March, tzdata.NewDayBefore(15, time.Sunday)}, date(2021, time.March, 14)},
		// Day of week is last month
		{in{2021, time.March, tzdata.NewDayBefore(5, time.Sunday)}, date(2021, time.February, 28)},
		// Day of week is last year
		{in{2021, time.January, tzdata.NewDayBefore(2, time.Sunday)}, date(2020, time.December, 27)},
	}

	for _, c := range cases {
		got := DayOfMonth(c.in.Year, c.in.Month, c.in.Day)
		if diff := cmp.Diff(c.want, got); diff != "" {
			t.Errorf("DayOfMonth(%+v) mismatch (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestEarliest(t *testing.T) {
	cases := []struct {
		name string
		in   tzdata.Until
		want civil.Date
		time tzdata.Time
	}{
		{
			name: "year only",
			in:   tzdata.Until{Defined: true, Year: 1981, Parts: tzdata.UntilYear},
			want: date(1981, time.January, 1),
			time: tzdata.NewWallClock(0),
		},
		{
			name: "last sunday",
			in: tzdata.Until{
				Defined: true, Year: 2011, Month: time.March, Day: tzdata.NewDayLast(time.Sunday),
				Time:  tzdata.Time{Duration: 2 * time.Hour, Form: tzdata.StandardTime},
				Parts: tzdata.UntilYear | tzdata.UntilMonth | tzdata.UntilDay | tzdata.UntilTime,
			},
			want: date(2011, time.March, 27),
			time: tzdata.Time{Duration: 2 * time.Hour, Form: tzdata.StandardTime},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, tod := Earliest(c.in)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("Earliest() date mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(c.time, tod); diff != "" {
				t.Errorf("Earliest() time mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOccurrence_Instant(t *testing.T) {
	// US rules: second Sunday in March 2024 at 2:00 wall clock, Chicago.
	us := tzdata.RuleLine{In: time.March, On: tzdata.NewDayAfter(8, time.Sunday), At: tzdata.NewWallClock(2 * time.Hour)}
	o := Occurrence{Rule: us, Date: DayOfMonth(2024, us.In, us.On)}
	if got, want := o.Instant(-6*time.Hour, 0), int64(1710057600); got != want {
		t.Errorf("Instant() = %d, want %d", got, want)
	}

	// EU rules: last Sunday in October 2024 at 1:00 UT.
	eu := tzdata.RuleLine{In: time.October, On: tzdata.NewDayLast(time.Sunday), At: tzdata.Time{Duration: time.Hour, Form: tzdata.UniversalTime}}
	o = Occurrence{Rule: eu, Date: DayOfMonth(2024, eu.In, eu.On)}
	if got, want := o.Instant(time.Hour, time.Hour), int64(1729990800); got != want {
		t.Errorf("Instant() = %d, want %d", got, want)
	}
}

func TestExpandRules(t *testing.T) {
	march := tzdata.RuleLine{
		Name:   "EU",
		From:   tzdata.MinYear,
		To:     tzdata.MaxYear,
		In:     time.March,
		On:     tzdata.NewDayLast(time.Sunday),
		At:     tzdata.Time{Duration: time.Hour, Form: tzdata.UniversalTime},
		Save:   tzdata.Time{Duration: time.Hour, Form: tzdata.DaylightSavingTime},
		Letter: "S",
	}
	october := march
	october.From, october.To = 1996, 1996
	october.In = time.October
	october.Save = tzdata.Time{Form: tzdata.StandardTime}
	october.Letter = ""

	cases := []struct {
		name     string
		from, to int
		rules    []tzdata.RuleLine
		want     []Occurrence
	}{
		{
			name:  "clamped to range",
			from:  1982,
			to:    1983,
			rules: []tzdata.RuleLine{march},
			want: []Occurrence{
				{Rule: march, Date: date(1982, time.March, 28)},
				{Rule: march, Date: date(1983, time.March, 27)},
			},
		},
		{
			name:  "outside range",
			from:  1990,
			to:    1993,
			rules: []tzdata.RuleLine{october},
			want:  nil,
		},
		{
			name:  "sorted across rules",
			from:  1996,
			to:    1997,
			rules: []tzdata.RuleLine{october, march},
			want: []Occurrence{
				{Rule: march, Date: date(1996, time.March, 31)},
				{Rule: october, Date: date(1996, time.October, 27)},
				{Rule: march, Date: date(1997, time.March, 30)},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ExpandRules(c.from, c.to, c.rules)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("ExpandRules() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
