package pattern

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ngrash/go-zoned/bcp47"
	"github.com/ngrash/go-zoned/calendar"
	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/internal/tzfixture"
	"github.com/ngrash/go-zoned/resolve"
	"github.com/ngrash/go-zoned/zoneinfo"
	"golang.org/x/text/language"
)

func ptr[T any](v T) *T { return &v }

func mustResolve(t *testing.T, s resolve.Spec) resolve.Value {
	t.Helper()
	db, err := zoneinfo.LoadAll(tzfixture.FS(), zoneinfo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	r := resolve.Resolver{Zones: bcp47.Default().Oracle(db)}
	v, err := r.Resolve(s)
	if err != nil {
		t.Fatalf("Resolve() returned unexpected error: %v", err)
	}
	return v
}

func chicago(t *testing.T) resolve.Value {
	return mustResolve(t, resolve.Spec{
		Year: ptr(2024), Month: ptr(7), Day: ptr(3),
		Hour: ptr(6), Minute: ptr(12), Second: ptr(4), Nanosecond: ptr(123456789),
		Zone: &resolve.ZoneSpec{BCP47: ptr("uschi"), Offset: &resolve.OffsetSpec{Text: ptr("-05")}},
	})
}

func TestFormat(t *testing.T) {
	v := chicago(t)
	en := language.MustParse("en-US")
	tests := []struct {
		pattern string
		want    string
	}{
		{"y-MM-dd HH:mm:ss", "2024-07-03 06:12:04"},
		{"EEEE, MMMM d, y 'at' h:mm a zzzz", "Wednesday, July 3, 2024 at 6:12 AM GMT-05:00"},
		{"EEE d MMM yy", "Wed 3 Jul 24"},
		{"EEEEE MMMMM EEEEEE", "W J We"},
		{"c e cccc", "3 3 Wednesday"},
		{"G GGGG GGGGG u", "AD Anno Domini A 2024"},
		{"QQQQ Q QQQ D DDD", "3rd quarter 3 Q3 185 185"},
		{"HH:mm:ss.SSS S SSSSSSSSS", "06:12:04.123 1 123456789"},
		{"K k h a aaaaa", "6 6 6 AM a"},
		{"'It''s' 'o''clock' H", "It's o'clock 6"},
		{"V VV VVV VVVV v", "uschi America/Chicago Chicago Chicago Time Chicago Time"},
		{"O OOOO z Z ZZZZ ZZZZZ", "GMT-5 GMT-05:00 GMT-5 -0500 GMT-05:00 -05:00"},
		{"X XX XXX x xxx", "-05 -0500 -05:00 -05 -05:00"},
		{"'literal only'", "literal only"},
	}
	for _, tc := range tests {
		got, err := Format(tc.pattern, en, v)
		if err != nil {
			t.Errorf("Format(%q) returned unexpected error: %v", tc.pattern, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.pattern, got, tc.want)
		}
	}
}

func TestFormat_Calendars(t *testing.T) {
	at := func(y, m, d int) resolve.Value {
		return mustResolve(t, resolve.Spec{Year: ptr(y), Month: ptr(m), Day: ptr(d)})
	}
	tests := []struct {
		locale string
		v      resolve.Value
		want   string
	}{
		{"en", at(2024, 7, 3), "AD 2024"},
		{"en", at(0, 1, 1), "BC 1"},
		{"th", at(2024, 7, 3), "BE 2567"},
		{"en-u-ca-buddhist", at(2024, 7, 3), "BE 2567"},
		{"ja-u-ca-japanese", at(2024, 7, 3), "Reiwa 6"},
		{"ja-u-ca-japanese", at(2019, 4, 30), "Heisei 31"},
		{"ja-u-ca-japanese", at(1989, 1, 8), "Heisei 1"},
		{"ja-u-ca-japanese", at(1850, 1, 1), "AD 1850"},
		{"zh-TW-u-ca-roc", at(2024, 7, 3), "Minguo 113"},
		{"zh-TW-u-ca-roc", at(1900, 1, 1), "B.R.O.C. 12"},
		// Persian is not built in.
		{"fa", at(2024, 7, 3), "AD 2024"},
	}
	for _, tc := range tests {
		got, err := Format("G y", language.MustParse(tc.locale), tc.v)
		if err != nil {
			t.Errorf("Format(%s) returned unexpected error: %v", tc.locale, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Format(%s, %v) = %q, want %q", tc.locale, tc.v.Date(), got, tc.want)
		}
	}
}

type fixedCalendar struct{}

func (fixedCalendar) Convert(d civil.Date) Date {
	return Date{Year: d.Year - 621, ExtendedYear: d.Year - 621, Month: 1, Day: 1}
}

func (fixedCalendar) Names() *Names {
	n := englishNames
	n.EraAbbr = []string{"AP"}
	n.EraWide = []string{"Anno Persico"}
	n.MonthsWide[0] = "Farvardin"
	return &n
}

func TestRegistry_Register(t *testing.T) {
	r := &Registry{}
	r.Register(calendar.Persian, fixedCalendar{})
	f := &Formatter{Registry: r}
	v := mustResolve(t, resolve.Spec{Year: ptr(2024), Month: ptr(3), Day: ptr(20)})
	got, err := f.Format("G y MMMM", language.MustParse("fa"), v)
	if err != nil {
		t.Fatalf("Format() returned unexpected error: %v", err)
	}
	if want := "AP 1403 Farvardin"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestRegistry_CoversAllKinds(t *testing.T) {
	r := &Registry{}
	for _, k := range calendar.Kinds {
		if r.Calendar(k) == nil {
			t.Errorf("Calendar(%v) = nil", k)
		}
	}
}

func TestFormat_Zones(t *testing.T) {
	en := language.MustParse("en")
	tests := []struct {
		name    string
		zone    resolve.ZoneSpec
		pattern string
		want    string
	}{
		{"offset only", resolve.ZoneSpec{Offset: &resolve.OffsetSpec{Text: ptr("+05:30")}}, "V VV VVV VVVV O", "unk Etc/Unknown Unknown City GMT+05:30 GMT+5:30"},
		{"no offset", resolve.ZoneSpec{BCP47: ptr("uschi")}, "O X", "GMT+? GMT+?"},
		{"utc", resolve.ZoneSpec{IANA: ptr("Etc/UTC"), Offset: &resolve.OffsetSpec{Seconds: ptr(int64(0))}}, "X x O OOOO", "Z +00 GMT GMT"},
		{"seconds", resolve.ZoneSpec{Offset: &resolve.OffsetSpec{Text: ptr("+01:02:03")}}, "XXXXX xxxx OOOO", "+01:02:03 +010203 GMT+01:02:03"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := mustResolve(t, resolve.Spec{Hour: ptr(1), Zone: &tc.zone})
			got, err := Format(tc.pattern, en, v)
			if err != nil {
				t.Fatalf("Format() returned unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Format(%q) = %q, want %q", tc.pattern, got, tc.want)
			}
		})
	}
}

func TestFormat_MissingValues(t *testing.T) {
	v := mustResolve(t, resolve.Spec{Hour: ptr(6)})
	_, err := Format("y-MM-dd HH", language.English, v)
	want := &resolve.MissingValuesError{Kind: fieldset.DateTime, Missing: []string{"date"}}
	if diff := cmp.Diff(err, error(want)); diff != "" {
		t.Errorf("Format() error mismatch (-got +want):\n%s", diff)
	}
	if _, err := Format("HH 'y'", language.English, v); err != nil {
		t.Errorf("Format(time only) returned unexpected error: %v", err)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		pattern string
		want    SyntaxError
	}{
		{"'open", SyntaxError{Pattern: "'open", Offset: 0, Msg: "unterminated quoted literal"}},
		{"d MMMMMM", SyntaxError{Pattern: "d MMMMMM", Offset: 2, Msg: `field 'M' is at most 5 wide`}},
		{"ww", SyntaxError{Pattern: "ww", Offset: 0, Msg: `unsupported field 'w'`}},
		{"It''s H", SyntaxError{Pattern: "It''s H", Offset: 0, Msg: `unsupported field 'I'`}},
		{"H 'h' o", SyntaxError{Pattern: "H 'h' o", Offset: 6, Msg: `unsupported field 'o'`}},
	}
	for _, tc := range tests {
		_, err := Parse(tc.pattern)
		var got *SyntaxError
		if !errors.As(err, &got) {
			t.Errorf("Parse(%q) error = %v, want *SyntaxError", tc.pattern, err)
			continue
		}
		if diff := cmp.Diff(*got, tc.want); diff != "" {
			t.Errorf("Parse(%q) mismatch (-got +want):\n%s", tc.pattern, diff)
		}
		if k := resolve.KindOf(err); k != resolve.KindParse {
			t.Errorf("KindOf(Parse(%q)) = %v, want parse", tc.pattern, k)
		}
	}
}

func TestPattern_Kind(t *testing.T) {
	tests := []struct {
		pattern string
		want    fieldset.Kind
		wantOK  bool
	}{
		{"y", fieldset.Date, true},
		{"HH:mm", fieldset.Time, true},
		{"VVVV", fieldset.Zone, true},
		{"y HH", fieldset.DateTime, true},
		{"d z", fieldset.DateZone, true},
		{"h a O", fieldset.TimeZone, true},
		{"y H v", fieldset.DateTimeZone, true},
		{"'y'", 0, false},
	}
	for _, tc := range tests {
		p, err := Parse(tc.pattern)
		if err != nil {
			t.Fatal(err)
		}
		got, ok := p.Kind()
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("Parse(%q).Kind() = %v, %v, want %v, %v", tc.pattern, got, ok, tc.want, tc.wantOK)
		}
	}
}
