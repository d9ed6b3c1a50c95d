package zone

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"
)

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in      string
		want    Offset
		wantErr bool
	}{
		{in: "Z", want: 0},
		{in: "+05", want: 5 * 3600},
		{in: "-05:30", want: -(5*3600 + 30*60)},
		{in: "+0530", want: 5*3600 + 30*60},
		{in: "−0800", want: -8 * 3600},
		{in: "+01:02:03", want: 3723},
		{in: "+010203", want: 3723},
		{in: "+18", want: MaxOffset},
		{in: "+18:00:01", wantErr: true},
		{in: "05", wantErr: true},
		{in: "+5", wantErr: true},
		{in: "+05:60", wantErr: true},
		{in: "+01:02:03:04", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseOffset(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidOffset) {
				t.Errorf("ParseOffset(%q) error = %v, want %v", tc.in, err, ErrInvalidOffset)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOffset(%q) returned unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseOffset(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestOffset_String(t *testing.T) {
	tests := []struct {
		o    Offset
		want string
	}{
		{0, "+00"},
		{-18000, "-05"},
		{19800, "+05:30"},
		{-3723, "-01:02:03"},
		{3603, "+01:00:03"},
	}
	for _, tc := range tests {
		if got := tc.o.String(); got != tc.want {
			t.Errorf("Offset(%d).String() = %q, want %q", int32(tc.o), got, tc.want)
		}
	}
}

func TestParseID(t *testing.T) {
	for _, s := range []string{"uschi", "USCHI", "utc", "unk", "gmt0", "us", "gldkshvn"} {
		if _, err := ParseID(s); err != nil {
			t.Errorf("ParseID(%q) returned unexpected error: %v", s, err)
		}
	}
	if id, _ := ParseID("DEBER"); id != "deber" {
		t.Errorf("ParseID(DEBER) = %q, want deber", id)
	}
	for _, s := range []string{"", "u", "toolongid", "us-chi", "us chi", "üschi"} {
		_, err := ParseID(s)
		var pe *ParseIDError
		if !errors.As(err, &pe) {
			t.Errorf("ParseID(%q) error = %v, want a *ParseIDError", s, err)
		}
	}
}

func TestFromTag(t *testing.T) {
	tests := []struct {
		tag    string
		want   ID
		wantOK bool
	}{
		{"en-US-u-tz-uschi", "uschi", true},
		{"de-u-ca-gregory-tz-deber", "deber", true},
		{"en-US", "", false},
	}
	for _, tc := range tests {
		got, ok := FromTag(language.MustParse(tc.tag))
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("FromTag(%s) = %q, %v, want %q, %v", tc.tag, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestInfo(t *testing.T) {
	o := Offset(-18000)
	got := New("uschi").WithOffset(&o).WithVariant(Daylight)
	want := Info{ID: "uschi", Offset: -18000, HasOffset: true, Variant: Daylight}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Info mismatch (-got +want):\n%s", diff)
	}
	if got := got.WithOffset(nil); got.HasOffset || got.Offset != 0 {
		t.Errorf("WithOffset(nil) = %+v, want no offset", got)
	}
	if u := UTC(got.Local); u.ID != UTCID || !u.HasOffset || u.Offset != 0 {
		t.Errorf("UTC() = %+v, want utc at +00", u)
	}
}

func TestStringers(t *testing.T) {
	tests := []struct {
		v    interface{ String() string }
		want string
	}{
		{ID(""), "unk"},
		{ID("uschi"), "uschi"},
		{Standard, "standard"},
		{Variant(7), "<undefined variant (7)>"},
		{Offsets{Standard: -21600, Daylight: -18000, HasDaylight: true}, "standard=-06, daylight=-05"},
		{Offsets{Standard: 32400}, "standard=+09, daylight=n/a"},
	}
	for _, tc := range tests {
		if got := tc.v.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestOffsets_Ordered(t *testing.T) {
	tests := []struct {
		in, want Offsets
	}{
		{Offsets{Standard: 3600, Daylight: 0, HasDaylight: true}, Offsets{Standard: 0, Daylight: 3600, HasDaylight: true}},
		{Offsets{Standard: -21600, Daylight: -18000, HasDaylight: true}, Offsets{Standard: -21600, Daylight: -18000, HasDaylight: true}},
		{Offsets{Standard: 3600}, Offsets{Standard: 3600}},
	}
	for _, tc := range tests {
		if diff := cmp.Diff(tc.in.Ordered(), tc.want); diff != "" {
			t.Errorf("%v.Ordered() mismatch (-got +want):\n%s", tc.in, diff)
		}
	}
}
