package format

import (
	"errors"
	"strings"

	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/pattern"
	"github.com/ngrash/go-zoned/resolve"
	"golang.org/x/text/language"
)

// ErrNumberingSystem is wrapped by LoadError when a locale asks for a
// numbering system other than latn.
var ErrNumberingSystem = errors.New("unsupported numbering system")

// Basic renders field sets in ISO 8601 style with English names. Dates
// and times are joined with "T" and the zone follows after a space, for
// example "2024-07-03T06:12:04 GMT-05:00". The calendar follows the
// locale, see pattern.Registry.
type Basic struct {
	// Patterns formats the generated patterns. If nil, a zero
	// pattern.Formatter is used.
	Patterns *pattern.Formatter
}

// Format implements Formatter.
func (b *Basic) Format(v resolve.Value, set fieldset.Set, tag language.Tag) (string, error) {
	if nu := tag.TypeForKey("nu"); nu != "" && nu != "latn" {
		return "", &LoadError{Locale: tag, Err: ErrNumberingSystem}
	}
	f := b.Patterns
	if f == nil {
		f = &pattern.Formatter{}
	}
	p, err := pattern.Parse(Skeleton(v, set))
	if err != nil {
		return "", &LoadError{Locale: tag, Err: err}
	}
	return f.FormatPattern(p, tag, v)
}

// Skeleton returns the pattern Basic uses to render v with set.
func Skeleton(v resolve.Value, set fieldset.Set) string {
	var parts []string
	k := set.Kind()
	if k.HasDate() {
		parts = append(parts, datePattern(set))
	}
	if k.HasTime() {
		t := timePattern(v, set.TimePrecision())
		if len(parts) > 0 {
			parts[0] += "'T'" + t
		} else {
			parts = append(parts, t)
		}
	}
	if k.HasZone() {
		parts = append(parts, zonePatterns[set.ZoneStyle()])
	}
	return strings.Join(parts, " ")
}

var datePatterns = map[fieldset.DateFields]string{
	fieldset.D:    "---dd",
	fieldset.MD:   "--MM-dd",
	fieldset.YMD:  "yyyy-MM-dd",
	fieldset.DE:   "---dd",
	fieldset.MDE:  "--MM-dd",
	fieldset.YMDE: "yyyy-MM-dd",
	fieldset.E:    "",
	fieldset.M:    "--MM",
	fieldset.YM:   "yyyy-MM",
	fieldset.Y:    "yyyy",
}

func datePattern(set fieldset.Set) string {
	f := set.DateFields()
	p := datePatterns[f]
	switch f {
	case fieldset.DE, fieldset.MDE, fieldset.YMDE, fieldset.E:
		weekday := "EEE"
		if set.Length() == fieldset.Long {
			weekday = "EEEE"
		}
		if p == "" {
			p = weekday
		} else {
			p = weekday + ", " + p
		}
	}
	if set.YearStyle() == fieldset.YearWithEra {
		p = strings.Replace(p, "yyyy", "y", 1) + " G"
	}
	return p
}

func timePattern(v resolve.Value, p fieldset.TimePrecision) string {
	switch p {
	case fieldset.Hour:
		return "HH"
	case fieldset.Minute:
		return "HH:mm"
	case fieldset.MinuteOptional:
		if v.Time().Minute == 0 {
			return "HH"
		}
		return "HH:mm"
	}
	if n := p.SubsecondDigits(); n > 0 {
		return "HH:mm:ss." + strings.Repeat("S", n)
	}
	return "HH:mm:ss"
}

var zonePatterns = map[fieldset.ZoneStyle]string{
	fieldset.SpecificLong:         "zzzz",
	fieldset.SpecificShort:        "z",
	fieldset.LocalizedOffsetLong:  "OOOO",
	fieldset.LocalizedOffsetShort: "O",
	fieldset.GenericLong:          "vvvv",
	fieldset.GenericShort:         "v",
	fieldset.Location:             "VVVV",
	fieldset.ExemplarCity:         "VVV",
}
