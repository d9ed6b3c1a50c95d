package fieldset

import "fmt"

// Option values as written in the options buffer.
var (
	lengthNames = map[Length]string{
		Long:   "long",
		Medium: "medium",
		Short:  "short",
	}
	dateFieldsNames = map[DateFields]string{
		D:    "D",
		MD:   "MD",
		YMD:  "YMD",
		DE:   "DE",
		MDE:  "MDE",
		YMDE: "YMDE",
		E:    "E",
		M:    "M",
		YM:   "YM",
		Y:    "Y",
	}
	timePrecisionNames = map[TimePrecision]string{
		Hour:           "hour",
		Minute:         "minute",
		Second:         "second",
		Subsecond1:     "subsecond1",
		Subsecond2:     "subsecond2",
		Subsecond3:     "subsecond3",
		Subsecond4:     "subsecond4",
		Subsecond5:     "subsecond5",
		Subsecond6:     "subsecond6",
		Subsecond7:     "subsecond7",
		Subsecond8:     "subsecond8",
		Subsecond9:     "subsecond9",
		MinuteOptional: "minute-optional",
	}
	zoneStyleNames = map[ZoneStyle]string{
		SpecificLong:         "specific-long",
		SpecificShort:        "specific-short",
		LocalizedOffsetLong:  "localized-offset-long",
		LocalizedOffsetShort: "localized-offset-short",
		GenericLong:          "generic-long",
		GenericShort:         "generic-short",
		Location:             "location",
		ExemplarCity:         "exemplar-city",
	}
	alignmentNames = map[Alignment]string{
		AlignAuto:   "auto",
		AlignColumn: "column",
	}
	yearStyleNames = map[YearStyle]string{
		YearAuto:    "auto",
		YearFull:    "full",
		YearWithEra: "with-era",
	}
)

func name[T ~uint8](names map[T]string, v T, what string) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("<undefined %s (%d)>", what, uint8(v))
}

func parse[T ~uint8](names map[T]string, s, what string) (T, error) {
	for v, n := range names {
		if n == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", what, s)
}

func (l Length) String() string        { return name(lengthNames, l, "length") }
func (f DateFields) String() string    { return name(dateFieldsNames, f, "date fields") }
func (p TimePrecision) String() string { return name(timePrecisionNames, p, "time precision") }
func (z ZoneStyle) String() string     { return name(zoneStyleNames, z, "zone style") }
func (a Alignment) String() string     { return name(alignmentNames, a, "alignment") }
func (y YearStyle) String() string     { return name(yearStyleNames, y, "year style") }

// ParseLength parses "long", "medium" or "short".
func ParseLength(s string) (Length, error) { return parse(lengthNames, s, "length") }

// ParseDateFields parses date fields such as "YMD" or "MDE".
func ParseDateFields(s string) (DateFields, error) {
	return parse(dateFieldsNames, s, "date fields")
}

// ParseTimePrecision parses "hour", "minute", "second", "subsecond1"
// through "subsecond9" or "minute-optional".
func ParseTimePrecision(s string) (TimePrecision, error) {
	return parse(timePrecisionNames, s, "time precision")
}

// ParseZoneStyle parses a zone style such as "specific-long".
func ParseZoneStyle(s string) (ZoneStyle, error) { return parse(zoneStyleNames, s, "zone style") }

// ParseAlignment parses "auto" or "column".
func ParseAlignment(s string) (Alignment, error) { return parse(alignmentNames, s, "alignment") }

// ParseYearStyle parses "auto", "full" or "with-era".
func ParseYearStyle(s string) (YearStyle, error) { return parse(yearStyleNames, s, "year style") }
