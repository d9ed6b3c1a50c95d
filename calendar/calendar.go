// Package calendar selects the calendar system used to format a date for
// a locale.
package calendar

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/language"
)

// Kind is one of the supported calendar systems.
type Kind uint8

const (
	Buddhist Kind = iota
	Chinese
	Coptic
	Dangi
	Ethiopian
	EthiopianAmeteAlem
	Gregorian
	Hebrew
	Indian
	// HijriSimulatedMecca is the observational Islamic calendar ("islamic").
	HijriSimulatedMecca
	// HijriTabularFriday is the tabular Islamic calendar with the civil
	// epoch ("islamic-civil").
	HijriTabularFriday
	// HijriTabularThursday is the tabular Islamic calendar with the
	// astronomical epoch ("islamic-tbla").
	HijriTabularThursday
	HijriUmmAlQura
	Japanese
	// JapaneseExtended is the Japanese calendar with all historical eras.
	JapaneseExtended
	Persian
	ROC
)

// Kinds lists all kinds in declaration order.
var Kinds = []Kind{
	Buddhist, Chinese, Coptic, Dangi, Ethiopian, EthiopianAmeteAlem,
	Gregorian, Hebrew, Indian, HijriSimulatedMecca, HijriTabularFriday,
	HijriTabularThursday, HijriUmmAlQura, Japanese, JapaneseExtended,
	Persian, ROC,
}

// cldrNames are the values of the "ca" key of the Unicode locale
// extension, indexed by Kind.
var cldrNames = [...]string{
	Buddhist:             "buddhist",
	Chinese:              "chinese",
	Coptic:               "coptic",
	Dangi:                "dangi",
	Ethiopian:            "ethiopic",
	EthiopianAmeteAlem:   "ethioaa",
	Gregorian:            "gregory",
	Hebrew:               "hebrew",
	Indian:               "indian",
	HijriSimulatedMecca:  "islamic",
	HijriTabularFriday:   "islamic-civil",
	HijriTabularThursday: "islamic-tbla",
	HijriUmmAlQura:       "islamic-umalqura",
	Japanese:             "japanese",
	JapaneseExtended:     "japanext",
	Persian:              "persian",
	ROC:                  "roc",
}

// aliases are accepted "ca" values that are not canonical.
var aliases = map[string]Kind{
	"gregorian":           Gregorian,
	"ethiopic-amete-alem": EthiopianAmeteAlem,
}

// String returns the CLDR identifier of k, for example "gregory".
func (k Kind) String() string {
	if int(k) < len(cldrNames) {
		return cldrNames[k]
	}
	return fmt.Sprintf("<undefined calendar kind (%d)>", k)
}

// ParseKind returns the kind for a "ca" value of the Unicode locale
// extension. Values such as "iso8601" or "islamic-rgsa" are valid CLDR
// calendars without an implementation here and are not found.
func ParseKind(s string) (Kind, bool) {
	s = strings.ToLower(s)
	for k, name := range cldrNames {
		if name == s {
			return Kind(k), true
		}
	}
	k, ok := aliases[s]
	return k, ok
}

// regionDefaults is the CLDR calendarPreference data for regions that do
// not prefer the Gregorian calendar.
var regionDefaults = map[string]Kind{
	"TH": Buddhist,
	"AF": Persian,
	"IR": Persian,
	"SA": HijriUmmAlQura,
}

// Resolver resolves calendar preferences of locales.
type Resolver struct {
	// Logger receives debug records about fallbacks. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

func (r *Resolver) logger() *slog.Logger {
	if r == nil || r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Resolve returns the calendar kind to use for tag using the default
// Resolver.
func Resolve(tag language.Tag) Kind {
	var r *Resolver
	return r.Resolve(tag)
}

// Resolve returns the calendar kind to use for tag. It never fails:
//
//  1. The "ca" key of the Unicode extension is used if it names a
//     supported calendar.
//  2. Otherwise the "ca" key is cleared and the default calendar of the
//     locale's likely region is used.
//  3. Otherwise Gregorian.
func (r *Resolver) Resolve(tag language.Tag) Kind {
	if ca := calendarType(tag); ca != "" {
		if k, ok := ParseKind(ca); ok {
			return k
		}
		r.logger().Debug("Unsupported calendar preference", "tag", tag, "ca", ca)
		if t, err := tag.SetTypeForKey("ca", ""); err == nil {
			tag = t
		}
	}
	if k, ok := implied(tag); ok {
		return k
	}
	return Gregorian
}

// calendarType returns the full value of the "ca" key of tag's Unicode
// extension. Unlike language.Tag.TypeForKey it keeps every subtag, as in
// "islamic-umalqura".
func calendarType(tag language.Tag) string {
	ext, ok := tag.Extension('u')
	if !ok {
		return ""
	}
	subtags := ext.Tokens()[1:]
	for i, s := range subtags {
		if s != "ca" {
			continue
		}
		j := i + 1
		for j < len(subtags) && len(subtags[j]) != 2 {
			j++
		}
		return strings.Join(subtags[i+1:j], "-")
	}
	return ""
}

// implied returns the default calendar of the likely region of tag.
func implied(tag language.Tag) (Kind, bool) {
	region, conf := tag.Region()
	if conf == language.No {
		return 0, false
	}
	k, ok := regionDefaults[region.String()]
	return k, ok
}
