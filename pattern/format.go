package pattern

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ngrash/go-zoned/bcp47"
	"github.com/ngrash/go-zoned/calendar"
	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/resolve"
	"github.com/ngrash/go-zoned/zone"
	"golang.org/x/text/language"
)

// ZoneNamer returns the IANA name of a zone identifier.
type ZoneNamer interface {
	IANA(id zone.ID) (string, bool)
}

// Formatter formats values with patterns.
type Formatter struct {
	// Registry provides calendars. If nil, DefaultRegistry is used.
	Registry *Registry
	// Zones names zones for the "V" field. If nil, bcp47.Default() is
	// used.
	Zones ZoneNamer
}

func (f *Formatter) registry() *Registry {
	if f.Registry == nil {
		return DefaultRegistry
	}
	return f.Registry
}

func (f *Formatter) zones() ZoneNamer {
	if f.Zones == nil {
		return bcp47.Default()
	}
	return f.Zones
}

// Format formats v with the pattern p in the calendar preferred by tag
// using the default Formatter.
func Format(p string, tag language.Tag, v resolve.Value) (string, error) {
	var f Formatter
	return f.Format(p, tag, v)
}

// Format formats v with the pattern p in the calendar preferred by tag.
// Fields for parts of v the caller did not give are an error.
func (f *Formatter) Format(p string, tag language.Tag, v resolve.Value) (string, error) {
	pat, err := Parse(p)
	if err != nil {
		return "", err
	}
	return f.FormatPattern(pat, tag, v)
}

// FormatPattern is like Format for a parsed pattern.
func (f *Formatter) FormatPattern(p *Pattern, tag language.Tag, v resolve.Value) (string, error) {
	if k, ok := p.Kind(); ok {
		if err := v.Check(fieldset.Of(k)); err != nil {
			return "", err
		}
	}
	cal := f.registry().Calendar(calendar.Resolve(tag))
	w := writer{
		v:     v,
		date:  cal.Convert(v.Date()),
		names: cal.Names(),
		zones: f.zones(),
	}
	for _, it := range p.items {
		if it.symbol == 0 {
			w.b.WriteString(it.literal)
			continue
		}
		w.field(it.symbol, it.count)
	}
	return w.b.String(), nil
}

type writer struct {
	b     strings.Builder
	v     resolve.Value
	date  Date
	names *Names
	zones ZoneNamer
}

func (w *writer) num(n, width int) {
	if n < 0 {
		w.b.WriteByte('-')
		n = -n
	}
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		w.b.WriteByte('0')
	}
	w.b.WriteString(s)
}

func (w *writer) field(symbol byte, count int) {
	t := w.v.Time()
	switch symbol {
	case 'G':
		w.text(count, w.names.EraAbbr, w.names.EraWide, w.names.EraNarrow, w.date.Era)
	case 'y':
		if count == 2 {
			w.num(w.date.Year%100, 2)
		} else {
			w.num(w.date.Year, count)
		}
	case 'u':
		w.num(w.date.ExtendedYear, count)
	case 'Q', 'q':
		q := (w.date.Month-1)/3 + 1
		switch {
		case count <= 2:
			w.num(q, count)
		case count == 3:
			fmt.Fprintf(&w.b, "Q%d", q)
		case count == 4:
			w.b.WriteString([]string{"1st", "2nd", "3rd", "4th"}[q-1] + " quarter")
		default:
			w.num(q, 1)
		}
	case 'M', 'L':
		if count <= 2 {
			w.num(w.date.Month, count)
			return
		}
		w.text(count, w.names.MonthsAbbr[:], w.names.MonthsWide[:], nil, w.date.Month-1)
	case 'd':
		w.num(w.date.Day, count)
	case 'D':
		w.num(w.date.DayOfYear, count)
	case 'E', 'e', 'c':
		wd := int(w.v.Date().Weekday())
		if symbol != 'E' && count <= 2 {
			// Monday is the first day of the week.
			w.num((wd+6)%7+1, count)
			return
		}
		if count == 6 {
			w.b.WriteString(w.names.WeekdayWide[wd][:2])
			return
		}
		w.text(count, w.names.WeekdayAbbr[:], w.names.WeekdayWide[:], nil, wd)
	case 'a':
		p := w.names.DayPeriods[t.Hour/12]
		if count == 5 {
			p = strings.ToLower(p[:1])
		}
		w.b.WriteString(p)
	case 'h':
		h := t.Hour % 12
		if h == 0 {
			h = 12
		}
		w.num(h, count)
	case 'H':
		w.num(t.Hour, count)
	case 'K':
		w.num(t.Hour%12, count)
	case 'k':
		h := t.Hour
		if h == 0 {
			h = 24
		}
		w.num(h, count)
	case 'm':
		w.num(t.Minute, count)
	case 's':
		w.num(t.Second, count)
	case 'S':
		w.b.WriteString(fmt.Sprintf("%09d", t.Nanosecond)[:count])
	default:
		w.zone(symbol, count)
	}
}

// text writes the abbreviated name for widths up to 3, the wide name for
// 4 and the narrow name for 5.
func (w *writer) text(count int, abbr, wide, narrow []string, i int) {
	if i < 0 || i >= len(wide) {
		w.num(i, 1)
		return
	}
	switch {
	case count == 4:
		w.b.WriteString(wide[i])
	case count == 5 && narrow != nil:
		w.b.WriteString(narrow[i])
	case count == 5:
		r := []rune(wide[i])
		w.b.WriteString(string(r[:1]))
	default:
		w.b.WriteString(abbr[i])
	}
}

func (w *writer) zone(symbol byte, count int) {
	z := w.v.Zone()
	switch symbol {
	case 'z', 'O':
		w.gmt(z, count == 4)
	case 'Z':
		switch count {
		case 4:
			w.gmt(z, true)
		case 5:
			w.iso(z, true, true, true)
		default:
			w.iso(z, false, false, false)
		}
	case 'X', 'x':
		utcZ := symbol == 'X'
		switch count {
		case 1:
			w.isoHours(z, utcZ)
		case 2:
			w.iso(z, false, utcZ, false)
		case 3:
			w.iso(z, true, utcZ, false)
		case 4:
			w.iso(z, false, utcZ, true)
		default:
			w.iso(z, true, utcZ, true)
		}
	case 'V':
		switch count {
		case 1:
			w.b.WriteString(z.ID.String())
		case 2:
			w.b.WriteString(w.ianaName(z.ID))
		case 3:
			w.b.WriteString(w.city(z.ID))
		default:
			w.location(z)
		}
	case 'v':
		w.location(z)
	}
}

func (w *writer) ianaName(id zone.ID) string {
	if name, ok := w.zones.IANA(id); ok && !id.IsUnknown() {
		return name
	}
	return "Etc/Unknown"
}

func (w *writer) city(id zone.ID) string {
	name, ok := w.zones.IANA(id)
	if !ok || id.IsUnknown() || !strings.Contains(name, "/") {
		return "Unknown City"
	}
	return strings.ReplaceAll(name[strings.LastIndexByte(name, '/')+1:], "_", " ")
}

// location writes the generic location format, falling back to the
// localized GMT format for zones without a city.
func (w *writer) location(z zone.Info) {
	if city := w.city(z.ID); city != "Unknown City" {
		w.b.WriteString(city + " Time")
		return
	}
	w.gmt(z, true)
}

// gmt writes the localized GMT format: "GMT-5" or, if long,
// "GMT-05:00". Zones without an offset are written as "GMT+?".
func (w *writer) gmt(z zone.Info, long bool) {
	w.b.WriteString("GMT")
	if !z.HasOffset {
		w.b.WriteString("+?")
		return
	}
	if z.Offset == 0 {
		return
	}
	h, m, s := z.Offset.Parts()
	w.sign(z.Offset)
	if long {
		fmt.Fprintf(&w.b, "%02d:%02d", h, m)
	} else {
		w.b.WriteString(strconv.Itoa(h))
		if m != 0 || s != 0 {
			fmt.Fprintf(&w.b, ":%02d", m)
		}
	}
	if s != 0 {
		fmt.Fprintf(&w.b, ":%02d", s)
	}
}

func (w *writer) sign(o zone.Offset) {
	if o < 0 {
		w.b.WriteByte('-')
	} else {
		w.b.WriteByte('+')
	}
}

// isoHours writes "+hh" or "+hhmm" if the minutes are not zero.
func (w *writer) isoHours(z zone.Info, utcZ bool) {
	if !z.HasOffset {
		w.gmt(z, false)
		return
	}
	if utcZ && z.Offset == 0 {
		w.b.WriteByte('Z')
		return
	}
	h, m, _ := z.Offset.Parts()
	w.sign(z.Offset)
	fmt.Fprintf(&w.b, "%02d", h)
	if m != 0 {
		fmt.Fprintf(&w.b, "%02d", m)
	}
}

// iso writes "+hhmm", or "+hh:mm" if extended. Seconds are written when
// withSeconds is set and they are not zero.
func (w *writer) iso(z zone.Info, extended, utcZ, withSeconds bool) {
	if !z.HasOffset {
		w.gmt(z, false)
		return
	}
	if utcZ && z.Offset == 0 {
		w.b.WriteByte('Z')
		return
	}
	h, m, s := z.Offset.Parts()
	sep := ""
	if extended {
		sep = ":"
	}
	w.sign(z.Offset)
	fmt.Fprintf(&w.b, "%02d%s%02d", h, sep, m)
	if withSeconds && s != 0 {
		fmt.Fprintf(&w.b, "%s%02d", sep, s)
	}
}
