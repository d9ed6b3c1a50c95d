package pattern

import (
	"log/slog"
	"sync"

	"github.com/ngrash/go-zoned/calendar"
	"github.com/ngrash/go-zoned/civil"
)

// Date is a date in some calendar.
type Date struct {
	// Era indexes the eras of the calendar's Names.
	Era int
	// Year is the year within Era.
	Year int
	// ExtendedYear is the year counted without eras, as rendered by "u".
	ExtendedYear int
	Month        int
	Day          int
	DayOfYear    int
}

// Names are the display names of a calendar.
type Names struct {
	MonthsWide  [12]string
	MonthsAbbr  [12]string
	EraWide     []string
	EraAbbr     []string
	EraNarrow   []string
	WeekdayWide [7]string // Sunday first.
	WeekdayAbbr [7]string
	DayPeriods  [2]string
}

// Calendar converts ISO dates to a calendar system and names its fields.
type Calendar interface {
	Convert(d civil.Date) Date
	Names() *Names
}

// Registry maps calendar kinds to implementations. The Gregorian family
// (Gregorian, Buddhist, Japanese, JapaneseExtended and ROC) is built in;
// other kinds must be registered. The zero value is ready to use.
type Registry struct {
	// Logger receives debug records about calendar fallbacks. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	mu    sync.RWMutex
	extra map[calendar.Kind]Calendar
}

// DefaultRegistry is used by Format.
var DefaultRegistry = &Registry{}

// Register sets the implementation of a calendar kind that is not built
// in. Registering a built-in kind has no effect.
func (r *Registry) Register(k calendar.Kind, c Calendar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.extra == nil {
		r.extra = make(map[calendar.Kind]Calendar)
	}
	r.extra[k] = c
}

func (r *Registry) registered(k calendar.Kind) (Calendar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.extra[k]
	return c, ok
}

func (r *Registry) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Calendar returns the implementation of k. Kinds without an
// implementation fall back to Gregorian.
func (r *Registry) Calendar(k calendar.Kind) Calendar {
	if c, ok := r.names(k); ok {
		return c
	}
	r.logger().Debug("Calendar not available, using gregorian", "calendar", k)
	return gregorian
}

func (r *Registry) names(k calendar.Kind) (Calendar, bool) {
	switch k {
	case calendar.Gregorian:
		return gregorian, true
	case calendar.Buddhist:
		return buddhist, true
	case calendar.Japanese, calendar.JapaneseExtended:
		return japanese, true
	case calendar.ROC:
		return roc, true
	case calendar.Chinese,
		calendar.Coptic,
		calendar.Dangi,
		calendar.Ethiopian,
		calendar.EthiopianAmeteAlem,
		calendar.Hebrew,
		calendar.Indian,
		calendar.HijriSimulatedMecca,
		calendar.HijriTabularFriday,
		calendar.HijriTabularThursday,
		calendar.HijriUmmAlQura,
		calendar.Persian:
		return r.registered(k)
	}
	return nil, false
}

// era starts at a date. Years count up from start, or down if
// backwards is set.
type era struct {
	start     civil.Date
	startYear int
	backwards bool
}

// gregorianFamily is a calendar with Gregorian months and days and its own
// eras, newest first.
type gregorianFamily struct {
	names *Names
	eras  []era
}

func (g *gregorianFamily) Names() *Names { return g.names }

func (g *gregorianFamily) Convert(d civil.Date) Date {
	out := Date{
		ExtendedYear: d.Year,
		Month:        int(d.Month),
		Day:          d.Day,
		DayOfYear:    d.YearDay(),
	}
	days := d.DaysSinceEpoch()
	for i, e := range g.eras {
		if days < e.start.DaysSinceEpoch() && i < len(g.eras)-1 {
			continue
		}
		out.Era = i
		if e.backwards {
			out.Year = e.startYear - d.Year
		} else {
			out.Year = d.Year - e.startYear + 1
		}
		break
	}
	return out
}

var englishNames = Names{
	MonthsWide: [12]string{"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December"},
	MonthsAbbr:  [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
	WeekdayWide: [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	WeekdayAbbr: [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	DayPeriods:  [2]string{"AM", "PM"},
}

func withEras(wide, abbr, narrow []string) *Names {
	n := englishNames
	n.EraWide, n.EraAbbr, n.EraNarrow = wide, abbr, narrow
	return &n
}

var minDate = civil.Date{Year: civil.MinYear, Month: 1, Day: 1}

var (
	gregorian = &gregorianFamily{
		names: withEras(
			[]string{"Anno Domini", "Before Christ"},
			[]string{"AD", "BC"},
			[]string{"A", "B"},
		),
		eras: []era{
			{start: civil.Date{Year: 1, Month: 1, Day: 1}, startYear: 1},
			{start: minDate, startYear: 1, backwards: true},
		},
	}
	buddhist = &gregorianFamily{
		names: withEras([]string{"Buddhist Era"}, []string{"BE"}, []string{"BE"}),
		eras:  []era{{start: minDate, startYear: -542}},
	}
	roc = &gregorianFamily{
		names: withEras(
			[]string{"Minguo", "Before R.O.C."},
			[]string{"Minguo", "B.R.O.C."},
			[]string{"Minguo", "B.R.O.C."},
		),
		eras: []era{
			{start: civil.Date{Year: 1912, Month: 1, Day: 1}, startYear: 1912},
			{start: minDate, startYear: 1912, backwards: true},
		},
	}
	japanese = &gregorianFamily{
		names: withEras(
			[]string{"Reiwa", "Heisei", "Shōwa", "Taishō", "Meiji", "Anno Domini", "Before Christ"},
			[]string{"Reiwa", "Heisei", "Shōwa", "Taishō", "Meiji", "AD", "BC"},
			[]string{"R", "H", "S", "T", "M", "A", "B"},
		),
		eras: []era{
			{start: civil.Date{Year: 2019, Month: 5, Day: 1}, startYear: 2019},
			{start: civil.Date{Year: 1989, Month: 1, Day: 8}, startYear: 1989},
			{start: civil.Date{Year: 1926, Month: 12, Day: 25}, startYear: 1926},
			{start: civil.Date{Year: 1912, Month: 7, Day: 30}, startYear: 1912},
			{start: civil.Date{Year: 1868, Month: 10, Day: 23}, startYear: 1868},
			{start: civil.Date{Year: 1, Month: 1, Day: 1}, startYear: 1},
			{start: minDate, startYear: 1, backwards: true},
		},
	}
)
