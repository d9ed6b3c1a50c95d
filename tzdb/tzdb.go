// Package tzdb answers variant offset queries straight from tzdata source
// files, without compiling them to TZif first.
//
// A Database is built once from parsed source lines and is read-only
// afterwards, so it is safe for concurrent use.
package tzdb

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/internal/tzexpand"
	"github.com/ngrash/go-zoned/tzdata"
	"github.com/ngrash/go-zoned/tzdb/ianadist"
	"github.com/ngrash/go-zoned/zone"
)

// SourceFiles are the tzdata files read by Load, in the order zic reads
// them. Missing files are skipped.
var SourceFiles = []string{
	"africa", "antarctica", "asia", "australasia", "europe",
	"northamerica", "southamerica", "etcetera", "backward",
}

// maxLinkDepth bounds link chains. tzdata never chains more than twice.
const maxLinkDepth = 8

// variantWindow is how far a daylight saving period may be from an instant
// for the zone to count as observing it.
const variantWindow = 366 * 24 * 60 * 60

// Database holds zones, rules and links parsed from tzdata sources.
type Database struct {
	zones map[string][]span
	rules map[string][]tzdata.RuleLine
	links map[string]string
}

// span is a zone line together with the instants it is in effect.
type span struct {
	line  tzdata.ZoneLine
	start int64
	end   int64
}

// Options configure New and the loaders.
type Options struct {
	// Logger receives debug records about loaded data. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// New builds a Database from parsed source lines. It reports zones that
// reference undefined rules and links that do not resolve to a zone.
func New(f tzdata.File, opts Options) (*Database, error) {
	db := &Database{
		zones: make(map[string][]span),
		rules: make(map[string][]tzdata.RuleLine),
		links: make(map[string]string, len(f.LinkLines)),
	}
	for _, r := range f.RuleLines {
		db.rules[r.Name] = append(db.rules[r.Name], r)
	}
	for _, l := range f.LinkLines {
		db.links[l.Name] = l.Target
	}

	var errs []error
	lines := make(map[string][]tzdata.ZoneLine)
	for _, z := range f.ZoneLines {
		if z.Rules.Form == tzdata.ZoneRulesName {
			if _, ok := db.rules[z.Rules.Name]; !ok {
				errs = append(errs, fmt.Errorf("zone %s: undefined rule %q", z.Name, z.Rules.Name))
				continue
			}
		}
		lines[z.Name] = append(lines[z.Name], z)
	}
	for name, zl := range lines {
		db.zones[name] = db.spans(zl)
	}
	for name := range db.links {
		if _, ok := db.resolve(name); !ok {
			errs = append(errs, fmt.Errorf("link %s: does not resolve to a zone", name))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	opts.logger().Debug("loaded tzdata",
		"zones", len(db.zones), "rules", len(db.rules), "links", len(db.links))
	return db, nil
}

// Parse reads a single tzdata source file.
func Parse(r io.Reader, opts Options) (*Database, error) {
	f, err := tzdata.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(f, opts)
}

// Load reads the SourceFiles present in fsys.
func Load(fsys fs.FS, opts Options) (*Database, error) {
	var all tzdata.File
	for _, name := range SourceFiles {
		b, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			opts.logger().Debug("tzdata file not found", "name", name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		f, err := tzdata.Parse(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		all.Merge(f)
	}
	return New(all, opts)
}

// FromRelease builds a Database from a downloaded IANA release.
func FromRelease(rel *ianadist.Release, opts Options) (*Database, error) {
	var all tzdata.File
	for _, name := range rel.DataFiles.Names() {
		f, err := tzdata.Parse(bytes.NewReader(rel.DataFiles[name]))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", name, err)
		}
		all.Merge(f)
	}
	opts.logger().Debug("parsed release", "version", rel.Version, "files", len(rel.DataFiles))
	return New(all, opts)
}

// spans computes when each line of a zone is in effect. An UNTIL column
// is interpreted with the offset in effect just before it.
func (db *Database) spans(lines []tzdata.ZoneLine) []span {
	out := make([]span, len(lines))
	start := int64(math.MinInt64)
	for i, l := range lines {
		out[i] = span{line: l, start: start, end: math.MaxInt64}
		if l.Until.Defined {
			date, tod := tzexpand.Earliest(l.Until)
			dt := civil.DateTime{Date: date}
			approx := tzexpand.Seconds(dt, tod, l.Offset, 0)
			save, _ := db.save(l, approx)
			out[i].end = tzexpand.Seconds(dt, tod, l.Offset, save)
		}
		start = out[i].end
	}
	return out
}

// Names returns the names of all zones and links in lexical order.
func (db *Database) Names() []string {
	names := make([]string, 0, len(db.zones)+len(db.links))
	for name := range db.zones {
		names = append(names, name)
	}
	for name := range db.links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Links returns a copy of the link table, mapping link names to targets.
func (db *Database) Links() map[string]string {
	out := make(map[string]string, len(db.links))
	for k, v := range db.links {
		out[k] = v
	}
	return out
}

// Canonical follows links from name to the zone they end in.
func (db *Database) Canonical(name string) (string, bool) {
	return db.resolve(name)
}

func (db *Database) resolve(name string) (string, bool) {
	for i := 0; i <= maxLinkDepth; i++ {
		if _, ok := db.zones[name]; ok {
			return name, true
		}
		target, ok := db.links[name]
		if !ok {
			return "", false
		}
		name = target
	}
	return "", false
}

// VariantOffsets implements zone.NamedOracle.
func (db *Database) VariantOffsets(name string, unix int64) (zone.Offsets, bool) {
	canonical, ok := db.resolve(name)
	if !ok {
		return zone.Offsets{}, false
	}
	sp := spanAt(db.zones[canonical], unix)
	l := sp.line

	out := zone.Offsets{Standard: offset(l.Offset)}
	switch l.Rules.Form {
	case tzdata.ZoneRulesTime:
		if l.Rules.Time.Duration != 0 {
			out.Daylight = offset(l.Offset + l.Rules.Time.Duration)
			out.HasDaylight = true
		}
	case tzdata.ZoneRulesName:
		if save, dst := db.save(l, unix); dst {
			out.Daylight = offset(l.Offset + save)
			out.HasDaylight = true
		} else if save, ok := db.nearbyDaylight(sp, unix); ok {
			out.Daylight = offset(l.Offset + save)
			out.HasDaylight = true
		}
	}
	return out.Ordered(), true
}

// spanAt returns the span in effect at unix. The last span extends to
// the end of time.
func spanAt(spans []span, unix int64) span {
	i := sort.Search(len(spans), func(i int) bool { return spans[i].end > unix })
	if i == len(spans) {
		i = len(spans) - 1
	}
	return spans[i]
}

// save returns the amount of daylight saving time in effect at unix under
// the rules of line, and whether it counts as daylight saving time.
func (db *Database) save(l tzdata.ZoneLine, unix int64) (time.Duration, bool) {
	switch l.Rules.Form {
	case tzdata.ZoneRulesTime:
		return l.Rules.Time.Duration, l.Rules.Time.Duration != 0
	case tzdata.ZoneRulesName:
	default:
		return 0, false
	}
	r, ok := db.rule(l, unix)
	if !ok {
		return 0, false
	}
	return r.Save.Duration, r.IsDST()
}

// rule returns the rule line of the named rules of l in effect at unix.
func (db *Database) rule(l tzdata.ZoneLine, unix int64) (tzdata.RuleLine, bool) {
	rules := db.rules[l.Rules.Name]
	year := yearOf(unix, l.Offset)
	cur, found := latestBefore(rules, year-1)
	for _, o := range tzexpand.ExpandRules(year-1, year+1, rules) {
		var before time.Duration
		if found {
			before = cur.Save.Duration
		}
		if o.Instant(l.Offset, before) > unix {
			break
		}
		cur, found = o.Rule, true
	}
	return cur, found
}

// nearbyDaylight finds the daylight saving occurrence closest to unix
// within variantWindow that falls inside sp.
func (db *Database) nearbyDaylight(sp span, unix int64) (time.Duration, bool) {
	l := sp.line
	year := yearOf(unix, l.Offset)
	var (
		best     time.Duration
		bestDist int64 = math.MaxInt64
	)
	for _, o := range tzexpand.ExpandRules(year-1, year+1, db.rules[l.Rules.Name]) {
		if !o.Rule.IsDST() {
			continue
		}
		at := o.Instant(l.Offset, 0)
		if at < sp.start || at >= sp.end {
			continue
		}
		dist := at - unix
		if dist < 0 {
			dist = -dist
		}
		if dist <= variantWindow && dist < bestDist {
			best, bestDist = o.Rule.Save.Duration, dist
		}
	}
	return best, bestDist != math.MaxInt64
}

// latestBefore returns the rule whose last occurrence up to and including
// year is the latest.
func latestBefore(rules []tzdata.RuleLine, year int) (tzdata.RuleLine, bool) {
	var (
		best  tzdata.RuleLine
		bestD int64
		found bool
	)
	for _, r := range rules {
		if r.From != tzdata.MinYear && int(r.From) > year {
			continue
		}
		y := year
		if r.To != tzdata.MaxYear && int(r.To) < y {
			y = int(r.To)
		}
		d := tzexpand.DayOfMonth(y, r.In, r.On).DaysSinceEpoch()
		if !found || d > bestD || d == bestD && r.At.Duration > best.At.Duration {
			best, bestD, found = r, d, true
		}
	}
	return best, found
}

func yearOf(unix int64, stdoff time.Duration) int {
	return civil.FromUnix(unix + int64(stdoff/time.Second)).Date.Year
}

func offset(d time.Duration) zone.Offset {
	return zone.Offset(d / time.Second)
}
