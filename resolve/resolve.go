// Package resolve turns a partial description of a date, time and time
// zone into a consistent Value and checks it against the fields a
// formatter is asked to render.
//
// Date fields must be given all together or not at all. Time fields need
// an hour; minute, second and nanosecond default to zero. A zone is given
// by at most one of an IANA name and a BCP-47 identifier, optionally with
// a UTC offset. When an offset and a date are given, the offset oracle
// decides whether the offset is the zone's standard or daylight offset.
package resolve

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ngrash/go-zoned/bcp47"
	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/zone"
	"github.com/ngrash/go-zoned/zoneinfo"
)

// Spec is the caller's description. Every field is optional.
type Spec struct {
	Year       *int
	Month      *int
	Day        *int
	Hour       *int
	Minute     *int
	Second     *int
	Nanosecond *int
	Zone       *ZoneSpec
}

// ZoneSpec describes a time zone.
type ZoneSpec struct {
	Offset *OffsetSpec
	IANA   *string
	BCP47  *string
}

// OffsetSpec is a UTC offset given either in seconds or as a string such
// as "+05:30". If both are set, Seconds wins.
type OffsetSpec struct {
	Seconds *int64
	Text    *string
}

func (o OffsetSpec) parse() (zone.Offset, error) {
	switch {
	case o.Seconds != nil:
		return zone.OffsetFromSeconds(*o.Seconds)
	case o.Text != nil:
		return zone.ParseOffset(*o.Text)
	}
	return 0, fmt.Errorf("%w: empty offset", zone.ErrInvalidOffset)
}

// Presence tells which parts of a Value were given by the caller.
type Presence struct {
	Date bool
	Time bool
	Zone bool
}

// Value is a resolved date, time and time zone.
//
// Parts the caller did not give hold placeholders: the date 1970-01-01,
// midnight and UTC. Presence tells them apart from real values.
type Value struct {
	date     civil.Date
	time     civil.Time
	zone     zone.Info
	presence Presence
}

func (v Value) Date() civil.Date   { return v.date }
func (v Value) Time() civil.Time   { return v.time }
func (v Value) Zone() zone.Info    { return v.zone }
func (v Value) Presence() Presence { return v.presence }

// DateTime returns the date and time of v.
func (v Value) DateTime() civil.DateTime {
	return civil.DateTime{Date: v.date, Time: v.time}
}

// Unix returns the instant of v in seconds since the Unix epoch, if the
// zone of v has an offset.
func (v Value) Unix() (int64, bool) {
	if !v.zone.HasOffset {
		return 0, false
	}
	return v.DateTime().Unix() - v.zone.Offset.Seconds(), true
}

// Check reports whether v has all parts that sets of the given kind
// render. It panics for kinds not defined by package fieldset.
func (v Value) Check(set fieldset.Set) error {
	var need Presence
	switch k := set.Kind(); k {
	case fieldset.Date, fieldset.CalendarPeriod:
		need = Presence{Date: true}
	case fieldset.Time:
		need = Presence{Time: true}
	case fieldset.Zone:
		need = Presence{Zone: true}
	case fieldset.DateTime:
		need = Presence{Date: true, Time: true}
	case fieldset.DateZone:
		need = Presence{Date: true, Zone: true}
	case fieldset.TimeZone:
		need = Presence{Time: true, Zone: true}
	case fieldset.DateTimeZone:
		need = Presence{Date: true, Time: true, Zone: true}
	default:
		panic(fmt.Sprintf("resolve: unknown field set kind %v", k))
	}

	var missing []string
	if need.Date && !v.presence.Date {
		missing = append(missing, "date")
	}
	if need.Time && !v.presence.Time {
		missing = append(missing, "time")
	}
	if need.Zone && !v.presence.Zone {
		missing = append(missing, "zone")
	}
	if len(missing) > 0 {
		return &MissingValuesError{Kind: set.Kind(), Missing: missing}
	}
	return nil
}

// Resolver resolves Specs. The zero value resolves IANA names with the
// embedded BCP-47 table and reads offsets from the host's zoneinfo
// directory.
//
// A Resolver is safe for concurrent use if its oracles are.
type Resolver struct {
	// Zones reports the standard and daylight offsets of zones. If nil,
	// SystemZones() is used.
	Zones zone.OffsetOracle
	// Names maps IANA names to BCP-47 identifiers. If nil,
	// bcp47.Default() is used.
	Names zone.IanaMapper
	// Logger receives debug records about resolution decisions. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *Resolver) names() zone.IanaMapper {
	if r.Names == nil {
		return bcp47.Default()
	}
	return r.Names
}

func (r *Resolver) zones() zone.OffsetOracle {
	if r.Zones == nil {
		return SystemZones()
	}
	return r.Zones
}

var systemZones = sync.OnceValue(func() zone.OffsetOracle {
	c, err := zoneinfo.System(zoneinfo.Options{})
	if err != nil {
		slog.Debug("No system zoneinfo", "err", err)
		return nil
	}
	return bcp47.Default().Oracle(c)
})

// SystemZones returns an oracle over the zone files in
// zoneinfo.DefaultDir, decoded on first use. It returns nil if the host
// has no zoneinfo directory.
func SystemZones() zone.OffsetOracle {
	return systemZones()
}

// Resolve validates s and returns the resolved value.
func (r *Resolver) Resolve(s Spec) (Value, error) {
	var v Value

	hasDate, date, err := resolveDate(s)
	if err != nil {
		return Value{}, err
	}
	hasTime, t, err := resolveTime(s)
	if err != nil {
		return Value{}, err
	}
	v.date, v.time = date, t
	v.presence = Presence{Date: hasDate, Time: hasTime}
	local := v.DateTime()

	if s.Zone == nil {
		v.zone = zone.UTC(local)
		return v, nil
	}
	v.presence.Zone = true

	id, err := r.identity(*s.Zone)
	if err != nil {
		return Value{}, err
	}
	z := zone.New(id).At(local)
	if s.Zone.Offset != nil {
		off, err := s.Zone.Offset.parse()
		if err != nil {
			return Value{}, err
		}
		z = z.WithOffset(&off)
	}
	variant, err := r.variant(z, hasDate)
	if err != nil {
		return Value{}, err
	}
	v.zone = z.WithVariant(variant)
	return v, nil
}

func resolveDate(s Spec) (bool, civil.Date, error) {
	switch {
	case s.Year != nil && s.Month != nil && s.Day != nil:
		d, err := civil.NewDate(*s.Year, *s.Month, *s.Day)
		if err != nil {
			return false, civil.Date{}, err
		}
		return true, d, nil
	case s.Year == nil && s.Month == nil && s.Day == nil:
		return false, civil.Epoch, nil
	}
	return false, civil.Date{}, ErrPartialDate
}

func resolveTime(s Spec) (bool, civil.Time, error) {
	if s.Hour == nil {
		if s.Minute != nil || s.Second != nil || s.Nanosecond != nil {
			return false, civil.Time{}, ErrPartialTime
		}
		return false, civil.Midnight, nil
	}
	t, err := civil.NewTime(*s.Hour, orZero(s.Minute), orZero(s.Second), orZero(s.Nanosecond))
	if err != nil {
		return false, civil.Time{}, err
	}
	return true, t, nil
}

func orZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func (r *Resolver) identity(s ZoneSpec) (zone.ID, error) {
	switch {
	case s.IANA != nil && s.BCP47 != nil:
		return "", ErrIanaAndBcp47
	case s.BCP47 != nil:
		return zone.ParseID(*s.BCP47)
	case s.IANA != nil:
		id, ok := r.names().IanaToID(*s.IANA)
		if !ok || id.IsUnknown() {
			return "", &UnknownIanaError{Name: *s.IANA}
		}
		return id, nil
	}
	return zone.Unknown, nil
}

// variant decides whether the offset of z is its standard or daylight
// offset. Without a date the placeholder date is not a meaningful instant
// and the oracle is not asked.
func (r *Resolver) variant(z zone.Info, hasDate bool) (zone.Variant, error) {
	if !z.HasOffset {
		return zone.Standard, nil
	}
	if !hasDate {
		r.logger().Debug("No date given, assuming standard time", "zone", z.ID, "offset", z.Offset)
		return zone.Standard, nil
	}
	if z.ID.IsUnknown() {
		return zone.Standard, nil
	}
	zones := r.zones()
	if zones == nil {
		return 0, ErrNoOffsetData
	}
	unix := z.Local.Unix() - z.Offset.Seconds()
	offsets, ok := zones.VariantOffsets(z.ID, unix)
	switch {
	case !ok:
		r.logger().Debug("No offset data, assuming standard time", "zone", z.ID, "unix", unix)
		return zone.Standard, nil
	case z.Offset == offsets.Standard:
		return zone.Standard, nil
	case offsets.HasDaylight && z.Offset == offsets.Daylight:
		r.logger().Debug("Offset is daylight time", "zone", z.ID, "offset", z.Offset)
		return zone.Daylight, nil
	}
	return 0, &OffsetMismatchError{ID: z.ID, Offset: z.Offset, Offsets: offsets}
}
