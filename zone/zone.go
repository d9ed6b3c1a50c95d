// Package zone models time zone identities, UTC offsets and the
// standard/daylight variant of a zone at a given instant.
//
// The package defines the oracle interfaces consulted during resolution.
// Implementations live in the zoneinfo, tzdb and bcp47 packages.
package zone

import (
	"fmt"

	"github.com/ngrash/go-zoned/civil"
)

// Variant tells whether a zone observes standard or daylight time.
type Variant uint8

const (
	Standard Variant = iota
	Daylight
)

func (v Variant) String() string {
	switch v {
	case Standard:
		return "standard"
	case Daylight:
		return "daylight"
	default:
		return fmt.Sprintf("<undefined variant (%d)>", v)
	}
}

// Offsets are the UTC offsets a zone uses for its standard and, if it
// observes one, its daylight variant around a given instant.
type Offsets struct {
	Standard    Offset
	Daylight    Offset
	HasDaylight bool
}

// Ordered returns o with the lower offset as Standard. Zones with negative
// daylight saving time, like Europe/Dublin in tzdata, flag their winter
// offset as the daylight one.
func (o Offsets) Ordered() Offsets {
	if o.HasDaylight && o.Daylight < o.Standard {
		o.Standard, o.Daylight = o.Daylight, o.Standard
	}
	return o
}

// String formats o as "standard=±HH[:MM[:SS]], daylight=±HH[:MM[:SS]]",
// with "n/a" in place of a missing daylight offset.
func (o Offsets) String() string {
	daylight := "n/a"
	if o.HasDaylight {
		daylight = o.Daylight.String()
	}
	return fmt.Sprintf("standard=%s, daylight=%s", o.Standard, daylight)
}

// Info is a time zone as seen at a particular civil instant: an identity,
// an optional explicit UTC offset and the variant in effect.
type Info struct {
	ID        ID
	Offset    Offset
	HasOffset bool
	Variant   Variant
	// Local is the civil date and time the zone was resolved at.
	Local civil.DateTime
}

// UTC returns the UTC zone at the given civil instant.
func UTC(local civil.DateTime) Info {
	return Info{ID: UTCID, HasOffset: true, Variant: Standard, Local: local}
}

// New returns a zone with the given identity and no offset.
func New(id ID) Info {
	return Info{ID: id}
}

// WithOffset returns a copy of z with the given offset. A nil offset
// clears the offset.
func (z Info) WithOffset(o *Offset) Info {
	if o == nil {
		z.Offset, z.HasOffset = 0, false
		return z
	}
	z.Offset, z.HasOffset = *o, true
	return z
}

// At returns a copy of z attached to the given civil instant.
func (z Info) At(local civil.DateTime) Info {
	z.Local = local
	return z
}

// WithVariant returns a copy of z with the given variant.
func (z Info) WithVariant(v Variant) Info {
	z.Variant = v
	return z
}

// OffsetOracle reports the variant offsets of a zone around an instant
// given as seconds since the Unix epoch. The boolean is false if the
// oracle has no data for the zone.
type OffsetOracle interface {
	VariantOffsets(id ID, unix int64) (Offsets, bool)
}

// NamedOracle is an OffsetOracle keyed by IANA zone name.
type NamedOracle interface {
	VariantOffsets(name string, unix int64) (Offsets, bool)
}

// IanaMapper maps IANA zone names, including aliases, to identities.
type IanaMapper interface {
	IanaToID(name string) (ID, bool)
}
