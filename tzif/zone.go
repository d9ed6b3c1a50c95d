package tzif

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/ngrash/go-zoned/zone"
)

// variantWindow bounds how far from an instant a neighbouring period of the
// other variant is still considered part of the same seasonal cycle.
const variantWindow = 366 * secondsPerDay

// Zone is a decoded TZif file prepared for lookups.
type Zone struct {
	block DataBlock
	rule  *Rule
}

// NewZone prepares d for lookups. The 64-bit block is used for version 2+
// data. An empty footer leaves instants after the last transition in the
// last local time type.
func NewZone(d Data) (*Zone, error) {
	z := &Zone{block: d.Block()}
	if len(z.block.LocalTimeTypeRecords) == 0 {
		return nil, fmt.Errorf("no local time types")
	}
	if d.Version > V1 && len(d.V2Footer.TZString) > 0 {
		r, err := ParseRule(string(d.V2Footer.TZString))
		if err != nil {
			return nil, err
		}
		z.rule = &r
	}
	return z, nil
}

// Decode reads a TZif file from r and prepares it for lookups.
func Decode(r io.Reader) (*Zone, error) {
	d, err := DecodeData(r)
	if err != nil {
		return nil, err
	}
	return NewZone(d)
}

// DecodeBytes is Decode for a file held in memory.
func DecodeBytes(b []byte) (*Zone, error) {
	return Decode(bytes.NewReader(b))
}

// Rule returns the footer rule, or nil if the file has none.
func (z *Zone) Rule() *Rule { return z.rule }

// LocalTime is the local time type in effect at an instant.
type LocalTime struct {
	Offset      int32
	Dst         bool
	Designation string
}

// period returns the index of the transition that started the period
// containing unix, or -1 if unix precedes the first transition.
func (z *Zone) period(unix int64) int {
	times := z.block.TransitionTimes
	return sort.Search(len(times), func(i int) bool { return times[i] > unix }) - 1
}

// pastTransitions reports whether unix falls after the last explicit
// transition and the footer governs it.
func (z *Zone) pastTransitions(unix int64) bool {
	if z.rule == nil {
		return false
	}
	times := z.block.TransitionTimes
	return len(times) == 0 || unix >= times[len(times)-1]
}

// typeAt returns the index of the local time type of period i. Instants
// before the first transition use type 0.
func (z *Zone) typeAt(i int) int {
	if i < 0 {
		return 0
	}
	return int(z.block.TransitionTypes[i])
}

// Lookup returns the local time type in effect at unix.
func (z *Zone) Lookup(unix int64) LocalTime {
	if z.pastTransitions(unix) {
		off, dst, name := z.rule.Lookup(unix)
		return LocalTime{Offset: off, Dst: dst, Designation: name}
	}
	typ := z.block.LocalTimeTypeRecords[z.typeAt(z.period(unix))]
	return LocalTime{
		Offset:      typ.Utoff,
		Dst:         typ.Dst,
		Designation: z.block.Designation(typ.Idx),
	}
}

// VariantOffsets returns the standard and daylight offsets of the zone
// around unix. Daylight is only reported when the zone observes it within
// a year of unix. The lower offset is always the standard one.
func (z *Zone) VariantOffsets(unix int64) zone.Offsets {
	return z.variantOffsets(unix).Ordered()
}

func (z *Zone) variantOffsets(unix int64) zone.Offsets {
	if z.pastTransitions(unix) {
		return ruleOffsets(z.rule)
	}

	i := z.period(unix)
	cur := z.block.LocalTimeTypeRecords[z.typeAt(i)]
	var out zone.Offsets
	if cur.Dst {
		out.Daylight = zone.Offset(cur.Utoff)
		out.HasDaylight = true
		std, ok := z.neighbour(unix, i, false, -1)
		if !ok {
			// DST at the start of data with no standard period recorded.
			std = cur.Utoff - secondsPerHour
		}
		out.Standard = zone.Offset(std)
		return out
	}

	out.Standard = zone.Offset(cur.Utoff)
	if dst, ok := z.neighbour(unix, i, true, variantWindow); ok {
		out.Daylight = zone.Offset(dst)
		out.HasDaylight = true
	}
	return out
}

// neighbour finds the offset of the nearest period around period i whose
// daylight flag equals dst, looking first forward and then backward. A
// negative window disables the distance limit. The footer counts as the
// period following the last transition.
func (z *Zone) neighbour(unix int64, i int, dst bool, window int64) (int32, bool) {
	times := z.block.TransitionTimes
	types := z.block.LocalTimeTypeRecords
	within := func(t int64) bool {
		d := t - unix
		if d < 0 {
			d = -d
		}
		return window < 0 || d <= window
	}

	j := i + 1
	for ; j < len(times) && within(times[j]); j++ {
		if typ := types[z.typeAt(j)]; typ.Dst == dst {
			return typ.Utoff, true
		}
	}
	if j == len(times) && z.rule != nil {
		if !dst {
			return z.rule.StdOff, true
		}
		if z.rule.HasDST {
			return z.rule.DstOff, true
		}
	}
	for j := i; j >= 0 && within(times[j]); j-- {
		if typ := types[z.typeAt(j-1)]; typ.Dst == dst {
			return typ.Utoff, true
		}
	}
	return 0, false
}

func ruleOffsets(r *Rule) zone.Offsets {
	out := zone.Offsets{Standard: zone.Offset(r.StdOff)}
	if r.HasDST {
		out.Daylight = zone.Offset(r.DstOff)
		out.HasDaylight = true
	}
	return out
}
