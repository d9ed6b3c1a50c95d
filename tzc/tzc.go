// Package tzc compiles tzdata sources to TZif data, like zic does.
//
// Transitions are written for a range of years only. Local time after the
// range is described by the footer, so readers that understand version 2
// files get correct answers for later instants too.
package tzc

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"

	"github.com/ngrash/go-zoned/tzdb"
	"github.com/ngrash/go-zoned/tzif"
)

// Options configure the compiler.
type Options struct {
	// From and To are the first and last year for which transitions are
	// written.
	From, To int
	// Logger receives a debug record per compiled zone. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// DefaultOptions cover the years representable by 32-bit TZif data.
var DefaultOptions = Options{From: 1901, To: 2037}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// CompileBytes compiles every zone and link of db and encodes the result.
// The map is keyed by zone name, so it can be written out as a zoneinfo
// directory.
func CompileBytes(db *tzdb.Database, opts Options) (map[string][]byte, error) {
	compiled, err := CompileAll(db, opts)
	if err != nil {
		return nil, err
	}
	result := make(map[string][]byte, len(compiled))
	for name, data := range compiled {
		buf := new(bytes.Buffer)
		if err := data.Encode(buf); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		result[name] = buf.Bytes()
	}
	return result, nil
}

// CompileAll compiles every zone and link of db.
func CompileAll(db *tzdb.Database, opts Options) (map[string]tzif.Data, error) {
	result := make(map[string]tzif.Data)
	for _, name := range db.Names() {
		d, err := Compile(db, name, opts)
		if err != nil {
			return nil, err
		}
		result[name] = d
	}
	return result, nil
}

// Compile compiles a single zone. Links compile to the data of their
// target.
func Compile(db *tzdb.Database, name string, opts Options) (tzif.Data, error) {
	if opts.From > opts.To {
		return tzif.Data{}, fmt.Errorf("compiling zone %s: empty year range %d-%d", name, opts.From, opts.To)
	}
	initial, transitions, ok := db.Transitions(name, opts.From, opts.To)
	if !ok {
		return tzif.Data{}, fmt.Errorf("compiling zone %s: unknown zone", name)
	}
	tz, ok := db.TZString(name)
	if !ok {
		opts.logger().Debug("zone has no TZ string", "zone", name)
	}

	var b builder
	if _, err := b.addType(initial); err != nil {
		return tzif.Data{}, fmt.Errorf("compiling zone %s: %w", name, err)
	}
	for _, t := range transitions {
		if err := b.addTransition(t); err != nil {
			return tzif.Data{}, fmt.Errorf("compiling zone %s: %w", name, err)
		}
	}
	d := tzif.NewData(b.block, tz)
	if err := tzif.Validate(d); err != nil {
		return tzif.Data{}, fmt.Errorf("compiling zone %s: invalid tzif: %w", name, err)
	}
	opts.logger().Debug("compiled zone",
		"zone", name, "transitions", len(transitions), "types", len(b.block.LocalTimeTypeRecords), "tz", tz)
	return d, nil
}

// builder assembles a version 2 data block. Local time types and
// designations are deduplicated; type 0 is the type in effect before the
// first transition.
type builder struct {
	block tzif.DataBlock
	types map[tzdb.LocalTime]uint8
	desig map[string]uint8
}

func (b *builder) addTransition(t tzdb.Transition) error {
	idx, err := b.addType(t.LocalTime)
	if err != nil {
		return err
	}
	b.block.TransitionTimes = append(b.block.TransitionTimes, t.At)
	b.block.TransitionTypes = append(b.block.TransitionTypes, idx)
	return nil
}

func (b *builder) addType(lt tzdb.LocalTime) (uint8, error) {
	if b.types == nil {
		b.types = make(map[tzdb.LocalTime]uint8)
		b.desig = make(map[string]uint8)
	}
	if idx, ok := b.types[lt]; ok {
		return idx, nil
	}
	if len(b.block.LocalTimeTypeRecords) == math.MaxUint8+1 {
		return 0, fmt.Errorf("more than %d local time types", math.MaxUint8+1)
	}
	d, ok := b.desig[lt.Abbrev]
	if !ok {
		if len(b.block.TimeZoneDesignation)+len(lt.Abbrev)+1 > math.MaxUint8 {
			return 0, fmt.Errorf("designations exceed %d bytes", math.MaxUint8)
		}
		d = uint8(len(b.block.TimeZoneDesignation))
		b.block.TimeZoneDesignation = append(b.block.TimeZoneDesignation, lt.Abbrev...)
		b.block.TimeZoneDesignation = append(b.block.TimeZoneDesignation, 0)
		b.desig[lt.Abbrev] = d
	}
	idx := uint8(len(b.block.LocalTimeTypeRecords))
	b.block.LocalTimeTypeRecords = append(b.block.LocalTimeTypeRecords, tzif.LocalTimeTypeRecord{
		Utoff: int32(lt.Offset),
		Dst:   lt.DST,
		Idx:   d,
	})
	b.types[lt] = idx
	return idx, nil
}
