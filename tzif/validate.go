package tzif

import (
	"errors"
	"fmt"
)

// Validate reports every inconsistency between the headers and data
// blocks of d, joined into one error.
func Validate(d Data) error {
	var errs []error
	if d.Version != d.V1Header.Version || (d.Version > V1 && d.V1Header.Version != d.V2Header.Version) {
		errs = append(errs, fmt.Errorf("inconsistent version: file = %v, v1 header = %v, v2 header = %v", d.Version, d.V1Header.Version, d.V2Header.Version))
	}
	errs = append(errs, validateBlock("v1", d.V1Header, d.V1Data)...)
	if d.Version > V1 {
		errs = append(errs, validateBlock("v2", d.V2Header, d.V2Data)...)
		if len(d.V2Footer.TZString) > 0 {
			if _, err := ParseRule(string(d.V2Footer.TZString)); err != nil {
				errs = append(errs, fmt.Errorf("invalid footer: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

func validateBlock(name string, header Header, data DataBlock) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("invalid %s "+format, append([]any{name}, args...)...))
	}

	if header.Isutcnt != 0 && header.Isutcnt != header.Typecnt {
		fail("isutcnt (%d): must be 0 or equal to typecnt (%d)", header.Isutcnt, header.Typecnt)
	}
	if len(data.UTLocalIndicators) != int(header.Isutcnt) {
		fail("isutcnt: header = %d, data = %d", header.Isutcnt, len(data.UTLocalIndicators))
	}
	if header.Isstdcnt != 0 && header.Isstdcnt != header.Typecnt {
		fail("isstdcnt (%d): must be 0 or equal to typecnt (%d)", header.Isstdcnt, header.Typecnt)
	}
	if len(data.StandardWallIndicators) != int(header.Isstdcnt) {
		fail("isstdcnt: header = %d, data = %d", header.Isstdcnt, len(data.StandardWallIndicators))
	}
	if len(data.LeapSecondRecords) != int(header.Leapcnt) {
		fail("leapcnt: header = %d, data = %d", header.Leapcnt, len(data.LeapSecondRecords))
	}
	if len(data.TransitionTimes) != int(header.Timecnt) {
		fail("timecnt: header = %d, transition times = %d", header.Timecnt, len(data.TransitionTimes))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		fail("transitions: transition times = %d, transition types = %d", times, types)
	}
	for i := 1; i < len(data.TransitionTimes); i++ {
		if data.TransitionTimes[i] <= data.TransitionTimes[i-1] {
			fail("transition times: not ascending at index %d", i)
			break
		}
	}
	for i, typ := range data.TransitionTypes {
		if int(typ) >= int(header.Typecnt) {
			fail("transition type at index %d: %d out of range", i, typ)
		}
	}
	if header.Typecnt == 0 {
		fail("typecnt: must not be zero")
	}
	if len(data.LocalTimeTypeRecords) != int(header.Typecnt) {
		fail("typecnt: header = %d, data = %d", header.Typecnt, len(data.LocalTimeTypeRecords))
	}
	for i, r := range data.LocalTimeTypeRecords {
		if int(r.Idx) >= len(data.TimeZoneDesignation) {
			fail("local time type %d: designation index %d out of range", i, r.Idx)
		}
	}
	if header.Charcnt == 0 {
		fail("charcnt: must not be zero")
	}
	if len(data.TimeZoneDesignation) != int(header.Charcnt) {
		fail("charcnt: header = %d, data = %d", header.Charcnt, len(data.TimeZoneDesignation))
	}
	if n := len(data.TimeZoneDesignation); n > 0 && data.TimeZoneDesignation[n-1] != 0 {
		fail("time zone designations: missing null terminator")
	}
	return errs
}
