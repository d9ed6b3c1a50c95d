// Command tzinfo prints the contents of a TZif file and the variant
// offsets it yields at given instants.
//
// Usage:
//
//	tzinfo [-v1] [-at 2024-07-03T11:12:04Z,1704067200] <tzif file>
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ngrash/go-zoned/tzif"
)

var (
	printV1Flag = flag.Bool("v1", false, "Always print v1 header and data")
	atFlag      = flag.String("at", "", "Comma separated `instants` (RFC 3339 or Unix seconds) to look up; defaults to now")
)

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		return fmt.Errorf("Usage: tzinfo [flags] <tzif file>")
	}
	instants, err := parseInstants(*atFlag, time.Now())
	if err != nil {
		return err
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	r := bytes.NewReader(b)
	data, err := tzif.DecodeData(r)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	printData(data)
	if err := printRest(r); err != nil {
		return err
	}
	if err := tzif.Validate(data); err != nil {
		fmt.Println("Validation failed:")
		fmt.Println(" ", strings.ReplaceAll(err.Error(), "\n", "\n  "))
		fmt.Println()
	}

	z, err := tzif.NewZone(data)
	if err != nil {
		return fmt.Errorf("building zone: %w", err)
	}
	printLookups(z, instants)
	return nil
}

func parseInstants(s string, now time.Time) ([]int64, error) {
	if s == "" {
		return []int64{now.Unix()}, nil
	}
	var out []int64
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if unix, err := strconv.ParseInt(f, 10, 64); err == nil {
			out = append(out, unix)
			continue
		}
		t, err := time.Parse(time.RFC3339, f)
		if err != nil {
			return nil, fmt.Errorf("instant %q: want RFC 3339 or Unix seconds", f)
		}
		out = append(out, t.Unix())
	}
	return out, nil
}

func printData(d tzif.Data) {
	if d.Version == tzif.V1 || *printV1Flag {
		printBlock(d.V1Header, d.V1Data)
	}
	if d.Version > tzif.V1 {
		printBlock(d.V2Header, d.V2Data)
		printFooter(d.V2Footer)
	}
}

func printFooter(f tzif.Footer) {
	fmt.Println("Footer")
	fmt.Println("  TZString =", string(f.TZString))
	if len(f.TZString) > 0 {
		if rule, err := tzif.ParseRule(string(f.TZString)); err != nil {
			fmt.Println("  Rule error =", err)
		} else {
			fmt.Println("  Rule =", rule)
		}
	}
	fmt.Println()
}

func printRest(r *bytes.Reader) error {
	if r.Len() == 0 {
		return nil
	}
	rest, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading remaining data: %w", err)
	}
	fmt.Println("remaining data:", len(rest), "bytes")
	fmt.Println(string(rest))
	return nil
}

func printHeader(h tzif.Header) {
	fmt.Println("Header")
	fmt.Println("  version  =", h.Version)
	fmt.Println("  isutcnt  =", h.Isutcnt)
	fmt.Println("  isstdcnt =", h.Isstdcnt)
	fmt.Println("  leapcnt  =", h.Leapcnt)
	fmt.Println("  timecnt  =", h.Timecnt)
	fmt.Println("  typecnt  =", h.Typecnt)
	fmt.Println("  charcnt  =", h.Charcnt)
	fmt.Println()
}

func printBlock(h tzif.Header, b tzif.DataBlock) {
	printHeader(h)

	fmt.Println("Data block", h.Version)
	fmt.Printf("  TransitionTimes (%d) = %v\n", len(b.TransitionTimes), b.TransitionTimes)
	fmt.Printf("  TransitionTypes (%d) = %v\n", len(b.TransitionTypes), b.TransitionTypes)
	fmt.Printf("  LocalTimeTypeRecords (%d)\n", len(b.LocalTimeTypeRecords))
	for i, rec := range b.LocalTimeTypeRecords {
		fmt.Printf("    %d: utoff=%d dst=%v designation=%q\n", i, rec.Utoff, rec.Dst, b.Designation(rec.Idx))
	}
	fmt.Printf("  LeapSecondRecords (%d) = %+v\n", len(b.LeapSecondRecords), b.LeapSecondRecords)
	fmt.Printf("  StandardWallIndicators (%d) = %v\n", len(b.StandardWallIndicators), b.StandardWallIndicators)
	fmt.Printf("  UTLocalIndicators (%d) = %v\n", len(b.UTLocalIndicators), b.UTLocalIndicators)
	fmt.Println()
}

func printLookups(z *tzif.Zone, instants []int64) {
	fmt.Println("Lookups")
	for _, unix := range instants {
		lt := z.Lookup(unix)
		fmt.Printf("  %s: offset=%d dst=%v designation=%q\n",
			time.Unix(unix, 0).UTC().Format(time.RFC3339), lt.Offset, lt.Dst, lt.Designation)
		fmt.Printf("    variant offsets: %s\n", z.VariantOffsets(unix))
	}
}
