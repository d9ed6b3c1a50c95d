// Command tzdiff compares two sources of time zone data.
//
// Given two TZif files it diffs their decoded contents. Given two data
// sources (zoneinfo directories, tzdata source directories or
// "iana[:version]") it diffs the variant offsets both report for every
// BCP-47 zone on the first of each month in a range of years.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/internal/config"
	"github.com/ngrash/go-zoned/tzdb"
	"github.com/ngrash/go-zoned/tzif"
	"github.com/ngrash/go-zoned/zone"
)

var (
	fromFlag  = flag.Int("from", 2000, "first `year` to compare")
	toFlag    = flag.Int("to", 2030, "last `year` to compare")
	zonesFlag = flag.String("zones", "", "comma separated BCP-47 `ids` to compare; defaults to all")
	debugFlag = flag.Bool("debug", false, "log debug records")
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
	if len(args) != 2 {
		return fmt.Errorf("Usage: tzdiff [flags] <A> <B>\n")
	}
	if isFile(args[0]) && isFile(args[1]) {
		return diffFiles(args[0], args[1])
	}

	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	a, err := load(args[0], logger)
	if err != nil {
		return err
	}
	b, err := load(args[1], logger)
	if err != nil {
		return err
	}
	ids := a.Names.IDs()
	if *zonesFlag != "" {
		ids = nil
		for _, s := range strings.Split(*zonesFlag, ",") {
			id, err := zone.ParseID(strings.TrimSpace(s))
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
	}
	instants := monthly(*fromFlag, *toFlag)
	if diff := cmp.Diff(sample(a, ids, instants), sample(b, ids, instants)); diff != "" {
		fmt.Printf("offsets are different: -%s +%s\n", a.Source, b.Source)
		fmt.Println(diff)
	} else {
		fmt.Printf("offsets are identical for %d zones\n", len(ids))
	}
	return nil
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func diffFiles(a, b string) error {
	af, err := os.ReadFile(a)
	if err != nil {
		return err
	}
	bf, err := os.ReadFile(b)
	if err != nil {
		return err
	}
	adata, err := tzif.DecodeData(bytes.NewReader(af))
	if err != nil {
		return fmt.Errorf("%s: %w", a, err)
	}
	bdata, err := tzif.DecodeData(bytes.NewReader(bf))
	if err != nil {
		return fmt.Errorf("%s: %w", b, err)
	}
	if diff := cmp.Diff(adata, bdata); diff != "" {
		fmt.Println("files are different: -A +B")
		fmt.Println(diff)
	} else {
		fmt.Println("files are identical")
	}
	return nil
}

// load treats directories holding tzdata sources as tzdata and other
// directories as zoneinfo.
func load(src string, logger *slog.Logger) (config.Data, error) {
	var c config.Config
	switch {
	case src == "iana" || strings.HasPrefix(src, "iana:"):
		c.Tzdata = src
	case hasTzdata(src):
		c.Tzdata = src
	default:
		c.Zoneinfo = src
	}
	return c.LoadData(context.Background(), nil, logger)
}

func hasTzdata(dir string) bool {
	for _, name := range tzdb.SourceFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// monthly returns noon UTC on the first of each month of the years.
func monthly(from, to int) []int64 {
	var out []int64
	for y := from; y <= to; y++ {
		for m := 1; m <= 12; m++ {
			d, err := civil.NewDate(y, m, 1)
			if err != nil {
				continue
			}
			out = append(out, civil.DateTime{Date: d, Time: civil.Time{Hour: 12}}.Unix())
		}
	}
	return out
}

type result struct {
	Unix    int64
	Offsets zone.Offsets
	OK      bool
}

func sample(d config.Data, ids []zone.ID, instants []int64) map[zone.ID][]result {
	out := make(map[zone.ID][]result, len(ids))
	for _, id := range ids {
		rs := make([]result, 0, len(instants))
		for _, unix := range instants {
			o, ok := d.Zones.VariantOffsets(id, unix)
			rs = append(rs, result{Unix: unix, Offsets: o, OK: ok})
		}
		out[id] = rs
	}
	return out
}
