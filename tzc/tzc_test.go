package tzc

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-zoned/internal/tzfixture"
	"github.com/ngrash/go-zoned/tzdb"
	"github.com/ngrash/go-zoned/tzif"
	"github.com/ngrash/go-zoned/zoneinfo"
)

func fixtureDB(t *testing.T) *tzdb.Database {
	t.Helper()
	db, err := tzdb.Parse(strings.NewReader(tzfixture.Tzdata), tzdb.Options{})
	if err != nil {
		t.Fatalf("tzdb.Parse() failed: %v", err)
	}
	return db
}

func TestCompile(t *testing.T) {
	db := fixtureDB(t)
	got, err := Compile(db, "America/Chicago", Options{From: 2024, To: 2024})
	if err != nil {
		t.Fatalf("Compile() returned unexpected error: %v", err)
	}
	want := tzif.NewData(tzif.DataBlock{
		TransitionTimes: []int64{1710057600, 1730617200},
		TransitionTypes: []uint8{1, 0},
		LocalTimeTypeRecords: []tzif.LocalTimeTypeRecord{
			{Utoff: -21600, Dst: false, Idx: 0},
			{Utoff: -18000, Dst: true, Idx: 4},
		},
		TimeZoneDesignation: []byte("CST\x00CDT\x00"),
	}, "CST6CDT,M3.2.0,M11.1.0")
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Compile() mismatch (-got +want):\n%s", diff)
	}
}

func TestCompile_Errors(t *testing.T) {
	db := fixtureDB(t)
	if _, err := Compile(db, "Mars/Olympus_Mons", DefaultOptions); err == nil {
		t.Error("Compile(Mars/Olympus_Mons) returned no error")
	}
	if _, err := Compile(db, "Asia/Tokyo", Options{From: 2030, To: 2020}); err == nil {
		t.Error("Compile() with an empty year range returned no error")
	}
}

// TestCompileBytes checks that offsets read back from compiled files agree
// with the source data, inside the compiled range and beyond it.
func TestCompileBytes(t *testing.T) {
	db := fixtureDB(t)
	files, err := CompileBytes(db, Options{From: 2020, To: 2025})
	if err != nil {
		t.Fatalf("CompileBytes() returned unexpected error: %v", err)
	}
	fsys := make(fstest.MapFS, len(files))
	for name, b := range files {
		fsys[name] = &fstest.MapFile{Data: b}
	}
	zi, err := zoneinfo.LoadAll(fsys, zoneinfo.Options{})
	if err != nil {
		t.Fatalf("zoneinfo.LoadAll() failed: %v", err)
	}
	if diff := cmp.Diff(zi.Names(), db.Names()); diff != "" {
		t.Errorf("compiled zones mismatch (-got +want):\n%s", diff)
	}
	instants := []int64{
		1577880000, // 2020-01-01T12:00:00Z
		1720005124, // 2024-07-03T11:12:04Z
		1730617199, // just before the 2024 fall transition in Chicago
		1730617200,
		2210241600, // 2040-01-15T12:00:00Z
		2224756800, // 2040-07-01T12:00:00Z
	}
	for _, name := range db.Names() {
		for _, unix := range instants {
			want, _ := db.VariantOffsets(name, unix)
			got, ok := zi.VariantOffsets(name, unix)
			if !ok {
				t.Fatalf("zoneinfo has no zone %s", name)
			}
			if diff := cmp.Diff(got, want); diff != "" {
				t.Errorf("VariantOffsets(%s, %d) mismatch (-got +want):\n%s", name, unix, diff)
			}
		}
	}
}

func TestCompileBytes_Lookup(t *testing.T) {
	db := fixtureDB(t)
	files, err := CompileBytes(db, Options{From: 2024, To: 2024})
	if err != nil {
		t.Fatal(err)
	}
	z, err := tzif.DecodeBytes(files["Europe/Berlin"])
	if err != nil {
		t.Fatalf("DecodeBytes() failed: %v", err)
	}
	for _, unix := range []int64{1711846799, 1711846800, 2224756800} {
		lt, _ := db.LocalTime("Europe/Berlin", unix)
		got := z.Lookup(unix)
		want := tzif.LocalTime{Offset: int32(lt.Offset), Dst: lt.DST, Designation: lt.Abbrev}
		if diff := cmp.Diff(got, want); diff != "" {
			t.Errorf("Lookup(%d) mismatch (-got +want):\n%s", unix, diff)
		}
	}
}
