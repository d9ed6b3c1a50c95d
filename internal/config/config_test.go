package config

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/ngrash/go-zoned/internal/tzfixture"
	"github.com/ngrash/go-zoned/zone"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want Config
	}{
		{"defaults", nil, Default()},
		{
			name: "all set",
			env: map[string]string{
				"ZONED_ZONEINFO":   "/opt/zoneinfo",
				"ZONED_TZDATA":     "iana:2024b",
				"ZONED_LOCALE":     "de-CH",
				"ZONED_LOG_LEVEL":  "debug",
				"ZONED_LOG_FORMAT": "json",
			},
			want: Config{
				Zoneinfo:  "/opt/zoneinfo",
				Tzdata:    "iana:2024b",
				Locale:    "de-CH",
				LogLevel:  -4,
				LogFormat: "json",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromEnv(env(tc.env))
			if err != nil {
				t.Fatalf("FromEnv() returned unexpected error: %v", err)
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("FromEnv() mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestFromEnv_Errors(t *testing.T) {
	if _, err := FromEnv(env(map[string]string{"ZONED_LOG_LEVEL": "loud"})); err == nil {
		t.Error("FromEnv(ZONED_LOG_LEVEL=loud) returned no error")
	}
	_, err := FromEnv(env(map[string]string{"ZONED_LOG_FORMAT": "xml"}))
	if !errors.Is(err, ErrLogFormat) {
		t.Errorf("FromEnv(ZONED_LOG_FORMAT=xml) error = %v, want %v", err, ErrLogFormat)
	}
}

func TestRegisterFlags(t *testing.T) {
	c, err := FromEnv(env(map[string]string{"ZONED_LOCALE": "fr", "ZONED_LOG_LEVEL": "warn"}))
	if err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)
	if err := fs.Parse([]string{"-locale", "ja", "-tzdata", "/src/tz"}); err != nil {
		t.Fatal(err)
	}
	want := Default()
	want.Locale = "ja"
	want.Tzdata = "/src/tz"
	want.LogLevel = 4
	if diff := cmp.Diff(c, want); diff != "" {
		t.Errorf("config mismatch (-got +want):\n%s", diff)
	}
}

func TestLogger(t *testing.T) {
	c := Default()
	c.LogFormat = "json"
	c.LogLevel = -4
	var buf bytes.Buffer
	logger, err := c.Logger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("hello", "zone", "uschi")
	if got := buf.String(); !strings.Contains(got, `"level":"DEBUG"`) || !strings.Contains(got, `"zone":"uschi"`) {
		t.Errorf("log output = %q, want a JSON debug record", got)
	}

	buf.Reset()
	c.LogFormat = "text"
	c.LogLevel = 0
	logger, err = c.Logger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("dropped")
	if buf.Len() != 0 {
		t.Errorf("debug record written at info level: %q", buf.String())
	}
}

func writeFiles(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadData(t *testing.T) {
	zoneinfoFiles := make(map[string][]byte)
	for name, f := range tzfixture.FS() {
		zoneinfoFiles[name] = f.Data
	}
	zoneinfoDir := writeFiles(t, zoneinfoFiles)
	tzdataDir := writeFiles(t, map[string][]byte{"northamerica": []byte(tzfixture.Tzdata)})

	const july2024 = 1720005124
	chicago := zone.Offsets{Standard: -6 * 3600, Daylight: -5 * 3600, HasDaylight: true}
	tests := []struct {
		name   string
		config Config
		want   *zone.Offsets
	}{
		{"zoneinfo", Config{Zoneinfo: zoneinfoDir}, &chicago},
		{"tzdata", Config{Zoneinfo: "/nonexistent", Tzdata: tzdataDir}, &chicago},
		{"none", Config{}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := tc.config.LoadData(context.Background(), nil, nil)
			if err != nil {
				t.Fatalf("LoadData() returned unexpected error: %v", err)
			}
			if id, ok := d.Names.IanaToID("US/Central"); !ok || id != "uschi" {
				t.Errorf("IanaToID(US/Central) = %q, %v, want uschi", id, ok)
			}
			if tc.want == nil {
				if d.Zones != nil {
					t.Errorf("Zones = %v, want nil", d.Zones)
				}
				return
			}
			got, ok := d.Zones.VariantOffsets("uschi", july2024)
			if !ok {
				t.Fatal("VariantOffsets(uschi) found no data")
			}
			if diff := cmp.Diff(got, *tc.want); diff != "" {
				t.Errorf("VariantOffsets(uschi) mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestLoadData_Errors(t *testing.T) {
	for _, c := range []Config{
		{Zoneinfo: filepath.Join(t.TempDir(), "missing")},
		{Tzdata: writeFiles(t, map[string][]byte{"europe": []byte("Zone Europe/Nowhere 1:00 NOPE CE%sT\n")})},
	} {
		if _, err := c.LoadData(context.Background(), nil, nil); err == nil {
			t.Errorf("LoadData(%+v) returned no error", c)
		}
	}
}

func TestLoadTzdb(t *testing.T) {
	if _, _, err := (Config{}).LoadTzdb(context.Background(), nil, nil); !errors.Is(err, ErrNoTzdata) {
		t.Errorf("LoadTzdb() error = %v, want %v", err, ErrNoTzdata)
	}
	dir := writeFiles(t, map[string][]byte{"europe": []byte(tzfixture.Tzdata)})
	db, source, err := Config{Tzdata: dir}.LoadTzdb(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("LoadTzdb() returned unexpected error: %v", err)
	}
	if source != dir {
		t.Errorf("source = %q, want %q", source, dir)
	}
	if got, ok := db.Canonical("US/Central"); !ok || got != "America/Chicago" {
		t.Errorf("Canonical(US/Central) = %q, %v, want America/Chicago", got, ok)
	}
}
