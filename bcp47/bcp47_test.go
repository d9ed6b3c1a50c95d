package bcp47

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-zoned/internal/tzfixture"
	"github.com/ngrash/go-zoned/zone"
	"github.com/ngrash/go-zoned/zoneinfo"
)

func TestDefault_IanaToID(t *testing.T) {
	tests := []struct {
		name   string
		want   zone.ID
		wantOK bool
	}{
		{"America/Chicago", "uschi", true},
		{"US/Central", "uschi", true},
		{"america/chicago", "uschi", true},
		{"Asia/Kolkata", "inccu", true},
		{"Asia/Calcutta", "inccu", true},
		{"Etc/UTC", "utc", true},
		{"Zulu", "utc", true},
		{"Europe/Kyiv", "uaiev", true},
		{"Europe/Kiev", "uaiev", true},
		{"Europe/Zaporozhye", "uaiev", true},
		{"Europe/Andorra", "adalv", true},
		{"Europe/Monaco", "mcmon", true},
		{"Europe/Malta", "mtmla", true},
		{"Africa/Abidjan", "ciabj", true},
		{"Etc/GMT+5", "utcw05", true},
		{"Etc/GMT-14", "utce14", true},
		{"Antarctica/Troll", "aqtrl", true},
		{"America/Montreal", "cator", true},
		{"Mars/Olympus_Mons", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := Default().IanaToID(tc.name)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("IanaToID(%q) = %q, %v, want %q, %v", tc.name, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestDefault_IANA(t *testing.T) {
	tests := []struct {
		id     zone.ID
		want   string
		wantOK bool
	}{
		{"uschi", "America/Chicago", true},
		{"inccu", "Asia/Kolkata", true},
		{"utc", "Etc/UTC", true},
		{"xxxxx", "", false},
	}
	for _, tc := range tests {
		got, ok := Default().IANA(tc.id)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("IANA(%q) = %q, %v, want %q, %v", tc.id, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestDefault_RoundTrip(t *testing.T) {
	for _, id := range Default().IDs() {
		name, ok := Default().IANA(id)
		if !ok {
			t.Errorf("IANA(%q) found no name", id)
			continue
		}
		if got, _ := Default().IanaToID(name); got != id {
			t.Errorf("IanaToID(IANA(%q)) = %q", id, got)
		}
	}
}

const cldrSample = `<?xml version="1.0" encoding="UTF-8" ?>
<!DOCTYPE ldmlBCP47 SYSTEM "../../common/dtd/ldmlBCP47.dtd">
<ldmlBCP47>
    <version number="$Revision$"/>
    <keyword>
        <key name="tz" description="Time zone key" alias="timezone">
            <type name="inccu" description="Kolkata, India" alias="Asia/Calcutta Asia/Kolkata" iana="Asia/Kolkata"/>
            <type name="uschi" description="Central Time (US)" alias="America/Chicago US/Central"/>
            <type name="utc" description="UTC (Coordinated Universal Time)" alias="Etc/UTC Etc/UCT Etc/Universal Etc/Zulu UCT UTC Universal Zulu"/>
            <type name="usknx" description="Knox, Indiana" deprecated="true" preferred="uschi" alias="America/Knox_IN US/Indiana-Starke"/>
            <type name="unk" description="Unknown time zone" alias="Etc/Unknown"/>
        </key>
    </keyword>
</ldmlBCP47>
`

func TestParseCLDR(t *testing.T) {
	table, err := ParseCLDR(strings.NewReader(cldrSample))
	if err != nil {
		t.Fatalf("ParseCLDR() returned unexpected error: %v", err)
	}
	if diff := cmp.Diff(table.IDs(), []zone.ID{"inccu", "unk", "uschi", "utc"}); diff != "" {
		t.Errorf("IDs() mismatch (-got +want):\n%s", diff)
	}
	if diff := cmp.Diff(table.Aliases("inccu"), []string{"Asia/Kolkata", "Asia/Calcutta"}); diff != "" {
		t.Errorf("Aliases(inccu) mismatch (-got +want):\n%s", diff)
	}
	if id, ok := table.IanaToID("US/Indiana-Starke"); id != "uschi" || !ok {
		t.Errorf("IanaToID(US/Indiana-Starke) = %q, %v, want uschi, true", id, ok)
	}
}

func TestParseCLDR_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no tz key", "<ldmlBCP47><keyword></keyword></ldmlBCP47>"},
		{"malformed id", `<ldmlBCP47><keyword><key name="tz"><type name="x" alias="America/Chicago"/></key></keyword></ldmlBCP47>`},
		{"not xml", "uschi America/Chicago"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseCLDR(strings.NewReader(tc.in)); err == nil {
				t.Error("ParseCLDR() returned nil error")
			}
		})
	}
}

// TestDefault_TzdataRelease checks that every zone and link name of a
// tzdata release has an identifier.
func TestDefault_TzdataRelease(t *testing.T) {
	f, err := os.Open("testdata/tzdata-names.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	n := 0
	for s.Scan() {
		name := s.Text()
		// Factory is a placeholder for unconfigured systems.
		if name == "" || strings.HasPrefix(name, "#") || name == "Factory" {
			continue
		}
		n++
		if _, ok := Default().IanaToID(name); !ok {
			t.Errorf("IanaToID(%q) found no identifier", name)
		}
	}
	if err := s.Err(); err != nil {
		t.Fatal(err)
	}
	if n < 590 {
		t.Errorf("read %d names, want at least 590", n)
	}
}

// TestDefault_SystemZoneinfo checks the zones of the local tzdata release,
// when one is installed.
func TestDefault_SystemZoneinfo(t *testing.T) {
	b, err := os.ReadFile(filepath.Join(zoneinfo.DefaultDir, "tzdata.zi"))
	if err != nil {
		t.Skipf("no local tzdata: %v", err)
	}
	for _, line := range strings.Split(string(b), "\n") {
		fields := strings.Fields(line)
		var name string
		switch {
		case len(fields) >= 2 && fields[0] == "Z":
			name = fields[1]
		case len(fields) >= 3 && fields[0] == "L":
			name = fields[2]
		default:
			continue
		}
		if name == "Factory" {
			continue
		}
		if _, ok := Default().IanaToID(name); !ok {
			t.Errorf("IanaToID(%q) found no identifier", name)
		}
	}
}

func TestWithLinks(t *testing.T) {
	table, err := ParseCLDR(strings.NewReader(`<ldmlBCP47><keyword><key name="tz"><type name="uschi" alias="America/Chicago"/></key></keyword></ldmlBCP47>`))
	if err != nil {
		t.Fatal(err)
	}
	linked := table.WithLinks(map[string]string{
		"US/Central":      "America/Chicago",
		"America/Knox":    "America/Chicago",
		"Europe/Busingen": "Europe/Zurich",
	}, nil)
	if id, ok := linked.IanaToID("US/Central"); id != "uschi" || !ok {
		t.Errorf("IanaToID(US/Central) = %q, %v, want uschi, true", id, ok)
	}
	if _, ok := linked.IanaToID("Europe/Busingen"); ok {
		t.Error("IanaToID(Europe/Busingen) found link to unknown target")
	}
	if _, ok := table.IanaToID("US/Central"); ok {
		t.Error("WithLinks modified the receiver")
	}
	if name, _ := linked.IANA("uschi"); name != "America/Chicago" {
		t.Errorf("IANA(uschi) = %q, want America/Chicago", name)
	}
}

type namedFunc func(name string, unix int64) (zone.Offsets, bool)

func (f namedFunc) VariantOffsets(name string, unix int64) (zone.Offsets, bool) {
	return f(name, unix)
}

func TestOracle(t *testing.T) {
	db, err := zoneinfo.LoadAll(tzfixture.FS(), zoneinfo.Options{})
	if err != nil {
		t.Fatal(err)
	}
	oracle := Default().Oracle(db)

	tests := []struct {
		id     zone.ID
		unix   int64
		want   zone.Offsets
		wantOK bool
	}{
		// 2024-07-03T11:12:04Z
		{"uschi", 1720005124, zone.Offsets{Standard: -21600, Daylight: -18000, HasDaylight: true}, true},
		{"jptyo", 1720005124, zone.Offsets{Standard: 32400}, true},
		{"utc", 1720005124, zone.Offsets{}, true},
		{"frpar", 1720005124, zone.Offsets{}, false},
		{zone.Unknown, 1720005124, zone.Offsets{}, false},
	}
	for _, tc := range tests {
		got, ok := oracle.VariantOffsets(tc.id, tc.unix)
		if ok != tc.wantOK {
			t.Errorf("VariantOffsets(%q, %d) ok = %v, want %v", tc.id, tc.unix, ok, tc.wantOK)
		}
		if diff := cmp.Diff(got, tc.want); diff != "" {
			t.Errorf("VariantOffsets(%q, %d) mismatch (-got +want):\n%s", tc.id, tc.unix, diff)
		}
	}
}

func TestOracle_TriesAliases(t *testing.T) {
	var tried []string
	named := namedFunc(func(name string, unix int64) (zone.Offsets, bool) {
		tried = append(tried, name)
		if name == "Asia/Calcutta" {
			return zone.Offsets{Standard: 19800}, true
		}
		return zone.Offsets{}, false
	})
	got, ok := Default().Oracle(named).VariantOffsets("inccu", 0)
	if !ok || got.Standard != 19800 {
		t.Errorf("VariantOffsets(inccu) = %v, %v, want standard=+05:30", got, ok)
	}
	if diff := cmp.Diff(tried, []string{"Asia/Kolkata", "Asia/Calcutta"}); diff != "" {
		t.Errorf("tried names mismatch (-got +want):\n%s", diff)
	}
}
