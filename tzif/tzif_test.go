package tzif

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ngrash/go-zoned/zone"
)

func TestHeader_Write(t *testing.T) {
	buf := bytes.Buffer{}
	header := Header{
		Isutcnt:  1,
		Isstdcnt: 2,
		Leapcnt:  3,
		Timecnt:  4,
		Typecnt:  5,
		Charcnt:  6,
	}
	if err := header.Write(&buf); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	got := buf.Bytes()
	want := []byte{
		// 4 bytes magic
		'T', 'Z', 'i', 'f',
		// 1 byte version
		0,
		// 15 bytes reserved
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		// 6 4-byte integers
		0, 0, 0, 1, // isutcnt
		0, 0, 0, 2, // isstdcnt
		0, 0, 0, 3, // leapcnt
		0, 0, 0, 4, // timecnt
		0, 0, 0, 5, // typecnt
		0, 0, 0, 6, // charcnt
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Write() mismatch (-got +want):\n%s", diff)
	}
}

func TestReadHeader_InvalidMagic(t *testing.T) {
	_, err := ReadHeader(strings.NewReader("TZix" + strings.Repeat("\x00", 40)))
	if err == nil || !strings.Contains(err.Error(), "invalid magic") {
		t.Errorf("ReadHeader() error = %v, want invalid magic", err)
	}
}

func TestDataBlock_WriteV1(t *testing.T) {
	// Abbreviated example B.1 from RFC 8536: UTC with two leap seconds.
	block := DataBlock{
		LocalTimeTypeRecords:   []LocalTimeTypeRecord{{Utoff: 0, Dst: false, Idx: 0}},
		TimeZoneDesignation:    []byte("UTC\x00"),
		LeapSecondRecords:      []LeapSecondRecord{{78796800, 1}, {94694401, 2}},
		StandardWallIndicators: []bool{false},
		UTLocalIndicators:      []bool{false},
	}
	var buf bytes.Buffer
	if err := block.Write(&buf, 4); err != nil {
		t.Fatalf("write block: %v", err)
	}
	want := []byte{
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // local time type 0
		0x55, 0x54, 0x43, 0x00, // "UTC"
		0x04, 0xb2, 0x58, 0x00, 0x00, 0x00, 0x00, 0x01, // leap second 1
		0x05, 0xa4, 0xec, 0x01, 0x00, 0x00, 0x00, 0x02, // leap second 2
		0x00, // standard/wall 0
		0x00, // UT/local 0
	}
	if diff := cmp.Diff(buf.Bytes(), want); diff != "" {
		t.Errorf("block mismatch (-got +want):\n%s", diff)
	}

	got, err := ReadDataBlock(bytes.NewReader(want), block.Header(V1), 4)
	if err != nil {
		t.Fatalf("read block: %v", err)
	}
	if diff := cmp.Diff(got, block); diff != "" {
		t.Errorf("read block mismatch (-got +want):\n%s", diff)
	}
}

func TestData_EncodeDecode(t *testing.T) {
	d := chicago()
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeData(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(got, d); diff != "" {
		t.Errorf("decode mismatch (-got +want):\n%s", diff)
	}
	if buf.Len() != 0 {
		t.Errorf("buffer not empty: %d", buf.Len())
	}
	if err := Validate(got); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestReadFooter(t *testing.T) {
	got, err := ReadFooter(strings.NewReader("\nCST6CDT,M3.2.0,M11.1.0\n"))
	if err != nil {
		t.Fatalf("ReadFooter() failed: %v", err)
	}
	if diff := cmp.Diff(string(got.TZString), "CST6CDT,M3.2.0,M11.1.0"); diff != "" {
		t.Errorf("footer mismatch (-got +want):\n%s", diff)
	}
	if _, err := ReadFooter(strings.NewReader("CST6")); err == nil {
		t.Errorf("ReadFooter() without leading newline succeeded")
	}
}

func TestValidate(t *testing.T) {
	d := chicago()
	d.V2Data.TransitionTypes = d.V2Data.TransitionTypes[:1]
	d.V2Data.TimeZoneDesignation = []byte("CST\x00CDT")
	d.V2Footer.TZString = []byte("CST6CDT,M3")
	err := Validate(d)
	if err == nil {
		t.Fatal("Validate() succeeded")
	}
	for _, want := range []string{
		"invalid v2 transitions",
		"invalid v2 charcnt: header = 8, data = 7",
		"missing null terminator",
		"invalid footer",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %q, want it to contain %q", err, want)
		}
	}
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		in      string
		want    Rule
		wantErr bool
	}{
		{
			in:   "UTC0",
			want: Rule{StdName: "UTC"},
		},
		{
			in:   "<+0530>-5:30",
			want: Rule{StdName: "+0530", StdOff: 19800},
		},
		{
			in: "CST6CDT,M3.2.0,M11.1.0",
			want: Rule{
				StdName: "CST", StdOff: -21600,
				DstName: "CDT", DstOff: -18000,
				HasDST: true,
				Start:  TransitionRule{Kind: RuleMonthWeekDay, Month: 3, Week: 2, Day: 0, Time: 7200},
				End:    TransitionRule{Kind: RuleMonthWeekDay, Month: 11, Week: 1, Day: 0, Time: 7200},
			},
		},
		{
			in: "IST-1GMT0,M10.5.0,M3.5.0/1",
			want: Rule{
				StdName: "IST", StdOff: 3600,
				DstName: "GMT", DstOff: 0,
				HasDST: true,
				Start:  TransitionRule{Kind: RuleMonthWeekDay, Month: 10, Week: 5, Day: 0, Time: 7200},
				End:    TransitionRule{Kind: RuleMonthWeekDay, Month: 3, Week: 5, Day: 0, Time: 3600},
			},
		},
		{
			// Version 3 extension: transition hour outside 0..24.
			in: "<-02>2<-01>,M3.5.0/-1,M10.5.0/0",
			want: Rule{
				StdName: "-02", StdOff: -7200,
				DstName: "-01", DstOff: -3600,
				HasDST: true,
				Start:  TransitionRule{Kind: RuleMonthWeekDay, Month: 3, Week: 5, Day: 0, Time: -3600},
				End:    TransitionRule{Kind: RuleMonthWeekDay, Month: 10, Week: 5, Day: 0, Time: 0},
			},
		},
		{
			in: "EST5EDT,0/0,J365/25",
			want: Rule{
				StdName: "EST", StdOff: -18000,
				DstName: "EDT", DstOff: -14400,
				HasDST: true,
				Start:  TransitionRule{Kind: RuleDayOfYear, Day: 0, Time: 0},
				End:    TransitionRule{Kind: RuleJulian, Day: 365, Time: 90000},
			},
		},
		{in: "", wantErr: true},
		{in: "AB5", wantErr: true},
		{in: "CST", wantErr: true},
		{in: "CST6CDT,M13.1.0,M11.1.0", wantErr: true},
		{in: "CST6CDT,M3.2.0", wantErr: true},
		{in: "CST6CDT,M3.2.0,M11.1.0x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRule(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRule() error = %v, wantErr %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("ParseRule() mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

func TestRule_Lookup(t *testing.T) {
	chi, err := ParseRule("CST6CDT,M3.2.0,M11.1.0")
	if err != nil {
		t.Fatal(err)
	}
	syd, err := ParseRule("AEST-10AEDT,M10.1.0,M4.1.0/3")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		rule Rule
		unix int64
		off  int32
		dst  bool
	}{
		{"chicago winter", chi, 1705320000, -21600, false},
		{"chicago summer", chi, 1719835200, -18000, true},
		{"chicago before spring forward", chi, 1710057599, -21600, false},
		{"chicago at spring forward", chi, 1710057600, -18000, true},
		{"chicago before fall back", chi, 1730617199, -18000, true},
		{"chicago at fall back", chi, 1730617200, -21600, false},
		{"sydney december", syd, 1733054400, 39600, true},
		{"sydney june", syd, 1717243200, 36000, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			off, dst, _ := tt.rule.Lookup(tt.unix)
			if off != tt.off || dst != tt.dst {
				t.Errorf("Lookup(%d) = %d, %v, want %d, %v", tt.unix, off, dst, tt.off, tt.dst)
			}
		})
	}
}

func TestZone_Lookup(t *testing.T) {
	z, err := NewZone(chicago())
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		unix int64
		want LocalTime
	}{
		{1104537600, LocalTime{Offset: -21600, Designation: "CST"}}, // before the first transition
		{1143964800, LocalTime{Offset: -18000, Dst: true, Designation: "CDT"}},
		{1162105199, LocalTime{Offset: -18000, Dst: true, Designation: "CDT"}},
		{1162105200, LocalTime{Offset: -21600, Designation: "CST"}},
		{1719835200, LocalTime{Offset: -18000, Dst: true, Designation: "CDT"}}, // footer
	}
	for _, tt := range tests {
		if diff := cmp.Diff(z.Lookup(tt.unix), tt.want); diff != "" {
			t.Errorf("Lookup(%d) mismatch (-got +want):\n%s", tt.unix, diff)
		}
	}
}

func TestZone_VariantOffsets(t *testing.T) {
	chi, err := NewZone(chicago())
	if err != nil {
		t.Fatal(err)
	}
	msk, err := NewZone(moscow())
	if err != nil {
		t.Fatal(err)
	}
	dub, err := NewZone(dublin())
	if err != nil {
		t.Fatal(err)
	}
	central := zone.Offsets{Standard: -21600, Daylight: -18000, HasDaylight: true}
	irish := zone.Offsets{Standard: 0, Daylight: 3600, HasDaylight: true}
	tests := []struct {
		name string
		z    *Zone
		unix int64
		want zone.Offsets
	}{
		{"chicago before data", chi, 1117627200, central},
		{"chicago winter", chi, 1137326400, central},
		{"chicago summer", chi, 1143964800, central},
		{"chicago footer", chi, 1719835200, central},
		{"moscow winter 2010", msk, 1263556800, zone.Offsets{Standard: 10800, Daylight: 14400, HasDaylight: true}},
		{"moscow summer 2010", msk, 1277985600, zone.Offsets{Standard: 10800, Daylight: 14400, HasDaylight: true}},
		{"moscow permanent 2012", msk, 1341144000, zone.Offsets{Standard: 14400}},
		{"moscow footer", msk, 1593604800, zone.Offsets{Standard: 10800}},
		{"dublin winter", dub, 1705320000, irish},
		{"dublin summer", dub, 1720005124, irish},
		{"dublin footer", dub, 1735732800, irish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.z.VariantOffsets(tt.unix), tt.want); diff != "" {
				t.Errorf("VariantOffsets() mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

// chicago is America/Chicago reduced to the 2006 and 2007 transitions.
func chicago() Data {
	return NewData(DataBlock{
		TransitionTimes: []int64{1143964800, 1162105200, 1173600000, 1194159600},
		TransitionTypes: []uint8{1, 0, 1, 0},
		LocalTimeTypeRecords: []LocalTimeTypeRecord{
			{Utoff: -21600, Dst: false, Idx: 0},
			{Utoff: -18000, Dst: true, Idx: 4},
		},
		TimeZoneDesignation: []byte("CST\x00CDT\x00"),
	}, "CST6CDT,M3.2.0,M11.1.0")
}

// dublin is Europe/Dublin in 2024 as zic writes it from the main tzdata
// format: winter GMT is flagged as daylight saving time with a negative
// save, summer IST as standard time.
func dublin() Data {
	return NewData(DataBlock{
		TransitionTimes: []int64{1711846800, 1729990800},
		TransitionTypes: []uint8{1, 0},
		LocalTimeTypeRecords: []LocalTimeTypeRecord{
			{Utoff: 0, Dst: true, Idx: 0},
			{Utoff: 3600, Dst: false, Idx: 4},
		},
		TimeZoneDesignation: []byte("GMT\x00IST\x00"),
	}, "IST-1GMT0,M10.5.0,M3.5.0/1")
}

// moscow is Europe/Moscow from 2010, when it still observed DST, through
// the 2011 switch to permanent +04 and the 2014 return to +03.
func moscow() Data {
	return NewData(DataBlock{
		TransitionTimes: []int64{1269730800, 1288479600, 1301180400, 1414274400},
		TransitionTypes: []uint8{1, 0, 2, 0},
		LocalTimeTypeRecords: []LocalTimeTypeRecord{
			{Utoff: 10800, Dst: false, Idx: 0},
			{Utoff: 14400, Dst: true, Idx: 4},
			{Utoff: 14400, Dst: false, Idx: 0},
		},
		TimeZoneDesignation: []byte("MSK\x00MSD\x00"),
	}, "MSK-3")
}
