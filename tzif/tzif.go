// Package tzif implements the TZif file format according to RFC 8536.
// https://datatracker.ietf.org/doc/html/rfc8536
//
// Besides decoding and encoding, the package answers the questions the
// resolver needs from a zone: which local time type is in effect at an
// instant, and which standard and daylight offsets the zone uses around it.
package tzif

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// All multi-octet integer values are stored big-endian, two's complement.
var order = binary.BigEndian

// Version represents the version of a TZif file.
// Version 1 files store 32-bit time values, version 2 and later add a
// second data block with 64-bit time values and a footer.
type Version byte

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	case V4:
		return "V4 (0x34)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", v)
	}
}

const (
	V1 Version = 0x00
	V2 Version = 0x32 // '2'
	V3 Version = 0x33 // '3', TZ string extensions allowed in the footer
	V4 Version = 0x34 // '4', leap second table may be truncated
)

// Magic is the four-octet ASCII sequence "TZif".
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// Header is the header of a TZif data block.
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	Version  Version
	Reserved [15]byte
	Isutcnt  uint32 // number of UT/local indicators, 0 or typecnt
	Isstdcnt uint32 // number of standard/wall indicators, 0 or typecnt
	Leapcnt  uint32 // number of leap-second records
	Timecnt  uint32 // number of transition times
	Typecnt  uint32 // number of local time type records, never zero
	Charcnt  uint32 // octets of time zone designations, never zero
}

// Write writes the magic and the header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// ReadHeader reads the magic and the header from r.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, fmt.Errorf("invalid magic: %v", magic)
	}
	err := binary.Read(r, order, &h)
	return h, err
}

// LocalTimeTypeRecord is a local time type.
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeTypeRecord struct {
	// Utoff is the number of seconds added to UT to get local time.
	Utoff int32
	// Dst is true if the type is daylight saving time.
	Dst bool
	// Idx indexes the designation of the type in TimeZoneDesignation.
	Idx uint8
}

// LeapSecondRecord is a leap-second record. Occur is stored with the
// time size of the block it belongs to.
type LeapSecondRecord struct {
	Occur int64
	Corr  int32
}

// DataBlock is a TZif data block. The same type is used for the 32-bit
// version 1 block and the 64-bit version 2+ block; the header passed to
// ReadDataBlock and the timeSize passed to Write decide the encoding.
//
//	+---------------------------------------------------------+
//	|  transition times          (timecnt x TIME_SIZE)        |
//	+---------------------------------------------------------+
//	|  transition types          (timecnt)                    |
//	+---------------------------------------------------------+
//	|  local time type records   (typecnt x 6)                |
//	+---------------------------------------------------------+
//	|  time zone designations    (charcnt)                    |
//	+---------------------------------------------------------+
//	|  leap-second records       (leapcnt x (TIME_SIZE + 4))  |
//	+---------------------------------------------------------+
//	|  standard/wall indicators  (isstdcnt)                   |
//	+---------------------------------------------------------+
//	|  UT/local indicators       (isutcnt)                    |
//	+---------------------------------------------------------+
type DataBlock struct {
	TransitionTimes        []int64
	TransitionTypes        []uint8
	LocalTimeTypeRecords   []LocalTimeTypeRecord
	TimeZoneDesignation    []byte
	LeapSecondRecords      []LeapSecondRecord
	StandardWallIndicators []bool
	UTLocalIndicators      []bool
}

// Header returns a header describing b.
func (b DataBlock) Header(v Version) Header {
	return Header{
		Version:  v,
		Isutcnt:  uint32(len(b.UTLocalIndicators)),
		Isstdcnt: uint32(len(b.StandardWallIndicators)),
		Leapcnt:  uint32(len(b.LeapSecondRecords)),
		Timecnt:  uint32(len(b.TransitionTimes)),
		Typecnt:  uint32(len(b.LocalTimeTypeRecords)),
		Charcnt:  uint32(len(b.TimeZoneDesignation)),
	}
}

// Designation returns the NUL-terminated designation starting at idx.
func (b DataBlock) Designation(idx uint8) string {
	if int(idx) >= len(b.TimeZoneDesignation) {
		return ""
	}
	s := b.TimeZoneDesignation[idx:]
	if i := bytes.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	return string(s)
}

// Write writes b to w using 4-octet (version 1) or 8-octet time values.
func (b DataBlock) Write(w io.Writer, timeSize int) error {
	if err := writeTimes(w, b.TransitionTimes, timeSize); err != nil {
		return fmt.Errorf("transition times: %w", err)
	}
	if err := binary.Write(w, order, b.TransitionTypes); err != nil {
		return fmt.Errorf("transition types: %w", err)
	}
	for _, r := range b.LocalTimeTypeRecords {
		if err := binary.Write(w, order, r); err != nil {
			return fmt.Errorf("local time type record: %w", err)
		}
	}
	if _, err := w.Write(b.TimeZoneDesignation); err != nil {
		return fmt.Errorf("time zone designations: %w", err)
	}
	for _, r := range b.LeapSecondRecords {
		if err := writeTimes(w, []int64{r.Occur}, timeSize); err != nil {
			return fmt.Errorf("leap second record: %w", err)
		}
		if err := binary.Write(w, order, r.Corr); err != nil {
			return fmt.Errorf("leap second record: %w", err)
		}
	}
	if err := binary.Write(w, order, b.StandardWallIndicators); err != nil {
		return fmt.Errorf("standard/wall indicators: %w", err)
	}
	if err := binary.Write(w, order, b.UTLocalIndicators); err != nil {
		return fmt.Errorf("UT/local indicators: %w", err)
	}
	return nil
}

func writeTimes(w io.Writer, times []int64, timeSize int) error {
	if timeSize == 8 {
		return binary.Write(w, order, times)
	}
	narrow := make([]int32, len(times))
	for i, t := range times {
		narrow[i] = int32(t)
	}
	return binary.Write(w, order, narrow)
}

func readTimes(r io.Reader, n uint32, timeSize int) ([]int64, error) {
	times := make([]int64, n)
	if timeSize == 8 {
		err := binary.Read(r, order, times)
		return times, err
	}
	narrow := make([]int32, n)
	if err := binary.Read(r, order, narrow); err != nil {
		return nil, err
	}
	for i, t := range narrow {
		times[i] = int64(t)
	}
	return times, nil
}

// ReadDataBlock reads the data block described by h from r.
func ReadDataBlock(r io.Reader, h Header, timeSize int) (DataBlock, error) {
	var (
		b   DataBlock
		err error
	)
	if h.Timecnt > 0 {
		if b.TransitionTimes, err = readTimes(r, h.Timecnt, timeSize); err != nil {
			return b, fmt.Errorf("reading transition times: %w", err)
		}
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if err := binary.Read(r, order, b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		b.LocalTimeTypeRecords = make([]LocalTimeTypeRecord, h.Typecnt)
		if err := binary.Read(r, order, b.LocalTimeTypeRecords); err != nil {
			return b, fmt.Errorf("reading local time type records: %w", err)
		}
	}
	if h.Charcnt > 0 {
		b.TimeZoneDesignation = make([]byte, h.Charcnt)
		if _, err := io.ReadFull(r, b.TimeZoneDesignation); err != nil {
			return b, fmt.Errorf("reading time zone designation: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		b.LeapSecondRecords = make([]LeapSecondRecord, h.Leapcnt)
		for i := range b.LeapSecondRecords {
			occur, err := readTimes(r, 1, timeSize)
			if err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
			b.LeapSecondRecords[i].Occur = occur[0]
			if err := binary.Read(r, order, &b.LeapSecondRecords[i].Corr); err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
		}
	}
	if h.Isstdcnt > 0 {
		b.StandardWallIndicators = make([]bool, h.Isstdcnt)
		if err := binary.Read(r, order, b.StandardWallIndicators); err != nil {
			return b, fmt.Errorf("reading standard/wall indicators: %w", err)
		}
	}
	if h.Isutcnt > 0 {
		b.UTLocalIndicators = make([]bool, h.Isutcnt)
		if err := binary.Read(r, order, b.UTLocalIndicators); err != nil {
			return b, fmt.Errorf("reading UT/local indicators: %w", err)
		}
	}
	return b, nil
}

// Footer is the footer of a version 2+ TZif file.
//
//	+---+--------------------+---+
//	| NL|  TZ string (0...)  |NL |
//	+---+--------------------+---+
//
// TZString is a POSIX TZ string describing local time after the last
// transition, or empty if that information is not available.
type Footer struct {
	TZString []byte
}

const asciiNewLine = byte(0x0A)

func (f Footer) Write(w io.Writer) error {
	buf := make([]byte, 0, len(f.TZString)+2)
	buf = append(buf, asciiNewLine)
	buf = append(buf, f.TZString...)
	buf = append(buf, asciiNewLine)
	_, err := w.Write(buf)
	return err
}

func ReadFooter(r io.Reader) (Footer, error) {
	var f Footer
	buf := make([]byte, 1)
	if _, err := io.ReadFull(r, buf); err != nil {
		return f, fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != asciiNewLine {
		return f, fmt.Errorf("expected newline: %v", buf[0])
	}
	var b []byte
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return f, fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == asciiNewLine {
			break
		}
		b = append(b, buf[0])
	}
	f.TZString = b
	return f, nil
}
