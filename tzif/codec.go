package tzif

import (
	"fmt"
	"io"
)

// Data represents a TZif file.
type Data struct {
	Version Version

	V1Header Header
	V1Data   DataBlock

	V2Header Header
	V2Data   DataBlock
	V2Footer Footer
}

// Block returns the data block a reader should use: the 64-bit block for
// version 2+ files and the 32-bit block otherwise.
func (d Data) Block() DataBlock {
	if d.Version > V1 {
		return d.V2Data
	}
	return d.V1Data
}

// Encode writes the given TZif data to the given writer.
// If the version is V1, the V2 fields are not written.
func (d Data) Encode(w io.Writer) error {
	if err := d.V1Header.Write(w); err != nil {
		return fmt.Errorf("write v1 header: %w", err)
	}
	if err := d.V1Data.Write(w, 4); err != nil {
		return fmt.Errorf("write v1 data: %w", err)
	}
	if d.Version == V1 {
		return nil
	}
	if err := d.V2Header.Write(w); err != nil {
		return fmt.Errorf("write v2 header: %w", err)
	}
	if err := d.V2Data.Write(w, 8); err != nil {
		return fmt.Errorf("write v2 data: %w", err)
	}
	if err := d.V2Footer.Write(w); err != nil {
		return fmt.Errorf("write v2 footer: %w", err)
	}
	return nil
}

// DecodeData reads the TZif Data from the given reader.
// If the version is V1, the V2 fields are left zero.
func DecodeData(r io.Reader) (Data, error) {
	var (
		d   Data
		err error
	)
	if d.V1Header, err = ReadHeader(r); err != nil {
		return d, fmt.Errorf("read v1 header: %w", err)
	}
	d.Version = d.V1Header.Version
	if d.V1Data, err = ReadDataBlock(r, d.V1Header, 4); err != nil {
		return d, fmt.Errorf("read v1 data block: %w", err)
	}
	if d.Version == V1 {
		return d, nil
	}
	if d.V2Header, err = ReadHeader(r); err != nil {
		return d, fmt.Errorf("read v2 header: %w", err)
	}
	if d.V2Data, err = ReadDataBlock(r, d.V2Header, 8); err != nil {
		return d, fmt.Errorf("read v2 data block: %w", err)
	}
	if d.V2Footer, err = ReadFooter(r); err != nil {
		return d, fmt.Errorf("read footer: %w", err)
	}
	return d, nil
}

// NewData builds version 2 data for block. The 32-bit block keeps the
// local time types but no transitions, as zic does with -b slim; readers
// are expected to use the 64-bit block and the footer.
func NewData(block DataBlock, tz string) Data {
	v1 := DataBlock{
		LocalTimeTypeRecords: []LocalTimeTypeRecord{block.LocalTimeTypeRecords[0]},
		TimeZoneDesignation:  block.TimeZoneDesignation,
	}
	return Data{
		Version:  V2,
		V1Header: v1.Header(V2),
		V1Data:   v1,
		V2Header: block.Header(V2),
		V2Data:   block,
		V2Footer: Footer{TZString: []byte(tz)},
	}
}
