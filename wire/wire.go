// Package wire decodes resolution requests from CBOR, the format used by
// embedders, and from JSON, the format used on the command line.
//
// A spec is a map with the optional keys "year", "month", "day", "hour",
// "minute", "second", "nanosecond" and "zone". A zone is a map with the
// optional keys "offset" (seconds east of UTC or a string such as
// "-05:00"), "iana" and "bcp47".
//
// Field set options are a map with the optional keys "length",
// "date-fields", "time-precision", "zone-style", "alignment" and
// "year-style", each holding the option name as a string.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/resolve"
)

// DecodeError is returned when a buffer cannot be decoded. Context names
// the buffer, such as "spec" or "opts".
type DecodeError struct {
	Context string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("deserialization error for %s: %v", e.Context, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrorKind implements resolve.KindError.
func (e *DecodeError) ErrorKind() resolve.Kind { return resolve.KindDecode }

type spec struct {
	Year       *int      `cbor:"year" json:"year"`
	Month      *int      `cbor:"month" json:"month"`
	Day        *int      `cbor:"day" json:"day"`
	Hour       *int      `cbor:"hour" json:"hour"`
	Minute     *int      `cbor:"minute" json:"minute"`
	Second     *int      `cbor:"second" json:"second"`
	Nanosecond *int      `cbor:"nanosecond" json:"nanosecond"`
	Zone       *zoneSpec `cbor:"zone" json:"zone"`
}

type zoneSpec struct {
	Offset *offset `cbor:"offset" json:"offset"`
	IANA   *string `cbor:"iana" json:"iana"`
	BCP47  *string `cbor:"bcp47" json:"bcp47"`
}

// offset is either an integer number of seconds or a string.
type offset resolve.OffsetSpec

var errOffsetType = errors.New("offset must be an integer or a string")

func (o *offset) UnmarshalCBOR(data []byte) error {
	var sec int64
	if err := cbor.Unmarshal(data, &sec); err == nil {
		o.Seconds = &sec
		return nil
	}
	var s string
	if err := cbor.Unmarshal(data, &s); err == nil {
		o.Text = &s
		return nil
	}
	return errOffsetType
}

func (o offset) MarshalCBOR() ([]byte, error) {
	if o.Seconds != nil {
		return encMode.Marshal(*o.Seconds)
	}
	if o.Text != nil {
		return encMode.Marshal(*o.Text)
	}
	return encMode.Marshal(nil)
}

func (o *offset) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		o.Text = &s
		return nil
	}
	var sec int64
	if err := json.Unmarshal(data, &sec); err != nil {
		return errOffsetType
	}
	o.Seconds = &sec
	return nil
}

func (s spec) resolve() resolve.Spec {
	r := resolve.Spec{
		Year:       s.Year,
		Month:      s.Month,
		Day:        s.Day,
		Hour:       s.Hour,
		Minute:     s.Minute,
		Second:     s.Second,
		Nanosecond: s.Nanosecond,
	}
	if s.Zone != nil {
		r.Zone = &resolve.ZoneSpec{IANA: s.Zone.IANA, BCP47: s.Zone.BCP47}
		if s.Zone.Offset != nil {
			o := resolve.OffsetSpec(*s.Zone.Offset)
			r.Zone.Offset = &o
		}
	}
	return r
}

func fromResolve(r resolve.Spec) spec {
	s := spec{
		Year:       r.Year,
		Month:      r.Month,
		Day:        r.Day,
		Hour:       r.Hour,
		Minute:     r.Minute,
		Second:     r.Second,
		Nanosecond: r.Nanosecond,
	}
	if r.Zone != nil {
		s.Zone = &zoneSpec{IANA: r.Zone.IANA, BCP47: r.Zone.BCP47}
		if r.Zone.Offset != nil {
			o := offset(*r.Zone.Offset)
			s.Zone.Offset = &o
		}
	}
	return s
}

var encMode = mustEncMode(cbor.CoreDetEncOptions())

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// DecodeSpec decodes a CBOR spec.
func DecodeSpec(b []byte) (resolve.Spec, error) {
	var s spec
	if err := cbor.Unmarshal(b, &s); err != nil {
		return resolve.Spec{}, &DecodeError{Context: "spec", Err: err}
	}
	return s.resolve(), nil
}

// DecodeSpecJSON decodes a JSON spec.
func DecodeSpecJSON(b []byte) (resolve.Spec, error) {
	var s spec
	if err := json.Unmarshal(b, &s); err != nil {
		return resolve.Spec{}, &DecodeError{Context: "spec", Err: err}
	}
	return s.resolve(), nil
}

// EncodeSpec encodes s as deterministic CBOR. Absent fields are encoded
// as null.
func EncodeSpec(s resolve.Spec) ([]byte, error) {
	return encMode.Marshal(fromResolve(s))
}

type options struct {
	Length        *string `cbor:"length" json:"length"`
	DateFields    *string `cbor:"date-fields" json:"date-fields"`
	TimePrecision *string `cbor:"time-precision" json:"time-precision"`
	ZoneStyle     *string `cbor:"zone-style" json:"zone-style"`
	Alignment     *string `cbor:"alignment" json:"alignment"`
	YearStyle     *string `cbor:"year-style" json:"year-style"`
}

func (o options) builder() (fieldset.Builder, error) {
	var (
		b    fieldset.Builder
		errs []error
	)
	set := func(p *string, parse func(string) error) {
		if p == nil {
			return
		}
		if err := parse(*p); err != nil {
			errs = append(errs, err)
		}
	}
	set(o.Length, func(s string) error {
		v, err := fieldset.ParseLength(s)
		b.Length = &v
		return err
	})
	set(o.DateFields, func(s string) error {
		v, err := fieldset.ParseDateFields(s)
		b.DateFields = &v
		return err
	})
	set(o.TimePrecision, func(s string) error {
		v, err := fieldset.ParseTimePrecision(s)
		b.TimePrecision = &v
		return err
	})
	set(o.ZoneStyle, func(s string) error {
		v, err := fieldset.ParseZoneStyle(s)
		b.ZoneStyle = &v
		return err
	})
	set(o.Alignment, func(s string) error {
		v, err := fieldset.ParseAlignment(s)
		b.Alignment = &v
		return err
	})
	set(o.YearStyle, func(s string) error {
		v, err := fieldset.ParseYearStyle(s)
		b.YearStyle = &v
		return err
	})
	if len(errs) > 0 {
		return fieldset.Builder{}, errors.Join(errs...)
	}
	return b, nil
}

// DecodeOptions decodes CBOR field set options into a Builder.
func DecodeOptions(b []byte) (fieldset.Builder, error) {
	var o options
	if err := cbor.Unmarshal(b, &o); err != nil {
		return fieldset.Builder{}, &DecodeError{Context: "opts", Err: err}
	}
	builder, err := o.builder()
	if err != nil {
		return fieldset.Builder{}, &DecodeError{Context: "opts", Err: err}
	}
	return builder, nil
}

// DecodeOptionsJSON decodes JSON field set options into a Builder.
func DecodeOptionsJSON(b []byte) (fieldset.Builder, error) {
	var o options
	if err := json.Unmarshal(b, &o); err != nil {
		return fieldset.Builder{}, &DecodeError{Context: "opts", Err: err}
	}
	builder, err := o.builder()
	if err != nil {
		return fieldset.Builder{}, &DecodeError{Context: "opts", Err: err}
	}
	return builder, nil
}

// EncodeOptions encodes the options of b as deterministic CBOR, omitting
// unset options.
func EncodeOptions(b fieldset.Builder) ([]byte, error) {
	m := make(map[string]string)
	if b.Length != nil {
		m["length"] = b.Length.String()
	}
	if b.DateFields != nil {
		m["date-fields"] = b.DateFields.String()
	}
	if b.TimePrecision != nil {
		m["time-precision"] = b.TimePrecision.String()
	}
	if b.ZoneStyle != nil {
		m["zone-style"] = b.ZoneStyle.String()
	}
	if b.Alignment != nil {
		m["alignment"] = b.Alignment.String()
	}
	if b.YearStyle != nil {
		m["year-style"] = b.YearStyle.String()
	}
	return encMode.Marshal(m)
}
