package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ngrash/go-zoned/civil"
	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/zone"
)

var (
	// ErrPartialDate is returned when some but not all of year, month and
	// day are given.
	ErrPartialDate = errors.New("a partial date was provided: either year, month and day must be provided or none")
	// ErrPartialTime is returned when minute, second or nanosecond are
	// given without an hour.
	ErrPartialTime = errors.New("a partial time was provided: when specifying time, hour must always be present")
	// ErrIanaAndBcp47 is returned when a zone is given both as an IANA name
	// and as a BCP-47 identifier.
	ErrIanaAndBcp47 = errors.New("both IANA and BCP-47 ids were specified, expected at most one")
	// ErrNoOffsetData is returned when an offset and a date are given but
	// the Resolver has no offset data to tell standard from daylight time.
	ErrNoOffsetData = errors.New("no time zone offset data is available to determine the zone variant")
	// ErrMissingValues is matched by every *MissingValuesError.
	ErrMissingValues = errors.New("some values are missing to format the date with the specified fields")
)

// UnknownIanaError is returned for IANA names without a BCP-47 identifier.
type UnknownIanaError struct {
	Name string
}

func (e *UnknownIanaError) Error() string {
	return fmt.Sprintf("the time zone %q was not found", e.Name)
}

// OffsetMismatchError is returned when a zone never uses the given offset
// around the given instant.
type OffsetMismatchError struct {
	ID      zone.ID
	Offset  zone.Offset
	Offsets zone.Offsets
}

func (e *OffsetMismatchError) Error() string {
	return fmt.Sprintf("the time zone %s will never have the offset %s: it has these offsets: %s", e.ID, e.Offset, e.Offsets)
}

// MissingValuesError is returned by Value.Check when the value lacks parts
// the field set renders.
type MissingValuesError struct {
	Kind fieldset.Kind
	// Missing lists the absent parts: "date", "time" or "zone".
	Missing []string
}

func (e *MissingValuesError) Error() string {
	return fmt.Sprintf("%v: field set %v needs %s", ErrMissingValues, e.Kind, strings.Join(e.Missing, ", "))
}

func (e *MissingValuesError) Is(target error) bool { return target == ErrMissingValues }

// Kind classifies errors returned by this module.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindPartialDate
	KindPartialTime
	KindDateRange
	KindUnknownIana
	KindIanaAndBcp47
	KindInvalidOffset
	KindOffsetMismatch
	KindMissingValues
	KindDecode
	KindParse
	KindFormatterLoad
	KindFieldSet
	KindNoOffsetData
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindPartialDate:    "partial-date",
	KindPartialTime:    "partial-time",
	KindDateRange:      "date-range",
	KindUnknownIana:    "unknown-iana",
	KindIanaAndBcp47:   "iana-and-bcp47",
	KindInvalidOffset:  "invalid-offset",
	KindOffsetMismatch: "offset-mismatch",
	KindMissingValues:  "missing-values",
	KindDecode:         "decode",
	KindParse:          "parse",
	KindFormatterLoad:  "formatter-load",
	KindFieldSet:       "field-set",
	KindNoOffsetData:   "no-offset-data",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("<undefined error kind (%d)>", k)
}

// KindError is implemented by errors of packages built on top of resolve
// to report their Kind.
type KindError interface {
	error
	ErrorKind() Kind
}

// KindOf classifies err. It returns KindUnknown for nil and for errors
// not produced by this module.
func KindOf(err error) Kind {
	var (
		rangeErr    *civil.RangeError
		ianaErr     *UnknownIanaError
		mismatchErr *OffsetMismatchError
		idErr       *zone.ParseIDError
		builderErr  *fieldset.BuilderError
		kindErr     KindError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrPartialDate):
		return KindPartialDate
	case errors.Is(err, ErrPartialTime):
		return KindPartialTime
	case errors.As(err, &rangeErr):
		return KindDateRange
	case errors.As(err, &ianaErr):
		return KindUnknownIana
	case errors.Is(err, ErrIanaAndBcp47):
		return KindIanaAndBcp47
	case errors.Is(err, zone.ErrInvalidOffset):
		return KindInvalidOffset
	case errors.As(err, &mismatchErr):
		return KindOffsetMismatch
	case errors.Is(err, ErrNoOffsetData):
		return KindNoOffsetData
	case errors.Is(err, ErrMissingValues):
		return KindMissingValues
	case errors.As(err, &idErr):
		return KindParse
	case errors.As(err, &builderErr):
		return KindFieldSet
	case errors.As(err, &kindErr):
		return kindErr.ErrorKind()
	}
	return KindUnknown
}
