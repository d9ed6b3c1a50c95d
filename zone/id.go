package zone

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ID is a BCP-47 time zone identifier as used in the "tz" key of the
// Unicode locale extension, for example "uschi" for America/Chicago.
type ID string

const (
	// Unknown is the identifier of a zone that is only known by its offset.
	Unknown ID = "unk"
	// UTCID identifies Coordinated Universal Time.
	UTCID ID = "utc"
)

// IsUnknown reports whether id is empty or Unknown.
func (id ID) IsUnknown() bool {
	return id == "" || id == Unknown
}

func (id ID) String() string {
	if id == "" {
		return string(Unknown)
	}
	return string(id)
}

var errMalformedID = errors.New("expected a single subtag of 2 to 8 alphanumeric characters")

// ParseIDError is returned by ParseID for malformed identifiers.
type ParseIDError struct {
	ID  string
	Err error
}

func (e *ParseIDError) Error() string {
	return fmt.Sprintf("parse time zone id %q: %v", e.ID, e.Err)
}

func (e *ParseIDError) Unwrap() error { return e.Err }

// ParseID parses a BCP-47 time zone identifier. The result is lower case.
// Only the syntax is checked; whether the zone exists is up to the
// OffsetOracle consulted later.
func ParseID(s string) (ID, error) {
	if len(s) < 2 || len(s) > 8 {
		return "", &ParseIDError{ID: s, Err: errMalformedID}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return "", &ParseIDError{ID: s, Err: errMalformedID}
		}
	}
	return ID(strings.ToLower(s)), nil
}

// FromTag returns the time zone identifier requested by the "tz" key of
// the Unicode extension of tag, if any.
func FromTag(tag language.Tag) (ID, bool) {
	v := tag.TypeForKey("tz")
	if v == "" {
		return "", false
	}
	id, err := ParseID(v)
	if err != nil {
		return "", false
	}
	return id, true
}
