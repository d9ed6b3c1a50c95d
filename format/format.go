// Package format is the request boundary: it decodes a request, resolves
// it and formats the result, returning the first error encountered.
package format

import (
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/ngrash/go-zoned/fieldset"
	"github.com/ngrash/go-zoned/pattern"
	"github.com/ngrash/go-zoned/resolve"
	"github.com/ngrash/go-zoned/wire"
	"golang.org/x/text/language"
)

// Formatter renders a resolved value with the given field set for a
// locale. Implementations return *LoadError when they have no data for
// the locale or field set.
type Formatter interface {
	Format(v resolve.Value, set fieldset.Set, tag language.Tag) (string, error)
}

// LocaleError is returned for locales that cannot be parsed.
type LocaleError struct {
	Locale string
	Err    error
}

func (e *LocaleError) Error() string {
	return fmt.Sprintf("parse locale %q: %v", e.Locale, e.Err)
}

func (e *LocaleError) Unwrap() error { return e.Err }

// ErrorKind implements resolve.KindError.
func (e *LocaleError) ErrorKind() resolve.Kind { return resolve.KindParse }

// LoadError is returned by formatters that cannot format for a locale.
type LoadError struct {
	Locale language.Tag
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load date-time formatter for %s: %v", e.Locale, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrorKind implements resolve.KindError.
func (e *LoadError) ErrorKind() resolve.Kind { return resolve.KindFormatterLoad }

// ErrInvalidUTF8 is wrapped by LocaleError for locales that are not
// valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

func localeString(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", &LocaleError{Locale: string(b), Err: ErrInvalidUTF8}
	}
	return string(b), nil
}

// ParseLocale parses a BCP-47 locale.
func ParseLocale(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Tag{}, &LocaleError{Locale: s, Err: err}
	}
	return tag, nil
}

// Service formats requests. The zero value uses a zero resolve.Resolver
// and the Basic formatter.
type Service struct {
	Resolver  *resolve.Resolver
	Formatter Formatter
	Patterns  *pattern.Formatter
	// Logger receives debug records about requests. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
}

// DefaultService is used by the package-level functions.
var DefaultService = &Service{}

func (s *Service) resolver() *resolve.Resolver {
	if s.Resolver == nil {
		return &resolve.Resolver{Logger: s.Logger}
	}
	return s.Resolver
}

func (s *Service) formatter() Formatter {
	if s.Formatter == nil {
		return &Basic{Patterns: s.Patterns}
	}
	return s.Formatter
}

func (s *Service) patterns() *pattern.Formatter {
	if s.Patterns == nil {
		return &pattern.Formatter{}
	}
	return s.Patterns
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Format formats a CBOR spec for a locale with CBOR field set options
// using DefaultService.
func Format(spec, locale, opts []byte) ([]byte, error) {
	return DefaultService.Format(spec, locale, opts)
}

// Format formats a CBOR spec for a locale with CBOR field set options.
func (s *Service) Format(spec, locale, opts []byte) ([]byte, error) {
	sp, err := wire.DecodeSpec(spec)
	if err != nil {
		return nil, err
	}
	loc, err := localeString(locale)
	if err != nil {
		return nil, err
	}
	builder, err := wire.DecodeOptions(opts)
	if err != nil {
		return nil, err
	}
	tag, err := ParseLocale(loc)
	if err != nil {
		return nil, err
	}
	out, err := s.FormatSpec(sp, tag, builder)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// FormatSpec builds the field set, resolves the spec, checks that the
// value has every part the field set renders and formats it.
func (s *Service) FormatSpec(spec resolve.Spec, tag language.Tag, builder fieldset.Builder) (string, error) {
	set, err := builder.Build()
	if err != nil {
		return "", err
	}
	v, err := s.resolver().Resolve(spec)
	if err != nil {
		return "", err
	}
	if err := v.Check(set); err != nil {
		return "", err
	}
	s.logger().Debug("Formatting", "locale", tag, "fields", set.Kind(), "zone", v.Zone().ID, "variant", v.Zone().Variant)
	return s.formatter().Format(v, set, tag)
}

// Pattern formats a CBOR spec for a locale with a CLDR pattern using
// DefaultService.
func Pattern(pat, locale, spec []byte) ([]byte, error) {
	return DefaultService.Pattern(pat, locale, spec)
}

// Pattern formats a CBOR spec for a locale with a CLDR pattern.
func (s *Service) Pattern(pat, locale, spec []byte) ([]byte, error) {
	sp, err := wire.DecodeSpec(spec)
	if err != nil {
		return nil, err
	}
	loc, err := localeString(locale)
	if err != nil {
		return nil, err
	}
	tag, err := ParseLocale(loc)
	if err != nil {
		return nil, err
	}
	out, err := s.PatternSpec(string(pat), tag, sp)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

// PatternSpec resolves the spec and formats it with a CLDR pattern.
func (s *Service) PatternSpec(pat string, tag language.Tag, spec resolve.Spec) (string, error) {
	v, err := s.resolver().Resolve(spec)
	if err != nil {
		return "", err
	}
	p, err := pattern.Parse(pat)
	if err != nil {
		return "", err
	}
	return s.patterns().FormatPattern(p, tag, v)
}
