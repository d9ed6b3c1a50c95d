package format

import (
	"strings"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/text/language"
)

// Locale is the breakdown of a parsed locale returned by LocaleInfo.
type Locale struct {
	ID         LanguageID `cbor:"id" json:"id"`
	Extensions Extensions `cbor:"extensions" json:"extensions"`
}

// LanguageID holds the subtags of a locale that precede its extensions.
// Script and Region are nil if the locale does not name them.
type LanguageID struct {
	Language string   `cbor:"language" json:"language"`
	Script   *string  `cbor:"script" json:"script"`
	Region   *string  `cbor:"region" json:"region"`
	Variants []string `cbor:"variants" json:"variants"`
}

// Extensions are the extensions of a locale by kind.
type Extensions struct {
	Unicode   Unicode   `cbor:"unicode" json:"unicode"`
	Transform Transform `cbor:"transform" json:"transform"`
	Private   []string  `cbor:"private" json:"private"`
	// Other holds extensions with other singletons, such as "a-foo".
	Other []string `cbor:"other" json:"other"`
}

// Unicode is the -u- extension. Keywords are written as in the locale,
// for example "ca-buddhist-nu-thai".
type Unicode struct {
	Keywords   string   `cbor:"keywords" json:"keywords"`
	Attributes []string `cbor:"attributes" json:"attributes"`
}

// Transform is the -t- extension.
type Transform struct {
	Lang   *LanguageID `cbor:"lang" json:"lang"`
	Fields string      `cbor:"fields" json:"fields"`
}

var localeEncMode = mustEncMode(cbor.CoreDetEncOptions())

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	em, err := opts.EncMode()
	if err != nil {
		panic(err)
	}
	return em
}

// LocaleInfo parses a locale and returns the CBOR encoding of its Locale
// breakdown.
func LocaleInfo(locale []byte) ([]byte, error) {
	s, err := localeString(locale)
	if err != nil {
		return nil, err
	}
	tag, err := ParseLocale(s)
	if err != nil {
		return nil, err
	}
	return localeEncMode.Marshal(Describe(tag))
}

// Describe returns the breakdown of tag. Subtags that the tag does not
// name are not filled in with likely values.
func Describe(tag language.Tag) Locale {
	out := Locale{
		ID: languageID(tag),
		Extensions: Extensions{
			Unicode: Unicode{Attributes: []string{}},
			Private: []string{},
			Other:   []string{},
		},
	}
	for _, ext := range tag.Extensions() {
		// The first token is the singleton.
		subtags := ext.Tokens()[1:]
		switch ext.Type() {
		case 'u':
			out.Extensions.Unicode = unicodeExtension(subtags)
		case 't':
			out.Extensions.Transform = transformExtension(subtags)
		case 'x':
			out.Extensions.Private = subtags
		default:
			out.Extensions.Other = append(out.Extensions.Other, ext.String())
		}
	}
	return out
}

func languageID(tag language.Tag) LanguageID {
	base, script, region := tag.Raw()
	id := LanguageID{Language: base.String(), Variants: []string{}}
	if script != (language.Script{}) {
		s := script.String()
		id.Script = &s
	}
	if region != (language.Region{}) {
		r := region.String()
		id.Region = &r
	}
	for _, v := range tag.Variants() {
		id.Variants = append(id.Variants, v.String())
	}
	return id
}

// unicodeExtension splits the subtags of a -u- extension into the leading
// attributes and the keywords. Keys have two characters; attributes have
// three to eight.
func unicodeExtension(subtags []string) Unicode {
	u := Unicode{Attributes: []string{}}
	i := 0
	for ; i < len(subtags) && len(subtags[i]) > 2; i++ {
		u.Attributes = append(u.Attributes, subtags[i])
	}
	u.Keywords = strings.Join(subtags[i:], "-")
	return u
}

// transformExtension splits the subtags of a -t- extension into the source
// language and the fields. Field keys are a letter followed by a digit.
func transformExtension(subtags []string) Transform {
	var t Transform
	i := 0
	for i < len(subtags) && !isTransformKey(subtags[i]) {
		i++
	}
	if i > 0 {
		if lang, err := language.Parse(strings.Join(subtags[:i], "-")); err == nil {
			id := languageID(lang)
			t.Lang = &id
		}
	}
	t.Fields = strings.Join(subtags[i:], "-")
	return t
}

func isTransformKey(s string) bool {
	return len(s) == 2 && 'a' <= s[0] && s[0] <= 'z' && '0' <= s[1] && s[1] <= '9'
}
