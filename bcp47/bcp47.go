// Package bcp47 maps between IANA time zone names and the BCP-47 time zone
// identifiers defined by CLDR for the "tz" key of the Unicode locale
// extension.
//
// CLDR's common/bcp47/timezone.xml is embedded and backs Default. Newer
// releases of the file can be loaded with ParseCLDR.
package bcp47

import (
	_ "embed"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/ngrash/go-zoned/zone"
)

//go:embed timezone.xml
var embedded string

// Table is a bidirectional mapping between BCP-47 time zone identifiers
// and IANA names. Lookups of IANA names are case-insensitive.
//
// A Table is read-only after construction and safe for concurrent use.
type Table struct {
	ids   map[string]zone.ID   // lower case IANA name -> id
	names map[zone.ID][]string // id -> IANA names, preferred first
}

func newTable() *Table {
	return &Table{
		ids:   make(map[string]zone.ID),
		names: make(map[zone.ID][]string),
	}
}

func (t *Table) add(id zone.ID, names ...string) {
	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := t.ids[key]; ok {
			continue
		}
		t.ids[key] = id
		t.names[id] = append(t.names[id], name)
	}
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := ParseCLDR(strings.NewReader(embedded))
		if err != nil {
			panic(fmt.Sprintf("bcp47: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

type cldrType struct {
	Name       string `xml:"name,attr"`
	Alias      string `xml:"alias,attr"`
	IANA       string `xml:"iana,attr"`
	Deprecated bool   `xml:"deprecated,attr"`
	Preferred  string `xml:"preferred,attr"`
}

type cldrDocument struct {
	Keys []struct {
		Name  string     `xml:"name,attr"`
		Types []cldrType `xml:"type"`
	} `xml:"keyword>key"`
}

// ParseCLDR parses CLDR's common/bcp47/timezone.xml.
//
// Deprecated identifiers with a preferred replacement contribute their
// aliases to the replacement. The "iana" attribute, when present, names
// the preferred IANA name of an identifier.
func ParseCLDR(r io.Reader) (*Table, error) {
	var doc cldrDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode CLDR time zones: %w", err)
	}
	t := newTable()
	var deprecated []cldrType
	for _, key := range doc.Keys {
		if key.Name != "tz" {
			continue
		}
		for _, typ := range key.Types {
			if typ.Deprecated {
				deprecated = append(deprecated, typ)
				continue
			}
			id, err := zone.ParseID(typ.Name)
			if err != nil {
				return nil, err
			}
			aliases := strings.Fields(typ.Alias)
			if typ.IANA != "" {
				aliases = append([]string{typ.IANA}, aliases...)
			}
			if _, ok := t.names[id]; !ok {
				t.names[id] = nil
			}
			t.add(id, aliases...)
		}
	}
	for _, typ := range deprecated {
		if typ.Preferred == "" {
			continue
		}
		id, err := zone.ParseID(typ.Preferred)
		if err != nil {
			return nil, err
		}
		if _, ok := t.names[id]; !ok {
			continue
		}
		t.add(id, strings.Fields(typ.Alias)...)
	}
	if len(t.names) == 0 {
		return nil, fmt.Errorf("decode CLDR time zones: no \"tz\" key")
	}
	return t, nil
}

// WithLinks returns a copy of t that also maps each link name to the
// identifier of its target, for links whose name t does not know yet.
// links maps link names to target names, as returned by
// tzdb.Database.Links.
func (t *Table) WithLinks(links map[string]string, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	c := newTable()
	for k, v := range t.ids {
		c.ids[k] = v
	}
	for k, v := range t.names {
		c.names[k] = append([]string(nil), v...)
	}
	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sort.Strings(names)
	added := 0
	for _, name := range names {
		if _, ok := c.ids[strings.ToLower(name)]; ok {
			continue
		}
		id, ok := c.IanaToID(links[name])
		if !ok {
			continue
		}
		c.add(id, name)
		added++
	}
	logger.Debug("Added tzdb links to BCP-47 table", "links", len(links), "added", added)
	return c
}

// IanaToID returns the BCP-47 identifier of the IANA zone name.
func (t *Table) IanaToID(name string) (zone.ID, bool) {
	id, ok := t.ids[strings.ToLower(name)]
	return id, ok
}

// IANA returns the preferred IANA name of id.
func (t *Table) IANA(id zone.ID) (string, bool) {
	names := t.names[id]
	if len(names) == 0 {
		return "", false
	}
	return names[0], true
}

// Aliases returns all IANA names of id, the preferred name first.
func (t *Table) Aliases(id zone.ID) []string {
	return append([]string(nil), t.names[id]...)
}

// IDs returns all identifiers in lexical order.
func (t *Table) IDs() []zone.ID {
	ids := make([]zone.ID, 0, len(t.names))
	for id := range t.names {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Oracle adapts an oracle keyed by IANA name to one keyed by BCP-47
// identifier. The IANA names of an identifier are tried in order until
// named has data for one of them.
func (t *Table) Oracle(named zone.NamedOracle) zone.OffsetOracle {
	return oracle{t: t, named: named}
}

type oracle struct {
	t     *Table
	named zone.NamedOracle
}

func (o oracle) VariantOffsets(id zone.ID, unix int64) (zone.Offsets, bool) {
	for _, name := range o.t.names[id] {
		if offsets, ok := o.named.VariantOffsets(name, unix); ok {
			return offsets, true
		}
	}
	return zone.Offsets{}, false
}
