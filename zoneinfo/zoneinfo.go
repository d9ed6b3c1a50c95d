// Package zoneinfo loads compiled TZif files from a zoneinfo directory,
// such as /usr/share/zoneinfo, and answers variant offset queries by IANA
// zone name.
//
// All files are decoded by Load; a Database never touches the file system
// afterwards and is safe for concurrent use.
package zoneinfo

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/ngrash/go-zoned/tzif"
	"github.com/ngrash/go-zoned/zone"
)

// DefaultDir is where most Unix systems install compiled zone files.
const DefaultDir = "/usr/share/zoneinfo"

// Database maps IANA zone names to decoded zones.
type Database struct {
	zones map[string]*tzif.Zone
}

// Options configure Load and LoadAll.
type Options struct {
	// Logger receives debug records about skipped files. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Load decodes the named zones from fsys. Names that do not exist in fsys
// are skipped; any other read or decode failure aborts the load.
func Load(fsys fs.FS, names []string, opts Options) (*Database, error) {
	log := opts.logger()
	db := &Database{zones: make(map[string]*tzif.Zone, len(names))}
	for _, name := range names {
		b, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug("zone file not found", "name", name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		z, err := tzif.DecodeBytes(b)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", name, err)
		}
		db.zones[name] = z
	}
	log.Debug("loaded zoneinfo", "zones", len(db.zones), "requested", len(names))
	return db, nil
}

// LoadAll decodes every TZif file below the root of fsys. Files without
// the TZif magic, like zone1970.tab or leapseconds, are skipped, as are
// the posix/ and right/ duplicate trees.
func LoadAll(fsys fs.FS, opts Options) (*Database, error) {
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == "posix" || p == "right" {
				return fs.SkipDir
			}
			return nil
		}
		ok, err := isTZif(fsys, p)
		if err != nil {
			return err
		}
		if ok {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking zoneinfo: %w", err)
	}
	return Load(fsys, names, opts)
}

// Dir loads all zones from the directory dir of the host file system.
func Dir(dir string, opts Options) (*Database, error) {
	return LoadAll(os.DirFS(dir), opts)
}

func isTZif(fsys fs.FS, name string) (bool, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return false, err
	}
	defer f.Close()
	magic := make([]byte, len(tzif.Magic))
	n, _ := f.Read(magic)
	return n == len(magic) && string(magic) == string(tzif.Magic[:]), nil
}

// Zone returns the decoded zone with the given IANA name.
func (db *Database) Zone(name string) (*tzif.Zone, bool) {
	z, ok := db.zones[path.Clean(name)]
	return z, ok
}

// Names returns the names of all loaded zones in lexical order.
func (db *Database) Names() []string {
	names := make([]string, 0, len(db.zones))
	for name := range db.zones {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VariantOffsets implements zone.NamedOracle.
func (db *Database) VariantOffsets(name string, unix int64) (zone.Offsets, bool) {
	z, ok := db.Zone(strings.TrimPrefix(name, "/"))
	if !ok {
		return zone.Offsets{}, false
	}
	return z.VariantOffsets(unix), true
}
