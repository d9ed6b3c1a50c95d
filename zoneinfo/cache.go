package zoneinfo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/ngrash/go-zoned/tzif"
	"github.com/ngrash/go-zoned/zone"
)

// Cache decodes zones from a file system the first time they are asked
// for. Unlike a Database it does not read the whole tree up front.
//
// A Cache is safe for concurrent use.
type Cache struct {
	fsys fs.FS
	opts Options

	mu    sync.Mutex
	zones map[string]*tzif.Zone // nil value: no usable file
}

// NewCache returns a Cache reading zones from fsys.
func NewCache(fsys fs.FS, opts Options) *Cache {
	return &Cache{fsys: fsys, opts: opts, zones: make(map[string]*tzif.Zone)}
}

// System returns a Cache over DefaultDir. It fails if DefaultDir does not
// exist or holds no zone files.
func System(opts Options) (*Cache, error) {
	fsys := os.DirFS(DefaultDir)
	if ok, err := isTZif(fsys, "Etc/UTC"); err != nil || !ok {
		if err == nil {
			err = errors.New("Etc/UTC is not a TZif file")
		}
		return nil, fmt.Errorf("no zoneinfo in %s: %w", DefaultDir, err)
	}
	return NewCache(fsys, opts), nil
}

// Zone returns the decoded zone with the given IANA name. Files that
// cannot be read or decoded are logged once and reported as missing.
func (c *Cache) Zone(name string) (*tzif.Zone, bool) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if !fs.ValidPath(name) || name == "." {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if z, ok := c.zones[name]; ok {
		return z, z != nil
	}
	z, err := c.load(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.opts.logger().Warn("Skipping zone file", "name", name, "err", err)
		}
		c.zones[name] = nil
		return nil, false
	}
	c.zones[name] = z
	return z, true
}

func (c *Cache) load(name string) (*tzif.Zone, error) {
	b, err := fs.ReadFile(c.fsys, name)
	if err != nil {
		return nil, err
	}
	z, err := tzif.DecodeBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	c.opts.logger().Debug("loaded zone", "name", name)
	return z, nil
}

// VariantOffsets implements zone.NamedOracle.
func (c *Cache) VariantOffsets(name string, unix int64) (zone.Offsets, bool) {
	z, ok := c.Zone(name)
	if !ok {
		return zone.Offsets{}, false
	}
	return z.VariantOffsets(unix), true
}
