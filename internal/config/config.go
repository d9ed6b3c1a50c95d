// Package config holds the settings shared by the commands: where offset
// data comes from, the default locale and logging.
//
// Settings are read from the environment first and can then be overridden
// by command line flags:
//
//	ZONED_ZONEINFO    -zoneinfo    directory of compiled TZif files
//	ZONED_TZDATA      -tzdata      tzdata source directory, or "iana[:version]"
//	ZONED_LOCALE      -locale      default locale
//	ZONED_LOG_LEVEL   -log-level   debug, info, warn or error
//	ZONED_LOG_FORMAT  -log-format  text or json
package config

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ngrash/go-zoned/bcp47"
	"github.com/ngrash/go-zoned/resolve"
	"github.com/ngrash/go-zoned/tzdb"
	"github.com/ngrash/go-zoned/tzdb/ianadist"
	"github.com/ngrash/go-zoned/zone"
	"github.com/ngrash/go-zoned/zoneinfo"
)

// Config are the command settings.
type Config struct {
	// Zoneinfo is a directory of compiled TZif files. It is used when
	// Tzdata is empty. If both are empty, offsets always resolve to
	// standard time.
	Zoneinfo string
	// Tzdata is a directory of tzdata source files, or "iana" to download
	// the latest release, or "iana:2024b" for a specific one.
	Tzdata string
	// Locale is used when a command is not given one.
	Locale    string
	LogLevel  slog.Level
	LogFormat string
}

// Default returns the defaults: the system zoneinfo directory, English and
// text logs at info level.
func Default() Config {
	return Config{
		Zoneinfo:  zoneinfo.DefaultDir,
		Locale:    "en",
		LogLevel:  slog.LevelInfo,
		LogFormat: "text",
	}
}

// FromEnv returns the defaults overridden by the environment variables
// that getenv reports as non-empty.
func FromEnv(getenv func(string) string) (Config, error) {
	c := Default()
	if v := getenv("ZONED_ZONEINFO"); v != "" {
		c.Zoneinfo = v
	}
	if v := getenv("ZONED_TZDATA"); v != "" {
		c.Tzdata = v
	}
	if v := getenv("ZONED_LOCALE"); v != "" {
		c.Locale = v
	}
	if v := getenv("ZONED_LOG_LEVEL"); v != "" {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("ZONED_LOG_LEVEL: %w", err)
		}
	}
	if v := getenv("ZONED_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return c, c.validate()
}

// Load returns the settings from the process environment.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

// RegisterFlags defines flags on fs that override c. The current values
// of c are the flag defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Zoneinfo, "zoneinfo", c.Zoneinfo, "`dir`ectory of compiled TZif files")
	fs.StringVar(&c.Tzdata, "tzdata", c.Tzdata, "tzdata source `dir`ectory, or iana[:version] to download a release")
	fs.StringVar(&c.Locale, "locale", c.Locale, "default BCP-47 `locale`")
	fs.TextVar(&c.LogLevel, "log-level", c.LogLevel, "log `level`: debug, info, warn or error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log `format`: text or json")
}

// ErrLogFormat is returned for log formats other than text and json.
var ErrLogFormat = errors.New("unknown log format")

func (c Config) validate() error {
	switch c.LogFormat {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("%w %q", ErrLogFormat, c.LogFormat)
}

// Logger returns a logger writing to w in the configured format and level.
func (c Config) Logger(w io.Writer) (*slog.Logger, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// Data is the zone data selected by a Config.
type Data struct {
	// Zones is nil if no offset data is configured. Resolvers then fall
	// back to resolve.SystemZones().
	Zones zone.OffsetOracle
	Names *bcp47.Table
	// Source describes where Zones came from.
	Source string
}

// Resolver returns a resolver using d.
func (d Data) Resolver(logger *slog.Logger) *resolve.Resolver {
	return &resolve.Resolver{Zones: d.Zones, Names: d.Names, Logger: logger}
}

// LoadData loads the configured zone data. client is used for "iana"
// downloads; if nil, ianadist.DefaultClient is used.
func (c Config) LoadData(ctx context.Context, client *ianadist.Client, logger *slog.Logger) (Data, error) {
	switch {
	case c.Tzdata != "":
		db, source, err := c.LoadTzdb(ctx, client, logger)
		if err != nil {
			return Data{}, err
		}
		return tzdbData(db, source, logger), nil
	case c.Zoneinfo != "":
		db, err := zoneinfo.Dir(c.Zoneinfo, zoneinfo.Options{Logger: logger})
		if err != nil {
			return Data{}, fmt.Errorf("loading zoneinfo from %s: %w", c.Zoneinfo, err)
		}
		names := bcp47.Default()
		return Data{Zones: names.Oracle(db), Names: names, Source: c.Zoneinfo}, nil
	}
	return Data{Names: bcp47.Default(), Source: "none"}, nil
}

// ErrNoTzdata is returned by LoadTzdb if no tzdata source is configured.
var ErrNoTzdata = errors.New("no tzdata source configured")

// LoadTzdb reads the configured tzdata sources, either from a directory or
// from an IANA release, and returns them with a description of the source.
func (c Config) LoadTzdb(ctx context.Context, client *ianadist.Client, logger *slog.Logger) (*tzdb.Database, string, error) {
	if c.Tzdata == "" {
		return nil, "", ErrNoTzdata
	}
	if c.Tzdata != "iana" && !strings.HasPrefix(c.Tzdata, "iana:") {
		db, err := tzdb.Load(os.DirFS(c.Tzdata), tzdb.Options{Logger: logger})
		if err != nil {
			return nil, "", fmt.Errorf("loading tzdata from %s: %w", c.Tzdata, err)
		}
		return db, c.Tzdata, nil
	}
	if client == nil {
		client = ianadist.DefaultClient
	}
	var (
		rel *ianadist.Release
		err error
	)
	if version, ok := strings.CutPrefix(c.Tzdata, "iana:"); ok {
		rel, _, err = client.Version(ctx, version, "")
	} else {
		rel, _, err = client.Latest(ctx, "")
	}
	if err != nil {
		return nil, "", fmt.Errorf("downloading tzdata: %w", err)
	}
	db, err := tzdb.FromRelease(rel, tzdb.Options{Logger: logger})
	if err != nil {
		return nil, "", fmt.Errorf("loading tzdata %s: %w", rel.Version, err)
	}
	return db, "iana " + rel.Version, nil
}

// tzdbData maps the links of db onto the embedded BCP-47 table so that
// zones renamed by a release still resolve.
func tzdbData(db *tzdb.Database, source string, logger *slog.Logger) Data {
	names := bcp47.Default().WithLinks(db.Links(), logger)
	return Data{Zones: names.Oracle(db), Names: names, Source: source}
}
