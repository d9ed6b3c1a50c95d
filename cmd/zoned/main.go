// Command zoned formats dates, times and time zones.
//
// Usage:
//
//	zoned [flags] format [-options json] <spec json>
//	zoned [flags] pattern [-locale tag] <pattern> <spec json>
//	zoned [flags] locale <tag>
//	zoned [flags] calendar <tag>
//
// A spec is a JSON object such as
//
//	{"year": 2024, "month": 7, "day": 3, "hour": 6, "minute": 12,
//	 "zone": {"offset": "-05", "bcp47": "uschi"}}
//
// and options name field set knobs in kebab-case, for example
// {"date-fields": "YMD", "time-precision": "minute", "zone-style": "location"}.
// A spec of "-" is read from standard input.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ngrash/go-zoned/calendar"
	"github.com/ngrash/go-zoned/format"
	"github.com/ngrash/go-zoned/internal/config"
	"github.com/ngrash/go-zoned/resolve"
	"github.com/ngrash/go-zoned/wire"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr))
}

type env struct {
	cfg    config.Config
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.FromEnv(getenv)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 2
	}
	fs := flag.NewFlagSet("zoned", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfg.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: zoned [flags] format|pattern|locale|calendar ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	logger, err := cfg.Logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return 2
	}
	e := &env{cfg: cfg, logger: logger, stdin: stdin, stdout: stdout}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "format":
		err = e.format(ctx, rest)
	case "pattern":
		err = e.pattern(ctx, rest)
	case "locale":
		err = e.locale(rest)
	case "calendar":
		err = e.calendar(rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v (%s)\n", cmd, err, resolve.KindOf(err))
		return 1
	}
	return 0
}

func (e *env) service(ctx context.Context) (*format.Service, error) {
	data, err := e.cfg.LoadData(ctx, nil, e.logger)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("Loaded zone data", "source", data.Source)
	return &format.Service{Resolver: data.Resolver(e.logger), Logger: e.logger}, nil
}

func (e *env) readSpec(arg string) (resolve.Spec, error) {
	b := []byte(arg)
	if arg == "-" {
		var err error
		if b, err = io.ReadAll(e.stdin); err != nil {
			return resolve.Spec{}, fmt.Errorf("reading spec: %w", err)
		}
	}
	return wire.DecodeSpecJSON(b)
}

func (e *env) format(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("format", flag.ContinueOnError)
	opts := fs.String("options", `{"date-fields": "YMD", "time-precision": "second", "zone-style": "localized-offset-long"}`, "field set `options` as JSON")
	locale := fs.String("locale", e.cfg.Locale, "BCP-47 `locale`")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("want one spec argument, got %d", fs.NArg())
	}
	spec, err := e.readSpec(fs.Arg(0))
	if err != nil {
		return err
	}
	builder, err := wire.DecodeOptionsJSON([]byte(*opts))
	if err != nil {
		return err
	}
	tag, err := format.ParseLocale(*locale)
	if err != nil {
		return err
	}
	svc, err := e.service(ctx)
	if err != nil {
		return err
	}
	out, err := svc.FormatSpec(spec, tag, builder)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, out)
	return nil
}

func (e *env) pattern(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pattern", flag.ContinueOnError)
	locale := fs.String("locale", e.cfg.Locale, "BCP-47 `locale`")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("want pattern and spec arguments, got %d arguments", fs.NArg())
	}
	spec, err := e.readSpec(fs.Arg(1))
	if err != nil {
		return err
	}
	tag, err := format.ParseLocale(*locale)
	if err != nil {
		return err
	}
	svc, err := e.service(ctx)
	if err != nil {
		return err
	}
	out, err := svc.PatternSpec(fs.Arg(0), tag, spec)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, out)
	return nil
}

func (e *env) locale(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want one locale argument, got %d", len(args))
	}
	tag, err := format.ParseLocale(args[0])
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(format.Describe(tag), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, string(b))
	return nil
}

func (e *env) calendar(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("want one locale argument, got %d", len(args))
	}
	tag, err := format.ParseLocale(args[0])
	if err != nil {
		return err
	}
	r := calendar.Resolver{Logger: e.logger}
	fmt.Fprintln(e.stdout, r.Resolve(tag))
	return nil
}
