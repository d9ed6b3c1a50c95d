// Command tzc compiles tzdata sources into a zoneinfo directory of TZif
// files.
//
// Usage:
//
//	tzc [-from 1901] [-to 2037] [-debug] -o <dir> <tzdata dir | iana[:version]>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ngrash/go-zoned/internal/config"
	"github.com/ngrash/go-zoned/tzc"
)

var (
	fromFlag  = flag.Int("from", tzc.DefaultOptions.From, "first `year` to write transitions for")
	toFlag    = flag.Int("to", tzc.DefaultOptions.To, "last `year` to write transitions for")
	outFlag   = flag.String("o", "", "output `directory`")
	debugFlag = flag.Bool("debug", false, "log debug records")
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 || *outFlag == "" {
		return fmt.Errorf("Usage: tzc [flags] -o <dir> <tzdata dir | iana[:version]>")
	}
	level := slog.LevelInfo
	if *debugFlag {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	db, source, err := config.Config{Tzdata: args[0]}.LoadTzdb(ctx, nil, logger)
	if err != nil {
		return err
	}
	files, err := tzc.CompileBytes(db, tzc.Options{From: *fromFlag, To: *toFlag, Logger: logger})
	if err != nil {
		return err
	}
	for name, b := range files {
		p := filepath.Join(*outFlag, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, b, 0o644); err != nil {
			return err
		}
	}
	logger.Info("compiled zones", "source", source, "zones", len(files), "dir", *outFlag)
	return nil
}
