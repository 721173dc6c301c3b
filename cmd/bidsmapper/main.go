// Command bidsmapper is the entrypoint for the bidsmapper CLI. It parses
// flags, validates config and paths, and runs either system check (--check),
// the map summary table (--summary), or the mapping pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/neurobids/bidsmapper/internal/check"
	"github.com/neurobids/bidsmapper/internal/config"
	"github.com/neurobids/bidsmapper/internal/display"
	"github.com/neurobids/bidsmapper/internal/logging"
	"github.com/neurobids/bidsmapper/internal/mapfile"
	"github.com/neurobids/bidsmapper/internal/mapping"
	"github.com/neurobids/bidsmapper/internal/pipeline"
)

// version and commit are set at build time via -ldflags (e.g. Makefile).
var (
	version = "1.0.0-dev"
	commit  = "unknown"
)

func main() {
	// 1. Load config from defaults and CLI flags; exit on parse or
	// validation error.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "bidsmapper: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "bidsmapper: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bidsmapper: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	display.PrintBanner()

	// 2. Lightweight modes exit before the pipeline starts.
	if cfg.CheckOnly {
		cfg.ResolveMapFile()
		if !check.RunCheck(&cfg, log) {
			os.Exit(1)
		}
		os.Exit(0)
	}
	if cfg.SummaryOnly {
		cfg.ResolveMapFile()
		if err := printSummary(&cfg); err != nil {
			log.Error("%v", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// 3. Resolve and validate paths: source must exist, output is created
	// if needed, output must not be inside source.
	sourceAbs, err := absPath(cfg.SourceDir)
	if err != nil {
		log.Error("Source not found: %s", cfg.SourceDir)
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		log.Error("Cannot create output directory: %s", cfg.OutputDir)
		os.Exit(1)
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		log.Error("Cannot resolve output path: %s", cfg.OutputDir)
		os.Exit(1)
	}
	if err := cfg.ValidatePaths(sourceAbs, outputAbs); err != nil {
		log.Error("%v", err)
		log.Error("Choose an output path outside: %s", cfg.SourceDir)
		os.Exit(1)
	}
	cfg.ResolveMapFile()

	log.Info("=== bidsmapper v%s (%s) ===", version, commit)
	log.Info("In:  %s", cfg.SourceDir)
	log.Info("Out: %s", cfg.OutputDir)
	if cfg.DryRun {
		log.Warn("DRY RUN")
	}
	log.Info("")

	// 4. Ensure the external converter is available; fail fast otherwise.
	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	// 5. Run the pipeline under a signal-cancelled context so Ctrl-C stops
	// cleanly between items.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := pipeline.Run(ctx, &cfg, log)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	if stats.Failed > 0 {
		os.Exit(1)
	}
}

// printSummary renders the map document's run summary table (--summary).
func printSummary(cfg *config.Config) error {
	doc, err := mapfile.Load(cfg.MapFile)
	if err != nil {
		return err
	}
	rows, err := mapping.Summarize(doc.Current)
	if err != nil {
		return err
	}
	display.PrintMapSummary(rows)
	return nil
}

// absPath returns the absolute path with symlinks resolved, for comparing
// source vs output hierarchy.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
