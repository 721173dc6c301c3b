package config

// This file implements CLI flag parsing and help text. Flags are grouped
// into mapping, converter, behavior, and display. Negated flags (e.g.
// --include-derived) are applied after Parse so Config defaults hold unless
// set.

import (
	"flag"
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses os.Args into cfg. On --help or --version it prints and
// exits. On error it returns non-nil (e.g. unknown flag, missing positional
// args).
func ParseFlags(cfg *Config, version string) error {
	fs := flag.NewFlagSet("bidsmapper", flag.ContinueOnError)
	fs.Usage = func() { printUsage(fs) }

	var negated negatedFlags
	var converterArgs string

	defineMappingFlags(fs, cfg)
	defineConverterFlags(fs, cfg, &converterArgs)
	defineBehaviorFlags(fs, cfg, &negated)
	defineDisplayFlags(fs, cfg, &negated)

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	applyNegatedFlags(cfg, &negated)
	if converterArgs != "" {
		cfg.ConverterArgs = strings.Fields(converterArgs)
	}

	if negated.showHelp {
		printUsage(fs)
		os.Exit(0)
	}
	if negated.showVersion {
		fmt.Fprintln(os.Stdout, "bidsmapper v"+version)
		os.Exit(0)
	}

	return parsePositionalArgs(fs, cfg)
}

// negatedFlags holds boolean flags that are applied after Parse. These
// either invert a default (includeDerived → SkipDerived=false) or trigger
// exit (showHelp, showVersion).
type negatedFlags struct {
	includeDerived bool
	forceColor     bool
	noColor        bool
	showVersion    bool
	showHelp       bool
}

// defineMappingFlags registers --map, --subject, --session, --subject-attr.
func defineMappingFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.MapFile, "map", "", "Map document path (default: <output_dir>/bidsmap.yaml)")
	fs.StringVar(&cfg.MapFile, "b", "", "Same as --map")
	fs.StringVar(&cfg.Subject, "subject", "", "Fixed subject label (default: derived from --subject-attr)")
	fs.StringVar(&cfg.Session, "session", "", "Session label (default: none)")
	fs.StringVar(&cfg.SubjectAttr, "subject-attr", cfg.SubjectAttr, "Attribute the subject label is derived from")
}

// defineConverterFlags registers --converter and --converter-args.
func defineConverterFlags(fs *flag.FlagSet, cfg *Config, args *string) {
	fs.StringVar(&cfg.ConverterBin, "converter", cfg.ConverterBin, "External converter executable")
	fs.StringVar(args, "converter-args", "", "Extra converter arguments (space separated)")
}

// defineBehaviorFlags registers dry-run, include-derived, summary.
func defineBehaviorFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Preview only; do not convert")
	fs.BoolVar(&cfg.DryRun, "d", false, "Same as --dry-run")
	fs.BoolVar(&n.includeDerived, "include-derived", false, "Also process derived/secondary series")
	fs.BoolVar(&cfg.SummaryOnly, "summary", false, "Print the map summary table and exit")
	fs.BoolVar(&cfg.SummaryOnly, "s", false, "Same as --summary")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *flag.FlagSet, cfg *Config, n *negatedFlags) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&cfg.Verbose, "v", false, "Same as --verbose")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Run system diagnostics and exit")
	fs.BoolVar(&cfg.CheckOnly, "c", false, "Same as --check")
	fs.StringVar(&cfg.LogFile, "log", "", "Append logs to file")
	fs.StringVar(&cfg.LogFile, "l", "", "Same as --log")
	fs.BoolVar(&n.showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&n.showHelp, "help", false, "Show this help")
	fs.BoolVar(&n.showHelp, "h", false, "Same as --help")
}

func applyNegatedFlags(cfg *Config, n *negatedFlags) {
	if n.includeDerived {
		cfg.SkipDerived = false
	}
	if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
	if n.noColor {
		cfg.ColorMode = ColorNever
	}
}

// parsePositionalArgs consumes source_dir and output_dir. Both are optional
// in check and summary modes.
func parsePositionalArgs(fs *flag.FlagSet, cfg *Config) error {
	args := fs.Args()
	if len(args) > 2 {
		return fmt.Errorf("unexpected argument %q", args[2])
	}
	if len(args) > 0 {
		cfg.SourceDir = NormalizeDirArg(args[0])
	}
	if len(args) > 1 {
		cfg.OutputDir = NormalizeDirArg(args[1])
	}
	return nil
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprint(os.Stderr, `Usage: bidsmapper [options] <source_dir> <output_dir>

Maps heterogeneous imaging source series onto a standardized output naming
scheme, converting each matched series via the external converter.

Mapping:
  -b, --map FILE          Map document path (default: <output_dir>/bidsmap.yaml)
      --subject LABEL     Fixed subject label (default: derived from --subject-attr)
      --session LABEL     Session label (default: none)
      --subject-attr NAME Attribute the subject label is derived from (default: PatientID)

Converter:
      --converter BIN     External converter executable (default: dcm2niix)
      --converter-args S  Extra converter arguments, space separated

Behavior:
  -d, --dry-run           Preview only; do not convert
      --include-derived   Also process derived/secondary series
  -s, --summary           Print the map summary table and exit

Display:
      --color / --no-color  Force / disable colored logs
  -v, --verbose           Verbose output
  -c, --check             Run system diagnostics and exit
  -l, --log FILE          Append logs to file
      --version           Print version and exit
  -h, --help              Show this help
`)
	_ = fs
}
