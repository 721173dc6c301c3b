// Package config holds runtime configuration: defaults, CLI flag parsing,
// and validation.
package config

import (
	"errors"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by [ParseFlags] before being passed (by pointer) to packages
// that need it.
type Config struct {
	// Paths (set from positional args).
	SourceDir string
	OutputDir string

	// Map document. Empty means <OutputDir>/bidsmap.yaml, resolved by
	// [Config.ResolveMapFile] once the output dir is known.
	MapFile string

	// Subject/session labels. Subject empty means derive from SubjectAttr.
	Subject     string
	Session     string
	SubjectAttr string // Default: "PatientID".

	// External converter.
	ConverterBin  string   // Default: "dcm2niix".
	ConverterArgs []string // Default: ["-b", "y", "-z", "y"].

	// Behavior flags.
	DryRun      bool
	SkipDerived bool // Default: true. Cleared by --include-derived.
	SummaryOnly bool // Print the map summary table and exit.
	CheckOnly   bool // Run --check diagnostics and exit.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
}

// DefaultConfig returns a Config with all defaults applied. Used as the
// base before [ParseFlags] applies CLI overrides.
func DefaultConfig() Config {
	return Config{
		SubjectAttr:   "PatientID",
		ConverterBin:  "dcm2niix",
		ConverterArgs: []string{"-b", "y", "-z", "y"},
		SkipDerived:   true,
		ColorMode:     ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path. The
// filesystem root "/" is returned unchanged so we don't produce an empty
// string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// ResolveMapFile fills the default map document path once the output
// directory is known.
func (c *Config) ResolveMapFile() {
	if c.MapFile == "" && c.OutputDir != "" {
		c.MapFile = filepath.Join(c.OutputDir, "bidsmap.yaml")
	}
}

// Validate checks enum fields and, outside the check/summary modes, that
// both positional directories were given.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}
	if c.ConverterBin == "" {
		return errors.New("converter binary must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.SummaryOnly {
		if c.MapFile == "" && c.OutputDir == "" {
			return errors.New("--summary needs a map file (--map) or an output_dir")
		}
		return nil
	}
	if c.SourceDir == "" || c.OutputDir == "" {
		return errors.New("need exactly source_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or
// equal to) the resolved source directory, so conversion output is never
// re-discovered as input. Both arguments must be absolute, symlink-resolved
// paths.
func (c *Config) ValidatePaths(sourceAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == sourceAbs || strings.HasPrefix(outputAbs+sep, sourceAbs+sep) {
		return errors.New("output directory must not be inside source directory")
	}
	return nil
}
