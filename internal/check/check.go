// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for the external converter and the map
// document.
package check

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/neurobids/bidsmapper/internal/config"
	"github.com/neurobids/bidsmapper/internal/mapfile"
)

// ErrConverterNotFound is returned by CheckDeps when the configured
// converter executable is not on PATH.
var ErrConverterNotFound = errors.New("converter not found on PATH")

// Logger is the minimal logging interface needed by RunCheck. Defined here
// (rather than importing the logging package) so that check remains
// dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive --check flow: converter availability and
// version, and map document readability. Informational only; it reports
// whether everything passed but does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkConverter(cfg, log)
	ok = checkMapFile(cfg, log) && ok
	return ok
}

func checkConverter(cfg *config.Config, log Logger) bool {
	path, err := exec.LookPath(cfg.ConverterBin)
	if err != nil {
		log.Error("%s not found on PATH", cfg.ConverterBin)
		return false
	}
	log.Success("Converter: %s", path)

	out, err := exec.Command(cfg.ConverterBin, "--version").CombinedOutput()
	if err != nil && len(out) == 0 {
		log.Warn("%s found but --version failed: %v", cfg.ConverterBin, err)
		return true
	}
	if first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n"); first != "" {
		log.Info("  %s", first)
	}
	return true
}

func checkMapFile(cfg *config.Config, log Logger) bool {
	if cfg.MapFile == "" {
		log.Info("Map document: none configured (a fresh one is created per session)")
		return true
	}
	if _, err := os.Stat(cfg.MapFile); os.IsNotExist(err) {
		log.Info("Map document: %s (absent, will be created)", cfg.MapFile)
		return true
	}
	if _, err := mapfile.Load(cfg.MapFile); err != nil {
		log.Error("Map document: %v", err)
		return false
	}
	log.Success("Map document: %s", cfg.MapFile)
	return true
}

// CheckDeps is the fail-fast pre-pipeline validation: the converter must be
// resolvable on PATH.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.ConverterBin); err != nil {
		return ErrConverterNotFound
	}
	return nil
}
