package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurobids/bidsmapper/internal/config"
)

type recordLogger struct {
	errors []string
}

func (l *recordLogger) Info(string, ...interface{})    {}
func (l *recordLogger) Success(string, ...interface{}) {}
func (l *recordLogger) Warn(string, ...interface{})    {}
func (l *recordLogger) Error(format string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func TestCheckDeps(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ConverterBin = "definitely-not-a-binary-xyz"
	if err := CheckDeps(&cfg); !errors.Is(err, ErrConverterNotFound) {
		t.Errorf("CheckDeps = %v, want ErrConverterNotFound", err)
	}

	cfg.ConverterBin = "sh"
	if err := CheckDeps(&cfg); err != nil {
		t.Errorf("CheckDeps(sh) = %v, want nil", err)
	}
}

func TestCheckMapFile(t *testing.T) {
	cfg := config.DefaultConfig()
	log := &recordLogger{}

	// Absent file is fine.
	cfg.MapFile = filepath.Join(t.TempDir(), "bidsmap.yaml")
	if !checkMapFile(&cfg, log) {
		t.Error("absent map file flagged as failure")
	}

	// Malformed file is a failure.
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("current: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg.MapFile = bad
	if checkMapFile(&cfg, log) {
		t.Error("malformed map file passed the check")
	}
	if len(log.errors) == 0 {
		t.Error("malformed map file produced no error log")
	}
}
