package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurobids/bidsmapper/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = ""
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(dir, "bidsmapper.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	l.Match("classified something")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte("INFO")) || !bytes.Contains(b, []byte("to file")) {
		t.Errorf("log file content: %s", string(b))
	}
	if !bytes.Contains(b, []byte("MATCH")) {
		t.Errorf("MATCH level missing from file sink: %s", string(b))
	}
}

func TestDebugGatedByVerbose(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(dir, "quiet.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("invisible")
	l.Close()
	b, _ := os.ReadFile(cfg.LogFile)
	if bytes.Contains(b, []byte("invisible")) {
		t.Error("Debug logged without verbose")
	}

	cfg.Verbose = true
	cfg.LogFile = filepath.Join(dir, "loud.log")
	l, err = NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("visible")
	l.Close()
	b, _ = os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte("visible")) {
		t.Error("Debug swallowed despite verbose")
	}
}
