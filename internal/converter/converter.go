// Package converter invokes the external image-conversion executable and
// reports the artifact set it produced. The converter is an opaque
// synchronous collaborator: one invocation per source item, a success or
// failure result, and a possibly postfix-tagged list of output files.
package converter

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/neurobids/bidsmapper/internal/config"
	"github.com/neurobids/bidsmapper/internal/naming"
)

// Artifact is one physical output file of a conversion, with the
// uncontrolled postfix token the converter appended to the requested base
// name ("" when none).
type Artifact struct {
	Path  string
	Token string
}

// Result holds the outcome of one converter invocation. Stderr is captured
// for diagnostics on failure.
type Result struct {
	Artifacts []Artifact
	Stderr    string
	Err       error
}

// Convert runs the configured converter against one series directory,
// asking for baseName inside destDir, then collects the artifacts actually
// produced. In verbose mode stderr is tee'd through in real time; otherwise
// it is captured silently.
func Convert(ctx context.Context, cfg *config.Config, seriesDir, destDir, baseName string) Result {
	args := append([]string{}, cfg.ConverterArgs...)
	args = append(args, "-f", baseName, "-o", destDir, seriesDir)

	cmd := exec.CommandContext(ctx, cfg.ConverterBin, args...)

	var stderrBuf bytes.Buffer
	if cfg.Verbose {
		cmd.Stderr = io.MultiWriter(&stderrBuf, os.Stderr)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	res := Result{Stderr: stderrBuf.String(), Err: err}
	if err != nil {
		return res
	}

	res.Artifacts, res.Err = collectArtifacts(destDir, baseName)
	return res
}

// collectArtifacts lists the files the converter created for baseName and
// extracts the postfix token from each: the stem minus the base, with the
// joining underscore stripped ("sub-01_T1w_e2" → "e2").
func collectArtifacts(destDir, baseName string) ([]Artifact, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return nil, err
	}

	var out []Artifact
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		stem := naming.Stem(e.Name())
		if !strings.HasPrefix(stem, baseName) {
			continue
		}
		token := strings.TrimPrefix(strings.TrimPrefix(stem, baseName), "_")
		out = append(out, Artifact{
			Path:  filepath.Join(destDir, e.Name()),
			Token: token,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Tokens returns the distinct postfix tokens of an artifact set, in first
// occurrence order. An artifact without a postfix contributes the empty
// token.
func Tokens(artifacts []Artifact) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range artifacts {
		if seen[a.Token] {
			continue
		}
		seen[a.Token] = true
		out = append(out, a.Token)
	}
	return out
}
