package naming

import (
	"fmt"
	"strings"

	"github.com/neurobids/bidsmapper/internal/schema"
)

// prefixKeys maps the short entity prefix (without hyphen) to its entity
// key. The inverse of the prefixes in the schema tables.
var prefixKeys = map[string]string{
	"sub":  schema.KeySubject,
	"ses":  schema.KeySession,
	"task": schema.KeyTask,
	"acq":  schema.KeyAcquisition,
	"ce":   schema.KeyContrast,
	"rec":  schema.KeyReconstruction,
	"dir":  schema.KeyDirection,
	"run":  schema.KeyRun,
	"mod":  schema.KeyModifier,
	"echo": schema.KeyEcho,
	"part": schema.KeyPart,
}

// Parse splits a rendered name back into its entity values, the inverse of
// [Compose]. A piece with a known "key-" prefix is assigned to that entity;
// the piece without one is the suffix. Parse only accepts names produced by
// Compose, so a second unprefixed piece is an error.
func Parse(name string) (map[string]string, error) {
	vals := make(map[string]string)
	if name == "" {
		return vals, nil
	}

	for _, piece := range strings.Split(name, Separator) {
		head, rest, found := strings.Cut(piece, "-")
		if found {
			if key, ok := prefixKeys[head]; ok {
				vals[key] = rest
				continue
			}
		}
		if _, dup := vals[schema.KeySuffix]; dup {
			return nil, fmt.Errorf("unrecognized name piece %q in %q", piece, name)
		}
		vals[schema.KeySuffix] = piece
	}
	return vals, nil
}
