package naming

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrCollisionUnresolved is returned when the resolver exceeds its retry
// bound. Monotonic incrementing makes this unreachable in practice; if it
// fires anyway it is fatal for the single item only.
var ErrCollisionUnresolved = errors.New("run-index collision unresolved")

const maxIndexTries = 10000

// Logger is the minimal logging surface the resolver needs. Defined here
// (rather than importing the logging package) so naming stays
// dependency-light and testable with a mock.
type Logger interface {
	Warn(string, ...interface{})
}

// Collection is the destination-side view used for uniqueness checks: the
// output directory contents plus the scan ledger, keyed by name stem
// (filename with all extension variants stripped).
type Collection interface {
	Has(stem string) bool
	Remove(stem string) error
}

// Stem strips every extension variant from a filename: everything from the
// first dot of the base name ("sub-01_T1w.nii.gz" → "sub-01_T1w").
func Stem(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

var reRunIndex = regexp.MustCompile(`run-([0-9]+)`)

// IndexResolver guarantees a rendered name is unique within one destination
// collection by incrementing the run-index entity until no collision
// remains.
type IndexResolver struct {
	coll Collection
	log  Logger
}

// NewIndexResolver returns a resolver bound to one destination collection.
func NewIndexResolver(coll Collection, log Logger) *IndexResolver {
	return &IndexResolver{coll: coll, log: log}
}

// Resolve returns the final collision-free name for candidate. autoIndex
// reports whether the run index came from a counter placeholder (and may
// therefore be incremented); a fixed index or an index-less name is treated
// as a deliberate reuse: the existing artifact set is deleted with a
// warning rather than silently overwritten twice.
func (r *IndexResolver) Resolve(candidate string, autoIndex bool) (string, error) {
	if !r.coll.Has(Stem(candidate)) {
		return candidate, nil
	}

	m := reRunIndex.FindStringSubmatch(candidate)
	if m == nil || !autoIndex {
		r.log.Warn("Output %q already exists; deleting previous artifact set before rewrite", candidate)
		if err := r.coll.Remove(Stem(candidate)); err != nil {
			return "", err
		}
		return candidate, nil
	}

	idx, err := strconv.Atoi(m[1])
	if err != nil {
		return "", err
	}
	for try := 0; try < maxIndexTries; try++ {
		idx++
		next := reRunIndex.ReplaceAllString(candidate, "run-"+strconv.Itoa(idx))
		if !r.coll.Has(Stem(next)) {
			return next, nil
		}
	}
	return "", ErrCollisionUnresolved
}

// LedgerView is the read side of the scan ledger the resolver consults.
type LedgerView interface {
	Has(stem string) bool
}

// DirCollection implements [Collection] over an output directory plus the
// session's scan ledger. The directory is re-read on every check so the
// resolution stays deterministic against whatever is actually on disk.
type DirCollection struct {
	Dir    string
	Ledger LedgerView
}

// Has reports whether any file in the directory or any ledger entry shares
// the given stem.
func (c *DirCollection) Has(stem string) bool {
	if c.Ledger != nil && c.Ledger.Has(stem) {
		return true
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && Stem(e.Name()) == stem {
			return true
		}
	}
	return false
}

// Remove deletes every file in the directory sharing the stem.
func (c *DirCollection) Remove(stem string) error {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || Stem(e.Name()) != stem {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
