// Package mapping implements the run-matching engine and the map store: the
// reusable association between a set of source attributes and a target
// labeled-name template, organized in three tiers (the map being built, the
// previous study map, and the generic template map).
package mapping

import (
	"errors"
	"strings"

	"github.com/neurobids/bidsmapper/internal/schema"
)

// ErrIndexOutOfRange is returned by sample accessors when the index exceeds
// the modality bucket. Fatal to the single call, not to the session.
var ErrIndexOutOfRange = errors.New("sample index out of range")

// RunTemplate pairs the attribute predicate that recognizes a source item
// with the label fill values used to compose its output name.
//
// Attributes maps attribute name → expected value; an empty expected value
// is a wildcard and always satisfies. Labels maps entity key → fill value,
// where a value is a literal, a dynamic reference ("<AttrName>", evaluated
// against the source item at match time), or a counter placeholder
// ("<<1>>", resolved by the run-index resolver). Provenance records the
// source item that produced the template and is informational only.
type RunTemplate struct {
	Provenance string            `yaml:"provenance,omitempty"`
	Attributes map[string]string `yaml:"attributes"`
	Labels     map[string]string `yaml:"labels"`
}

// Clone returns a deep, independent copy of the template.
func (t RunTemplate) Clone() RunTemplate {
	return RunTemplate{
		Provenance: t.Provenance,
		Attributes: cloneStringMap(t.Attributes),
		Labels:     cloneStringMap(t.Labels),
	}
}

// EqualPredicate reports whether two templates have the same matching
// predicate, the equality used for duplicate detection on insert.
func (t RunTemplate) EqualPredicate(other RunTemplate) bool {
	if len(t.Attributes) != len(other.Attributes) {
		return false
	}
	for k, v := range t.Attributes {
		if other.Attributes[k] != v {
			return false
		}
	}
	return true
}

// Map is an ordered collection of run templates grouped by modality, for
// one attribute-source format.
type Map struct {
	Format string                            `yaml:"format"`
	Runs   map[schema.Modality][]RunTemplate `yaml:"runs"`
}

// NewMap returns an empty map for one source format.
func NewMap(format string) *Map {
	return &Map{Format: format, Runs: make(map[schema.Modality][]RunTemplate)}
}

// Clone returns a deep copy; mutating store operations work on clones so
// callers never observe partial mutation.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := NewMap(m.Format)
	for mod, runs := range m.Runs {
		cp := make([]RunTemplate, len(runs))
		for i, r := range runs {
			cp[i] = r.Clone()
		}
		out.Runs[mod] = cp
	}
	return out
}

// Tiers bundles the three maps consulted during a mapping session. New is
// being built and owned by the session; Old and Template are read-only.
type Tiers struct {
	New      *Map
	Old      *Map
	Template *Map
}

// Dynamic value grammar: "<AttrName>" dereferences an attribute of the
// current source item at match time; "<<...>>" is a counter placeholder
// resolved later by the run-index resolver.

// IsCounterPlaceholder reports whether v is a deferred counter placeholder.
func IsCounterPlaceholder(v string) bool {
	return strings.HasPrefix(v, "<<") && strings.HasSuffix(v, ">>")
}

// isAttrRef reports whether v is an immediate attribute reference and
// returns the referenced attribute name.
func isAttrRef(v string) (string, bool) {
	if IsCounterPlaceholder(v) {
		return "", false
	}
	if strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") && len(v) > 2 {
		return v[1 : len(v)-1], true
	}
	return "", false
}

func cloneStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
