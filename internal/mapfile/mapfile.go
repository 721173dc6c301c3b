// Package mapfile persists the tiered run map as a human-editable YAML
// document with three top-level sections, one per map tier. The document is
// stable under repeated load/save with no edits (map keys marshal in sorted
// order, template lists keep their order).
package mapfile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/neurobids/bidsmapper/internal/mapping"
	"github.com/neurobids/bidsmapper/internal/naming"
	"github.com/neurobids/bidsmapper/internal/schema"
)

// Document is the persisted form of a mapping session: the map produced by
// the session (current), the one it started from (previous), and the
// generic fallback heuristics (template).
type Document struct {
	Current  *mapping.Map `yaml:"current,omitempty"`
	Previous *mapping.Map `yaml:"previous,omitempty"`
	Template *mapping.Map `yaml:"template,omitempty"`
}

// Load reads and validates a map document. A malformed document is fatal to
// the whole session, so errors here are returned rather than logged.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed map document %s: %w", path, err)
	}
	for _, m := range []*mapping.Map{doc.Current, doc.Previous, doc.Template} {
		if err := validate(m); err != nil {
			return nil, fmt.Errorf("map document %s: %w", path, err)
		}
	}
	return &doc, nil
}

// Save writes the document with two-space indentation.
func Save(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// validate checks the closed modality set and the duplicate invariant: no
// two templates of one modality may render the same name pattern while
// sharing a matching predicate.
func validate(m *mapping.Map) error {
	if m == nil {
		return nil
	}
	for mod, runs := range m.Runs {
		if err := schema.Check(mod); err != nil {
			return err
		}
		for i := range runs {
			for j := i + 1; j < len(runs); j++ {
				if !runs[i].EqualPredicate(runs[j]) {
					continue
				}
				ni, err := naming.Compose(mod, "*", "*", runs[i].Labels, runs[i].Labels[schema.KeyRun])
				if err != nil {
					return err
				}
				nj, err := naming.Compose(mod, "*", "*", runs[j].Labels, runs[j].Labels[schema.KeyRun])
				if err != nil {
					return err
				}
				if ni == nj {
					return fmt.Errorf("duplicate %s template %q (entries %d and %d)", mod, ni, i, j)
				}
			}
		}
	}
	return nil
}
