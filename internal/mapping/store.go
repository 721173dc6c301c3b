package mapping

import (
	"fmt"

	"github.com/neurobids/bidsmapper/internal/naming"
	"github.com/neurobids/bidsmapper/internal/schema"
)

// Store operations. Every operation validates the modality against the
// closed enumeration and fails with schema.ErrInvalidModality otherwise.
// Reads return deep copies; mutations either work in place on the
// session-owned map (Insert) or return a whole new map value (DeleteSample,
// MoveSample) so the input is never left half-mutated.

// Exists reports whether a template with an equal matching predicate is
// already present in the modality bucket.
func Exists(m *Map, mod schema.Modality, candidate RunTemplate) (bool, error) {
	if err := schema.Check(mod); err != nil {
		return false, err
	}
	for _, t := range m.Runs[mod] {
		if t.EqualPredicate(candidate) {
			return true, nil
		}
	}
	return false, nil
}

// Insert appends a template to the modality bucket, creating the bucket on
// first write.
func Insert(m *Map, mod schema.Modality, t RunTemplate) error {
	if err := schema.Check(mod); err != nil {
		return err
	}
	if m.Runs == nil {
		m.Runs = make(map[schema.Modality][]RunTemplate)
	}
	m.Runs[mod] = append(m.Runs[mod], t.Clone())
	return nil
}

// CountSamples returns the number of templates stored for a modality.
func CountSamples(m *Map, mod schema.Modality) (int, error) {
	if err := schema.Check(mod); err != nil {
		return 0, err
	}
	return len(m.Runs[mod]), nil
}

// ReadSample returns a deep copy of the template at index.
func ReadSample(m *Map, mod schema.Modality, index int) (RunTemplate, error) {
	if err := schema.Check(mod); err != nil {
		return RunTemplate{}, err
	}
	runs := m.Runs[mod]
	if index < 0 || index >= len(runs) {
		return RunTemplate{}, fmt.Errorf("%w: %s[%d] of %d", ErrIndexOutOfRange, mod, index, len(runs))
	}
	return runs[index].Clone(), nil
}

// DeleteSample returns a new map with the template at index removed. The
// input map is never mutated.
func DeleteSample(m *Map, mod schema.Modality, index int) (*Map, error) {
	if err := schema.Check(mod); err != nil {
		return nil, err
	}
	runs := m.Runs[mod]
	if index < 0 || index >= len(runs) {
		return nil, fmt.Errorf("%w: %s[%d] of %d", ErrIndexOutOfRange, mod, index, len(runs))
	}
	out := m.Clone()
	out.Runs[mod] = append(out.Runs[mod][:index], out.Runs[mod][index+1:]...)
	return out, nil
}

// MoveSample re-files a template from one modality bucket into another:
// delete-then-append on a clone. Supports manual re-classification of a
// mismatched item; the input map is never mutated.
func MoveSample(m *Map, fromMod schema.Modality, fromIndex int, toMod schema.Modality, t RunTemplate) (*Map, error) {
	out, err := DeleteSample(m, fromMod, fromIndex)
	if err != nil {
		return nil, err
	}
	if err := Insert(out, toMod, t); err != nil {
		return nil, err
	}
	return out, nil
}

// Summary is one row of the human-facing map listing.
type Summary struct {
	Modality     schema.Modality
	Provenance   string
	RenderedName string
}

// Summarize renders every stored template with subject and session as
// wildcard placeholders and the run index as its stored literal or
// placeholder. For listing only, never for matching.
func Summarize(m *Map) ([]Summary, error) {
	var out []Summary
	if m == nil {
		return out, nil
	}
	for _, mod := range schema.Modalities {
		for _, t := range m.Runs[mod] {
			name, err := naming.Compose(mod, "*", "*", t.Labels, t.Labels[schema.KeyRun])
			if err != nil {
				return nil, err
			}
			out = append(out, Summary{
				Modality:     mod,
				Provenance:   t.Provenance,
				RenderedName: name,
			})
		}
	}
	return out, nil
}
