package mapping

import (
	"strings"

	"github.com/neurobids/bidsmapper/internal/naming"
	"github.com/neurobids/bidsmapper/internal/schema"
)

// AttrFunc reads one attribute of the current source item. It must be pure
// for the lifetime of the item so classification stays idempotent.
type AttrFunc func(name string) string

// MatchAttributeKeys are the attribute names recorded into a new template's
// matching predicate when an item is registered. Keys the source cannot
// provide end up as empty expected values, i.e. wildcards.
var MatchAttributeKeys = []string{
	"SeriesDescription",
	"ProtocolName",
	"SequenceName",
	"ScanningSequence",
	"MRAcquisitionType",
	"ImageType",
	"EchoNumbers",
	"EchoTime",
	"RepetitionTime",
	"FlipAngle",
	"PhaseEncodingDirection",
}

// MatchResult is the outcome of classifying one source item.
type MatchResult struct {
	Modality  schema.Modality
	Run       RunTemplate // filled copy, never the stored original
	InOld     bool        // true when the previous-study map matched
	AutoIndex bool        // true when the run label is a counter placeholder
}

// Match classifies a source item against the tiered maps: the previous
// study map first, then the generic template map. The first template whose
// predicate is satisfied wins; its labels are returned as a filled copy
// with immediate attribute references dereferenced. When nothing matches,
// the item routes to the extra_data modality with labels filled from its
// own attributes (not an error).
func Match(attrs AttrFunc, tiers Tiers) (MatchResult, error) {
	for _, tier := range []struct {
		m     *Map
		inOld bool
	}{
		{tiers.Old, true},
		{tiers.Template, false},
	} {
		if tier.m == nil {
			continue
		}
		for _, mod := range schema.Modalities {
			for _, t := range tier.m.Runs[mod] {
				if !satisfies(t, attrs) {
					continue
				}
				run := fill(t, mod, attrs)
				return MatchResult{
					Modality:  mod,
					Run:       run,
					InOld:     tier.inOld,
					AutoIndex: IsCounterPlaceholder(run.Labels[schema.KeyRun]),
				}, nil
			}
		}
	}

	run := unclassified(attrs)
	return MatchResult{
		Modality:  schema.Extra,
		Run:       run,
		AutoIndex: true,
	}, nil
}

// satisfies tests the template predicate: every attribute with a non-empty
// expected value must equal the observed value; empty expected values are
// wildcards and always pass.
func satisfies(t RunTemplate, attrs AttrFunc) bool {
	for name, expected := range t.Attributes {
		if expected == "" {
			continue
		}
		if attrs(name) != expected {
			return false
		}
	}
	return true
}

// fill dereferences the template's label values for the current item:
// literals pass through, "<Attr>" references resolve immediately (cleaned
// to legal label characters), counter placeholders stay for the run-index
// resolver. The part-inference heuristic runs last.
func fill(t RunTemplate, mod schema.Modality, attrs AttrFunc) RunTemplate {
	run := t.Clone()
	for key, val := range run.Labels {
		if name, ok := isAttrRef(val); ok {
			run.Labels[key] = naming.CleanLabel(attrs(name))
		}
	}
	inferPart(mod, run.Labels, attrs)
	return run
}

// Registrable converts a filled match result into the template stored in
// the session's new map: the predicate is pinned to the item's actual
// attribute values so identical later items match it, and provenance
// records the originating item.
func Registrable(res MatchResult, attrs AttrFunc, provenance string) RunTemplate {
	t := res.Run.Clone()
	t.Provenance = provenance
	t.Attributes = make(map[string]string, len(MatchAttributeKeys))
	for _, name := range MatchAttributeKeys {
		t.Attributes[name] = attrs(name)
	}
	return t
}

// unclassified builds the extra_data fill for an item no template matched:
// every entity takes whatever its conventional source attribute provides.
func unclassified(attrs AttrFunc) RunTemplate {
	acq := attrs("SeriesDescription")
	if acq == "" {
		acq = attrs("ProtocolName")
	}

	labels := map[string]string{
		schema.KeyAcquisition: naming.CleanLabel(acq),
		schema.KeyEcho:        naming.CleanLabel(attrs("EchoNumbers")),
		schema.KeyRun:         "<<1>>",
	}
	inferPart(schema.Extra, labels, attrs)
	return RunTemplate{
		Attributes: map[string]string{},
		Labels:     labels,
	}
}

// Part marker tokens looked for in the image classification attribute.
// Magnitude markers map to the unset default and are never written.
var partMarkers = map[string]string{
	"P":         "phase",
	"PHASE":     "phase",
	"R":         "real",
	"REAL":      "real",
	"I":         "imag",
	"IMAGINARY": "imag",
}

// inferPart fills an unset part label by inspecting the token set of the
// image classification attribute. It never overwrites a set value, and
// leaves part unset when no marker token is found.
func inferPart(mod schema.Modality, labels map[string]string, attrs AttrFunc) {
	if !schema.HasEntity(mod, schema.KeyPart) || labels[schema.KeyPart] != "" {
		return
	}
	imageType := attrs("ImageType")
	if imageType == "" {
		return
	}
	for _, tok := range splitImageType(imageType) {
		if part, ok := partMarkers[tok]; ok {
			labels[schema.KeyPart] = part
			return
		}
	}
}

// splitImageType tokenizes a DICOM image-type value. Values arrive either
// backslash-separated per the standard or already joined with other
// separators by intermediate tooling.
func splitImageType(s string) []string {
	return strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		switch r {
		case '\\', '/', ',', ' ', '[', ']', '\'':
			return true
		}
		return false
	})
}
