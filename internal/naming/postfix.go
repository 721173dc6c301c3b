package naming

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/neurobids/bidsmapper/internal/schema"
)

// The external converter may split one logical run into several physical
// artifacts, each tagged with an uncontrolled postfix token (an echo index
// like "e2", a phase marker like "ph" or "e2_ph", a part marker like
// "real"). Reconcile maps each token back into the entity scheme and
// re-renders the canonical name, so the token never survives on the surface.

// FieldmapSuffixes is the closed set of field-map suffixes subject to the
// count-based disambiguation table.
var FieldmapSuffixes = map[string]bool{
	"magnitude":  true,
	"magnitude1": true,
	"magnitude2": true,
	"phase1":     true,
	"phase2":     true,
	"phasediff":  true,
	"fieldmap":   true,
}

// reEchoToken matches converter echo tokens: "e1", "e02", "e1a". Leading
// zeros are stripped; a single trailing non-digit is split off into the
// fallback label.
var reEchoToken = regexp.MustCompile(`^e0*([0-9]+)([^0-9_]?)$`)

// partTokens maps converter part markers to the part entity value.
// Magnitude is the default, unset state and is never written explicitly.
var partTokens = map[string]string{
	"ph":        "phase",
	"phase":     "phase",
	"real":      "real",
	"imaginary": "imag",
	"imag":      "imag",
}

// fmapClass is the per-token classification used by the field-map table:
// whether the token denotes a phase image, and its echo ordinal among
// tokens of the same kind (1-based; 0 when it is the only one of its kind).
type fmapClass struct {
	phase bool
	echo  int
}

// reFmapToken matches field-map artifact tokens: "e1", "e2_ph", "ph".
var reFmapToken = regexp.MustCompile(`^(?:e0*([0-9]+))?(?:_?(ph|phase))?$`)

func classifyFmapToken(token string) (fmapClass, bool) {
	if token == "" {
		return fmapClass{}, true
	}
	m := reFmapToken.FindStringSubmatch(token)
	if m == nil || (m[1] == "" && m[2] == "") {
		return fmapClass{}, false
	}
	echo := 0
	if m[1] != "" {
		echo, _ = strconv.Atoi(m[1])
	}
	return fmapClass{phase: m[2] != "", echo: echo}, true
}

// fmapKey keys the disambiguation table: artifact count for the run, token
// kind, and the token's per-kind ordinal (0 when its kind occurs once).
type fmapKey struct {
	count int
	phase bool
	ord   int
}

// fieldmapAssignments is the fixed suffix-assignment table, reproduced
// verbatim from the vendor-specific converter contract. Count 1 is handled
// separately (the declared suffix maps directly). Counts outside 1..4 have
// no entry and fall through to the fallback label.
var fieldmapAssignments = map[fmapKey]string{
	// Two artifacts, one magnitude + one phase: a real field map.
	{count: 2, phase: false, ord: 0}: "magnitude",
	{count: 2, phase: true, ord: 0}:  "fieldmap",
	// Two artifacts, both magnitudes: a double-echo magnitude pair.
	{count: 2, phase: false, ord: 1}: "magnitude1",
	{count: 2, phase: false, ord: 2}: "magnitude2",
	// Three artifacts, two magnitudes + one phase: phase-difference set.
	{count: 3, phase: false, ord: 1}: "magnitude1",
	{count: 3, phase: false, ord: 2}: "magnitude2",
	{count: 3, phase: true, ord: 0}:  "phasediff",
	// Three artifacts, one magnitude + two phases.
	{count: 3, phase: false, ord: 0}: "magnitude1",
	{count: 3, phase: true, ord: 1}:  "phase1",
	{count: 3, phase: true, ord: 2}:  "phase2",
	// Four artifacts: full two-echo magnitude/phase set.
	{count: 4, phase: false, ord: 1}: "magnitude1",
	{count: 4, phase: false, ord: 2}: "magnitude2",
	{count: 4, phase: true, ord: 1}:  "phase1",
	{count: 4, phase: true, ord: 2}:  "phase2",
}

// Reconcile maps each converter postfix token for one run back into the
// naming scheme and returns the patched canonical name per token, in input
// order. base is the composed name the converter was invoked with; tokens
// holds one entry per distinct artifact stem (the empty string for an
// artifact without a postfix).
//
// Per-token policy, first rule that applies wins:
//  1. echo entity defined and the token is an echo index → set echo
//  2. part entity defined and the token is a part marker → set part
//  3. declared suffix is a field-map suffix → count-based assignment table
//  4. fallback label defined → append the token to it
//  5. none of the above → log and append the raw token to the name
func Reconcile(m schema.Modality, base string, tokens []string, log Logger) ([]string, error) {
	if err := schema.Check(m); err != nil {
		return nil, err
	}
	baseVals, err := Parse(base)
	if err != nil {
		return nil, err
	}

	classes, ok := classifyRun(tokens)
	fmapRun := ok && FieldmapSuffixes[baseVals[schema.KeySuffix]]

	names := make([]string, len(tokens))
	for i, token := range tokens {
		vals := cloneVals(baseVals)

		switch {
		case token == "":
			// Artifact carries no postfix; the base name stands.

		case schema.HasEntity(m, schema.KeyEcho) && reEchoToken.MatchString(token):
			em := reEchoToken.FindStringSubmatch(token)
			vals[schema.KeyEcho] = em[1]
			if em[2] != "" {
				vals[schema.FallbackKey] += em[2]
			}

		case schema.HasEntity(m, schema.KeyPart) && partTokens[strings.ToLower(token)] != "":
			vals[schema.KeyPart] = partTokens[strings.ToLower(token)]

		case fmapRun:
			suffix, found := fieldmapAssignments[fmapKey{
				count: len(tokens),
				phase: classes[i].phase,
				ord:   classes[i].ord,
			}]
			if len(tokens) == 1 {
				// A single artifact maps directly to the declared suffix.
				found = true
				suffix = vals[schema.KeySuffix]
			}
			if !found {
				appendFallback(m, vals, token, base, log)
				break
			}
			vals[schema.KeySuffix] = suffix

		default:
			appendFallback(m, vals, token, base, log)
		}

		name, err := ComposeFromValues(m, vals)
		if err != nil {
			return nil, err
		}
		// Verbatim last-resort append happens on the surface, outside the
		// entity grammar.
		if extra := vals[verbatimKey]; extra != "" {
			name += Separator + extra
		}
		names[i] = name
	}
	return names, nil
}

func cloneVals(vals map[string]string) map[string]string {
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out
}

// verbatimKey is an internal marker for tokens that could not be filed
// under any entity (AmbiguousPostfix). It is not a schema key, so
// ComposeFromValues ignores it and the value is appended verbatim.
const verbatimKey = "!verbatim"

// appendFallback files a token under the fallback label when the schema
// allows one, or flags it for verbatim appending otherwise.
func appendFallback(m schema.Modality, vals map[string]string, token, base string, log Logger) {
	if schema.HasEntity(m, schema.FallbackKey) {
		vals[schema.FallbackKey] += CleanLabel(token)
		return
	}
	log.Warn("Ambiguous postfix %q on %q: no entity accepts it, appending verbatim", token, base)
	vals[verbatimKey] = token
}

// runClass pairs a token's field-map classification with its per-kind
// ordinal inside this run.
type runClass struct {
	phase bool
	ord   int
}

// classifyRun classifies every token of a run and computes per-kind
// ordinals: when a kind (magnitude or phase) occurs more than once, its
// tokens are numbered by echo index; a kind that occurs once gets ordinal 0.
// ok is false when any non-empty token is not a field-map token.
func classifyRun(tokens []string) ([]runClass, bool) {
	classes := make([]fmapClass, len(tokens))
	var nMag, nPhase int
	for i, t := range tokens {
		c, ok := classifyFmapToken(t)
		if !ok {
			return nil, false
		}
		classes[i] = c
		if c.phase {
			nPhase++
		} else {
			nMag++
		}
	}

	out := make([]runClass, len(tokens))
	magOrd, phaseOrd := 0, 0
	for i, c := range classes {
		rc := runClass{phase: c.phase}
		if c.phase && nPhase > 1 {
			phaseOrd++
			rc.ord = ordinalFor(c.echo, phaseOrd)
		} else if !c.phase && nMag > 1 {
			magOrd++
			rc.ord = ordinalFor(c.echo, magOrd)
		}
		out[i] = rc
	}
	return out, true
}

// ordinalFor prefers the echo number carried by the token itself and falls
// back to input order when the converter omitted one.
func ordinalFor(echo, seen int) int {
	if echo > 0 {
		return echo
	}
	return seen
}
