package naming

import (
	"strings"

	"github.com/neurobids/bidsmapper/internal/schema"
)

// Separator joins rendered entity pieces.
const Separator = "_"

// Compose renders the fully substituted, entity-ordered name for one source
// item. labels maps entity key → resolved literal value (already
// dereferenced from any dynamic attribute references); subject, session and
// the run index are passed separately because they are session state rather
// than template fill values.
//
// Mandatory entities are always emitted, with an empty value rendered as the
// bare prefix (an empty subject still yields "sub-"). Conditional entities
// are emitted only when their value is non-empty. Pieces that render to the
// empty string are skipped entirely, so the output never contains two
// consecutive separators or a trailing separator.
func Compose(m schema.Modality, subject, session string, labels map[string]string, runIndex string) (string, error) {
	ents, err := schema.Entities(m)
	if err != nil {
		return "", err
	}

	var pieces []string
	for _, e := range ents {
		var val string
		switch e.Key {
		case schema.KeySubject:
			val = subject
		case schema.KeySession:
			val = session
		case schema.KeyRun:
			val = runIndex
		default:
			val = labels[e.Key]
		}

		if e.Presence == schema.Conditional && val == "" {
			continue
		}

		piece := e.Prefix + val
		if piece == "" {
			// A mandatory suffix with no value has nothing to emit.
			continue
		}
		pieces = append(pieces, piece)
	}

	return strings.Join(pieces, Separator), nil
}

// ComposeFromValues renders a name from a flat entity-value map as produced
// by [Parse]. Used by postfix reconciliation to re-render a patched name.
func ComposeFromValues(m schema.Modality, vals map[string]string) (string, error) {
	return Compose(m,
		vals[schema.KeySubject],
		vals[schema.KeySession],
		vals,
		vals[schema.KeyRun],
	)
}
