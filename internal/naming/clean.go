package naming

import "strings"

// CleanLabel strips every character that is not allowed inside an entity
// label value. Only ASCII letters and digits survive; separators, dots and
// whitespace would otherwise break the entity grammar of the composed name.
//
// "t1w 3D (ce)" → "t1w3Dce".
func CleanLabel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CleanLabels returns a copy of labels with every value cleaned. Dynamic
// placeholders (values still wrapped in angle brackets) are kept verbatim
// so deferred references survive until they are resolved.
func CleanLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		if strings.HasPrefix(v, "<") && strings.HasSuffix(v, ">") {
			out[k] = v
			continue
		}
		out[k] = CleanLabel(v)
	}
	return out
}
