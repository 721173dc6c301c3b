// Package naming renders canonical entity-ordered output names, parses them
// back into entity pairs, resolves run-index collisions against a
// destination collection, and reconciles converter-appended postfix tokens
// into the naming scheme.
//
// The pieces map onto the processing flow:
//
//   - Compose(modality, subject, session, labels, runIndex) → name
//   - Parse(name) → entity values (inverse of Compose)
//   - IndexResolver.Resolve(name, autoIndex) → collision-free name
//   - Reconcile(modality, base, tokens) → patched name per token
//
// Split along these boundaries: compose.go, parse.go, clean.go,
// runindex.go, postfix.go.
package naming
