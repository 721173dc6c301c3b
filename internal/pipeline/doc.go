// Package pipeline orchestrates one mapping session: source item discovery,
// per-item classification, name resolution, conversion, postfix
// reconciliation, and session-end persistence of the map document and scan
// ledger.
//
// Split along these boundaries: discover.go, runner.go, stats.go.
package pipeline
