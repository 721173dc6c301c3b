// Package source reads flat attribute-name → value mappings out of vendor
// acquisition files. Sources are pure per item, so results are cacheable;
// the expensive parse of the current item is memoized in an injected
// single-entry cache (items are processed strictly in sequence).
//
// Attribute lookup on the DICOM source is an ordered chain of typed
// resolution strategies, tried in fixed order with first success winning:
// hex group/element tag, then dictionary keyword, then a recursive search
// through nested sequences.
//
// Split along these boundaries: cache.go, dicom.go, par.go.
package source
