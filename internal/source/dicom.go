package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// FormatDICOM is the format tag reported for DICOM items.
const FormatDICOM = "DICOM"

// DICOM reads attributes from DICOM files via the parsed dataset of the
// current item, memoized in the injected cache.
type DICOM struct {
	cache *Cache
}

// NewDICOM returns a DICOM source backed by the given single-entry cache.
func NewDICOM(cache *Cache) *DICOM {
	return &DICOM{cache: cache}
}

// Format recognizes DICOM items by extension or by the DICM magic at byte
// offset 128.
func (d *DICOM) Format(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dcm", ".ima":
		return FormatDICOM, true
	}
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()
	var preamble [132]byte
	if _, err := f.ReadAt(preamble[:], 0); err != nil {
		return "", false
	}
	if string(preamble[128:132]) == "DICM" {
		return FormatDICOM, true
	}
	return "", false
}

// Attribute resolves name against the item's dataset through the ordered
// strategy chain: hex tag, dictionary keyword, recursive sequence search.
func (d *DICOM) Attribute(name, path string) string {
	ds, err := d.dataset(path)
	if err != nil {
		return ""
	}

	for _, resolve := range tagStrategies {
		t, ok := resolve(name)
		if !ok {
			continue
		}
		if el, err := ds.FindElementByTag(t); err == nil {
			return valueString(el.Value)
		}
		// Top-level lookup missed; the element may sit inside a sequence.
		if v := searchNested(ds, t); v != "" {
			return v
		}
	}
	return ""
}

func (d *DICOM) dataset(path string) (*dicom.Dataset, error) {
	v, err := d.cache.Get(path, func() (any, error) {
		ds, err := dicom.ParseFile(path, nil)
		if err != nil {
			return nil, fmt.Errorf("parse DICOM %q: %w", path, err)
		}
		return &ds, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*dicom.Dataset), nil
}

// tagStrategies is the ordered tag-resolution chain. First success wins.
var tagStrategies = []func(name string) (tag.Tag, bool){
	parseHexTag,
	lookupKeyword,
}

// parseHexTag accepts "(0008,0060)", "0008,0060", or "00080060".
func parseHexTag(name string) (tag.Tag, bool) {
	s := strings.TrimSuffix(strings.TrimPrefix(name, "("), ")")
	s = strings.ReplaceAll(s, ",", "")
	if len(s) != 8 {
		return tag.Tag{}, false
	}
	group, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return tag.Tag{}, false
	}
	element, err := strconv.ParseUint(s[4:], 16, 16)
	if err != nil {
		return tag.Tag{}, false
	}
	return tag.Tag{Group: uint16(group), Element: uint16(element)}, true
}

// lookupKeyword resolves a dictionary keyword like "SeriesDescription".
func lookupKeyword(name string) (tag.Tag, bool) {
	info, err := tag.FindByName(name)
	if err != nil {
		return tag.Tag{}, false
	}
	return info.Tag, true
}

// searchNested walks every element, including those nested in sequences,
// and returns the first value carried by the wanted tag.
func searchNested(ds *dicom.Dataset, want tag.Tag) string {
	result := ""
	for el := range ds.FlatIterator() {
		if result == "" && el.Tag == want {
			result = valueString(el.Value)
		}
		// The iterator channel must be drained even after a hit.
	}
	return result
}

// valueString renders an element value as the flat attribute string,
// multi-valued entries joined with the DICOM backslash separator.
func valueString(v dicom.Value) string {
	if v == nil {
		return ""
	}
	switch v.ValueType() {
	case dicom.Strings:
		return strings.TrimSpace(strings.Join(dicom.MustGetStrings(v), `\`))
	case dicom.Ints:
		parts := make([]string, 0, 4)
		for _, n := range dicom.MustGetInts(v) {
			parts = append(parts, strconv.Itoa(n))
		}
		return strings.Join(parts, `\`)
	case dicom.Floats:
		parts := make([]string, 0, 4)
		for _, f := range dicom.MustGetFloats(v) {
			parts = append(parts, strconv.FormatFloat(f, 'g', -1, 64))
		}
		return strings.Join(parts, `\`)
	default:
		return ""
	}
}
