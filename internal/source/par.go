package source

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// FormatPAR is the format tag reported for Philips PAR/REC headers.
const FormatPAR = "PAR"

// PAR reads attributes from the general-information block of a Philips PAR
// header: dotted lines of the form
//
//	.    Protocol name                      :   T1W_3D_TFE
type PAR struct {
	cache *Cache
}

// NewPAR returns a PAR source backed by the given single-entry cache.
func NewPAR(cache *Cache) *PAR {
	return &PAR{cache: cache}
}

// parAliases maps the DICOM-style attribute names used by run templates to
// the field labels of the PAR general-information block.
var parAliases = map[string]string{
	"SeriesDescription": "Protocol name",
	"ProtocolName":      "Protocol name",
	"PatientID":         "Patient name",
	"SeriesNumber":      "Acquisition nr",
	"EchoNumbers":       "Max. number of echoes",
	"RepetitionTime":    "Repetition time [ms]",
	"MRAcquisitionType": "Scan mode",
	"ScanningSequence":  "Technique",
	"AcquisitionDate":   "Examination date/time",
}

// Format recognizes PAR items by extension.
func (p *PAR) Format(path string) (string, bool) {
	if strings.EqualFold(filepath.Ext(path), ".par") {
		return FormatPAR, true
	}
	return "", false
}

// Attribute resolves name through the alias table, then falls back to the
// raw PAR field label, so templates can reference either vocabulary.
func (p *PAR) Attribute(name, path string) string {
	fields, err := p.fields(path)
	if err != nil {
		return ""
	}
	if label, ok := parAliases[name]; ok {
		if v, ok := fields[label]; ok {
			return v
		}
	}
	return fields[name]
}

func (p *PAR) fields(path string) (map[string]string, error) {
	v, err := p.cache.Get(path, func() (any, error) {
		return parseParFile(path)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

func parseParFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fields := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, ".") {
			continue
		}
		key, val, found := strings.Cut(line[1:], ":")
		if !found {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(val)
	}
	return fields, sc.Err()
}
