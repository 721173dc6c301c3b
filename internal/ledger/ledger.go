// Package ledger maintains the append-only scan ledger: a tab-separated
// table keyed by relative output filename with an acquisition-time column.
// It serves both provenance and the uniqueness checks of the run-index
// resolver. The file is read at session start, appended during the session,
// and sorted and rewritten at session end.
package ledger

import (
	"bufio"
	"os"
	"sort"
	"strings"

	"github.com/neurobids/bidsmapper/internal/naming"
)

const header = "filename\tacq_time"

// Entry is one produced artifact with its acquisition timestamp.
type Entry struct {
	Filename string
	AcqTime  string
}

// Ledger is the per-session scan record. Entries only ever get appended;
// a failed item therefore cannot corrupt state recorded for earlier items.
type Ledger struct {
	path    string
	entries []Entry
	stems   map[string]struct{}
}

// Load reads the ledger file if present; a missing file yields an empty
// ledger bound to the same path.
func Load(path string) (*Ledger, error) {
	l := &Ledger{path: path, stems: make(map[string]struct{})}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" || line == header {
			continue
		}
		name, acq, _ := strings.Cut(line, "\t")
		l.add(Entry{Filename: name, AcqTime: acq})
	}
	return l, sc.Err()
}

// Append records one produced artifact.
func (l *Ledger) Append(filename, acqTime string) {
	l.add(Entry{Filename: filename, AcqTime: acqTime})
}

func (l *Ledger) add(e Entry) {
	l.entries = append(l.entries, e)
	l.stems[naming.Stem(e.Filename)] = struct{}{}
}

// Has reports whether any recorded filename shares the given stem,
// ignoring file-extension variants.
func (l *Ledger) Has(stem string) bool {
	_, ok := l.stems[stem]
	return ok
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Save sorts the entries by filename and rewrites the ledger file.
func (l *Ledger) Save() error {
	sorted := make([]Entry, len(l.entries))
	copy(sorted, l.entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Filename < sorted[j].Filename })

	var b strings.Builder
	b.WriteString(header + "\n")
	for _, e := range sorted {
		b.WriteString(e.Filename + "\t" + e.AcqTime + "\n")
	}
	return os.WriteFile(l.path, []byte(b.String()), 0o644)
}
