package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

type fakeLogger struct {
	warns []string
}

func (l *fakeLogger) Warn(format string, args ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

type fakeCollection struct {
	stems   map[string]bool
	removed []string
}

func (c *fakeCollection) Has(stem string) bool { return c.stems[stem] }
func (c *fakeCollection) Remove(stem string) error {
	c.removed = append(c.removed, stem)
	delete(c.stems, stem)
	return nil
}

func TestStem(t *testing.T) {
	tests := []struct{ in, want string }{
		{"sub-01_T1w.nii.gz", "sub-01_T1w"},
		{"sub-01_T1w.json", "sub-01_T1w"},
		{"/out/sub-01/anat/sub-01_T1w.nii", "sub-01_T1w"},
		{"sub-01_T1w", "sub-01_T1w"},
	}
	for _, tt := range tests {
		if got := Stem(tt.in); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveNoCollision(t *testing.T) {
	r := NewIndexResolver(&fakeCollection{stems: map[string]bool{}}, &fakeLogger{})
	got, err := r.Resolve("sub-01_run-1_T1w", true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "sub-01_run-1_T1w" {
		t.Errorf("Resolve = %q, want unchanged", got)
	}
}

func TestResolveIncrementsPastOccupiedIndices(t *testing.T) {
	coll := &fakeCollection{stems: map[string]bool{
		"sub-01_run-1_T1w": true,
		"sub-01_run-2_T1w": true,
		"sub-01_run-3_T1w": true,
	}}
	r := NewIndexResolver(coll, &fakeLogger{})
	got, err := r.Resolve("sub-01_run-1_T1w", true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "sub-01_run-4_T1w" {
		t.Errorf("Resolve = %q, want sub-01_run-4_T1w", got)
	}
}

func TestResolveStaticIndexDeletesAndWarns(t *testing.T) {
	coll := &fakeCollection{stems: map[string]bool{"sub-01_run-2_T1w": true}}
	log := &fakeLogger{}
	r := NewIndexResolver(coll, log)
	got, err := r.Resolve("sub-01_run-2_T1w", false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "sub-01_run-2_T1w" {
		t.Errorf("Resolve = %q, want the name kept", got)
	}
	if len(coll.removed) != 1 || coll.removed[0] != "sub-01_run-2_T1w" {
		t.Errorf("removed = %v, want the colliding stem", coll.removed)
	}
	if len(log.warns) != 1 {
		t.Errorf("warns = %v, want exactly one", log.warns)
	}
}

func TestResolveIndexlessNameDeletesAndWarns(t *testing.T) {
	coll := &fakeCollection{stems: map[string]bool{"sub-01_T1w": true}}
	log := &fakeLogger{}
	r := NewIndexResolver(coll, log)
	got, err := r.Resolve("sub-01_T1w", true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "sub-01_T1w" || len(coll.removed) != 1 || len(log.warns) != 1 {
		t.Errorf("got %q, removed %v, warns %v", got, coll.removed, log.warns)
	}
}

type fullCollection struct{}

func (fullCollection) Has(string) bool     { return true }
func (fullCollection) Remove(string) error { return nil }

func TestResolveGivesUpEventually(t *testing.T) {
	r := NewIndexResolver(fullCollection{}, &fakeLogger{})
	_, err := r.Resolve("sub-01_run-1_T1w", true)
	if !errors.Is(err, ErrCollisionUnresolved) {
		t.Errorf("err = %v, want ErrCollisionUnresolved", err)
	}
}

func TestDirCollection(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"sub-01_T1w.nii.gz", "sub-01_T1w.json", "sub-01_run-2_T1w.nii.gz"} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c := &DirCollection{Dir: dir}

	if !c.Has("sub-01_T1w") {
		t.Error("Has(sub-01_T1w) = false, want true")
	}
	if c.Has("sub-01_run-9_T1w") {
		t.Error("Has(sub-01_run-9_T1w) = true, want false")
	}

	if err := c.Remove("sub-01_T1w"); err != nil {
		t.Fatal(err)
	}
	if c.Has("sub-01_T1w") {
		t.Error("stem still present after Remove")
	}
	// The other stem's files must survive.
	if !c.Has("sub-01_run-2_T1w") {
		t.Error("Remove deleted an unrelated stem")
	}
}

type fakeLedger struct{ stems map[string]bool }

func (l fakeLedger) Has(stem string) bool { return l.stems[stem] }

func TestDirCollectionConsultsLedger(t *testing.T) {
	c := &DirCollection{
		Dir:    t.TempDir(),
		Ledger: fakeLedger{stems: map[string]bool{"sub-01_T1w": true}},
	}
	if !c.Has("sub-01_T1w") {
		t.Error("ledger stem not seen by the collection")
	}
}
