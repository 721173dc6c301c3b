package mapping

import (
	"errors"
	"testing"

	"github.com/neurobids/bidsmapper/internal/schema"
)

func anatTemplate(desc string) RunTemplate {
	return RunTemplate{
		Provenance: "/src/" + desc,
		Attributes: map[string]string{"SeriesDescription": desc},
		Labels:     map[string]string{schema.KeySuffix: "T1w"},
	}
}

func TestInsertAndCount(t *testing.T) {
	m := NewMap("DICOM")

	n, err := CountSamples(m, schema.Anat)
	if err != nil || n != 0 {
		t.Fatalf("CountSamples = %d, %v; want 0, nil", n, err)
	}

	if err := Insert(m, schema.Anat, anatTemplate("t1")); err != nil {
		t.Fatal(err)
	}
	if err := Insert(m, schema.Anat, anatTemplate("t2")); err != nil {
		t.Fatal(err)
	}
	if n, _ := CountSamples(m, schema.Anat); n != 2 {
		t.Errorf("CountSamples = %d, want 2", n)
	}

	if err := Insert(m, "bogus", anatTemplate("x")); !errors.Is(err, schema.ErrInvalidModality) {
		t.Errorf("Insert(bogus) err = %v, want ErrInvalidModality", err)
	}
}

func TestExists(t *testing.T) {
	m := NewMap("DICOM")
	tmpl := anatTemplate("t1")
	if err := Insert(m, schema.Anat, tmpl); err != nil {
		t.Fatal(err)
	}

	ok, err := Exists(m, schema.Anat, tmpl)
	if err != nil || !ok {
		t.Errorf("Exists(same predicate) = %v, %v; want true", ok, err)
	}
	ok, _ = Exists(m, schema.Anat, anatTemplate("other"))
	if ok {
		t.Error("Exists(different predicate) = true, want false")
	}
}

func TestReadSampleIsACopy(t *testing.T) {
	m := NewMap("DICOM")
	if err := Insert(m, schema.Anat, anatTemplate("t1")); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSample(m, schema.Anat, 0)
	if err != nil {
		t.Fatal(err)
	}
	got.Labels[schema.KeySuffix] = "mutated"

	again, _ := ReadSample(m, schema.Anat, 0)
	if again.Labels[schema.KeySuffix] != "T1w" {
		t.Error("mutating a read sample leaked into the store")
	}

	if _, err := ReadSample(m, schema.Anat, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("ReadSample(5) err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestDeleteSampleDoesNotMutateInput(t *testing.T) {
	m := NewMap("DICOM")
	Insert(m, schema.Anat, anatTemplate("t1"))
	Insert(m, schema.Anat, anatTemplate("t2"))

	out, err := DeleteSample(m, schema.Anat, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := CountSamples(out, schema.Anat); n != 1 {
		t.Errorf("result count = %d, want 1", n)
	}
	if n, _ := CountSamples(m, schema.Anat); n != 2 {
		t.Errorf("input count = %d, want 2 (input mutated)", n)
	}
	left, _ := ReadSample(out, schema.Anat, 0)
	if left.Attributes["SeriesDescription"] != "t2" {
		t.Errorf("wrong sample deleted, survivor = %v", left.Attributes)
	}
}

func TestMoveSample(t *testing.T) {
	m := NewMap("DICOM")
	Insert(m, schema.Extra, anatTemplate("t1"))

	tmpl, _ := ReadSample(m, schema.Extra, 0)
	out, err := MoveSample(m, schema.Extra, 0, schema.Anat, tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := CountSamples(out, schema.Extra); n != 0 {
		t.Errorf("source bucket count = %d, want 0", n)
	}
	if n, _ := CountSamples(out, schema.Anat); n != 1 {
		t.Errorf("target bucket count = %d, want 1", n)
	}
	if n, _ := CountSamples(m, schema.Extra); n != 1 {
		t.Error("MoveSample mutated its input map")
	}
}

func TestSummarize(t *testing.T) {
	m := NewMap("DICOM")
	Insert(m, schema.Anat, RunTemplate{
		Provenance: "/src/001",
		Attributes: map[string]string{},
		Labels: map[string]string{
			schema.KeyAcquisition: "highres",
			schema.KeyRun:         "<<1>>",
			schema.KeySuffix:      "T1w",
		},
	})

	rows, err := Summarize(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	want := "sub-*_ses-*_acq-highres_run-<<1>>_T1w"
	if rows[0].RenderedName != want {
		t.Errorf("RenderedName = %q, want %q", rows[0].RenderedName, want)
	}
	if rows[0].Provenance != "/src/001" {
		t.Errorf("Provenance = %q", rows[0].Provenance)
	}
}

func TestSummarizeNilMap(t *testing.T) {
	rows, err := Summarize(nil)
	if err != nil || len(rows) != 0 {
		t.Errorf("Summarize(nil) = %v, %v; want empty, nil", rows, err)
	}
}
