package mapfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurobids/bidsmapper/internal/mapping"
	"github.com/neurobids/bidsmapper/internal/schema"
)

func sampleDocument() *Document {
	current := mapping.NewMap("DICOM")
	_ = mapping.Insert(current, schema.Anat, mapping.RunTemplate{
		Provenance: "/src/series1/001.dcm",
		Attributes: map[string]string{"SeriesDescription": "t1_mprage", "ProtocolName": ""},
		Labels: map[string]string{
			schema.KeyAcquisition: "mprage",
			schema.KeyRun:         "<<1>>",
			schema.KeySuffix:      "T1w",
		},
	})
	template := mapping.NewMap("DICOM")
	_ = mapping.Insert(template, schema.Func, mapping.RunTemplate{
		Attributes: map[string]string{"SeriesDescription": ""},
		Labels: map[string]string{
			schema.KeyTask:   "<ProtocolName>",
			schema.KeyRun:    "<<1>>",
			schema.KeySuffix: "bold",
		},
	})
	return &Document{Current: current, Template: template}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bidsmap.yaml")
	require.NoError(t, Save(path, sampleDocument()))

	doc, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, doc.Current)
	require.NotNil(t, doc.Template)
	assert.Nil(t, doc.Previous)

	assert.Equal(t, "DICOM", doc.Current.Format)
	runs := doc.Current.Runs[schema.Anat]
	require.Len(t, runs, 1)
	assert.Equal(t, "/src/series1/001.dcm", runs[0].Provenance)
	assert.Equal(t, "<<1>>", runs[0].Labels[schema.KeyRun])
	// Wildcards must survive as empty expected values.
	v, ok := runs[0].Attributes["ProtocolName"]
	assert.True(t, ok)
	assert.Empty(t, v)

	tmplRuns := doc.Template.Runs[schema.Func]
	require.Len(t, tmplRuns, 1)
	assert.Equal(t, "<ProtocolName>", tmplRuns[0].Labels[schema.KeyTask])
}

func TestSaveIsStableUnderReload(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.yaml")
	second := filepath.Join(dir, "b.yaml")

	require.NoError(t, Save(first, sampleDocument()))
	doc, err := Load(first)
	require.NoError(t, err)
	require.NoError(t, Save(second, doc))

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("current: [not, a, map"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "malformed map document")
}

func TestLoadRejectsUnknownModality(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	yaml := `current:
  format: DICOM
  runs:
    anatomy:
      - attributes: {}
        labels: {suffix: T1w}
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, schema.ErrInvalidModality)
}

func TestLoadRejectsDuplicateTemplates(t *testing.T) {
	current := mapping.NewMap("DICOM")
	dup := mapping.RunTemplate{
		Attributes: map[string]string{"SeriesDescription": "t1"},
		Labels:     map[string]string{schema.KeySuffix: "T1w"},
	}
	require.NoError(t, mapping.Insert(current, schema.Anat, dup))
	require.NoError(t, mapping.Insert(current, schema.Anat, dup))

	path := filepath.Join(t.TempDir(), "dup.yaml")
	require.NoError(t, Save(path, &Document{Current: current}))

	_, err := Load(path)
	assert.ErrorContains(t, err, "duplicate")
}

func TestLoadAllowsSamePredicateDifferentName(t *testing.T) {
	current := mapping.NewMap("DICOM")
	base := mapping.RunTemplate{
		Attributes: map[string]string{"SeriesDescription": "t1"},
		Labels:     map[string]string{schema.KeySuffix: "T1w"},
	}
	other := base.Clone()
	other.Labels[schema.KeySuffix] = "T2w"
	require.NoError(t, mapping.Insert(current, schema.Anat, base))
	require.NoError(t, mapping.Insert(current, schema.Anat, other))

	path := filepath.Join(t.TempDir(), "ok.yaml")
	require.NoError(t, Save(path, &Document{Current: current}))

	_, err := Load(path)
	assert.NoError(t, err)
}
