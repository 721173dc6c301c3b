package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "scans.tsv"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Has("sub-01_T1w"))
}

func TestAppendSaveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.tsv")

	l, err := Load(path)
	require.NoError(t, err)
	l.Append("sub-01/func/sub-01_task-rest_bold.nii.gz", "20260114T101530")
	l.Append("sub-01/anat/sub-01_T1w.nii.gz", "20260114T100502")
	require.NoError(t, l.Save())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Len())
	assert.True(t, again.Has("sub-01_T1w"))
	assert.True(t, again.Has("sub-01_task-rest_bold"))
	assert.False(t, again.Has("sub-01_task-rest_run-2_bold"))
}

func TestSaveSortsAndWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scans.tsv")

	l, err := Load(path)
	require.NoError(t, err)
	l.Append("b/sub-01_dwi.nii.gz", "t2")
	l.Append("a/sub-01_T1w.nii.gz", "t1")
	require.NoError(t, l.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "filename\tacq_time", lines[0])
	assert.Equal(t, "a/sub-01_T1w.nii.gz\tt1", lines[1])
	assert.Equal(t, "b/sub-01_dwi.nii.gz\tt2", lines[2])
}

func TestHasIgnoresExtensionVariants(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "scans.tsv"))
	require.NoError(t, err)
	l.Append("sub-01/anat/sub-01_T1w.nii.gz", "")
	// The json sidecar of the same acquisition shares the stem.
	assert.True(t, l.Has("sub-01_T1w"))
}
