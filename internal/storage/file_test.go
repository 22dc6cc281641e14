package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/task"
)

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	orig := sampleStore(t)

	require.NoError(t, SaveFile(path, orig.Tasks()))

	loaded, report, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assertSameTasks(t, orig.Tasks(), loaded.Tasks())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestLoadFile_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, SaveFile(path, sampleStore(t).Tasks()))

	first, _, err := LoadFile(path)
	require.NoError(t, err)
	second, _, err := LoadFile(path)
	require.NoError(t, err)
	assertSameTasks(t, first.Tasks(), second.Tasks())
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestLoadFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	_, _, err := LoadFile(path)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestLoadFile_LegacyFile(t *testing.T) {
	// files written before the task status field existed
	legacy := `[
	{
		"name":	"Write report",
		"priority":	3,
		"description":	"draft",
		"deadline":	"15/06/2025",
		"categories":	[],
		"subtasks":	[{
				"name":	"Outline",
				"status":	"done"
			}]
	}
]`
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	store, report, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)

	tk := store.Tasks()[0]
	assert.Equal(t, "Write report", tk.Title)
	assert.False(t, tk.Done)
	assert.Equal(t, []task.Subtask{{Title: "Outline", Done: true}}, tk.Subtasks())
}

func TestSaveFile_BadDirectory(t *testing.T) {
	err := SaveFile(filepath.Join(t.TempDir(), "missing", "tasks.json"), nil)
	assert.Error(t, err)
}
