package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/task"
)

func TestArchive_ReplaceAndRead(t *testing.T) {
	a, err := OpenArchive(filepath.Join(t.TempDir(), DefaultArchiveName))
	require.NoError(t, err)
	defer a.Close()

	orig := sampleStore(t)
	require.NoError(t, a.Replace(orig.Tasks()))

	got, err := a.Tasks()
	require.NoError(t, err)
	assertSameTasks(t, orig.Tasks(), got.Tasks())
}

func TestArchive_ReplaceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", DefaultArchiveName)
	a, err := OpenArchive(path)
	require.NoError(t, err)

	require.NoError(t, a.Replace(sampleStore(t).Tasks()))

	small := task.NewStore()
	_, err = small.AddTask(task.Draft{Title: "only", Priority: 4, Deadline: "29/02/2028"})
	require.NoError(t, err)
	require.NoError(t, a.Replace(small.Tasks()))
	require.NoError(t, a.Close())

	reopened, err := OpenArchive(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Tasks()
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	tk := got.Tasks()[0]
	assert.Equal(t, "only", tk.Title)
	assert.Equal(t, "29/02/2028", tk.Deadline.String())
	assert.Empty(t, tk.Tags())
	assert.Empty(t, tk.Subtasks())
}

func TestOpenArchive_EmptyPath(t *testing.T) {
	_, err := OpenArchive("")
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:mem.db?mode=memory", sqliteDSN("file:mem.db?mode=memory"))
	dsn := sqliteDSN("/tmp/x.db")
	assert.Contains(t, dsn, "file:///tmp/x.db")
	assert.Contains(t, dsn, "mode=rwc")
}
