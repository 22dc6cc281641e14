package storage

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"tasktrack/internal/task"
)

func sampleStore(t *testing.T) *task.Store {
	t.Helper()
	s := task.NewStore()
	i, err := s.AddTask(task.Draft{
		Title:    "Write report",
		Priority: 3,
		Deadline: "15/06/2025",
		Note:     "draft",
		Tags:     []string{"work", "q2"},
	})
	require.NoError(t, err)
	k, err := s.AddSubtask(i, "Outline")
	require.NoError(t, err)
	require.NoError(t, s.ToggleSubtaskDone(i, k))
	_, err = s.AddSubtask(i, "Polish")
	require.NoError(t, err)

	j, err := s.AddTask(task.Draft{Title: "Pay rent", Priority: 1, Deadline: "01/07/2025"})
	require.NoError(t, err)
	require.NoError(t, s.ToggleDone(j))
	return s
}

func TestEncode_FieldNames(t *testing.T) {
	data, err := Encode(sampleStore(t).Tasks())
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc, 2)

	first := doc[0]
	assert.Equal(t, "Write report", first["name"])
	assert.EqualValues(t, 3, first["priority"])
	assert.Equal(t, "draft", first["description"])
	assert.Equal(t, "15/06/2025", first["deadline"])
	assert.Equal(t, []any{"work", "q2"}, first["categories"])
	assert.Equal(t, []any{
		map[string]any{"name": "Outline", "status": "done"},
		map[string]any{"name": "Polish", "status": "pending"},
	}, first["subtasks"])
	assert.Equal(t, "pending", first["status"])

	second := doc[1]
	assert.IsType(t, []any{}, second["categories"], "empty tags must encode as []")
	assert.Empty(t, second["categories"])
	assert.IsType(t, []any{}, second["subtasks"], "empty subtasks must encode as []")
	assert.Empty(t, second["subtasks"])
	assert.Equal(t, "done", second["status"])

	assert.True(t, strings.HasSuffix(string(data), "\n"))
}

func TestEncode_Empty(t *testing.T) {
	data, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestDecode_RoundTrip(t *testing.T) {
	orig := sampleStore(t)
	data, err := Encode(orig.Tasks())
	require.NoError(t, err)

	loaded, report, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Zero(t, report.Skipped)
	assert.Empty(t, report.Warnings)
	assertSameTasks(t, orig.Tasks(), loaded.Tasks())
}

func TestDecode_SkipsIncompleteElements(t *testing.T) {
	doc := `[
  {"name": "ok", "priority": 2, "description": "", "deadline": "01/01/2030", "categories": [], "subtasks": []},
  {"name": "no deadline", "priority": 2, "description": "", "categories": [], "subtasks": []},
  {"priority": 2, "description": "", "deadline": "01/01/2030", "categories": [], "subtasks": []},
  {"name": "bad date", "priority": 2, "description": "", "deadline": "31/02/2030", "categories": [], "subtasks": []},
  {"name": "wrong type", "priority": "high", "description": "", "deadline": "01/01/2030", "categories": [], "subtasks": []},
  "not an object",
  {"name": "also ok", "priority": 12, "description": "x", "deadline": "02/01/2030", "categories": ["a"], "subtasks": []}
]`
	store, report, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 5, report.Skipped)

	tasks := store.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "ok", tasks[0].Title)
	assert.Equal(t, "also ok", tasks[1].Title)
	assert.Equal(t, 1, tasks[1].Priority)
}

func TestDecode_SubtaskStatus(t *testing.T) {
	doc := `[{"name": "t", "priority": 1, "description": "", "deadline": "01/01/2030", "categories": [],
  "subtasks": [
    {"name": "a", "status": "done"},
    {"name": "b", "status": "pending"},
    {"name": "c", "status": "DONE"},
    {"name": "d"},
    {"name": "e", "status": 1},
    {"status": "done"}
  ]}]`
	store, _, err := Decode([]byte(doc))
	require.NoError(t, err)
	got := store.Tasks()[0].Subtasks()
	assert.Equal(t, []task.Subtask{
		{Title: "a", Done: true},
		{Title: "b"},
		{Title: "c"},
		{Title: "d"},
		{Title: "e"},
	}, got)
}

func TestDecode_MissingTaskStatusIsPending(t *testing.T) {
	doc := `[{"name": "t", "priority": 1, "description": "", "deadline": "01/01/2030", "categories": [], "subtasks": []}]`
	store, _, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.False(t, store.Tasks()[0].Done)
}

func TestDecode_CapsCollections(t *testing.T) {
	var cats, subs []string
	for i := 0; i < 15; i++ {
		cats = append(cats, fmt.Sprintf("%q", fmt.Sprintf("c%d", i)))
	}
	for i := 0; i < 60; i++ {
		subs = append(subs, fmt.Sprintf(`{"name": "s%d", "status": "pending"}`, i))
	}
	doc := fmt.Sprintf(`[{"name": "t", "priority": 1, "description": "", "deadline": "01/01/2030", "categories": [%s], "subtasks": [%s]}]`,
		strings.Join(cats, ","), strings.Join(subs, ","))

	store, report, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)
	tk := store.Tasks()[0]
	assert.Equal(t, task.MaxTags, tk.TagCount())
	assert.Equal(t, "c9", tk.Tags()[9])
	assert.Equal(t, task.MaxSubtasks, tk.SubtaskCount())
	assert.NotEmpty(t, report.Warnings, "schema findings expected for oversize arrays")
}

func TestDecode_CapsTasks(t *testing.T) {
	var elems []string
	for i := 0; i < task.MaxTasks+5; i++ {
		elems = append(elems, fmt.Sprintf(`{"name": "t%d", "priority": 1, "description": "", "deadline": "01/01/2030", "categories": [], "subtasks": []}`, i))
	}
	store, report, err := Decode([]byte("[" + strings.Join(elems, ",") + "]"))
	require.NoError(t, err)
	assert.Equal(t, task.MaxTasks, store.Len())
	assert.Equal(t, 5, report.Skipped)
}

func TestDecode_KeepsEmptyNames(t *testing.T) {
	doc := `[
  {"name": "", "priority": 2, "description": "", "deadline": "01/01/2030", "categories": [],
   "subtasks": [{"name": "", "status": "done"}]},
  {"name": "x", "priority": 3, "description": "", "deadline": "02/01/2030", "categories": [],
   "subtasks": [{"name": "", "status": "done"}, {"name": "after", "status": "pending"}]}
]`
	store, report, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 0, report.Skipped)

	tasks := store.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "", tasks[0].Title)
	assert.Equal(t, []task.Subtask{{Title: "", Done: true}}, tasks[0].Subtasks())
	assert.Equal(t, "x", tasks[1].Title)
	assert.Equal(t, []task.Subtask{{Title: "", Done: true}, {Title: "after"}}, tasks[1].Subtasks())
}

func TestDecode_NotAnArray(t *testing.T) {
	for _, doc := range []string{`{"name": "x"}`, `not json`, `[1, 2`, `null`, " null\n"} {
		_, _, err := Decode([]byte(doc))
		assert.True(t, errors.Is(err, ErrParse), "doc %q", doc)
	}
}

func TestCheck_ReportsPaths(t *testing.T) {
	doc := `[{"name": "t", "priority": 20, "description": "", "deadline": "01/01/2030", "categories": [], "subtasks": [{"status": "done"}]}]`
	findings := Check([]byte(doc))
	require.NotEmpty(t, findings)

	var paths []string
	for _, f := range findings {
		paths = append(paths, f.Path)
	}
	assert.Contains(t, paths, "tasks[0].priority")
	assert.Contains(t, paths, "tasks[0].subtasks[0]")
}

func TestCheck_ValidDocument(t *testing.T) {
	data, err := Encode(sampleStore(t).Tasks())
	require.NoError(t, err)
	assert.Empty(t, Check(data))
}

func TestDecode_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		orig := genStore(rt)
		data, err := Encode(orig.Tasks())
		if err != nil {
			rt.Fatalf("encode: %v", err)
		}
		loaded, report, err := Decode(data)
		if err != nil {
			rt.Fatalf("decode: %v", err)
		}
		if report.Skipped != 0 {
			rt.Fatalf("skipped %d: %v", report.Skipped, report.Warnings)
		}
		if diff := compareTasks(orig.Tasks(), loaded.Tasks()); diff != "" {
			rt.Fatalf("round trip mismatch: %s", diff)
		}
	})
}

func genStore(t *rapid.T) *task.Store {
	s := task.NewStore()
	n := rapid.IntRange(0, 8).Draw(t, "tasks")
	for i := 0; i < n; i++ {
		day := rapid.IntRange(1, 28).Draw(t, "day")
		month := rapid.IntRange(1, 12).Draw(t, "month")
		year := rapid.IntRange(1, 9999).Draw(t, "year")
		idx, err := s.AddTask(task.Draft{
			Title:    rapid.StringMatching(`[A-Za-z][A-Za-z0-9 "\\/é]{0,40}[a-z]`).Draw(t, "title"),
			Priority: rapid.IntRange(task.MinPriority, task.MaxPriority).Draw(t, "priority"),
			Deadline: fmt.Sprintf("%02d/%02d/%04d", day, month, year),
			Note:     rapid.StringMatching(`[a-z \n\t]{0,60}`).Draw(t, "note"),
			Tags:     rapid.SliceOfN(rapid.StringMatching(`[a-z][a-z0-9]{0,20}`), 0, task.MaxTags).Draw(t, "tags"),
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if rapid.Bool().Draw(t, "done") {
			_ = s.ToggleDone(idx)
		}
		subs := rapid.IntRange(0, 5).Draw(t, "subtasks")
		for k := 0; k < subs; k++ {
			j, err := s.AddSubtask(idx, rapid.StringMatching(`[a-z][a-z ]{0,20}[a-z]`).Draw(t, "subtask"))
			if err != nil {
				t.Fatalf("add subtask: %v", err)
			}
			if rapid.Bool().Draw(t, "subdone") {
				_ = s.ToggleSubtaskDone(idx, j)
			}
		}
	}
	return s
}

func compareTasks(a, b []task.Task) string {
	if len(a) != len(b) {
		return fmt.Sprintf("len %d != %d", len(a), len(b))
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Title != y.Title || x.Done != y.Done || x.Priority != y.Priority ||
			x.Deadline != y.Deadline || x.Note != y.Note {
			return fmt.Sprintf("task %d: %+v != %+v", i, x, y)
		}
		if fmt.Sprint(x.Tags()) != fmt.Sprint(y.Tags()) {
			return fmt.Sprintf("task %d tags: %v != %v", i, x.Tags(), y.Tags())
		}
		xs, ys := x.Subtasks(), y.Subtasks()
		if len(xs) != len(ys) {
			return fmt.Sprintf("task %d subtasks: %v != %v", i, xs, ys)
		}
		for k := range xs {
			if xs[k] != ys[k] {
				return fmt.Sprintf("task %d subtask %d: %v != %v", i, k, xs[k], ys[k])
			}
		}
	}
	return ""
}

func assertSameTasks(t *testing.T, want, got []task.Task) {
	t.Helper()
	assert.Empty(t, compareTasks(want, got))
}
