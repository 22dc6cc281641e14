package storage

import (
	"bytes"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"tasktrack/internal/task"
)

// Subtask and task status strings as written to the file.
const (
	StatusDone    = "done"
	StatusPending = "pending"
)

var (
	// ErrNoData reports a missing or unreadable file.
	ErrNoData = errors.New("no data available")
	// ErrParse reports a file that is not a JSON array.
	ErrParse = errors.New("failed to parse tasks")
)

var requiredFields = []string{"name", "priority", "description", "deadline", "categories", "subtasks"}

type fileTask struct {
	Name        string        `json:"name"`
	Priority    int           `json:"priority"`
	Description string        `json:"description"`
	Deadline    string        `json:"deadline"`
	Categories  []string      `json:"categories"`
	Subtasks    []fileSubtask `json:"subtasks"`
	Status      string        `json:"status"`
}

type fileSubtask struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// LoadReport summarises a decode.
type LoadReport struct {
	Loaded   int
	Skipped  int
	Warnings []string
}

func (r *LoadReport) skip(format string, args ...any) {
	r.Skipped++
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func statusOf(done bool) string {
	if done {
		return StatusDone
	}
	return StatusPending
}

// Encode writes tasks as a JSON array with 2-space indentation and a trailing
// newline.
func Encode(tasks []task.Task) ([]byte, error) {
	out := make([]fileTask, 0, len(tasks))
	for _, t := range tasks {
		ft := fileTask{
			Name:        t.Title,
			Priority:    t.Priority,
			Description: t.Note,
			Deadline:    t.Deadline.String(),
			Categories:  t.Tags(),
			Subtasks:    make([]fileSubtask, 0, t.SubtaskCount()),
			Status:      statusOf(t.Done),
		}
		for _, st := range t.Subtasks() {
			ft.Subtasks = append(ft.Subtasks, fileSubtask{Name: st.Title, Status: statusOf(st.Done)})
		}
		out = append(out, ft)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a JSON array of tasks into a fresh store. Elements missing any
// required field, or carrying a field of the wrong type or an invalid deadline,
// are skipped. Empty names are kept. Tags past 10, subtasks past 50 and tasks
// past 100 are dropped.
func Decode(data []byte) (*task.Store, LoadReport, error) {
	var report LoadReport
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, report, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, report, fmt.Errorf("%w: top level is null", ErrParse)
	}

	for _, verr := range Check(data) {
		report.Warnings = append(report.Warnings, verr.Error())
	}

	store := task.NewStore()
	for i, raw := range elems {
		if store.Len() >= task.MaxTasks {
			report.skip("tasks[%d]: task limit %d reached", i, task.MaxTasks)
			continue
		}
		if err := decodeTask(store, raw); err != nil {
			report.skip("tasks[%d]: %v", i, err)
			continue
		}
		report.Loaded++
	}
	return store, report, nil
}

func decodeTask(store *task.Store, raw json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return errors.New("not an object")
	}
	for _, f := range requiredFields {
		if _, ok := obj[f]; !ok {
			return fmt.Errorf("missing %q", f)
		}
	}

	var ft fileTask
	if err := unmarshalField(obj, "name", &ft.Name); err != nil {
		return err
	}
	var priority float64
	if err := unmarshalField(obj, "priority", &priority); err != nil {
		return err
	}
	ft.Priority = int(priority)
	if err := unmarshalField(obj, "description", &ft.Description); err != nil {
		return err
	}
	if err := unmarshalField(obj, "deadline", &ft.Deadline); err != nil {
		return err
	}
	var categories, subtasks []json.RawMessage
	if err := unmarshalField(obj, "categories", &categories); err != nil {
		return err
	}
	if err := unmarshalField(obj, "subtasks", &subtasks); err != nil {
		return err
	}
	if _, ok := obj["status"]; ok {
		// any non-string status reads as pending
		_ = json.Unmarshal(obj["status"], &ft.Status)
	}

	for _, c := range categories {
		if len(ft.Categories) >= task.MaxTags {
			break
		}
		var tag string
		if err := json.Unmarshal(c, &tag); err != nil {
			continue
		}
		ft.Categories = append(ft.Categories, tag)
	}

	var subs []task.Subtask
	for _, raw := range subtasks {
		var sobj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &sobj); err != nil {
			continue
		}
		var fs fileSubtask
		if err := unmarshalField(sobj, "name", &fs.Name); err != nil {
			continue
		}
		if st, ok := sobj["status"]; ok {
			_ = json.Unmarshal(st, &fs.Status)
		}
		subs = append(subs, task.Subtask{Title: fs.Name, Done: fs.Status == StatusDone})
	}

	_, err := store.Restore(task.Draft{
		Title:    ft.Name,
		Priority: ft.Priority,
		Deadline: ft.Deadline,
		Note:     ft.Description,
		Tags:     ft.Categories,
	}, ft.Status == StatusDone, subs)
	return err
}

func unmarshalField(obj map[string]json.RawMessage, name string, v any) error {
	raw, ok := obj[name]
	if !ok {
		return fmt.Errorf("missing %q", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("field %q has the wrong type", name)
	}
	return nil
}
