package nav

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tasktrack/internal/date"
	"tasktrack/internal/debug"
	"tasktrack/internal/task"
)

type promptKind int

const (
	promptAddTitle promptKind = iota
	promptAddTagCount
	promptAddTag
	promptAddDeadline
	promptAddNote
	promptAddPriority
	promptSubtaskTitle
	promptTag
	promptEditTitle
	promptEditNote
	promptEditDeadline
	promptSortKey
	promptSearch
)

const invalidDate = "Invalid date format. Try again."

// prompt is an open request for one line of text. Adding a task walks a
// single prompt through several kinds while the draft fills up.
type prompt struct {
	kind  promptKind
	label string
	value string

	draft      task.Draft
	tagsWanted int
}

func (m *Machine) open(p *prompt) {
	m.prompt = p
	m.status = ""
}

func (m *Machine) startAddTask() {
	if m.store.Len() >= task.MaxTasks {
		m.status = "Task limit reached. Cannot add more tasks."
		return
	}
	m.open(&prompt{kind: promptAddTitle, label: "Enter task name: "})
}

func (m *Machine) startEdit(cmd Command) {
	t, ok := m.SelectedTask()
	if !ok {
		m.status = "No tasks available to edit."
		return
	}
	switch cmd {
	case CmdEditTitle:
		m.open(&prompt{kind: promptEditTitle, label: "Enter new task name: ", value: t.Title})
	case CmdEditNote:
		m.open(&prompt{kind: promptEditNote, label: "Enter new description: ", value: t.Note})
	case CmdEditDeadline:
		m.open(&prompt{kind: promptEditDeadline, label: "Enter new deadline (DD/MM/YYYY): ", value: t.Deadline.String()})
	}
}

// Cancel abandons the open prompt. Nothing collected so far is applied.
func (m *Machine) Cancel() {
	if m.prompt == nil {
		return
	}
	m.prompt = nil
	m.status = "Cancelled."
}

// Submit answers the open prompt with text. Invalid answers either re-ask
// the same prompt or close it with a status message.
func (m *Machine) Submit(text string) {
	p := m.prompt
	if p == nil {
		return
	}
	trimmed := strings.TrimSpace(text)

	switch p.kind {
	case promptAddTitle:
		if trimmed == "" {
			m.status = "Task name cannot be empty."
			return
		}
		p.draft.Title = trimmed
		p.kind = promptAddTagCount
		p.label = fmt.Sprintf("Enter number of categories (max %d): ", task.MaxTags)
		m.status = ""

	case promptAddTagCount:
		n, err := strconv.Atoi(trimmed)
		if err != nil || n < 0 {
			n = 0
		}
		if n > task.MaxTags {
			n = task.MaxTags
		}
		p.tagsWanted = n
		m.askNextTag(p)

	case promptAddTag:
		if trimmed == "" {
			m.status = "Category cannot be empty."
			return
		}
		p.draft.Tags = append(p.draft.Tags, trimmed)
		m.status = ""
		m.askNextTag(p)

	case promptAddDeadline:
		if !date.Validate(trimmed) {
			m.status = invalidDate
			return
		}
		p.draft.Deadline = trimmed
		p.kind = promptAddNote
		p.label = "Enter task description: "
		m.status = ""

	case promptAddNote:
		p.draft.Note = text
		p.kind = promptAddPriority
		p.label = fmt.Sprintf("Enter priority (%d-%d): ", task.MinPriority, task.MaxPriority)

	case promptAddPriority:
		n, err := strconv.Atoi(trimmed)
		if err != nil {
			n = task.DefaultPriority
		}
		p.draft.Priority = n
		m.prompt = nil
		m.commitTask(p.draft)

	case promptSubtaskTitle:
		m.prompt = nil
		k, err := m.store.AddSubtask(m.task, text)
		if err != nil {
			m.status = m.rejected(err, "Subtask")
			return
		}
		m.subtask = k
		m.status = "Subtask added successfully!"

	case promptTag:
		if trimmed == "" {
			m.prompt = nil
			m.status = "Category cannot be empty."
			return
		}
		m.prompt = nil
		k, err := m.store.AddTag(m.task, trimmed)
		if err != nil {
			m.status = m.rejected(err, "Category")
			return
		}
		m.tag = k
		m.status = "Category added successfully!"

	case promptEditTitle:
		if err := m.store.EditTitle(m.task, text); err != nil {
			if errors.Is(err, task.ErrEmptyTitle) {
				m.status = "Task name cannot be empty."
				return
			}
			m.prompt = nil
			m.status = m.describe(err, "No tasks available to edit.")
			return
		}
		m.prompt = nil
		m.status = "Task name updated."

	case promptEditNote:
		m.prompt = nil
		if err := m.store.EditNote(m.task, text); err != nil {
			m.status = m.describe(err, "No tasks available to edit.")
			return
		}
		m.status = "Task description updated."

	case promptEditDeadline:
		if err := m.store.EditDeadline(m.task, trimmed); err != nil {
			if errors.Is(err, date.ErrFormat) {
				m.status = invalidDate
				return
			}
			m.prompt = nil
			m.status = m.describe(err, "No tasks available to edit.")
			return
		}
		m.prompt = nil
		m.status = "Task deadline updated."

	case promptSortKey:
		m.prompt = nil
		key, ok := parseSortKey(trimmed)
		if !ok {
			m.status = "Invalid sort choice."
			return
		}
		m.store.SortBy(key)
		m.task = repair(m.task, m.store.Len())
		m.resetChildren()
		m.status = fmt.Sprintf("Tasks sorted by %s!", key)

	case promptSearch:
		m.prompt = nil
		if text == "" {
			m.status = "Search cancelled."
			return
		}
		i := m.store.Search(text)
		if i == task.NotFound {
			m.status = fmt.Sprintf("No task matches %q.", text)
			return
		}
		m.task = i
		m.resetChildren()
		m.status = fmt.Sprintf("Found %q.", text)
	}
}

func (m *Machine) askNextTag(p *prompt) {
	if len(p.draft.Tags) < p.tagsWanted {
		p.kind = promptAddTag
		p.label = fmt.Sprintf("Enter category %d: ", len(p.draft.Tags)+1)
		return
	}
	p.kind = promptAddDeadline
	p.label = "Enter deadline (DD/MM/YYYY): "
}

func (m *Machine) commitTask(d task.Draft) {
	i, err := m.store.AddTask(d)
	if err != nil {
		debug.Warn("add task failed: %v", err)
		m.status = m.rejected(err, "Task")
		return
	}
	m.task = i
	m.resetChildren()
	m.status = "Task added successfully!"
}

func (m *Machine) rejected(err error, what string) string {
	switch {
	case errors.Is(err, task.ErrCapacityExceeded):
		return what + " limit reached."
	case errors.Is(err, task.ErrEmptyTitle):
		return what + " name cannot be empty."
	default:
		return m.describe(err, "No tasks available.")
	}
}

func parseSortKey(s string) (task.SortKey, bool) {
	switch strings.ToLower(s) {
	case "n", "name", "title":
		return task.SortByTitle, true
	case "d", "deadline":
		return task.SortByDeadline, true
	case "p", "priority":
		return task.SortByPriority, true
	}
	return 0, false
}
