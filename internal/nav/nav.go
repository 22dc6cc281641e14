// Package nav is the modal state machine between input and the task store.
//
// A Machine tracks which task, subtask and tag is selected and which view
// owns input (task list, subtask list or tag editor). Commands arrive one at
// a time through Dispatch; commands that need text open a prompt, which is
// answered with Submit or abandoned with Cancel. Every outcome, including
// rejected operations, ends up as a one-line status message.
package nav

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"tasktrack/internal/debug"
	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

// None marks an empty selection.
const None = -1

type Context int

const (
	TaskList Context = iota
	SubtaskList
	TagEditor
)

func (c Context) String() string {
	switch c {
	case TaskList:
		return "tasks"
	case SubtaskList:
		return "subtasks"
	case TagEditor:
		return "categories"
	default:
		return "unknown"
	}
}

type Command int

const (
	CmdNone Command = iota
	CmdAdd
	CmdDelete
	CmdUp
	CmdDown
	CmdToggle
	CmdEnterSubtasks
	CmdExitSubtasks
	CmdEditTitle
	CmdEditNote
	CmdEditDeadline
	CmdManageTags
	CmdSort
	CmdSave
	CmdLoad
	CmdSearch
	CmdExport
	CmdQuit
)

var commandNames = map[Command]string{
	CmdNone:          "none",
	CmdAdd:           "add",
	CmdDelete:        "delete",
	CmdUp:            "up",
	CmdDown:          "down",
	CmdToggle:        "toggle",
	CmdEnterSubtasks: "enter-subtasks",
	CmdExitSubtasks:  "exit-subtasks",
	CmdEditTitle:     "edit-title",
	CmdEditNote:      "edit-note",
	CmdEditDeadline:  "edit-deadline",
	CmdManageTags:    "manage-tags",
	CmdSort:          "sort",
	CmdSave:          "save",
	CmdLoad:          "load",
	CmdSearch:        "search",
	CmdExport:        "export",
	CmdQuit:          "quit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Persister saves and loads the whole collection.
type Persister interface {
	Save(tasks []task.Task) error
	Load() (*task.Store, storage.LoadReport, error)
}

// Exporter receives a copy of the collection on export.
type Exporter interface {
	Replace(tasks []task.Task) error
}

// Option configures a Machine.
type Option func(*Machine)

// WithExporter enables the export command.
func WithExporter(e Exporter) Option {
	return func(m *Machine) {
		m.exporter = e
	}
}

// Machine owns the selection and modal context for one store.
type Machine struct {
	store    *task.Store
	files    Persister
	exporter Exporter

	ctx     Context
	task    int
	subtask int
	tag     int

	prompt *prompt
	status string
	quit   bool
}

// New returns a machine in the task-list context with the first task (if
// any) selected.
func New(store *task.Store, files Persister, opts ...Option) *Machine {
	m := &Machine{
		store: store,
		files: files,
		ctx:   TaskList,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.task = first(store.Len())
	m.resetChildren()
	return m
}

// PromptView describes an open prompt.
type PromptView struct {
	Active bool
	Label  string
	Value  string
}

// Snapshot is everything a renderer needs after an event.
type Snapshot struct {
	Tasks           []task.Task
	Context         Context
	SelectedTask    int
	SelectedSubtask int
	SelectedTag     int
	Prompt          PromptView
	Status          string
	Quit            bool
}

func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		Tasks:           m.store.Tasks(),
		Context:         m.ctx,
		SelectedTask:    m.task,
		SelectedSubtask: m.subtask,
		SelectedTag:     m.tag,
		Status:          m.status,
		Quit:            m.quit,
	}
	if m.prompt != nil {
		s.Prompt = PromptView{Active: true, Label: m.prompt.label, Value: m.prompt.value}
	}
	return s
}

func (m *Machine) Context() Context { return m.ctx }
func (m *Machine) Status() string   { return m.status }
func (m *Machine) Quitting() bool   { return m.quit }
func (m *Machine) Prompting() bool  { return m.prompt != nil }

// SetStatus replaces the status line. The presentation layer uses it for
// notices that do not go through a command.
func (m *Machine) SetStatus(s string) {
	m.status = s
}

// SelectedTask returns a copy of the selected task.
func (m *Machine) SelectedTask() (task.Task, bool) {
	if m.task == None {
		return task.Task{}, false
	}
	t, err := m.store.Task(m.task)
	if err != nil {
		return task.Task{}, false
	}
	return t, true
}

// Dispatch handles one command. Commands are ignored while a prompt is open
// or after quit.
func (m *Machine) Dispatch(cmd Command) {
	if m.quit || m.prompt != nil || cmd == CmdNone {
		return
	}
	debug.WithFields(logrus.Fields{"cmd": cmd.String(), "context": m.ctx.String(), "task": m.task}).Debug("dispatch")

	switch m.ctx {
	case TaskList:
		m.dispatchTaskList(cmd)
	case SubtaskList:
		m.dispatchSubtaskList(cmd)
	case TagEditor:
		m.dispatchTagEditor(cmd)
	}
}

func (m *Machine) dispatchTaskList(cmd Command) {
	switch cmd {
	case CmdAdd:
		m.startAddTask()
	case CmdDelete:
		m.deleteTask()
	case CmdUp:
		m.moveTask(-1)
	case CmdDown:
		m.moveTask(1)
	case CmdToggle:
		m.toggleTask()
	case CmdEnterSubtasks:
		if m.store.Len() == 0 {
			m.status = "No tasks available."
			return
		}
		m.ctx = SubtaskList
		m.subtask = first(m.subtaskCount())
		m.status = "Subtask mode."
	case CmdEditTitle, CmdEditNote, CmdEditDeadline:
		m.startEdit(cmd)
	case CmdManageTags:
		if m.store.Len() == 0 {
			m.status = "No tasks available."
			return
		}
		m.ctx = TagEditor
		m.tag = first(m.tagCount())
		m.status = "Category mode."
	case CmdSort:
		m.open(&prompt{kind: promptSortKey, label: "Sort by: 'n' (name), 'd' (deadline), 'p' (priority): "})
	case CmdSearch:
		m.open(&prompt{kind: promptSearch, label: "Enter search query: "})
	case CmdSave:
		m.save()
	case CmdLoad:
		m.load()
	case CmdExport:
		m.export()
	case CmdQuit:
		m.quit = true
	}
}

func (m *Machine) dispatchSubtaskList(cmd Command) {
	switch cmd {
	case CmdAdd:
		if t, ok := m.SelectedTask(); ok && t.SubtaskCount() >= task.MaxSubtasks {
			m.status = "Subtask limit reached for this task."
			return
		}
		m.open(&prompt{kind: promptSubtaskTitle, label: "Enter subtask name: "})
	case CmdDelete:
		m.deleteSubtask()
	case CmdUp:
		m.subtask = step(m.subtask, -1, m.subtaskCount())
	case CmdDown:
		m.subtask = step(m.subtask, 1, m.subtaskCount())
	case CmdToggle:
		m.toggleSubtask()
	case CmdExitSubtasks:
		m.ctx = TaskList
		m.status = ""
	case CmdEditTitle, CmdEditNote, CmdEditDeadline:
		m.startEdit(cmd)
	case CmdSave:
		m.save()
	case CmdExport:
		m.export()
	case CmdQuit:
		m.quit = true
	}
}

func (m *Machine) dispatchTagEditor(cmd Command) {
	switch cmd {
	case CmdAdd:
		if m.tagCount() >= task.MaxTags {
			m.status = "Category limit reached for this task."
			return
		}
		m.open(&prompt{kind: promptTag, label: "Enter new category: "})
	case CmdDelete:
		m.deleteTag()
	case CmdUp:
		m.tag = step(m.tag, -1, m.tagCount())
	case CmdDown:
		m.tag = step(m.tag, 1, m.tagCount())
	case CmdManageTags:
		m.ctx = TaskList
		m.status = "Exiting category mode..."
	}
}

func (m *Machine) moveTask(delta int) {
	next := step(m.task, delta, m.store.Len())
	if next == m.task {
		return
	}
	m.task = next
	m.resetChildren()
}

func (m *Machine) toggleTask() {
	if err := m.store.ToggleDone(m.task); err != nil {
		m.status = m.describe(err, "No tasks available to toggle.")
		return
	}
	m.status = "Task status toggled."
}

func (m *Machine) toggleSubtask() {
	if err := m.store.ToggleSubtaskDone(m.task, m.subtask); err != nil {
		m.status = m.describe(err, "No subtasks available to toggle.")
		return
	}
	m.status = "Subtask status toggled."
}

func (m *Machine) deleteTask() {
	if err := m.store.DeleteTask(m.task); err != nil {
		m.status = m.describe(err, "No tasks available to delete.")
		return
	}
	debug.WithFields(logrus.Fields{"index": m.task, "remaining": m.store.Len()}).Debug("deleted task")
	m.task = repair(m.task, m.store.Len())
	m.resetChildren()
	m.status = "Task deleted successfully!"
}

func (m *Machine) deleteSubtask() {
	if err := m.store.DeleteSubtask(m.task, m.subtask); err != nil {
		m.status = m.describe(err, "No subtasks available to delete.")
		return
	}
	m.subtask = repair(m.subtask, m.subtaskCount())
	m.status = "Subtask deleted successfully!"
}

func (m *Machine) deleteTag() {
	if err := m.store.DeleteTag(m.task, m.tag); err != nil {
		m.status = m.describe(err, "No categories to delete.")
		return
	}
	m.tag = repair(m.tag, m.tagCount())
	m.status = "Category deleted successfully!"
}

func (m *Machine) save() {
	if err := m.files.Save(m.store.Tasks()); err != nil {
		debug.Warn("save failed: %v", err)
		m.status = fmt.Sprintf("save failed: %v", err)
		return
	}
	m.status = "Tasks saved to file."
}

// load replaces the whole collection. A missing file leaves the store as it
// was; an unparsable one empties it.
func (m *Machine) load() {
	loaded, report, err := m.files.Load()
	switch {
	case errors.Is(err, storage.ErrNoData):
		m.status = "No file found to load tasks."
		return
	case errors.Is(err, storage.ErrParse):
		m.store.Clear()
		m.status = "Failed to parse tasks from file."
	case err != nil:
		m.status = fmt.Sprintf("load failed: %v", err)
		return
	default:
		m.store.Replace(loaded)
		if report.Skipped > 0 {
			m.status = fmt.Sprintf("Loaded %d tasks (%d skipped).", report.Loaded, report.Skipped)
		} else {
			m.status = fmt.Sprintf("Loaded %d tasks.", report.Loaded)
		}
	}
	m.ctx = TaskList
	m.task = first(m.store.Len())
	m.resetChildren()
}

func (m *Machine) export() {
	if m.exporter == nil {
		m.status = "Export is not configured."
		return
	}
	if err := m.exporter.Replace(m.store.Tasks()); err != nil {
		debug.Warn("export failed: %v", err)
		m.status = fmt.Sprintf("export failed: %v", err)
		return
	}
	m.status = fmt.Sprintf("Exported %d tasks.", m.store.Len())
}

// describe turns a store error into a status line. empty is used when the
// targeted collection has no elements.
func (m *Machine) describe(err error, empty string) string {
	switch {
	case errors.Is(err, task.ErrEmptyStore), errors.Is(err, task.ErrEmptyCollection):
		return empty
	case errors.Is(err, task.ErrCapacityExceeded):
		return "Limit reached: " + err.Error()
	case errors.Is(err, task.ErrIndexOutOfRange):
		debug.Warn("selection out of range: %v", err)
		return "Nothing selected."
	default:
		return err.Error()
	}
}

func (m *Machine) subtaskCount() int {
	t, ok := m.SelectedTask()
	if !ok {
		return 0
	}
	return t.SubtaskCount()
}

func (m *Machine) tagCount() int {
	t, ok := m.SelectedTask()
	if !ok {
		return 0
	}
	return t.TagCount()
}

func (m *Machine) resetChildren() {
	m.subtask = first(m.subtaskCount())
	m.tag = first(m.tagCount())
}

func first(n int) int {
	if n == 0 {
		return None
	}
	return 0
}

// repair re-validates sel after the collection shrank to n.
func repair(sel, n int) int {
	if n == 0 {
		return None
	}
	if sel >= n {
		return n - 1
	}
	if sel < 0 {
		return 0
	}
	return sel
}

func step(sel, delta, n int) int {
	if n == 0 {
		return None
	}
	next := sel + delta
	if next < 0 || next >= n {
		return repair(sel, n)
	}
	return next
}
