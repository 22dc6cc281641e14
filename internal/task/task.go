// Package task holds the in-memory task collection: tasks, their subtasks
// and their category tags, each kept in a capacity-bounded ordered list.
package task

import (
	"errors"
	"strings"
	"unicode/utf8"

	"tasktrack/internal/date"
)

// Capacity bounds and field lengths.
const (
	MaxTasks        = 100
	MaxSubtasks     = 50
	MaxTags         = 10
	MaxTitleLen     = 49
	MaxNoteLen      = 99
	MaxTagLen       = 29
	MinPriority     = 1
	MaxPriority     = 9
	DefaultPriority = MinPriority
)

var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrEmptyStore       = errors.New("no tasks available")
	ErrEmptyCollection  = errors.New("collection is empty")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrEmptyTitle       = errors.New("title cannot be empty")
)

// Subtask is a titled, independently completable child of one task.
type Subtask struct {
	Title string
	Done  bool
}

// Task is a top-level to-do item. Tags and subtasks are reachable only
// through the owning Store's operations; the accessors return copies.
type Task struct {
	Title    string
	Done     bool
	Priority int
	Deadline date.Date
	Note     string

	tags     List[string]
	subtasks List[Subtask]
}

func newTask() Task {
	return Task{
		Priority: DefaultPriority,
		tags:     NewList[string](MaxTags),
		subtasks: NewList[Subtask](MaxSubtasks),
	}
}

// Tags returns the category tags in order.
func (t Task) Tags() []string {
	return t.tags.Items()
}

// Subtasks returns the subtasks in order.
func (t Task) Subtasks() []Subtask {
	return t.subtasks.Items()
}

// TagCount returns the number of tags.
func (t Task) TagCount() int {
	return t.tags.Len()
}

// SubtaskCount returns the number of subtasks.
func (t Task) SubtaskCount() int {
	return t.subtasks.Len()
}

// CompletedSubtasks counts subtasks marked done.
func (t Task) CompletedSubtasks() int {
	n := 0
	for _, st := range t.subtasks.items {
		if st.Done {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	c := t
	c.tags = List[string]{items: t.tags.Items(), limit: t.tags.limit}
	c.subtasks = List[Subtask]{items: t.subtasks.Items(), limit: t.subtasks.limit}
	return c
}

// Draft carries untrusted input for a new task.
type Draft struct {
	Title    string
	Priority int
	Deadline string
	Note     string
	Tags     []string
}

// NormalizePriority coerces values outside [1,9] to 1.
func NormalizePriority(p int) int {
	if p < MinPriority || p > MaxPriority {
		return DefaultPriority
	}
	return p
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func cleanTitle(s string) string {
	return Truncate(strings.TrimSpace(s), MaxTitleLen)
}

func cleanTag(s string) string {
	return Truncate(strings.TrimSpace(s), MaxTagLen)
}

func cleanNote(s string) string {
	return Truncate(s, MaxNoteLen)
}
