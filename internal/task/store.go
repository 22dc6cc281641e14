package task

import (
	"fmt"
	"strings"

	"tasktrack/internal/date"
	"tasktrack/internal/debug"
)

// NotFound is returned by Search when no title matches.
const NotFound = -1

// SortKey selects the comparison used by SortBy.
type SortKey int

const (
	SortByTitle SortKey = iota
	SortByDeadline
	SortByPriority
)

func (k SortKey) String() string {
	switch k {
	case SortByTitle:
		return "name"
	case SortByDeadline:
		return "deadline"
	case SortByPriority:
		return "priority"
	default:
		return "unknown"
	}
}

// Store owns the ordered task collection. Insertion order is kept until
// SortBy is called.
type Store struct {
	tasks List[Task]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{tasks: NewList[Task](MaxTasks)}
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return s.tasks.Len()
}

// Task returns a copy of the task at i.
func (s *Store) Task(i int) (Task, error) {
	t, err := s.get(i)
	if err != nil {
		return Task{}, err
	}
	return t.Clone(), nil
}

// Tasks returns copies of every task in order.
func (s *Store) Tasks() []Task {
	out := make([]Task, 0, s.tasks.Len())
	for _, t := range s.tasks.items {
		out = append(out, t.Clone())
	}
	return out
}

// Replace discards the current content and takes over other's tasks.
func (s *Store) Replace(other *Store) {
	s.tasks.reset()
	for _, t := range other.tasks.items {
		s.tasks.items = append(s.tasks.items, t.Clone())
	}
}

// Clear removes every task.
func (s *Store) Clear() {
	s.tasks.reset()
}

// AddTask appends a task built from d and returns its index. The deadline must
// be valid; an out-of-range priority becomes 1.
func (s *Store) AddTask(d Draft) (int, error) {
	if s.tasks.Full() {
		debug.Log("add task rejected: store holds %d tasks", s.tasks.Len())
		return -1, fmt.Errorf("tasks: %w (limit %d)", ErrCapacityExceeded, MaxTasks)
	}
	title := cleanTitle(d.Title)
	if title == "" {
		return -1, ErrEmptyTitle
	}
	deadline, err := date.Parse(strings.TrimSpace(d.Deadline))
	if err != nil {
		return -1, err
	}
	if len(d.Tags) > MaxTags {
		return -1, fmt.Errorf("tags: %w (limit %d)", ErrCapacityExceeded, MaxTags)
	}

	t := newTask()
	t.Title = title
	t.Priority = NormalizePriority(d.Priority)
	t.Deadline = deadline
	t.Note = cleanNote(d.Note)
	for _, tag := range d.Tags {
		if _, err := t.tags.Append(cleanTag(tag)); err != nil {
			return -1, err
		}
	}
	return s.tasks.Append(t)
}

// Restore appends a task read back from storage. Unlike AddTask it keeps
// empty titles; lengths are still truncated and tags and subtasks past their
// limits are dropped.
func (s *Store) Restore(d Draft, done bool, subtasks []Subtask) (int, error) {
	if s.tasks.Full() {
		return -1, fmt.Errorf("tasks: %w (limit %d)", ErrCapacityExceeded, MaxTasks)
	}
	deadline, err := date.Parse(strings.TrimSpace(d.Deadline))
	if err != nil {
		return -1, err
	}

	t := newTask()
	t.Title = cleanTitle(d.Title)
	t.Done = done
	t.Priority = NormalizePriority(d.Priority)
	t.Deadline = deadline
	t.Note = cleanNote(d.Note)
	for _, tag := range d.Tags {
		if t.tags.Full() {
			break
		}
		t.tags.items = append(t.tags.items, cleanTag(tag))
	}
	for _, st := range subtasks {
		if t.subtasks.Full() {
			break
		}
		t.subtasks.items = append(t.subtasks.items, Subtask{Title: cleanTitle(st.Title), Done: st.Done})
	}
	return s.tasks.Append(t)
}

// DeleteTask removes the task at i together with its subtasks and tags.
func (s *Store) DeleteTask(i int) error {
	if s.tasks.Len() == 0 {
		return ErrEmptyStore
	}
	return s.tasks.RemoveAt(i)
}

// ToggleDone flips the done flag of the task at i.
func (s *Store) ToggleDone(i int) error {
	t, err := s.get(i)
	if err != nil {
		return err
	}
	t.Done = !t.Done
	return nil
}

// EditTitle replaces the title of the task at i.
func (s *Store) EditTitle(i int, title string) error {
	t, err := s.get(i)
	if err != nil {
		return err
	}
	title = cleanTitle(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.Title = title
	return nil
}

// EditNote replaces the note of the task at i.
func (s *Store) EditNote(i int, note string) error {
	t, err := s.get(i)
	if err != nil {
		return err
	}
	t.Note = cleanNote(note)
	return nil
}

// EditDeadline replaces the deadline of the task at i. Invalid text leaves the
// previous deadline in place and returns an error wrapping date.ErrFormat.
func (s *Store) EditDeadline(i int, text string) error {
	t, err := s.get(i)
	if err != nil {
		return err
	}
	d, err := date.Parse(strings.TrimSpace(text))
	if err != nil {
		return err
	}
	t.Deadline = d
	return nil
}

// AddTag appends a tag to the task at i and returns the tag's index.
func (s *Store) AddTag(i int, tag string) (int, error) {
	t, err := s.get(i)
	if err != nil {
		return -1, err
	}
	k, err := t.tags.Append(cleanTag(tag))
	if err != nil {
		return -1, fmt.Errorf("tags: %w", err)
	}
	return k, nil
}

// DeleteTag removes tag k from the task at i.
func (s *Store) DeleteTag(i, k int) error {
	t, err := s.get(i)
	if err != nil {
		return err
	}
	return t.tags.RemoveAt(k)
}

// AddSubtask appends a pending subtask to the task at i.
func (s *Store) AddSubtask(i int, title string) (int, error) {
	t, err := s.get(i)
	if err != nil {
		return -1, err
	}
	title = cleanTitle(title)
	if title == "" {
		return -1, ErrEmptyTitle
	}
	k, err := t.subtasks.Append(Subtask{Title: title})
	if err != nil {
		return -1, fmt.Errorf("subtasks: %w", err)
	}
	return k, nil
}

// DeleteSubtask removes subtask k from the task at i.
func (s *Store) DeleteSubtask(i, k int) error {
	t, err := s.get(i)
	if err != nil {
		return err
	}
	return t.subtasks.RemoveAt(k)
}

// ToggleSubtaskDone flips the done flag of subtask k of the task at i.
func (s *Store) ToggleSubtaskDone(i, k int) error {
	t, err := s.get(i)
	if err != nil {
		return err
	}
	if t.subtasks.Len() == 0 {
		return ErrEmptyCollection
	}
	st, err := t.subtasks.ptr(k)
	if err != nil {
		return err
	}
	st.Done = !st.Done
	return nil
}

// SortBy reorders the tasks ascending by key. Ties keep their relative order.
func (s *Store) SortBy(key SortKey) {
	if s.tasks.Len() < 2 {
		return
	}
	switch key {
	case SortByTitle:
		s.tasks.SortStable(func(a, b Task) int { return strings.Compare(a.Title, b.Title) })
	case SortByDeadline:
		s.tasks.SortStable(func(a, b Task) int { return date.Compare(a.Deadline, b.Deadline) })
	case SortByPriority:
		s.tasks.SortStable(func(a, b Task) int { return a.Priority - b.Priority })
	}
}

// Search returns the index of the first task whose title contains sub
// (case-sensitive), or NotFound.
func (s *Store) Search(sub string) int {
	if sub == "" {
		return NotFound
	}
	return s.tasks.Index(func(t Task) bool { return strings.Contains(t.Title, sub) })
}

func (s *Store) get(i int) (*Task, error) {
	if s.tasks.Len() == 0 {
		return nil, ErrEmptyStore
	}
	return s.tasks.ptr(i)
}
