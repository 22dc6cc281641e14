package task

import (
	"fmt"
	"slices"
)

// List is an ordered, capacity-bounded sequence. Removing an element shifts
// everything after it one place to the left, so surviving elements keep their
// relative order.
type List[T any] struct {
	items []T
	limit int
}

// NewList returns an empty list holding at most limit elements.
func NewList[T any](limit int) List[T] {
	return List[T]{limit: limit}
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return len(l.items)
}

// Full reports whether another Append would fail.
func (l *List[T]) Full() bool {
	return len(l.items) >= l.limit
}

// At returns the element at i.
func (l *List[T]) At(i int) (T, error) {
	var zero T
	if err := l.check(i); err != nil {
		return zero, err
	}
	return l.items[i], nil
}

// Append adds v at the end and returns its index.
func (l *List[T]) Append(v T) (int, error) {
	if l.Full() {
		return -1, fmt.Errorf("%w: limit is %d", ErrCapacityExceeded, l.limit)
	}
	l.items = append(l.items, v)
	return len(l.items) - 1, nil
}

// RemoveAt deletes the element at i.
func (l *List[T]) RemoveAt(i int) error {
	if len(l.items) == 0 {
		return ErrEmptyCollection
	}
	if err := l.check(i); err != nil {
		return err
	}
	copy(l.items[i:], l.items[i+1:])
	var zero T
	l.items[len(l.items)-1] = zero
	l.items = l.items[:len(l.items)-1]
	return nil
}

// Items returns a copy of the elements in order.
func (l *List[T]) Items() []T {
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}

// SortStable reorders the elements in place; equal elements keep their order.
func (l *List[T]) SortStable(cmp func(a, b T) int) {
	slices.SortStableFunc(l.items, cmp)
}

// Index returns the first index whose element satisfies match, or -1.
func (l *List[T]) Index(match func(T) bool) int {
	return slices.IndexFunc(l.items, match)
}

func (l *List[T]) ptr(i int) (*T, error) {
	if err := l.check(i); err != nil {
		return nil, err
	}
	return &l.items[i], nil
}

func (l *List[T]) reset() {
	clear(l.items)
	l.items = l.items[:0]
}

func (l *List[T]) check(i int) error {
	if i < 0 || i >= len(l.items) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(l.items))
	}
	return nil
}
