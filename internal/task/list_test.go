package task

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_AppendAndRemove(t *testing.T) {
	l := NewList[int](3)
	for v := 1; v <= 3; v++ {
		i, err := l.Append(v)
		require.NoError(t, err)
		assert.Equal(t, v-1, i)
	}
	assert.True(t, l.Full())

	_, err := l.Append(4)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))

	require.NoError(t, l.RemoveAt(0))
	assert.Equal(t, []int{2, 3}, l.Items())

	v, err := l.At(1)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestList_RemoveFromEmpty(t *testing.T) {
	l := NewList[string](2)
	assert.True(t, errors.Is(l.RemoveAt(0), ErrEmptyCollection))
}

func TestList_ItemsNeverNil(t *testing.T) {
	l := NewList[string](2)
	assert.NotNil(t, l.Items())
	assert.Len(t, l.Items(), 0)
}

func TestList_Index(t *testing.T) {
	l := NewList[string](5)
	_, _ = l.Append("a")
	_, _ = l.Append("b")
	assert.Equal(t, 1, l.Index(func(s string) bool { return s == "b" }))
	assert.Equal(t, -1, l.Index(func(s string) bool { return s == "z" }))
}
