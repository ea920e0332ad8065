package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionTracker_NewSelectionCancelsPrevious(t *testing.T) {
	tracker := NewSelectionTracker()

	first, doneFirst := tracker.Begin(context.Background(), "group-view")
	second, doneSecond := tracker.Begin(context.Background(), "group-view")

	assert.ErrorIs(t, first.Err(), context.Canceled)
	assert.NoError(t, second.Err())
	assert.Equal(t, 1, tracker.Active())

	// 过期选择结束时不能移除新的选择
	doneFirst()
	assert.Equal(t, 1, tracker.Active())

	doneSecond()
	assert.Equal(t, 0, tracker.Active())
	assert.ErrorIs(t, second.Err(), context.Canceled)
}

func TestSelectionTracker_ScopesAreIndependent(t *testing.T) {
	tracker := NewSelectionTracker()

	a, doneA := tracker.Begin(context.Background(), "teacher-a")
	defer doneA()
	b, doneB := tracker.Begin(context.Background(), "teacher-b")
	defer doneB()

	assert.NoError(t, a.Err())
	assert.NoError(t, b.Err())
	assert.Equal(t, 2, tracker.Active())
}

func TestSelectionTracker_EmptyScope(t *testing.T) {
	tracker := NewSelectionTracker()

	first, doneFirst := tracker.Begin(context.Background(), "")
	defer doneFirst()
	second, doneSecond := tracker.Begin(context.Background(), "")
	defer doneSecond()

	assert.NoError(t, first.Err())
	assert.NoError(t, second.Err())
	assert.Equal(t, 0, tracker.Active())
}
