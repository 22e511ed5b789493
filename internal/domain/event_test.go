package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCreateEvent(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	e := NewCreateEvent(5, Actor{ID: 2, Role: RoleMember}, now)

	assert.Equal(t, EventCreate, e.Type)
	assert.Equal(t, int64(5), e.TaskID)
	require.NotNil(t, e.UserID)
	assert.Equal(t, int64(2), *e.UserID)
	assert.Nil(t, e.Field)
	assert.Nil(t, e.OldValue)
	assert.Nil(t, e.NewValue)
	assert.Equal(t, now, e.CreatedAt)
}

func TestNewUpdateEvents(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	changes := []Change{
		{Field: FieldStatus, Old: ptr("todo"), New: ptr("done")},
		{Field: FieldTags, New: ptr("urgent,release")},
	}

	events := NewUpdateEvents(5, Actor{ID: 2}, changes, now)

	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, EventUpdate, e.Type)
		assert.Equal(t, int64(5), e.TaskID)
	}
	assert.Equal(t, FieldStatus, *events[0].Field)
	assert.Equal(t, "todo", *events[0].OldValue)
	assert.Equal(t, FieldTags, *events[1].Field)
	assert.Nil(t, events[1].OldValue)
	assert.Equal(t, "urgent,release", *events[1].NewValue)
}

func TestNewDependencyEvent(t *testing.T) {
	e := NewDependencyEvent(5, 9, Actor{ID: 2}, time.Time{})

	assert.Equal(t, EventAddDependency, e.Type)
	assert.Equal(t, FieldDependsOn, *e.Field)
	assert.Nil(t, e.OldValue)
	assert.Equal(t, "9", *e.NewValue)
}

func TestSystemEvent(t *testing.T) {
	e := NewCreateEvent(1, Actor{}, time.Time{})
	assert.True(t, e.IsSystemEvent())
}
