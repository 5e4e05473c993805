package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskRoom(t *testing.T) {
	teamID := int64(3)
	userID := int64(9)

	// Team binding wins over user binding.
	both := Task{TeamID: &teamID, UserID: &userID}
	assert.Equal(t, "team:3", both.Room())

	personal := Task{UserID: &userID}
	assert.Equal(t, "user:9", personal.Room())

	orphan := Task{}
	assert.Equal(t, "", orphan.Room())
}

func TestValidTaskStatus(t *testing.T) {
	for _, s := range []string{TaskBacklog, TaskTodo, TaskDoing, TaskReview, TaskDone} {
		assert.True(t, ValidTaskStatus(s), s)
	}
	assert.False(t, ValidTaskStatus("archived"))
	assert.False(t, ValidTaskStatus(""))
}

func TestValidTaskPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		assert.True(t, ValidTaskPriority(p), p)
	}
	assert.False(t, ValidTaskPriority("urgent"))
}
