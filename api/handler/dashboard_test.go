package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskledger/backend/domain"
)

func TestTaskCounts(t *testing.T) {
	tasks := []domain.TaskDetail{
		{Task: domain.Task{ID: 3, Status: domain.StatusInProgress}},
		{Task: domain.Task{ID: 2, Status: domain.StatusCompleted}},
		{Task: domain.Task{ID: 1, Status: domain.StatusInProgress}},
	}

	open, completed := taskCounts(tasks)

	assert.Equal(t, 2, open)
	assert.Equal(t, 1, completed)
}

func TestTaskCountsEmpty(t *testing.T) {
	open, completed := taskCounts(nil)

	assert.Equal(t, 0, open)
	assert.Equal(t, 0, completed)
}
