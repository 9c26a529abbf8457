package model_test

import (
	"testing"

	"tracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPriorityValid(t *testing.T) {
	for _, p := range model.Priorities {
		assert.True(t, p.Valid(), p)
	}
	assert.False(t, model.Priority("Urgent").Valid())
	assert.False(t, model.Priority("important").Valid())
}

func TestStatusValid(t *testing.T) {
	for _, s := range model.Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, model.Status("Done").Valid())
}

func TestTaskAssignedToAndCreatedBy(t *testing.T) {
	assignee, creator := uuid.New(), uuid.New()
	task := &model.Task{AssigneeID: &assignee, CreatorID: &creator}

	assert.True(t, task.AssignedTo(assignee))
	assert.False(t, task.AssignedTo(creator))
	assert.True(t, task.CreatedBy(creator))

	empty := &model.Task{}
	assert.False(t, empty.AssignedTo(assignee))
	assert.False(t, empty.CreatedBy(creator))
}

func TestNotificationRelated(t *testing.T) {
	n := &model.Notification{}
	assert.Equal(t, model.NoRef, n.Related())

	taskID := uuid.New()
	n.SetRelated(model.TaskRef(taskID))
	assert.Equal(t, model.RelatedRef{Kind: model.EntityTask, ID: taskID}, n.Related())

	n.SetRelated(model.NoRef)
	assert.Nil(t, n.RelatedID)
	assert.Nil(t, n.RelatedType)
}
