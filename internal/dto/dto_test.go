package dto_test

import (
	"testing"
	"time"

	"tracker/internal/dto"
	"tracker/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewPage_LastPage(t *testing.T) {
	assert.Equal(t, 1, dto.NewPage([]int{}, 1, 20, 0).LastPage)
	assert.Equal(t, 1, dto.NewPage([]int{1}, 1, 20, 20).LastPage)
	assert.Equal(t, 2, dto.NewPage([]int{1}, 2, 20, 21).LastPage)
	assert.NotNil(t, dto.NewPage[int](nil, 1, 20, 0).Data)
}

func TestNewTask(t *testing.T) {
	assignee := uuid.New()
	task := &model.Task{
		ID:         uuid.New(),
		ProjectID:  uuid.New(),
		Title:      "Due Date Review",
		DueDate:    time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Priority:   model.PriorityImportant,
		Status:     model.StatusToDo,
		AssigneeID: &assignee,
		Assignee:   &model.User{ID: assignee, Name: "Ann"},
	}

	out := dto.NewTask(task)

	assert.Equal(t, "2025-03-14", out.DueDate)
	assert.Equal(t, assignee.String(), *out.AssigneeID)
	assert.Equal(t, "Ann", *out.AssigneeName)
	assert.Nil(t, out.CreatorID)
	assert.NotNil(t, out.Comments)
	assert.NotNil(t, out.Attachments)
}

func TestNewNotification_Related(t *testing.T) {
	n := &model.Notification{ID: uuid.New(), UserID: uuid.New(), Type: model.NotificationTaskCreated}
	assert.Nil(t, dto.NewNotification(n).RelatedID)

	projectID := uuid.New()
	n.SetRelated(model.ProjectRef(projectID))
	out := dto.NewNotification(n)
	assert.Equal(t, projectID.String(), *out.RelatedID)
	assert.Equal(t, model.EntityProject, *out.RelatedType)
}
