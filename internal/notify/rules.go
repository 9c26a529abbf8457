package notify

import (
	"fmt"

	"github.com/google/uuid"

	"tracker/internal/model"
)

// Notice is one notification to be delivered to one recipient.
type Notice struct {
	Recipient uuid.UUID
	Title     string
	Content   string
	Type      model.NotificationType
	Related   model.RelatedRef
}

// TaskCreated notifies the creator and, when different, the assignee.
func TaskCreated(task *model.Task, actor uuid.UUID) []Notice {
	ref := model.TaskRef(task.ID)
	notices := []Notice{{
		Recipient: actor,
		Title:     "New Task Created",
		Content:   fmt.Sprintf("You created task %q", task.Title),
		Type:      model.NotificationTaskCreated,
		Related:   ref,
	}}
	if task.AssigneeID != nil && *task.AssigneeID != actor {
		notices = append(notices, Notice{
			Recipient: *task.AssigneeID,
			Title:     "New Task Assigned",
			Content:   fmt.Sprintf("You have been assigned to the task %q", task.Title),
			Type:      model.NotificationTaskAssigned,
			Related:   ref,
		})
	}
	return notices
}

// TaskUpdated compares the task before and after a partial update made by actor.
// A new non-null assignee other than the actor is told about the assignment, and
// the creator is told about a status change they did not make.
func TaskUpdated(before, after *model.Task, actor uuid.UUID) []Notice {
	ref := model.TaskRef(after.ID)
	var notices []Notice

	if after.AssigneeID != nil && !before.AssignedTo(*after.AssigneeID) && *after.AssigneeID != actor {
		notices = append(notices, Notice{
			Recipient: *after.AssigneeID,
			Title:     "Task Assigned to You",
			Content:   fmt.Sprintf("You have been assigned to the task %q", after.Title),
			Type:      model.NotificationTaskAssigned,
			Related:   ref,
		})
	}

	if before.Status != after.Status && after.CreatorID != nil && *after.CreatorID != actor {
		notices = append(notices, Notice{
			Recipient: *after.CreatorID,
			Title:     "Task Status Updated",
			Content:   fmt.Sprintf("The status of %q has been changed to %q", after.Title, after.Status),
			Type:      model.NotificationTaskUpdated,
			Related:   ref,
		})
	}
	return notices
}

// PriorityChanged confirms a drag-and-drop priority change to the actor.
func PriorityChanged(task *model.Task, actor uuid.UUID) []Notice {
	return []Notice{{
		Recipient: actor,
		Title:     "Task Priority Changed",
		Content:   "Priority changed to: " + string(task.Priority),
		Type:      model.NotificationTaskUpdated,
		Related:   model.TaskRef(task.ID),
	}}
}

// AttachmentsAdded notifies the assignee and the creator, skipping the uploader
// and never notifying the same person twice.
func AttachmentsAdded(task *model.Task, actor uuid.UUID) []Notice {
	ref := model.TaskRef(task.ID)
	title := "New Attachments Added"
	content := fmt.Sprintf("New files have been attached to task %q", task.Title)

	var notices []Notice
	if task.AssigneeID != nil && *task.AssigneeID != actor {
		notices = append(notices, Notice{
			Recipient: *task.AssigneeID, Title: title, Content: content,
			Type: model.NotificationTaskAttachment, Related: ref,
		})
	}
	if task.CreatorID != nil && *task.CreatorID != actor && !task.AssignedTo(*task.CreatorID) {
		notices = append(notices, Notice{
			Recipient: *task.CreatorID, Title: title, Content: content,
			Type: model.NotificationTaskAttachment, Related: ref,
		})
	}
	return notices
}

// CommentCreated confirms the comment to its author and notifies the assignee.
func CommentCreated(task *model.Task, comment *model.Comment, actor uuid.UUID) []Notice {
	ref := model.CommentRef(comment.ID)
	notices := []Notice{{
		Recipient: actor,
		Title:     "New Comment Added",
		Content:   fmt.Sprintf("You added a comment to task %q", task.Title),
		Type:      model.NotificationCommentCreated,
		Related:   ref,
	}}
	if task.AssigneeID != nil && *task.AssigneeID != actor {
		notices = append(notices, Notice{
			Recipient: *task.AssigneeID,
			Title:     "New Comment on Task",
			Content:   fmt.Sprintf("A new comment has been added to task %q", task.Title),
			Type:      model.NotificationCommentCreated,
			Related:   ref,
		})
	}
	return notices
}

// ProjectCreated confirms the project to its creator and announces it to a
// sample of other users.
func ProjectCreated(project *model.Project, actor uuid.UUID, sample []uuid.UUID) []Notice {
	ref := model.ProjectRef(project.ID)
	notices := []Notice{{
		Recipient: actor,
		Title:     "New Project Created",
		Content:   fmt.Sprintf("You created project %q", project.Title),
		Type:      model.NotificationProjectCreated,
		Related:   ref,
	}}
	for _, id := range distinct(sample, actor) {
		notices = append(notices, Notice{
			Recipient: id,
			Title:     "New Project",
			Content:   fmt.Sprintf("A new project %q has been created", project.Title),
			Type:      model.NotificationProjectCreated,
			Related:   ref,
		})
	}
	return notices
}

// ProjectUpdated notifies every member (user holding a task in the project) except the actor.
func ProjectUpdated(project *model.Project, actor uuid.UUID, members []uuid.UUID) []Notice {
	ref := model.ProjectRef(project.ID)
	var notices []Notice
	for _, id := range distinct(members, actor) {
		notices = append(notices, Notice{
			Recipient: id,
			Title:     "Project Updated",
			Content:   fmt.Sprintf("Project %q has been updated", project.Title),
			Type:      model.NotificationProjectUpdated,
			Related:   ref,
		})
	}
	return notices
}

// distinct drops duplicates, uuid.Nil and exclude, keeping first-seen order.
func distinct(ids []uuid.UUID, exclude uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
