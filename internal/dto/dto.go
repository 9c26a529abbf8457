// Package dto holds the JSON shapes shared by the HTTP handlers and the API client.
package dto

import (
	"time"

	"tracker/internal/model"
)

// DateLayout is the wire format of task due dates.
const DateLayout = "2006-01-02"

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func NewUser(u *model.User) User {
	return User{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}

type Project struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	CreatedAt   string `json:"created_at"`
}

func NewProject(p *model.Project) Project {
	return Project{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		OwnerID:     p.OwnerID.String(),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

type Comment struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func NewComment(c *model.Comment) Comment {
	return Comment{
		ID:        c.ID.String(),
		TaskID:    c.TaskID.String(),
		UserID:    c.UserID.String(),
		UserName:  c.User.Name,
		Content:   c.Content,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}

type Attachment struct {
	ID               string `json:"id"`
	Filename         string `json:"filename"`
	OriginalFilename string `json:"original_filename"`
	FileType         string `json:"file_type"`
	FileSize         int64  `json:"file_size"`
}

func NewAttachment(a *model.Attachment) Attachment {
	return Attachment{
		ID:               a.ID.String(),
		Filename:         a.Filename,
		OriginalFilename: a.OriginalFilename,
		FileType:         a.FileType,
		FileSize:         a.FileSize,
	}
}

type Task struct {
	ID           string         `json:"id"`
	ProjectID    string         `json:"project_id"`
	ProjectTitle string         `json:"project_title,omitempty"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	DueDate      string         `json:"due_date"`
	Priority     model.Priority `json:"priority"`
	Status       model.Status   `json:"status"`
	AssigneeID   *string        `json:"assignee_id,omitempty"`
	AssigneeName *string        `json:"assignee_name,omitempty"`
	CreatorID    *string        `json:"creator_id,omitempty"`
	Comments     []Comment      `json:"comments"`
	Attachments  []Attachment   `json:"attachments"`
}

func NewTask(t *model.Task) Task {
	out := Task{
		ID:           t.ID.String(),
		ProjectID:    t.ProjectID.String(),
		ProjectTitle: t.Project.Title,
		Title:        t.Title,
		Description:  t.Description,
		DueDate:      t.DueDate.Format(DateLayout),
		Priority:     t.Priority,
		Status:       t.Status,
		Comments:     make([]Comment, 0, len(t.Comments)),
		Attachments:  make([]Attachment, 0, len(t.Attachments)),
	}
	if t.AssigneeID != nil {
		s := t.AssigneeID.String()
		out.AssigneeID = &s
		if t.Assignee != nil {
			out.AssigneeName = &t.Assignee.Name
		}
	}
	if t.CreatorID != nil {
		s := t.CreatorID.String()
		out.CreatorID = &s
	}
	for i := range t.Comments {
		out.Comments = append(out.Comments, NewComment(&t.Comments[i]))
	}
	for i := range t.Attachments {
		out.Attachments = append(out.Attachments, NewAttachment(&t.Attachments[i]))
	}
	return out
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	ProjectID   *string         `json:"project_id,omitempty" binding:"omitempty,uuid"`
	Title       *string         `json:"title,omitempty" binding:"omitempty,min=1,max=255"`
	Description *string         `json:"description,omitempty"`
	DueDate     *string         `json:"due_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	Priority    *model.Priority `json:"priority,omitempty" binding:"omitempty,oneof='Must be done' 'Important' 'Good to have'"`
	Status      *model.Status   `json:"status,omitempty" binding:"omitempty,oneof='To Do' 'In Progress' 'Under Review' 'Completed'"`
	AssigneeID  *string         `json:"assignee_id,omitempty" binding:"omitempty,uuid"`
}

type TaskCreate struct {
	ProjectID   string         `json:"project_id" binding:"required,uuid"`
	Title       string         `json:"title" binding:"required,max=255"`
	Description string         `json:"description"`
	DueDate     string         `json:"due_date" binding:"required,datetime=2006-01-02"`
	Priority    model.Priority `json:"priority" binding:"required,oneof='Must be done' 'Important' 'Good to have'"`
	Status      model.Status   `json:"status" binding:"required,oneof='To Do' 'In Progress' 'Under Review' 'Completed'"`
	AssigneeID  *string        `json:"assignee_id,omitempty" binding:"omitempty,uuid"`
}

type PriorityUpdate struct {
	Priority model.Priority `json:"priority" binding:"required,oneof='Must be done' 'Important' 'Good to have'"`
}

type Notification struct {
	ID          string                 `json:"id"`
	UserID      string                 `json:"user_id"`
	Title       string                 `json:"title"`
	Content     string                 `json:"content"`
	Type        model.NotificationType `json:"type"`
	Read        bool                   `json:"read"`
	RelatedID   *string                `json:"related_id"`
	RelatedType *model.EntityKind      `json:"related_type"`
	CreatedAt   time.Time              `json:"created_at"`
}

func NewNotification(n *model.Notification) Notification {
	out := Notification{
		ID:          n.ID.String(),
		UserID:      n.UserID.String(),
		Title:       n.Title,
		Content:     n.Content,
		Type:        n.Type,
		Read:        n.Read,
		RelatedType: n.RelatedType,
		CreatedAt:   n.CreatedAt,
	}
	if n.RelatedID != nil {
		s := n.RelatedID.String()
		out.RelatedID = &s
	}
	return out
}

// Page is the paginated envelope returned by list endpoints.
type Page[T any] struct {
	Data        []T   `json:"data"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

func NewPage[T any](data []T, page, perPage int, total int64) Page[T] {
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, CurrentPage: page, PerPage: perPage, Total: total, LastPage: last}
}
