package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTaskCreated    NotificationType = "task_created"
	NotificationTaskAssigned   NotificationType = "task_assigned"
	NotificationTaskUpdated    NotificationType = "task_updated"
	NotificationTaskAttachment NotificationType = "task_attachment"
	NotificationCommentCreated NotificationType = "comment_created"
	NotificationProjectCreated NotificationType = "project_created"
	NotificationProjectUpdated NotificationType = "project_updated"
	NotificationSystem         NotificationType = "system"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTaskCreated, NotificationTaskAssigned, NotificationTaskUpdated,
		NotificationTaskAttachment, NotificationCommentCreated, NotificationProjectCreated,
		NotificationProjectUpdated, NotificationSystem:
		return true
	}
	return false
}

type EntityKind string

const (
	EntityProject EntityKind = "project"
	EntityTask    EntityKind = "task"
	EntityComment EntityKind = "comment"
)

// RelatedRef is a weak (kind, id) pointer to the entity a notification is about.
// The zero value means no related entity.
type RelatedRef struct {
	Kind EntityKind
	ID   uuid.UUID
}

var NoRef RelatedRef

func ProjectRef(id uuid.UUID) RelatedRef { return RelatedRef{Kind: EntityProject, ID: id} }
func TaskRef(id uuid.UUID) RelatedRef    { return RelatedRef{Kind: EntityTask, ID: id} }
func CommentRef(id uuid.UUID) RelatedRef { return RelatedRef{Kind: EntityComment, ID: id} }

func (r RelatedRef) IsZero() bool {
	return r.Kind == "" || r.ID == uuid.Nil
}

// Notification is a single recipient's copy of an activity event.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	Title       string           `gorm:"not null"`
	Content     string           `gorm:"type:text;not null"`
	Type        NotificationType `gorm:"type:varchar(32);not null"`
	Read        bool             `gorm:"not null"`
	RelatedID   *uuid.UUID       `gorm:"type:uuid"`
	RelatedType *EntityKind      `gorm:"type:varchar(16)"`
	CreatedAt   time.Time        `gorm:"index"`
}

func (n *Notification) Related() RelatedRef {
	if n.RelatedID == nil || n.RelatedType == nil {
		return NoRef
	}
	return RelatedRef{Kind: *n.RelatedType, ID: *n.RelatedID}
}

func (n *Notification) SetRelated(ref RelatedRef) {
	if ref.IsZero() {
		n.RelatedID = nil
		n.RelatedType = nil
		return
	}
	id, kind := ref.ID, ref.Kind
	n.RelatedID = &id
	n.RelatedType = &kind
}
