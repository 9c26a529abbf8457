package model

import (
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityMustBeDone Priority = "Must be done"
	PriorityImportant  Priority = "Important"
	PriorityGoodToHave Priority = "Good to have"
)

// Priorities lists the priority lanes in board order.
var Priorities = []Priority{PriorityMustBeDone, PriorityImportant, PriorityGoodToHave}

func (p Priority) Valid() bool {
	switch p {
	case PriorityMustBeDone, PriorityImportant, PriorityGoodToHave:
		return true
	}
	return false
}

type Status string

const (
	StatusToDo        Status = "To Do"
	StatusInProgress  Status = "In Progress"
	StatusUnderReview Status = "Under Review"
	StatusCompleted   Status = "Completed"
)

var Statuses = []Status{StatusToDo, StatusInProgress, StatusUnderReview, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusUnderReview, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	ProjectID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title       string     `gorm:"not null"`
	Description string
	DueDate     time.Time  `gorm:"type:date;not null"`
	Priority    Priority   `gorm:"type:varchar(32);not null"`
	Status      Status     `gorm:"type:varchar(32);not null"`
	AssigneeID  *uuid.UUID `gorm:"type:uuid;index"`
	CreatorID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project     Project      `gorm:"foreignKey:ProjectID"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID"`
	Creator     *User        `gorm:"foreignKey:CreatorID"`
	Comments    []Comment    `gorm:"foreignKey:TaskID"`
	Attachments []Attachment `gorm:"foreignKey:TaskID"`
}

// AssignedTo reports whether the task has an assignee equal to id.
func (t *Task) AssignedTo(id uuid.UUID) bool {
	return t.AssigneeID != nil && *t.AssigneeID == id
}

// CreatedBy reports whether the task has a creator equal to id.
func (t *Task) CreatedBy(id uuid.UUID) bool {
	return t.CreatorID != nil && *t.CreatorID == id
}
