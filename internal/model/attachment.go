package model

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a file stored for a task. FilePath is relative to the upload root.
type Attachment struct {
	ID               uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	TaskID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename         string    `gorm:"not null"`
	OriginalFilename string    `gorm:"not null"`
	FilePath         string    `gorm:"not null"`
	FileType         string    `gorm:"not null"`
	FileSize         int64     `gorm:"not null"`
	CreatedAt        time.Time
}

func (Attachment) TableName() string {
	return "task_attachments"
}
