package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tracker/internal/model"
)

type AttachmentRepository struct {
	db *gorm.DB
}

type AttachmentRepositoryInterface interface {
	CreateBatch(ctx context.Context, attachments []model.Attachment) error
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Attachment, error)
	DeleteByTask(ctx context.Context, taskID uuid.UUID) error
}

var _ AttachmentRepositoryInterface = (*AttachmentRepository)(nil)

func NewAttachmentRepository(db *gorm.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// CreateBatch appends attachment rows; existing rows are never touched
func (r *AttachmentRepository) CreateBatch(ctx context.Context, attachments []model.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&attachments).Error
}

func (r *AttachmentRepository) ListByTask(ctx context.Context, taskID uuid.UUID) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).Order("created_at").Find(&attachments).Error
	return attachments, err
}

func (r *AttachmentRepository) DeleteByTask(ctx context.Context, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("task_id = ?", taskID).Delete(&model.Attachment{}).Error
}
