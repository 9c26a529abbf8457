package repository

import (
	"context"
	"errors"

	"tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	db *gorm.DB
}

type ProjectRepositoryInterface interface {
	Create(ctx context.Context, project *model.Project) error
	List(ctx context.Context) ([]model.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
}

var _ ProjectRepositoryInterface = (*ProjectRepository)(nil)

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	result := r.db.WithContext(ctx).
		Model(project).
		Select("title", "description").
		Updates(project)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// Delete removes a project; tasks, comments and attachment rows cascade in the schema
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}
	return nil
}

// MemberIDs returns the distinct users holding at least one task in the
// project, as assignee or as creator. Assignees come first.
func (r *ProjectRepository) MemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var assignees, creators []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Distinct("assignee_id").
		Where("project_id = ? AND assignee_id IS NOT NULL", projectID).
		Pluck("assignee_id", &assignees).Error
	if err != nil {
		return nil, err
	}
	err = r.db.WithContext(ctx).
		Model(&model.Task{}).
		Distinct("creator_id").
		Where("project_id = ? AND creator_id IS NOT NULL", projectID).
		Pluck("creator_id", &creators).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(assignees)+len(creators))
	ids := make([]uuid.UUID, 0, len(assignees)+len(creators))
	for _, id := range append(assignees, creators...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
