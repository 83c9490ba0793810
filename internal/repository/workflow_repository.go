package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"flowdeck/internal/model"
)

// ListFilter narrows a workflow listing. Zero values mean "no filter";
// Page and Limit are normalized by the service layer before reaching here.
type ListFilter struct {
	Page   int
	Limit  int
	Search string
	Status model.WorkflowStatus
}

// WorkflowRepository defines workflow persistence operations. Every read is
// owner-scoped; there is no cross-user lookup.
type WorkflowRepository interface {
	Create(ctx context.Context, workflow *model.Workflow) error
	Update(ctx context.Context, workflow *model.Workflow) error
	FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Workflow, error)
	List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]model.Workflow, int64, error)
}

type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository builds a GORM-backed workflow repository.
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Create(ctx context.Context, workflow *model.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *workflowRepository) Update(ctx context.Context, workflow *model.Workflow) error {
	return r.db.WithContext(ctx).Save(workflow).Error
}

func (r *workflowRepository) FindByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Workflow, error) {
	var workflow model.Workflow
	err := r.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, ownerID).
		First(&workflow).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

// List returns one page of the owner's workflows, newest-created first, plus
// the total count matching the filter. Search matches name or description,
// case-insensitively via the column collation.
func (r *workflowRepository) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]model.Workflow, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Workflow{}).
		Where("created_by = ?", ownerID)

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	// Reusable session: Count and Find share the same conditions.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var workflows []model.Workflow
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&workflows).Error
	if err != nil {
		return nil, 0, err
	}

	return workflows, total, nil
}
