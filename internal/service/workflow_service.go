package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "flowdeck/internal/errors"
	"flowdeck/internal/model"
	"flowdeck/internal/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// WorkflowInput carries the writable attributes of a workflow. The owner is
// never part of the input; it comes from the authenticated identity.
type WorkflowInput struct {
	Name        string
	Description string
	Status      model.WorkflowStatus
	Steps       model.Steps
	Metadata    model.Metadata
}

// Pagination describes one page of a listing.
type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// ListResult is one page of workflows plus pagination totals.
type ListResult struct {
	Data       []model.Workflow `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// WorkflowService exposes owner-scoped workflow operations.
type WorkflowService interface {
	Create(ctx context.Context, ownerID uuid.UUID, input WorkflowInput) (*model.Workflow, error)
	List(ctx context.Context, ownerID uuid.UUID, filter repository.ListFilter) (*ListResult, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Workflow, error)
	Replace(ctx context.Context, ownerID, id uuid.UUID, input WorkflowInput) (*model.Workflow, error)
}

type workflowService struct {
	repo repository.WorkflowRepository
}

// NewWorkflowService builds a WorkflowService.
func NewWorkflowService(repo repository.WorkflowRepository) WorkflowService {
	return &workflowService{repo: repo}
}

// normalize validates the input and fills defaults: status draft, step status
// pending.
func normalize(input *WorkflowInput) error {
	var fields []string
	if input.Name == "" {
		fields = append(fields, "workflow name is required")
	}
	if len(input.Name) > 100 {
		fields = append(fields, "name cannot be more than 100 characters")
	}
	if len(input.Description) > 500 {
		fields = append(fields, "description cannot be more than 500 characters")
	}

	if input.Status == "" {
		input.Status = model.WorkflowDraft
	} else if !input.Status.Valid() {
		fields = append(fields, fmt.Sprintf("%q is not a valid status", input.Status))
	}

	for i := range input.Steps {
		step := &input.Steps[i]
		if step.Status == "" {
			step.Status = model.StepPending
		} else if !step.Status.Valid() {
			fields = append(fields, fmt.Sprintf("%q is not a valid step status", step.Status))
		}
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError(fields...)
	}
	return nil
}

// Create stores a new workflow stamped with its owner.
func (s *workflowService) Create(ctx context.Context, ownerID uuid.UUID, input WorkflowInput) (*model.Workflow, error) {
	if err := normalize(&input); err != nil {
		return nil, err
	}

	workflow := &model.Workflow{
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		CreatedBy:   ownerID,
		Steps:       input.Steps,
		Metadata:    input.Metadata,
	}

	if err := s.repo.Create(ctx, workflow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrWorkflowNameTaken
		}
		return nil, fmt.Errorf("create workflow: %w", err)
	}

	return workflow, nil
}

// List returns one page of the owner's workflows. Page is 1-indexed, limit
// defaults to 10 and is capped at 100; pages is ceil(total/limit).
func (s *workflowService) List(ctx context.Context, ownerID uuid.UUID, filter repository.ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	workflows, total, err := s.repo.List(ctx, ownerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	if workflows == nil {
		workflows = []model.Workflow{}
	}

	return &ListResult{
		Data: workflows,
		Pagination: Pagination{
			Total: total,
			Page:  filter.Page,
			Pages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		},
	}, nil
}

// Get returns one of the owner's workflows; records owned by anyone else are
// indistinguishable from missing ones.
func (s *workflowService) Get(ctx context.Context, ownerID, id uuid.UUID) (*model.Workflow, error) {
	workflow, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("find workflow: %w", err)
	}
	return workflow, nil
}

// Replace swaps the whole writable surface of a workflow: name, description,
// status, steps, metadata. Ownership never moves.
func (s *workflowService) Replace(ctx context.Context, ownerID, id uuid.UUID, input WorkflowInput) (*model.Workflow, error) {
	if err := normalize(&input); err != nil {
		return nil, err
	}

	workflow, err := s.repo.FindByIDAndOwner(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWorkflowNotFound
		}
		return nil, fmt.Errorf("find workflow: %w", err)
	}

	workflow.Name = input.Name
	workflow.Description = input.Description
	workflow.Status = input.Status
	workflow.Steps = input.Steps
	workflow.Metadata = input.Metadata

	if err := s.repo.Update(ctx, workflow); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrWorkflowNameTaken
		}
		return nil, fmt.Errorf("update workflow: %w", err)
	}

	return workflow, nil
}
