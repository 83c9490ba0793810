package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkflowStatus is the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowDraft    WorkflowStatus = "draft"
	WorkflowActive   WorkflowStatus = "active"
	WorkflowInactive WorkflowStatus = "inactive"
)

// Valid reports whether s is a known workflow status.
func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowDraft, WorkflowActive, WorkflowInactive:
		return true
	}
	return false
}

// StepStatus is the completion state of a single step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepCompleted  StepStatus = "completed"
)

// Valid reports whether s is a known step status.
func (s StepStatus) Valid() bool {
	switch s {
	case StepPending, StepInProgress, StepCompleted:
		return true
	}
	return false
}

// Step is one ordered unit of work inside a workflow. Steps have no identity of
// their own; they change only when the whole workflow is replaced.
type Step struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Order       int        `json:"order"`
	Status      StepStatus `json:"status"`
}

// Steps is stored as a JSON column.
type Steps []Step

// Metadata is a free-form mapping stored as a JSON column.
type Metadata map[string]interface{}

// Workflow represents a user-owned workflow record. The (name, created_by) pair
// is unique.
type Workflow struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string         `json:"name" gorm:"size:100;not null;uniqueIndex:idx_workflows_name_owner"`
	Description string         `json:"description,omitempty" gorm:"size:500"`
	Status      WorkflowStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	CreatedBy   uuid.UUID      `json:"created_by" gorm:"type:char(36);not null;uniqueIndex:idx_workflows_name_owner"`
	Steps       Steps          `json:"steps" gorm:"serializer:json"`
	Metadata    Metadata       `json:"metadata,omitempty" gorm:"serializer:json"`
	Progress    int            `json:"progress" gorm:"-"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// BeforeCreate sets UUID and defaults before creating the record.
func (w *Workflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = WorkflowDraft
	}
	return nil
}

// AfterFind recomputes the derived progress field.
func (w *Workflow) AfterFind(tx *gorm.DB) error {
	w.RefreshProgress()
	return nil
}

// AfterSave keeps progress current on create and update.
func (w *Workflow) AfterSave(tx *gorm.DB) error {
	w.RefreshProgress()
	return nil
}

// RefreshProgress sets Progress to the rounded percentage of completed steps,
// 0 when there are no steps.
func (w *Workflow) RefreshProgress() {
	w.Progress = w.computeProgress()
}

func (w *Workflow) computeProgress() int {
	if len(w.Steps) == 0 {
		return 0
	}
	completed := 0
	for _, step := range w.Steps {
		if step.Status == StepCompleted {
			completed++
		}
	}
	return int(math.Round(float64(completed) / float64(len(w.Steps)) * 100))
}
