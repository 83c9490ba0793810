package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowProgress(t *testing.T) {
	tests := []struct {
		name     string
		steps    Steps
		expected int
	}{
		{name: "no steps", steps: nil, expected: 0},
		{name: "empty steps", steps: Steps{}, expected: 0},
		{
			name: "half completed",
			steps: Steps{
				{Name: "one", Status: StepCompleted},
				{Name: "two", Status: StepPending},
			},
			expected: 50,
		},
		{
			name: "all completed",
			steps: Steps{
				{Name: "one", Status: StepCompleted},
				{Name: "two", Status: StepCompleted},
			},
			expected: 100,
		},
		{
			name: "in_progress does not count",
			steps: Steps{
				{Name: "one", Status: StepCompleted},
				{Name: "two", Status: StepInProgress},
				{Name: "three", Status: StepPending},
			},
			expected: 33,
		},
		{
			name: "rounds to nearest",
			steps: Steps{
				{Name: "one", Status: StepCompleted},
				{Name: "two", Status: StepCompleted},
				{Name: "three", Status: StepPending},
			},
			expected: 67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Workflow{Steps: tt.steps}
			w.RefreshProgress()
			assert.Equal(t, tt.expected, w.Progress)
		})
	}
}

func TestStatusValidity(t *testing.T) {
	assert.True(t, WorkflowDraft.Valid())
	assert.True(t, WorkflowActive.Valid())
	assert.True(t, WorkflowInactive.Valid())
	assert.False(t, WorkflowStatus("archived").Valid())
	assert.False(t, WorkflowStatus("").Valid())

	assert.True(t, StepPending.Valid())
	assert.True(t, StepInProgress.Valid())
	assert.True(t, StepCompleted.Valid())
	assert.False(t, StepStatus("done").Valid())
}
