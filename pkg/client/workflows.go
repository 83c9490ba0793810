package client

import (
	"sync"

	"github.com/google/uuid"
)

// WorkflowState is an immutable snapshot of the cached workflows. Transitions
// build a new state from the previous one; callers never see in-place edits.
type WorkflowState struct {
	Workflows []Workflow
	Current   *Workflow
	Loading   bool
	Err       string
}

// WorkflowStore caches the fetched workflow list and a currently-viewed
// workflow, updated by requested/succeeded/failed transitions.
type WorkflowStore struct {
	mu    sync.RWMutex
	state WorkflowState
}

// NewWorkflowStore builds an empty store.
func NewWorkflowStore() *WorkflowStore {
	return &WorkflowStore{}
}

// Snapshot returns a copy of the current state.
func (s *WorkflowStore) Snapshot() WorkflowState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// SetCurrent selects a workflow from the cached list by id; a miss clears the
// current pointer.
func (s *WorkflowStore) SetCurrent(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	next.Current = nil
	for i := range next.Workflows {
		if next.Workflows[i].ID == id {
			next.Current = &next.Workflows[i]
			break
		}
	}
	s.state = next
}

// Reset drops everything, used on logout.
func (s *WorkflowStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = WorkflowState{}
}

func (s *WorkflowStore) requested() {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	next.Loading = true
	next.Err = ""
	s.state = next
}

func (s *WorkflowStore) failed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	next.Loading = false
	// Surface the server's message directly, as the original UI did.
	next.Err = err.Error()
	s.state = next
}

func (s *WorkflowStore) listSucceeded(workflows []Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	next.Loading = false
	next.Workflows = append([]Workflow(nil), workflows...)
	s.state = next
}

func (s *WorkflowStore) createSucceeded(workflow Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	next.Loading = false
	next.Workflows = append(next.Workflows, workflow)
	s.state = next
}

func (s *WorkflowStore) getSucceeded(workflow Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	next.Loading = false
	next.Current = &workflow
	s.state = next
}

func (s *WorkflowStore) replaceSucceeded(workflow Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	next.Loading = false
	for i := range next.Workflows {
		if next.Workflows[i].ID == workflow.ID {
			next.Workflows[i] = workflow
			break
		}
	}
	if next.Current != nil && next.Current.ID == workflow.ID {
		next.Current = &workflow
	}
	s.state = next
}

func (st WorkflowState) clone() WorkflowState {
	next := st
	next.Workflows = append([]Workflow(nil), st.Workflows...)
	if st.Current != nil {
		current := *st.Current
		next.Current = &current
	}
	return next
}
