package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/core/agents"
	"agentic_underwriting/pkg/models"
)

// Finished workflows older than this are evicted by the cleanup loop.
const workflowRetention = 24 * time.Hour

// Manager tracks running and recently finished workflows by ID.
type Manager struct {
	mu        sync.RWMutex
	workflows map[string]*Orchestrator

	caller agents.Caller
	repo   Persister
}

// NewManager starts the background cleanup loop and returns the registry.
func NewManager(caller agents.Caller, repo Persister) *Manager {
	m := &Manager{
		workflows: make(map[string]*Orchestrator),
		caller:    caller,
		repo:      repo,
	}
	go m.cleanupLoop()
	return m
}

// Start launches a workflow in the background and returns its ID. Subscribers
// attach via Get(id).Bus.Subscribe().
func (m *Manager) Start(app models.Applicant, med models.ExtractedMedical) string {
	id := uuid.New().String()
	o := NewOrchestrator(id, app, med, m.caller, m.repo)

	m.mu.Lock()
	m.workflows[id] = o
	m.mu.Unlock()

	go func() {
		if err := o.Run(context.Background()); err != nil {
			log.Error().Err(err).Str("workflow_id", id).Msg("workflow run failed")
		}
	}()
	return id
}

// Run executes a workflow synchronously and returns the collected result.
// Used by the non-streaming process endpoint.
func (m *Manager) Run(ctx context.Context, app models.Applicant, med models.ExtractedMedical) (*Result, error) {
	id := uuid.New().String()
	o := NewOrchestrator(id, app, med, m.caller, m.repo)

	m.mu.Lock()
	m.workflows[id] = o
	m.mu.Unlock()

	if err := o.Run(ctx); err != nil {
		return o.Result(), err
	}
	return o.Result(), nil
}

// Get looks up a workflow by ID.
func (m *Manager) Get(id string) (*Orchestrator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.workflows[id]
	if !ok {
		return nil, ErrWorkflowNotFound
	}
	return o, nil
}

// Active returns the IDs of workflows that are still running.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, o := range m.workflows {
		if status, _ := o.State(); status == WorkflowRunning {
			ids = append(ids, id)
		}
	}
	return ids
}

// cleanupLoop evicts finished workflows past the retention window.
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		m.cleanup(time.Now())
	}
}

func (m *Manager) cleanup(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, o := range m.workflows {
		status, updatedAt := o.State()
		if status != WorkflowRunning && now.Sub(updatedAt) > workflowRetention {
			delete(m.workflows, id)
			log.Debug().Str("workflow_id", id).Msg("evicted finished workflow")
		}
	}
}
