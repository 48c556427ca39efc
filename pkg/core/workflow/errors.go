package workflow

import (
	"errors"
	"fmt"
)

// Stage identifies where in the pipeline a workflow failed.
type Stage string

const (
	StageMedicalAnalysis Stage = "medical_analysis"
	StageRiskAssessment  Stage = "risk_assessment"
	StageAgentPanel      Stage = "agent_panel"
	StageReport          Stage = "report_generation"
)

// StageError wraps a failure with the pipeline stage it occurred in.
type StageError struct {
	Stage Stage
	Agent string // set for agent-panel failures
	Err   error
}

func (e *StageError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("%s (%s): %v", e.Stage, e.Agent, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ErrWorkflowNotFound is returned for lookups of unknown workflow IDs.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrInvalidInput marks a request body that cannot become an applicant.
var ErrInvalidInput = errors.New("invalid application input")

// ErrStoreUnavailable is returned by query endpoints when no document store
// is configured.
var ErrStoreUnavailable = errors.New("document store unavailable")
