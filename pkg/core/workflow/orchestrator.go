package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/core/agents"
	"agentic_underwriting/pkg/core/loading"
	"agentic_underwriting/pkg/core/medical"
	"agentic_underwriting/pkg/core/report"
	"agentic_underwriting/pkg/core/risk"
	"agentic_underwriting/pkg/models"
)

// Status of a workflow as a whole.
type Status string

const (
	WorkflowRunning   Status = "running"
	WorkflowCompleted Status = "completed"
	WorkflowFailed    Status = "failed"
)

// Pause between agent calls, for rate limiting and stream visibility.
const interAgentDelay = 500 * time.Millisecond

// Persister stores workflow artifacts. A nil Persister (or one reporting
// unavailable) degrades the workflow to in-memory only.
type Persister interface {
	StoreWorkflowResult(ctx context.Context, applicationID string, result Result) error
	StoreAgentResult(ctx context.Context, applicationID, agentName, agentRole, analysis string, status string, metadata map[string]interface{}) error
	StoreReport(ctx context.Context, applicationID string, rep models.UnderwritingReport) error
	Available() bool
}

// AgentOutput is one completed analysis inside a Result.
type AgentOutput struct {
	Role      string                 `json:"role"`
	Analysis  string                 `json:"analysis"`
	Timestamp string                 `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata"`
}

// Result is the collected outcome of a full workflow run.
type Result struct {
	WorkflowID            string                 `json:"workflow_id"`
	ApplicationID         string                 `json:"application_id"`
	ApplicantName         string                 `json:"applicant_name"`
	ProcessingTimestamp   string                 `json:"processing_timestamp"`
	ProcessingTimeSeconds float64                `json:"processing_time_seconds"`
	Events                []Event                `json:"events"`
	AgentOutputs          map[string]AgentOutput `json:"agent_outputs"`
	FinalDecision         map[string]interface{} `json:"final_decision"`
	Status                string                 `json:"status"`
}

// Orchestrator runs one underwriting workflow and broadcasts its progress.
type Orchestrator struct {
	ID        string
	Applicant models.Applicant
	Medical   models.ExtractedMedical

	Bus    *Bus
	Caller agents.Caller
	Repo   Persister

	ids     eventIDGen
	started time.Time // set by Run, read only from its goroutine

	mu        sync.RWMutex
	status    Status
	updatedAt time.Time
	report    *models.UnderwritingReport
	result    *Result
}

// NewOrchestrator builds a workflow for one application.
func NewOrchestrator(id string, app models.Applicant, med models.ExtractedMedical,
	caller agents.Caller, repo Persister) *Orchestrator {
	return &Orchestrator{
		ID:        id,
		Applicant: app,
		Medical:   med,
		Bus:       NewBus(),
		Caller:    caller,
		Repo:      repo,
		status:    WorkflowRunning,
		updatedAt: time.Now(),
	}
}

// State returns the workflow's status and last-update time.
func (o *Orchestrator) State() (Status, time.Time) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status, o.updatedAt
}

// Report returns the assembled report once the workflow completed.
func (o *Orchestrator) Report() *models.UnderwritingReport {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.report
}

// Result returns the collected run result once the workflow finished.
func (o *Orchestrator) Result() *Result {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.result
}

func (o *Orchestrator) applicationID() string {
	if id := o.Applicant.ApplicationDetails.ApplicationNumber; id != "" {
		return id
	}
	return "APP001"
}

func (o *Orchestrator) applicantName() string {
	if name := o.Applicant.PersonalInfo.Name; name != "" {
		return name
	}
	return "Unknown"
}

// emit publishes an event and persists completed agent analyses
// asynchronously so a slow store never stalls the stream.
func (o *Orchestrator) emit(evt Event) {
	o.mu.Lock()
	o.updatedAt = time.Now()
	o.mu.Unlock()
	o.Bus.Publish(evt)

	if o.Repo != nil && o.Repo.Available() && evt.Status == StatusCompleted && evt.Analysis != "" {
		appID := o.applicationID()
		go func(evt Event) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := o.Repo.StoreAgentResult(ctx, appID, evt.AgentName, evt.AgentRole,
				evt.Analysis, string(evt.Status), evt.Metadata); err != nil {
				log.Error().Err(err).Str("agent", evt.AgentName).Msg("persist agent result failed")
			}
		}(evt)
	}
}

// Run executes the pipeline: deterministic medical and risk analysis, the
// silent loading computation, the five-agent panel, then report assembly.
// Any stage failure emits a terminal error event and marks the workflow
// failed.
func (o *Orchestrator) Run(ctx context.Context) error {
	workflowsStarted.Inc()
	o.started = time.Now()
	appID := o.applicationID()
	name := o.applicantName()

	start := o.ids.newEvent("System", "Workflow Orchestrator", StatusActive,
		fmt.Sprintf("Starting underwriting workflow for %s", name))
	start.Metadata = map[string]interface{}{
		"workflow_id":    o.ID,
		"application_id": appID,
		"total_agents":   len(agents.Workflow),
	}
	o.emit(start)

	// Step 1: deterministic medical analysis.
	o.emit(o.ids.newEvent("MedicalAnalyzer", "ML Medical Data Analyzer", StatusActive,
		"Analyzing medical data using ML models..."))

	stageStart := time.Now()
	findings := medical.Analyze(o.Medical)
	stageDuration.WithLabelValues(string(StageMedicalAnalysis)).Observe(time.Since(stageStart).Seconds())

	medDone := o.ids.newEvent("MedicalAnalyzer", "ML Medical Data Analyzer", StatusCompleted,
		"Medical data analysis complete")
	medDone.Analysis = fmt.Sprintf("Found %d normal, %d abnormal, %d critical findings",
		len(findings.NormalValues), len(findings.AbnormalValues), len(findings.CriticalAlerts))
	medDone.Metadata = map[string]interface{}{
		"normal_count":   len(findings.NormalValues),
		"abnormal_count": len(findings.AbnormalValues),
		"critical_count": len(findings.CriticalAlerts),
		"risk_score":     findings.RiskScore,
	}
	o.emit(medDone)

	// Step 2: deterministic risk assessment.
	o.emit(o.ids.newEvent("RiskAssessmentML", "ML Risk Assessment Engine", StatusActive,
		"Computing risk scores using ML models..."))

	stageStart = time.Now()
	assessment := risk.Assess(o.Applicant, findings)
	stageDuration.WithLabelValues(string(StageRiskAssessment)).Observe(time.Since(stageStart).Seconds())

	riskDone := o.ids.newEvent("RiskAssessmentML", "ML Risk Assessment Engine", StatusCompleted,
		fmt.Sprintf("Risk assessment complete - %s", strings.ToUpper(string(assessment.OverallRiskLevel))))
	riskDone.Analysis = fmt.Sprintf("Overall Risk Score: %.3f", assessment.RiskScore)
	riskDone.Metadata = map[string]interface{}{
		"risk_level":     string(assessment.OverallRiskLevel),
		"risk_score":     assessment.RiskScore,
		"medical_risk":   assessment.MedicalRisk,
		"lifestyle_risk": assessment.LifestyleRisk,
		"financial_risk": assessment.FinancialRisk,
		"occupation_risk": assessment.OccupationRisk,
		"red_flags":      assessment.RedFlags,
	}
	o.emit(riskDone)

	// The loading analysis feeds the report and premiums; it emits no events
	// of its own.
	loadingResult := loading.Compute(o.Applicant, o.Medical, findings)

	// Step 3: agent panel.
	caseContext := agents.BuildCaseContext(o.Applicant, findings, assessment)
	agentAnalyses := make(map[string]string, len(agents.Workflow))
	var completedKeys []string

	stageStart = time.Now()
	for _, spec := range agents.Workflow {
		o.emit(o.ids.newEvent(spec.Name, spec.Role, StatusActive,
			fmt.Sprintf("%s is analyzing the case...", spec.Role)))

		agentContext := agents.AccumulateContext(caseContext, completedKeys, agentAnalyses)
		response, err := o.Caller.Call(ctx, spec, agentContext)
		if err != nil {
			o.emit(o.ids.newEvent(spec.Name, spec.Role, StatusError,
				fmt.Sprintf("Agent failed: %v", err)))
			o.fail(&StageError{Stage: StageAgentPanel, Agent: spec.Key, Err: err})
			return &StageError{Stage: StageAgentPanel, Agent: spec.Key, Err: err}
		}

		agentAnalyses[spec.Key] = response
		completedKeys = append(completedKeys, spec.Key)

		preview := response
		if len(preview) > 300 {
			preview = preview[:300] + "..."
		}
		done := o.ids.newEvent(spec.Name, spec.Role, StatusCompleted,
			fmt.Sprintf("%s completed analysis", spec.Role))
		done.Analysis = response
		done.Metadata = map[string]interface{}{
			"response_length": len(response),
			"preview":         preview,
		}
		o.emit(done)

		select {
		case <-ctx.Done():
			o.fail(&StageError{Stage: StageAgentPanel, Agent: spec.Key, Err: ctx.Err()})
			return ctx.Err()
		case <-time.After(interAgentDelay):
		}
	}
	stageDuration.WithLabelValues(string(StageAgentPanel)).Observe(time.Since(stageStart).Seconds())

	// Step 4: report assembly.
	o.emit(o.ids.newEvent("ReportGenerator", "Report Generation Engine", StatusActive,
		"Compiling final underwriting report..."))

	stageStart = time.Now()
	rep := report.Assemble(o.Applicant, findings, assessment, agentAnalyses, &loadingResult)
	stageDuration.WithLabelValues(string(StageReport)).Observe(time.Since(stageStart).Seconds())
	rep.ProcessingTimeSeconds = time.Since(o.started).Seconds()

	summary := map[string]interface{}{
		"application_id":   rep.ApplicationID,
		"applicant_name":   rep.ApplicantName,
		"decision":         string(rep.Decision),
		"confidence_score": rep.ConfidenceScore,
		"risk_level":       string(rep.RiskAssessment.OverallRiskLevel),
		"total_premium":    rep.TotalFinalPremium(),
		"conditions":       rep.Conditions,
		"exclusions":       rep.Exclusions,
		"reasoning":        rep.Reasoning,
	}
	summaryJSON, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		o.emit(o.ids.newEvent("ReportGenerator", "Report Generation Engine", StatusError,
			fmt.Sprintf("Report generation failed: %v", err)))
		o.fail(&StageError{Stage: StageReport, Err: err})
		return &StageError{Stage: StageReport, Err: err}
	}

	repDone := o.ids.newEvent("ReportGenerator", "Report Generation Engine", StatusCompleted,
		fmt.Sprintf("Underwriting decision: %s", strings.ToUpper(string(rep.Decision))))
	repDone.Analysis = string(summaryJSON)
	repDone.Metadata = summary
	o.emit(repDone)

	finish := o.ids.newEvent("System", "Workflow Orchestrator", StatusCompleted,
		"Underwriting workflow completed successfully")
	finish.Metadata = map[string]interface{}{
		"workflow_id":         o.ID,
		"application_id":      appID,
		"decision":            string(rep.Decision),
		"confidence":          rep.ConfidenceScore,
		"processing_complete": true,
	}
	o.emit(finish)

	result := Result{
		WorkflowID:            o.ID,
		ApplicationID:         appID,
		ApplicantName:         name,
		ProcessingTimestamp:   time.Now().Format(time.RFC3339Nano),
		ProcessingTimeSeconds: time.Since(o.started).Seconds(),
		Events:                o.Bus.History(),
		FinalDecision:         summary,
		Status:                "completed",
	}
	result.AgentOutputs = extractAgentOutputs(result.Events)

	o.mu.Lock()
	o.status = WorkflowCompleted
	o.report = &rep
	o.result = &result
	o.updatedAt = time.Now()
	o.mu.Unlock()

	o.persistFinal(result, rep)
	workflowsCompleted.Inc()
	o.Bus.Close()
	return nil
}

// fail marks the workflow failed and terminates the stream with a System
// error event.
func (o *Orchestrator) fail(err error) {
	workflowsFailed.Inc()
	log.Error().Err(err).Str("workflow_id", o.ID).Msg("workflow failed")

	final := o.ids.newEvent("System", "Workflow Orchestrator", StatusError,
		fmt.Sprintf("Underwriting workflow failed: %v", err))
	final.Metadata = map[string]interface{}{
		"workflow_id":    o.ID,
		"application_id": o.applicationID(),
	}
	o.emit(final)

	result := Result{
		WorkflowID:            o.ID,
		ApplicationID:         o.applicationID(),
		ApplicantName:         o.applicantName(),
		ProcessingTimestamp:   time.Now().Format(time.RFC3339Nano),
		ProcessingTimeSeconds: time.Since(o.started).Seconds(),
		Events:                o.Bus.History(),
		Status:                "failed",
	}
	result.AgentOutputs = extractAgentOutputs(result.Events)

	o.mu.Lock()
	o.status = WorkflowFailed
	o.result = &result
	o.updatedAt = time.Now()
	o.mu.Unlock()

	if o.Repo != nil && o.Repo.Available() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if storeErr := o.Repo.StoreWorkflowResult(ctx, o.applicationID(), result); storeErr != nil {
			log.Error().Err(storeErr).Msg("persist failed workflow result")
		}
	}
	o.Bus.Close()
}

// persistFinal stores the workflow result and the comprehensive report.
func (o *Orchestrator) persistFinal(result Result, rep models.UnderwritingReport) {
	if o.Repo == nil || !o.Repo.Available() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.Repo.StoreWorkflowResult(ctx, result.ApplicationID, result); err != nil {
		log.Error().Err(err).Msg("persist workflow result")
	}
	if err := o.Repo.StoreReport(ctx, result.ApplicationID, rep); err != nil {
		log.Error().Err(err).Msg("persist comprehensive report")
	}
}

// extractAgentOutputs indexes completed analyses by lower-cased agent name.
func extractAgentOutputs(events []Event) map[string]AgentOutput {
	outputs := make(map[string]AgentOutput)
	for _, evt := range events {
		if evt.Status != StatusCompleted || evt.Analysis == "" {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(evt.AgentName), " ", "_")
		outputs[key] = AgentOutput{
			Role:      evt.AgentRole,
			Analysis:  evt.Analysis,
			Timestamp: evt.Timestamp,
			Metadata:  evt.Metadata,
		}
	}
	return outputs
}
