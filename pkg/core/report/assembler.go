// Package report assembles the terminal underwriting report from the
// deterministic engine outputs and the agent panel's responses, and renders
// it for delivery.
package report

import (
	"time"

	"agentic_underwriting/pkg/core/parser"
	"agentic_underwriting/pkg/core/premium"
	"agentic_underwriting/pkg/core/risk"
	"agentic_underwriting/pkg/models"
)

// analysisKeys maps agent keys to the analysis-type keys the parser and the
// stored report use.
var analysisKeys = map[string]string{
	"medical_reviewer":   "medical_review",
	"risk_assessor":      "risk_assessment",
	"premium_calculator": "premium_calculation",
	"fraud_detector":     "fraud_detection",
	"decision_maker":     "final_decision",
}

// Assemble builds the full underwriting report. agentAnalyses is keyed by
// agent key (medical_reviewer, ...). A declined application carries no
// premium calculations.
func Assemble(app models.Applicant, findings models.MedicalFindings,
	assessment models.RiskAssessment, agentAnalyses map[string]string,
	loadingResult *models.LoadingResult) models.UnderwritingReport {

	mapped := make(map[string]string, len(analysisKeys))
	for agentKey, analysisKey := range analysisKeys {
		mapped[analysisKey] = agentAnalyses[agentKey]
	}

	premiumInfo := parser.ParsePremium(mapped["premium_calculation"])
	decision, details := parser.ExtractDecision(mapped["final_decision"], premiumInfo)
	if mapped["final_decision"] == "" {
		// No decision text to parse; fall back to the rule-based decision
		// over the deterministic assessment.
		decision = risk.Decide(assessment, findings)
		applyDecision(&details, decision)
	}

	var calcs []models.PremiumCalculation
	if decision != models.DecisionDeclined {
		calcs = premium.Calculate(app, details, &assessment, loadingResult)
	}

	conditions := details.Conditions
	if len(conditions) == 0 {
		conditions = premium.GenerateConditions(assessment)
	}
	exclusions := details.Exclusions
	if len(exclusions) == 0 {
		exclusions = premium.GenerateExclusions(findings)
	}

	applicationID := app.ApplicationDetails.ApplicationNumber
	if applicationID == "" {
		applicationID = "APP001"
	}
	applicantName := app.PersonalInfo.Name
	if applicantName == "" {
		applicantName = "Unknown"
	}

	detailed := make(map[string]string, len(analysisKeys))
	for agentKey := range analysisKeys {
		detailed[agentKey] = agentAnalyses[agentKey]
	}

	return models.UnderwritingReport{
		ApplicationID:          applicationID,
		ApplicantName:          applicantName,
		Decision:               decision,
		RiskAssessment:         assessment,
		MedicalAnalysis:        findings,
		LoadingResult:          loadingResult,
		PremiumCalculations:    calcs,
		Conditions:             conditions,
		Exclusions:             exclusions,
		Reasoning:              parser.BuildReasoning(decision, details, assessment, findings, mapped),
		ConfidenceScore:        premium.Confidence(decision, assessment, findings),
		GeneratedAt:            time.Now(),
		AgentResponses:         mapped,
		DetailedAgentResponses: detailed,
		DecisionDetails:        details,
	}
}

// applyDecision aligns the decision details with a rule-derived decision.
func applyDecision(details *models.DecisionDetails, decision models.Decision) {
	switch decision {
	case models.DecisionAutoApproved:
		details.DecisionType, details.ProcessingTimeDays = "auto", 1
	case models.DecisionManualReview:
		details.DecisionType, details.ProcessingTimeDays = "manual", 3
	case models.DecisionAdditionalRequirements:
		details.DecisionType, details.ProcessingTimeDays = "additional", 7
	case models.DecisionDeclined:
		details.DecisionType, details.ProcessingTimeDays = "declined", 2
	}
}
