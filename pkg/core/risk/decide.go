package risk

import (
	"strings"

	"agentic_underwriting/pkg/models"
)

// Decision thresholds on the composite risk score; overridden from
// configuration at startup.
var (
	AutoApprovalThreshold = 0.7
	HighRiskThreshold     = 0.3
)

// Any of these inside a critical alert mandates an outright decline.
var declineConditions = []string{
	"myocardial ischemia", "st depression", "cardiac", "heart attack",
	"stroke", "cancer", "malignancy", "hiv", "aids", "cirrhosis",
	"renal failure", "dialysis",
}

// Decide derives an underwriting decision from the deterministic assessment
// alone. It backstops report assembly when the agent panel produced no
// decision text to parse.
func Decide(assessment models.RiskAssessment, findings models.MedicalFindings) models.Decision {
	for _, alert := range findings.CriticalAlerts {
		lower := strings.ToLower(alert)
		for _, cond := range declineConditions {
			if strings.Contains(lower, cond) {
				return models.DecisionDeclined
			}
		}
	}

	switch {
	case assessment.RiskScore >= AutoApprovalThreshold &&
		len(assessment.RedFlags) == 0 && len(findings.CriticalAlerts) == 0:
		return models.DecisionAutoApproved
	case assessment.RiskScore >= HighRiskThreshold && len(findings.CriticalAlerts) <= 1:
		return models.DecisionManualReview
	case len(findings.CriticalAlerts) > 0 || len(assessment.RedFlags) > 2:
		return models.DecisionAdditionalRequirements
	default:
		return models.DecisionManualReview
	}
}
