package premium

import (
	"strings"

	"agentic_underwriting/pkg/models"
)

// Confidence scores how well-supported a decision is, in [0.5, 1.0]. The
// base depends on the decision type; medical-data quality and risk-score
// consistency nudge it.
func Confidence(decision models.Decision, assessment models.RiskAssessment,
	findings models.MedicalFindings) float64 {

	confidence := 0.85
	switch decision {
	case models.DecisionAutoApproved:
		confidence = 0.95
	case models.DecisionManualReview:
		confidence = 0.80
	case models.DecisionAdditionalRequirements:
		confidence = 0.70
	case models.DecisionDeclined:
		confidence = 0.90
	}

	switch {
	case len(findings.CriticalAlerts) > 0:
		confidence += 0.05
	case len(findings.AbnormalValues) == 0:
		confidence += 0.05
	case len(findings.AbnormalValues) > 3:
		confidence -= 0.10
	}

	if assessment.RiskScore > 0.8 && decision == models.DecisionAutoApproved {
		confidence += 0.05
	} else if assessment.RiskScore < 0.3 && decision == models.DecisionDeclined {
		confidence += 0.05
	}

	if confidence > 1.0 {
		return 1.0
	}
	if confidence < 0.5 {
		return 0.5
	}
	return confidence
}

// GenerateConditions derives standard policy conditions from the risk
// assessment.
func GenerateConditions(assessment models.RiskAssessment) []string {
	var conditions []string
	if assessment.MedicalRisk > 0.3 {
		conditions = append(conditions, "Annual medical check-up required")
	}
	if assessment.LifestyleRisk > 0.2 {
		conditions = append(conditions, "Lifestyle modification counseling recommended")
	}
	if len(assessment.RedFlags) > 0 {
		conditions = append(conditions, "Additional medical examinations may be required during policy term")
	}
	return conditions
}

// GenerateExclusions derives policy exclusions from the medical findings on
// top of the standard base set.
func GenerateExclusions(findings models.MedicalFindings) []string {
	exclusions := []string{"Standard suicide clause", "War and terrorism exclusion"}
	for _, alert := range findings.CriticalAlerts {
		lower := strings.ToLower(alert)
		if strings.Contains(lower, "cardiac") || strings.Contains(lower, "heart") {
			exclusions = append(exclusions, "Pre-existing cardiac conditions exclusion for 4 years")
		}
		if strings.Contains(lower, "diabetes") {
			exclusions = append(exclusions, "Diabetes-related complications exclusion for 2 years")
		}
	}
	return exclusions
}
