package agents

import (
	"fmt"
	"strconv"
	"strings"

	"agentic_underwriting/pkg/models"
)

// maxPriorAnalysisChars limits how much of each earlier agent's response is
// replayed into the next agent's context.
const maxPriorAnalysisChars = 500

// BuildCaseContext renders the shared case briefing every agent receives.
// Lists are truncated to keep the context compact: two critical alerts,
// three abnormal findings, two red flags.
func BuildCaseContext(app models.Applicant, findings models.MedicalFindings, assessment models.RiskAssessment) string {
	smoking := "Non-smoker"
	if app.Lifestyle.Smoker {
		smoking = "Smoker"
	}
	return fmt.Sprintf(`
🎯 UNDERWRITING CASE: %s (Age: %d)

📋 BASIC INFO: %s | Income: ₹%s | Coverage: ₹%s

🏥 KEY MEDICAL DATA:
- Critical Alerts: %s
- Abnormal Findings: %s
- Red Flags: %s

💼 LIFESTYLE: %s | BMI: %s | Exercise: %s

📊 ML RISK SCORES:
- Overall Risk: %s (%.3f)
- Medical: %.3f | Lifestyle: %.3f
- Financial: %.3f | Occupational: %.3f

🎯 WORKFLOW: Medical Review → Fraud Detection → Risk Assessment → Premium Calculation → Final Decision
`,
		valueOr(app.PersonalInfo.Name, "Unknown"), app.PersonalInfo.Age,
		valueOr(app.PersonalInfo.Occupation, "Unknown"),
		FormatAmount(app.PersonalInfo.Income.Annual),
		FormatAmount(app.InsuranceCoverage.TotalSumAssured),
		SafeJoin(head(findings.CriticalAlerts, 2)),
		SafeJoin(head(findings.AbnormalValues, 3)),
		SafeJoin(head(assessment.RedFlags, 2)),
		smoking, BMIString(app),
		valueOr(app.Lifestyle.Exercise.Frequency, "Unknown"),
		strings.ToUpper(string(assessment.OverallRiskLevel)), assessment.RiskScore,
		assessment.MedicalRisk, assessment.LifestyleRisk,
		assessment.FinancialRisk, assessment.OccupationRisk,
	)
}

// AccumulateContext appends the earlier agents' analyses to the base context
// so each agent builds on the panel's prior work. prior preserves insertion
// order via the keys slice.
func AccumulateContext(base string, keys []string, prior map[string]string) string {
	if len(keys) == 0 {
		return base
	}
	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("\n\n📋 PREVIOUS AGENT ANALYSES:\n")
	for _, key := range keys {
		analysis, ok := prior[key]
		if !ok {
			continue
		}
		label := strings.ToUpper(strings.ReplaceAll(key, "_", " "))
		if len(analysis) > maxPriorAnalysisChars {
			analysis = analysis[:maxPriorAnalysisChars]
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n%s...\n", label, analysis))
	}
	return sb.String()
}

// SafeJoin joins items with ", ", returning "None" for an empty list.
func SafeJoin(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, ", ")
}

// BMIString renders BMI with its category, e.g. "24.5 (Normal)".
func BMIString(app models.Applicant) string {
	heightCm := app.Health.Physical.Height.Value
	weightKg := app.Health.Physical.Weight.Value
	if heightCm <= 0 || weightKg <= 0 {
		return "Unknown (height/weight missing)"
	}
	heightM := heightCm / 100
	bmi := float64(int(weightKg/(heightM*heightM)*10+0.5)) / 10

	category := "Obese"
	switch {
	case bmi < 18.5:
		category = "Underweight"
	case bmi < 25:
		category = "Normal"
	case bmi < 30:
		category = "Overweight"
	}
	return fmt.Sprintf("%g (%s)", bmi, category)
}

// FormatCoverage renders the requested covers as a bullet list.
func FormatCoverage(covers []models.Coverage) string {
	if len(covers) == 0 {
		return "- No coverage details available"
	}
	lines := make([]string, 0, len(covers))
	for _, c := range covers {
		lines = append(lines, fmt.Sprintf("- %s: ₹%s for %d years",
			valueOr(c.CoverType, "Unknown"), FormatAmount(c.SumAssured), c.Term))
	}
	return strings.Join(lines, "\n")
}

// FormatAmount renders a monetary amount with thousands separators,
// truncating any fractional part.
func FormatAmount(v float64) string {
	s := strconv.FormatInt(int64(v), 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
