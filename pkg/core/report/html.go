package report

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"agentic_underwriting/pkg/core/utils"
	"agentic_underwriting/pkg/models"
)

// ToMarkdown renders a report as a Markdown document: the decision summary,
// the premium table and every agent's detailed analysis.
func ToMarkdown(r models.UnderwritingReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Underwriting Report: %s\n\n", r.ApplicantName)
	fmt.Fprintf(&sb, "**Application:** %s  \n", r.ApplicationID)
	fmt.Fprintf(&sb, "**Decision:** %s  \n", strings.ToUpper(string(r.Decision)))
	fmt.Fprintf(&sb, "**Risk Level:** %s (score %.3f)  \n",
		strings.ToUpper(string(r.RiskAssessment.OverallRiskLevel)), r.RiskAssessment.RiskScore)
	fmt.Fprintf(&sb, "**Confidence:** %.2f  \n", r.ConfidenceScore)
	fmt.Fprintf(&sb, "**Generated:** %s\n\n", r.GeneratedAt.Format("2006-01-02 15:04:05"))

	if r.LoadingResult != nil {
		fmt.Fprintf(&sb, "## Medical Loading Analysis\n\n")
		fmt.Fprintf(&sb, "- Total loading: %.1f%%\n", r.LoadingResult.TotalLoadingPercentage)
		fmt.Fprintf(&sb, "- Risk category: %s\n", r.LoadingResult.RiskCategory)
		fmt.Fprintf(&sb, "- Health score: %.2f\n", r.LoadingResult.OverallHealthScore)
		for _, l := range r.LoadingResult.IndividualLoadings {
			fmt.Fprintf(&sb, "- %s: %.0f%% (%s)\n", l.Condition, l.LoadingPercentage, l.Severity)
		}
		sb.WriteString("\n")
	}

	if len(r.PremiumCalculations) > 0 {
		sb.WriteString("## Premiums\n\n")
		sb.WriteString("| Cover | Base | Loading | Final |\n|---|---|---|---|\n")
		for _, pc := range r.PremiumCalculations {
			fmt.Fprintf(&sb, "| %s | ₹%.0f | %.1f%% | ₹%.0f |\n",
				pc.CoverType, pc.BasePremium, pc.TotalLoadingPercentage, pc.FinalPremium)
		}
		fmt.Fprintf(&sb, "\n**Total annual premium:** ₹%.0f\n\n", r.TotalFinalPremium())
	}

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(&sb, "## %s\n\n", title)
		for _, item := range items {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
		sb.WriteString("\n")
	}
	writeList("Conditions", r.Conditions)
	writeList("Exclusions", r.Exclusions)
	writeList("Reasoning", r.Reasoning)

	if len(r.DetailedAgentResponses) > 0 {
		sb.WriteString("## Agent Analyses\n\n")
		for _, key := range []string{"medical_reviewer", "fraud_detector", "risk_assessor", "premium_calculator", "decision_maker"} {
			analysis := r.DetailedAgentResponses[key]
			if analysis == "" {
				continue
			}
			fmt.Fprintf(&sb, "### %s\n\n%s\n\n", titleKey(key), utils.CleanMarkdown(analysis))
		}
	}
	return sb.String()
}

func titleKey(key string) string {
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// ToHTML renders the report's Markdown form to an HTML fragment.
func ToHTML(r models.UnderwritingReport) (string, error) {
	var out strings.Builder
	if err := goldmark.Convert([]byte(ToMarkdown(r)), &out); err != nil {
		return "", fmt.Errorf("render report html: %w", err)
	}
	return out.String(), nil
}
