// Package parser extracts structured data from the agents' free-text
// responses: premium totals, loading percentages, the final decision and
// its supporting details.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/core/utils"
	"agentic_underwriting/pkg/models"
)

// PremiumInfo is what the premium calculator's response yields.
type PremiumInfo struct {
	TotalPremium             int
	MedicalLoadingPercentage float64
}

// Ordered most-specific first; the first match wins.
var totalPremiumPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)= ₹([\d,]+)\s*$`),
	regexp.MustCompile(`(?i)\*\*= ₹([\d,]+)\*\*`),
	regexp.MustCompile(`(?i)Total Annual Premium.*?₹([\d,]+)`),
	regexp.MustCompile(`(?i)\*\*TOTAL\*\*.*?₹([\d,]+)`),
	regexp.MustCompile(`(?i)₹([\d,]+)\s*per annum`),
	regexp.MustCompile(`(?i)Premium.*?₹([\d,]+)\s*per annum`),
	regexp.MustCompile(`(?i)TOTAL.*?₹([\d,]+)`),
}

// Case-sensitive on purpose: "% Loading" and "% loading" are the two forms
// the agents produce.
var loadingPattern = regexp.MustCompile(`(\d+)%\s*(?:loading|Loading)`)


// ParsePremium extracts the total annual premium and the highest quoted
// loading percentage from the premium calculator's response. When no text
// pattern matches, an embedded (possibly malformed) JSON block is repaired
// and inspected as a fallback.
func ParsePremium(text string) PremiumInfo {
	var info PremiumInfo
	if text == "" {
		return info
	}

	for _, pattern := range totalPremiumPatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
				info.TotalPremium = v
			}
			break
		}
	}
	if info.TotalPremium == 0 {
		info.TotalPremium = totalFromJSONBlock(text)
	}

	for _, m := range loadingPattern.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.Atoi(m[1]); err == nil && float64(v) > info.MedicalLoadingPercentage {
			info.MedicalLoadingPercentage = float64(v)
		}
	}
	return info
}

// totalFromJSONBlock recovers a JSON object embedded in the response and
// reads its total_premium field. The block may be truncated; the repair
// pass closes it.
func totalFromJSONBlock(text string) int {
	keyIdx := strings.Index(text, `"total_premium"`)
	if keyIdx < 0 {
		return 0
	}
	start := strings.LastIndex(text[:keyIdx], "{")
	if start < 0 {
		return 0
	}
	block := text[start:]
	var doc struct {
		TotalPremium json.Number `json:"total_premium"`
	}
	if _, err := utils.SmartParse(block, &doc); err != nil {
		return 0
	}
	f, err := doc.TotalPremium.Float64()
	if err != nil {
		return 0
	}
	log.Debug().Int("total_premium", int(f)).Msg("premium recovered from embedded JSON block")
	return int(f)
}

func containsAny(s string, patterns ...string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ExtractDecision classifies the decision maker's response and assembles
// the structured decision details around the parsed premium.
func ExtractDecision(decisionText string, premium PremiumInfo) (models.Decision, models.DecisionDetails) {
	details := models.DecisionDetails{
		ProcessingTimeDays:       1,
		DecisionType:             "auto",
		MedicalLoadingPercentage: premium.MedicalLoadingPercentage,
		Conditions:               []string{},
		Exclusions:               []string{},
		Reasoning:                []string{},
		TotalPremium:             premium.TotalPremium,
	}

	upper := strings.ToUpper(decisionText)
	var decision models.Decision

	switch {
	case containsAny(upper, "APPROVED WITH CONDITIONS", "APPROVED WITH", "APPROVED", "ACCEPT", "COVERAGE GRANTED"):
		switch {
		case containsAny(upper, "APPROVED WITH CONDITIONS", "CONDITIONS", "EXCLUSIONS", "ADDITIONAL REQUIREMENTS"):
			decision = models.DecisionAdditionalRequirements
			details.DecisionType = "additional"
			details.ProcessingTimeDays = 7
			if strings.Contains(decisionText, "7–14") || strings.Contains(decisionText, "7-14") {
				details.ProcessingTimeDays = 10
			}
		case containsAny(upper, "MANUAL REVIEW", "MODERATE PREMIUM LOADING"):
			decision = models.DecisionManualReview
			details.DecisionType = "manual"
			details.ProcessingTimeDays = 3
		default:
			decision = models.DecisionAutoApproved
		}
	case containsAny(upper, "MANUAL REVIEW", "MANUAL_REVIEW", "REQUIRES MANUAL", "MANUAL UNDERWRITING"):
		decision = models.DecisionManualReview
		details.DecisionType = "manual"
		details.ProcessingTimeDays = 3
	case containsAny(upper, "ADDITIONAL REQUIREMENTS", "MORE INFORMATION", "FURTHER TESTING", "ADDITIONAL MEDICAL"):
		decision = models.DecisionAdditionalRequirements
		details.DecisionType = "additional"
		details.ProcessingTimeDays = 7
	case containsAny(upper, "DECLINE", "DECLINED", "REJECT", "UNACCEPTABLE", "DENY"):
		decision = models.DecisionDeclined
		details.DecisionType = "declined"
		details.ProcessingTimeDays = 2
	default:
		decision = models.DecisionManualReview
		details.DecisionType = "manual"
		details.ProcessingTimeDays = 3
	}

	lower := strings.ToLower(decisionText)
	if strings.Contains(lower, "diabetes") && strings.Contains(lower, "exclusion") {
		details.Exclusions = append(details.Exclusions,
			"Diabetes-related complications exclusion for Critical Illness")
	}
	return decision, details
}

// reasoningKeywords mark the lines worth quoting from the decision response.
var reasoningKeywords = []string{"DECISION", "RECOMMENDATION", "CONCLUSION", "RATIONALE"}

// BuildReasoning assembles the report's reasoning list from the agents'
// responses, falling back to a deterministic summary when nothing quotable
// exists. agentAnalyses is keyed by analysis type (medical_review,
// fraud_detection, final_decision, ...).
func BuildReasoning(decision models.Decision, details models.DecisionDetails,
	assessment models.RiskAssessment, findings models.MedicalFindings,
	agentAnalyses map[string]string) []string {

	var reasoning []string

	if decisionText := agentAnalyses["final_decision"]; decisionText != "" {
		var keyPoints []string
		for _, line := range strings.Split(decisionText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if containsAny(strings.ToUpper(line), reasoningKeywords...) {
				keyPoints = append(keyPoints, line)
			}
		}
		if len(keyPoints) > 2 {
			keyPoints = keyPoints[:2]
		}
		reasoning = append(reasoning, keyPoints...)
	}

	if medical := strings.ToLower(agentAnalyses["medical_review"]); medical != "" &&
		(strings.Contains(medical, "abnormal") || strings.Contains(medical, "concern")) {
		reasoning = append(reasoning, "Medical review identified specific concerns requiring attention")
	}

	if fraud := strings.ToLower(agentAnalyses["fraud_detection"]); fraud != "" {
		if strings.Contains(fraud, "low risk") {
			reasoning = append(reasoning, "Fraud analysis indicates low risk profile")
		} else if strings.Contains(fraud, "verification") {
			reasoning = append(reasoning, "Additional verification recommended based on fraud analysis")
		}
	}

	if len(reasoning) == 0 {
		reasoning = []string{
			fmt.Sprintf("Decision: %s (from Agent Analysis)", titleDecision(decision)),
			fmt.Sprintf("Risk Score: %.3f", assessment.RiskScore),
			fmt.Sprintf("Medical Findings: %d abnormal, %d critical",
				len(findings.AbnormalValues), len(findings.CriticalAlerts)),
			fmt.Sprintf("Processing: %s review - %d days",
				titleWord(details.DecisionType), details.ProcessingTimeDays),
		}
		if details.TotalPremium > 0 {
			reasoning = append(reasoning,
				fmt.Sprintf("Total Premium: ₹%s (from Agent Calculation)", commaInt(details.TotalPremium)))
		}
	}
	return reasoning
}

func titleDecision(d models.Decision) string {
	parts := strings.Split(string(d), "_")
	for i, p := range parts {
		parts[i] = titleWord(p)
	}
	return strings.Join(parts, " ")
}

func titleWord(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func commaInt(v int) string {
	s := strconv.Itoa(v)
	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
