// Package agents defines the underwriting agent panel: who the agents are,
// the order they run in, the case context they receive and the runner that
// calls the configured LLM provider for each of them.
package agents

// Spec identifies one agent in the panel.
type Spec struct {
	Key          string // stable snake_case identifier, e.g. "medical_reviewer"
	Name         string // event-facing agent name, e.g. "MedicalReviewer"
	Role         string // human-readable role
	SystemPrompt string
	Sentinel     string // line the agent must end its analysis with
}

// Workflow is the fixed execution order of the agent panel.
var Workflow = []Spec{
	{
		Key:          "medical_reviewer",
		Name:         "MedicalReviewer",
		Role:         "Medical Review Specialist",
		SystemPrompt: MedicalReviewerPrompt,
		Sentinel:     "ML-ENHANCED MEDICAL ANALYSIS COMPLETE",
	},
	{
		Key:          "fraud_detector",
		Name:         "FraudDetector",
		Role:         "Fraud Detection Specialist",
		SystemPrompt: FraudDetectorPrompt,
		Sentinel:     "FRAUD DETECTION COMPLETE",
	},
	{
		Key:          "risk_assessor",
		Name:         "RiskAssessor",
		Role:         "Risk Assessment Specialist",
		SystemPrompt: RiskAssessorPrompt,
		Sentinel:     "ML-ENHANCED RISK ASSESSMENT COMPLETE",
	},
	{
		Key:          "premium_calculator",
		Name:         "PremiumCalculator",
		Role:         "Premium Calculation Specialist",
		SystemPrompt: PremiumCalculatorPrompt,
		Sentinel:     "PREMIUM CALCULATION COMPLETE",
	},
	{
		Key:          "decision_maker",
		Name:         "DecisionMaker",
		Role:         "Senior Underwriting Decision Maker",
		SystemPrompt: DecisionMakerPrompt,
		Sentinel:     "UNDERWRITING DECISION FINAL - CONVERSATION TERMINATED",
	},
}

// ByKey returns the workflow spec for key, or false when unknown.
func ByKey(key string) (Spec, bool) {
	for _, s := range Workflow {
		if s.Key == key {
			return s, true
		}
	}
	return Spec{}, false
}
