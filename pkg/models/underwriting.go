package models

import (
	"encoding/json"
	"time"
)

// RiskLevel is the overall risk classification produced by the risk engine.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskStandard RiskLevel = "standard"
	RiskHigh     RiskLevel = "high"
	RiskDeclined RiskLevel = "declined"
)

// Decision is the final underwriting outcome.
type Decision string

const (
	DecisionAutoApproved           Decision = "auto_approved"
	DecisionManualReview           Decision = "manual_review"
	DecisionAdditionalRequirements Decision = "additional_requirements"
	DecisionDeclined               Decision = "declined"
)

// Severity classifies a medical loading by clinical weight.
type Severity string

const (
	SeverityMinimal  Severity = "minimal"
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
	SeverityCritical Severity = "critical"
)

// LoadingKind distinguishes the source of a loading.
type LoadingKind string

const (
	LoadingMedical      LoadingKind = "medical"
	LoadingLifestyle    LoadingKind = "lifestyle"
	LoadingOccupational LoadingKind = "occupational"
	LoadingCombined     LoadingKind = "combined"
)

// Income carries the applicant's declared income.
type Income struct {
	Annual   float64 `json:"annual"`
	Currency string  `json:"currency,omitempty"`
}

// PersonalInfo is the demographic block of an application.
type PersonalInfo struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender"`
	Occupation string `json:"occupation,omitempty"`
	Income     Income `json:"income"`
}

// ApplicationDetails identifies the application itself.
type ApplicationDetails struct {
	ApplicationNumber string `json:"applicationNumber"`
	ApplicationDate   string `json:"applicationDate,omitempty"`
}

// Coverage is one requested cover within an application.
type Coverage struct {
	CoverType  string  `json:"coverType"`
	SumAssured float64 `json:"sumAssured"`
	Term       int     `json:"term"`
}

// InsuranceCoverage aggregates the requested covers.
type InsuranceCoverage struct {
	TotalSumAssured float64    `json:"totalSumAssured"`
	CoversRequested []Coverage `json:"coversRequested"`
}

// Measurement is a value with its unit, e.g. height in cm.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Physical holds body measurements.
type Physical struct {
	Height Measurement `json:"height"`
	Weight Measurement `json:"weight"`
}

// Health is the self-declared health block.
type Health struct {
	Physical           Physical `json:"physical"`
	ExistingConditions []string `json:"existingConditions,omitempty"`
	FamilyHistory      []string `json:"familyHistory,omitempty"`
}

// SmokingDetails quantifies smoking habits.
type SmokingDetails struct {
	CigarettesPerDay int `json:"cigarettesPerDay"`
}

// Alcohol quantifies alcohol consumption.
type Alcohol struct {
	UnitsPerWeek float64 `json:"unitsPerWeek"`
	Frequency    string  `json:"frequency,omitempty"`
	Type         string  `json:"type,omitempty"`
}

// Exercise describes exercise habits.
type Exercise struct {
	Frequency string `json:"frequency,omitempty"`
	Type      string `json:"type,omitempty"`
}

// Lifestyle is the lifestyle block of an application.
type Lifestyle struct {
	Smoker         bool           `json:"smoker"`
	SmokingDetails SmokingDetails `json:"smokingDetails"`
	Alcohol        Alcohol        `json:"alcohol"`
	Exercise       Exercise       `json:"exercise"`
}

// Applicant is the typed form of an application request body. It is
// immutable for the lifetime of a workflow.
type Applicant struct {
	PersonalInfo       PersonalInfo       `json:"personalInfo"`
	ApplicationDetails ApplicationDetails `json:"applicationDetails"`
	InsuranceCoverage  InsuranceCoverage  `json:"insuranceCoverage"`
	Lifestyle          Lifestyle          `json:"lifestyle"`
	Health             Health             `json:"health"`
}

// LabValue is a single laboratory reading with its reference range.
type LabValue struct {
	Value          float64 `json:"value"`
	Unit           string  `json:"unit,omitempty"`
	ReferenceRange string  `json:"referenceRange,omitempty"`
}

// BloodSugar holds glucose readings from a report.
type BloodSugar struct {
	Random  []LabValue `json:"random,omitempty"`
	Fasting float64    `json:"fasting,omitempty"`
}

// CompleteBloodCount holds the CBC values the analyzer inspects.
type CompleteBloodCount struct {
	Hemoglobin LabValue `json:"hemoglobin"`
	WBC        LabValue `json:"wbc"`
}

// LabResults groups the categorized lab readings of one report.
// LiverFunction is keyed by enzyme name (ALT, AST, ALP).
type LabResults struct {
	BloodSugar         BloodSugar          `json:"bloodSugar"`
	CompleteBloodCount CompleteBloodCount  `json:"completeBloodCount"`
	LiverFunction      map[string]LabValue `json:"liverFunction,omitempty"`
}

// ClinicalFindings are the pre-classified findings of one report.
type ClinicalFindings struct {
	NormalValues   []string `json:"normalValues"`
	AbnormalValues []string `json:"abnormalValues"`
	CriticalAlerts []string `json:"criticalAlerts"`
}

// StructuredData is the extracted content of one medical report.
type StructuredData struct {
	PatientName      string           `json:"patientName,omitempty"`
	DocumentDate     string           `json:"documentDate,omitempty"`
	Facility         string           `json:"facility,omitempty"`
	LabNumber        string           `json:"labNumber,omitempty"`
	ClinicalFindings ClinicalFindings `json:"clinicalFindings"`
	LabResults       LabResults       `json:"labResults"`
}

// MedicalReport is one extracted report; failed extractions carry no data.
type MedicalReport struct {
	ExtractionSuccessful bool           `json:"extraction_successful"`
	StructuredData       StructuredData `json:"structured_data"`
}

// ExtractedMedical is the full extracted-medical input document.
type ExtractedMedical struct {
	Reports []MedicalReport `json:"medical_data"`
}

// UnmarshalJSON tolerates payloads where medical_data is not the expected
// report list (some callers send a free-form object). Anything that is not a
// list of reports is treated as no usable reports; the engines default
// gracefully from there.
func (m *ExtractedMedical) UnmarshalJSON(data []byte) error {
	var strict struct {
		Reports []MedicalReport `json:"medical_data"`
	}
	if err := json.Unmarshal(data, &strict); err == nil {
		m.Reports = strict.Reports
		return nil
	}
	m.Reports = nil
	return nil
}

// MedicalFindings is the analyzer's output. RiskScore is in [0,1] where
// 1 means healthiest.
type MedicalFindings struct {
	NormalValues   []string `json:"normal_values"`
	AbnormalValues []string `json:"abnormal_values"`
	CriticalAlerts []string `json:"critical_alerts"`
	RiskScore      float64  `json:"risk_score"`
	Concerns       []string `json:"concerns"`
}

// RiskAssessment is the deterministic risk engine's output. Component risks
// are in [0,1] where higher means riskier.
type RiskAssessment struct {
	OverallRiskLevel RiskLevel          `json:"overall_risk_level"`
	RiskScore        float64            `json:"risk_score"`
	MedicalRisk      float64            `json:"medical_risk"`
	LifestyleRisk    float64            `json:"lifestyle_risk"`
	FinancialRisk    float64            `json:"financial_risk"`
	OccupationRisk   float64            `json:"occupation_risk"`
	Factors          map[string]float64 `json:"factors"`
	RedFlags         []string           `json:"red_flags"`
	Recommendations  []string           `json:"recommendations"`
}

// MedicalLoading is one condition-level loading entry.
type MedicalLoading struct {
	Condition              string      `json:"condition"`
	LoadingPercentage      float64     `json:"loading_percentage"`
	Severity               Severity    `json:"severity"`
	LoadingType            LoadingKind `json:"loading_type"`
	Reasoning              string      `json:"reasoning"`
	AffectsCriticalIllness bool        `json:"affects_critical_illness"`
	AffectsTermLife        bool        `json:"affects_term_life"`
	AffectsDisability      bool        `json:"affects_disability"`
}

// LoadingResult is the aggregated output of the loading engine.
type LoadingResult struct {
	TotalLoadingPercentage  float64          `json:"total_loading_percentage"`
	IndividualLoadings      []MedicalLoading `json:"individual_loadings"`
	CriticalAlertsCount     int              `json:"critical_alerts_count"`
	AbnormalFindingsCount   int              `json:"abnormal_findings_count"`
	NormalFindingsCount     int              `json:"normal_findings_count"`
	OverallHealthScore      float64          `json:"overall_health_score"`
	RiskCategory            string           `json:"risk_category"`
	Recommendations         []string         `json:"recommendations"`
	Exclusions              []string         `json:"exclusions"`
	RequiresAdditionalTests bool             `json:"requires_additional_tests"`
}

// LoadingBreakdownItem summarizes one contributor inside a premium loading.
type LoadingBreakdownItem struct {
	Condition  string  `json:"condition"`
	Percentage float64 `json:"percentage"`
	Severity   string  `json:"severity"`
}

// LoadingDetail is one loading applied to a premium.
type LoadingDetail struct {
	Type         string                 `json:"type"`
	Percentage   float64                `json:"percentage"`
	Amount       float64                `json:"amount"`
	Breakdown    []LoadingBreakdownItem `json:"breakdown,omitempty"`
	RiskCategory string                 `json:"risk_category,omitempty"`
}

// PremiumCalculation is the per-cover premium result.
type PremiumCalculation struct {
	CoverType              string          `json:"cover_type"`
	BasePremium            float64         `json:"base_premium"`
	AdjustedPremium        float64         `json:"adjusted_premium"`
	Loadings               []LoadingDetail `json:"loadings"`
	Discounts              []LoadingDetail `json:"discounts"`
	TotalLoadingPercentage float64         `json:"total_loading_percentage"`
	FinalPremium           float64         `json:"final_premium"`
}

// DecisionDetails is the structured form parsed from the decision maker's
// and premium calculator's free-text responses.
type DecisionDetails struct {
	ProcessingTimeDays       int      `json:"processing_time_days"`
	DecisionType             string   `json:"decision_type"`
	MedicalLoadingPercentage float64  `json:"medical_loading_percentage"`
	Conditions               []string `json:"conditions"`
	Exclusions               []string `json:"exclusions"`
	Reasoning                []string `json:"reasoning"`
	TotalPremium             int      `json:"total_premium"`
}

// UnderwritingReport is the terminal artifact of a workflow.
type UnderwritingReport struct {
	ApplicationID          string               `json:"application_id"`
	ApplicantName          string               `json:"applicant_name"`
	Decision               Decision             `json:"decision"`
	RiskAssessment         RiskAssessment       `json:"risk_assessment"`
	MedicalAnalysis        MedicalFindings      `json:"medical_analysis"`
	LoadingResult          *LoadingResult       `json:"medical_loading_analysis,omitempty"`
	PremiumCalculations    []PremiumCalculation `json:"premium_calculations"`
	Conditions             []string             `json:"conditions"`
	Exclusions             []string             `json:"exclusions"`
	Reasoning              []string             `json:"reasoning"`
	ConfidenceScore        float64              `json:"confidence_score"`
	ProcessingTimeSeconds  float64              `json:"processing_time_seconds"`
	GeneratedAt            time.Time            `json:"generated_at"`
	AgentResponses         map[string]string    `json:"agent_responses,omitempty"`
	DetailedAgentResponses map[string]string    `json:"detailed_agent_responses,omitempty"`
	DecisionDetails        DecisionDetails      `json:"decision_details"`
}

// TotalFinalPremium sums the per-cover final premiums.
func (r *UnderwritingReport) TotalFinalPremium() float64 {
	var total float64
	for _, pc := range r.PremiumCalculations {
		total += pc.FinalPremium
	}
	return total
}
