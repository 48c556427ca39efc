package risk

import (
	"math"
	"testing"

	"agentic_underwriting/pkg/models"
)

func baseApplicant() models.Applicant {
	var app models.Applicant
	app.PersonalInfo.Name = "Test Applicant"
	app.PersonalInfo.Age = 40
	app.PersonalInfo.Income.Annual = 1800000
	app.InsuranceCoverage.TotalSumAssured = 8000000
	app.Health.Physical.Height = models.Measurement{Value: 175, Unit: "cm"}
	app.Health.Physical.Weight = models.Measurement{Value: 78, Unit: "kg"}
	return app
}

func TestBMI(t *testing.T) {
	app := baseApplicant()
	if got := BMI(app); got != 25.5 {
		t.Errorf("BMI(175cm, 78kg) = %v, want 25.5", got)
	}

	// Missing measurements fall back to 165cm / 65kg.
	var empty models.Applicant
	if got := BMI(empty); got != 23.9 {
		t.Errorf("default BMI = %v, want 23.9", got)
	}
}

func TestAssessHealthyApplicant(t *testing.T) {
	app := baseApplicant()
	findings := models.MedicalFindings{RiskScore: 0.8}

	assessment := Assess(app, findings)

	if assessment.OverallRiskLevel != models.RiskLow {
		t.Errorf("expected low risk, got %s", assessment.OverallRiskLevel)
	}
	if math.Abs(assessment.MedicalRisk-0.2) > 1e-9 {
		t.Errorf("medical risk = %v, want 0.2", assessment.MedicalRisk)
	}
	if math.Abs(assessment.LifestyleRisk-0.2) > 1e-9 {
		t.Errorf("lifestyle risk = %v, want 0.2", assessment.LifestyleRisk)
	}
	// financial: min(0.5, 8e6/(1.8e6*10)) = 0.4444...
	if math.Abs(assessment.FinancialRisk-8.0/18.0) > 1e-9 {
		t.Errorf("financial risk = %v", assessment.FinancialRisk)
	}
	// composite = 1 - (0.5*0.2 + 0.25*0.2 + 0.15*0.1 + 0.1*0.4444) = 0.79055...
	want := 1 - (0.5*0.2 + 0.25*0.2 + 0.15*0.1 + 0.1*(8.0/18.0))
	if math.Abs(assessment.RiskScore-want) > 1e-9 {
		t.Errorf("composite = %v, want %v", assessment.RiskScore, want)
	}
}

func TestAssessCriticalAlertForcesHigh(t *testing.T) {
	app := baseApplicant()
	findings := models.MedicalFindings{
		RiskScore:      0.75,
		CriticalAlerts: []string{"HbA1c 11%"},
	}

	assessment := Assess(app, findings)
	if assessment.OverallRiskLevel != models.RiskHigh {
		t.Errorf("critical alert must force high risk, got %s", assessment.OverallRiskLevel)
	}
	if len(assessment.RedFlags) == 0 || assessment.RedFlags[0] != "Critical medical alert: HbA1c 11%" {
		t.Errorf("unexpected red flags: %v", assessment.RedFlags)
	}
}

func TestAssessMedicalRiskThreshold(t *testing.T) {
	app := baseApplicant()
	findings := models.MedicalFindings{RiskScore: 0.5} // medicalRisk = 0.5

	assessment := Assess(app, findings)
	if assessment.OverallRiskLevel != models.RiskHigh {
		t.Errorf("medical risk 0.5 must be high, got %s", assessment.OverallRiskLevel)
	}
}

func TestAssessSmokerLifestyle(t *testing.T) {
	app := baseApplicant()
	app.Lifestyle.Smoker = true
	app.Lifestyle.Alcohol.UnitsPerWeek = 18
	findings := models.MedicalFindings{RiskScore: 0.8}

	assessment := Assess(app, findings)

	// lifestyleScore = 0.8 - 0.3 - 0.1 = 0.4 -> risk 0.6
	if math.Abs(assessment.LifestyleRisk-0.6) > 1e-9 {
		t.Errorf("lifestyle risk = %v, want 0.6", assessment.LifestyleRisk)
	}
	if assessment.OverallRiskLevel != models.RiskStandard {
		t.Errorf("smoker with clean medicals should be standard, got %s", assessment.OverallRiskLevel)
	}

	var smokerFlag, smokerRec bool
	for _, f := range assessment.RedFlags {
		if f == "Current smoker" {
			smokerFlag = true
		}
	}
	for _, r := range assessment.Recommendations {
		if r == "Consider smoking cessation programs" {
			smokerRec = true
		}
	}
	if !smokerFlag || !smokerRec {
		t.Errorf("smoker flag/recommendation missing: %v / %v", assessment.RedFlags, assessment.Recommendations)
	}
}

func TestAssessDefaults(t *testing.T) {
	var app models.Applicant
	findings := models.MedicalFindings{RiskScore: 0.8}

	assessment := Assess(app, findings)

	// Defaults: income 1e6, SA 1e6 -> financial 0.1; age 35 -> no age flag.
	if math.Abs(assessment.FinancialRisk-0.1) > 1e-9 {
		t.Errorf("default financial risk = %v, want 0.1", assessment.FinancialRisk)
	}
	for _, f := range assessment.RedFlags {
		t.Errorf("unexpected red flag for defaults: %s", f)
	}
	if assessment.Factors["age_factor"] != 35.0/65.0 {
		t.Errorf("age factor = %v", assessment.Factors["age_factor"])
	}
}

func TestAssessAgeAndBMIFlags(t *testing.T) {
	app := baseApplicant()
	app.PersonalInfo.Age = 60
	app.Health.Physical.Weight = models.Measurement{Value: 100} // BMI 32.7

	assessment := Assess(app, models.MedicalFindings{RiskScore: 0.8})

	var bmiFlag, ageFlag bool
	for _, f := range assessment.RedFlags {
		switch f {
		case "High BMI: 32.7":
			bmiFlag = true
		case "Advanced age: 60":
			ageFlag = true
		}
	}
	if !bmiFlag || !ageFlag {
		t.Errorf("expected BMI and age flags, got %v", assessment.RedFlags)
	}
}

func TestDecide(t *testing.T) {
	cases := []struct {
		name       string
		assessment models.RiskAssessment
		findings   models.MedicalFindings
		want       models.Decision
	}{
		{
			name:       "decline condition in critical alert",
			assessment: models.RiskAssessment{RiskScore: 0.9},
			findings:   models.MedicalFindings{CriticalAlerts: []string{"ECG shows myocardial ischemia with ST depression"}},
			want:       models.DecisionDeclined,
		},
		{
			name:       "clean high score auto approves",
			assessment: models.RiskAssessment{RiskScore: 0.8},
			want:       models.DecisionAutoApproved,
		},
		{
			name:       "red flag blocks auto approval",
			assessment: models.RiskAssessment{RiskScore: 0.8, RedFlags: []string{"Current smoker"}},
			want:       models.DecisionManualReview,
		},
		{
			name:       "mid score with one critical alert",
			assessment: models.RiskAssessment{RiskScore: 0.5},
			findings:   models.MedicalFindings{CriticalAlerts: []string{"HbA1c critically elevated at 9.2%"}},
			want:       models.DecisionManualReview,
		},
		{
			name:       "low score with critical alerts needs requirements",
			assessment: models.RiskAssessment{RiskScore: 0.2},
			findings: models.MedicalFindings{CriticalAlerts: []string{
				"HbA1c critically elevated at 9.2%",
				"Blood pressure critically elevated at 175/108",
			}},
			want: models.DecisionAdditionalRequirements,
		},
		{
			name:       "low score without findings stays manual",
			assessment: models.RiskAssessment{RiskScore: 0.2},
			want:       models.DecisionManualReview,
		},
	}

	for _, c := range cases {
		if got := Decide(c.assessment, c.findings); got != c.want {
			t.Errorf("%s: Decide() = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestDecideHonorsConfiguredThresholds(t *testing.T) {
	origAuto, origHigh := AutoApprovalThreshold, HighRiskThreshold
	defer func() {
		AutoApprovalThreshold, HighRiskThreshold = origAuto, origHigh
	}()

	AutoApprovalThreshold = 0.9
	assessment := models.RiskAssessment{RiskScore: 0.8}
	if got := Decide(assessment, models.MedicalFindings{}); got != models.DecisionManualReview {
		t.Errorf("raised auto threshold: Decide() = %s, want manual_review", got)
	}

	HighRiskThreshold = 0.85
	if got := Decide(assessment, models.MedicalFindings{}); got != models.DecisionManualReview {
		t.Errorf("score below both thresholds still falls through to manual review, got %s", got)
	}
	assessment.RiskScore = 0.95
	if got := Decide(assessment, models.MedicalFindings{}); got != models.DecisionAutoApproved {
		t.Errorf("score above raised threshold: Decide() = %s, want auto_approved", got)
	}
}
