package premium

import (
	"math"
	"testing"

	"agentic_underwriting/pkg/models"
)

func coveredApplicant() models.Applicant {
	var app models.Applicant
	app.InsuranceCoverage.TotalSumAssured = 8000000
	app.InsuranceCoverage.CoversRequested = []models.Coverage{
		{CoverType: "Term Life Insurance", SumAssured: 5000000, Term: 20},
		{CoverType: "Critical Illness", SumAssured: 2000000, Term: 20},
		{CoverType: "Accidental Death Benefit", SumAssured: 1000000, Term: 20},
	}
	return app
}

func findCover(calcs []models.PremiumCalculation, coverType string) *models.PremiumCalculation {
	for i := range calcs {
		if calcs[i].CoverType == coverType {
			return &calcs[i]
		}
	}
	return nil
}

func TestCalculateKnownAgentSplit(t *testing.T) {
	details := models.DecisionDetails{TotalPremium: 16770}
	calcs := Calculate(coveredApplicant(), details, nil, nil)

	if len(calcs) != 3 {
		t.Fatalf("expected 3 covers, got %d", len(calcs))
	}
	want := map[string]float64{
		"Term Life Insurance":      13080,
		"Critical Illness":         3488,
		"Accidental Death Benefit": 200,
	}
	for coverType, finalPremium := range want {
		pc := findCover(calcs, coverType)
		if pc == nil {
			t.Fatalf("missing cover %s", coverType)
		}
		if pc.FinalPremium != finalPremium {
			t.Errorf("%s: final premium %v, want %v", coverType, pc.FinalPremium, finalPremium)
		}
	}

	// Term Life: base 5,000,000 * 0.0012 = 6,000 -> loading (13080-6000)/6000 = 118%
	term := findCover(calcs, "Term Life Insurance")
	if term.BasePremium != 6000 {
		t.Errorf("term base premium %v, want 6000", term.BasePremium)
	}
	if math.Abs(term.TotalLoadingPercentage-118) > 0.01 {
		t.Errorf("term loading %v, want 118", term.TotalLoadingPercentage)
	}
	if len(term.Loadings) != 1 || term.Loadings[0].Type != "Medical Loading (Agent Calculated)" {
		t.Errorf("unexpected loadings: %+v", term.Loadings)
	}

	// ADB: base 200 == final 200 -> no loading entry.
	adb := findCover(calcs, "Accidental Death Benefit")
	if len(adb.Loadings) != 0 || adb.TotalLoadingPercentage != 0 {
		t.Errorf("ADB must carry no loading: %+v", adb)
	}
}

func TestCalculateProportionalSplit(t *testing.T) {
	details := models.DecisionDetails{TotalPremium: 20000}
	calcs := Calculate(coveredApplicant(), details, nil, nil)

	term := findCover(calcs, "Term Life Insurance")
	ci := findCover(calcs, "Critical Illness")
	if term.FinalPremium != 15600 { // int(20000*0.78)
		t.Errorf("term final %v, want 15600", term.FinalPremium)
	}
	if ci.FinalPremium != 4200 { // int(20000*0.21)
		t.Errorf("CI final %v, want 4200", ci.FinalPremium)
	}
}

func TestCalculateFromLoadingResult(t *testing.T) {
	loadingResult := &models.LoadingResult{
		TotalLoadingPercentage: 50,
		RiskCategory:           "STANDARD PLUS",
		IndividualLoadings: []models.MedicalLoading{
			{Condition: "Diabetes (Fasting Glucose)", LoadingPercentage: 75, Severity: models.SeverityModerate},
		},
	}
	calcs := Calculate(coveredApplicant(), models.DecisionDetails{}, nil, loadingResult)

	term := findCover(calcs, "Term Life Insurance")
	if term.FinalPremium != 9000 { // 6000 * 1.5
		t.Errorf("term final %v, want 9000", term.FinalPremium)
	}
	if term.Loadings[0].Type != "Comprehensive Medical Loading" {
		t.Errorf("loading type %s", term.Loadings[0].Type)
	}
	if term.Loadings[0].RiskCategory != "STANDARD PLUS" {
		t.Errorf("risk category %s", term.Loadings[0].RiskCategory)
	}
	if len(term.Loadings[0].Breakdown) != 1 {
		t.Errorf("breakdown missing: %+v", term.Loadings[0])
	}

	adb := findCover(calcs, "Accidental Death Benefit")
	if adb.FinalPremium != adb.BasePremium {
		t.Errorf("ADB must stay at base: %+v", adb)
	}
}

func TestCalculateRiskDerivedLoading(t *testing.T) {
	assessment := &models.RiskAssessment{MedicalRisk: 0.5}
	// loading = (1-0.5)*150 = 75
	calcs := Calculate(coveredApplicant(), models.DecisionDetails{}, assessment, nil)
	ci := findCover(calcs, "Critical Illness")
	// base 2,000,000 * 0.0008 = 1600; +75% = 2800
	if ci.FinalPremium != 2800 {
		t.Errorf("CI final %v, want 2800", ci.FinalPremium)
	}
}

func TestCalculateDefaultLoading(t *testing.T) {
	calcs := Calculate(coveredApplicant(), models.DecisionDetails{}, nil, nil)
	term := findCover(calcs, "Term Life Insurance")
	if term.TotalLoadingPercentage != 25 {
		t.Errorf("default loading %v, want 25", term.TotalLoadingPercentage)
	}
}

func TestConfidence(t *testing.T) {
	clean := models.MedicalFindings{}
	// Auto approved, no abnormal values, consistent high score: 0.95+0.05+0.05 -> clamp 1.0
	got := Confidence(models.DecisionAutoApproved, models.RiskAssessment{RiskScore: 0.85}, clean)
	if got != 1.0 {
		t.Errorf("confidence %v, want 1.0", got)
	}

	// Additional requirements with many abnormal findings: 0.70 - 0.10
	messy := models.MedicalFindings{AbnormalValues: []string{"a", "b", "c", "d"}}
	got = Confidence(models.DecisionAdditionalRequirements, models.RiskAssessment{RiskScore: 0.5}, messy)
	if math.Abs(got-0.60) > 1e-9 {
		t.Errorf("confidence %v, want 0.60", got)
	}

	// Declined with critical alerts and consistent low score: 0.90+0.05+0.05 -> 1.0
	critical := models.MedicalFindings{CriticalAlerts: []string{"x"}}
	got = Confidence(models.DecisionDeclined, models.RiskAssessment{RiskScore: 0.2}, critical)
	if got != 1.0 {
		t.Errorf("confidence %v, want 1.0", got)
	}
}

func TestGenerateConditionsAndExclusions(t *testing.T) {
	assessment := models.RiskAssessment{
		MedicalRisk:   0.4,
		LifestyleRisk: 0.3,
		RedFlags:      []string{"Current smoker"},
	}
	conditions := GenerateConditions(assessment)
	if len(conditions) != 3 {
		t.Errorf("expected 3 conditions, got %v", conditions)
	}

	findings := models.MedicalFindings{CriticalAlerts: []string{"Cardiac arrhythmia on ECG", "Diabetes HbA1c 9%"}}
	exclusions := GenerateExclusions(findings)
	want := []string{
		"Standard suicide clause",
		"War and terrorism exclusion",
		"Pre-existing cardiac conditions exclusion for 4 years",
		"Diabetes-related complications exclusion for 2 years",
	}
	if len(exclusions) != len(want) {
		t.Fatalf("exclusions %v", exclusions)
	}
	for i := range want {
		if exclusions[i] != want[i] {
			t.Errorf("exclusion %d: got %q, want %q", i, exclusions[i], want[i])
		}
	}
}
