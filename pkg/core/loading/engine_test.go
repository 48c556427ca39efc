package loading

import (
	"math"
	"testing"

	"agentic_underwriting/pkg/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestComputeNoFindings(t *testing.T) {
	app := models.Applicant{}
	app.PersonalInfo.Age = 30

	result := Compute(app, models.ExtractedMedical{}, models.MedicalFindings{})

	if result.TotalLoadingPercentage != 0 {
		t.Errorf("expected zero loading, got %v", result.TotalLoadingPercentage)
	}
	if result.RiskCategory != "PREFERRED" {
		t.Errorf("expected PREFERRED, got %s", result.RiskCategory)
	}
	if !almostEqual(result.OverallHealthScore, 0.8) {
		t.Errorf("expected default health score 0.8, got %v", result.OverallHealthScore)
	}
	if result.RequiresAdditionalTests {
		t.Error("no findings should not require additional tests")
	}
}

func TestComputeModerateStack(t *testing.T) {
	// One moderate (75) plus two mild (25 each) at age 40:
	// (75 + 0.2*(25+25)) * 1.2 = 102 -> MODERATE RISK
	app := models.Applicant{}
	app.PersonalInfo.Age = 40
	data := models.ExtractedMedical{Reports: []models.MedicalReport{{
		ExtractionSuccessful: true,
		StructuredData: models.StructuredData{
			LabResults: models.LabResults{
				BloodSugar: models.BloodSugar{Fasting: 130},
			},
		},
	}}}
	findings := models.MedicalFindings{
		AbnormalValues: []string{
			"TSH slightly elevated",
			"Low white blood cell count 3800/cmm",
		},
	}
	// Abnormal thyroid match fires from text; add a second mild via lab.
	data.Reports[0].StructuredData.LabResults.CompleteBloodCount.WBC = models.LabValue{Value: 3900}

	result := Compute(app, data, findings)

	if !almostEqual(result.TotalLoadingPercentage, 102.0) {
		t.Errorf("expected total 102, got %v", result.TotalLoadingPercentage)
	}
	if result.RiskCategory != "MODERATE RISK" {
		t.Errorf("expected MODERATE RISK, got %s", result.RiskCategory)
	}
}

func TestComputeCriticalHbA1c(t *testing.T) {
	// Critical 150 at age 50: 150 * 1.4 = 210 -> HIGH RISK
	app := models.Applicant{}
	app.PersonalInfo.Age = 50
	findings := models.MedicalFindings{
		CriticalAlerts: []string{"HbA1c 10.5% - severely uncontrolled"},
	}

	result := Compute(app, models.ExtractedMedical{}, findings)

	if !almostEqual(result.TotalLoadingPercentage, 210.0) {
		t.Errorf("expected total 210, got %v", result.TotalLoadingPercentage)
	}
	if result.RiskCategory != "HIGH RISK" {
		t.Errorf("expected HIGH RISK, got %s", result.RiskCategory)
	}
	if !result.RequiresAdditionalTests {
		t.Error("critical finding should require additional tests")
	}
	found := false
	for _, e := range result.Exclusions {
		if e == "Diabetes-related complications exclusion for Critical Illness coverage" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected diabetes CI exclusion, got %v", result.Exclusions)
	}
}

func TestMatchCriticalAlertBloodPressure(t *testing.T) {
	out := matchCriticalAlert("Blood pressure 185/115 critically elevated")
	if len(out) != 1 {
		t.Fatalf("expected 1 loading, got %d", len(out))
	}
	if out[0].Condition != "Severe Hypertension" || out[0].LoadingPercentage != 100 {
		t.Errorf("unexpected loading: %+v", out[0])
	}

	out = matchCriticalAlert("BP 165/95 elevated")
	if len(out) != 1 || out[0].Condition != "Moderate Hypertension" {
		t.Errorf("expected moderate hypertension, got %+v", out)
	}
}

func TestMatchLabResultsLiverEnzymes(t *testing.T) {
	app := models.Applicant{}
	data := models.ExtractedMedical{Reports: []models.MedicalReport{{
		ExtractionSuccessful: true,
		StructuredData: models.StructuredData{
			LabResults: models.LabResults{
				LiverFunction: map[string]models.LabValue{
					"alt": {Value: 130}, // >3x ULN of 40
					"alp": {Value: 130}, // just above ULN of 120
				},
			},
		},
	}}}

	out := matchLabResults(app, data)
	var severe, mild bool
	for _, l := range out {
		if l.Condition == "Severe ALT Elevation" && l.LoadingPercentage == 80 {
			severe = true
		}
		if l.Condition == "Mild ALP Elevation" && l.LoadingPercentage == 20 {
			mild = true
		}
	}
	if !severe || !mild {
		t.Errorf("expected severe ALT and mild ALP, got %+v", out)
	}
}

func TestMatchLabResultsAnemiaByGender(t *testing.T) {
	report := models.MedicalReport{ExtractionSuccessful: true}
	report.StructuredData.LabResults.CompleteBloodCount.Hemoglobin = models.LabValue{Value: 12.5}
	data := models.ExtractedMedical{Reports: []models.MedicalReport{report}}

	male := models.Applicant{}
	male.PersonalInfo.Gender = "Male"
	if out := matchLabResults(male, data); len(out) != 1 || out[0].Condition != "Mild Anemia" {
		t.Errorf("12.5 g/dL male should be mild anemia, got %+v", out)
	}

	female := models.Applicant{}
	female.PersonalInfo.Gender = "Female"
	if out := matchLabResults(female, data); len(out) != 0 {
		t.Errorf("12.5 g/dL female should be normal, got %+v", out)
	}
}

func TestMatchLifestyle(t *testing.T) {
	app := models.Applicant{}
	app.Lifestyle.Smoker = true
	app.Lifestyle.SmokingDetails.CigarettesPerDay = 25
	app.Lifestyle.Alcohol.UnitsPerWeek = 18
	app.Health.Physical.Height = models.Measurement{Value: 170}
	app.Health.Physical.Weight = models.Measurement{Value: 105} // BMI ~36.3

	out := matchLifestyle(app)
	want := map[string]float64{
		"Heavy Smoking":                75,
		"Moderate Alcohol Consumption": 15,
		"Severe Obesity":               75,
	}
	if len(out) != len(want) {
		t.Fatalf("expected %d loadings, got %d: %+v", len(want), len(out), out)
	}
	for _, l := range out {
		if want[l.Condition] != l.LoadingPercentage {
			t.Errorf("unexpected loading %s=%v", l.Condition, l.LoadingPercentage)
		}
		if l.LoadingType != models.LoadingLifestyle {
			t.Errorf("%s should be a lifestyle loading", l.Condition)
		}
	}
}

func TestCombineSeverityWeights(t *testing.T) {
	mk := func(sev models.Severity, pct float64) models.MedicalLoading {
		return models.MedicalLoading{Severity: sev, LoadingPercentage: pct}
	}

	// Critical band: max + half of the rest.
	got := combine([]models.MedicalLoading{
		mk(models.SeverityCritical, 150),
		mk(models.SeverityCritical, 100),
	})
	if !almostEqual(got, 200) {
		t.Errorf("critical combine: expected 200, got %v", got)
	}

	// Severe without critical: max + 0.4 * rest.
	got = combine([]models.MedicalLoading{
		mk(models.SeveritySevere, 100),
		mk(models.SeveritySevere, 80),
	})
	if !almostEqual(got, 132) {
		t.Errorf("severe combine: expected 132, got %v", got)
	}

	// Severe beneath a critical: 0.3 * sum.
	got = combine([]models.MedicalLoading{
		mk(models.SeverityCritical, 150),
		mk(models.SeveritySevere, 100),
	})
	if !almostEqual(got, 180) {
		t.Errorf("critical+severe combine: expected 180, got %v", got)
	}

	// Mild only: 0.2 * sum.
	got = combine([]models.MedicalLoading{
		mk(models.SeverityMild, 25),
		mk(models.SeverityMild, 15),
	})
	if !almostEqual(got, 8) {
		t.Errorf("mild combine: expected 8, got %v", got)
	}
}

func TestAgeMultiplier(t *testing.T) {
	cases := []struct {
		age  int
		want float64
	}{
		{20, 0.8}, {30, 1.0}, {40, 1.2}, {50, 1.4}, {60, 1.6}, {70, 2.0}, {80, 1.0}, {0, 1.0},
	}
	for _, c := range cases {
		if got := AgeMultiplier(c.age); got != c.want {
			t.Errorf("AgeMultiplier(%d) = %v, want %v", c.age, got, c.want)
		}
	}
}

func TestHealthScore(t *testing.T) {
	f := models.MedicalFindings{
		NormalValues:   []string{"a", "b", "c", "d"},
		AbnormalValues: []string{"x"},
	}
	// 4/5*0.9 + 0.1 - 0.3*(1/5) = 0.76
	if got := healthScore(f); !almostEqual(got, 0.76) {
		t.Errorf("expected 0.76, got %v", got)
	}
}

func TestConditionTableConsistency(t *testing.T) {
	for name, entry := range ConditionTable {
		if entry.Loading <= 0 || entry.Loading > 300 {
			t.Errorf("%s: loading %v out of range", name, entry.Loading)
		}
		switch entry.Severity {
		case models.SeverityMinimal, models.SeverityMild, models.SeverityModerate,
			models.SeveritySevere, models.SeverityCritical:
		default:
			t.Errorf("%s: unknown severity %q", name, entry.Severity)
		}
	}
}

func TestTopBreakdown(t *testing.T) {
	result := models.LoadingResult{IndividualLoadings: []models.MedicalLoading{
		{Condition: "A", LoadingPercentage: 10, Severity: models.SeverityMild},
		{Condition: "B", LoadingPercentage: 75, Severity: models.SeverityModerate},
		{Condition: "C", LoadingPercentage: 40, Severity: models.SeverityModerate},
	}}
	items := TopBreakdown(result, 2)
	if len(items) != 2 || items[0].Condition != "B" || items[1].Condition != "C" {
		t.Errorf("unexpected breakdown: %+v", items)
	}
}

// Matchers whose band has a ConditionTable entry must price from it.
func TestMatchersPriceFromConditionTable(t *testing.T) {
	find := func(loadings []models.MedicalLoading, condition string) *models.MedicalLoading {
		for i := range loadings {
			if loadings[i].Condition == condition {
				return &loadings[i]
			}
		}
		return nil
	}
	check := func(l *models.MedicalLoading, key, condition string) {
		t.Helper()
		if l == nil {
			t.Errorf("matcher produced no %q loading", condition)
			return
		}
		entry := ConditionTable[key]
		if l.LoadingPercentage != entry.Loading || l.Severity != entry.Severity {
			t.Errorf("%s: got %v/%s, table has %v/%s",
				condition, l.LoadingPercentage, l.Severity, entry.Loading, entry.Severity)
		}
	}

	alerts := matchCriticalAlert("Blood pressure critically elevated at 185/115")
	check(find(alerts, "Severe Hypertension"), "hypertension_severe", "Severe Hypertension")

	alerts = matchCriticalAlert("Abnormal ECG requires cardiology review")
	check(find(alerts, "Cardiac Abnormality"), "cardiac_abnormality", "Cardiac Abnormality")

	var app models.Applicant
	app.Health.Physical.Height = models.Measurement{Value: 160, Unit: "cm"}
	app.Health.Physical.Weight = models.Measurement{Value: 95, Unit: "kg"}
	lifestyle := matchLifestyle(app)
	check(find(lifestyle, "Severe Obesity"), "obesity_severe", "Severe Obesity")

	data := models.ExtractedMedical{Reports: []models.MedicalReport{{
		ExtractionSuccessful: true,
		StructuredData: models.StructuredData{LabResults: models.LabResults{
			LiverFunction: map[string]models.LabValue{"ALT": {Value: 90, Unit: "U/L"}},
		}},
	}}}
	labs := matchLabResults(models.Applicant{}, data)
	check(find(labs, "Moderate ALT Elevation"), "alt_elevated_moderate", "Moderate ALT Elevation")
}
