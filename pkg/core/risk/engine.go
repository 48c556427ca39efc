// Package risk derives a deterministic, feature-based risk assessment from
// applicant demographics, lifestyle, finances and the medical analyzer's
// output. It is a pure engine: no I/O, missing fields fall back to defaults.
package risk

import (
	"fmt"
	"math"

	"agentic_underwriting/pkg/models"
)

// Defaults applied when physical measurements are missing.
const (
	defaultHeightCm = 165.0
	defaultWeightKg = 65.0
)

// Component weights for the composite score.
const (
	weightMedical    = 0.5
	weightLifestyle  = 0.25
	weightOccupation = 0.15
	weightFinancial  = 0.1
)

// Assess combines the applicant profile with the medical findings into a
// RiskAssessment. The overall level follows a fixed rule set: LOW when both
// medical and lifestyle risk stay at or below 0.2 with no critical alerts,
// HIGH when medical risk reaches 0.5 or any critical alert exists, STANDARD
// otherwise.
func Assess(app models.Applicant, findings models.MedicalFindings) models.RiskAssessment {
	age := app.PersonalInfo.Age
	if age == 0 {
		age = 35
	}
	bmi := BMI(app)

	income := app.PersonalInfo.Income.Annual
	if income <= 0 {
		income = 1000000
	}
	totalSumAssured := app.InsuranceCoverage.TotalSumAssured
	if totalSumAssured <= 0 {
		totalSumAssured = 1000000
	}

	lifestyleScore := 0.8
	if app.Lifestyle.Smoker {
		lifestyleScore -= 0.3
	}
	if app.Lifestyle.Alcohol.UnitsPerWeek > 14 {
		lifestyleScore -= 0.1
	}

	medicalRisk := 1.0 - findings.RiskScore
	lifestyleRisk := 1.0 - lifestyleScore
	financialRisk := math.Min(0.5, totalSumAssured/(income*10))
	occupationRisk := 0.1

	overall := models.RiskStandard
	switch {
	case medicalRisk >= 0.5 || len(findings.CriticalAlerts) > 0:
		overall = models.RiskHigh
	case medicalRisk <= 0.2 && lifestyleRisk <= 0.2:
		overall = models.RiskLow
	}

	composite := 1.0 - (weightMedical*medicalRisk +
		weightLifestyle*lifestyleRisk +
		weightOccupation*occupationRisk +
		weightFinancial*financialRisk)
	composite = math.Max(0, math.Min(1, composite))

	var redFlags []string
	for _, alert := range findings.CriticalAlerts {
		redFlags = append(redFlags, "Critical medical alert: "+alert)
	}
	if app.Lifestyle.Smoker {
		redFlags = append(redFlags, "Current smoker")
	}
	if bmi > 30 {
		redFlags = append(redFlags, fmt.Sprintf("High BMI: %.1f", bmi))
	}
	if age > 55 {
		redFlags = append(redFlags, fmt.Sprintf("Advanced age: %d", age))
	}

	var recommendations []string
	if medicalRisk > 0.3 {
		recommendations = append(recommendations, "Additional medical examinations recommended")
	}
	if app.Lifestyle.Smoker {
		recommendations = append(recommendations, "Consider smoking cessation programs")
	}

	return models.RiskAssessment{
		OverallRiskLevel: overall,
		RiskScore:        composite,
		MedicalRisk:      medicalRisk,
		LifestyleRisk:    lifestyleRisk,
		FinancialRisk:    financialRisk,
		OccupationRisk:   occupationRisk,
		Factors: map[string]float64{
			"age_factor":       float64(age) / 65,
			"bmi_factor":       math.Max(0, (bmi-25)/10),
			"medical_factor":   medicalRisk,
			"lifestyle_factor": lifestyleRisk,
		},
		RedFlags:        redFlags,
		Recommendations: recommendations,
	}
}

// BMI computes body mass index from the applicant's physical block,
// defaulting to 165 cm / 65 kg when either measurement is missing.
func BMI(app models.Applicant) float64 {
	heightCm := app.Health.Physical.Height.Value
	weightKg := app.Health.Physical.Weight.Value
	if heightCm <= 0 {
		heightCm = defaultHeightCm
	}
	if weightKg <= 0 {
		weightKg = defaultWeightKg
	}
	heightM := heightCm / 100
	return math.Round(weightKg/(heightM*heightM)*10) / 10
}
