// Package medical converts extracted lab reports into classified findings
// and a composite medical-risk scalar. All functions are pure and tolerate
// missing data by skipping it.
package medical

import (
	"fmt"
	"strings"

	"agentic_underwriting/pkg/models"
)

// Penalty weights applied against the 0.8 baseline health score.
const (
	penaltyBloodSugar = 0.15
	penaltyCardiac    = 0.25
	penaltyAnemia     = 0.10
	penaltyInfection  = 0.05
	penaltyCritical   = 0.20
)

// Analyze walks every successfully extracted report, concatenates its
// classified findings and derives additional risk factors from raw lab
// values. The resulting risk score is in [0,1] with 1 meaning healthiest.
func Analyze(data models.ExtractedMedical) models.MedicalFindings {
	findings := models.MedicalFindings{
		NormalValues:   []string{},
		AbnormalValues: []string{},
		CriticalAlerts: []string{},
		Concerns:       []string{},
	}
	var riskFactors []string

	for _, report := range data.Reports {
		if !report.ExtractionSuccessful {
			continue
		}
		cf := report.StructuredData.ClinicalFindings
		findings.NormalValues = append(findings.NormalValues, cf.NormalValues...)
		findings.AbnormalValues = append(findings.AbnormalValues, cf.AbnormalValues...)
		findings.CriticalAlerts = append(findings.CriticalAlerts, cf.CriticalAlerts...)

		lab := report.StructuredData.LabResults

		for _, reading := range lab.BloodSugar.Random {
			if reading.Value > 180 {
				riskFactors = append(riskFactors, "high_blood_sugar")
				findings.Concerns = append(findings.Concerns,
					fmt.Sprintf("High blood sugar: %g mg/dL", reading.Value))
			}
		}
		if len(lab.BloodSugar.Random) == 0 && lab.BloodSugar.Fasting > 126 {
			riskFactors = append(riskFactors, "diabetes_risk")
			findings.Concerns = append(findings.Concerns,
				fmt.Sprintf("Elevated fasting glucose: %g mg/dL", lab.BloodSugar.Fasting))
		}

		if hb := lab.CompleteBloodCount.Hemoglobin.Value; hb > 0 && hb < 10 {
			riskFactors = append(riskFactors, "anemia")
			findings.Concerns = append(findings.Concerns,
				fmt.Sprintf("Low hemoglobin: %g gm%%", hb))
		}
		if wbc := lab.CompleteBloodCount.WBC.Value; wbc > 15000 {
			riskFactors = append(riskFactors, "infection_inflammation")
			findings.Concerns = append(findings.Concerns,
				fmt.Sprintf("Elevated WBC: %g/cmm", wbc))
		}
	}

	findings.RiskScore = riskScore(riskFactors, findings.CriticalAlerts)
	return findings
}

// riskScore starts from a good-health baseline of 0.8 and subtracts a fixed
// penalty per risk factor plus 0.2 per critical alert, clamped to [0,1].
func riskScore(riskFactors, criticalAlerts []string) float64 {
	score := 0.8
	for _, factor := range riskFactors {
		switch {
		case strings.Contains(factor, "high_blood_sugar"), strings.Contains(factor, "diabetes"):
			score -= penaltyBloodSugar
		case strings.Contains(factor, "cardiac"), strings.Contains(factor, "heart"):
			score -= penaltyCardiac
		case strings.Contains(factor, "anemia"):
			score -= penaltyAnemia
		case strings.Contains(factor, "infection"):
			score -= penaltyInfection
		}
	}
	score -= float64(len(criticalAlerts)) * penaltyCritical
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
