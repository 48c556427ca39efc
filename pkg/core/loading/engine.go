// Package loading computes per-condition medical loadings from classified
// findings, lab values and lifestyle factors, then aggregates them with a
// severity-weighted combiner and an age multiplier. All functions are pure.
package loading

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"agentic_underwriting/pkg/models"
)

// Upper limits of normal for liver enzymes (U/L).
const (
	ulnALT = 40.0
	ulnAST = 40.0
	ulnALP = 120.0
)

// maxTotalLoading caps the aggregated loading percentage.
const maxTotalLoading = 300.0

var (
	rePercent   = regexp.MustCompile(`(\d+\.?\d*)\s*%`)
	reBP        = regexp.MustCompile(`(\d+)/(\d+)`)
	reMgDL      = regexp.MustCompile(`(\d+)\s*mg/dl`)
	reGramValue = regexp.MustCompile(`(\d+\.?\d*)\s*g`)
)

// Compute runs every matcher over the medical findings and the applicant's
// lifestyle profile and aggregates the matched loadings into a LoadingResult.
func Compute(app models.Applicant, data models.ExtractedMedical, findings models.MedicalFindings) models.LoadingResult {
	var loadings []models.MedicalLoading

	for _, alert := range findings.CriticalAlerts {
		loadings = append(loadings, matchCriticalAlert(alert)...)
	}
	for _, value := range findings.AbnormalValues {
		loadings = append(loadings, matchAbnormalValue(value)...)
	}
	loadings = append(loadings, matchLabResults(app, data)...)
	loadings = append(loadings, matchLifestyle(app)...)

	total := combine(loadings)
	total *= AgeMultiplier(app.PersonalInfo.Age)
	total = math.Max(0, math.Min(maxTotalLoading, total))

	result := models.LoadingResult{
		TotalLoadingPercentage:  math.Round(total*100) / 100,
		IndividualLoadings:      loadings,
		CriticalAlertsCount:     len(findings.CriticalAlerts),
		AbnormalFindingsCount:   len(findings.AbnormalValues),
		NormalFindingsCount:     len(findings.NormalValues),
		OverallHealthScore:      healthScore(findings),
		RiskCategory:            riskCategory(len(findings.CriticalAlerts), total),
		RequiresAdditionalTests: requiresAdditionalTests(loadings, findings),
	}
	result.Recommendations = recommendations(loadings, findings, app)
	result.Exclusions = exclusions(loadings)
	return result
}

// matchCriticalAlert recognizes HbA1c, blood pressure, liver, kidney and
// cardiac patterns inside a critical alert string.
func matchCriticalAlert(alert string) []models.MedicalLoading {
	lower := strings.ToLower(alert)
	var out []models.MedicalLoading

	if strings.Contains(lower, "hba1c") || strings.Contains(lower, "glycated hemoglobin") {
		if m := rePercent.FindStringSubmatch(alert); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			switch {
			case v >= 10:
				out = append(out, medicalLoading("Severe Diabetes (HbA1c ≥10%)", 150, models.SeverityCritical,
					fmt.Sprintf("HbA1c of %.1f%% indicates severely uncontrolled diabetes", v)))
			case v >= 8.5:
				out = append(out, medicalLoading("Uncontrolled Diabetes (HbA1c 8.5-9.9%)", 100, models.SeveritySevere,
					fmt.Sprintf("HbA1c of %.1f%% indicates uncontrolled diabetes", v)))
			case v >= 7.0:
				out = append(out, medicalLoading("Diabetes (HbA1c 7.0-8.4%)", 75, models.SeverityModerate,
					fmt.Sprintf("HbA1c of %.1f%% indicates diabetes", v)))
			}
		}
	}

	if strings.Contains(lower, "blood pressure") || strings.Contains(lower, "bp") || strings.Contains(lower, "hypertension") {
		if m := reBP.FindStringSubmatch(alert); m != nil {
			sys, _ := strconv.Atoi(m[1])
			dia, _ := strconv.Atoi(m[2])
			switch {
			case sys >= 180 || dia >= 110:
				out = append(out, tariff("hypertension_severe", "Severe Hypertension",
					fmt.Sprintf("Blood pressure %d/%d requires significant loading", sys, dia)))
			case sys >= 160 || dia >= 100:
				out = append(out, tariff("hypertension_moderate", "Moderate Hypertension",
					fmt.Sprintf("Blood pressure %d/%d requires loading", sys, dia)))
			}
		}
	}

	if containsAny(lower, "alt", "ast", "liver", "hepatic") {
		out = append(out, tariff("liver_function_abnormal", "Liver Function Abnormality",
			"Critical liver function finding requires loading"))
	}
	if containsAny(lower, "creatinine", "kidney", "renal", "urea") {
		out = append(out, tariff("creatinine_elevated_moderate", "Kidney Function Abnormality",
			"Critical kidney function finding requires loading"))
	}
	if containsAny(lower, "cardiac", "heart", "ecg", "echo") {
		out = append(out, tariff("cardiac_abnormality", "Cardiac Abnormality",
			"Critical cardiac finding requires loading"))
	}
	return out
}

// matchAbnormalValue recognizes cholesterol, hemoglobin, thyroid and
// metabolic patterns inside an abnormal-value string.
func matchAbnormalValue(value string) []models.MedicalLoading {
	lower := strings.ToLower(value)
	var out []models.MedicalLoading

	if strings.Contains(lower, "cholesterol") {
		if m := reMgDL.FindStringSubmatch(lower); m != nil && strings.Contains(lower, "total") {
			v, _ := strconv.Atoi(m[1])
			switch {
			case v > 300:
				out = append(out, tariff("cholesterol_very_high", "Very High Cholesterol",
					fmt.Sprintf("Total cholesterol of %d mg/dL", v)))
			case v > 240:
				out = append(out, tariff("cholesterol_high", "High Cholesterol",
					fmt.Sprintf("Total cholesterol of %d mg/dL", v)))
			}
		}
	}

	if strings.Contains(lower, "hemoglobin") || strings.Contains(lower, "haemoglobin") {
		if m := reGramValue.FindStringSubmatch(lower); m != nil {
			v, _ := strconv.ParseFloat(m[1], 64)
			switch {
			case v < 10:
				out = append(out, tariff("anemia_moderate", "Moderate Anemia",
					fmt.Sprintf("Hemoglobin of %.1f g/dL indicates moderate anemia", v)))
			case v < 12:
				out = append(out, tariff("anemia_mild", "Mild Anemia",
					fmt.Sprintf("Hemoglobin of %.1f g/dL indicates mild anemia", v)))
			}
		}
	}

	if containsAny(lower, "tsh", "t3", "t4", "thyroid") {
		l := medicalLoading("Thyroid Function Abnormality", 25, models.SeverityMild,
			"Abnormal thyroid function requires monitoring")
		l.AffectsCriticalIllness = false
		out = append(out, l)
	}
	if containsAny(lower, "glucose", "sugar", "metabolic") {
		out = append(out, medicalLoading("Metabolic Abnormality", 30, models.SeverityMild,
			"Abnormal metabolic finding requires loading"))
	}
	return out
}

// matchLabResults inspects the structured lab values of every successfully
// extracted report.
func matchLabResults(app models.Applicant, data models.ExtractedMedical) []models.MedicalLoading {
	var out []models.MedicalLoading
	female := strings.EqualFold(app.PersonalInfo.Gender, "female")

	for _, report := range data.Reports {
		if !report.ExtractionSuccessful {
			continue
		}
		lab := report.StructuredData.LabResults

		for _, reading := range lab.BloodSugar.Random {
			if reading.Value > 200 {
				out = append(out, tariff("blood_sugar_abnormal", "High Random Blood Sugar",
					fmt.Sprintf("Random blood sugar of %g mg/dL", reading.Value)))
			}
		}
		switch f := lab.BloodSugar.Fasting; {
		case f > 126:
			out = append(out, tariff("diabetes_type_2_controlled", "Diabetes (Fasting Glucose)",
				fmt.Sprintf("Fasting glucose of %g mg/dL in diabetic range", f)))
		case f > 110:
			out = append(out, tariff("prediabetes", "Prediabetes (Fasting Glucose)",
				fmt.Sprintf("Fasting glucose of %g mg/dL in prediabetic range", f)))
		}

		if hb := lab.CompleteBloodCount.Hemoglobin.Value; hb > 0 {
			switch {
			case hb < 10:
				out = append(out, tariff("anemia_moderate", "Moderate Anemia",
					fmt.Sprintf("Hemoglobin of %g g/dL", hb)))
			case hb < 12 && female:
				out = append(out, tariff("anemia_mild", "Mild Anemia (Female)",
					fmt.Sprintf("Hemoglobin of %g g/dL", hb)))
			case hb < 13 && !female:
				out = append(out, tariff("anemia_mild", "Mild Anemia",
					fmt.Sprintf("Hemoglobin of %g g/dL", hb)))
			}
		}
		if wbc := lab.CompleteBloodCount.WBC.Value; wbc > 0 {
			switch {
			case wbc > 15000:
				l := medicalLoading("Elevated White Blood Cells", 30, models.SeverityModerate,
					fmt.Sprintf("WBC count of %g indicates possible infection or inflammation", wbc))
				l.AffectsTermLife = false
				out = append(out, l)
			case wbc < 4000:
				out = append(out, medicalLoading("Low White Blood Cells", 25, models.SeverityMild,
					fmt.Sprintf("WBC count of %g below normal range", wbc)))
			}
		}

		for enzyme, reading := range lab.LiverFunction {
			uln := ulnALT
			switch strings.ToUpper(enzyme) {
			case "AST":
				uln = ulnAST
			case "ALP":
				uln = ulnALP
			}
			name := strings.ToUpper(enzyme)
			switch v := reading.Value; {
			case v > 3*uln:
				out = append(out, tariff("alt_elevated_severe", fmt.Sprintf("Severe %s Elevation", name),
					fmt.Sprintf("%s of %g exceeds 3x upper limit of normal", name, v)))
			case v > 2*uln:
				out = append(out, tariff("alt_elevated_moderate", fmt.Sprintf("Moderate %s Elevation", name),
					fmt.Sprintf("%s of %g exceeds 2x upper limit of normal", name, v)))
			case v > uln:
				out = append(out, tariff("alt_elevated_mild", fmt.Sprintf("Mild %s Elevation", name),
					fmt.Sprintf("%s of %g above upper limit of normal", name, v)))
			}
		}
	}
	return out
}

// matchLifestyle derives smoking, alcohol and BMI loadings.
func matchLifestyle(app models.Applicant) []models.MedicalLoading {
	var out []models.MedicalLoading

	if app.Lifestyle.Smoker {
		perDay := app.Lifestyle.SmokingDetails.CigarettesPerDay
		switch {
		case perDay > 20:
			out = append(out, lifestyleLoading("Heavy Smoking", 75, models.SeveritySevere,
				fmt.Sprintf("%d cigarettes per day", perDay)))
		case perDay > 10:
			out = append(out, lifestyleTariff("smoking_current", "Moderate Smoking",
				fmt.Sprintf("%d cigarettes per day", perDay)))
		default:
			out = append(out, lifestyleLoading("Light Smoking", 25, models.SeverityMild,
				"Current smoker"))
		}
	}

	switch units := app.Lifestyle.Alcohol.UnitsPerWeek; {
	case units > 21:
		out = append(out, lifestyleLoading("Heavy Alcohol Consumption", 40, models.SeverityModerate,
			fmt.Sprintf("%g units per week", units)))
	case units > 14:
		out = append(out, lifestyleLoading("Moderate Alcohol Consumption", 15, models.SeverityMild,
			fmt.Sprintf("%g units per week", units)))
	}

	heightCm := app.Health.Physical.Height.Value
	weightKg := app.Health.Physical.Weight.Value
	if heightCm > 0 && weightKg > 0 {
		heightM := heightCm / 100
		bmi := weightKg / (heightM * heightM)
		switch {
		case bmi >= 35:
			out = append(out, lifestyleTariff("obesity_severe", "Severe Obesity",
				fmt.Sprintf("BMI of %.1f", bmi)))
		case bmi >= 30:
			out = append(out, lifestyleTariff("obesity_moderate", "Moderate Obesity",
				fmt.Sprintf("BMI of %.1f", bmi)))
		case bmi >= 27:
			out = append(out, lifestyleTariff("obesity_mild", "Mild Obesity",
				fmt.Sprintf("BMI of %.1f", bmi)))
		}
	}
	return out
}

// combine aggregates individual loadings with severity-dependent weights:
// the highest-severity band contributes its maximum in full and discounts
// the rest, so stacked findings do not sum linearly.
func combine(loadings []models.MedicalLoading) float64 {
	if len(loadings) == 0 {
		return 0
	}
	bySeverity := map[models.Severity][]float64{}
	for _, l := range loadings {
		bySeverity[l.Severity] = append(bySeverity[l.Severity], l.LoadingPercentage)
	}

	critical := bySeverity[models.SeverityCritical]
	severe := bySeverity[models.SeveritySevere]
	moderate := bySeverity[models.SeverityModerate]
	mild := append(bySeverity[models.SeverityMild], bySeverity[models.SeverityMinimal]...)

	var total float64
	if len(critical) > 0 {
		total += maxOf(critical) + 0.5*sumRest(critical)
	}
	if len(severe) > 0 {
		if len(critical) == 0 {
			total += maxOf(severe) + 0.4*sumRest(severe)
		} else {
			total += 0.3 * sum(severe)
		}
	}
	if len(moderate) > 0 {
		if len(critical) == 0 && len(severe) == 0 {
			total += maxOf(moderate) + 0.3*sumRest(moderate)
		} else {
			total += 0.2 * sum(moderate)
		}
	}
	total += 0.2 * sum(mild)
	return total
}

// healthScore is in [0,1]; 0.8 when no findings exist at all.
func healthScore(findings models.MedicalFindings) float64 {
	total := len(findings.NormalValues) + len(findings.AbnormalValues) + len(findings.CriticalAlerts)
	if total == 0 {
		return 0.8
	}
	normalRatio := float64(len(findings.NormalValues)) / float64(total)
	abnRatio := float64(len(findings.AbnormalValues)) / float64(total)
	critRatio := float64(len(findings.CriticalAlerts)) / float64(total)
	score := normalRatio*0.9 + 0.1 - 0.3*abnRatio - 0.6*critRatio
	return math.Max(0, math.Min(1, score))
}

func riskCategory(criticalCount int, total float64) string {
	switch {
	case criticalCount > 2 || total > 200:
		return "HIGH RISK"
	case criticalCount > 0 || total > 100:
		return "MODERATE RISK"
	case total > 50:
		return "STANDARD PLUS"
	case total > 0:
		return "STANDARD"
	default:
		return "PREFERRED"
	}
}

func requiresAdditionalTests(loadings []models.MedicalLoading, findings models.MedicalFindings) bool {
	if len(findings.CriticalAlerts) > 0 {
		return true
	}
	for _, l := range loadings {
		if l.Severity == models.SeveritySevere || l.Severity == models.SeverityCritical {
			return true
		}
	}
	return false
}

func recommendations(loadings []models.MedicalLoading, findings models.MedicalFindings, app models.Applicant) []string {
	var recs []string
	seen := map[string]bool{}
	add := func(r string) {
		if !seen[r] {
			seen[r] = true
			recs = append(recs, r)
		}
	}

	for _, l := range loadings {
		lower := strings.ToLower(l.Condition)
		switch {
		case strings.Contains(lower, "diabetes") || strings.Contains(lower, "blood sugar") || strings.Contains(lower, "glucose"):
			add("HbA1c test every 6 months")
			add("Diabetic panel review at renewal")
		case strings.Contains(lower, "cardiac") || strings.Contains(lower, "hypertension"):
			add("Annual cardiac evaluation including ECG")
			add("Blood pressure monitoring")
		case strings.Contains(lower, "liver") || strings.Contains(lower, "alt") || strings.Contains(lower, "ast") || strings.Contains(lower, "alp"):
			add("Liver function tests every 6 months")
			add("Hepatitis screening recommended")
		case strings.Contains(lower, "kidney") || strings.Contains(lower, "renal"):
			add("Kidney function panel every 6 months")
		case strings.Contains(lower, "smoking"):
			add("Smoking cessation program enrollment")
		case strings.Contains(lower, "alcohol"):
			add("Alcohol consumption counseling")
		case strings.Contains(lower, "obesity"):
			add("Weight management program recommended")
		}
	}

	if len(findings.CriticalAlerts) > 2 {
		add("Comprehensive medical examination required before policy issuance")
	} else if len(findings.CriticalAlerts) > 0 {
		add("Follow-up testing for critical findings within 30 days")
	}
	return recs
}

func exclusions(loadings []models.MedicalLoading) []string {
	var out []string
	seen := map[string]bool{}
	add := func(e string) {
		if !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}

	for _, l := range loadings {
		lower := strings.ToLower(l.Condition)
		switch {
		case strings.Contains(lower, "diabetes") || strings.Contains(lower, "glucose") || strings.Contains(lower, "blood sugar"):
			if l.AffectsCriticalIllness {
				add("Diabetes-related complications exclusion for Critical Illness coverage")
			}
		case strings.Contains(lower, "cardiac") || strings.Contains(lower, "hypertension"):
			add("Pre-existing cardiac condition exclusion")
		case strings.Contains(lower, "liver") || strings.Contains(lower, "alt") || strings.Contains(lower, "ast"):
			add("Liver disease exclusion")
		case strings.Contains(lower, "kidney") || strings.Contains(lower, "renal"):
			add("Kidney disease exclusion")
		}
	}
	return out
}

// TopBreakdown returns the largest contributors for premium breakdowns,
// ordered by loading percentage descending.
func TopBreakdown(result models.LoadingResult, n int) []models.LoadingBreakdownItem {
	sorted := make([]models.MedicalLoading, len(result.IndividualLoadings))
	copy(sorted, result.IndividualLoadings)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LoadingPercentage > sorted[j].LoadingPercentage
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	items := make([]models.LoadingBreakdownItem, 0, n)
	for _, l := range sorted[:n] {
		items = append(items, models.LoadingBreakdownItem{
			Condition:  l.Condition,
			Percentage: l.LoadingPercentage,
			Severity:   string(l.Severity),
		})
	}
	return items
}

func medicalLoading(condition string, pct float64, sev models.Severity, reasoning string) models.MedicalLoading {
	return models.MedicalLoading{
		Condition:              condition,
		LoadingPercentage:      pct,
		Severity:               sev,
		LoadingType:            models.LoadingMedical,
		Reasoning:              reasoning,
		AffectsCriticalIllness: true,
		AffectsTermLife:        true,
		AffectsDisability:      true,
	}
}

func lifestyleLoading(condition string, pct float64, sev models.Severity, reasoning string) models.MedicalLoading {
	l := medicalLoading(condition, pct, sev, reasoning)
	l.LoadingType = models.LoadingLifestyle
	return l
}

// tariff builds a loading priced from the ConditionTable entry for key.
func tariff(key, condition, reasoning string) models.MedicalLoading {
	e := ConditionTable[key]
	return medicalLoading(condition, e.Loading, e.Severity, reasoning)
}

func lifestyleTariff(key, condition, reasoning string) models.MedicalLoading {
	l := tariff(key, condition, reasoning)
	l.LoadingType = models.LoadingLifestyle
	return l
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func sumRest(vals []float64) float64 {
	return sum(vals) - maxOf(vals)
}
