package loading

import "agentic_underwriting/pkg/models"

// TariffEntry maps a condition key to its base loading and severity class.
type TariffEntry struct {
	Loading  float64
	Severity models.Severity
}

// ConditionTable is the industry-standard tariff the engine prices from.
// Matchers whose recognized band has an entry read its loading and severity
// here; bands without a tariff entry carry their figures inline. Enzyme
// elevations (AST, ALP) share the ALT bands.
var ConditionTable = map[string]TariffEntry{
	// Diabetes and blood sugar disorders
	"diabetes_type_1":              {150, models.SeveritySevere},
	"diabetes_type_2_controlled":   {75, models.SeverityModerate},
	"diabetes_type_2_uncontrolled": {125, models.SeveritySevere},
	"prediabetes":                  {25, models.SeverityMild},
	"hba1c_elevated_mild":          {30, models.SeverityMild},
	"hba1c_elevated_moderate":      {60, models.SeverityModerate},
	"hba1c_elevated_severe":        {100, models.SeveritySevere},
	"blood_sugar_abnormal":         {40, models.SeverityModerate},

	// Cardiovascular conditions
	"hypertension_mild":       {25, models.SeverityMild},
	"hypertension_moderate":   {50, models.SeverityModerate},
	"hypertension_severe":     {100, models.SeveritySevere},
	"coronary_artery_disease": {125, models.SeveritySevere},
	"heart_attack_history":    {200, models.SeverityCritical},
	"cardiac_abnormality":     {75, models.SeverityModerate},
	"arrhythmia":              {50, models.SeverityModerate},
	"valve_disease_mild":      {40, models.SeverityMild},
	"valve_disease_moderate":  {80, models.SeverityModerate},
	"cholesterol_high":        {20, models.SeverityMild},
	"cholesterol_very_high":   {40, models.SeverityModerate},

	// Liver conditions
	"liver_function_abnormal": {60, models.SeverityModerate},
	"hepatitis_b_inactive":    {75, models.SeverityModerate},
	"hepatitis_b_active":      {150, models.SeveritySevere},
	"hepatitis_c_treated":     {50, models.SeverityModerate},
	"fatty_liver":             {25, models.SeverityMild},
	"cirrhosis":               {300, models.SeverityCritical},
	"alt_elevated_mild":       {20, models.SeverityMild},
	"alt_elevated_moderate":   {40, models.SeverityModerate},
	"alt_elevated_severe":     {80, models.SeveritySevere},

	// Kidney conditions
	"kidney_disease_chronic_mild":     {50, models.SeverityModerate},
	"kidney_disease_chronic_moderate": {100, models.SeveritySevere},
	"kidney_disease_chronic_severe":   {250, models.SeverityCritical},
	"creatinine_elevated_mild":        {25, models.SeverityMild},
	"creatinine_elevated_moderate":    {50, models.SeverityModerate},
	"creatinine_elevated_severe":      {100, models.SeveritySevere},
	"proteinuria":                     {40, models.SeverityModerate},

	// Blood disorders
	"anemia_mild":             {15, models.SeverityMild},
	"anemia_moderate":         {35, models.SeverityModerate},
	"anemia_severe":           {75, models.SeveritySevere},
	"iron_deficiency":         {10, models.SeverityMinimal},
	"vitamin_b12_deficiency":  {15, models.SeverityMild},
	"bleeding_disorder":       {100, models.SeveritySevere},
	"thrombocytopenia":        {60, models.SeverityModerate},
	"leukopenia":              {50, models.SeverityModerate},

	// Thyroid conditions
	"hypothyroidism_controlled":    {10, models.SeverityMinimal},
	"hypothyroidism_uncontrolled":  {40, models.SeverityModerate},
	"hyperthyroidism_controlled":   {25, models.SeverityMild},
	"hyperthyroidism_uncontrolled": {75, models.SeveritySevere},
	"thyroid_nodules":              {20, models.SeverityMild},

	// Respiratory conditions
	"asthma_mild":     {25, models.SeverityMild},
	"asthma_moderate": {50, models.SeverityModerate},
	"asthma_severe":   {100, models.SeveritySevere},
	"copd_mild":       {75, models.SeverityModerate},
	"copd_moderate":   {150, models.SeveritySevere},
	"copd_severe":     {300, models.SeverityCritical},

	// Gastrointestinal conditions
	"peptic_ulcer":   {15, models.SeverityMild},
	"ibd_controlled": {50, models.SeverityModerate},
	"ibd_active":     {100, models.SeveritySevere},

	// Cancer history
	"cancer_history_5_years":  {200, models.SeverityCritical},
	"cancer_history_remission": {100, models.SeveritySevere},

	// Mental health
	"depression_controlled": {25, models.SeverityMild},
	"depression_severe":     {75, models.SeveritySevere},
	"anxiety_disorder":      {20, models.SeverityMild},

	// Lifestyle factors
	"obesity_mild":        {15, models.SeverityMild},
	"obesity_moderate":    {35, models.SeverityModerate},
	"obesity_severe":      {75, models.SeveritySevere},
	"smoking_current":     {50, models.SeverityModerate},
	"smoking_quit_recent": {25, models.SeverityMild},
	"alcohol_abuse":       {75, models.SeveritySevere},
}

// ageBracket maps an inclusive age range to its loading multiplier.
type ageBracket struct {
	min, max   int
	multiplier float64
}

var ageAdjustments = []ageBracket{
	{18, 25, 0.8},
	{26, 35, 1.0},
	{36, 45, 1.2},
	{46, 55, 1.4},
	{56, 65, 1.6},
	{66, 75, 2.0},
}

// AgeMultiplier returns the loading multiplier for the given age, or 1.0
// when the age falls outside every bracket.
func AgeMultiplier(age int) float64 {
	for _, b := range ageAdjustments {
		if age >= b.min && age <= b.max {
			return b.multiplier
		}
	}
	return 1.0
}
