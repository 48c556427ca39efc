package underwriting

import (
	"time"

	"agentic_underwriting/pkg/models"
)

// PipelineStage describes one stage of the workflow for GET /agents.
type PipelineStage struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

var pipelineStages = []PipelineStage{
	{
		Key:         "medical_analyzer",
		Name:        "MedicalAnalyzer",
		Role:        "ML Medical Data Analyzer",
		Description: "Analyzes medical data using ML models to identify findings",
		Order:       1,
	},
	{
		Key:         "risk_ml",
		Name:        "RiskAssessmentML",
		Role:        "ML Risk Assessment Engine",
		Description: "Computes risk scores using machine learning models",
		Order:       2,
	},
	{
		Key:         "medical_reviewer",
		Name:        "MedicalReviewer",
		Role:        "Medical Review Specialist",
		Description: "Expert medical analysis enhancing ML predictions",
		Order:       3,
	},
	{
		Key:         "fraud_detector",
		Name:        "FraudDetector",
		Role:        "Fraud Detection Specialist",
		Description: "Verifies data authenticity and identifies fraud risks",
		Order:       4,
	},
	{
		Key:         "risk_assessor",
		Name:        "RiskAssessor",
		Role:        "Risk Assessment Specialist",
		Description: "Comprehensive multi-factor risk assessment",
		Order:       5,
	},
	{
		Key:         "premium_calculator",
		Name:        "PremiumCalculator",
		Role:        "Premium Calculation Specialist",
		Description: "Calculates premiums with medical loadings",
		Order:       6,
	},
	{
		Key:         "decision_maker",
		Name:        "DecisionMaker",
		Role:        "Senior Underwriting Decision Maker",
		Description: "Makes final underwriting decision",
		Order:       7,
	},
}

// SampleRequest is the canned application served by GET /sample-data and
// processed by POST /demo.
func SampleRequest() UnderwritingRequest {
	return UnderwritingRequest{
		PersonalInfo: models.PersonalInfo{
			Name:       "Rajesh Kumar",
			Age:        45,
			Gender:     "Male",
			Occupation: "IT Professional",
			Income: models.Income{
				Annual:   1800000,
				Currency: "INR",
			},
		},
		ApplicationDetails: models.ApplicationDetails{
			ApplicationNumber: "LI2025090001",
			ApplicationDate:   time.Now().Format(time.RFC3339Nano),
		},
		InsuranceCoverage: models.InsuranceCoverage{
			TotalSumAssured: 8000000,
			CoversRequested: []models.Coverage{
				{CoverType: "Term Life Insurance", SumAssured: 5000000, Term: 20},
				{CoverType: "Critical Illness", SumAssured: 2000000, Term: 20},
				{CoverType: "Accidental Death Benefit", SumAssured: 1000000, Term: 20},
			},
		},
		Lifestyle: models.Lifestyle{
			Smoker:   false,
			Alcohol:  models.Alcohol{Frequency: "Social", Type: "Occasional"},
			Exercise: models.Exercise{Frequency: "Regular", Type: "Gym"},
		},
		Health: models.Health{
			Physical: models.Physical{
				Height: models.Measurement{Value: 175, Unit: "cm"},
				Weight: models.Measurement{Value: 78, Unit: "kg"},
			},
			ExistingConditions: []string{},
			FamilyHistory:      []string{},
		},
		MedicalData: models.ExtractedMedical{
			Reports: []models.MedicalReport{
				{
					ExtractionSuccessful: true,
					StructuredData: models.StructuredData{
						ClinicalFindings: models.ClinicalFindings{
							NormalValues: []string{
								"Hemoglobin 14.2 g/dL within normal range",
								"HDL 45 mg/dL within normal range",
							},
							AbnormalValues: []string{
								"Fasting glucose 105 mg/dL slightly elevated",
								"Total cholesterol 210 mg/dL borderline high",
								"HbA1c 6.2% above normal range",
							},
							CriticalAlerts: []string{},
						},
						LabResults: models.LabResults{
							BloodSugar: models.BloodSugar{
								Fasting: 105,
							},
							CompleteBloodCount: models.CompleteBloodCount{
								Hemoglobin: models.LabValue{Value: 14.2, Unit: "g/dL", ReferenceRange: "13.5-17.5"},
							},
						},
					},
				},
			},
		},
	}
}
