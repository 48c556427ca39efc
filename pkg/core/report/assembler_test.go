package report

import (
	"testing"

	"agentic_underwriting/pkg/models"
)

func testApplicant() models.Applicant {
	var app models.Applicant
	app.PersonalInfo.Name = "Rajesh Kumar"
	app.PersonalInfo.Age = 45
	app.ApplicationDetails.ApplicationNumber = "LI2025090001"
	app.InsuranceCoverage.TotalSumAssured = 8000000
	app.InsuranceCoverage.CoversRequested = []models.Coverage{
		{CoverType: "Term Life Insurance", SumAssured: 5000000, Term: 20},
	}
	return app
}

func TestAssembleParsesDecisionText(t *testing.T) {
	analyses := map[string]string{
		"decision_maker": "DECISION: APPROVED with standard terms",
	}
	rep := Assemble(testApplicant(), models.MedicalFindings{RiskScore: 0.8},
		models.RiskAssessment{RiskScore: 0.8}, analyses, &models.LoadingResult{})

	if rep.Decision != models.DecisionAutoApproved {
		t.Errorf("decision = %s, want auto_approved", rep.Decision)
	}
	if rep.ApplicationID != "LI2025090001" || rep.ApplicantName != "Rajesh Kumar" {
		t.Errorf("identity = %s/%s", rep.ApplicationID, rep.ApplicantName)
	}
}

// Without decision text the rule-based decision over the deterministic
// assessment takes over.
func TestAssembleWithoutDecisionText(t *testing.T) {
	assessment := models.RiskAssessment{RiskScore: 0.8}
	rep := Assemble(testApplicant(), models.MedicalFindings{RiskScore: 0.8},
		assessment, map[string]string{}, &models.LoadingResult{})

	if rep.Decision != models.DecisionAutoApproved {
		t.Errorf("decision = %s, want auto_approved", rep.Decision)
	}
	if rep.DecisionDetails.DecisionType != "auto" || rep.DecisionDetails.ProcessingTimeDays != 1 {
		t.Errorf("details = %s/%d, want auto/1",
			rep.DecisionDetails.DecisionType, rep.DecisionDetails.ProcessingTimeDays)
	}
	if len(rep.PremiumCalculations) == 0 {
		t.Error("approved report should carry premium calculations")
	}
}

func TestAssembleWithoutDecisionTextDeclines(t *testing.T) {
	findings := models.MedicalFindings{
		RiskScore:      0.1,
		CriticalAlerts: []string{"Ultrasound consistent with cirrhosis"},
	}
	rep := Assemble(testApplicant(), findings,
		models.RiskAssessment{RiskScore: 0.2}, map[string]string{}, &models.LoadingResult{})

	if rep.Decision != models.DecisionDeclined {
		t.Errorf("decision = %s, want declined", rep.Decision)
	}
	if len(rep.PremiumCalculations) != 0 {
		t.Errorf("declined report must carry no premiums, got %d", len(rep.PremiumCalculations))
	}
	if rep.DecisionDetails.DecisionType != "declined" || rep.DecisionDetails.ProcessingTimeDays != 2 {
		t.Errorf("details = %s/%d, want declined/2",
			rep.DecisionDetails.DecisionType, rep.DecisionDetails.ProcessingTimeDays)
	}
}
