// Package underwriting exposes the HTTP surface: synchronous processing,
// SSE and WebSocket streaming, and report retrieval for the dashboard.
package underwriting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/core/llm"
	"agentic_underwriting/pkg/core/report"
	"agentic_underwriting/pkg/core/store"
	"agentic_underwriting/pkg/core/utils"
	"agentic_underwriting/pkg/core/workflow"
	"agentic_underwriting/pkg/models"
)

const serviceVersion = "1.0.0"

// Handler carries the dependencies of every underwriting endpoint.
type Handler struct {
	Manager *workflow.Manager
	Repo    *store.UnderwritingRepo
	LLM     *llm.Manager
}

func NewHandler(manager *workflow.Manager, repo *store.UnderwritingRepo, llmManager *llm.Manager) *Handler {
	return &Handler{Manager: manager, Repo: repo, LLM: llmManager}
}

// UnderwritingRequest is the application body accepted by the processing
// endpoints. medicalData carries the extracted medical document.
type UnderwritingRequest struct {
	PersonalInfo       models.PersonalInfo       `json:"personalInfo"`
	ApplicationDetails models.ApplicationDetails `json:"applicationDetails"`
	InsuranceCoverage  models.InsuranceCoverage  `json:"insuranceCoverage"`
	Lifestyle          models.Lifestyle          `json:"lifestyle"`
	Health             models.Health             `json:"health"`
	MedicalData        models.ExtractedMedical   `json:"medicalData"`
}

func (req UnderwritingRequest) applicant() models.Applicant {
	return models.Applicant{
		PersonalInfo:       req.PersonalInfo,
		ApplicationDetails: req.ApplicationDetails,
		InsuranceCoverage:  req.InsuranceCoverage,
		Lifestyle:          req.Lifestyle,
		Health:             req.Health,
	}
}

func (req UnderwritingRequest) validate() error {
	if req.PersonalInfo.Name == "" {
		return fmt.Errorf("%w: personalInfo.name is required", workflow.ErrInvalidInput)
	}
	if req.PersonalInfo.Age < 18 || req.PersonalInfo.Age > 80 {
		return fmt.Errorf("%w: age must be between 18 and 80", workflow.ErrInvalidInput)
	}
	if req.ApplicationDetails.ApplicationNumber == "" {
		return fmt.Errorf("%w: applicationDetails.applicationNumber is required", workflow.ErrInvalidInput)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, workflow.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, workflow.ErrWorkflowNotFound), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{
		"error":  http.StatusText(status),
		"detail": err.Error(),
	})
}

// HandleHealth reports service liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "underwriting-api",
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"version":   serviceVersion,
	})
}

// HandleProcess runs the full workflow synchronously and returns the
// collected result document.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	var req UnderwritingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrInvalidInput, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	h.process(w, r.Context(), req.applicant(), req.MedicalData)
}

func (h *Handler) process(w http.ResponseWriter, ctx context.Context, app models.Applicant, med models.ExtractedMedical) {
	result, err := h.Manager.Run(ctx, app, med)
	if err != nil {
		log.Error().Err(err).Str("application_id", app.ApplicationDetails.ApplicationNumber).
			Msg("workflow processing failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// FileRequest points the workflow at application documents on the server's
// filesystem. The files may be JSON or Hjson.
type FileRequest struct {
	ApplicantDataFile string `json:"applicant_data_file"`
	MedicalDataFile   string `json:"medical_data_file"`
}

// HandleProcessFile loads the applicant and medical documents from disk and
// runs the workflow on them.
func (h *Handler) HandleProcessFile(w http.ResponseWriter, r *http.Request) {
	var req FileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrInvalidInput, err))
		return
	}
	if req.ApplicantDataFile == "" {
		req.ApplicantDataFile = "data/sample/person_details.json"
	}

	raw, err := os.ReadFile(req.ApplicantDataFile)
	if err != nil {
		writeError(w, fmt.Errorf("%w: applicant data file %s: %v",
			workflow.ErrInvalidInput, req.ApplicantDataFile, err))
		return
	}
	var app models.Applicant
	if _, err := utils.SmartParse(string(raw), &app); err != nil {
		writeError(w, fmt.Errorf("%w: parse %s: %v", workflow.ErrInvalidInput, req.ApplicantDataFile, err))
		return
	}

	var med models.ExtractedMedical
	if req.MedicalDataFile != "" {
		raw, err := os.ReadFile(req.MedicalDataFile)
		if err != nil {
			writeError(w, fmt.Errorf("%w: medical data file %s: %v",
				workflow.ErrInvalidInput, req.MedicalDataFile, err))
			return
		}
		if _, err := utils.SmartParse(string(raw), &med); err != nil {
			writeError(w, fmt.Errorf("%w: parse %s: %v", workflow.ErrInvalidInput, req.MedicalDataFile, err))
			return
		}
	}

	h.process(w, r.Context(), app, med)
}

// HandleDemo runs the workflow on the canned sample application.
func (h *Handler) HandleDemo(w http.ResponseWriter, r *http.Request) {
	req := SampleRequest()
	h.process(w, r.Context(), req.applicant(), req.MedicalData)
}

// HandleAgents lists the seven pipeline stages in execution order.
func (h *Handler) HandleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"agents":       pipelineStages,
		"workflow":     "medical_analyzer → risk_ml → medical_reviewer → fraud_detector → risk_assessor → premium_calculator → decision_maker",
		"total_agents": len(pipelineStages),
	})
}

// HandleSampleData serves the canned request body for testing.
func (h *Handler) HandleSampleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SampleRequest())
}

func (h *Handler) storeOrUnavailable(w http.ResponseWriter) bool {
	if h.Repo == nil || !h.Repo.Available() {
		writeError(w, workflow.ErrStoreUnavailable)
		return false
	}
	return true
}

// HandleReports lists the most recent report per application.
func (h *Handler) HandleReports(w http.ResponseWriter, r *http.Request) {
	if !h.storeOrUnavailable(w) {
		return
	}
	docs, err := h.Repo.LatestReports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": docs,
		"total":   len(docs),
	})
}

// HandleReport returns the most recent report body for one application.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !h.storeOrUnavailable(w) {
		return
	}
	applicationID := mux.Vars(r)["appId"]
	doc, err := h.Repo.LatestReport(r.Context(), applicationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc.Report)
}

// HandleReportVersions returns every stored report for one application.
func (h *Handler) HandleReportVersions(w http.ResponseWriter, r *http.Request) {
	if !h.storeOrUnavailable(w) {
		return
	}
	applicationID := mux.Vars(r)["appId"]
	docs, err := h.Repo.AllReports(r.Context(), applicationID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reports": docs,
		"total":   len(docs),
	})
}

// HandleReportHTML renders the most recent report as an HTML document for
// the dashboard detail view.
func (h *Handler) HandleReportHTML(w http.ResponseWriter, r *http.Request) {
	if !h.storeOrUnavailable(w) {
		return
	}
	applicationID := mux.Vars(r)["appId"]
	doc, err := h.Repo.LatestReport(r.Context(), applicationID)
	if err != nil {
		writeError(w, err)
		return
	}
	html, err := report.ToHTML(doc.Report)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, html)
}

// HandleDashboardData aggregates the latest reports into the dashboard
// summary document.
func (h *Handler) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	if !h.storeOrUnavailable(w) {
		return
	}
	docs, err := h.Repo.LatestReports(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var (
		applications    []models.UnderwritingReport
		totalPremium    float64
		totalAccepted   int
		totalAdditional int
		totalDeclined   int
		totalPending    int
	)
	for _, doc := range docs {
		applications = append(applications, doc.Report)
		totalPremium += doc.TotalFinalPremium

		switch models.Decision(doc.FinalDecision) {
		case models.DecisionAutoApproved:
			totalAccepted++
		case models.DecisionAdditionalRequirements, models.DecisionManualReview:
			totalAdditional++
		case models.DecisionDeclined:
			totalDeclined++
		default:
			totalPending++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applications": applications,
		"summary": map[string]interface{}{
			"totalApplications":           len(docs),
			"totalAccepted":               totalAccepted,
			"totalAdditionalRequirements": totalAdditional,
			"totalDeclined":               totalDeclined,
			"totalPending":                totalPending,
			"totalPremiumValue":           totalPremium,
			"averageProcessingTime":       averageProcessingTime(docs),
		},
	})
}

// averageProcessingTime averages the recorded workflow durations; reports
// stored before durations were recorded carry zero and are skipped.
func averageProcessingTime(docs []store.ReportDocument) float64 {
	var sum float64
	var n int
	for _, doc := range docs {
		if t := doc.Report.ProcessingTimeSeconds; t > 0 {
			sum += t
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
