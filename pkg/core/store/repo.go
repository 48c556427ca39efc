package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agentic_underwriting/pkg/core/workflow"
	"agentic_underwriting/pkg/models"
)

// ErrNotFound marks a lookup with no matching document.
var ErrNotFound = errors.New("document not found")

// Document types stored in underwriting_documents.
const (
	docWorkflowResult = "workflow_result"
	docAgentResult    = "agent_result"
	docReport         = "comprehensive_report"
)

// ReportDocument wraps a stored report with its identity. The denormalized
// fields let dashboard queries filter on decision, risk and premium without
// unpacking the nested report.
type ReportDocument struct {
	ApplicationID     string                    `json:"application_id"`
	Timestamp         string                    `json:"timestamp"`
	ApplicantName     string                    `json:"applicant_name"`
	FinalDecision     string                    `json:"final_decision"`
	RiskCategory      string                    `json:"risk_category"`
	TotalFinalPremium float64                   `json:"total_final_premium"`
	Report            models.UnderwritingReport `json:"report"`
}

func newReportDocument(applicationID string, rep models.UnderwritingReport) ReportDocument {
	doc := ReportDocument{
		ApplicationID:     applicationID,
		Timestamp:         time.Now().Format(time.RFC3339Nano),
		ApplicantName:     rep.ApplicantName,
		FinalDecision:     string(rep.Decision),
		TotalFinalPremium: rep.TotalFinalPremium(),
		Report:            rep,
	}
	if rep.LoadingResult != nil {
		doc.RiskCategory = rep.LoadingResult.RiskCategory
	}
	return doc
}

// AgentResultDocument is one persisted agent analysis.
type AgentResultDocument struct {
	ApplicationID string                 `json:"application_id"`
	AgentName     string                 `json:"agent_name"`
	AgentRole     string                 `json:"agent_role"`
	Analysis      string                 `json:"analysis"`
	Status        string                 `json:"status"`
	Metadata      map[string]interface{} `json:"metadata"`
	Timestamp     string                 `json:"timestamp"`
}

// UnderwritingRepo stores and retrieves underwriting documents. It satisfies
// the workflow persister interface.
type UnderwritingRepo struct{}

func NewUnderwritingRepo() *UnderwritingRepo {
	return &UnderwritingRepo{}
}

// Available reports whether a database pool is configured.
func (r *UnderwritingRepo) Available() bool {
	return GetPool() != nil
}

func insertDocument(ctx context.Context, id, applicationID, docType string, doc interface{}) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", docType, err)
	}

	query := `
		INSERT INTO underwriting_documents (id, application_id, document_type, created_at, document)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET document = EXCLUDED.document, created_at = EXCLUDED.created_at;
	`
	if _, err := pool.Exec(ctx, query, id, applicationID, docType, time.Now(), jsonData); err != nil {
		return fmt.Errorf("failed to store %s: %w", docType, err)
	}
	return nil
}

// StoreWorkflowResult persists the full event record of one run.
func (r *UnderwritingRepo) StoreWorkflowResult(ctx context.Context, applicationID string, result workflow.Result) error {
	id := fmt.Sprintf("%s_%s", applicationID, time.Now().Format("20060102150405"))
	return insertDocument(ctx, id, applicationID, docWorkflowResult, result)
}

// StoreAgentResult persists one completed agent analysis.
func (r *UnderwritingRepo) StoreAgentResult(ctx context.Context, applicationID, agentName, agentRole, analysis string, status string, metadata map[string]interface{}) error {
	id := fmt.Sprintf("%s_%s_%s", applicationID, agentName, time.Now().Format("20060102150405.000"))
	doc := AgentResultDocument{
		ApplicationID: applicationID,
		AgentName:     agentName,
		AgentRole:     agentRole,
		Analysis:      analysis,
		Status:        status,
		Metadata:      metadata,
		Timestamp:     time.Now().Format(time.RFC3339Nano),
	}
	return insertDocument(ctx, id, applicationID, docAgentResult, doc)
}

// StoreReport persists the comprehensive underwriting report.
func (r *UnderwritingRepo) StoreReport(ctx context.Context, applicationID string, rep models.UnderwritingReport) error {
	id := fmt.Sprintf("report_%s_%s", applicationID, time.Now().Format("20060102150405"))
	return insertDocument(ctx, id, applicationID, docReport, newReportDocument(applicationID, rep))
}

// LatestReports returns the most recent report per application, newest first.
func (r *UnderwritingRepo) LatestReports(ctx context.Context) ([]ReportDocument, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT DISTINCT ON (application_id) document
		FROM underwriting_documents
		WHERE document_type = $1
		ORDER BY application_id, created_at DESC;
	`
	rows, err := pool.Query(ctx, query, docReport)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var docs []ReportDocument
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var doc ReportDocument
		if err := json.Unmarshal(jsonData, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// LatestReport returns the newest report for one application.
func (r *UnderwritingRepo) LatestReport(ctx context.Context, applicationID string) (*ReportDocument, error) {
	docs, err := r.reportsFor(ctx, applicationID, 1)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no report for application %s: %w", applicationID, ErrNotFound)
	}
	return &docs[0], nil
}

// AllReports returns every stored report for one application, newest first.
func (r *UnderwritingRepo) AllReports(ctx context.Context, applicationID string) ([]ReportDocument, error) {
	return r.reportsFor(ctx, applicationID, 0)
}

func (r *UnderwritingRepo) reportsFor(ctx context.Context, applicationID string, limit int) ([]ReportDocument, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT document
		FROM underwriting_documents
		WHERE document_type = $1 AND application_id = $2
		ORDER BY created_at DESC
	`
	args := []interface{}{docReport, applicationID}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports for %s: %w", applicationID, err)
	}
	defer rows.Close()

	var docs []ReportDocument
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		var doc ReportDocument
		if err := json.Unmarshal(jsonData, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// AgentResults returns the persisted agent analyses for one application,
// newest first.
func (r *UnderwritingRepo) AgentResults(ctx context.Context, applicationID string) ([]AgentResultDocument, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT document
		FROM underwriting_documents
		WHERE document_type = $1 AND application_id = $2
		ORDER BY created_at DESC;
	`
	rows, err := pool.Query(ctx, query, docAgentResult, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agent results for %s: %w", applicationID, err)
	}
	defer rows.Close()

	var docs []AgentResultDocument
	for rows.Next() {
		var jsonData []byte
		if err := rows.Scan(&jsonData); err != nil {
			return nil, fmt.Errorf("failed to scan agent result: %w", err)
		}
		var doc AgentResultDocument
		if err := json.Unmarshal(jsonData, &doc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent result: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
