package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/subtitleops/captionlint/pkg/models"
)

// Repository provides database operations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Health checks if the underlying database is healthy
func (r *Repository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

// Runs

// CreateRun creates a new validation run record
func (r *Repository) CreateRun(ctx context.Context, run *models.ValidationRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	query := `
		INSERT INTO validation_runs (id, status, reference_id, file_count, completed_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		run.ID, run.Status, run.ReferenceID, run.FileCount, run.CompletedCount,
	).Scan(&run.CreatedAt, &run.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetRun retrieves a validation run by ID
func (r *Repository) GetRun(ctx context.Context, id string) (*models.ValidationRun, error) {
	var run models.ValidationRun

	query := `
		SELECT id, status, reference_id, file_count, completed_count, error_msg,
		       started_at, completed_at, created_at, updated_at
		FROM validation_runs
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Status, &run.ReferenceID, &run.FileCount, &run.CompletedCount,
		&run.ErrorMsg, &run.StartedAt, &run.CompletedAt, &run.CreatedAt, &run.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return &run, nil
}

// UpdateRun updates a validation run record
func (r *Repository) UpdateRun(ctx context.Context, run *models.ValidationRun) error {
	query := `
		UPDATE validation_runs
		SET status = $2, completed_count = $3, error_msg = $4,
		    started_at = $5, completed_at = $6, updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query,
		run.ID, run.Status, run.CompletedCount, run.ErrorMsg,
		run.StartedAt, run.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return nil
}

// MarkDocumentCompleted bumps the run's completed counter and closes the run
// once every translated document has a report.
func (r *Repository) MarkDocumentCompleted(ctx context.Context, runID string) error {
	query := `
		UPDATE validation_runs
		SET completed_count = completed_count + 1,
		    status = CASE WHEN completed_count + 1 >= file_count THEN 'completed' ELSE status END,
		    completed_at = CASE WHEN completed_count + 1 >= file_count THEN now() ELSE completed_at END,
		    updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, runID)
	if err != nil {
		return fmt.Errorf("failed to mark document completed: %w", err)
	}

	return nil
}

// ListRuns retrieves validation runs with pagination
func (r *Repository) ListRuns(ctx context.Context, limit, offset int) ([]*models.ValidationRun, error) {
	query := `
		SELECT id, status, reference_id, file_count, completed_count, error_msg,
		       started_at, completed_at, created_at, updated_at
		FROM validation_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ValidationRun
	for rows.Next() {
		var run models.ValidationRun
		err := rows.Scan(
			&run.ID, &run.Status, &run.ReferenceID, &run.FileCount, &run.CompletedCount,
			&run.ErrorMsg, &run.StartedAt, &run.CompletedAt, &run.CreatedAt, &run.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}

	return runs, nil
}

// Documents

// CreateDocument creates a new document record
func (r *Repository) CreateDocument(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	query := `
		INSERT INTO documents (id, run_id, filename, role, language, storage_key, size, cue_count, content_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		doc.ID, doc.RunID, doc.Filename, doc.Role, doc.Language,
		doc.StorageKey, doc.Size, doc.CueCount, doc.ContentHash,
	).Scan(&doc.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

// GetDocument retrieves a document by ID
func (r *Repository) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document

	query := `
		SELECT id, run_id, filename, role, language, storage_key, size, cue_count, content_hash, created_at
		FROM documents
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.RunID, &doc.Filename, &doc.Role, &doc.Language,
		&doc.StorageKey, &doc.Size, &doc.CueCount, &doc.ContentHash, &doc.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("document not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &doc, nil
}

// GetDocumentsByRunID retrieves all documents for a run
func (r *Repository) GetDocumentsByRunID(ctx context.Context, runID string) ([]*models.Document, error) {
	query := `
		SELECT id, run_id, filename, role, language, storage_key, size, cue_count, content_hash, created_at
		FROM documents
		WHERE run_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		var doc models.Document
		err := rows.Scan(
			&doc.ID, &doc.RunID, &doc.Filename, &doc.Role, &doc.Language,
			&doc.StorageKey, &doc.Size, &doc.CueCount, &doc.ContentHash, &doc.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

// Reports

// CreateReport creates a new report record
func (r *Repository) CreateReport(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}

	query := `
		INSERT INTO reports (id, run_id, document_id, filename, language, language_ok,
		                     passed, error_msg, details, corrected_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		report.ID, report.RunID, report.DocumentID, report.Filename, report.Language,
		report.LanguageOK, report.Passed, report.ErrorMsg, report.Details, report.CorrectedKey,
	).Scan(&report.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	return nil
}

// GetReport retrieves a report by ID
func (r *Repository) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report

	query := `
		SELECT id, run_id, document_id, filename, language, language_ok,
		       passed, error_msg, details, corrected_key, created_at
		FROM reports
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&report.ID, &report.RunID, &report.DocumentID, &report.Filename, &report.Language,
		&report.LanguageOK, &report.Passed, &report.ErrorMsg, &report.Details,
		&report.CorrectedKey, &report.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("report not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return &report, nil
}

// GetReportsByRunID retrieves all reports for a run
func (r *Repository) GetReportsByRunID(ctx context.Context, runID string) ([]*models.Report, error) {
	query := `
		SELECT id, run_id, document_id, filename, language, language_ok,
		       passed, error_msg, details, corrected_key, created_at
		FROM reports
		WHERE run_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var report models.Report
		err := rows.Scan(
			&report.ID, &report.RunID, &report.DocumentID, &report.Filename, &report.Language,
			&report.LanguageOK, &report.Passed, &report.ErrorMsg, &report.Details,
			&report.CorrectedKey, &report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &report)
	}

	return reports, nil
}

// GetLanguageStats aggregates report outcomes per language
func (r *Repository) GetLanguageStats(ctx context.Context) ([]*models.LanguageStats, error) {
	query := `
		SELECT language,
		       count(*) AS total,
		       count(*) FILTER (WHERE passed) AS passed
		FROM reports
		GROUP BY language
		ORDER BY total DESC
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get language stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.LanguageStats
	for rows.Next() {
		var s models.LanguageStats
		if err := rows.Scan(&s.Language, &s.TotalReports, &s.PassedReports); err != nil {
			return nil, fmt.Errorf("failed to scan language stats: %w", err)
		}
		if s.TotalReports > 0 {
			s.PassRate = (float64(s.PassedReports) / float64(s.TotalReports)) * 100
		}
		stats = append(stats, &s)
	}

	return stats, nil
}

// Jobs

// CreateJob records a validation job before it is handed to the dispatcher
func (r *Repository) CreateJob(ctx context.Context, job *models.ValidationJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	query := `
		INSERT INTO validation_jobs (id, run_id, document_id, reference_id, priority, retry_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		job.ID, job.RunID, job.DocumentID, job.ReferenceID, job.Priority, job.RetryCount,
	).Scan(&job.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetPendingJobs retrieves jobs that have not been dispatched to the broker yet
func (r *Repository) GetPendingJobs(ctx context.Context, limit int) ([]*models.ValidationJob, error) {
	query := `
		SELECT id, run_id, document_id, reference_id, priority, retry_count, created_at, dispatched_at
		FROM validation_jobs
		WHERE dispatched_at IS NULL
		ORDER BY priority DESC, created_at
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.ValidationJob
	for rows.Next() {
		var job models.ValidationJob
		err := rows.Scan(
			&job.ID, &job.RunID, &job.DocumentID, &job.ReferenceID,
			&job.Priority, &job.RetryCount, &job.CreatedAt, &job.DispatchedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, &job)
	}

	return jobs, nil
}

// MarkJobDispatched stamps a job as handed off to the broker
func (r *Repository) MarkJobDispatched(ctx context.Context, jobID string) error {
	query := `UPDATE validation_jobs SET dispatched_at = now() WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, jobID)
	if err != nil {
		return fmt.Errorf("failed to mark job dispatched: %w", err)
	}

	return nil
}

// Webhooks

// GetWebhooksByEvent retrieves active webhooks subscribed to an event
func (r *Repository) GetWebhooksByEvent(ctx context.Context, event string) ([]*models.Webhook, error) {
	query := `
		SELECT id, user_id, url, events, secret, is_active, created_at, updated_at
		FROM webhooks
		WHERE is_active = true
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []*models.Webhook
	for rows.Next() {
		var wh models.Webhook
		err := rows.Scan(
			&wh.ID, &wh.UserID, &wh.URL, &wh.Events, &wh.Secret,
			&wh.IsActive, &wh.CreatedAt, &wh.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		if subscribed(&wh.Events, event) {
			webhooks = append(webhooks, &wh)
		}
	}

	return webhooks, nil
}

func subscribed(events *models.WebhookEvents, event string) bool {
	switch event {
	case models.WebhookEventRunStarted:
		return events.RunStarted
	case models.WebhookEventRunCompleted:
		return events.RunCompleted
	case models.WebhookEventRunFailed:
		return events.RunFailed
	case models.WebhookEventDocumentValidated:
		return events.DocumentValidated
	case models.WebhookEventDocumentUploaded:
		return events.DocumentUploaded
	}
	return false
}

// CreateWebhookDelivery creates a webhook delivery record
func (r *Repository) CreateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	if delivery.ID == "" {
		delivery.ID = uuid.New().String()
	}

	query := `
		INSERT INTO webhook_deliveries (id, webhook_id, event, payload, status, status_code,
		                                response_body, retry_count, next_retry_at, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		delivery.ID, delivery.WebhookID, delivery.Event, delivery.Payload, delivery.Status,
		delivery.StatusCode, delivery.ResponseBody, delivery.RetryCount, delivery.NextRetryAt,
		delivery.CreatedAt, delivery.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	return nil
}

// UpdateWebhookDelivery updates a webhook delivery record
func (r *Repository) UpdateWebhookDelivery(ctx context.Context, delivery *models.WebhookDelivery) error {
	query := `
		UPDATE webhook_deliveries
		SET status = $2, status_code = $3, response_body = $4, retry_count = $5,
		    next_retry_at = $6, completed_at = $7
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query,
		delivery.ID, delivery.Status, delivery.StatusCode, delivery.ResponseBody,
		delivery.RetryCount, delivery.NextRetryAt, delivery.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update delivery: %w", err)
	}

	return nil
}

// GetPendingWebhookDeliveries retrieves deliveries due for retry
func (r *Repository) GetPendingWebhookDeliveries(ctx context.Context, limit int) ([]*models.WebhookDelivery, error) {
	query := `
		SELECT id, webhook_id, event, payload, status, status_code, response_body,
		       retry_count, next_retry_at, created_at, completed_at
		FROM webhook_deliveries
		WHERE status = 'pending' AND (next_retry_at IS NULL OR next_retry_at <= now())
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []*models.WebhookDelivery
	for rows.Next() {
		var d models.WebhookDelivery
		err := rows.Scan(
			&d.ID, &d.WebhookID, &d.Event, &d.Payload, &d.Status, &d.StatusCode,
			&d.ResponseBody, &d.RetryCount, &d.NextRetryAt, &d.CreatedAt, &d.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, &d)
	}

	return deliveries, nil
}

// Users

// GetUserByAPIKey retrieves a user by API key
func (r *Repository) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	var user models.User

	query := `
		SELECT id, email, password_hash, api_key, quota, used_quota, quota_reset_at,
		       is_active, created_at, updated_at
		FROM users
		WHERE api_key = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, apiKey).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.APIKey, &user.Quota,
		&user.UsedQuota, &user.QuotaResetAt, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// ValidateAPIKey implements middleware.APIKeyValidator
func (r *Repository) ValidateAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	return r.GetUserByAPIKey(ctx, apiKey)
}
