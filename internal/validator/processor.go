package validator

import (
	"context"
	"fmt"
	"time"

	"github.com/subtitleops/captionlint/internal/cache"
	"github.com/subtitleops/captionlint/internal/config"
	"github.com/subtitleops/captionlint/internal/database"
	"github.com/subtitleops/captionlint/internal/logging"
	"github.com/subtitleops/captionlint/internal/metrics"
	"github.com/subtitleops/captionlint/internal/storage"
	"github.com/subtitleops/captionlint/internal/tracing"
	"github.com/subtitleops/captionlint/internal/webhook"
	"github.com/subtitleops/captionlint/pkg/models"
)

// Processor executes queued validation jobs: it pulls document bytes from
// storage, runs the validation engine, and persists the report.
type Processor struct {
	cfg      config.ValidatorConfig
	svc      *Service
	repo     *database.Repository
	store    *storage.Storage
	cache    *cache.Cache
	webhooks *webhook.Service
	log      *logging.Logger
}

// NewProcessor creates a new job processor
func NewProcessor(cfg config.ValidatorConfig, repo *database.Repository, store *storage.Storage, c *cache.Cache, webhooks *webhook.Service, log *logging.Logger) *Processor {
	return &Processor{
		cfg:      cfg,
		svc:      NewService(),
		repo:     repo,
		store:    store,
		cache:    c,
		webhooks: webhooks,
		log:      log,
	}
}

// ProcessJob validates one translated document against its run's reference.
// A returned error requeues the job; permanent failures are recorded on the
// run or report instead so the message is not redelivered forever.
func (p *Processor) ProcessJob(ctx context.Context, job *models.ValidationJob) error {
	span, ctx := tracing.StartSpan(ctx, "validator.ProcessJob")
	defer tracing.FinishSpan(span)
	tracing.SetTag(span, "run_id", job.RunID)
	tracing.SetTag(span, "document_id", job.DocumentID)

	log := p.log.WithRunID(job.RunID).WithDocumentID(job.DocumentID)
	start := time.Now()

	// Redelivered jobs must not race a worker already holding the document
	locked, err := p.cache.AcquireLock(ctx, "document:"+job.DocumentID, 5*time.Minute)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		log.Warnf("Document %s already being validated, skipping", job.DocumentID)
		return nil
	}
	defer p.cache.ReleaseLock(ctx, "document:"+job.DocumentID)

	run, err := p.repo.GetRun(ctx, job.RunID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	if err := p.markRunProcessing(ctx, run); err != nil {
		return err
	}

	doc, err := p.repo.GetDocument(ctx, job.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	refDoc, err := p.repo.GetDocument(ctx, job.ReferenceID)
	if err != nil {
		return fmt.Errorf("failed to get reference document: %w", err)
	}

	// Identical byte pairs were already validated once; reuse that outcome
	if cached, err := p.cache.GetReport(ctx, refDoc.ContentHash, doc.ContentHash); err == nil && cached != nil {
		metrics.ReportCacheHits.Inc()
		log.Infof("Report cache hit for document %s", doc.Filename)
		return p.storeReport(ctx, run, doc, &models.Report{
			RunID:        run.ID,
			DocumentID:   doc.ID,
			Filename:     doc.Filename,
			Language:     cached.Language,
			LanguageOK:   cached.LanguageOK,
			Passed:       cached.Passed,
			ErrorMsg:     cached.ErrorMsg,
			Details:      cached.Details,
			CorrectedKey: cached.CorrectedKey,
		}, log)
	}
	metrics.ReportCacheMisses.Inc()

	refContent, err := p.store.DownloadBytes(ctx, refDoc.StorageKey)
	if err != nil {
		tracing.LogError(span, err)
		return fmt.Errorf("failed to download reference: %w", err)
	}

	content, err := p.store.DownloadBytes(ctx, doc.StorageKey)
	if err != nil {
		tracing.LogError(span, err)
		return fmt.Errorf("failed to download document: %w", err)
	}

	reference, err := p.svc.ParseReference(refContent)
	if err != nil {
		// A broken reference fails every job in the run; fail the run once
		// instead of bouncing messages.
		log.WithError(err).Error("Reference document cannot be extracted")
		p.failRun(ctx, run, err)
		return nil
	}

	result := p.svc.ValidateDocument(reference, doc.Filename, content)

	report := &models.Report{
		RunID:      run.ID,
		DocumentID: doc.ID,
		Filename:   result.Filename,
		Language:   result.Language,
		LanguageOK: result.LanguageOK,
		Passed:     result.Passed,
		ErrorMsg:   result.ErrorMsg,
		Details:    result.Details,
	}

	if result.Corrected != "" {
		correctedKey := fmt.Sprintf("corrected/%s/%s", run.ID, doc.Filename)
		if err := p.store.UploadBytes(ctx, correctedKey, []byte(result.Corrected)); err != nil {
			tracing.LogError(span, err)
			return fmt.Errorf("failed to upload corrected document: %w", err)
		}
		report.CorrectedKey = correctedKey
		p.log.LogStorageOperation("upload", correctedKey, int64(len(result.Corrected)), nil)
	}

	p.recordMetrics(&result, time.Since(start))
	log.LogValidationResult(run.ID, result.Filename, result.Language, result.Passed, len(result.Details.TimecodeIssues))

	if err := p.storeReport(ctx, run, doc, report, log); err != nil {
		return err
	}

	if err := p.cache.SetReport(ctx, refDoc.ContentHash, doc.ContentHash, report, p.cfg.ReportCacheTTL); err != nil {
		log.WithError(err).Warnf("Failed to cache report for %s", doc.Filename)
	}

	return nil
}

// markRunProcessing transitions a run out of its queued state on first contact
func (p *Processor) markRunProcessing(ctx context.Context, run *models.ValidationRun) error {
	if run.Status != models.RunStatusPending && run.Status != models.RunStatusQueued {
		return nil
	}

	now := time.Now()
	run.Status = models.RunStatusProcessing
	run.StartedAt = &now

	if err := p.repo.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	if err := p.webhooks.NotifyRunStarted(ctx, run); err != nil {
		p.log.WithError(err).Warnf("Failed to notify run started for %s", run.ID)
	}

	return nil
}

// storeReport persists the report, advances run progress, and fires
// completion notifications when the last document lands.
func (p *Processor) storeReport(ctx context.Context, run *models.ValidationRun, doc *models.Document, report *models.Report, log *logging.Logger) error {
	if err := p.repo.CreateReport(ctx, report); err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	if err := p.repo.MarkDocumentCompleted(ctx, run.ID); err != nil {
		return fmt.Errorf("failed to mark document completed: %w", err)
	}

	if err := p.webhooks.NotifyDocumentValidated(ctx, report); err != nil {
		log.WithError(err).Warnf("Failed to notify document validated for %s", doc.Filename)
	}

	updated, err := p.repo.GetRun(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to reload run: %w", err)
	}

	if err := p.cache.SetRunProgress(ctx, run.ID, updated.CompletedCount, updated.FileCount, time.Hour); err != nil {
		log.WithError(err).Warnf("Failed to cache run progress for %s", run.ID)
	}
	p.cache.DeleteRun(ctx, run.ID)

	if updated.Status == models.RunStatusCompleted {
		log.Infof("Run %s completed (%d/%d documents)", run.ID, updated.CompletedCount, updated.FileCount)
		if err := p.webhooks.NotifyRunCompleted(ctx, updated); err != nil {
			log.WithError(err).Warnf("Failed to notify run completed for %s", run.ID)
		}
	}

	return nil
}

// failRun marks the whole run failed
func (p *Processor) failRun(ctx context.Context, run *models.ValidationRun, cause error) {
	now := time.Now()
	run.Status = models.RunStatusFailed
	run.ErrorMsg = cause.Error()
	run.CompletedAt = &now

	if err := p.repo.UpdateRun(ctx, run); err != nil {
		p.log.WithError(err).Errorf("Failed to mark run %s failed", run.ID)
		return
	}
	p.cache.DeleteRun(ctx, run.ID)

	if err := p.webhooks.NotifyRunFailed(ctx, run); err != nil {
		p.log.WithError(err).Warnf("Failed to notify run failed for %s", run.ID)
	}
}

func (p *Processor) recordMetrics(result *FileResult, elapsed time.Duration) {
	metrics.ValidationDuration.Observe(elapsed.Seconds())

	switch {
	case result.ErrorMsg != "":
		metrics.ValidationsTotal.WithLabelValues("error").Inc()
		return
	case result.Passed:
		metrics.ValidationsTotal.WithLabelValues("passed").Inc()
	default:
		metrics.ValidationsTotal.WithLabelValues("failed").Inc()
	}

	metrics.TimecodeIssuesTotal.Add(float64(len(result.Details.TimecodeIssues)))
	if result.Details.Overlap {
		metrics.OverlapsTotal.Inc()
	}
	if !result.Details.LineCountMatch {
		metrics.LineCountMismatchesTotal.Inc()
	}
	metrics.CueCount.WithLabelValues(models.DocumentRoleReference).Observe(float64(result.Details.ReferenceCues))
	metrics.CueCount.WithLabelValues(models.DocumentRoleTranslated).Observe(float64(result.Details.TranslatedCues))
}
