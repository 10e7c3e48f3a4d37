package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/subtitleops/captionlint/internal/metrics"
	"github.com/subtitleops/captionlint/internal/validator"
	"github.com/subtitleops/captionlint/pkg/models"
)

// validateInline runs a whole batch synchronously and returns the reports in
// the response body. Nothing is persisted; this is the quick-check path.
func (api *API) validateInline(c *gin.Context) {
	reference, translated, ok := api.readBatchUpload(c)
	if !ok {
		return
	}

	start := time.Now()
	batch, err := api.validator.ValidateBatch(reference.content, translated)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	metrics.ValidationDuration.Observe(time.Since(start).Seconds())

	results := make([]gin.H, 0, len(batch.Results))
	for i := range batch.Results {
		r := &batch.Results[i]

		if r.ErrorMsg != "" {
			metrics.ValidationsTotal.WithLabelValues("error").Inc()
		} else if r.Passed {
			metrics.ValidationsTotal.WithLabelValues("passed").Inc()
		} else {
			metrics.ValidationsTotal.WithLabelValues("failed").Inc()
		}

		entry := gin.H{
			"filename":    r.Filename,
			"language":    r.Language,
			"language_ok": r.LanguageOK,
			"passed":      r.Passed,
			"details":     r.Details,
		}
		if r.ErrorMsg != "" {
			entry["error"] = r.ErrorMsg
		}
		if r.Corrected != "" {
			entry["corrected"] = r.Corrected
		}
		results = append(results, entry)
	}

	c.JSON(http.StatusOK, gin.H{
		"reference_language": batch.ReferenceLanguage,
		"reference_cues":     batch.ReferenceCues,
		"summary":            batch.Summary,
		"results":            results,
	})
}

// createRun uploads a batch and queues one validation job per translated file
func (api *API) createRun(c *gin.Context) {
	reference, translated, ok := api.readBatchUpload(c)
	if !ok {
		return
	}

	// Reject a reference that cannot be extracted before anything is stored
	refDoc, err := api.validator.ParseReference(reference.content)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	priority := parsePriority(c.PostForm("priority"))

	run := &models.ValidationRun{
		ID:          uuid.New().String(),
		Status:      models.RunStatusPending,
		ReferenceID: uuid.New().String(),
		FileCount:   len(translated),
	}

	refKey := fmt.Sprintf("runs/%s/reference/%s", run.ID, reference.filename)
	if err := api.storage.UploadBytes(c.Request.Context(), refKey, reference.content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload reference: %v", err)})
		return
	}

	if err := api.repo.CreateRun(c.Request.Context(), run); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create run: %v", err)})
		return
	}
	metrics.RunsCreatedTotal.Inc()

	refRecord := &models.Document{
		ID:          run.ReferenceID,
		RunID:       run.ID,
		Filename:    reference.filename,
		Role:        models.DocumentRoleReference,
		Language:    refDoc.Language,
		StorageKey:  refKey,
		Size:        int64(len(reference.content)),
		CueCount:    len(refDoc.Cues),
		ContentHash: contentHash(reference.content),
	}

	if err := api.repo.CreateDocument(c.Request.Context(), refRecord); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create document: %v", err)})
		return
	}
	metrics.DocumentUploadsTotal.WithLabelValues(models.DocumentRoleReference).Inc()
	metrics.DocumentSizeBytes.Observe(float64(len(reference.content)))

	for _, file := range translated {
		key := fmt.Sprintf("runs/%s/translated/%s", run.ID, file.Filename)
		if err := api.storage.UploadBytes(c.Request.Context(), key, file.Content); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to upload %s: %v", file.Filename, err)})
			return
		}

		doc := &models.Document{
			ID:          uuid.New().String(),
			RunID:       run.ID,
			Filename:    file.Filename,
			Role:        models.DocumentRoleTranslated,
			StorageKey:  key,
			Size:        int64(len(file.Content)),
			ContentHash: contentHash(file.Content),
		}

		if err := api.repo.CreateDocument(c.Request.Context(), doc); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create document: %v", err)})
			return
		}
		metrics.DocumentUploadsTotal.WithLabelValues(models.DocumentRoleTranslated).Inc()
		metrics.DocumentSizeBytes.Observe(float64(len(file.Content)))

		if err := api.webhooks.NotifyDocumentUploaded(c.Request.Context(), doc); err != nil {
			api.logger.WithError(err).Warnf("Failed to notify document uploaded for %s", doc.Filename)
		}

		job := &models.ValidationJob{
			RunID:       run.ID,
			DocumentID:  doc.ID,
			ReferenceID: refRecord.ID,
			Priority:    priority,
		}

		if err := api.repo.CreateJob(c.Request.Context(), job); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create job: %v", err)})
			return
		}

		if err := api.scheduler.ScheduleJob(job); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to schedule job: %v", err)})
			return
		}
	}

	run.Status = models.RunStatusQueued
	if err := api.repo.UpdateRun(c.Request.Context(), run); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to update run: %v", err)})
		return
	}

	if err := api.cache.SetRun(c.Request.Context(), run, time.Hour); err != nil {
		api.logger.WithError(err).Warnf("Failed to cache run %s", run.ID)
	}

	c.JSON(http.StatusCreated, run)
}

// getRun returns run status; the cache carries recently touched runs so
// status polling stays off the database.
func (api *API) getRun(c *gin.Context) {
	runID := c.Param("id")

	run, err := api.cache.GetRun(c.Request.Context(), runID)
	if err != nil || run == nil {
		run, err = api.repo.GetRun(c.Request.Context(), runID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
			return
		}

		if err := api.cache.SetRun(c.Request.Context(), run, time.Hour); err != nil {
			api.logger.WithError(err).Warnf("Failed to cache run %s", runID)
		}
	}

	progress, _ := api.cache.GetRunProgress(c.Request.Context(), runID)

	c.JSON(http.StatusOK, gin.H{
		"run":      run,
		"progress": progress,
	})
}

// listRuns returns validation runs with pagination
func (api *API) listRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	runs, err := api.repo.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":   runs,
		"limit":  limit,
		"offset": offset,
	})
}

// getRunReports returns every report produced for a run
func (api *API) getRunReports(c *gin.Context) {
	runID := c.Param("id")

	if _, err := api.repo.GetRun(c.Request.Context(), runID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	reports, err := api.repo.GetReportsByRunID(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	summary := make([]models.RunSummary, 0, len(reports))
	for _, report := range reports {
		summary = append(summary, models.RunSummary{
			Filename: report.Filename,
			Language: report.Language,
			Passed:   report.Passed,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"summary": summary,
	})
}

// getRunStats returns aggregate statistics for a run
func (api *API) getRunStats(c *gin.Context) {
	runID := c.Param("id")

	if _, err := api.repo.GetRun(c.Request.Context(), runID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	stats, err := api.analytics.AggregateRunStats(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// getReport returns a single report
func (api *API) getReport(c *gin.Context) {
	reportID := c.Param("id")

	report, err := api.repo.GetReport(c.Request.Context(), reportID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// getCorrectedDocument streams the re-translation scaffold for a report
func (api *API) getCorrectedDocument(c *gin.Context) {
	reportID := c.Param("id")

	report, err := api.repo.GetReport(c.Request.Context(), reportID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}

	if report.CorrectedKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report has no corrected document"})
		return
	}

	content, err := api.storage.DownloadBytes(c.Request.Context(), report.CorrectedKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to download corrected document: %v", err)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(http.StatusOK, "application/ttml+xml", content)
}

// getLanguageStats returns per-language pass rates across all reports
func (api *API) getLanguageStats(c *gin.Context) {
	stats, err := api.analytics.GetLanguageStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"languages": stats})
}

type uploadedFile struct {
	filename string
	content  []byte
}

// readBatchUpload pulls the reference file and the translated files out of a
// multipart request, enforcing size and count limits. On failure it writes
// the error response and returns ok=false.
func (api *API) readBatchUpload(c *gin.Context) (*uploadedFile, []validator.NamedContent, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Multipart form required"})
		return nil, nil, false
	}

	refHeaders := form.File["reference"]
	if len(refHeaders) != 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Exactly one reference file required"})
		return nil, nil, false
	}

	translatedHeaders := form.File["translated"]
	if len(translatedHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one translated file required"})
		return nil, nil, false
	}
	if len(translatedHeaders) > api.cfg.Validator.MaxBatchFiles {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Too many files: maximum %d per batch", api.cfg.Validator.MaxBatchFiles),
		})
		return nil, nil, false
	}

	refContent, err := api.readUpload(refHeaders[0])
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("reference: %v", err)})
		return nil, nil, false
	}

	reference := &uploadedFile{filename: refHeaders[0].Filename, content: refContent}

	translated := make([]validator.NamedContent, 0, len(translatedHeaders))
	for _, header := range translatedHeaders {
		content, err := api.readUpload(header)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: %v", header.Filename, err)})
			return nil, nil, false
		}
		translated = append(translated, validator.NamedContent{
			Filename: header.Filename,
			Content:  content,
		})
	}

	return reference, translated, true
}

// readUpload reads one multipart file into memory, capped at the configured
// maximum document size.
func (api *API) readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > api.cfg.Validator.MaxDocumentSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", api.cfg.Validator.MaxDocumentSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, api.cfg.Validator.MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(content)) > api.cfg.Validator.MaxDocumentSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", api.cfg.Validator.MaxDocumentSize)
	}

	return content, nil
}

func parsePriority(value string) int {
	switch value {
	case "high":
		return models.JobPriorityHigh
	case "low":
		return models.JobPriorityLow
	default:
		return models.JobPriorityNormal
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
