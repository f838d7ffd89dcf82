package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/RishiKendai/textaegis/internal/config"
	"github.com/RishiKendai/textaegis/internal/models"
	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/RishiKendai/textaegis/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// DocumentStore reads and removes stored documents
type DocumentStore interface {
	GetDocumentByID(ctx context.Context, documentID string) (*models.Document, error)
	CountDocumentsByIDs(ctx context.Context, documentIDs ...string) (int64, error)
	ListDocuments(ctx context.Context, limit int64) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, documentID string) error
}

// Ingestor turns submissions into stored documents
type Ingestor interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission) (*models.Document, error)
}

// StatusStore records and reads job steps
type StatusStore interface {
	UpdateStatus(ctx context.Context, jobID string, step models.Step) error
	GetStatus(ctx context.Context, jobID string) (models.Step, error)
}

// JobSubmitter queues comparison jobs
type JobSubmitter interface {
	Submit(job plagiarism.Job) error
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg            *config.Config
	documents      DocumentStore
	ingestor       Ingestor
	status         StatusStore
	workerPool     JobSubmitter
	publisher      plagiarism.ReportPublisher
	onDone         func(report *plagiarism.Report, err error)
	compare        func(text1, text2 string, opts plagiarism.Options) *plagiarism.Report
	computeSem     chan struct{} // Semaphore for bounded concurrency
	computeTimeout time.Duration
}

// NewHandler creates a new handler
func NewHandler(
	cfg *config.Config,
	documents DocumentStore,
	ingestor Ingestor,
	status StatusStore,
	workerPool JobSubmitter,
	publisher plagiarism.ReportPublisher,
	onDone func(report *plagiarism.Report, err error),
) *Handler {
	// Create semaphore for bounded concurrency
	sem := make(chan struct{}, cfg.MaxConcurrentCompute)

	return &Handler{
		cfg:            cfg,
		documents:      documents,
		ingestor:       ingestor,
		status:         status,
		workerPool:     workerPool,
		publisher:      publisher,
		onDone:         onDone,
		compare:        plagiarism.CompareTexts,
		computeSem:     sem,
		computeTimeout: cfg.ComputationTimeout,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// CompareTexts compares two inline texts and responds with the report
func (h *Handler) CompareTexts(c *gin.Context) {
	var req models.CompareTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	opts, err := h.requestOptions(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_OPTIONS",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.computeTimeout)
	defer cancel()

	// Acquire semaphore (bounded concurrency)
	select {
	case h.computeSem <- struct{}{}:
		// Acquired semaphore
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	// The matcher cannot be interrupted, so the slot is held until it returns
	done := make(chan compareResult, 1)
	go func() {
		result := h.compareInline(req.Text1, req.Text2, opts)
		<-h.computeSem // Release semaphore
		done <- result
	}()

	select {
	case result := <-done:
		h.observe(result.report, result.err)
		if result.err != nil {
			log.Error().Err(result.err).Msg("Inline comparison failed")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error: "Comparison failed",
				Code:  "INTERNAL_ERROR",
			})
			return
		}
		c.JSON(http.StatusOK, result.report)
	case <-ctx.Done():
		h.observe(nil, ctx.Err())
		log.Warn().Err(ctx.Err()).Msg("Inline comparison did not finish in time")
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{
			Error: "Comparison timed out",
			Code:  "COMPUTATION_TIMEOUT",
		})
	}
}

type compareResult struct {
	report *plagiarism.Report
	err    error
}

// compareInline runs off the request goroutine, where gin's recovery does
// not reach, so a panic is turned into an error
func (h *Handler) compareInline(text1, text2 string, opts plagiarism.Options) (result compareResult) {
	defer func() {
		if r := recover(); r != nil {
			result = compareResult{err: fmt.Errorf("comparison panicked: %v", r)}
		}
	}()
	return compareResult{report: h.compare(text1, text2, opts)}
}

// CreateDocument ingests a document for later comparison
func (h *Handler) CreateDocument(c *gin.Context) {
	var req models.Submission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if strings.TrimSpace(req.Body) == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "body is required",
			Code:  "INVALID_DOCUMENT",
		})
		return
	}

	document, err := h.ingestor.ProcessSubmission(c.Request.Context(), &req)
	if err != nil {
		log.Error().Err(err).Str("documentId", req.DocumentID).Msg("Failed to ingest document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to store document",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusCreated, models.CreateDocumentResponse{
		DocumentID:      document.DocumentID,
		TokenCount:      document.TokenCount,
		ValidTokenCount: document.ValidTokenCount,
	})
}

// ListDocuments returns stored documents without their bodies
func (h *Handler) ListDocuments(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a positive integer",
				Code:  "INVALID_REQUEST",
			})
			return
		}
		limit = min(parsed, maxListLimit)
	}

	documents, err := h.documents.ListDocuments(c.Request.Context(), int64(limit))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to list documents",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if documents == nil {
		documents = []*models.Document{}
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// DeleteDocument removes a stored document
func (h *Handler) DeleteDocument(c *gin.Context) {
	documentID := c.Param("documentId")

	err := h.documents.DeleteDocument(c.Request.Context(), documentID)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Document not found",
			Code:  "DOCUMENT_NOT_FOUND",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("documentId", documentID).Msg("Failed to delete document")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to delete document",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// CompareDocuments queues a comparison of two stored documents
func (h *Handler) CompareDocuments(c *gin.Context) {
	var req models.CompareDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	opts, err := h.requestOptions(req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_OPTIONS",
		})
		return
	}

	// Check both documents exist before queueing
	ctx := c.Request.Context()
	want := int64(1)
	if req.DocumentA != req.DocumentB {
		want = 2
	}
	found, err := h.documents.CountDocumentsByIDs(ctx, req.DocumentA, req.DocumentB)
	if err != nil {
		log.Error().Err(err).Msg("Failed to check documents")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to check documents",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if found < want {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "One or both documents not found",
			Code:  "DOCUMENT_NOT_FOUND",
		})
		return
	}

	jobID := uuid.New().String()

	// Update status: Queued
	if err := h.status.UpdateStatus(ctx, jobID, models.StepQueued); err != nil {
		log.Warn().Err(err).Str("jobId", jobID).Msg("Failed to update queued status")
	}

	job := &plagiarism.CompareJob{
		JobID:     jobID,
		DocumentA: req.DocumentA,
		DocumentB: req.DocumentB,
		Options:   opts,
		Loader:    h.documents,
		Status:    h.status,
		Publisher: h.publisher,
		OnDone:    h.onDone,
	}
	if err := h.workerPool.Submit(job); err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to submit job")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Comparison queue unavailable",
			Code:  "QUEUE_UNAVAILABLE",
		})
		return
	}

	// Return 202 Accepted immediately
	c.JSON(http.StatusAccepted, models.CompareJobResponse{
		JobID: jobID,
		Step:  models.StepQueued,
	})
}

// JobStatus reports the current step of a comparison job
func (h *Handler) JobStatus(c *gin.Context) {
	jobID := c.Param("jobId")

	step, err := h.status.GetStatus(c.Request.Context(), jobID)
	if errors.Is(err, plagiarism.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Job not found",
			Code:  "JOB_NOT_FOUND",
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("jobId", jobID).Msg("Failed to read job status")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to read job status",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, models.CompareJobResponse{
		JobID: jobID,
		Step:  step,
	})
}

// requestOptions applies per-request overrides to the configured options.
// Reports sent over the API are never highlighted.
func (h *Handler) requestOptions(overrides *models.MatchOptions) (plagiarism.Options, error) {
	opts := h.cfg.Matching
	opts.Highlight = false

	if overrides != nil {
		if overrides.WindowSize != nil {
			opts.WindowSize = *overrides.WindowSize
		}
		if overrides.Threshold != nil {
			opts.Threshold = *overrides.Threshold
		}
		if overrides.ExcludeCount != nil {
			opts.ExcludeCount = *overrides.ExcludeCount
		}
		if overrides.Strategy != nil {
			opts.Strategy = plagiarism.Strategy(*overrides.Strategy)
		}
	}

	if err := opts.Validate(); err != nil {
		return plagiarism.Options{}, err
	}
	return opts, nil
}

func (h *Handler) observe(report *plagiarism.Report, err error) {
	if h.onDone != nil {
		h.onDone(report, err)
	}
}
