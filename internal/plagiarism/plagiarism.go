package plagiarism

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/textaegis/internal/models"
	"github.com/rs/zerolog/log"
)

// DocumentLoader fetches stored documents by id
type DocumentLoader interface {
	GetDocumentByID(ctx context.Context, documentID string) (*models.Document, error)
}

// StatusUpdater records the progress of a comparison job
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, jobID string, step models.Step) error
}

// ReportPublisher delivers a finished report to its consumers
type ReportPublisher interface {
	PublishReport(ctx context.Context, report *Report) error
}

// Report is the outcome of comparing two documents
type Report struct {
	JobID       string        `json:"jobId,omitempty"`
	DocumentA   string        `json:"documentA,omitempty"`
	DocumentB   string        `json:"documentB,omitempty"`
	Options     Options       `json:"options"`
	Excerpts    []Excerpt     `json:"excerpts"`
	Summary     Summary       `json:"summary"`
	Cache       CacheStats    `json:"cache"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completedAt"`
}

// CompareTexts compares two in-memory texts with a fresh matcher
func CompareTexts(text1, text2 string, opts Options) *Report {
	matcher := NewMatcher(opts)
	doc1 := ParseText(text1, matcher.Normalizer())
	doc2 := ParseText(text2, matcher.Normalizer())
	return CompareParsed(matcher, doc1, doc2)
}

// CompareParsed runs matcher over two parsed documents and builds a report
func CompareParsed(matcher *Matcher, doc1, doc2 *Document) *Report {
	started := time.Now()
	formatter := NewFormatter(matcher.Options())

	matches := matcher.Match(doc1, doc2)
	excerpts := make([]Excerpt, 0, len(matches))
	for _, match := range matches {
		excerpts = append(excerpts, formatter.Excerpt(match, doc1, doc2))
	}

	return &Report{
		Options:     matcher.Options(),
		Excerpts:    excerpts,
		Summary:     Summarize(matches, doc1, doc2),
		Cache:       matcher.CacheStats(),
		Duration:    time.Since(started),
		CompletedAt: time.Now(),
	}
}

// CompareJob compares two stored documents on the worker pool
type CompareJob struct {
	JobID     string
	DocumentA string
	DocumentB string
	Options   Options
	Loader    DocumentLoader
	Status    StatusUpdater
	Publisher ReportPublisher
	// OnDone, when set, observes every finished job
	OnDone   func(report *Report, err error)
	DoneChan chan<- struct{}
}

// Execute executes the comparison job
func (j *CompareJob) Execute(ctx context.Context) error {
	defer func() {
		// Signal completion
		if j.DoneChan == nil {
			return
		}
		select {
		case j.DoneChan <- struct{}{}:
		default:
		}
	}()

	report, err := j.run(ctx)
	if err != nil {
		log.Error().Err(err).Str("jobId", j.JobID).Msg("Comparison failed")
		j.updateStatus(ctx, models.StepFailed)
	}
	if j.OnDone != nil {
		j.OnDone(report, err)
	}
	return err
}

func (j *CompareJob) run(ctx context.Context) (*Report, error) {
	j.updateStatus(ctx, models.StepLoading)

	stored1, err := j.Loader.GetDocumentByID(ctx, j.DocumentA)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", j.DocumentA, err)
	}
	stored2, err := j.Loader.GetDocumentByID(ctx, j.DocumentB)
	if err != nil {
		return nil, fmt.Errorf("failed to load document %s: %w", j.DocumentB, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	j.updateStatus(ctx, models.StepMatching)

	matcher := NewMatcher(j.Options)
	doc1 := ParseText(stored1.Body, matcher.Normalizer())
	doc2 := ParseText(stored2.Body, matcher.Normalizer())

	report := CompareParsed(matcher, doc1, doc2)
	report.JobID = j.JobID
	report.DocumentA = j.DocumentA
	report.DocumentB = j.DocumentB

	if j.Publisher != nil {
		if err := j.Publisher.PublishReport(ctx, report); err != nil {
			return report, fmt.Errorf("failed to publish report: %w", err)
		}
	}

	j.updateStatus(ctx, models.StepCompleted)

	log.Info().
		Str("jobId", j.JobID).
		Str("documentA", j.DocumentA).
		Str("documentB", j.DocumentB).
		Int("matches", report.Summary.Matches).
		Str("risk", report.Summary.Risk).
		Dur("duration", report.Duration).
		Msg("Comparison completed successfully")

	return report, nil
}

func (j *CompareJob) updateStatus(ctx context.Context, step models.Step) {
	if j.Status == nil {
		return
	}
	if err := j.Status.UpdateStatus(ctx, j.JobID, step); err != nil {
		log.Warn().Err(err).Str("jobId", j.JobID).Str("step", string(step)).Msg("Failed to update job status")
	}
}
