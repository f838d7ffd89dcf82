package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// defaultReportMaxLen caps the report stream; readers are expected to keep up
const defaultReportMaxLen = 10000

// Publisher appends finished comparison reports to a Redis stream
type Publisher struct {
	client    *redis.Client
	streamKey string
	maxLen    int64
}

func NewPublisher(client *redis.Client, streamKey string) *Publisher {
	return &Publisher{
		client:    client,
		streamKey: streamKey,
		maxLen:    defaultReportMaxLen,
	}
}

// PublishReport adds the report as one stream entry
func (p *Publisher) PublishReport(ctx context.Context, report *plagiarism.Report) error {
	values, err := reportValues(report)
	if err != nil {
		return err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		MaxLen: p.maxLen,
		Approx: true,
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}

	log.Debug().
		Str("jobId", report.JobID).
		Str("message_id", id).
		Str("stream", p.streamKey).
		Msg("Report published")
	return nil
}

func reportValues(report *plagiarism.Report) (map[string]interface{}, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return map[string]interface{}{
		"jobId":      report.JobID,
		"documentA":  report.DocumentA,
		"documentB":  report.DocumentB,
		"matches":    strconv.Itoa(report.Summary.Matches),
		"similarity": strconv.FormatFloat(report.Summary.Similarity, 'f', 4, 64),
		"risk":       report.Summary.Risk,
		"payload":    string(payload),
	}, nil
}
