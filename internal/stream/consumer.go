package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/textaegis/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultBatchSize     = 10
	defaultBlock         = time.Second
	defaultClaimIdle     = time.Minute
	defaultClaimInterval = 30 * time.Second
	defaultTrimInterval  = time.Hour
)

// SubmissionProcessor ingests a decoded submission
type SubmissionProcessor interface {
	ProcessSubmission(ctx context.Context, submission *models.Submission) (*models.Document, error)
}

// Consumer reads document submissions from a stream as part of a consumer
// group. Entries left pending by a crashed consumer are claimed after they
// have been idle for a minute.
type Consumer struct {
	client    *redis.Client
	streamKey string
	group     string
	name      string
	processor SubmissionProcessor
	retry     *RetryHandler
	retention time.Duration

	batchSize     int64
	block         time.Duration
	claimIdle     time.Duration
	claimInterval time.Duration
	trimInterval  time.Duration
}

func NewConsumer(
	client *redis.Client,
	streamKey string,
	group string,
	name string,
	processor SubmissionProcessor,
	retry *RetryHandler,
	retention time.Duration,
) *Consumer {
	return &Consumer{
		client:        client,
		streamKey:     streamKey,
		group:         group,
		name:          name,
		processor:     processor,
		retry:         retry,
		retention:     retention,
		batchSize:     defaultBatchSize,
		block:         defaultBlock,
		claimIdle:     defaultClaimIdle,
		claimInterval: defaultClaimInterval,
		trimInterval:  defaultTrimInterval,
	}
}

// Start consumes until ctx is cancelled
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		log.Warn().Err(err).Str("group", c.group).Msg("Failed to create consumer group")
	}

	// Pick up what a previous run left behind
	c.claimPending(ctx)

	go c.trimLoop(ctx)

	lastClaim := time.Now()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if time.Since(lastClaim) >= c.claimInterval {
			c.claimPending(ctx)
			lastClaim = time.Now()
		}

		if err := c.readBatch(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Error().Err(err).Str("stream", c.streamKey).Msg("Error consuming messages")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	// MKSTREAM creates the stream if it does not exist yet
	err := c.client.XGroupCreateMkStream(ctx, c.streamKey, c.group, "$").Err()
	if err != nil && strings.Contains(err.Error(), "BUSYGROUP") {
		log.Debug().Str("group", c.group).Msg("Consumer group already exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Info().
		Str("group", c.group).
		Str("stream", c.streamKey).
		Msg("Created consumer group")
	return nil
}

// claimPending takes over entries other consumers left idle in the pending
// entry list and processes them
func (c *Consumer) claimPending(ctx context.Context) {
	start := "0-0"
	for {
		messages, next, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   c.streamKey,
			Group:    c.group,
			Consumer: c.name,
			MinIdle:  c.claimIdle,
			Start:    start,
			Count:    c.batchSize,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Str("stream", c.streamKey).Msg("Failed to claim pending messages")
			}
			return
		}

		if len(messages) > 0 {
			log.Info().Int("claimed", len(messages)).Msg("Claimed idle pending messages")
		}
		for i := range messages {
			if err := c.process(ctx, &messages[i]); err != nil {
				log.Error().Err(err).Str("message_id", messages[i].ID).Msg("Failed to process claimed message")
			}
		}

		// 0-0 means the whole pending list has been scanned
		if next == "0-0" || next == "" || ctx.Err() != nil {
			return
		}
		start = next
	}
}

func (c *Consumer) readBatch(ctx context.Context) error {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.name,
		Streams:  []string{c.streamKey, ">"},
		Count:    c.batchSize,
		Block:    c.block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from stream: %w", err)
	}

	for _, s := range streams {
		if s.Stream != c.streamKey {
			continue
		}
		for i := range s.Messages {
			if err := c.process(ctx, &s.Messages[i]); err != nil {
				log.Error().Err(err).Str("message_id", s.Messages[i].ID).Msg("Failed to process message")
			}
		}
	}
	return nil
}

// process handles one entry and acknowledges it unless it should stay pending
func (c *Consumer) process(ctx context.Context, msg *redis.XMessage) error {
	ack, err := c.handle(ctx, toStreamMessage(msg))
	if !ack {
		return err
	}
	if ackErr := c.acknowledge(ctx, msg.ID); ackErr != nil {
		return errors.Join(err, ackErr)
	}
	return err
}

// handle ingests one message. It reports whether the entry is finished with:
// processed, unparseable and dead-lettered entries are; entries interrupted
// by shutdown remain pending for the next claim.
func (c *Consumer) handle(ctx context.Context, msg *StreamMessage) (bool, error) {
	submission, err := ParseSubmission(msg)
	if err != nil {
		return true, err
	}

	fields := make(map[string]interface{}, len(msg.Fields))
	for k, v := range msg.Fields {
		fields[k] = v
	}

	err = c.retry.RetryWithBackoff(ctx, func() error {
		_, err := c.processor.ProcessSubmission(ctx, submission)
		return err
	}, msg.ID, fields)
	// Left pending for XAUTOCLAIM when the entry was neither processed nor
	// dead-lettered
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrDeadLetterFailed)) {
		return false, err
	}
	if err != nil {
		return true, err
	}

	log.Debug().
		Str("message_id", msg.ID).
		Str("documentId", submission.DocumentID).
		Msg("Submission ingested from stream")
	return true, nil
}

// toStreamMessage keeps the string-valued fields of a raw message
func toStreamMessage(msg *redis.XMessage) *StreamMessage {
	fields := make(map[string]string, len(msg.Values))
	for key, val := range msg.Values {
		if value, ok := val.(string); ok {
			fields[key] = value
		}
	}
	return &StreamMessage{
		ID:     msg.ID,
		Fields: fields,
	}
}

// trimLoop drops entries older than the retention window, once at startup
// and then every trim interval
func (c *Consumer) trimLoop(ctx context.Context) {
	ticker := time.NewTicker(c.trimInterval)
	defer ticker.Stop()

	for {
		if err := c.trim(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("Failed to trim stream")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Consumer) trim(ctx context.Context) error {
	cutoff := time.Now().Add(-c.retention)
	minID := fmt.Sprintf("%d-0", cutoff.UnixMilli())

	trimmed, err := c.client.XTrimMinID(ctx, c.streamKey, minID).Result()
	if err != nil {
		return fmt.Errorf("failed to trim stream: %w", err)
	}
	if trimmed > 0 {
		log.Debug().
			Int64("trimmed", trimmed).
			Time("cutoff", cutoff).
			Msg("Trimmed old messages from stream")
	}
	return nil
}

func (c *Consumer) acknowledge(ctx context.Context, messageID string) error {
	if err := c.client.XAck(ctx, c.streamKey, c.group, messageID).Err(); err != nil {
		return fmt.Errorf("failed to acknowledge message %s: %w", messageID, err)
	}
	return nil
}
