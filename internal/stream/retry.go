package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 500 * time.Millisecond
	defaultMaxDelay   = 10 * time.Second
)

// ErrDeadLetterFailed is returned when a message exhausted its retries and
// could not be written to the dead-letter stream either
var ErrDeadLetterFailed = errors.New("dead letter failed")

// RetryHandler retries message processing with exponential backoff and
// moves messages that keep failing onto a dead-letter stream
type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
	maxDelay      time.Duration
	deadLetter    func(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	h := &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    defaultMaxRetries,
		baseDelay:     defaultBaseDelay,
		maxDelay:      defaultMaxDelay,
	}
	h.deadLetter = h.sendToDeadLetter
	return h
}

// RetryWithBackoff runs fn until it succeeds or retries are exhausted. The
// final error is returned after the message has been dead-lettered; when the
// dead-letter write fails too, the error wraps ErrDeadLetterFailed.
func (h *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var lastErr error
	delay := h.baseDelay

	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Err(lastErr).
				Str("message_id", messageID).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying message processing")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, h.maxDelay)
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}

	if err := h.deadLetter(ctx, messageID, fields, lastErr); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to send message to dead letter queue")
		return fmt.Errorf("message %s: %w: %w (processing: %w)", messageID, ErrDeadLetterFailed, err, lastErr)
	}

	return fmt.Errorf("message %s failed after %d retries: %w", messageID, h.maxRetries, lastErr)
}

func (h *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) error {
	values := make(map[string]interface{}, len(fields)+3)
	for k, v := range fields {
		values[k] = v
	}
	values["original_id"] = messageID
	values["error"] = cause.Error()
	values["failed_at"] = time.Now().Format(time.RFC3339)

	if err := h.client.XAdd(ctx, &redis.XAddArgs{
		Stream: h.deadLetterKey,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("failed to add to dead letter stream: %w", err)
	}

	log.Warn().
		Str("message_id", messageID).
		Str("dead_letter_key", h.deadLetterKey).
		Msg("Message moved to dead letter queue")
	return nil
}
