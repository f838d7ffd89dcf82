package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/textaegis/internal/infra/redis"
	"github.com/RishiKendai/textaegis/internal/models"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statusKeyPrefix = "compare_job_status:"
	statusTTL       = 12 * time.Hour
)

// ErrJobNotFound is returned when no status is recorded for a job
var ErrJobNotFound = errors.New("job not found")

var validSteps = map[models.Step]bool{
	models.StepQueued:    true,
	models.StepLoading:   true,
	models.StepMatching:  true,
	models.StepCompleted: true,
	models.StepFailed:    true,
}

// StatusTracker keeps job steps in Redis with a TTL
type StatusTracker struct {
	redisClient *redis.Client
}

// NewStatusTracker creates a tracker on top of the shared Redis client
func NewStatusTracker(redisClient *redis.Client) *StatusTracker {
	return &StatusTracker{redisClient: redisClient}
}

func statusKey(jobID string) string {
	return statusKeyPrefix + jobID
}

// UpdateStatus stores the current step of a job
func (t *StatusTracker) UpdateStatus(ctx context.Context, jobID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(jobID)

	err := t.redisClient.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("jobId", jobID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("jobId", jobID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns the last recorded step of a job
func (t *StatusTracker) GetStatus(ctx context.Context, jobID string) (models.Step, error) {
	value, err := t.redisClient.Get(ctx, statusKey(jobID)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", ErrJobNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(value), nil
}
