package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/RishiKendai/textaegis/internal/models"
)

// ErrInvalidMessage marks stream messages that can never be processed
var ErrInvalidMessage = errors.New("invalid stream message")

// StreamMessage is a stream entry with its string fields
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission decodes a submission either from a JSON "payload" field
// or from flat documentId/title/source/body fields
func ParseSubmission(msg *StreamMessage) (*models.Submission, error) {
	var submission models.Submission

	if payload, ok := msg.Fields["payload"]; ok {
		if err := json.Unmarshal([]byte(payload), &submission); err != nil {
			return nil, fmt.Errorf("%w: message %s: failed to decode payload: %v", ErrInvalidMessage, msg.ID, err)
		}
	} else {
		submission = models.Submission{
			DocumentID: msg.Fields["documentId"],
			Title:      msg.Fields["title"],
			Source:     msg.Fields["source"],
			Body:       msg.Fields["body"],
		}
	}

	if strings.TrimSpace(submission.Body) == "" {
		return nil, fmt.Errorf("%w: message %s: body is required", ErrInvalidMessage, msg.ID)
	}

	return &submission, nil
}
