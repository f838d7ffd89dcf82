package preprocess

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RishiKendai/textaegis/internal/models"
	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DocumentStore persists ingested documents
type DocumentStore interface {
	InsertDocument(ctx context.Context, document *models.Document) error
}

type Service struct {
	store DocumentStore
}

func NewService(store DocumentStore) *Service {
	return &Service{
		store: store,
	}
}

// processes a submission by tokenizing its body and storing the document
func (s *Service) ProcessSubmission(ctx context.Context, submission *models.Submission) (*models.Document, error) {
	if strings.TrimSpace(submission.Body) == "" {
		return nil, fmt.Errorf("submission %q has an empty body", submission.DocumentID)
	}

	documentID := strings.TrimSpace(submission.DocumentID)
	if documentID == "" {
		documentID = uuid.New().String()
	}

	// Counts use the unfiltered normalizer; exclusion is chosen per comparison
	parsed := plagiarism.ParseText(submission.Body, plagiarism.NewNormalizer(0))

	document := &models.Document{
		DocumentID:      documentID,
		Title:           submission.Title,
		Source:          submission.Source,
		Body:            submission.Body,
		Lines:           lineCount(parsed),
		TokenCount:      len(parsed.Tokens),
		ValidTokenCount: len(parsed.Valid),
		CreatedAt:       time.Now(),
	}

	if err := s.store.InsertDocument(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	log.Debug().
		Str("documentId", documentID).
		Int("tokens", document.TokenCount).
		Int("validTokens", document.ValidTokenCount).
		Msg("Document ingested")

	return document, nil
}

// lineCount returns the last line that holds a token
func lineCount(doc *plagiarism.Document) int {
	if doc.Len() == 0 {
		return 0
	}
	return doc.Tokens[doc.Len()-1].Line
}
