package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/textaegis/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentsCollection = "documents"

// ErrDocumentNotFound is returned when no document has the requested id
var ErrDocumentNotFound = errors.New("document not found")

type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

// InsertDocument stores a document, replacing any earlier version with the same id
func (r *DocumentsRepository) InsertDocument(ctx context.Context, document *models.Document) error {
	if document.CreatedAt.IsZero() {
		document.CreatedAt = time.Now()
	}

	filter := bson.M{"documentId": document.DocumentID}
	update := bson.M{"$set": document}
	_, err := r.mongoRepo.UpdateOne(ctx, documentsCollection, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

func (r *DocumentsRepository) GetDocumentByID(ctx context.Context, documentID string) (*models.Document, error) {
	filter := bson.M{"documentId": documentID}

	var document models.Document
	err := r.mongoRepo.FindOne(ctx, documentsCollection, filter).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}

	return &document, nil
}

func (r *DocumentsRepository) CountDocumentsByIDs(ctx context.Context, documentIDs ...string) (int64, error) {
	filter := bson.M{"documentId": bson.M{"$in": documentIDs}}

	count, err := r.mongoRepo.CountDocuments(ctx, documentsCollection, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}

func (r *DocumentsRepository) DeleteDocument(ctx context.Context, documentID string) error {
	deleted, err := r.mongoRepo.DeleteOne(ctx, documentsCollection, bson.M{"documentId": documentID})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, documentID)
	}
	return nil
}

// ListDocuments returns the most recent documents without their bodies
func (r *DocumentsRepository) ListDocuments(ctx context.Context, limit int64) ([]*models.Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit).
		SetProjection(bson.M{"body": 0})

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var documents []*models.Document
	if err := cursor.All(ctx, &documents); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return documents, nil
}
