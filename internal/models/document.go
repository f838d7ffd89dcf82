package models

import (
	"time"
)

// Document is a text stored for later comparison in MongoDB
type Document struct {
	DocumentID      string    `bson:"documentId" json:"documentId"`
	Title           string    `bson:"title" json:"title"`
	Source          string    `bson:"source" json:"source"`
	Body            string    `bson:"body" json:"body"`
	Lines           int       `bson:"lines" json:"lines"`
	TokenCount      int       `bson:"tokenCount" json:"tokenCount"`
	ValidTokenCount int       `bson:"validTokenCount" json:"validTokenCount"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
}
