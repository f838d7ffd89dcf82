package models

// Submission represents a document submission from Redis stream
type Submission struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	Source     string `json:"source"`
	Body       string `json:"body"`
}
