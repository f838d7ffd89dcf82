package models

type Step string

const (
	StepQueued    Step = "queued"
	StepLoading   Step = "loading"
	StepMatching  Step = "matching"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

// MatchOptions overrides matching options per request. Nil fields keep
// the server defaults.
type MatchOptions struct {
	WindowSize   *int    `json:"windowSize,omitempty"`
	Threshold    *int    `json:"threshold,omitempty"`
	ExcludeCount *int    `json:"excludeCount,omitempty"`
	Strategy     *string `json:"strategy,omitempty"`
}

// CompareTextRequest represents a request to compare two inline texts
type CompareTextRequest struct {
	Text1   string        `json:"text1"`
	Text2   string        `json:"text2"`
	Options *MatchOptions `json:"options,omitempty"`
}

// CompareDocumentsRequest represents a request to compare two stored documents
type CompareDocumentsRequest struct {
	DocumentA string        `json:"documentA" binding:"required"`
	DocumentB string        `json:"documentB" binding:"required"`
	Options   *MatchOptions `json:"options,omitempty"`
}

// CompareJobResponse represents the response from the async compare endpoint
type CompareJobResponse struct {
	JobID string `json:"jobId"`
	Step  Step   `json:"step"`
}

// CreateDocumentResponse represents the response from the document endpoint
type CreateDocumentResponse struct {
	DocumentID      string `json:"documentId"`
	TokenCount      int    `json:"tokenCount"`
	ValidTokenCount int    `json:"validTokenCount"`
}
