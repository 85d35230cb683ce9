package entity

import (
	"time"

	"github.com/google/uuid"
)

// Extraction is one recorded extraction attempt, successful or not.
type Extraction struct {
	ID           uuid.UUID `json:"id"`
	SourcePath   string    `json:"source_path"`
	ContentHash  string    `json:"content_hash,omitempty"` // hex sha256 of the source file
	SourceType   string    `json:"source_type"`            // PDF | IMAGE | UNSUPPORTED
	Mode         string    `json:"mode"`                   // PRINTED | HANDWRITING
	Method       string    `json:"method,omitempty"`
	Status       string    `json:"status"` // SUCCEEDED | FAILED
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Text         string    `json:"text"`
	Pages        int       `json:"pages"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExtractionFilter narrows a history listing. Zero values mean no constraint.
type ExtractionFilter struct {
	Status     string
	SourceType string
	Limit      int
}
