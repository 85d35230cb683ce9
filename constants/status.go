package constants

// ExtractionStatus is the canonical status for rows in the extraction history.
type ExtractionStatus string

// Stable values (store these exact strings in DB).
const (
	StatusSucceeded ExtractionStatus = "SUCCEEDED"
	StatusFailed    ExtractionStatus = "FAILED"
)
