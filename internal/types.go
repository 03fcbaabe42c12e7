package internal

import "time"

// Request kinds recorded in the journal.
const (
	KindSingle = "single"
	KindBatch  = "batch"
)

type TranslationRequest struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	SourceText string    `json:"source_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	Context    string    `json:"context,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
