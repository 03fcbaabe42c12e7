package store

import (
	"context"
	"fmt"
	"time"

	"github.com/valpere/transqc/internal"
	"github.com/valpere/transqc/internal/arbiter"
	"github.com/valpere/transqc/internal/detector"
	"github.com/valpere/transqc/internal/orchestrator"
)

// RecordSelection journals one arbitration run and returns the request ID.
func (s *Store) RecordSelection(ctx context.Context, text, targetLang, hint string, sel *arbiter.Selection) (string, error) {
	det := detector.New().Detect(text)
	id, err := s.SaveRequest(ctx, internal.TranslationRequest{
		Kind:       internal.KindSingle,
		SourceText: text,
		SourceLang: string(det.Language),
		TargetLang: targetLang,
		Context:    hint,
		Timestamp:  time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save request: %w", err)
	}
	if err := s.SaveSelection(ctx, id, text, sel); err != nil {
		return "", err
	}
	return id, nil
}

// RecordBatch journals a batch run with one quality report per field.
// Short-circuited batches are recorded without reports.
func (s *Store) RecordBatch(ctx context.Context, res *orchestrator.BatchResult, targetLang, hint string) (string, error) {
	id, err := s.SaveRequest(ctx, internal.TranslationRequest{
		Kind:       internal.KindBatch,
		SourceText: fmt.Sprintf("%d fields", len(res.Translations)),
		SourceLang: string(res.Detection.Language),
		TargetLang: targetLang,
		Context:    hint,
		Timestamp:  time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to save request: %w", err)
	}
	for _, r := range res.Reports {
		if err := s.SaveFieldReport(ctx, id, r.Key, r.Original, r.Translated, r.Quality); err != nil {
			return "", err
		}
	}
	return id, nil
}
