package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	_ "modernc.org/sqlite"

	"github.com/valpere/transqc/internal"
	"github.com/valpere/transqc/internal/arbiter"
	"github.com/valpere/transqc/internal/quality"
)

const defaultLowQualityThreshold = 0.7

// Store journals arbitration runs and batch quality reports.
type Store struct {
	db         *sql.DB
	lowQuality float64
}

type Option func(*Store)

// WithLowQualityThreshold sets the overall score below which Stats counts a
// report as low quality. It should match the orchestrator's threshold.
func WithLowQualityThreshold(threshold float64) Option {
	return func(s *Store) {
		if threshold > 0 {
			s.lowQuality = threshold
		}
	}
}

func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, lowQuality: defaultLowQualityThreshold}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS translation_requests (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		source_text TEXT NOT NULL,
		source_lang TEXT NOT NULL,
		target_lang TEXT NOT NULL,
		context TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	-- translation_candidates holds every successful provider answer of an arbitration run
	CREATE TABLE IF NOT EXISTS translation_candidates (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		provider TEXT NOT NULL,
		translated_text TEXT NOT NULL,
		prior_quality REAL NOT NULL,
		prior_confidence REAL NOT NULL,
		selected BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (request_id) REFERENCES translation_requests(id)
	);

	-- quality_reports has one row per arbitration winner or batch field
	CREATE TABLE IF NOT EXISTS quality_reports (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL,
		field_key TEXT NOT NULL DEFAULT '',
		original TEXT NOT NULL,
		translated TEXT NOT NULL,
		fluency REAL NOT NULL,
		accuracy REAL NOT NULL,
		completeness REAL NOT NULL,
		overall REAL NOT NULL,
		grade TEXT NOT NULL,
		issues TEXT,
		suggestions TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (request_id) REFERENCES translation_requests(id)
	);

	CREATE INDEX IF NOT EXISTS idx_candidates_request ON translation_candidates(request_id);
	CREATE INDEX IF NOT EXISTS idx_reports_request ON quality_reports(request_id);
	CREATE INDEX IF NOT EXISTS idx_requests_created ON translation_requests(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRequest records a request. An empty ID is replaced with a new UUID,
// which is returned.
func (s *Store) SaveRequest(ctx context.Context, req internal.TranslationRequest) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Kind == "" {
		req.Kind = internal.KindSingle
	}
	if req.Timestamp.IsZero() {
		req.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO translation_requests (id, kind, source_text, source_lang, target_lang, context, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.Kind, normalizeText(req.SourceText), req.SourceLang, req.TargetLang, req.Context, req.Timestamp)
	if err != nil {
		return "", err
	}
	return req.ID, nil
}

// SaveSelection stores the winner, its alternatives and the winner's quality
// report in one transaction.
func (s *Store) SaveSelection(ctx context.Context, requestID, original string, sel *arbiter.Selection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := func(c arbiter.Candidate, selected bool) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO translation_candidates (id, request_id, provider, translated_text, prior_quality, prior_confidence, selected) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uuid.NewString(), requestID, c.ProviderID, c.Text, c.PriorQuality, c.PriorConfidence, selected)
		return err
	}

	if err := insert(sel.Best, true); err != nil {
		return fmt.Errorf("failed to save best candidate: %w", err)
	}
	for _, alt := range sel.Alternatives {
		if err := insert(alt, false); err != nil {
			return fmt.Errorf("failed to save candidate %s: %w", alt.ProviderID, err)
		}
	}
	if err := saveReport(ctx, tx, requestID, "", original, sel.Best.Text, sel.Quality); err != nil {
		return err
	}

	return tx.Commit()
}

// SaveFieldReport stores the quality report of one batch field.
func (s *Store) SaveFieldReport(ctx context.Context, requestID, key, original, translated string, report quality.Report) error {
	return saveReport(ctx, s.db, requestID, key, original, translated, report)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveReport(ctx context.Context, db execer, requestID, key, original, translated string, r quality.Report) error {
	issues, err := json.Marshal(r.Issues)
	if err != nil {
		return err
	}
	suggestions, err := json.Marshal(r.Suggestions)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO quality_reports (id, request_id, field_key, original, translated, fluency, accuracy, completeness, overall, grade, issues, suggestions) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), requestID, key, normalizeText(original), translated,
		r.Fluency, r.Accuracy, r.Completeness, r.Overall, r.Grade(), string(issues), string(suggestions))
	if err != nil {
		return fmt.Errorf("failed to save quality report: %w", err)
	}
	return nil
}

// HistoryEntry is a request row joined with its outcome. Provider and
// FinalText are empty for batch requests; Overall is the mean over fields.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	SourceText string    `json:"source_text"`
	SourceLang string    `json:"source_lang"`
	TargetLang string    `json:"target_lang"`
	Provider   string    `json:"provider,omitempty"`
	FinalText  string    `json:"final_text,omitempty"`
	Overall    float64   `json:"overall"`
	Grade      string    `json:"grade"`
	Fields     int       `json:"fields"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListHistory returns the most recent requests first. limit <= 0 means no limit.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]HistoryEntry, error) {
	query := `
		SELECT
			r.id, r.kind, r.source_text, r.source_lang, r.target_lang, r.created_at,
			COALESCE(c.provider, ''), COALESCE(c.translated_text, ''),
			COALESCE(AVG(q.overall), 0), COUNT(q.id)
		FROM translation_requests r
		LEFT JOIN translation_candidates c ON c.request_id = r.id AND c.selected
		LEFT JOIN quality_reports q ON q.request_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.Kind, &e.SourceText, &e.SourceLang, &e.TargetLang, &e.CreatedAt,
			&e.Provider, &e.FinalText, &e.Overall, &e.Fields); err != nil {
			return nil, err
		}
		e.Grade = quality.Grade(e.Overall)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarises the journal.
type Stats struct {
	Requests       int            `json:"requests"`
	BatchRequests  int            `json:"batch_requests"`
	Reports        int            `json:"reports"`
	LowQuality     int            `json:"low_quality"`
	AverageOverall float64        `json:"average_overall"`
	Wins           map[string]int `json:"wins"`
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{Wins: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0)
		FROM translation_requests`, internal.KindBatch).Scan(
		&stats.Requests,
		&stats.BatchRequests,
	)
	if err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN overall < ? THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(overall), 0)
		FROM quality_reports`, s.lowQuality).Scan(
		&stats.Reports,
		&stats.LowQuality,
		&stats.AverageOverall,
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT provider, COUNT(*) FROM translation_candidates WHERE selected GROUP BY provider`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var provider string
		var n int
		if err := rows.Scan(&provider, &n); err != nil {
			return nil, err
		}
		stats.Wins[provider] = n
	}
	return stats, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeText trims whitespace and applies Unicode NFC normalization
// so identical sources journal identically.
func normalizeText(text string) string {
	return norm.NFC.String(strings.TrimSpace(text))
}
