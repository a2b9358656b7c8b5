package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"transcript-workers/internal/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS normalization_results (
	id              UUID PRIMARY KEY,
	call_identifier TEXT NOT NULL UNIQUE,
	status_code     TEXT NOT NULL,
	needs_review    BOOLEAN NOT NULL DEFAULT FALSE,
	result          JSONB NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const upsertResult = `
INSERT INTO normalization_results (id, call_identifier, status_code, needs_review, result)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (call_identifier) DO UPDATE SET
	status_code  = EXCLUDED.status_code,
	needs_review = EXCLUDED.needs_review,
	result       = EXCLUDED.result,
	updated_at   = NOW()
RETURNING id, created_at, updated_at`

const selectResult = `
SELECT id, call_identifier, needs_review, result, created_at, updated_at
FROM normalization_results
WHERE call_identifier = $1`

// PostgresResultStore keeps the latest result per call identifier.
type PostgresResultStore struct {
	db *sql.DB
}

func NewPostgresResultStore(db *sql.DB) *PostgresResultStore {
	return &PostgresResultStore{db: db}
}

func (s *PostgresResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create normalization_results: %w", err)
	}
	return nil
}

// Save upserts the result. Re-normalizing a call replaces the stored result
// but keeps the original id and created_at.
func (s *PostgresResultStore) Save(ctx context.Context, callIdentifier string, result *models.NormalizationResult) (*Record, error) {
	if result == nil {
		return nil, fmt.Errorf("nil result for %s", callIdentifier)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	rec := &Record{
		CallIdentifier: callIdentifier,
		Result:         result,
		NeedsReview:    result.NeedsReview(),
	}

	err = s.db.QueryRowContext(ctx, upsertResult,
		uuid.NewString(), callIdentifier, string(result.StatusCode), rec.NeedsReview, payload,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert result: %w", err)
	}
	return rec, nil
}

func (s *PostgresResultStore) Get(ctx context.Context, callIdentifier string) (*Record, error) {
	var (
		rec     Record
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, selectResult, callIdentifier).
		Scan(&rec.ID, &rec.CallIdentifier, &rec.NeedsReview, &payload, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select result: %w", err)
	}

	var result models.NormalizationResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode stored result: %w", err)
	}
	rec.Result = &result
	return &rec, nil
}
