// Package store persists normalization results in PostgreSQL and caches them
// in Redis for the lookup worker.
package store

import (
	"context"
	"errors"
	"time"

	"transcript-workers/internal/models"
)

var (
	ErrNotFound  = errors.New("RESULT_NOT_FOUND")
	ErrCacheMiss = errors.New("RESULT_CACHE_MISS")
)

// Record is one stored normalization result, keyed by call identifier.
type Record struct {
	ID             string                      `json:"id"`
	CallIdentifier string                      `json:"callIdentifier"`
	Result         *models.NormalizationResult `json:"result"`
	NeedsReview    bool                        `json:"needsReview"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

type ResultStore interface {
	Save(ctx context.Context, callIdentifier string, result *models.NormalizationResult) (*Record, error)
	Get(ctx context.Context, callIdentifier string) (*Record, error)
}

type ResultCache interface {
	Set(ctx context.Context, record *Record) error
	Get(ctx context.Context, callIdentifier string) (*Record, error)
}
