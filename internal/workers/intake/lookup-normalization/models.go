// internal/workers/intake/lookup-normalization/models.go
package lookupnormalization

import (
	"time"

	"transcript-workers/internal/models"
)

type Input struct {
	CallIdentifier string `json:"callIdentifier"`
}

type Output struct {
	CallIdentifier string                      `json:"callIdentifier"`
	RecordID       string                      `json:"recordId"`
	Result         *models.NormalizationResult `json:"normalizationResult"`
	StatusCode     models.StatusCode           `json:"statusCode"`
	NeedsReview    bool                        `json:"needsReview"`
	Source         string                      `json:"source"` // cache | database
	NormalizedAt   time.Time                   `json:"normalizedAt"`
}

const (
	SourceCache    = "cache"
	SourceDatabase = "database"
)
