// internal/workers/intake/normalize-transcript/models.go
package normalizetranscript

import "transcript-workers/internal/models"

type Input struct {
	CallIdentifier string `json:"callIdentifier"`
	Text           string `json:"text"`
}

type Output struct {
	CallIdentifier string                      `json:"callIdentifier"`
	RecordID       string                      `json:"recordId"`
	Result         *models.NormalizationResult `json:"normalizationResult"`
	StatusCode     models.StatusCode           `json:"statusCode"`
	NeedsReview    bool                        `json:"needsReview"`
	ReviewNotified bool                        `json:"reviewNotified"`
}

const inputSchema = `{
  "type": "object",
  "required": ["callIdentifier", "text"],
  "properties": {
    "callIdentifier": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "text": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`
