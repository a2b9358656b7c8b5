// internal/extraction/assembler.go
package extraction

import (
	"transcript-workers/internal/models"
)

// AssemblyInput is everything the assembler combines into a result.
type AssemblyInput struct {
	Transcription          string
	EvaluatedTranscription string
	Parsed                 *ParsedResponse
	Temporal               TemporalResult
	Additional             *models.AdditionalEntities
}

// Assemble builds the result record and derives its status. The status is
// Ok only when intent, a plausible date, location and person are all present.
func Assemble(in AssemblyInput) *models.NormalizationResult {
	parsed := in.Parsed
	if parsed == nil {
		parsed = &ParsedResponse{}
	}

	additional := in.Additional
	if additional == nil {
		additional = models.NewAdditionalEntities()
	}

	dates := in.Temporal.Dates
	if dates == nil {
		dates = []models.DateInfo{}
	}

	result := &models.NormalizationResult{
		Intent:                 parsed.Intent,
		Transcription:          in.Transcription,
		EvaluatedTranscription: in.EvaluatedTranscription,
		Dates:                  dates,
		Person:                 parsed.Person,
		Location:               parsed.Location,
		AdditionalData:         additional,
		Flags:                  []models.Flag{},
		StatusCode:             models.StatusMissingEntities,
	}

	if in.Temporal.DateRejected {
		result.Flags = append(result.Flags, models.FlagDateRejected)
	}

	if parsed.Intent != nil &&
		in.Temporal.PlausibleCount() > 0 &&
		parsed.Location != nil &&
		parsed.Person != nil {
		result.StatusCode = models.StatusOK
	}

	return result
}
