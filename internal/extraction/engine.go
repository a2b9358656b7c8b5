// internal/extraction/engine.go
package extraction

import (
	"transcript-workers/internal/common/logger"
	"transcript-workers/internal/models"
)

const (
	DefaultMaxTextLength = 500
	DefaultMinYear       = 2000
)

type Config struct {
	MaxTextLength int
	MinYear       int
	Names         EntityNames
}

func DefaultConfig() Config {
	return Config{
		MaxTextLength: DefaultMaxTextLength,
		MinYear:       DefaultMinYear,
		Names:         DefaultEntityNames(),
	}
}

// Engine normalizes NLU output into a NormalizationResult. It holds only
// configuration, so one Engine may serve concurrent requests.
type Engine struct {
	config Config
	logger logger.Logger
}

func NewEngine(config Config, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Engine{
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "extraction"}),
	}
}

// PrepareQuery returns the text to submit to the NLU service.
func (e *Engine) PrepareQuery(text string) string {
	return NormalizeText(text, e.config.MaxTextLength)
}

// Normalize runs parser, temporal merge, dedup and assembly for one request.
func (e *Engine) Normalize(text string, resp *models.NLUResponse) *models.NormalizationResult {
	evaluated := e.PrepareQuery(text)

	parsed := ParseResponse(resp, e.config.Names)
	temporal := MergeTemporal(parsed.Temporal, e.config.MinYear)
	additional := DedupAdditional(parsed.Additional)

	result := Assemble(AssemblyInput{
		Transcription:          text,
		EvaluatedTranscription: evaluated,
		Parsed:                 parsed,
		Temporal:               temporal,
		Additional:             additional,
	})

	e.logger.Debug("transcript normalized", map[string]interface{}{
		"temporalMentions":   len(parsed.Temporal),
		"dates":              len(temporal.Dates),
		"plausibleDates":     temporal.PlausibleCount(),
		"additionalEntities": additional.Len(),
		"hasPerson":          parsed.Person != nil,
		"hasLocation":        parsed.Location != nil,
		"dateRejected":       temporal.DateRejected,
		"statusCode":         string(result.StatusCode),
	})

	return result
}
