// internal/workers/intake/normalize-transcript/handler.go
package normalizetranscript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "transcript-workers/internal/common/errors"
	"transcript-workers/internal/common/logger"
	"transcript-workers/internal/common/metrics"
	"transcript-workers/internal/common/nlu"
	"transcript-workers/internal/common/observability"
	"transcript-workers/internal/common/validation"
	"transcript-workers/internal/extraction"
	"transcript-workers/internal/models"
	"transcript-workers/internal/store"
)

const (
	TaskType = "normalize-transcript"
)

var requestValidator = validation.MustValidator(inputSchema)

type NLUClient interface {
	Query(ctx context.Context, text string) (*models.NLUResponse, error)
}

type ReviewNotifier interface {
	NotifyIfFlagged(ctx context.Context, callIdentifier string, result *models.NormalizationResult) (bool, error)
}

// Dependencies groups the collaborators of the handler. Cache, Notifier and
// Observability are optional.
type Dependencies struct {
	Engine        *extraction.Engine
	NLU           NLUClient
	Store         store.ResultStore
	Cache         store.ResultCache
	Notifier      ReviewNotifier
	Observability *observability.Observability
}

type Handler struct {
	config       *Config
	deps         Dependencies
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, deps Dependencies, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		deps:         deps,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(ctx, client, job, start, apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, start, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, "completed")
	h.deps.Observability.RecordJobDuration(ctx, TaskType, time.Since(start), "completed")
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, apperrors.NewInvalidRequestError("input cannot be nil")
	}

	check, err := requestValidator.Validate(input)
	if err != nil {
		return nil, apperrors.NewInvalidRequestError(err.Error())
	}
	if !check.Valid {
		return nil, apperrors.NewInvalidRequestError(strings.Join(check.GetErrorMessages(), "; "))
	}

	query := h.deps.Engine.PrepareQuery(input.Text)
	if query == "" {
		return nil, apperrors.NewInvalidRequestError("text has no content after normalization")
	}

	resp, err := h.deps.NLU.Query(ctx, query)
	if err != nil {
		return nil, mapNLUError(err)
	}

	result := h.deps.Engine.Normalize(input.Text, resp)
	h.recordResult(ctx, result)

	record, err := h.deps.Store.Save(ctx, input.CallIdentifier, result)
	if err != nil {
		return nil, apperrors.NewResultPersistFailedError(err)
	}

	if h.deps.Cache != nil {
		if err := h.deps.Cache.Set(ctx, record); err != nil {
			h.logger.Warn("failed to cache normalization result", map[string]interface{}{
				"callIdentifier": input.CallIdentifier,
				"error":          err,
			})
		}
	}

	notified := false
	if h.deps.Notifier != nil {
		notified, err = h.deps.Notifier.NotifyIfFlagged(ctx, input.CallIdentifier, result)
		if err != nil {
			h.logger.Warn("failed to publish review notification", map[string]interface{}{
				"callIdentifier": input.CallIdentifier,
				"error":          err,
			})
		}
	}

	h.logger.Info("transcript normalized", map[string]interface{}{
		"callIdentifier": input.CallIdentifier,
		"recordId":       record.ID,
		"statusCode":     string(result.StatusCode),
		"flags":          result.Flags,
	})

	return &Output{
		CallIdentifier: input.CallIdentifier,
		RecordID:       record.ID,
		Result:         result,
		StatusCode:     result.StatusCode,
		NeedsReview:    result.NeedsReview(),
		ReviewNotified: notified,
	}, nil
}

func (h *Handler) recordResult(ctx context.Context, result *models.NormalizationResult) {
	metrics.NormalizationsTotal.WithLabelValues(string(result.StatusCode)).Inc()
	if result.DateRejected() {
		metrics.DateRejectedTotal.Inc()
	}

	obs := h.deps.Observability
	obs.RecordEntities(ctx, "date", len(result.Dates))
	obs.RecordEntities(ctx, "additional", result.AdditionalData.Len())
	if result.Person != nil {
		obs.RecordEntities(ctx, "person", 1)
	}
	if result.Location != nil {
		obs.RecordEntities(ctx, "location", 1)
	}
}

func mapNLUError(err error) error {
	switch {
	case errors.Is(err, nlu.ErrNLUTimeout), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewNLUTimeoutError()
	case errors.Is(err, nlu.ErrNLUResponseInvalid), errors.Is(err, extraction.ErrResponseUndecodable):
		return apperrors.NewNLUResponseInvalidError(err)
	default:
		return apperrors.NewNLURequestFailedError(err)
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, start time.Time, err error) {
	stdErr := apperrors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.deps.Observability.RecordJobProcessed(ctx, TaskType, "failed")
	h.errorHandler.HandleJobError(context.Background(), client, job, stdErr)
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

// Execute runs the normalization flow without a job client.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
