// internal/workers/intake/lookup-normalization/handler.go
package lookupnormalization

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
	"transcript-workers/internal/store"
)

const (
	TaskType = "lookup-normalization"
)

type Handler struct {
	config       *Config
	store        store.ResultStore
	cache        store.ResultCache
	errorHandler *apperrors.ErrorHandler
	logger       logger.Logger
}

// NewHandler builds the lookup handler. cache may be nil.
func NewHandler(config *Config, resultStore store.ResultStore, cache store.ResultCache, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		store:        resultStore,
		cache:        cache,
		errorHandler: apperrors.NewErrorHandler(log),
		logger:       log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.fail(client, job, start, apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err)))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.fail(client, job, start, err)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || strings.TrimSpace(input.CallIdentifier) == "" {
		return nil, apperrors.NewInvalidRequestError("callIdentifier is required")
	}
	callID := input.CallIdentifier

	if h.cache != nil {
		rec, err := h.cache.Get(ctx, callID)
		switch {
		case err == nil:
			metrics.ResultCacheLookups.WithLabelValues("hit").Inc()
			return toOutput(rec, SourceCache), nil
		case errors.Is(err, store.ErrCacheMiss):
			metrics.ResultCacheLookups.WithLabelValues("miss").Inc()
		default:
			metrics.ResultCacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("result cache lookup failed", map[string]interface{}{
				"callIdentifier": callID,
				"error":          err,
			})
		}
	}

	rec, err := h.store.Get(ctx, callID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NewResultNotFoundError(callID)
	}
	if err != nil {
		return nil, apperrors.NewResultLookupFailedError(err)
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, rec); err != nil {
			h.logger.Warn("failed to refill result cache", map[string]interface{}{
				"callIdentifier": callID,
				"error":          err,
			})
		}
	}

	return toOutput(rec, SourceDatabase), nil
}

func toOutput(rec *store.Record, source string) *Output {
	out := &Output{
		CallIdentifier: rec.CallIdentifier,
		RecordID:       rec.ID,
		Result:         rec.Result,
		NeedsReview:    rec.NeedsReview,
		Source:         source,
		NormalizedAt:   rec.UpdatedAt,
	}
	if rec.Result != nil {
		out.StatusCode = rec.Result.StatusCode
	}
	return out
}

func (h *Handler) fail(client worker.JobClient, job entities.Job, start time.Time, err error) {
	stdErr := apperrors.AsStandardError(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
