// internal/workers/prediction/predict-crop-yield/handler.go
package predictcropyield

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Tesis-SiembraSmart/api-modelos/internal/common/errors"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/metrics"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/prediction"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "predict-crop-yield"
)

type Handler struct {
	config     *Config
	predictor  prediction.Predictor
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, predictor prediction.Predictor, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		predictor:  predictor,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := parseInput(job.Variables)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.CodeOf(err))).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

// parseInput decodes job variables keeping numbers as json.Number so large
// integers reach the validator unchanged.
func parseInput(variables string) (*Input, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(variables)))
	dec.UseNumber()

	var input Input
	if err := dec.Decode(&input); err != nil {
		return nil, apperrors.NewInvalidRequestError(fmt.Sprintf("parse input: %v", err))
	}
	if strings.TrimSpace(input.CropType) == "" {
		return nil, apperrors.NewInvalidRequestError("cropType is required")
	}
	return &input, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	requestID := uuid.NewString()

	res, err := h.predictor.Predict(ctx, input.CropType, input.Parameters)
	if err != nil {
		h.logger.Warn("prediction failed", map[string]interface{}{
			"requestId": requestID,
			"cropType":  input.CropType,
			"errorCode": string(apperrors.CodeOf(err)),
		})
		return nil, err
	}

	h.logger.Info("prediction completed", map[string]interface{}{
		"requestId":  requestID,
		"crop":       res.Crop,
		"prediction": res.Prediction,
		"band":       string(res.Band),
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{
		Prediction: res.Response(),
		Crop:       res.Crop,
		Band:       res.Band.Label(),
		RequestID:  requestID,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}
