package server

import (
	"net/http"
	"time"

	apperrors "github.com/Tesis-SiembraSmart/api-modelos/internal/common/errors"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/prediction"
	"github.com/Tesis-SiembraSmart/api-modelos/pkg/registry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	CropType   string                 `json:"crop_type" binding:"required"`
	Parameters map[string]interface{} `json:"parameters"`
}

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Detail    string   `json:"detail"`
	Code      string   `json:"code"`
	Fields    []string `json:"fields,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": readyMessage})
}

func (s *Server) handlePredict(c *gin.Context) {
	start := time.Now()
	ctx, span := s.obs.StartSpan(c.Request.Context(), "http.predict")
	defer span.End()

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, apperrors.NewInvalidRequestError(err.Error()))
		s.record(c, "", "invalid_request", start)
		return
	}
	span.SetAttributes(attribute.String("crop_type", req.CropType))

	res, err := s.predictor.Predict(ctx, req.CropType, req.Parameters)
	if err != nil {
		span.RecordError(err)
		s.writeError(c, err)
		s.record(c, "", string(apperrors.CodeOf(err)), start)
		return
	}

	c.JSON(http.StatusOK, res.Response())
	s.record(c, res.Crop, "success", start)
}

func (s *Server) record(c *gin.Context, crop, status string, start time.Time) {
	ctx := c.Request.Context()
	s.obs.RecordPrediction(ctx, "http", crop, status)
	s.obs.RecordPredictionDuration(ctx, "http", time.Since(start), status)
}

func (s *Server) handleCrops(c *gin.Context) {
	supported := make(map[string]bool)
	for _, crop := range s.crops.Supported() {
		supported[crop] = true
	}

	cat, err := prediction.Catalog(s.crops.Profiles(), func(crop string) string {
		if supported[crop] {
			return registry.StatusLoaded
		}
		return registry.StatusUnavailable
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(c *gin.Context) {
	crops := s.crops.Supported()
	if len(crops) == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "crops": []string{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "crops": crops})
}

func (s *Server) writeError(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	resp := ErrorResponse{
		Detail:    stdErr.Message,
		Code:      string(stdErr.Code),
		RequestID: c.GetString(requestIDKey),
	}
	if fields, ok := stdErr.Metadata["fields"].([]string); ok {
		resp.Fields = fields
	}

	fields := map[string]interface{}{
		"requestId": resp.RequestID,
		"errorCode": resp.Code,
		"category":  apperrors.GetErrorCategory(stdErr.Code),
	}
	if status >= http.StatusInternalServerError {
		fields["details"] = stdErr.Details
		s.logger.Error("prediction failed", fields)
	} else {
		s.logger.Info("prediction rejected", fields)
	}

	c.AbortWithStatusJSON(status, resp)
}
