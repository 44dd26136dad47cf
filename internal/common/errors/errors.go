// Package errors provides the prediction error taxonomy and its structured forms
// (StandardError for HTTP callers, BPMNError for workflow jobs).
package errors

import (
	stderrors "errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeUnsupportedCrop         ErrorCode = "UNSUPPORTED_CROP"
	ErrCodeMissingFields           ErrorCode = "MISSING_FIELDS"
	ErrCodeInvalidParameters       ErrorCode = "INVALID_PARAMETERS"
	ErrCodeInvalidRequest          ErrorCode = "INVALID_REQUEST"
	ErrCodeClassificationUndefined ErrorCode = "CLASSIFICATION_UNDEFINED"
	ErrCodeInferenceFailed         ErrorCode = "INFERENCE_FAILED"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Prediction Errors
// ==========================

// UnsupportedCropError is returned when no profile or no loaded engine exists for a crop.
type UnsupportedCropError struct {
	Crop string
}

func (e *UnsupportedCropError) Error() string {
	return fmt.Sprintf("unsupported crop type %q", e.Crop)
}

func (e *UnsupportedCropError) Code() ErrorCode { return ErrCodeUnsupportedCrop }

// MissingFieldsError lists every required field absent from the request,
// in the profile's declared order.
type MissingFieldsError struct {
	Crop   string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields for %s: %s", e.Crop, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Code() ErrorCode { return ErrCodeMissingFields }

// InvalidParametersError lists required fields whose value is not a finite number.
type InvalidParametersError struct {
	Crop   string
	Fields []string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("non-numeric parameters for %s: %s", e.Crop, strings.Join(e.Fields, ", "))
}

func (e *InvalidParametersError) Code() ErrorCode { return ErrCodeInvalidParameters }

// ClassificationUndefinedError is returned when a value lands in a gap of a
// threshold or breakpoint table.
type ClassificationUndefinedError struct {
	Crop  string
	Stage string // "quartile" or "band"
	Value float64
}

func (e *ClassificationUndefinedError) Error() string {
	return fmt.Sprintf("%s classification undefined for %s at value %g", e.Stage, e.Crop, e.Value)
}

func (e *ClassificationUndefinedError) Code() ErrorCode { return ErrCodeClassificationUndefined }

// InferenceError wraps a failed or malformed engine invocation.
type InferenceError struct {
	Crop string
	Err  error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed for %s: %v", e.Crop, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func (e *InferenceError) Code() ErrorCode { return ErrCodeInferenceFailed }

type coded interface {
	error
	Code() ErrorCode
}

// CodeOf returns the error code carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	var c coded
	if stderrors.As(err, &c) {
		return c.Code()
	}
	return ErrCodeInternal
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidRequestError creates a non-retryable error for undecodable payloads.
func NewInvalidRequestError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequest,
		Message:   "Solicitud inválida",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize converts any error into a StandardError. Prediction errors keep
// their code and carry crop/field metadata; anything else becomes INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	out := &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Error interno",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}

	var (
		unsupported *UnsupportedCropError
		missing     *MissingFieldsError
		invalid     *InvalidParametersError
		undefined   *ClassificationUndefinedError
		inference   *InferenceError
	)
	switch {
	case stderrors.As(err, &unsupported):
		out.Code = ErrCodeUnsupportedCrop
		out.Message = "Tipo de cultivo no soportado"
		out.Metadata = map[string]interface{}{"crop": unsupported.Crop}
	case stderrors.As(err, &missing):
		out.Code = ErrCodeMissingFields
		out.Message = fmt.Sprintf("Datos de entrada incompletos para %s. Faltan los siguientes campos: %s",
			missing.Crop, strings.Join(missing.Fields, ", "))
		out.Metadata = map[string]interface{}{"crop": missing.Crop, "fields": missing.Fields}
	case stderrors.As(err, &invalid):
		out.Code = ErrCodeInvalidParameters
		out.Message = fmt.Sprintf("Parámetros no numéricos para %s: %s",
			invalid.Crop, strings.Join(invalid.Fields, ", "))
		out.Metadata = map[string]interface{}{"crop": invalid.Crop, "fields": invalid.Fields}
	case stderrors.As(err, &undefined):
		out.Code = ErrCodeClassificationUndefined
		out.Message = fmt.Sprintf("Clasificación indefinida para %s", undefined.Crop)
		out.Metadata = map[string]interface{}{"crop": undefined.Crop, "stage": undefined.Stage}
		if !math.IsNaN(undefined.Value) && !math.IsInf(undefined.Value, 0) {
			out.Metadata["value"] = undefined.Value
		}
	case stderrors.As(err, &inference):
		out.Code = ErrCodeInferenceFailed
		out.Message = fmt.Sprintf("Error en la predicción de %s: %v", inference.Crop, inference.Err)
		out.Metadata = map[string]interface{}{"crop": inference.Crop}
	}
	return out
}

// ==========================
// 4. Error Conversion
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if fields, ok := stdErr.Metadata["fields"]; ok {
		vars["errorFields"] = fields
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		ErrorVariables: vars,
	}
}

// HTTPStatus maps an error code to the status returned by the API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnsupportedCrop, ErrCodeMissingFields, ErrCodeInvalidParameters, ErrCodeInvalidRequest:
		return http.StatusBadRequest
	case ErrCodeClassificationUndefined:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeUnsupportedCrop, ErrCodeMissingFields, ErrCodeInvalidParameters, ErrCodeInvalidRequest:
		return "VALIDATION"
	case ErrCodeClassificationUndefined:
		return "CLASSIFICATION"
	case ErrCodeInferenceFailed:
		return "MODEL"
	default:
		return "OTHER"
	}
}
