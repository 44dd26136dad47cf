package validation

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/xeipuuv/gojsonschema"
)

const (
	CodeRequiredFieldMissing = "REQUIRED_FIELD_MISSING"
	CodeInvalidType          = "INVALID_TYPE"
	CodeSchemaViolation      = "SCHEMA_VIOLATION"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NumericObjectSchema returns a JSON schema for an object whose listed fields
// are all required numbers. Extra properties are allowed.
func NumericObjectSchema(required []string) map[string]interface{} {
	props := make(map[string]interface{}, len(required))
	for _, name := range required {
		props[name] = map[string]interface{}{"type": "number"}
	}
	req := make([]interface{}, len(required))
	for i, name := range required {
		req[i] = name
	}
	return map[string]interface{}{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": true,
	}
}

// Validator is a compiled numeric-object schema. It is immutable and safe
// for concurrent use.
type Validator struct {
	fields []string
	schema *gojsonschema.Schema
}

// NewValidator compiles the schema for the given ordered required fields.
func NewValidator(required []string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(NumericObjectSchema(required)))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	fields := make([]string, len(required))
	copy(fields, required)
	return &Validator{fields: fields, schema: schema}, nil
}

// Fields returns the required fields in declared order.
func (v *Validator) Fields() []string {
	out := make([]string, len(v.fields))
	copy(out, v.fields)
	return out
}

// Validate checks input against the compiled schema. Only the required
// fields are validated; anything else in input is ignored.
func (v *Validator) Validate(input map[string]interface{}) (*ValidationResult, error) {
	doc := make(map[string]interface{}, len(v.fields))
	for _, name := range v.fields {
		val, ok := input[name]
		if !ok {
			continue
		}
		// JSON cannot carry NaN or Inf; present them as strings so the
		// schema reports a type error instead of failing to encode.
		if f, isFloat := val.(float64); isFloat && (math.IsNaN(f) || math.IsInf(f, 0)) {
			val = fmt.Sprint(f)
		}
		doc[name] = val
	}

	res, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}

	out := &ValidationResult{Valid: res.Valid()}
	for _, e := range res.Errors() {
		switch e.Type() {
		case "required":
			prop, _ := e.Details()["property"].(string)
			out.Errors = append(out.Errors, ValidationError{
				Field:   prop,
				Message: "required field missing",
				Code:    CodeRequiredFieldMissing,
			})
		case "invalid_type":
			out.Errors = append(out.Errors, ValidationError{
				Field:   e.Field(),
				Message: e.Description(),
				Code:    CodeInvalidType,
			})
		default:
			out.Errors = append(out.Errors, ValidationError{
				Field:   e.Field(),
				Message: e.Description(),
				Code:    CodeSchemaViolation,
			})
		}
	}
	return out, nil
}

// MissingFields returns missing required fields in the validator's declared order.
func (v *Validator) MissingFields(vr *ValidationResult) []string {
	return v.ordered(vr, CodeRequiredFieldMissing)
}

// InvalidFields returns present fields that failed validation, in declared order.
func (v *Validator) InvalidFields(vr *ValidationResult) []string {
	invalid := v.ordered(vr, CodeInvalidType)
	return append(invalid, v.ordered(vr, CodeSchemaViolation)...)
}

func (v *Validator) ordered(vr *ValidationResult, code string) []string {
	hit := make(map[string]bool)
	for _, e := range vr.Errors {
		if e.Code == code {
			hit[e.Field] = true
		}
	}
	var out []string
	for _, name := range v.fields {
		if hit[name] {
			out = append(out, name)
		}
	}
	return out
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// SchemaJSON renders the numeric-object schema for publishing in catalogs.
func SchemaJSON(required []string) (json.RawMessage, error) {
	raw, err := json.Marshal(NumericObjectSchema(required))
	if err != nil {
		return nil, err
	}
	return raw, nil
}
