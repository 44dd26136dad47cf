// Package prediction turns a crop id and raw parameters into a yield
// prediction with its band and advice.
package prediction

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	apperrors "github.com/Tesis-SiembraSmart/api-modelos/internal/common/errors"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/metrics"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/inference"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Result is one successful prediction.
type Result struct {
	Crop       string   `json:"crop"`
	Label      string   `json:"label"`
	Shape      Shape    `json:"shape"`
	Prediction float64  `json:"prediction"`
	Band       Band     `json:"band,omitempty"`
	Advice     []string `json:"advice,omitempty"`
}

// Response is the public wire form of a Result.
type Response struct {
	Modelo              string   `json:"Modelo"`
	RendimientoPredicho float64  `json:"Rendimiento_Predicho"`
	Clasificacion       string   `json:"Clasificacion,omitempty"`
	Consejos            []string `json:"Consejos,omitempty"`
}

func (r *Result) Response() Response {
	return Response{
		Modelo:              r.Label,
		RendimientoPredicho: r.Prediction,
		Clasificacion:       r.Band.Label(),
		Consejos:            r.Advice,
	}
}

// Predictor is satisfied by the Dispatcher and by decorators around it.
type Predictor interface {
	Predict(ctx context.Context, crop string, params map[string]interface{}) (*Result, error)
}

// EngineSource resolves the loaded engine for a crop.
type EngineSource interface {
	Engine(crop string) (inference.Engine, bool)
}

// Dispatcher holds only read-only state and is safe for concurrent use.
type Dispatcher struct {
	profiles *Registry
	engines  EngineSource
	logger   logger.Logger
	tracer   trace.Tracer
}

type Option func(*Dispatcher)

// WithTracer overrides the global OTel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) { d.tracer = t }
}

func NewDispatcher(profiles *Registry, engines EngineSource, log logger.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		profiles: profiles,
		engines:  engines,
		logger:   log.WithFields(map[string]interface{}{"component": "dispatcher"}),
		tracer:   otel.Tracer("prediction"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Supported returns the crops that have both a profile and a loaded engine.
func (d *Dispatcher) Supported() []string {
	var out []string
	for _, p := range d.profiles.Profiles() {
		if _, ok := d.engines.Engine(p.ID()); ok {
			out = append(out, p.ID())
		}
	}
	return out
}

// CacheScope identifies how crop is currently served: its id, profile shape
// and, when the engine names one, a digest of the model version. ok is false
// when the crop has no profile or no loaded engine.
func (d *Dispatcher) CacheScope(crop string) (string, bool) {
	id := strings.ToLower(crop)
	profile, ok := d.profiles.Lookup(id)
	if !ok {
		return "", false
	}
	engine, ok := d.engines.Engine(id)
	if !ok {
		return "", false
	}

	scope := profile.ID() + ":" + string(profile.Shape())
	if v, ok := engine.(inference.Versioned); ok && v.Version() != "" {
		scope += ":" + digest([]byte(v.Version()))[:12]
	}
	return scope, true
}

// Profiles exposes the registered profiles for catalog building.
func (d *Dispatcher) Profiles() []Profile {
	return d.profiles.Profiles()
}

// Predict validates params against the crop's profile, runs the crop's
// engine and classifies the output.
func (d *Dispatcher) Predict(ctx context.Context, crop string, params map[string]interface{}) (res *Result, err error) {
	start := time.Now()
	id := strings.ToLower(crop)
	label := metrics.UnknownCrop

	ctx, span := d.tracer.Start(ctx, "prediction.Predict", trace.WithAttributes(attribute.String("crop", id)))
	defer func() {
		if err != nil {
			metrics.PredictionFailures.WithLabelValues(label, string(apperrors.CodeOf(err))).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apperrors.CodeOf(err)))
		} else {
			metrics.PredictionsTotal.WithLabelValues(label, bandLabel(res.Band)).Inc()
		}
		metrics.PredictionDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		span.End()
	}()

	profile, ok := d.profiles.Lookup(id)
	if !ok {
		return nil, &apperrors.UnsupportedCropError{Crop: id}
	}
	label = profile.ID()

	engine, ok := d.engines.Engine(id)
	if !ok {
		return nil, &apperrors.UnsupportedCropError{Crop: id}
	}

	values, err := d.validate(profile, params)
	if err != nil {
		return nil, err
	}

	vec, err := profile.Vector(values)
	if err != nil {
		return nil, err
	}
	if len(vec) != profile.Arity() {
		return nil, &apperrors.InferenceError{
			Crop: id,
			Err:  fmt.Errorf("feature vector has %d values, model expects %d", len(vec), profile.Arity()),
		}
	}

	prediction, err := d.infer(ctx, id, engine, vec)
	if err != nil {
		return nil, err
	}

	band, advice, err := profile.Classify(prediction)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("prediction computed", map[string]interface{}{
		"crop":       id,
		"prediction": prediction,
		"band":       string(band),
	})

	return &Result{
		Crop:       profile.ID(),
		Label:      profile.Label(),
		Shape:      profile.Shape(),
		Prediction: prediction,
		Band:       band,
		Advice:     advice,
	}, nil
}

func (d *Dispatcher) validate(profile Profile, params map[string]interface{}) (map[string]float64, error) {
	v := d.profiles.validator(profile.ID())
	vr, err := v.Validate(params)
	if err != nil {
		return nil, fmt.Errorf("validate %s parameters: %w", profile.ID(), err)
	}
	if missing := v.MissingFields(vr); len(missing) > 0 {
		return nil, &apperrors.MissingFieldsError{Crop: profile.ID(), Fields: missing}
	}
	if invalid := v.InvalidFields(vr); len(invalid) > 0 {
		return nil, &apperrors.InvalidParametersError{Crop: profile.ID(), Fields: invalid}
	}

	values := make(map[string]float64, len(v.Fields()))
	var bad []string
	for _, name := range v.Fields() {
		f, ok := toFloat(params[name])
		if !ok {
			bad = append(bad, name)
			continue
		}
		values[name] = f
	}
	if len(bad) > 0 {
		return nil, &apperrors.InvalidParametersError{Crop: profile.ID(), Fields: bad}
	}
	return values, nil
}

func (d *Dispatcher) infer(ctx context.Context, crop string, engine inference.Engine, vec []float64) (float64, error) {
	ctx, span := d.tracer.Start(ctx, "inference.Run", trace.WithAttributes(
		attribute.String("crop", crop),
		attribute.Int("features", len(vec)),
	))
	defer span.End()

	start := time.Now()
	out, err := engine.Run(ctx, vec)
	metrics.InferenceDuration.WithLabelValues(crop).Observe(time.Since(start).Seconds())

	if err == nil && (math.IsNaN(out) || math.IsInf(out, 0)) {
		err = fmt.Errorf("engine returned %v", out)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, &apperrors.InferenceError{Crop: crop, Err: err}
	}
	return out, nil
}

func bandLabel(b Band) string {
	if b == "" {
		return "none"
	}
	return string(b)
}

// toFloat accepts the numeric forms produced by JSON decoders and Go callers.
func toFloat(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
