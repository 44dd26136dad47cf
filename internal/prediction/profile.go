package prediction

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/Tesis-SiembraSmart/api-modelos/internal/common/errors"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/validation"
)

// Stages reported by ClassificationUndefinedError.
const (
	StageQuartile = "quartile"
	StageBand     = "band"
)

// Shape selects how much of the pipeline a profile runs.
type Shape string

const (
	// ShapeRich validates, derives features, classifies and attaches advice.
	ShapeRich Shape = "rich"
	// ShapePlain validates and returns the numeric prediction only.
	ShapePlain Shape = "plain"
)

// Profile describes everything the dispatcher needs to serve one crop.
type Profile interface {
	ID() string
	Label() string
	Shape() Shape
	// Fields are the required raw fields in declared order.
	Fields() []string
	// Arity is the length of the vector the crop's model expects.
	Arity() int
	// Vector assembles the model input from validated values.
	Vector(values map[string]float64) ([]float64, error)
	// Classify maps a prediction to a band and its advice. Plain profiles
	// return an empty band and nil advice.
	Classify(prediction float64) (Band, []string, error)
	// Bands lists the bands this profile can produce, in threshold order.
	Bands() []Band
}

type baseProfile struct {
	id     string
	label  string
	fields []string
}

func (p baseProfile) ID() string    { return p.id }
func (p baseProfile) Label() string { return p.label }

func (p baseProfile) Fields() []string {
	out := make([]string, len(p.fields))
	copy(out, p.fields)
	return out
}

func (p baseProfile) raw(values map[string]float64) []float64 {
	vec := make([]float64, 0, len(p.fields)+2)
	for _, name := range p.fields {
		vec = append(vec, values[name])
	}
	return vec
}

// RichProfile runs the full pipeline.
type RichProfile struct {
	baseProfile
	derive     func(values map[string]float64, vec []float64) ([]float64, error)
	derived    int
	buckets    *BucketTable
	thresholds Thresholds
	advice     AdviceTable
}

func (p *RichProfile) Shape() Shape { return ShapeRich }

func (p *RichProfile) Arity() int { return len(p.fields) + p.derived }

func (p *RichProfile) Vector(values map[string]float64) ([]float64, error) {
	vec := p.raw(values)
	if p.derive == nil {
		return vec, nil
	}
	return p.derive(values, vec)
}

func (p *RichProfile) Classify(prediction float64) (Band, []string, error) {
	band, ok := p.thresholds.Classify(prediction)
	if !ok {
		return "", nil, &apperrors.ClassificationUndefinedError{Crop: p.id, Stage: StageBand, Value: prediction}
	}
	return band, p.advice.For(band), nil
}

// MayBeUndefined reports whether some valid input has no bucket or band.
func (p *RichProfile) MayBeUndefined() bool {
	if p.buckets != nil && !p.buckets.Total() {
		return true
	}
	return !p.thresholds.Total()
}

func (p *RichProfile) Bands() []Band {
	out := make([]Band, len(p.thresholds))
	for i, th := range p.thresholds {
		out[i] = th.Band
	}
	return out
}

// PlainProfile feeds the raw fields straight to the model.
type PlainProfile struct {
	baseProfile
}

func (p *PlainProfile) Shape() Shape { return ShapePlain }

func (p *PlainProfile) Arity() int { return len(p.fields) }

func (p *PlainProfile) Vector(values map[string]float64) ([]float64, error) {
	return p.raw(values), nil
}

func (p *PlainProfile) Classify(float64) (Band, []string, error) { return "", nil, nil }

func (p *PlainProfile) Bands() []Band { return nil }

// Registry maps case-folded crop ids to profiles and their compiled
// validators. It is built once and only read afterwards.
type Registry struct {
	profiles   map[string]Profile
	validators map[string]*validation.Validator
}

// NewRegistry compiles a validator for every profile. Ids must be unique
// after case folding.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{
		profiles:   make(map[string]Profile, len(profiles)),
		validators: make(map[string]*validation.Validator, len(profiles)),
	}
	for _, p := range profiles {
		id := strings.ToLower(p.ID())
		if _, dup := r.profiles[id]; dup {
			return nil, fmt.Errorf("duplicate profile for crop %q", id)
		}
		v, err := validation.NewValidator(p.Fields())
		if err != nil {
			return nil, fmt.Errorf("profile %s: %w", id, err)
		}
		r.profiles[id] = p
		r.validators[id] = v
	}
	return r, nil
}

// Lookup returns the profile registered for crop, ignoring case.
func (r *Registry) Lookup(crop string) (Profile, bool) {
	p, ok := r.profiles[strings.ToLower(crop)]
	return p, ok
}

func (r *Registry) validator(crop string) *validation.Validator {
	return r.validators[strings.ToLower(crop)]
}

// Profiles returns every registered profile sorted by id.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}
