package prediction

import (
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/Tesis-SiembraSmart/api-modelos/internal/common/errors"
)

const (
	CropCacao = "cacao"
	CropCafe  = "cafe"
	CropMaiz  = "maiz"
)

var economicMeasures = []string{
	"hectare",
	"improved_hectare",
	"improved_cost",
	"hectare_fertilizer",
	"fertilizer_cost",
	"chemical_hectare",
	"chemical_cost",
	"machinery_hectare",
	"machinery_cost",
	"harvested",
	"sold_price",
	"harvest_loss",
}

var cacaoFields = []string{"Area_Sembrada", "Area_Cosechada", "Produccion"}

// EconomicFields returns the 12 economic measures with the given prefix.
func EconomicFields(prefix string) []string {
	out := make([]string, len(economicMeasures))
	for i, m := range economicMeasures {
		out[i] = prefix + "_" + m
	}
	return out
}

func yearAndEconomicFields(prefix string) []string {
	return append([]string{"Year"}, EconomicFields(prefix)...)
}

// bucketOf derives the quartile bucket from the four summed fields.
func bucketOf(crop, prefix string, values map[string]float64) (int, error) {
	hectare := values[prefix+"_hectare"]
	harvested := values[prefix+"_harvested"]
	soldPrice := values[prefix+"_sold_price"]
	loss := values[prefix+"_harvest_loss"]

	bucket, err := QuartileBucket(crop, hectare, harvested, soldPrice, loss)
	if errors.Is(err, ErrBucketUndefined) {
		return 0, &apperrors.ClassificationUndefinedError{
			Crop:  crop,
			Stage: StageQuartile,
			Value: FilterValue(hectare, harvested, soldPrice, loss),
		}
	}
	return bucket, err
}

// CacaoProfile: three raw fields, no derived features.
func CacaoProfile() *RichProfile {
	return &RichProfile{
		baseProfile: baseProfile{id: CropCacao, label: "Cacao", fields: cacaoFields},
		thresholds:  cacaoThresholds,
		advice:      cacaoAdvice,
	}
}

// CafeProfile: Year, the 12 coffee measures, then the quartile bucket.
func CafeProfile() *RichProfile {
	return &RichProfile{
		baseProfile: baseProfile{id: CropCafe, label: "Cafe", fields: yearAndEconomicFields("coffee")},
		derived:     1,
		buckets:     &CoffeeBuckets,
		derive: func(values map[string]float64, vec []float64) ([]float64, error) {
			bucket, err := bucketOf(CropCafe, "coffee", values)
			if err != nil {
				return nil, err
			}
			return append(vec, float64(bucket)), nil
		},
		thresholds: cafeThresholds,
		advice:     cafeAdvice,
	}
}

// MaizProfile: Year, the 12 maize measures, the filter sum, then the bucket.
func MaizProfile() *RichProfile {
	return &RichProfile{
		baseProfile: baseProfile{id: CropMaiz, label: "Maíz", fields: yearAndEconomicFields("maize")},
		derived:     2,
		buckets:     &MaizeBuckets,
		derive: func(values map[string]float64, vec []float64) ([]float64, error) {
			bucket, err := bucketOf(CropMaiz, "maize", values)
			if err != nil {
				return nil, err
			}
			filter := FilterValue(
				values["maize_hectare"],
				values["maize_harvested"],
				values["maize_sold_price"],
				values["maize_harvest_loss"],
			)
			return append(vec, filter, float64(bucket)), nil
		},
		thresholds: maizThresholds,
		advice:     maizAdvice,
	}
}

// PlainProfileFor returns the numeric-only profile of a built-in crop.
func PlainProfileFor(crop string) (*PlainProfile, error) {
	switch strings.ToLower(crop) {
	case CropCacao:
		return &PlainProfile{baseProfile{id: CropCacao, label: "Cacao", fields: cacaoFields}}, nil
	case CropCafe:
		return &PlainProfile{baseProfile{id: CropCafe, label: "Cafe", fields: EconomicFields("coffee")}}, nil
	case CropMaiz:
		return &PlainProfile{baseProfile{id: CropMaiz, label: "Maíz", fields: EconomicFields("maize")}}, nil
	default:
		return nil, fmt.Errorf("no built-in profile for crop %q", crop)
	}
}

// BuildProfile returns the built-in profile for crop in the requested shape.
func BuildProfile(crop string, shape Shape) (Profile, error) {
	if shape == ShapePlain {
		return PlainProfileFor(crop)
	}
	if shape != ShapeRich && shape != "" {
		return nil, fmt.Errorf("unknown profile shape %q", shape)
	}
	switch strings.ToLower(crop) {
	case CropCacao:
		return CacaoProfile(), nil
	case CropCafe:
		return CafeProfile(), nil
	case CropMaiz:
		return MaizProfile(), nil
	default:
		return nil, fmt.Errorf("no built-in profile for crop %q", crop)
	}
}

// DefaultProfiles returns the three built-in crops in their rich shape.
func DefaultProfiles() []Profile {
	return []Profile{CacaoProfile(), CafeProfile(), MaizProfile()}
}

// NewRegistryFromShapes builds a registry with one profile per crop in the
// given shape. Crops without a built-in profile are reported as an error.
func NewRegistryFromShapes(shapes map[string]Shape) (*Registry, error) {
	profiles := make([]Profile, 0, len(shapes))
	for crop, shape := range shapes {
		p, err := BuildProfile(crop, shape)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return NewRegistry(profiles...)
}
