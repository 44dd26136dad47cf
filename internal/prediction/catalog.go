package prediction

import (
	"time"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	apperrors "github.com/Tesis-SiembraSmart/api-modelos/internal/common/errors"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/validation"
	"github.com/Tesis-SiembraSmart/api-modelos/pkg/registry"
)

// CatalogVersion is bumped whenever a built-in profile changes.
const CatalogVersion = "1.0.0"

// ShapesFromConfig selects the profile shape of every enabled model.
func ShapesFromConfig(models map[string]config.ModelConfig) map[string]Shape {
	out := make(map[string]Shape, len(models))
	for crop, m := range models {
		if m.Disabled {
			continue
		}
		out[crop] = Shape(m.Shape)
	}
	return out
}

// Catalog describes profiles for publishing. status reports the engine
// state of a crop; nil marks every crop as configured.
func Catalog(profiles []Profile, status func(crop string) string) (*registry.CropCatalog, error) {
	cat := &registry.CropCatalog{
		Version:     CatalogVersion,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Crops:       make([]registry.CropEntry, 0, len(profiles)),
	}

	for _, p := range profiles {
		schema, err := validation.SchemaJSON(p.Fields())
		if err != nil {
			return nil, err
		}

		var bands []string
		for _, b := range p.Bands() {
			bands = append(bands, b.Label())
		}

		st := registry.StatusConfigured
		if status != nil {
			st = status(p.ID())
		}

		cat.Crops = append(cat.Crops, registry.CropEntry{
			ID:             p.ID(),
			Label:          p.Label(),
			Shape:          string(p.Shape()),
			RequiredFields: p.Fields(),
			VectorArity:    p.Arity(),
			Bands:          bands,
			InputSchema:    schema,
			ErrorCodes:     errorCodes(p),
			Status:         st,
		})
	}
	return cat, nil
}

func errorCodes(p Profile) []string {
	codes := []string{
		string(apperrors.ErrCodeUnsupportedCrop),
		string(apperrors.ErrCodeMissingFields),
		string(apperrors.ErrCodeInvalidParameters),
		string(apperrors.ErrCodeInferenceFailed),
	}
	if rich, ok := p.(*RichProfile); ok && rich.MayBeUndefined() {
		codes = append(codes, string(apperrors.ErrCodeClassificationUndefined))
	}
	return codes
}
