package prediction

import (
	"testing"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	"github.com/Tesis-SiembraSmart/api-modelos/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	plainMaiz, err := PlainProfileFor(CropMaiz)
	require.NoError(t, err)

	cat, err := Catalog([]Profile{CacaoProfile(), CafeProfile(), plainMaiz}, func(crop string) string {
		if crop == CropCafe {
			return registry.StatusUnavailable
		}
		return registry.StatusLoaded
	})
	require.NoError(t, err)
	require.NoError(t, registry.Validate(cat))

	cacao, ok := cat.Find(CropCacao)
	require.True(t, ok)
	assert.Equal(t, "Cacao", cacao.Label)
	assert.Equal(t, 3, cacao.VectorArity)
	assert.Equal(t, []string{"bajo", "medio", "alto"}, cacao.Bands)
	assert.Equal(t, registry.StatusLoaded, cacao.Status)
	assert.NotContains(t, cacao.ErrorCodes, "CLASSIFICATION_UNDEFINED")

	cafe, ok := cat.Find(CropCafe)
	require.True(t, ok)
	assert.Equal(t, 14, cafe.VectorArity)
	assert.Equal(t, registry.StatusUnavailable, cafe.Status)
	assert.Contains(t, cafe.ErrorCodes, "CLASSIFICATION_UNDEFINED")

	maiz, ok := cat.Find(CropMaiz)
	require.True(t, ok)
	assert.Equal(t, "plain", maiz.Shape)
	assert.Equal(t, 12, maiz.VectorArity)
	assert.Empty(t, maiz.Bands)
}

func TestShapesFromConfig(t *testing.T) {
	shapes := ShapesFromConfig(map[string]config.ModelConfig{
		"cacao": {Shape: config.ShapeRich},
		"cafe":  {Shape: config.ShapePlain},
		"maiz":  {Shape: config.ShapeRich, Disabled: true},
	})
	assert.Equal(t, map[string]Shape{CropCacao: ShapeRich, CropCafe: ShapePlain}, shapes)
}
