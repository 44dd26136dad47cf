package prediction

import (
	"testing"

	apperrors "github.com/Tesis-SiembraSmart/api-modelos/internal/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholds_Classify(t *testing.T) {
	tests := []struct {
		name  string
		table Thresholds
		value float64
		want  Band
		inGap bool
	}{
		{name: "cacao low", table: cacaoThresholds, value: 0.29, want: BandLow},
		{name: "cacao 0.3 is medium", table: cacaoThresholds, value: 0.3, want: BandMedium},
		{name: "cacao 0.69 is medium", table: cacaoThresholds, value: 0.69, want: BandMedium},
		{name: "cacao 0.7 is high", table: cacaoThresholds, value: 0.7, want: BandHigh},
		{name: "cafe low", table: cafeThresholds, value: 202.99, want: BandLow},
		{name: "cafe 203 has no band", table: cafeThresholds, value: 203, inGap: true},
		{name: "cafe 203.5 has no band", table: cafeThresholds, value: 203.5, inGap: true},
		{name: "cafe 204 is medium", table: cafeThresholds, value: 204, want: BandMedium},
		{name: "cafe 589 is medium", table: cafeThresholds, value: 589, want: BandMedium},
		{name: "cafe high", table: cafeThresholds, value: 589.01, want: BandHigh},
		{name: "maiz low", table: maizThresholds, value: 450.99, want: BandLow},
		{name: "maiz 451 is medium", table: maizThresholds, value: 451, want: BandMedium},
		{name: "maiz 1500 is medium", table: maizThresholds, value: 1500, want: BandMedium},
		{name: "maiz high", table: maizThresholds, value: 1500.5, want: BandHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.table.Classify(tt.value)
			if tt.inGap {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBand_Label(t *testing.T) {
	assert.Equal(t, "bajo", BandLow.Label())
	assert.Equal(t, "medio", BandMedium.Label())
	assert.Equal(t, "alto", BandHigh.Label())
	assert.Equal(t, "", Band("").Label())
}

func TestAdviceTables_Sizes(t *testing.T) {
	assert.Len(t, cacaoAdvice[BandLow], 4)
	assert.Len(t, cacaoAdvice[BandMedium], 3)
	assert.Len(t, cacaoAdvice[BandHigh], 3)
	for _, table := range []AdviceTable{cafeAdvice, maizAdvice} {
		for _, b := range []Band{BandLow, BandMedium, BandHigh} {
			assert.Len(t, table[b], 3)
		}
	}
}

func TestAdviceTable_ForReturnsCopy(t *testing.T) {
	tips := cacaoAdvice.For(BandLow)
	tips[0] = "mutated"
	assert.Equal(t, "Realiza análisis de suelo y añade materia orgánica.", cacaoAdvice[BandLow][0])
}

func TestProfiles_FieldsAndArity(t *testing.T) {
	cacao := CacaoProfile()
	assert.Equal(t, []string{"Area_Sembrada", "Area_Cosechada", "Produccion"}, cacao.Fields())
	assert.Equal(t, 3, cacao.Arity())
	assert.Equal(t, "Cacao", cacao.Label())

	cafe := CafeProfile()
	assert.Equal(t, []string{
		"Year",
		"coffee_hectare",
		"coffee_improved_hectare",
		"coffee_improved_cost",
		"coffee_hectare_fertilizer",
		"coffee_fertilizer_cost",
		"coffee_chemical_hectare",
		"coffee_chemical_cost",
		"coffee_machinery_hectare",
		"coffee_machinery_cost",
		"coffee_harvested",
		"coffee_sold_price",
		"coffee_harvest_loss",
	}, cafe.Fields())
	assert.Equal(t, 14, cafe.Arity())

	maiz := MaizProfile()
	assert.Len(t, maiz.Fields(), 13)
	assert.Equal(t, "maize_harvest_loss", maiz.Fields()[12])
	assert.Equal(t, 15, maiz.Arity())
	assert.Equal(t, "Maíz", maiz.Label())
	assert.Equal(t, []Band{BandLow, BandMedium, BandHigh}, maiz.Bands())
}

func TestPlainProfiles(t *testing.T) {
	cafe, err := PlainProfileFor("CAFE")
	require.NoError(t, err)
	assert.Equal(t, ShapePlain, cafe.Shape())
	assert.Equal(t, 12, cafe.Arity())
	assert.NotContains(t, cafe.Fields(), "Year")
	assert.Equal(t, "coffee_hectare", cafe.Fields()[0])

	band, advice, err := cafe.Classify(203.5)
	require.NoError(t, err)
	assert.Empty(t, band)
	assert.Nil(t, advice)
	assert.Nil(t, cafe.Bands())

	cacao, err := PlainProfileFor(CropCacao)
	require.NoError(t, err)
	assert.Equal(t, 3, cacao.Arity())

	_, err = PlainProfileFor("arroz")
	require.Error(t, err)
}

func TestRichProfile_ClassifyGap(t *testing.T) {
	_, _, err := CafeProfile().Classify(203.5)

	var undefined *apperrors.ClassificationUndefinedError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, CropCafe, undefined.Crop)
	assert.Equal(t, StageBand, undefined.Stage)
	assert.Equal(t, 203.5, undefined.Value)
}

func TestBuildProfile(t *testing.T) {
	p, err := BuildProfile("Maiz", ShapeRich)
	require.NoError(t, err)
	assert.Equal(t, ShapeRich, p.Shape())

	p, err = BuildProfile("maiz", ShapePlain)
	require.NoError(t, err)
	assert.Equal(t, ShapePlain, p.Shape())

	_, err = BuildProfile("maiz", Shape("fancy"))
	require.Error(t, err)

	_, err = BuildProfile("trigo", ShapeRich)
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(DefaultProfiles()...)
	require.NoError(t, err)

	p, ok := r.Lookup("CaCaO")
	require.True(t, ok)
	assert.Equal(t, CropCacao, p.ID())

	_, ok = r.Lookup("arroz")
	assert.False(t, ok)

	ids := []string{}
	for _, p := range r.Profiles() {
		ids = append(ids, p.ID())
	}
	assert.Equal(t, []string{CropCacao, CropCafe, CropMaiz}, ids)

	_, err = NewRegistry(CacaoProfile(), CacaoProfile())
	require.Error(t, err)
}

func TestNewRegistryFromShapes(t *testing.T) {
	r, err := NewRegistryFromShapes(map[string]Shape{
		CropCacao: ShapeRich,
		CropCafe:  ShapePlain,
	})
	require.NoError(t, err)

	p, ok := r.Lookup(CropCafe)
	require.True(t, ok)
	assert.Equal(t, ShapePlain, p.Shape())

	_, ok = r.Lookup(CropMaiz)
	assert.False(t, ok)

	_, err = NewRegistryFromShapes(map[string]Shape{"soja": ShapeRich})
	require.Error(t, err)
}

func TestRichProfile_MayBeUndefined(t *testing.T) {
	assert.False(t, CacaoProfile().MayBeUndefined())
	assert.True(t, CafeProfile().MayBeUndefined())
	assert.False(t, MaizProfile().MayBeUndefined())

	assert.True(t, maizThresholds.Total())
	assert.False(t, cafeThresholds.Total())
	assert.False(t, CoffeeBuckets.Total())
	assert.True(t, MaizeBuckets.Total())
}
