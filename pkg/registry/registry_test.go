package registry

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntry(id string) CropEntry {
	return CropEntry{
		ID:             id,
		Label:          "Cacao",
		Shape:          "rich",
		RequiredFields: []string{"Area_Sembrada", "Produccion"},
		VectorArity:    2,
		InputSchema: json.RawMessage(`{"type":"object","required":["Area_Sembrada","Produccion"],
			"properties":{"Area_Sembrada":{"type":"number"},"Produccion":{"type":"number"}}}`),
		Status: StatusConfigured,
	}
}

func TestSaveAndLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.json")
	cat := &CropCatalog{Version: "1.0.0", Crops: []CropEntry{validEntry("cacao")}}

	require.NoError(t, SaveCatalog(cat, path))

	loaded, err := LoadCatalog(path)
	require.NoError(t, err)
	require.NoError(t, Validate(loaded))

	entry, ok := loaded.Find("cacao")
	require.True(t, ok)
	assert.Equal(t, 2, entry.VectorArity)

	_, ok = loaded.Find("cafe")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *CropCatalog)
		errContains string
	}{
		{name: "empty", mutate: func(c *CropCatalog) { c.Crops = nil }, errContains: "no crops"},
		{name: "duplicate", mutate: func(c *CropCatalog) { c.Crops = append(c.Crops, validEntry("cacao")) }, errContains: "duplicate"},
		{name: "missing label", mutate: func(c *CropCatalog) { c.Crops[0].Label = "" }, errContains: "label"},
		{name: "arity too small", mutate: func(c *CropCatalog) { c.Crops[0].VectorArity = 1 }, errContains: "arity"},
		{name: "broken schema", mutate: func(c *CropCatalog) { c.Crops[0].InputSchema = json.RawMessage(`{"type":12}`) }, errContains: "compile"},
		{
			name: "schema field mismatch",
			mutate: func(c *CropCatalog) {
				c.Crops[0].RequiredFields = []string{"Produccion", "Area_Sembrada"}
			},
			errContains: "field 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat := &CropCatalog{Crops: []CropEntry{validEntry("cacao")}}
			tt.mutate(cat)
			err := Validate(cat)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestLoadCatalog_Missing(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
}
