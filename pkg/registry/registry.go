// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xeipuuv/gojsonschema"
)

func LoadCatalog(path string) (*CropCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cat CropCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return &cat, nil
}

// SaveCatalog writes cat as indented JSON, creating parent directories.
func SaveCatalog(cat *CropCatalog, path string) error {
	data, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// Validate checks ids are unique and every entry is self-consistent: the
// input schema compiles and requires exactly the listed fields.
func Validate(cat *CropCatalog) error {
	if len(cat.Crops) == 0 {
		return fmt.Errorf("catalog contains no crops")
	}

	ids := make(map[string]bool, len(cat.Crops))
	for _, crop := range cat.Crops {
		if crop.ID == "" {
			return fmt.Errorf("crop missing required field: id")
		}
		if ids[crop.ID] {
			return fmt.Errorf("duplicate crop id: %s", crop.ID)
		}
		ids[crop.ID] = true

		if crop.Label == "" {
			return fmt.Errorf("crop %s missing required field: label", crop.ID)
		}
		if len(crop.RequiredFields) == 0 {
			return fmt.Errorf("crop %s has no required fields", crop.ID)
		}
		if crop.VectorArity < len(crop.RequiredFields) {
			return fmt.Errorf("crop %s: vector arity %d is smaller than its %d required fields",
				crop.ID, crop.VectorArity, len(crop.RequiredFields))
		}
		if err := validateSchema(crop); err != nil {
			return fmt.Errorf("crop %s: %w", crop.ID, err)
		}
	}
	return nil
}

func validateSchema(crop CropEntry) error {
	if len(crop.InputSchema) == 0 {
		return fmt.Errorf("missing input schema")
	}
	if _, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(crop.InputSchema)); err != nil {
		return fmt.Errorf("input schema does not compile: %w", err)
	}

	var doc struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(crop.InputSchema, &doc); err != nil {
		return fmt.Errorf("decode input schema: %w", err)
	}
	if len(doc.Required) != len(crop.RequiredFields) {
		return fmt.Errorf("input schema requires %d fields, entry lists %d", len(doc.Required), len(crop.RequiredFields))
	}
	for i, name := range crop.RequiredFields {
		if doc.Required[i] != name {
			return fmt.Errorf("input schema field %d is %q, entry lists %q", i, doc.Required[i], name)
		}
	}
	return nil
}
