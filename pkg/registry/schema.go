// pkg/registry/schema.go
package registry

import "encoding/json"

// CropCatalog describes every crop the service is configured to predict.
type CropCatalog struct {
	Version     string      `json:"version"`
	LastUpdated string      `json:"lastUpdated"`
	TaskType    string      `json:"taskType,omitempty"`
	Crops       []CropEntry `json:"crops"`
}

// Engine states reported per crop.
const (
	StatusConfigured  = "configured"
	StatusLoaded      = "loaded"
	StatusUnavailable = "unavailable"
)

type CropEntry struct {
	ID             string          `json:"id"`
	Label          string          `json:"label"`
	Shape          string          `json:"shape"`
	RequiredFields []string        `json:"requiredFields"`
	VectorArity    int             `json:"vectorArity"`
	Bands          []string        `json:"bands,omitempty"`
	InputSchema    json.RawMessage `json:"inputSchema"`
	ErrorCodes     []string        `json:"errorCodes"`
	Status         string          `json:"status"`
}

// Find returns the entry for id.
func (c *CropCatalog) Find(id string) (*CropEntry, bool) {
	for i := range c.Crops {
		if c.Crops[i].ID == id {
			return &c.Crops[i], true
		}
	}
	return nil, false
}
