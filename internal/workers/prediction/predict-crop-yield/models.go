// internal/workers/prediction/predict-crop-yield/models.go
package predictcropyield

import "github.com/Tesis-SiembraSmart/api-modelos/internal/prediction"

type Input struct {
	CropType   string                 `json:"cropType"`
	Parameters map[string]interface{} `json:"parameters"`
}

type Output struct {
	Prediction prediction.Response `json:"prediction"`
	Crop       string              `json:"crop"`
	Band       string              `json:"band,omitempty"`
	RequestID  string              `json:"predictionRequestId"`
}
