package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	commonhttp "github.com/Tesis-SiembraSmart/api-modelos/internal/common/http"
)

type predictRequest struct {
	Instances [][]float64 `json:"instances"`
}

type predictResponse struct {
	Predictions []json.RawMessage `json:"predictions"`
}

// NewRemoteClient returns the HTTP client shared by remote engines.
func NewRemoteClient(timeout time.Duration) *commonhttp.Client {
	return commonhttp.NewClient(timeout)
}

// RemoteEngine calls a model server speaking the TensorFlow Serving style
// predict API: POST {base}/v1/models/{crop}:predict.
type RemoteEngine struct {
	crop     string
	endpoint string
	client   *commonhttp.Client
}

func NewRemoteEngine(baseURL, crop string, client *commonhttp.Client) (*RemoteEngine, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid remote base url %q", baseURL)
	}
	return &RemoteEngine{
		crop:     crop,
		endpoint: fmt.Sprintf("%s/v1/models/%s:predict", base.String(), url.PathEscape(crop)),
		client:   client,
	}, nil
}

func (e *RemoteEngine) Run(ctx context.Context, features []float64) (float64, error) {
	var resp predictResponse
	if err := e.client.PostJSON(ctx, e.endpoint, predictRequest{Instances: [][]float64{features}}, &resp); err != nil {
		return 0, fmt.Errorf("remote model %s: %w", e.crop, err)
	}
	if len(resp.Predictions) == 0 {
		return 0, fmt.Errorf("remote model %s: empty predictions", e.crop)
	}
	return firstScalar(resp.Predictions[0])
}

// Version is the predict endpoint; the model server owns versioning behind it.
func (e *RemoteEngine) Version() string {
	return e.endpoint
}

// firstScalar accepts either x or [x, ...] as a prediction entry.
func firstScalar(raw json.RawMessage) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	var row []float64
	if err := json.Unmarshal(raw, &row); err != nil {
		return 0, fmt.Errorf("decode prediction %s: %w", string(raw), err)
	}
	if len(row) == 0 {
		return 0, fmt.Errorf("empty prediction row")
	}
	return row[0], nil
}
