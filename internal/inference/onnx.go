package inference

import (
	"context"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
)

func initONNXRuntime(sharedLibraryPath string) error {
	if sharedLibraryPath != "" {
		ort.SetSharedLibraryPath(sharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

func destroyONNXRuntime() error {
	return ort.DestroyEnvironment()
}

// ONNXEngine runs a single-input, single-output regression model. The model
// must take a float32 [1, n] tensor and produce a float32 [1, 1] tensor.
type ONNXEngine struct {
	path    string
	version string
	session *ort.DynamicAdvancedSession
}

// NewONNXEngine opens a session on the model at path. The runtime
// environment must already be initialised.
func NewONNXEngine(path string) (*ONNXEngine, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat model %s: %w", path, err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(path)
	if err != nil {
		return nil, fmt.Errorf("inspect model %s: %w", path, err)
	}
	if len(inputs) != 1 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s: expected 1 input and at least 1 output, got %d and %d",
			path, len(inputs), len(outputs))
	}

	session, err := ort.NewDynamicAdvancedSession(path,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}
	return &ONNXEngine{
		path:    path,
		version: fmt.Sprintf("%s@%d", path, info.ModTime().UnixNano()),
		session: session,
	}, nil
}

func (e *ONNXEngine) Run(ctx context.Context, features []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	row := make([]float32, len(features))
	for i, f := range features {
		row[i] = float32(f)
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(row))), row)
	if err != nil {
		return 0, fmt.Errorf("input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return 0, fmt.Errorf("output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return 0, fmt.Errorf("run %s: %w", e.path, err)
	}

	data := output.GetData()
	if len(data) == 0 {
		return 0, fmt.Errorf("run %s: empty output", e.path)
	}
	return float64(data[0]), nil
}

// Version is the model path plus its modification time at load.
func (e *ONNXEngine) Version() string {
	return e.version
}

func (e *ONNXEngine) Close() error {
	return e.session.Destroy()
}
