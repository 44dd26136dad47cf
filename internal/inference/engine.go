// Package inference loads and addresses the per-crop model engines.
package inference

import (
	"context"
)

// Engine evaluates one feature row and returns the scalar prediction.
// Implementations must be safe for concurrent use.
type Engine interface {
	Run(ctx context.Context, features []float64) (float64, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, features []float64) (float64, error)

func (f EngineFunc) Run(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

// Versioned is implemented by engines that can name the model they serve.
// The version changes whenever the underlying model does.
type Versioned interface {
	Version() string
}
