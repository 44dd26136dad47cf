package inference

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/metrics"
)

// Registry maps crop ids to loaded engines. It is populated once by Load or
// NewRegistry and is read-only afterwards.
type Registry struct {
	engines  map[string]Engine
	releases []func() error
}

// NewRegistry wraps pre-built engines. Keys are case-folded.
func NewRegistry(engines map[string]Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine, len(engines))}
	for crop, e := range engines {
		r.engines[strings.ToLower(crop)] = e
	}
	return r
}

// Loader creates the engine for one crop.
type Loader func(ctx context.Context, crop string, model config.ModelConfig) (Engine, error)

// LoadWith builds a registry by calling load for every model. A crop whose
// engine fails to load is logged and left out.
func LoadWith(ctx context.Context, models map[string]config.ModelConfig, load Loader, log logger.Logger) *Registry {
	r := &Registry{engines: make(map[string]Engine, len(models))}

	crops := make([]string, 0, len(models))
	for crop := range models {
		crops = append(crops, crop)
	}
	sort.Strings(crops)

	for _, crop := range crops {
		engine, err := load(ctx, crop, models[crop])
		if err != nil {
			log.Error("failed to load inference engine", map[string]interface{}{
				"crop":  crop,
				"path":  models[crop].Path,
				"error": err.Error(),
			})
			continue
		}
		r.engines[strings.ToLower(crop)] = engine
		log.Info("inference engine loaded", map[string]interface{}{"crop": crop})
	}

	metrics.EnginesLoaded.Set(float64(len(r.engines)))
	return r
}

// Load creates one engine per enabled model using the configured backend.
// Backend-wide initialisation failures yield an empty registry, not an error,
// so the process can still start and report every crop as unsupported.
func Load(ctx context.Context, cfg *config.Config, log logger.Logger) (*Registry, error) {
	log = log.WithFields(map[string]interface{}{"component": "inference", "backend": cfg.Inference.Backend})
	models := cfg.EnabledModels()

	switch cfg.Inference.Backend {
	case config.BackendONNX:
		if err := initONNXRuntime(cfg.Inference.ONNX.SharedLibraryPath); err != nil {
			log.Error("onnx runtime unavailable, no crop can be served", map[string]interface{}{"error": err.Error()})
			metrics.EnginesLoaded.Set(0)
			return NewRegistry(nil), nil
		}
		r := LoadWith(ctx, models, func(_ context.Context, _ string, m config.ModelConfig) (Engine, error) {
			return NewONNXEngine(m.Path)
		}, log)
		r.releases = append(r.releases, destroyONNXRuntime)
		return r, nil

	case config.BackendRemote:
		remote := cfg.Inference.Remote
		client := NewRemoteClient(config.GetDuration(remote.Timeout))
		return LoadWith(ctx, models, func(_ context.Context, crop string, _ config.ModelConfig) (Engine, error) {
			return NewRemoteEngine(remote.BaseURL, crop, client)
		}, log), nil

	default:
		return nil, fmt.Errorf("unknown inference backend %q", cfg.Inference.Backend)
	}
}

// Engine returns the engine for crop, ignoring case.
func (r *Registry) Engine(crop string) (Engine, bool) {
	e, ok := r.engines[strings.ToLower(crop)]
	return e, ok
}

// Crops returns the crops with a loaded engine, sorted.
func (r *Registry) Crops() []string {
	out := make([]string, 0, len(r.engines))
	for crop := range r.engines {
		out = append(out, crop)
	}
	sort.Strings(out)
	return out
}

// Close releases every engine that holds resources, then the backend itself.
func (r *Registry) Close() error {
	var firstErr error
	for _, crop := range r.Crops() {
		if c, ok := r.engines[crop].(io.Closer); ok {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close engine %s: %w", crop, err)
			}
		}
	}
	for _, release := range r.releases {
		if err := release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.releases = nil
	return firstErr
}
