// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on top
// and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // env overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it
// (SERVER_ADDRESS, INFERENCE_BACKEND, CACHE_ENABLED, ...).
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "crop-yield-api")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10000)
	v.SetDefault("server.write_timeout", 10000)
	v.SetDefault("server.shutdown_timeout", 30000)

	v.SetDefault("inference.backend", BackendONNX)
	v.SetDefault("inference.onnx.shared_library_path", "")
	v.SetDefault("inference.remote.base_url", "")
	v.SetDefault("inference.remote.timeout", 5000)

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.ttl", 3600000)
	v.SetDefault("cache.redis.address", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("camunda.enabled", false)
	v.SetDefault("camunda.broker_address", "")
	v.SetDefault("camunda.max_jobs_active", 10)
	v.SetDefault("camunda.timeout", 30000)
	v.SetDefault("camunda.request_timeout", 30000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("tracing.exporter", TraceExporterNone)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", false)
}

// loadEnvFile loads .env from the working directory, its parents or the
// module root, whichever is found first.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override for values commonly injected by the platform.
func overrideEmptyConfig(cfg *Config) {
	if val := os.Getenv("PORT"); val != "" {
		cfg.Server.Address = ":" + val
	}
	if cfg.Inference.ONNX.SharedLibraryPath == "" {
		if val := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); val != "" {
			cfg.Inference.ONNX.SharedLibraryPath = val
		}
	}
	if cfg.Cache.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Cache.Redis.Password = val
		}
	}
}

// DefaultModels mirrors the model files shipped with the service.
func DefaultModels() map[string]ModelConfig {
	return map[string]ModelConfig{
		"cacao": {Path: "rf_model_cacao.onnx", Shape: ShapeRich},
		"cafe":  {Path: "rf_model_cafe.onnx", Shape: ShapeRich},
		"maiz":  {Path: "rf_model_maiz.onnx", Shape: ShapeRich},
	}
}

// applyDefaults fills values viper defaults cannot express.
func applyDefaults(cfg *Config) {
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels()
	}

	normalized := make(map[string]ModelConfig, len(cfg.Models))
	for crop, m := range cfg.Models {
		if m.Shape == "" {
			m.Shape = ShapeRich
		}
		normalized[strings.ToLower(crop)] = m
	}
	cfg.Models = normalized

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 3600000
	}
	cfg.Tracing.Exporter = strings.ToLower(cfg.Tracing.Exporter)
	if cfg.Tracing.Exporter == "" {
		cfg.Tracing.Exporter = TraceExporterNone
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server.address is required")
	}

	switch cfg.Inference.Backend {
	case BackendONNX:
		for crop, m := range cfg.EnabledModels() {
			if m.Path == "" {
				return fmt.Errorf("models.%s.path is required for the onnx backend", crop)
			}
		}
	case BackendRemote:
		if cfg.Inference.Remote.BaseURL == "" {
			return fmt.Errorf("inference.remote.base_url is required for the remote backend")
		}
	default:
		return fmt.Errorf("inference.backend must be %q or %q, got %q", BackendONNX, BackendRemote, cfg.Inference.Backend)
	}

	for crop, m := range cfg.Models {
		if m.Shape != ShapeRich && m.Shape != ShapePlain {
			return fmt.Errorf("models.%s.shape must be %q or %q, got %q", crop, ShapeRich, ShapePlain, m.Shape)
		}
	}

	if cfg.Cache.Enabled && cfg.Cache.Redis.Address == "" {
		return fmt.Errorf("cache.redis.address is required when cache is enabled")
	}

	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	switch cfg.Tracing.Exporter {
	case TraceExporterNone, TraceExporterStdout:
	case TraceExporterOTLP:
		if cfg.Tracing.Endpoint == "" {
			return fmt.Errorf("tracing.endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("tracing.exporter must be %q, %q or %q, got %q",
			TraceExporterNone, TraceExporterStdout, TraceExporterOTLP, cfg.Tracing.Exporter)
	}

	return nil
}
