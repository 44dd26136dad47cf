// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig              `mapstructure:"app"`
	Server    ServerConfig           `mapstructure:"server"`
	Inference InferenceConfig        `mapstructure:"inference"`
	Models    map[string]ModelConfig `mapstructure:"models"`
	Cache     CacheConfig            `mapstructure:"cache"`
	Camunda   CamundaConfig          `mapstructure:"camunda"`
	Logging   LoggingConfig          `mapstructure:"logging"`
	Tracing   TracingConfig          `mapstructure:"tracing"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	Mode            string `mapstructure:"mode"`             // gin mode: debug, release, test
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// --- Inference ---

const (
	BackendONNX   = "onnx"
	BackendRemote = "remote"
)

type InferenceConfig struct {
	Backend string       `mapstructure:"backend"`
	ONNX    ONNXConfig   `mapstructure:"onnx"`
	Remote  RemoteConfig `mapstructure:"remote"`
}

type ONNXConfig struct {
	SharedLibraryPath string `mapstructure:"shared_library_path"`
}

type RemoteConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

const (
	ShapeRich  = "rich"
	ShapePlain = "plain"
)

// ModelConfig binds one crop to its model file and profile shape.
type ModelConfig struct {
	Disabled bool   `mapstructure:"disabled"`
	Path     string `mapstructure:"path"`
	Shape    string `mapstructure:"shape"`
}

// --- Cache ---

type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	TTL     int         `mapstructure:"ttl"` // milliseconds
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Workflow ---

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

const (
	TraceExporterNone   = "none"
	TraceExporterStdout = "stdout"
	TraceExporterOTLP   = "otlp"
)

// TracingConfig selects where spans are exported.
type TracingConfig struct {
	Exporter string `mapstructure:"exporter"` // none, stdout, otlp
	Endpoint string `mapstructure:"endpoint"` // host:port of the OTLP/HTTP collector
	Insecure bool   `mapstructure:"insecure"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// EnabledModels returns the crops whose model is not disabled.
func (c *Config) EnabledModels() map[string]ModelConfig {
	out := make(map[string]ModelConfig, len(c.Models))
	for crop, m := range c.Models {
		if !m.Disabled {
			out[crop] = m
		}
	}
	return out
}
