// internal/workers/prediction/predict-crop-yield/config.go
package predictcropyield

import (
	"time"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg config.CamundaConfig) *Config {
	c := &Config{
		Timeout:       config.GetDuration(cfg.Timeout),
		MaxJobsActive: cfg.MaxJobsActive,
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxJobsActive <= 0 {
		c.MaxJobsActive = 10
	}
	return c
}
