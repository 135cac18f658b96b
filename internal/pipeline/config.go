package pipeline

import (
	"fmt"

	"github.com/sofiagarciap/preprocesador-datos/internal/config"
	"github.com/sofiagarciap/preprocesador-datos/internal/dataprep"
)

// Config holds the tunables the stages read
type Config struct {
	// IQRFactor is the fence multiplier for outlier detection
	IQRFactor float64 `json:"iqr_factor"`

	// FilterMode selects sequential or snapshot outlier row filtering
	FilterMode dataprep.FilterMode `json:"filter_mode"`
}

// NewConfig returns the default pipeline configuration
func NewConfig() *Config {
	return &Config{
		IQRFactor:  dataprep.DefaultIQRFactor,
		FilterMode: dataprep.FilterSequential,
	}
}

// ConfigFrom builds the stage configuration from the application settings
func ConfigFrom(c config.PipelineConfig) *Config {
	cfg := NewConfig()
	if c.IQRFactor > 0 {
		cfg.IQRFactor = c.IQRFactor
	}
	if c.FilterMode != "" {
		cfg.FilterMode = dataprep.FilterMode(c.FilterMode)
	}
	return cfg
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.IQRFactor <= 0 {
		return fmt.Errorf("iqr factor must be positive, got %v", c.IQRFactor)
	}
	switch c.FilterMode {
	case dataprep.FilterSequential, dataprep.FilterSnapshot:
		return nil
	default:
		return fmt.Errorf("unknown outlier filter mode %q", c.FilterMode)
	}
}
