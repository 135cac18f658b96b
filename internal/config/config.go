package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/sofiagarciap/preprocesador-datos/internal/validation"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Ingest    IngestConfig    `yaml:"ingest" envconfig:"INGEST"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Visualize VisualizeConfig `yaml:"visualize" envconfig:"VISUALIZE"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PipelineConfig contains the stage tunables
type PipelineConfig struct {
	IQRFactor  float64 `yaml:"iqr_factor" envconfig:"IQR_FACTOR" validate:"gt=0"`
	FilterMode string  `yaml:"filter_mode" envconfig:"FILTER_MODE" validate:"oneof=sequential snapshot"`
}

// IngestConfig controls how source files are read
type IngestConfig struct {
	MissingMarkers []string `yaml:"missing_markers" envconfig:"MISSING_MARKERS"`
	Delimiter      string   `yaml:"delimiter" envconfig:"DELIMITER" validate:"len=1"`
	Sheet          string   `yaml:"sheet" envconfig:"SHEET"`
	Table          string   `yaml:"table" envconfig:"TABLE"`
	PreviewRows    int      `yaml:"preview_rows" envconfig:"PREVIEW_ROWS" validate:"min=0,max=100"`
}

// ExportConfig controls exported files
type ExportConfig struct {
	BOM   bool   `yaml:"bom" envconfig:"BOM"`
	Sheet string `yaml:"sheet" envconfig:"SHEET" validate:"required,max=31"`
}

// VisualizeConfig controls rendered plots
type VisualizeConfig struct {
	Bins        int `yaml:"bins" envconfig:"BINS" validate:"min=1,max=500"`
	Width       int `yaml:"width" envconfig:"WIDTH" validate:"min=100"`
	Height      int `yaml:"height" envconfig:"HEIGHT" validate:"min=100"`
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=64"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	PlotsDir  string `yaml:"plots_dir" envconfig:"PLOTS_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Tracing     bool   `yaml:"tracing" envconfig:"TRACING"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	Metrics     bool   `yaml:"metrics" envconfig:"METRICS"`
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE" validate:"required_if=Metrics true"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (or PREP_CONFIG_FILE when path is empty), then PREP_* environment
// variables, and validates the result
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current values
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	return nil
}

// findConfigFile returns the first config file found in the usual places
func findConfigFile() string {
	for _, location := range []string{"preprocesador.yaml", "configs/preprocesador.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Validate checks every section and normalizes the logging level
func (c *Config) Validate() error {
	if err := validation.Struct("configuration", c); err != nil {
		return err
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   "json",
			Output:   "console",
			FilePath: "logs/preprocesador.log",
		},
		Pipeline: PipelineConfig{
			IQRFactor:  DefaultIQRFactor,
			FilterMode: DefaultFilterMode,
		},
		Ingest: IngestConfig{
			MissingMarkers: append([]string(nil), DefaultMissingMarkers...),
			Delimiter:      ",",
			PreviewRows:    DefaultPreviewRows,
		},
		Export: ExportConfig{
			Sheet: DefaultSheetName,
		},
		Visualize: VisualizeConfig{
			Bins:        DefaultHistogramBins,
			Width:       800,
			Height:      600,
			Concurrency: 4,
		},
		Paths: PathsConfig{
			OutputDir: DefaultOutputDir,
			PlotsDir:  DefaultPlotsDir,
			LogsDir:   DefaultLogsDir,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			MetricsFile: "logs/metrics.prom",
		},
	}
}
