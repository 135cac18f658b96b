package config

// Application constants
const (
	AppName    = "preprocesador"
	AppVersion = "1.0.0"

	// Environment
	EnvPrefix     = "PREP"
	EnvConfigFile = "PREP_CONFIG_FILE"

	// File paths (relative to the working directory)
	DefaultOutputDir = "output"
	DefaultPlotsDir  = "output/plots"
	DefaultLogsDir   = "logs"

	// Pipeline
	DefaultIQRFactor  = 1.5
	DefaultFilterMode = "sequential"

	// Ingestion and export
	DefaultPreviewRows = 5
	DefaultSheetName   = "Sheet1"

	// Visualization
	DefaultHistogramBins = 20

	// Log settings
	DefaultLogLevel = "info"
)

// DefaultMissingMarkers are the raw cell strings read as missing
var DefaultMissingMarkers = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL", "None"}
