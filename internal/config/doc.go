// Package config loads the preprocessing tool's configuration.
//
// # Configuration Sources
//
// Configuration is built from the following sources, later ones winning:
//
//	1. Default values
//	2. A YAML file (--config flag, PREP_CONFIG_FILE, or preprocesador.yaml)
//	3. Environment variables
//
// # Environment Variables
//
// Variables follow the pattern PREP_<SECTION>_<KEY>:
//
//	PREP_LOGGING_LEVEL=debug
//	PREP_PIPELINE_IQR_FACTOR=3
//	PREP_PIPELINE_FILTER_MODE=snapshot
//	PREP_INGEST_MISSING_MARKERS=,NA,?
//	PREP_TELEMETRY_METRICS=true
//
// # Validation
//
// The merged configuration is validated with struct tags; an invalid value
// names the offending field:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	paths, err := cfg.ResolvePaths("")
package config
