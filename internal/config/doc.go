// Package config provides centralized configuration management for stockpulse.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern STOCKPULSE_<SECTION>_<FIELD>:
//
//	STOCKPULSE_SERVER_PORT=8080
//	STOCKPULSE_INGEST_CONVENTION=zero
//	STOCKPULSE_INGEST_SUPPRESS_EMPTY=true
//	STOCKPULSE_LOGGING_LEVEL=debug
//
// STOCKPULSE_CONFIG_FILE points at the YAML file; otherwise stockpulse.yaml
// and configs/stockpulse.yaml are tried.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
