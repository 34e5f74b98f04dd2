// Package config provides centralized configuration management for the
// fraud-transaction cleaning pipeline. It handles loading configuration from
// multiple sources, validation, and path resolution for every file the tool
// reads or writes.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FRAUDCLI_* for namespacing:
//
//	FRAUDCLI_PIPELINE_INPUT_FILE=data/df_fraud_credit.csv
//	FRAUDCLI_PIPELINE_CLEANED_FILE=data/df_fraud_credit_cleaned.csv
//	FRAUDCLI_LOGGING_LEVEL=debug
//	FRAUDCLI_TELEMETRY_ENABLED=true
//
// # Validation
//
// All configuration is validated at load time with go-playground/validator
// struct tags plus cross-field checks, so a misconfigured run fails before
// any data is touched.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
