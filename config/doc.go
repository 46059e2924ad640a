// Package config loads depkit service configuration.
//
// It uses Viper to read a YAML/JSON/TOML file, loads an optional .env file
// with godotenv, and lets environment variables override file values using
// the service prefix with underscore-separated paths
// (e.g. BILLING_DEPENDENCIES_MODE=preview).
//
// # Usage
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("billing", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
