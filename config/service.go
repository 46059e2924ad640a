package config

import (
	"fmt"

	"github.com/kbukum/depkit/errors"
	"github.com/kbukum/depkit/logger"
	"github.com/kbukum/depkit/validation"
)

// ServiceConfig contains the configuration a process needs to build its root
// dependency scope. Projects extend it by embedding it in their own structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Billing BillingConfig `yaml:"billing" mapstructure:"billing"`
//	}
type ServiceConfig struct {
	Name         string             `yaml:"name" mapstructure:"name" validate:"required"`
	Environment  string             `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version      string             `yaml:"version" mapstructure:"version"`
	Dependencies DependenciesConfig `yaml:"dependencies" mapstructure:"dependencies"`
	Logging      logger.Config      `yaml:"logging" mapstructure:"logging"`
	Telemetry    TelemetryConfig    `yaml:"telemetry" mapstructure:"telemetry"`
}

// DependenciesConfig configures the root dependency scope.
type DependenciesConfig struct {
	// Mode forces the root mode. Empty means detect: DEPKIT_MODE, then
	// test when running under `go test`, otherwise live.
	Mode string `yaml:"mode" mapstructure:"mode" validate:"omitempty,oneof=live preview test"`
	// Diagnostics toggles misuse reports at runtime. Builds with the
	// release tag never report regardless of this flag.
	Diagnostics *bool `yaml:"diagnostics" mapstructure:"diagnostics"`
	// Reporter selects the diagnostic sink.
	Reporter string `yaml:"reporter" mapstructure:"reporter" validate:"oneof=log silent"`
}

// DiagnosticsEnabled returns the effective diagnostics switch.
func (c *DependenciesConfig) DiagnosticsEnabled() bool {
	return c.Diagnostics == nil || *c.Diagnostics
}

// TelemetryConfig configures OpenTelemetry export of resolution spans and
// metrics.
type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// GetServiceConfig returns the base ServiceConfig.
// When embedded in a larger config struct, this method is promoted
// so the embedding struct automatically satisfies bootstrap.Config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig {
	return c
}

// ApplyDefaults applies default values to the configuration.
// Override this in embedding structs and call c.ServiceConfig.ApplyDefaults() first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Dependencies.Reporter == "" {
		c.Dependencies.Reporter = "log"
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	// Propagate service name into logging so Init() uses the right tag.
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the configuration.
// Override this in embedding structs and call c.ServiceConfig.Validate() first.
func (c *ServiceConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return errors.InvalidConfig("service", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return errors.InvalidConfig("logging", err)
	}
	if c.Environment == "production" && c.Dependencies.Mode == "test" {
		return errors.InvalidConfig("dependencies", fmt.Errorf("mode 'test' is not allowed in production"))
	}
	return nil
}
