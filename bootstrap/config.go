package bootstrap

import (
	"github.com/kbukum/depkit/config"
)

// Config is the constraint NewApp places on application configuration.
//
// Embed config.ServiceConfig by value with mapstructure squash, so its keys
// (name, environment, dependencies, logging, telemetry) sit at the top level
// of the config file next to the application's own sections. The pointer
// to the embedding struct then satisfies Config through promoted methods,
// and NewApp reads the dependencies section to build the root scope.
//
//	type BillingConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Billing BillingSection `yaml:"billing" mapstructure:"billing"`
//	}
//
//	var cfg BillingConfig
//	err := config.LoadConfig("billing", &cfg)
//	app, err := bootstrap.NewApp(&cfg)
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
