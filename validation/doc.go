// Package validation validates configuration structs with struct tags using
// go-playground/validator.
//
// Field names in errors follow the mapstructure tags, so a failure reads the
// same way as the config file:
//
//	type DependenciesConfig struct {
//	    Mode string `mapstructure:"mode" validate:"omitempty,oneof=live preview test"`
//	}
//	err := validation.Validate(cfg) // "dependencies.mode: must be one of: live preview test"
package validation
