package config

import (
	"reflect"
	"strings"

	"github.com/spf13/viper"
)

// bindKnownKeys registers every mapstructure path of cfg with viper so
// AutomaticEnv can override keys that are absent from the config file.
func bindKnownKeys(v *viper.Viper, cfg interface{}) {
	t := reflect.TypeOf(cfg)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return
	}
	for _, key := range keyPaths(t, "") {
		_ = v.BindEnv(key)
	}
}

// keyPaths returns the dotted mapstructure keys of the leaf fields of t.
func keyPaths(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}

		if strings.Contains(opts, "squash") && ft.Kind() == reflect.Struct {
			keys = append(keys, keyPaths(ft, prefix)...)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if ft.Kind() == reflect.Struct {
			keys = append(keys, keyPaths(ft, path)...)
			continue
		}
		keys = append(keys, path)
	}
	return keys
}
