// Package envconf fills tagged config structs from the environment.
//
// Fields use caarlos0/env tags:
//
//	Port     uint16        `env:"APP_PORT" envDefault:"8080"`
//	DSN      string        `env:"PG_DSN,required"`
//	Timeout  time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
//
// Nested structs are walked without a prefix.
package envconf

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

var ErrMissingRequired = errors.New("missing required environment variable")

// Load parses the process environment into dst.
func Load(dst any) error {
	return parse(dst, env.Options{})
}

// LoadFrom parses vars instead of the process environment.
func LoadFrom(dst any, vars map[string]string) error {
	return parse(dst, env.Options{Environment: vars})
}

func parse(dst any, opts env.Options) error {
	err := env.ParseWithOptions(dst, opts)
	if err != nil {
		var agg env.AggregateError
		if errors.As(err, &agg) {
			for _, e := range agg.Errors {
				var missing env.VarIsNotSetError
				if errors.As(e, &missing) {
					return fmt.Errorf("%w: %s", ErrMissingRequired, missing.Key)
				}
			}
		}

		return fmt.Errorf("parse env: %w", err)
	}

	return nil
}
