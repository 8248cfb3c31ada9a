package cli

import (
	"github.com/caarlos0/env/v11"

	"github.com/neurokit/triggerline/internal/dispatch"
)

// envDefaults are the environment-sourced flag defaults. Flags always win
// over environment values; the environment wins over the built-in defaults.
type envDefaults struct {
	Host     string `env:"TRIGGERLINE_HOST" envDefault:"127.0.0.1"`
	Port     int    `env:"TRIGGERLINE_PORT" envDefault:"5000"`
	Mappings string `env:"TRIGGERLINE_MAPPINGS"`
}

// endpointDefaults loads flag defaults from the environment. Unparseable
// values fall back to the built-in defaults rather than failing before flag
// parsing has a chance to run.
func endpointDefaults() envDefaults {
	defaults := envDefaults{Host: dispatch.DefaultHost, Port: dispatch.DefaultPort}
	if err := env.Parse(&defaults); err != nil {
		return envDefaults{Host: dispatch.DefaultHost, Port: dispatch.DefaultPort}
	}
	return defaults
}
