package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Runtime holds simsvc settings. Environment variables are read first and
// flags override them.
type Runtime struct {
	Battle       string `env:"SIM_BATTLE"        envDefault:"assets/battle.yaml"`
	Out          string `env:"SIM_OUT"           envDefault:"out.json"`
	Runs         int    `env:"SIM_RUNS"          envDefault:"1"`
	Workers      int    `env:"SIM_WORKERS"       envDefault:"8"`
	Seed         int64  `env:"SIM_SEED"`
	Record       bool   `env:"SIM_RECORD"        envDefault:"true"`
	LogLevel     string `env:"LOG_LEVEL"         envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT"        envDefault:"text"`
	OTLPEndpoint string `env:"SIM_OTLP_ENDPOINT"`
	ServiceName  string `env:"SIM_SERVICE_NAME"  envDefault:"heic-simsvc"`
}

// ParseRuntime parses env then flags into a Runtime.
func ParseRuntime(fs *flag.FlagSet, args []string) (Runtime, error) {
	var cfg Runtime
	if err := env.Parse(&cfg); err != nil {
		return Runtime{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.Battle, "battle", cfg.Battle, "battle yaml file")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "output file (single) or summary file (batch)")
	fs.IntVar(&cfg.Runs, "n", cfg.Runs, "number of simulations")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "batch worker count")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed, 0 uses the battle file's seed")
	fs.BoolVar(&cfg.Record, "log", cfg.Record, "save full transcript when n==1")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text or json)")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp", cfg.OTLPEndpoint, "OTLP/HTTP trace endpoint, empty disables tracing")
	if err := fs.Parse(args); err != nil {
		return Runtime{}, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, nil
}
