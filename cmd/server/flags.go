package main

import (
	"feedback-backend/internal/config"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func bindGlobalFlags(cmd *cobra.Command) {
	fs := cmd.PersistentFlags()
	fs.StringVar(&logLevel, "log-level", logLevel,
		"Log level (trace,debug,info,warn,error); overrides LOG_LEVEL")
	fs.StringVar(&configPath, "config", configPath,
		"Optional YAML config file; environment variables take precedence")
}

// loadConfig reads the configuration and applies its log level unless
// --log-level was given explicitly.
func loadConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, errors.WithMessage(err, "could not load configuration")
	}

	if f := fs.Lookup("log-level"); f == nil || !f.Changed {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid LOG_LEVEL %q", cfg.LogLevel)
		}
		log.SetLevel(level)
	}
	return cfg, nil
}
