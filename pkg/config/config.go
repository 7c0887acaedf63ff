// Package config wires file, environment and flag configuration together.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds the runtime settings shared by the CLI and the server.
type Config struct {
	// ProfilesPath optionally points at a YAML bank-profile table; empty
	// means the builtin profiles.
	ProfilesPath string `mapstructure:"profiles"`
	// LedgerPath is the accounting workbook used by the cutover step.
	LedgerPath string `mapstructure:"ledger"`
	// OutputDir is where merged workbooks are written.
	OutputDir string `mapstructure:"output"`
	// ListenAddr is the HTTP server bind address.
	ListenAddr string `mapstructure:"listen"`
}

// Build loads configuration in precedence order: defaults, config file,
// SAOKE_* environment variables, then command-line flags. A missing config
// file is fine; a malformed one is not.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// Best effort: a .env file is a developer convenience, not a
	// requirement.
	_ = gotenv.Load()

	v := viper.New()
	v.SetDefault("profiles", "")
	v.SetDefault("ledger", "ledger.xlsx")
	v.SetDefault("output", ".")
	v.SetDefault("listen", "0.0.0.0:3000")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// Only the implicit config.yaml is allowed to be absent.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix("SAOKE")
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
