// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.

// Package config resolves run settings from flags, NOVELDL_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	KeyConcurrency = "concurrency"
	KeyOutput      = "output"
	KeyUserAgent   = "user-agent"
	KeyVerbose     = "verbose"
)

type Config struct {
	// Zero means the source's own default.
	Concurrency int    `mapstructure:"concurrency"`
	Output      string `mapstructure:"output"`
	UserAgent   string `mapstructure:"user-agent"`
	Verbose     bool   `mapstructure:"verbose"`
}

// Load builds the configuration. cfgFile may be empty, in which case
// ./noveldl.yaml and $HOME/.noveldl/noveldl.yaml are tried; a missing file is
// not an error. flags may be nil.
func Load(flags *pflag.FlagSet, cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyConcurrency, 0)
	v.SetDefault(KeyOutput, "")
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix("NOVELDL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("noveldl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.noveldl")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		for _, key := range []string{KeyConcurrency, KeyOutput, KeyUserAgent, KeyVerbose} {
			if f := flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Concurrency < 0 {
		cfg.Concurrency = 0
	}
	return &cfg, nil
}
