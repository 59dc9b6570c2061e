package main

import (
	"time"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/MasterOfBinary/debounce/batch"
)

// Config is the resolved configuration of a run.
type Config struct {
	Delay       time.Duration
	Flatten     bool
	LogLevel    zapcore.Level
	MetricsAddr string
}

// fileConfig is the TOML layout of the --config file. Every key is optional.
type fileConfig struct {
	Delay       string `toml:"delay"`
	Flatten     *bool  `toml:"flatten"`
	LogLevel    string `toml:"log_level"`
	MetricsAddr string `toml:"metrics_addr"`
}

// Flags holds the raw command line flags.
type Flags struct {
	Config      string
	Delay       time.Duration
	Flatten     bool
	LogLevel    string
	MetricsAddr string
}

func (f *Flags) register(fl *pflag.FlagSet) {
	fl.StringVar(&f.Config, "config", "", "Path to a TOML configuration file")
	fl.DurationVar(&f.Delay, "delay", batch.DefaultDelay, "Maximum gap between lines of the same batch")
	fl.BoolVar(&f.Flatten, "flatten", false, "Split lines on whitespace and batch the words")
	fl.StringVar(&f.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fl.StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
}

// Validate checks the resolved configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Delay, validation.Required, validation.Min(time.Nanosecond)),
	)
}

// loadConfig merges the config file, if any, with the flags. Flags that were
// set explicitly win over file values.
func loadConfig(f *Flags, fl *pflag.FlagSet) (Config, error) {
	var fc fileConfig
	if f.Config != "" {
		if _, err := toml.DecodeFile(f.Config, &fc); err != nil {
			return Config{}, errors.Wrapf(err, "failed to load config %s", f.Config)
		}
	}

	cfg := Config{
		Delay:       f.Delay,
		Flatten:     f.Flatten,
		MetricsAddr: f.MetricsAddr,
	}
	logLevel := f.LogLevel

	if fc.Delay != "" && !fl.Changed("delay") {
		d, err := time.ParseDuration(fc.Delay)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid delay %q", fc.Delay)
		}
		cfg.Delay = d
	}
	if fc.Flatten != nil && !fl.Changed("flatten") {
		cfg.Flatten = *fc.Flatten
	}
	if fc.LogLevel != "" && !fl.Changed("log-level") {
		logLevel = fc.LogLevel
	}
	if fc.MetricsAddr != "" && !fl.Changed("metrics-addr") {
		cfg.MetricsAddr = fc.MetricsAddr
	}

	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid log level")
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}
