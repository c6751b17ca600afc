// Package config loads the partitioner's two tunable knobs (trial count and
// wall-clock budget) and its logging settings from an optional YAML file or
// environment variables, defaulting to the source algorithm's literal
// constants when nothing is configured.
package config

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// durationHook lets viper unmarshal "50s"-style strings, as well as
// plain time.Duration values set via setDefaults, into time.Duration fields.
func durationHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.StringToTimeDurationHookFunc())
}

// defaultBudget is the wall-clock budget the hierarchical driver's
// randomized refinement loop was hardcoded to in the reference
// implementation.
const defaultBudget = 50 * time.Second

// defaultTrialCap bounds the trial count default so it never exceeds the
// reference's parallel-for trial count on machines with many cores.
const defaultTrialCap = 32

// Config holds all configuration for the partitioner.
type Config struct {
	Trials TrialsConfig `mapstructure:"trials"`
	Budget BudgetConfig `mapstructure:"budget"`
	Log    LogConfig    `mapstructure:"log"`
}

// TrialsConfig holds multi-start orchestration configuration.
type TrialsConfig struct {
	Count int `mapstructure:"count"`
}

// BudgetConfig holds the wall-clock budget configuration.
type BudgetConfig struct {
	// Duration is parsed from a Go duration string (e.g. "50s").
	Duration time.Duration `mapstructure:"duration"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or text
}

// Load reads configuration from the specified file path, or from the
// default search locations (`./partitioner.yaml`, `./configs/partitioner.yaml`)
// when configPath is empty. A missing file is not an error: the defaults
// reproduce the source algorithm's hardcoded behavior exactly.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("partitioner")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// no config file, use defaults
		} else if os.IsNotExist(err) {
			// explicit path doesn't exist, use defaults
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("PARTITIONER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, durationHook()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadFromReader loads configuration from an in-memory buffer (useful for
// testing).
func LoadFromReader(configType string, content []byte) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, durationHook()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values, matching the reference
// algorithm's hardcoded constants.
func setDefaults(v *viper.Viper) {
	v.SetDefault("trials.count", defaultTrialCount())
	v.SetDefault("budget.duration", defaultBudget)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// defaultTrialCount mirrors the reference's min(32, hardware_parallelism).
func defaultTrialCount() int {
	n := runtime.NumCPU()
	if n > defaultTrialCap {
		return defaultTrialCap
	}
	if n < 1 {
		return 1
	}
	return n
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trials.Count < 1 {
		return fmt.Errorf("trials.count must be at least 1")
	}
	if c.Budget.Duration <= 0 {
		return fmt.Errorf("budget.duration must be positive")
	}
	return nil
}
