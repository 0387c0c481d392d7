package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

const EnvPrefix = "GEXLEVELS"

type Config struct {
	Engine  EngineConfig  `mapstructure:"engine" json:"engine"`
	Filter  FilterConfig  `mapstructure:"filter" json:"filter"`
	Alerts  AlertsConfig  `mapstructure:"alerts" json:"alerts"`
	Session SessionConfig `mapstructure:"session" json:"session"`
	Output  OutputConfig  `mapstructure:"output" json:"output"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
}

type EngineConfig struct {
	ContractMultiplier float64 `mapstructure:"contract_multiplier" json:"contract_multiplier"`
	GammaFlipWindowPct float64 `mapstructure:"gamma_flip_window_pct" json:"gamma_flip_window_pct"`
	TopK               int     `mapstructure:"top_k" json:"top_k"`
}

// FilterConfig bounds the chain before analysis. StrikeRangePct is a percent
// (1.5 means ±1.5%).
type FilterConfig struct {
	Enabled        bool    `mapstructure:"enabled" json:"enabled"`
	StrikeRangePct float64 `mapstructure:"strike_range_pct" json:"strike_range_pct"`
	MinVolume      int64   `mapstructure:"min_volume" json:"min_volume"`
}

type AlertsConfig struct {
	DistanceThreshold float64 `mapstructure:"distance_threshold" json:"distance_threshold"`
	VolumeThreshold   float64 `mapstructure:"volume_threshold" json:"volume_threshold"`
}

type SessionConfig struct {
	Timezone string `mapstructure:"timezone" json:"timezone"`
}

type OutputConfig struct {
	Format    string `mapstructure:"format" json:"format"`
	Directory string `mapstructure:"directory" json:"directory"`
}

type LoggingConfig struct {
	Enabled   bool   `mapstructure:"enabled" json:"enabled"`
	Directory string `mapstructure:"directory" json:"directory"`
	Level     string `mapstructure:"level" json:"level"`
}

// EngineParams maps the engine section onto gamma engine parameters.
func (c *Config) EngineParams() gamma.Params {
	return gamma.Params{
		ContractMultiplier: c.Engine.ContractMultiplier,
		FlipWindowPct:      c.Engine.GammaFlipWindowPct,
		TopK:               c.Engine.TopK,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.contract_multiplier", gamma.DefaultContractMultiplier)
	v.SetDefault("engine.gamma_flip_window_pct", gamma.DefaultFlipWindowPct)
	v.SetDefault("engine.top_k", gamma.DefaultTopK)
	v.SetDefault("filter.enabled", true)
	v.SetDefault("filter.strike_range_pct", 1.5)
	v.SetDefault("filter.min_volume", 50)
	v.SetDefault("alerts.distance_threshold", 0.5)
	v.SetDefault("alerts.volume_threshold", 0)
	v.SetDefault("session.timezone", "America/New_York")
	v.SetDefault("output.format", string(FormatJSON))
	v.SetDefault("output.directory", "data")
	v.SetDefault("logging.enabled", false)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
}

// Load reads configuration from defaults, an optional YAML file and
// GEXLEVELS_* environment variables, in increasing precedence. With an empty
// configPath, ./configs/default.yaml is used when present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}
