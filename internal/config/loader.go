package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/scenario-ranker/internal/ranking"
	"github.com/yourusername/scenario-ranker/internal/scenario"
)

const (
	envPrefix         = "SCENARIO_RANKER"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error: defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	// SCENARIO_RANKER_RANKING_QUANTILE_THRESHOLD overrides ranking.quantile_threshold
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	filter := ranking.DefaultFilterConfig()

	v.SetDefault("app.name", "scenario-ranker")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("ranking.quantile_threshold", filter.QuantileThreshold)
	v.SetDefault("ranking.min_profit_factor", filter.MinProfitFactor)
	v.SetDefault("ranking.max_drawdown_ratio", filter.MaxDrawdownRatio)
	v.SetDefault("ranking.extraction_strategy", scenario.ChainMarkerThenPrefix)
	v.SetDefault("ranking.marker_segment", scenario.DefaultMarker)
	v.SetDefault("ranking.summary_glob", scenario.DefaultSummaryGlob)
	v.SetDefault("ranking.setup_glob", scenario.DefaultSetupGlob)
	v.SetDefault("ranking.symbol_delimiter", scenario.DefaultDelimiter)
	v.SetDefault("ranking.read_workers", 4)

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.cache_ttl_seconds", 300)

	v.SetDefault("output.dir", "output")
	v.SetDefault("output.copy_artifacts", true)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 4)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.push_textfile", false)
}
