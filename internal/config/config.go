// Package config provides configuration management for the scenario ranker.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/scenario-ranker/internal/ranking"
	"github.com/yourusername/scenario-ranker/internal/scenario"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Ranking  RankingConfig  `mapstructure:"ranking" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Output   OutputConfig   `mapstructure:"output" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Secrets  SecretsConfig  `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// RankingConfig represents scoring, filtering and scenario discovery settings
type RankingConfig struct {
	QuantileThreshold  float64  `mapstructure:"quantile_threshold" validate:"gte=0,lte=1"`
	MinProfitFactor    float64  `mapstructure:"min_profit_factor"`
	MaxDrawdownRatio   float64  `mapstructure:"max_drawdown_ratio" validate:"gte=0"`
	ExtractionStrategy string   `mapstructure:"extraction_strategy" validate:"required,extraction"`
	MarkerSegment      string   `mapstructure:"marker_segment"`
	FilePrefixes       []string `mapstructure:"file_prefixes"`
	Pattern            string   `mapstructure:"pattern"`
	SummaryGlob        string   `mapstructure:"summary_glob" validate:"required"`
	SetupGlob          string   `mapstructure:"setup_glob" validate:"required"`
	SymbolDelimiter    string   `mapstructure:"symbol_delimiter" validate:"required"`
	ReadWorkers        int      `mapstructure:"read_workers" validate:"gte=0"`
}

// StorageConfig represents the remote archive store
type StorageConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	UploadPrefix    string `mapstructure:"upload_prefix"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// OutputConfig represents where ranking output is published
type OutputConfig struct {
	Dir           string `mapstructure:"dir" validate:"required"`
	CopyArtifacts bool   `mapstructure:"copy_artifacts"`
}

// DatabaseConfig represents the optional run history database
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics configuration
type MetricsConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	PushTextfile bool `mapstructure:"push_textfile"`
}

// SecretsConfig points at an AWS Secrets Manager secret overlaid on the loaded configuration
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// FilterConfig returns the filter thresholds
func (c *Config) FilterConfig() ranking.FilterConfig {
	return ranking.FilterConfig{
		QuantileThreshold: c.Ranking.QuantileThreshold,
		MinProfitFactor:   c.Ranking.MinProfitFactor,
		MaxDrawdownRatio:  c.Ranking.MaxDrawdownRatio,
	}
}

// ExtractionChain builds the configured scenario extraction chain
func (c *Config) ExtractionChain() (scenario.Chain, error) {
	return scenario.NewChain(c.Ranking.ExtractionStrategy, scenario.ChainOptions{
		Marker:       c.Ranking.MarkerSegment,
		FilePrefixes: c.Ranking.FilePrefixes,
		Pattern:      c.Ranking.Pattern,
	})
}

// CacheTTL returns the archive listing cache lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Storage.CacheTTLSeconds) * time.Second
}
