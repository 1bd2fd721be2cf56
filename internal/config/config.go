// Package config loads application configuration from config.yaml,
// environment variables, and defaults, and initializes the global
// logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Quote   QuoteConfig   `yaml:"quote" mapstructure:"quote"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
	Insight InsightConfig `yaml:"insight" mapstructure:"insight"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history and cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// QuoteConfig configures the market-data provider client.
type QuoteConfig struct {
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheTTLHours  int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ExportConfig holds export pipeline defaults, overridable per run by
// command flags.
type ExportConfig struct {
	InputPath string `yaml:"input_path" mapstructure:"input_path"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	Encoding  string `yaml:"encoding" mapstructure:"encoding"`
}

// InsightConfig holds Anthropic API settings for commentary generation.
type InsightConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // "json" or "console"
}

// Load reads configuration from config.yaml (optional), environment
// variables with the KABUSCREEN prefix, and defaults.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KABUSCREEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "kabuscreen.db")
	v.SetDefault("quote.base_url", "https://query2.finance.yahoo.com")
	v.SetDefault("quote.requests_per_sec", 2.0)
	v.SetDefault("quote.timeout_secs", 30)
	v.SetDefault("quote.cache_ttl_hours", 24)
	v.SetDefault("export.input_path", "data/data_j.tsv")
	v.SetDefault("export.output_dir", "exports")
	v.SetDefault("export.encoding", "shift_jis")
	v.SetDefault("insight.model", "claude-haiku-4-5-20251001")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
