package analysis

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config holds the analysis parameters. Zero values fall back to the
// defaults from DefaultConfig.
type Config struct {
	// TopN is the size of the ranked cohort.
	TopN int `yaml:"top_n"`

	// MinMarketCap excludes stocks below this market cap (yen) from the
	// ranking.
	MinMarketCap float64 `yaml:"min_market_cap"`

	// TransactionCostBps is the assumed round-trip cost in basis points.
	TransactionCostBps float64 `yaml:"transaction_cost_bps"`

	// Seed makes tie-break shuffles reproducible.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns the standard screening parameters.
func DefaultConfig() Config {
	return Config{
		TopN:               30,
		MinMarketCap:       1e10,
		TransactionCostBps: 30,
		Seed:               42,
	}
}

// LoadConfig reads analysis parameters from a YAML file, filling unset
// fields from the defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "analysis: read config %s", path)
	}

	var wrapper struct {
		Analysis Config `yaml:"analysis"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Config{}, eris.Wrap(err, "analysis: parse config")
	}

	cfg := wrapper.Analysis
	def := DefaultConfig()
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.MinMarketCap <= 0 {
		cfg.MinMarketCap = def.MinMarketCap
	}
	if cfg.TransactionCostBps <= 0 {
		cfg.TransactionCostBps = def.TransactionCostBps
	}
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	return cfg, nil
}
