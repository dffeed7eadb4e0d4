// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Data points at the pre-built inputs: the daily price panel and the pair
// list produced by the external pair-discovery step.
type Data struct {
	PricesPath string `yaml:"prices_path"`
	PairsPath  string `yaml:"pairs_path"`
}

// Backtest groups the simulation knobs.
type Backtest struct {
	StartDate         string  `yaml:"start_date"` // YYYY-MM-DD, empty = panel start
	EndDate           string  `yaml:"end_date"`   // YYYY-MM-DD, empty = panel end
	InitialCash       float64 `yaml:"initial_cash"`
	DollarPerPair     float64 `yaml:"dollar_per_pair"`
	CostBps           float64 `yaml:"cost_bps"`
	AllowNegativeCash bool    `yaml:"allow_negative_cash"`
}

// Strategy specifies which signal model is active.
type Strategy struct {
	Mode string `yaml:"mode"` // zscore (default) or logband
}

// Output names where the run's histories land.
type Output struct {
	Dir               string `yaml:"dir"`
	TransactionsJSONL string `yaml:"transactions_jsonl"` // empty disables the JSONL recorder
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App      App      `yaml:"app"`
	Data     Data     `yaml:"data"`
	Backtest Backtest `yaml:"backtest"`
	Strategy Strategy `yaml:"strategy"`
	Output   Output   `yaml:"output"`
}

// Load reads a YAML file from disk and hydrates a Config struct.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the fields the simulation cannot run without.
func (c *Config) Validate() error {
	if c.Backtest.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash must be positive, got %v", c.Backtest.InitialCash)
	}
	if c.Backtest.DollarPerPair <= 0 {
		return fmt.Errorf("backtest.dollar_per_pair must be positive, got %v", c.Backtest.DollarPerPair)
	}
	if c.Backtest.CostBps < 0 {
		return fmt.Errorf("backtest.cost_bps must not be negative, got %v", c.Backtest.CostBps)
	}
	for name, v := range map[string]string{"start_date": c.Backtest.StartDate, "end_date": c.Backtest.EndDate} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return fmt.Errorf("backtest.%s: bad date %q: %w", name, v, err)
		}
	}
	return nil
}

// StartTime returns the parsed start date, zero when unset.
func (b Backtest) StartTime() time.Time { return parseDate(b.StartDate) }

// EndTime returns the parsed end date, zero when unset.
func (b Backtest) EndTime() time.Time { return parseDate(b.EndDate) }

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
