// Package config loads run configuration from YAML with environment
// fallbacks for connection strings.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shinobu1729/backtest-univ3/internal/domain"
)

// PoolConfig describes the pool under test.
type PoolConfig struct {
	ID           string  `yaml:"id"`
	Token0       string  `yaml:"token0"`
	Token1       string  `yaml:"token1"`
	Fee          float64 `yaml:"fee"`
	DecimalsDiff int     `yaml:"decimals_diff"`
}

// StrategyConfig mirrors domain.StrategyConfig in YAML form.
type StrategyConfig struct {
	Type          string   `yaml:"type"`
	LowerPrice    *float64 `yaml:"lower_price,omitempty"`
	UpperPrice    *float64 `yaml:"upper_price,omitempty"`
	Address       *string  `yaml:"address,omitempty"`
	Width         *float64 `yaml:"width,omitempty"`
	SecondsToHold *int64   `yaml:"seconds_to_hold,omitempty"`
	MaxRemints    *int     `yaml:"max_remints,omitempty"`
	InitialX      *float64 `yaml:"initial_x,omitempty"`
	InitialY      *float64 `yaml:"initial_y,omitempty"`
	XInterest     *float64 `yaml:"x_interest,omitempty"`
	YInterest     *float64 `yaml:"y_interest,omitempty"`
	GasCost       float64  `yaml:"gas_cost"`
}

// DataConfig points at the event source.
type DataConfig struct {
	EventsCSV string `yaml:"events_csv"`
}

// StorageConfig holds connection strings. Empty means in-memory.
type StorageConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

// Config is the full run configuration.
type Config struct {
	Pool     PoolConfig     `yaml:"pool"`
	Strategy StrategyConfig `yaml:"strategy"`
	Data     DataConfig     `yaml:"data"`
	Storage  StorageConfig  `yaml:"storage"`
	LogLevel string         `yaml:"log_level"`
}

// Load reads and validates a YAML config file. DSNs missing from the
// file fall back to POSTGRES_DSN and CLICKHOUSE_DSN.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.Storage.PostgresDSN == "" {
		c.Storage.PostgresDSN = os.Getenv("POSTGRES_DSN")
	}
	if c.Storage.ClickHouseDSN == "" {
		c.Storage.ClickHouseDSN = os.Getenv("CLICKHOUSE_DSN")
	}
}

// Validate checks the parts every run needs.
func (c *Config) Validate() error {
	pool := c.DomainPool()
	if err := pool.Validate(); err != nil {
		return err
	}
	if c.Strategy.Type == "" {
		return fmt.Errorf("strategy type is required")
	}
	return nil
}

// DomainPool converts the YAML pool section to the domain type.
func (c *Config) DomainPool() domain.Pool {
	return domain.Pool{
		ID:           c.Pool.ID,
		Token0:       c.Pool.Token0,
		Token1:       c.Pool.Token1,
		Fee:          c.Pool.Fee,
		DecimalsDiff: c.Pool.DecimalsDiff,
	}
}

// DomainStrategy converts the YAML strategy section to the domain type.
func (c *Config) DomainStrategy() domain.StrategyConfig {
	return domain.StrategyConfig{
		StrategyType:  c.Strategy.Type,
		LowerPrice:    c.Strategy.LowerPrice,
		UpperPrice:    c.Strategy.UpperPrice,
		Address:       c.Strategy.Address,
		Width:         c.Strategy.Width,
		SecondsToHold: c.Strategy.SecondsToHold,
		MaxRemints:    c.Strategy.MaxRemints,
		InitialX:      c.Strategy.InitialX,
		InitialY:      c.Strategy.InitialY,
		XInterest:     c.Strategy.XInterest,
		YInterest:     c.Strategy.YInterest,
		GasCost:       c.Strategy.GasCost,
	}
}
