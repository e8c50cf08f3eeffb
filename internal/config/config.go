// Package config loads finbook.yaml.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level finbook.yaml configuration.
type Config struct {
	Company        CompanyConfig        `yaml:"company"`
	Fiscal         FiscalConfig         `yaml:"fiscal"`
	Database       DatabaseConfig       `yaml:"database"`
	Server         ServerConfig         `yaml:"server"`
	Reconciliation ReconciliationConfig `yaml:"reconciliation"`
}

// CompanyConfig identifies the company whose books this instance serves.
type CompanyConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// FiscalConfig defines the fiscal calendar.
type FiscalConfig struct {
	YearStart               string `yaml:"year_start"` // "MM-DD" format, e.g. "04-01"
	RetainedEarningsAccount string `yaml:"retained_earnings_account"`
}

// DatabaseConfig locates the ledger database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Listen  string `yaml:"listen"`
	Metrics bool   `yaml:"metrics"`
}

// ReconciliationConfig holds matcher defaults.
type ReconciliationConfig struct {
	AmountTolerance string `yaml:"amount_tolerance"`
	MaxSuggestions  int    `yaml:"max_suggestions"`
}

// Load reads a finbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new company.
func Default(companyID, companyName string) *Config {
	return &Config{
		Company: CompanyConfig{
			ID:   companyID,
			Name: companyName,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Database: DatabaseConfig{
			Path: "finbook.db",
		},
		Server: ServerConfig{
			Listen:  "127.0.0.1:8642",
			Metrics: true,
		},
		Reconciliation: ReconciliationConfig{
			AmountTolerance: "0.00",
			MaxSuggestions:  10,
		},
	}
}
