// Package config loads the application configuration. Values come from
// an optional YAML file (CONFIG_FILE) with environment variable
// overrides, so container deployments can tweak single settings without
// editing the file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	pkgconfig "covid-dashboard/pkg/config"
)

// Defaults applied when neither the config file nor the environment
// sets a value.
const (
	DefaultAddr        = ":8080"
	DefaultSourcePath  = "data/covid.csv"
	DefaultCountryName = "Kenya"
	DefaultReportPath  = "covid_report.pdf"
	DefaultReportTopN  = 15
)

// Config holds the recognized application options.
type Config struct {
	// SourcePath is the CSV dataset path. The process exits non-zero if
	// it cannot be loaded at startup.
	SourcePath string `yaml:"source_path"`

	// DefaultCountry is the initial dropdown selection and the featured
	// country of the report time series.
	DefaultCountry string `yaml:"default_country"`

	// Addr is the host:port the dashboard listens on.
	Addr string `yaml:"addr"`

	// ReportPath is where the PDF report is written.
	ReportPath string `yaml:"report_path"`

	// ReportTopN is the number of countries in the ranking chart and
	// summary text.
	ReportTopN int `yaml:"report_top_n"`

	// ReportCron optionally schedules periodic report regeneration
	// (standard cron syntax). Empty disables the schedule.
	ReportCron string `yaml:"report_cron"`

	// ChartRateLimit caps chart renders per second per client IP.
	// Zero disables rate limiting.
	ChartRateLimit float64 `yaml:"chart_rate_limit"`

	// ChartRateBurst is the burst size for the chart rate limiter.
	ChartRateBurst int `yaml:"chart_rate_burst"`
}

// Load reads the optional YAML file named by CONFIG_FILE, applies
// environment overrides, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		SourcePath:     DefaultSourcePath,
		DefaultCountry: DefaultCountryName,
		Addr:           DefaultAddr,
		ReportPath:     DefaultReportPath,
		ReportTopN:     DefaultReportTopN,
		ChartRateLimit: 10,
		ChartRateBurst: 20,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.SourcePath = pkgconfig.GetEnvString("SOURCE_PATH", cfg.SourcePath)
	cfg.DefaultCountry = pkgconfig.GetEnvString("DEFAULT_COUNTRY", cfg.DefaultCountry)
	cfg.Addr = pkgconfig.GetEnvString("ADDR", cfg.Addr)
	cfg.ReportPath = pkgconfig.GetEnvString("REPORT_PATH", cfg.ReportPath)
	cfg.ReportTopN = pkgconfig.GetEnvInt("REPORT_TOP_N", cfg.ReportTopN)
	cfg.ReportCron = pkgconfig.GetEnvString("REPORT_CRON", cfg.ReportCron)
	cfg.ChartRateLimit = pkgconfig.GetEnvFloat("CHART_RATE_LIMIT", cfg.ChartRateLimit)
	cfg.ChartRateBurst = pkgconfig.GetEnvInt("CHART_RATE_BURST", cfg.ChartRateBurst)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.SourcePath == "" {
		return fmt.Errorf("source_path is required")
	}
	if c.ReportPath == "" {
		return fmt.Errorf("report_path is required")
	}
	if c.ReportTopN <= 0 {
		return fmt.Errorf("report_top_n must be positive, got %d", c.ReportTopN)
	}
	if c.ChartRateLimit < 0 {
		return fmt.Errorf("chart_rate_limit must not be negative")
	}
	return nil
}
