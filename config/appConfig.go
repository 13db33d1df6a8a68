package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gobevtrend_api/config/values"
)

// DistributorConfig is one distributor's stealth tuning. Zero fields fall
// back to the deployment defaults.
type DistributorConfig struct {
	Slug            string  `yaml:"slug"`
	DailyLimit      int     `yaml:"daily_limit"`
	BatchSize       int     `yaml:"batch_size"`
	MinDelaySeconds int     `yaml:"min_delay_seconds"`
	MaxDelaySeconds int     `yaml:"max_delay_seconds"`
	NoiseRatio      float64 `yaml:"noise_ratio"`
}

type HoursConfig struct {
	StartHour    int    `yaml:"start_hour"`
	EndHour      int    `yaml:"end_hour"`
	WeekdaysOnly bool   `yaml:"weekdays_only"`
	Timezone     string `yaml:"timezone"`
}

type TrendConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

type NotifyConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

type SchedulerConfig struct {
	ScrapeSpec string `yaml:"scrape_spec"`
	TrendSpec  string `yaml:"trend_spec"`
}

type AppConfig struct {
	Postgres     PostgresConfig             `yaml:"postgres"`
	Defaults     values.DistributorDefaults `yaml:"distributor_defaults"`
	Distributors []DistributorConfig        `yaml:"distributors"`
	Hours        HoursConfig                `yaml:"business_hours"`
	Trend        TrendConfig                `yaml:"trend"`
	Notify       NotifyConfig               `yaml:"notify"`
	Scheduler    SchedulerConfig            `yaml:"scheduler"`
	MetricsAddr  string                     `yaml:"metrics_addr"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	config.Postgres.applyEnv()
	config.Defaults.Normalize()

	if config.Hours.Timezone == "" {
		config.Hours.Timezone = "America/New_York"
	}
	if config.Hours.EndHour == 0 {
		config.Hours.StartHour, config.Hours.EndHour = 9, 18
	}
	if config.Scheduler.ScrapeSpec == "" {
		config.Scheduler.ScrapeSpec = "15 9-17 * * *"
	}
	if config.Scheduler.TrendSpec == "" {
		config.Scheduler.TrendSpec = "0 6 * * *"
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = ":9090"
	}
	return config, nil
}

// Resolve fills a distributor's zero fields from the deployment defaults.
func (c *AppConfig) Resolve(d DistributorConfig) DistributorConfig {
	if d.DailyLimit <= 0 {
		d.DailyLimit = c.Defaults.DailyLimit
	}
	if d.BatchSize <= 0 {
		d.BatchSize = c.Defaults.BatchSize
	}
	if d.MinDelaySeconds <= 0 {
		d.MinDelaySeconds = c.Defaults.MinDelaySeconds
	}
	if d.MaxDelaySeconds <= 0 {
		d.MaxDelaySeconds = c.Defaults.MaxDelaySeconds
	}
	if d.NoiseRatio <= 0 {
		d.NoiseRatio = c.Defaults.NoiseRatio
	}
	return d
}
