package polling

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines polling configuration.
type Config struct {
	IntervalSeconds int    `yaml:"interval_seconds"`
	SimulatorMode   string `yaml:"simulator_mode"`
	WebhookURL      string `yaml:"escalation_webhook_url"`
}

// LoadConfig loads config from yaml (POLLING_CONFIG path) or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		IntervalSeconds: getenvIntDefault("POLLING_INTERVAL_SECONDS", int(DefaultInterval/time.Second)),
		SimulatorMode:   getenvDefault("POLLING_SIMULATOR_MODE", "random"),
		WebhookURL:      os.Getenv("POLLING_ESCALATION_WEBHOOK_URL"),
	}

	if path := os.Getenv("POLLING_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.IntervalSeconds <= 0 {
		return cfg, errors.New("polling: interval must be positive")
	}
	if cfg.SimulatorMode == "" {
		cfg.SimulatorMode = "random"
	}
	return cfg, nil
}

// Interval returns the poll interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
