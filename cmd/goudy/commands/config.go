package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
	"willamette-dining/internal/apis/fdc"
	"willamette-dining/lib/configutil"

	"github.com/robfig/cron/v3"
)

// FDC_API_KEY in the environment takes precedence over the configured key.
const apiKeyEnv = "FDC_API_KEY"

type FdcConfig struct {
	BaseUrl string `json:"base_url"`
	ApiKey  string `json:"api_key"`
	// RequestsPerSecond throttles searches, 0 means unlimited.
	RequestsPerSecond float64 `json:"requests_per_second"`
}

type OutputConfig struct {
	MenuCsv       string `json:"menu_csv"`
	NutrientsJson string `json:"nutrients_json"`
}

type Config struct {
	MenuUrl string       `json:"menu_url"`
	Fdc     FdcConfig    `json:"fdc"`
	Output  OutputConfig `json:"output"`
	// Schedule is a standard 5 field cron spec.
	Schedule string `json:"schedule"`
	// Timezone is an IANA name the schedule is evaluated in, empty means local time.
	Timezone string `json:"timezone"`
	// HttpTimeoutSeconds bounds every request, 0 means requests never time out.
	HttpTimeoutSeconds int `json:"http_timeout_seconds"`
}

var defaultConfig = Config{
	MenuUrl: "https://willamette.cafebonappetit.com/",
	Fdc: FdcConfig{
		BaseUrl: fdc.DefaultBaseUrl,
		ApiKey:  "DEMO_KEY",
	},
	Output: OutputConfig{
		MenuCsv:       "goudy.csv",
		NutrientsJson: "usda.json",
	},
	Schedule: "1 14 * * *",
}

func (c Config) HttpTimeout() time.Duration {
	return time.Duration(c.HttpTimeoutSeconds) * time.Second
}

func (c Config) Validate() error {
	if c.HttpTimeoutSeconds < 0 {
		return fmt.Errorf("http_timeout_seconds must not be negative, got %d", c.HttpTimeoutSeconds)
	}
	if c.Fdc.RequestsPerSecond < 0 {
		return fmt.Errorf("fdc.requests_per_second must not be negative, got %v", c.Fdc.RequestsPerSecond)
	}
	_, err := cron.ParseStandard(c.Schedule)
	if err != nil {
		return fmt.Errorf("schedule %q: %w", c.Schedule, err)
	}
	if c.Timezone != "" {
		_, err = time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("timezone %q: %w", c.Timezone, err)
		}
	}
	return nil
}

// LoadConfig reads the config at path, a missing file means every default applies.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using defaults", "path", path)
	} else if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err = configutil.WithDefaults(cfg, defaultConfig)
	if err != nil {
		return Config{}, err
	}

	apiKey := os.Getenv(apiKeyEnv)
	if apiKey != "" {
		cfg.Fdc.ApiKey = apiKey
	}
	if cfg.Fdc.ApiKey == defaultConfig.Fdc.ApiKey {
		slog.Warn("using the shared demo api key, searches will be heavily rate limited", "env", apiKeyEnv)
	}

	return cfg, cfg.Validate()
}
