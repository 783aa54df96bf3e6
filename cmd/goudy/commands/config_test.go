package commands

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(apiKeyEnv, "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.json5"))
	require.NoError(t, err)
	require.Equal(t, defaultConfig, cfg)
	require.Equal(t, time.Duration(0), cfg.HttpTimeout())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(apiKeyEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		fdc: {api_key: "FILE_KEY", requests_per_second: 0.25},
		output: {nutrients_json: "out/usda.json"},
		timezone: "America/Los_Angeles",
		http_timeout_seconds: 30,
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		schedule: "30 11 * * *",
	}`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{
		MenuUrl: defaultConfig.MenuUrl,
		Fdc: FdcConfig{
			BaseUrl:           defaultConfig.Fdc.BaseUrl,
			ApiKey:            "FILE_KEY",
			RequestsPerSecond: 0.25,
		},
		Output: OutputConfig{
			MenuCsv:       "goudy.csv",
			NutrientsJson: "out/usda.json",
		},
		Schedule:           "30 11 * * *",
		Timezone:           "America/Los_Angeles",
		HttpTimeoutSeconds: 30,
	}, cfg)
	require.Equal(t, 30*time.Second, cfg.HttpTimeout())

	t.Setenv(apiKeyEnv, "ENV_KEY")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "ENV_KEY", cfg.Fdc.ApiKey)
}

func TestLoadConfigInvalid(t *testing.T) {
	testCases := []struct {
		name   string
		config string
	}{
		{name: "schedule", config: `{schedule: "every day at 2"}`},
		{name: "timezone", config: `{timezone: "Mars/Olympus_Mons"}`},
		{name: "timeout", config: `{http_timeout_seconds: -1}`},
		{name: "rate", config: `{fdc: {requests_per_second: -2}}`},
		{name: "syntax", config: `{menu_url: `},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json5")
			require.NoError(t, os.WriteFile(path, []byte(test.config), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
		})
	}
}
