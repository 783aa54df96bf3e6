package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	MenuUrl  string            `json:"menu_url"`
	Schedule string            `json:"schedule"`
	Rate     float64           `json:"requests_per_second"`
	Output   testOutput        `json:"output"`
	Headers  map[string]string `json:"headers"`
}

type testOutput struct {
	MenuCsv       string `json:"menu_csv"`
	NutrientsJson string `json:"nutrients_json"`
}

func writeFile(t testing.TB, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func TestLayers(t *testing.T) {
	require.Equal(t, []string{"config.json5", "config.local.json5"}, layers("config.json5"))
	require.Equal(
		t,
		[]string{"/etc/goudy/telemetry.json5", "/etc/goudy/telemetry.local.json5"},
		layers("/etc/goudy/telemetry.json5"),
	)
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "config.json5")

	writeFile(t, name, `{
		// comments and trailing commas are fine
		menu_url: "https://willamette.cafebonappetit.com/",
		schedule: "1 14 * * *",
		output: {menu_csv: "goudy.csv", nutrients_json: "usda.json",},
	}`)

	config, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		MenuUrl:  "https://willamette.cafebonappetit.com/",
		Schedule: "1 14 * * *",
		Output:   testOutput{MenuCsv: "goudy.csv", NutrientsJson: "usda.json"},
	}, config)

	writeFile(t, filepath.Join(dir, "config.local.json5"), `{
		requests_per_second: 0.5,
		output: {nutrients_json: "/tmp/usda.json"},
	}`)

	config, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		MenuUrl:  "https://willamette.cafebonappetit.com/",
		Schedule: "1 14 * * *",
		Rate:     0.5,
		Output:   testOutput{MenuCsv: "goudy.csv", NutrientsJson: "/tmp/usda.json"},
	}, config)
}

func TestReadConfigOnlyLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "config.local.json5"), `{schedule: "0 9 * * 1"}`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "0 9 * * 1", config.Schedule)
}

func TestReadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, filepath.Join(dir, "broken.json5"), `{menu_url: `)
	_, err = ReadConfig[testConfig](filepath.Join(dir, "broken.json5"))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestReadRecursively(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	writeFile(t, filepath.Join(root, "telemetry.json5"), `{headers: {"x-team": "dining"}}`)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	t.Cleanup(func() {
		os.Chdir(wd)
	})

	config, err := ReadRecursively[testConfig]("telemetry.json5")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"x-team": "dining"}, config.Headers)

	_, err = ReadRecursively[testConfig]("nonexistent.json5")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithDefaults(t *testing.T) {
	config, err := WithDefaults(
		testConfig{Output: testOutput{MenuCsv: "menu.csv"}},
		testConfig{
			MenuUrl:  "https://willamette.cafebonappetit.com/",
			Schedule: "1 14 * * *",
			Output:   testOutput{MenuCsv: "goudy.csv", NutrientsJson: "usda.json"},
		},
	)
	require.NoError(t, err)
	require.Equal(t, testConfig{
		MenuUrl:  "https://willamette.cafebonappetit.com/",
		Schedule: "1 14 * * *",
		Output:   testOutput{MenuCsv: "menu.csv", NutrientsJson: "usda.json"},
	}, config)
}
