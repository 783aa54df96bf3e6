package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"willamette-dining/internal/apis/fdc"

	"github.com/stretchr/testify/require"
)

func TestWriteRecordsEscapesNonAscii(t *testing.T) {
	records := NewRecords()
	records.Set("Jalapeño Poppers", fdc.Profile{Calories: num("250")})
	records.Set("Fish 🌮 & Chips", fdc.Profile{})

	path := filepath.Join(t.TempDir(), "usda.json")
	require.NoError(t, WriteRecords(path, records))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{
    "Jalape\u00f1o Poppers": {
        "Calories": 250,
        "Total Fat": null,
        "Total Sat Fat": null,
        "Cholesterol": null,
        "Total Carbs": null,
        "Fiber": null,
        "Sugars": null,
        "Protein": null
    },
    "Fish \ud83c\udf2e & Chips": {
        "Calories": null,
        "Total Fat": null,
        "Total Sat Fat": null,
        "Cholesterol": null,
        "Total Carbs": null,
        "Fiber": null,
        "Sugars": null,
        "Protein": null
    }
}`, string(contents))

	read, err := ReadRecords(path)
	require.NoError(t, err)
	require.Equal(t, []string{"Jalapeño Poppers", "Fish 🌮 & Chips"}, read.Names())
	poppers, ok := read.Get("Jalapeño Poppers")
	require.True(t, ok)
	require.Equal(t, num("250"), poppers.Calories)
}

func TestEscapeNonAscii(t *testing.T) {
	require.Equal(t, `"plain ascii ~"`, string(escapeNonAscii([]byte(`"plain ascii ~"`))))
	require.Equal(t, `"cr\u00e8me br\u00fbl\u00e9e"`, string(escapeNonAscii([]byte(`"crème brûlée"`))))
	require.Equal(t, `"\u007f"`, string(escapeNonAscii([]byte("\"\x7f\""))))
}
