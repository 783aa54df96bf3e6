// Package menucsv reads and writes the menu handoff file between the scraper and the
// nutrient lookup.
package menucsv

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"willamette-dining/internal/scrapers/bonappetit"
)

var Header = []string{"Item", "Station", "Sides"}

var ErrMissingColumn = errors.New("missing column")

// fields are only quoted when they contain a delimiter, quote or line break, a leading
// space is kept verbatim (encoding/csv would quote it).
func formatField(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func writeRow(w *bufio.Writer, row []string) error {
	for i, field := range row {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(formatField(field)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// Encode writes the header followed by one row per item.
func Encode(out io.Writer, items []bonappetit.MenuItem) error {
	w := bufio.NewWriter(out)
	err := writeRow(w, Header)
	if err != nil {
		return err
	}
	for _, item := range items {
		err = writeRow(w, []string{item.Name, item.Station, item.Sides})
		if err != nil {
			return err
		}
	}
	return w.Flush()
}

// Write replaces the file at path with the encoded items.
func Write(path string, items []bonappetit.MenuItem) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = Encode(f, items)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func readRecords(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: no header", path)
	}
	return records, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, col := range header {
		if col == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrMissingColumn, name)
}

// ReadItemNames returns the Item column in file order, duplicates included.
func ReadItemNames(path string) ([]string, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}
	idx, err := columnIndex(records[0], "Item")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(records)-1)
	for _, record := range records[1:] {
		names = append(names, record[idx])
	}
	return names, nil
}

// Read returns every row of the file as menu items.
func Read(path string) ([]bonappetit.MenuItem, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	indexes := make([]int, len(Header))
	for i, name := range Header {
		indexes[i], err = columnIndex(records[0], name)
		if err != nil {
			return nil, err
		}
	}

	items := make([]bonappetit.MenuItem, 0, len(records)-1)
	for _, record := range records[1:] {
		items = append(items, bonappetit.MenuItem{
			Name:    record[indexes[0]],
			Station: record[indexes[1]],
			Sides:   record[indexes[2]],
		})
	}
	return items, nil
}
