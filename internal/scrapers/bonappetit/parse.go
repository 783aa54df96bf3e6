package bonappetit

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var ErrMalformedBlock = errors.New("malformed daypart item")

// MenuItem is one dish listed on the menu page.
type MenuItem struct {
	Name    string
	Station string
	// Sides is empty when the dish has no sides listed.
	Sides string
}

const (
	selectorItem    = "div.site-panel__daypart-item"
	selectorTitle   = "button.site-panel__daypart-item-title"
	selectorStation = "div.site-panel__daypart-item-station"
	selectorSides   = "div.site-panel__daypart-item-sides"
)

var stripSides = strings.NewReplacer("\n", "", "\t", "")

// ParseMenu extracts every daypart item from a menu page in document order.
func ParseMenu(r io.Reader) ([]MenuItem, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return parseDocument(doc)
}

func parseDocument(doc *goquery.Document) ([]MenuItem, error) {
	items := []MenuItem{}

	var parseErr error
	doc.Find(selectorItem).EachWithBreak(func(i int, block *goquery.Selection) bool {
		item, err := parseBlock(block)
		if err != nil {
			parseErr = fmt.Errorf("block %d: %w", i, err)
			return false
		}
		items = append(items, item)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return items, nil
}

func parseBlock(block *goquery.Selection) (MenuItem, error) {
	title := block.Find(selectorTitle).First()
	if title.Length() == 0 {
		return MenuItem{}, fmt.Errorf("%w: no title", ErrMalformedBlock)
	}
	name := strings.TrimSpace(title.Text())
	if name == "" {
		return MenuItem{}, fmt.Errorf("%w: empty title", ErrMalformedBlock)
	}

	station := block.Find(selectorStation).First()
	if station.Length() == 0 {
		return MenuItem{}, fmt.Errorf("%w: no station for %q", ErrMalformedBlock, name)
	}

	// the station is shown as "@ Grill", only the marker is dropped so the
	// leading space stays.
	stationText := strings.ReplaceAll(strings.TrimSpace(station.Text()), "@", "")

	sidesText := ""
	sides := block.Find(selectorSides).First()
	if sides.Length() > 0 {
		sidesText = stripSides.Replace(strings.TrimSpace(sides.Text()))
	}

	return MenuItem{
		Name:    name,
		Station: stationText,
		Sides:   sidesText,
	}, nil
}
