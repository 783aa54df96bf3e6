package commands

import (
	"io"
	"willamette-dining/internal/apis/fdc"
	"willamette-dining/internal/pipeline"
	"willamette-dining/internal/scrapers/bonappetit"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func renderNutrients(out io.Writer, records *pipeline.Records) {
	t := newTable(out)

	header := table.Row{"Item"}
	for _, target := range fdc.Targets {
		header = append(header, target.Field)
	}
	t.AppendHeader(header)

	for _, name := range records.Names() {
		profile, _ := records.Get(name)
		row := table.Row{name}
		for _, target := range fdc.Targets {
			value := profile.Get(target.Id)
			if value == nil {
				row = append(row, "-")
				continue
			}
			row = append(row, value.String())
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"Total", records.Len()})
	t.Render()
}

func renderMenu(out io.Writer, items []bonappetit.MenuItem) {
	t := newTable(out)
	t.AppendHeader(table.Row{"Item", "Station", "Sides"})
	for _, item := range items {
		t.AppendRow(table.Row{item.Name, item.Station, item.Sides})
	}
	t.AppendFooter(table.Row{"Total", len(items)})
	t.Render()
}
