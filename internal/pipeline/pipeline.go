// Package pipeline joins the menu scraper and the nutrient lookup into the daily run.
package pipeline

import (
	"context"
	"fmt"
	"willamette-dining/internal/apis/fdc"
	"willamette-dining/internal/components/assert"
	"willamette-dining/internal/components/telemetry"
	"willamette-dining/internal/menucsv"
	"willamette-dining/internal/scrapers/bonappetit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_pipeline_scraped  = "pipeline.scraped"
	report_pipeline_resolved = "pipeline.resolved"
	report_pipeline_missing  = "pipeline.missing"
)

var tracer = otel.Tracer("willamette-dining/pipeline")
var meter = otel.Meter("willamette-dining/pipeline")
var scrapedCounter, _ = meter.Int64Counter("goudy.items.scraped")
var resolvedCounter, _ = meter.Int64Counter("goudy.items.resolved")
var missingCounter, _ = meter.Int64Counter("goudy.items.missing")

// Scraper produces the menu items of the day.
type Scraper interface {
	Scrape(ctx context.Context) ([]bonappetit.MenuItem, error)
}

// Resolver looks up the nutrients of a single item, false means there is no data for it.
type Resolver interface {
	Resolve(ctx context.Context, name string) (fdc.Profile, bool, error)
}

type Options struct {
	// MenuCsvPath is where the scraped menu is handed off to the nutrient lookup.
	MenuCsvPath string
	// NutrientsJsonPath is where the nutrient profiles are written.
	NutrientsJsonPath string
}

type Pipeline struct {
	scraper  Scraper
	resolver Resolver
	opts     Options
	tel      telemetry.API
}

func NewPipeline(scraper Scraper, resolver Resolver, opts Options, tel telemetry.API) Pipeline {
	assert.NotNil(scraper, "scraper")
	assert.NotNil(resolver, "resolver")
	assert.NotNil(tel, "tel")
	assert.NotEmptyStr(opts.MenuCsvPath, "opts.MenuCsvPath")
	assert.NotEmptyStr(opts.NutrientsJsonPath, "opts.NutrientsJsonPath")

	return Pipeline{
		scraper:  scraper,
		resolver: resolver,
		opts:     opts,
		tel:      telemetry.NewScopedAPI("pipeline", tel),
	}
}

type Result struct {
	Scraped  int
	Resolved int
	// Missing holds the names without nutrient data, in lookup order.
	Missing []string
}

// Run scrapes the menu, hands it off through the menu csv and writes the nutrient
// profile of every item that has one. Nothing is written to the nutrients file if
// any step fails, reporting the returned error is up to the caller.
func (p Pipeline) Run(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	var result Result

	items, err := p.scraper.Scrape(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "scrape failed")
		return result, fmt.Errorf("scrape: %w", err)
	}
	result.Scraped = len(items)
	scrapedCounter.Add(ctx, int64(len(items)))

	err = menucsv.Write(p.opts.MenuCsvPath, items)
	if err != nil {
		span.SetStatus(codes.Error, "write menu failed")
		return result, fmt.Errorf("write menu: %w", err)
	}
	names, err := menucsv.ReadItemNames(p.opts.MenuCsvPath)
	if err != nil {
		span.SetStatus(codes.Error, "read menu failed")
		return result, fmt.Errorf("read menu: %w", err)
	}

	records := NewRecords()
	for _, name := range names {
		profile, found, err := p.resolver.Resolve(ctx, name)
		if err != nil {
			span.SetStatus(codes.Error, "resolve failed")
			return result, fmt.Errorf("resolve %q: %w", name, err)
		}
		if !found {
			p.tel.ReportDebug("no nutrient data found", name)
			result.Missing = append(result.Missing, name)
			missingCounter.Add(ctx, 1)
			continue
		}
		records.Set(name, profile)
		result.Resolved++
		resolvedCounter.Add(ctx, 1)
	}

	err = WriteRecords(p.opts.NutrientsJsonPath, records)
	if err != nil {
		span.SetStatus(codes.Error, "write nutrients failed")
		return result, fmt.Errorf("write nutrients: %w", err)
	}

	span.SetAttributes(
		attribute.Int("scraped", result.Scraped),
		attribute.Int("resolved", result.Resolved),
		attribute.Int("missing", len(result.Missing)),
	)
	p.tel.ReportCount(report_pipeline_scraped, int64(result.Scraped))
	p.tel.ReportCount(report_pipeline_resolved, int64(result.Resolved))
	p.tel.ReportCount(report_pipeline_missing, int64(len(result.Missing)))

	return result, nil
}
