package commands

import (
	"context"
	"log/slog"
	"time"
	"willamette-dining/internal/apis/fdc"
	"willamette-dining/internal/components/telemetry"
	"willamette-dining/internal/pipeline"
	"willamette-dining/internal/scrapers/bonappetit"
	libtelemetry "willamette-dining/lib/telemetry"
	"willamette-dining/lib/util/restyutil"
)

func newPipeline(cfg Config, tel telemetry.API) (pipeline.Pipeline, error) {
	var dump restyutil.Output
	if dumpHttp != "" {
		out, err := restyutil.NewFilesystemOutput(dumpHttp)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		dump = out
	}

	scraper, err := bonappetit.NewClient(bonappetit.ClientOptions{
		PageUrl: cfg.MenuUrl,
		Timeout: cfg.HttpTimeout(),
		Dump:    dump,
	}, tel)
	if err != nil {
		return pipeline.Pipeline{}, err
	}
	resolver := fdc.NewClient(fdc.ClientOptions{
		BaseUrl:           cfg.Fdc.BaseUrl,
		ApiKey:            cfg.Fdc.ApiKey,
		RequestsPerSecond: cfg.Fdc.RequestsPerSecond,
		Timeout:           cfg.HttpTimeout(),
		Dump:              dump,
	}, tel)

	return pipeline.NewPipeline(scraper, resolver, pipeline.Options{
		MenuCsvPath:       cfg.Output.MenuCsv,
		NutrientsJsonPath: cfg.Output.NutrientsJson,
	}, tel), nil
}

func runJob(ctx context.Context, p pipeline.Pipeline) error {
	slog.Info("starting run")
	start := time.Now()

	result, err := p.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info(
		"run done",
		"scraped", result.Scraped,
		"resolved", result.Resolved,
		"missing", len(result.Missing),
		"seconds", time.Since(start).Seconds(),
	)
	if len(result.Missing) > 0 {
		slog.Info("no nutrient data found", "items", result.Missing)
	}
	return nil
}

// setupTelemetry starts exporting and returns the function flushing it.
func setupTelemetry(ctx context.Context) func() {
	t, err := libtelemetry.SetupFromEnv(ctx, "goudy")
	if err != nil {
		slog.Warn("failed to setup telemetry export", "err", err)
		return func() {}
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := t.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	}
}
