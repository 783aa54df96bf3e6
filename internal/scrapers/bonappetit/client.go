package bonappetit

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"
	"willamette-dining/internal/components/assert"
	"willamette-dining/internal/components/telemetry"
	"willamette-dining/lib/util/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	report_client_scrape = "client.scrape"
)

var tracer = otel.Tracer("willamette-dining/scrapers/bonappetit")

// Client scrapes the daily menu of a cafe bon appetit site.
type Client struct {
	pageUrl string
	http    *resty.Client
	tel     telemetry.API
}

type ClientOptions struct {
	// PageUrl is the url of the page listing the daypart items, ex. https://willamette.cafebonappetit.com/
	PageUrl string
	// Timeout of the page request, zero means no timeout.
	Timeout time.Duration
	// Dump receives every http exchange when set.
	Dump restyutil.Output
}

func NewClient(opts ClientOptions, tel telemetry.API) (Client, error) {
	assert.NotNil(tel, "tel")
	assert.NotEmptyStr(opts.PageUrl, "opts.PageUrl")

	tel = telemetry.NewScopedAPI("bonappetit", tel)

	_, err := url.Parse(opts.PageUrl)
	if err != nil {
		return Client{}, err
	}

	httpClient := resty.New()
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	telemetry.InstrumentResty(httpClient, tel, "willamette-dining/scrapers/bonappetit/http")
	restyutil.DumpExchanges(httpClient, "menu", opts.Dump)

	return Client{
		pageUrl: opts.PageUrl,
		http:    httpClient,
		tel:     tel,
	}, nil
}

// Scrape fetches the menu page once and returns its items in page order.
func (c Client) Scrape(ctx context.Context) ([]MenuItem, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get(c.pageUrl)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		c.tel.ReportBroken(report_client_scrape, fmt.Errorf("fetch: %w", err), c.pageUrl)
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	if !res.IsSuccess() {
		err = fmt.Errorf("fetch menu: unexpected status %s", res.Status())
		span.SetStatus(codes.Error, "unexpected status")
		c.tel.ReportBroken(report_client_scrape, err, c.pageUrl)
		return nil, err
	}

	items, err := ParseMenu(bytes.NewBuffer(res.Body()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse")
		c.tel.ReportBroken(report_client_scrape, fmt.Errorf("parse: %w", err), c.pageUrl)
		return nil, err
	}
	if len(items) == 0 {
		c.tel.ReportWarning(report_client_scrape, "no daypart items found", c.pageUrl)
	}

	span.SetAttributes(attribute.Int("items", len(items)))
	c.tel.ReportCount("items", int64(len(items)))
	return items, nil
}
