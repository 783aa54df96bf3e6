// Package fdc is a client for the food search of USDA FoodData Central.
package fdc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"willamette-dining/internal/components/assert"
	"willamette-dining/internal/components/telemetry"
	"willamette-dining/lib/util/restyutil"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const (
	report_client_search  = "client.search"
	report_client_resolve = "client.resolve"
)

const DefaultBaseUrl = "https://api.nal.usda.gov/fdc/v1"

var (
	// ErrUnexpectedStatus is returned for any status other than 200 or 500.
	ErrUnexpectedStatus = errors.New("unexpected status")
	// ErrServerUnavailable is returned when every attempt got a 500.
	ErrServerUnavailable = errors.New("server kept failing")
)

var tracer = otel.Tracer("willamette-dining/apis/fdc")

type FoodNutrient struct {
	NutrientId   int64       `json:"nutrientId"`
	NutrientName string      `json:"nutrientName"`
	UnitName     string      `json:"unitName"`
	Value        json.Number `json:"value"`
}

type Food struct {
	FdcId         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	FoodNutrients []FoodNutrient `json:"foodNutrients"`
}

type searchResponse struct {
	TotalHits int64  `json:"totalHits"`
	Foods     []Food `json:"foods"`
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	ApiKey  string
	// RequestsPerSecond limits outgoing requests, zero means unlimited.
	RequestsPerSecond float64
	// Timeout of a single request, zero means no timeout.
	Timeout time.Duration
	// MaxAttempts is the number of tries a search gets when the server answers 500, defaults to 3.
	MaxAttempts int
	// RetryWait is the fixed wait between attempts, defaults to 5 seconds.
	RetryWait time.Duration
	// Timer waits between attempts, nil uses a real timer.
	Timer backoff.Timer
	// Dump receives every http exchange when set.
	Dump restyutil.Output
}

// Client searches FoodData Central, one request at a time.
type Client struct {
	http        *resty.Client
	apiKey      string
	maxAttempts int
	retryWait   time.Duration
	timer       backoff.Timer
	tel         telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) Client {
	assert.NotNil(tel, "tel")
	assert.NotEmptyStr(opts.ApiKey, "opts.ApiKey")

	tel = telemetry.NewScopedAPI("fdc", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryWait <= 0 {
		opts.RetryWait = 5 * time.Second
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	httpClient.SetHeader("accept", "application/json")
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		// max burst of 1 keeps requests evenly spaced
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, "willamette-dining/apis/fdc/http")
	restyutil.DumpExchanges(httpClient, "fdc", opts.Dump)

	return Client{
		http:        httpClient,
		apiKey:      opts.ApiKey,
		maxAttempts: opts.MaxAttempts,
		retryWait:   opts.RetryWait,
		timer:       opts.Timer,
		tel:         tel,
	}
}

// Search returns the nutrient list of the first food matching the query, false
// if nothing matched or the first match lists no nutrients.
func (c Client) Search(ctx context.Context, query string) ([]FoodNutrient, bool, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	var result searchResponse
	attempts := 0
	search := func() error {
		attempts++

		res, err := c.http.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"api_key": c.apiKey,
				"query":   query,
			}).
			Get("/foods/search")
		if err != nil {
			return backoff.Permanent(fmt.Errorf("search %q: %w", query, restyutil.RedactError(err)))
		}

		switch res.StatusCode() {
		case http.StatusOK:
			decoder := json.NewDecoder(bytes.NewBuffer(res.Body()))
			decoder.UseNumber()
			err = decoder.Decode(&result)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("decode search %q: %w", query, err))
			}
			return nil
		case http.StatusInternalServerError:
			return fmt.Errorf("%w: %s", ErrServerUnavailable, res.Status())
		default:
			return backoff.Permanent(fmt.Errorf(
				"search %q: %w: %s", query, ErrUnexpectedStatus, res.Status(),
			))
		}
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(
			backoff.NewConstantBackOff(c.retryWait),
			uint64(c.maxAttempts-1),
		),
		ctx,
	)
	err := backoff.RetryNotifyWithTimer(search, policy, func(err error, wait time.Duration) {
		c.tel.ReportDebug("retrying search", query, err, wait)
	}, c.timer)
	span.SetAttributes(attribute.Int("attempts", attempts))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		if !errors.Is(err, ErrServerUnavailable) {
			c.tel.ReportBroken(report_client_search, err, query)
		}
		return nil, false, err
	}

	if result.TotalHits <= 0 {
		return nil, false, nil
	}
	if len(result.Foods) == 0 {
		c.tel.ReportWarning(report_client_search, "hits reported without foods", query, result.TotalHits)
		return nil, false, nil
	}

	nutrients := result.Foods[0].FoodNutrients
	if len(nutrients) == 0 {
		c.tel.ReportDebug("first hit has no nutrients", query, result.Foods[0].FdcId)
		return nil, false, nil
	}

	return nutrients, true, nil
}

// Resolve looks up the target nutrients of a food name. A name without hits and a
// search the server kept failing with 500 both count as no data, every other failure
// is returned.
func (c Client) Resolve(ctx context.Context, name string) (Profile, bool, error) {
	nutrients, found, err := c.Search(ctx, name)
	if errors.Is(err, ErrServerUnavailable) {
		c.tel.ReportWarning(report_client_resolve, err, name, c.maxAttempts)
		return Profile{}, false, nil
	}
	if err != nil {
		return Profile{}, false, err
	}
	if !found {
		return Profile{}, false, nil
	}
	return Extract(nutrients), true, nil
}
