package fdc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
	"willamette-dining/internal/components/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{c: make(chan time.Time, 1)}
}

func (f *fakeTimer) Start(d time.Duration) {
	f.waits = append(f.waits, d)
	f.c <- time.Time{}
}

func (f *fakeTimer) Stop() {}

func (f *fakeTimer) C() <-chan time.Time {
	return f.c
}

func num(s string) *json.Number {
	n := json.Number(s)
	return &n
}

const grilledChicken = `{
	"totalHits": 2,
	"foods": [
		{
			"fdcId": 2646170,
			"description": "GRILLED CHICKEN",
			"foodNutrients": [
				{"nutrientId": 1008, "nutrientName": "Energy", "unitName": "KCAL", "value": 200},
				{"nutrientId": 1003, "nutrientName": "Protein", "unitName": "G", "value": 30}
			]
		},
		{
			"fdcId": 1,
			"description": "NOT THIS ONE",
			"foodNutrients": [
				{"nutrientId": 1004, "nutrientName": "Total lipid (fat)", "unitName": "G", "value": 99}
			]
		}
	]
}`

type searchServer struct {
	statuses []int
	body     string

	lock     sync.Mutex
	requests []*http.Request
}

func (s *searchServer) all() []*http.Request {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]*http.Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *searchServer) reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.requests = nil
}

// the server answers with the given statuses in order, then with 200 and body.
func (s *searchServer) start(t testing.TB) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.lock.Lock()
		s.requests = append(s.requests, r)
		n := len(s.requests)
		s.lock.Unlock()

		if n <= len(s.statuses) {
			w.WriteHeader(s.statuses[n-1])
			return
		}
		w.Header().Set("content-type", "application/json")
		w.Write([]byte(s.body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(url string, timer *fakeTimer, tel telemetry.API) Client {
	return NewClient(ClientOptions{
		BaseUrl: url,
		ApiKey:  "TEST_KEY",
		Timer:   timer,
	}, tel)
}

func TestExtract(t *testing.T) {
	testCases := []struct {
		name      string
		nutrients []FoodNutrient
		expected  Profile
	}{
		{
			name:      "empty list",
			nutrients: nil,
			expected:  Profile{},
		},
		{
			name: "non targets are dropped",
			nutrients: []FoodNutrient{
				{NutrientId: 1062, NutrientName: "Energy", UnitName: "kJ", Value: "837"},
				{NutrientId: 1008, NutrientName: "Energy", UnitName: "KCAL", Value: "200"},
				{NutrientId: 1093, NutrientName: "Sodium, Na", UnitName: "MG", Value: "450"},
				{NutrientId: 1003, NutrientName: "Protein", UnitName: "G", Value: "30"},
			},
			expected: Profile{
				Calories: num("200"),
				Protein:  num("30"),
			},
		},
		{
			name: "every target",
			nutrients: []FoodNutrient{
				{NutrientId: 2000, Value: "1.2"},
				{NutrientId: 1079, Value: "0"},
				{NutrientId: 1005, Value: "12.50"},
				{NutrientId: 1253, Value: "85"},
				{NutrientId: 1258, Value: "2.3"},
				{NutrientId: 1004, Value: "7.14"},
				{NutrientId: 1008, Value: "165"},
				{NutrientId: 1003, Value: "31"},
			},
			expected: Profile{
				Calories:    num("165"),
				TotalFat:    num("7.14"),
				TotalSatFat: num("2.3"),
				Cholesterol: num("85"),
				TotalCarbs:  num("12.50"),
				Fiber:       num("0"),
				Sugars:      num("1.2"),
				Protein:     num("31"),
			},
		},
		{
			name: "later duplicate wins and missing values are absent",
			nutrients: []FoodNutrient{
				{NutrientId: 1004, Value: "1"},
				{NutrientId: 1004, Value: "2"},
				{NutrientId: 1079},
			},
			expected: Profile{
				TotalFat: num("2"),
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expected, Extract(test.nutrients))
		})
	}
}

func TestProfileJSON(t *testing.T) {
	profile := Extract([]FoodNutrient{
		{NutrientId: 1008, Value: "200"},
		{NutrientId: 1003, Value: "30"},
	})

	out, err := json.Marshal(profile)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"Calories": 200,
		"Total Fat": null,
		"Total Sat Fat": null,
		"Cholesterol": null,
		"Total Carbs": null,
		"Fiber": null,
		"Sugars": null,
		"Protein": 30
	}`, string(out))

	for _, target := range Targets {
		value := profile.Get(target.Id)
		switch target.Id {
		case NUTRIENT_ENERGY:
			require.Equal(t, num("200"), value)
		case NUTRIENT_PROTEIN:
			require.Equal(t, num("30"), value)
		default:
			require.Nil(t, value, target.Field)
		}
	}
}

func TestSearchFirstHit(t *testing.T) {
	server := &searchServer{body: grilledChicken}
	url := server.start(t).URL

	timer := newFakeTimer()
	client := newTestClient(url, timer, telemetry.NewMemoryAPI())

	nutrients, found, err := client.Search(context.Background(), "Grilled Chicken")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, nutrients, 2)
	require.Equal(t, int64(1008), nutrients[0].NutrientId)

	requests := server.all()
	require.Len(t, requests, 1)
	query := requests[0].URL.Query()
	require.Equal(t, "/foods/search", requests[0].URL.Path)
	require.Equal(t, "TEST_KEY", query.Get("api_key"))
	require.Equal(t, "Grilled Chicken", query.Get("query"))
	require.Empty(t, timer.waits)
}

func TestResolveNoHits(t *testing.T) {
	server := &searchServer{body: `{"totalHits": 0, "foods": []}`}
	url := server.start(t).URL

	client := newTestClient(url, newFakeTimer(), telemetry.NewMemoryAPI())

	profile, found, err := client.Resolve(context.Background(), "Chef's Seasonal Inspiration Medley")
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, Profile{}, profile)
}

func TestResolveRetriesServerErrors(t *testing.T) {
	server := &searchServer{
		statuses: []int{http.StatusInternalServerError, http.StatusInternalServerError},
		body:     grilledChicken,
	}
	url := server.start(t).URL

	timer := newFakeTimer()
	client := newTestClient(url, timer, telemetry.NewMemoryAPI())

	profile, found, err := client.Resolve(context.Background(), "Grilled Chicken")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, num("200"), profile.Calories)
	require.Equal(t, num("30"), profile.Protein)
	require.Nil(t, profile.TotalFat)

	require.Len(t, server.all(), 3)
	require.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, timer.waits)
}

func TestResolveGivesUpAfterThreeAttempts(t *testing.T) {
	server := &searchServer{
		statuses: []int{
			http.StatusInternalServerError,
			http.StatusInternalServerError,
			http.StatusInternalServerError,
		},
		body: grilledChicken,
	}
	url := server.start(t).URL

	timer := newFakeTimer()
	tel := telemetry.NewMemoryAPI()
	client := newTestClient(url, timer, tel)

	_, _, err := client.Search(context.Background(), "Grilled Chicken")
	require.ErrorIs(t, err, ErrServerUnavailable)

	server.reset()
	timer.waits = nil

	profile, found, err := client.Resolve(context.Background(), "Grilled Chicken")
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, Profile{}, profile)
	require.Len(t, server.all(), 3)
	require.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, timer.waits)

	warnings := tel.Reports(telemetry.REPORT_WARNING)
	require.NotEmpty(t, warnings)
	require.Equal(t, "fdc: "+report_client_resolve, warnings[len(warnings)-1].Id)
}

func TestResolveUnexpectedStatusIsFatal(t *testing.T) {
	server := &searchServer{
		statuses: []int{http.StatusForbidden},
		body:     grilledChicken,
	}
	url := server.start(t).URL

	timer := newFakeTimer()
	tel := telemetry.NewMemoryAPI()
	client := newTestClient(url, timer, tel)

	_, found, err := client.Resolve(context.Background(), "Grilled Chicken")
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.False(t, found)
	require.Len(t, server.all(), 1)
	require.Empty(t, timer.waits)
	require.NotEmpty(t, tel.Reports(telemetry.REPORT_BROKEN))
}

func TestResolveMalformedBody(t *testing.T) {
	server := &searchServer{body: `{"totalHits": "lots"`}
	url := server.start(t).URL

	client := newTestClient(url, newFakeTimer(), telemetry.NewMemoryAPI())

	_, _, err := client.Resolve(context.Background(), "Grilled Chicken")
	require.Error(t, err)
	require.Len(t, server.all(), 1)
}

func TestResolveEmptyNutrientList(t *testing.T) {
	server := &searchServer{body: `{"totalHits": 1, "foods": [{"fdcId": 7, "description": "TACOS", "foodNutrients": []}]}`}
	url := server.start(t).URL

	client := newTestClient(url, newFakeTimer(), telemetry.NewMemoryAPI())

	nutrients, found, err := client.Search(context.Background(), "Tacos")
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, nutrients)

	profile, found, err := client.Resolve(context.Background(), "Tacos")
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, Profile{}, profile)
}

func TestResolveTransportErrorHidesApiKey(t *testing.T) {
	server := (&searchServer{body: grilledChicken}).start(t)
	closed := server.URL
	// nothing listens on the url anymore, requests fail with connection refused
	server.Close()

	const secret = "SUPERSECRET123"
	tel := telemetry.NewMemoryAPI()
	client := NewClient(ClientOptions{
		BaseUrl: closed,
		ApiKey:  secret,
		Timer:   newFakeTimer(),
	}, tel)

	_, _, err := client.Resolve(context.Background(), "Tacos")
	require.Error(t, err)
	require.NotContains(t, err.Error(), secret)
	require.Contains(t, err.Error(), "api_key=REDACTED")

	kinds := []telemetry.ReportKind{
		telemetry.REPORT_BROKEN,
		telemetry.REPORT_WARNING,
		telemetry.REPORT_DEBUG,
		telemetry.REPORT_COUNT,
	}
	for _, kind := range kinds {
		for _, r := range tel.Reports(kind) {
			require.NotContains(t, fmt.Sprint(r.Params...), secret, r.Id)
		}
	}
	require.NotEmpty(t, tel.Reports(telemetry.REPORT_BROKEN))
}
