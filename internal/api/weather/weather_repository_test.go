package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// fixedNow pins the forecast horizon so trim assertions stay stable.
var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testRepo(t *testing.T, geocodeURL, forecastURL string) *RepositoryImpl {
	t.Helper()
	cfg := &config.Config{}
	cfg.Forecast.GeocodeURL = geocodeURL
	cfg.Forecast.ForecastURL = forecastURL
	cfg.Forecast.HorizonDays = 16
	repo := NewRepository(cfg, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	repo.now = func() time.Time { return fixedNow }
	return repo
}

func testRequest(start, end string) types.UserRequest {
	return types.UserRequest{City: "New York", StartDate: start, EndDate: end}
}

func TestFetchForecastNormalizesDays(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "New York", r.URL.Query().Get("name"))
		fmt.Fprint(w, `{"results": [{"latitude": 40.71, "longitude": -74.0}]}`)
	}))
	defer geo.Close()

	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"daily": {
			"time": ["2026-03-01", "2026-03-02"],
			"temperature_2m_max": [10, 20],
			"temperature_2m_min": [0, 5],
			"weathercode": [0, 61],
			"precipitation_probability_max": [10, 80],
			"windspeed_10m_max": [10, 50]
		}}`)
	}))
	defer fc.Close()

	repo := testRepo(t, geo.URL, fc.URL)
	out := repo.FetchForecast(context.Background(), testRequest("2026-03-01", "2026-03-02"))

	require.Empty(t, out.Error)
	require.Len(t, out.Forecasts, 2)

	clear := out.Forecasts["2026-03-01"]
	assert.Equal(t, "Clear sky", clear.Description)
	assert.Equal(t, 32.0, clear.TempMinF, "0C is 32F")
	assert.Equal(t, 50.0, clear.TempMaxF, "10C is 50F")
	assert.Equal(t, 6.2, clear.WindSpeedMPH, "10 km/h is 6.2 mph")
	assert.True(t, clear.IsSuitableOutdoor)

	rainy := out.Forecasts["2026-03-02"]
	assert.Equal(t, "Slight rain", rainy.Description)
	assert.False(t, rainy.IsSuitableOutdoor, "bad code, high rain chance and high wind all disqualify")
}

func TestFetchForecastTrimsToHorizon(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": [{"latitude": 40.71, "longitude": -74.0}]}`)
	}))
	defer geo.Close()

	var requestedEnd string
	fc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedEnd = r.URL.Query().Get("end_date")
		fmt.Fprint(w, `{"daily": {"time": []}}`)
	}))
	defer fc.Close()

	repo := testRepo(t, geo.URL, fc.URL)
	out := repo.FetchForecast(context.Background(), testRequest("2026-03-01", "2026-05-01"))

	assert.Empty(t, out.Error, "a window longer than the horizon is trimmed, not rejected")
	assert.Equal(t, "2026-03-16", requestedEnd, "end date clamped to now + 15 days")
}

func TestFetchForecastWindowBeyondHorizon(t *testing.T) {
	repo := testRepo(t, "http://unused.invalid", "http://unused.invalid")
	out := repo.FetchForecast(context.Background(), testRequest("2026-06-01", "2026-06-07"))

	assert.Empty(t, out.Error)
	assert.Empty(t, out.Forecasts, "nothing forecastable is a valid empty state")
}

func TestFetchForecastGeocodeMiss(t *testing.T) {
	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results": []}`)
	}))
	defer geo.Close()

	repo := testRepo(t, geo.URL, "http://unused.invalid")
	out := repo.FetchForecast(context.Background(), testRequest("2026-03-01", "2026-03-02"))

	assert.Contains(t, out.Error, "cannot geocode")
	assert.Empty(t, out.Forecasts)
}
