package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/types"
)

// wmoDescriptions maps WMO weather codes to short human-readable text.
var wmoDescriptions = map[int]string{
	0: "Clear sky", 1: "Mainly clear", 2: "Partly cloudy", 3: "Overcast",
	45: "Fog", 48: "Rime fog",
	51: "Light drizzle", 53: "Moderate drizzle", 55: "Dense drizzle",
	61: "Slight rain", 63: "Moderate rain", 65: "Heavy rain",
	71: "Slight snow", 73: "Moderate snow", 75: "Heavy snow",
	80: "Slight showers", 81: "Moderate showers", 82: "Violent showers",
	95: "Thunderstorm", 96: "Thunderstorm+hail", 99: "Thunderstorm+heavy hail",
}

// badWeatherCodes disqualify a day for outdoor events regardless of the
// precipitation and wind thresholds.
var badWeatherCodes = map[int]bool{
	45: true, 48: true, 51: true, 53: true, 55: true,
	61: true, 63: true, 65: true, 71: true, 73: true, 75: true,
	80: true, 81: true, 82: true, 95: true, 96: true, 99: true,
}

// Ensure implementation satisfies the interface
var _ Repository = (*RepositoryImpl)(nil)

// Repository is the forecast collaborator boundary. Like the catalog side,
// failures travel inside the collection so the fan-out join never discards a
// result.
type Repository interface {
	FetchForecast(ctx context.Context, request types.UserRequest) types.ForecastCollection
}

// RepositoryImpl geocodes the city and fetches daily forecasts from an
// Open-Meteo compatible API. No key is needed.
type RepositoryImpl struct {
	logger      *slog.Logger
	client      *http.Client
	geocodeURL  string
	forecastURL string
	horizonDays int
	now         func() time.Time
}

func NewRepository(cfg *config.Config, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger:      logger,
		client:      &http.Client{Timeout: cfg.Forecast.Timeout},
		geocodeURL:  cfg.Forecast.GeocodeURL,
		forecastURL: cfg.Forecast.ForecastURL,
		horizonDays: cfg.Forecast.HorizonDays,
		now:         time.Now,
	}
}

// FetchForecast returns one ForecastRecord per calendar day in the requested
// range, trimmed to the provider's forecast horizon. A window that lies
// entirely beyond the horizon yields an empty map, not an error.
func (r *RepositoryImpl) FetchForecast(ctx context.Context, request types.UserRequest) types.ForecastCollection {
	ctx, span := otel.Tracer("WeatherRepository").Start(ctx, "FetchForecast")
	defer span.End()
	span.SetAttributes(attribute.String("request.city", request.City))

	out := types.ForecastCollection{City: request.City, Forecasts: map[string]types.ForecastRecord{}}

	fail := func(err error) types.ForecastCollection {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forecast fetch failed")
		collErr := &types.CollectionError{Source: "forecast", Err: err}
		r.logger.WarnContext(ctx, "Forecast fetch failed", slog.Any("error", err))
		out.Error = collErr.Error()
		return out
	}

	start, end, ok := r.trimToHorizon(request.StartDate, request.EndDate)
	if !ok {
		// Whole window beyond the horizon: defined, forecast-free state.
		r.logger.InfoContext(ctx, "Requested window beyond forecast horizon",
			slog.String("start", request.StartDate), slog.String("end", request.EndDate))
		return out
	}

	lat, lon, err := r.geocode(ctx, request.City)
	if err != nil {
		return fail(err)
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", lat))
	params.Set("longitude", fmt.Sprintf("%.4f", lon))
	params.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode,precipitation_probability_max,windspeed_10m_max")
	params.Set("start_date", start)
	params.Set("end_date", end)
	params.Set("timezone", "auto")
	params.Set("temperature_unit", "celsius")
	params.Set("windspeed_unit", "kmh")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.forecastURL+"?"+params.Encode(), nil)
	if err != nil {
		return fail(fmt.Errorf("failed to build forecast request: %w", err))
	}
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return fail(fmt.Errorf("forecast request failed: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("forecast returned status %d", resp.StatusCode))
	}

	var body struct {
		Daily struct {
			Time        []string   `json:"time"`
			TempMax     []*float64 `json:"temperature_2m_max"`
			TempMin     []*float64 `json:"temperature_2m_min"`
			WeatherCode []*int     `json:"weathercode"`
			PrecipMax   []*float64 `json:"precipitation_probability_max"`
			WindMax     []*float64 `json:"windspeed_10m_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fail(fmt.Errorf("failed to decode forecast response: %w", err))
	}

	d := body.Daily
	for i, day := range d.Time {
		code := intAt(d.WeatherCode, i)
		precip := floatAt(d.PrecipMax, i)
		windMPH := kmhToMPH(floatAt(d.WindMax, i))
		desc, found := wmoDescriptions[code]
		if !found {
			desc = "Unknown"
		}
		out.Forecasts[day] = types.ForecastRecord{
			Date:              day,
			TempMinF:          cToF(floatAt(d.TempMin, i)),
			TempMaxF:          cToF(floatAt(d.TempMax, i)),
			Description:       desc,
			PrecipChance:      precip,
			WindSpeedMPH:      windMPH,
			IsSuitableOutdoor: !badWeatherCodes[code] && precip < 50 && windMPH < 25,
		}
	}

	r.logger.InfoContext(ctx, "Forecast fetch completed", slog.Int("days", len(out.Forecasts)))
	span.SetAttributes(attribute.Int("forecast.days", len(out.Forecasts)))
	return out
}

// trimToHorizon clamps the requested window to what the provider can
// actually forecast. Returns ok=false when nothing overlaps.
func (r *RepositoryImpl) trimToHorizon(startDate, endDate string) (string, string, bool) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return "", "", false
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return "", "", false
	}
	horizon := r.now().AddDate(0, 0, r.horizonDays-1).Truncate(24 * time.Hour)
	if start.After(horizon) {
		return "", "", false
	}
	if end.After(horizon) {
		end = horizon
	}
	return start.Format("2006-01-02"), end.Format("2006-01-02"), true
}

func (r *RepositoryImpl) geocode(ctx context.Context, city string) (float64, float64, error) {
	params := url.Values{}
	params.Set("name", city)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, r.geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build geocode request: %w", err)
	}
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return 0, 0, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocode returned status %d", resp.StatusCode)
	}

	var body struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(body.Results) == 0 {
		return 0, 0, fmt.Errorf("cannot geocode city %q", city)
	}
	return body.Results[0].Latitude, body.Results[0].Longitude, nil
}

func cToF(c float64) float64 {
	return round1(c*9/5 + 32)
}

func kmhToMPH(kmh float64) float64 {
	return round1(kmh * 0.621371)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

func floatAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}

func intAt(vals []*int, i int) int {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	return *vals[i]
}
