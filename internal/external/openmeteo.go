package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"fishcast/internal/types"
)

// Open-Meteo endpoints.
const (
	DefaultOpenMeteoURL       = "https://api.open-meteo.com/v1/forecast"
	DefaultOpenMeteoMarineURL = "https://marine-api.open-meteo.com/v1/marine"
)

const openMeteoTimeLayout = "2006-01-02T15:04"

// OpenMeteoConfig configures the Open-Meteo adapter.
type OpenMeteoConfig struct {
	ForecastURL string
	MarineURL   string
	// Timezone is passed upstream so hourly series are indexed in local time.
	Timezone string
	// APIKey selects the commercial tier; empty uses the free endpoints.
	APIKey types.SecretString
}

// OpenMeteoClient implements WeatherProvider and MarineProvider against
// the Open-Meteo forecast and marine APIs.
type OpenMeteoClient struct {
	*BaseClient
	cfg OpenMeteoConfig
}

// NewOpenMeteoClient creates the adapter. Empty URLs take the public
// endpoints.
func NewOpenMeteoClient(base *BaseClient, cfg OpenMeteoConfig) *OpenMeteoClient {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultOpenMeteoURL
	}
	if cfg.MarineURL == "" {
		cfg.MarineURL = DefaultOpenMeteoMarineURL
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Europe/Istanbul"
	}
	return &OpenMeteoClient{BaseClient: base, cfg: cfg}
}

type openMeteoForecast struct {
	Current struct {
		Time          string   `json:"time"`
		Temperature2m *float64 `json:"temperature_2m"`
		WindSpeed10m  *float64 `json:"wind_speed_10m"`
		WindDir10m    *float64 `json:"wind_direction_10m"`
		Pressure      *float64 `json:"surface_pressure"`
		CloudCover    *float64 `json:"cloud_cover"`
	} `json:"current"`
	Hourly struct {
		Time     []string   `json:"time"`
		Pressure []*float64 `json:"surface_pressure"`
	} `json:"hourly"`
}

type openMeteoMarine struct {
	Current struct {
		WaveHeight *float64 `json:"wave_height"`
		SeaTemp    *float64 `json:"sea_surface_temperature"`
	} `json:"current"`
}

// CurrentWeather implements WeatherProvider. Missing current fields take
// the fallback values; a payload without wind or pressure is rejected.
func (c *OpenMeteoClient) CurrentWeather(ctx context.Context, at types.Coordinates) (types.WeatherReading, error) {
	q := coordQuery(at)
	q.Set("current", "temperature_2m,wind_speed_10m,wind_direction_10m,surface_pressure,cloud_cover")
	q.Set("hourly", "surface_pressure")
	q.Set("timezone", c.cfg.Timezone)
	q.Set("forecast_days", "1")
	q.Set("past_days", "1")

	var payload openMeteoForecast
	if err := c.getJSON(ctx, c.cfg.ForecastURL, q, &payload); err != nil {
		return types.WeatherReading{}, err
	}

	cur := payload.Current
	if cur.WindSpeed10m == nil || cur.Pressure == nil {
		return types.WeatherReading{}, types.NewAppError(types.ErrCodeUpstreamBadPayload,
			"open-meteo response missing wind or pressure", nil)
	}

	fb := FallbackWeather()
	return types.WeatherReading{
		WindSpeedKmh:        *cur.WindSpeed10m,
		WindDirDeg:          valueOr(cur.WindDir10m, fb.WindDirDeg),
		PressureHPa:         *cur.Pressure,
		PressureChange3hHPa: pressureChange3h(cur.Time, payload.Hourly.Time, payload.Hourly.Pressure),
		AirTempC:            valueOr(cur.Temperature2m, fb.AirTempC),
		CloudCoverPct:       valueOr(cur.CloudCover, fb.CloudCoverPct),
		Status:              types.DataQualityLive,
	}, nil
}

// SeaState implements MarineProvider. A payload with neither value is
// rejected so the caller can substitute climatology.
func (c *OpenMeteoClient) SeaState(ctx context.Context, at types.Coordinates) (types.SeaReading, error) {
	q := coordQuery(at)
	q.Set("current", "wave_height,sea_surface_temperature")
	q.Set("timezone", c.cfg.Timezone)

	var payload openMeteoMarine
	if err := c.getJSON(ctx, c.cfg.MarineURL, q, &payload); err != nil {
		return types.SeaReading{}, err
	}
	if payload.Current.SeaTemp == nil && payload.Current.WaveHeight == nil {
		return types.SeaReading{}, types.NewAppError(types.ErrCodeUpstreamBadPayload,
			"open-meteo marine response has no sea values", nil)
	}
	return types.SeaReading{
		SeaTempC:    payload.Current.SeaTemp,
		WaveHeightM: payload.Current.WaveHeight,
		Status:      types.DataQualityLive,
	}, nil
}

func (c *OpenMeteoClient) getJSON(ctx context.Context, endpoint string, q url.Values, out any) error {
	if c.cfg.APIKey != "" {
		q.Set("apikey", c.cfg.APIKey.Unmask())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build open-meteo request", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.NewAppError(types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("open-meteo returned %d", resp.StatusCode), nil).
			WithDetails(map[string]any{"body": string(body)})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamBadPayload, "failed to decode open-meteo response", err)
	}
	return nil
}

// pressureChange3h is the current hour's pressure minus the value three
// hours earlier, located by timestamp in the hourly series. Missing data
// yields 0.
func pressureChange3h(current string, times []string, pressure []*float64) float64 {
	t, err := time.Parse(openMeteoTimeLayout, current)
	if err != nil {
		return 0
	}
	hour := t.Truncate(time.Hour)
	now := slices.Index(times, hour.Format(openMeteoTimeLayout))
	past := slices.Index(times, hour.Add(-3*time.Hour).Format(openMeteoTimeLayout))
	if now < 0 || past < 0 || now >= len(pressure) || past >= len(pressure) {
		return 0
	}
	if pressure[now] == nil || pressure[past] == nil {
		return 0
	}
	return *pressure[now] - *pressure[past]
}

func coordQuery(at types.Coordinates) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(at.Lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(at.Lon, 'f', 4, 64))
	return q
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
