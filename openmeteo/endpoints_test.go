package openmeteo

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	currentList = "temperature_2m,is_day,showers,cloud_cover,wind_speed_10m,wind_direction_10m,pressure_msl,snowfall,precipitation,relative_humidity_2m,apparent_temperature,rain,weather_code,surface_pressure,wind_gusts_10m"
	dailyList   = "weather_code,temperature_2m_max,temperature_2m_min,precipitation_sum,wind_speed_10m_max"
)

func TestSearchURL(t *testing.T) {
	e := DefaultEndpoints()
	assert.Equal(t, "https://geocoding-api.open-meteo.com/v1/search?name=Berlin&count=1", e.SearchURL("Berlin"))
	assert.Equal(t, "https://geocoding-api.open-meteo.com/v1/search?name=New%20York&count=1", e.SearchURL("New York"))
	assert.Equal(t, "https://geocoding-api.open-meteo.com/v1/search?name=A%26B%3Dc&count=1", e.SearchURL("A&B=c"))

	u, err := url.Parse(e.SearchURL("São Paulo"))
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", u.Query().Get("name"))
}

func TestCurrentURL(t *testing.T) {
	got := DefaultEndpoints().CurrentURL(52.52, 13.41)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast?latitude=52.52&longitude=13.41&current="+currentList, got)
}

func TestForecastURL(t *testing.T) {
	got := DefaultEndpoints().ForecastURL(-33.8688, 151.2093, 3)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast?latitude=-33.8688&longitude=151.2093&forecast_days=3&daily="+dailyList, got)
}

func TestArchiveURL(t *testing.T) {
	got := DefaultEndpoints().ArchiveURL(0, 0, "2024-01-01", "2024-01-31")
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive?latitude=0&longitude=0&start_date=2024-01-01&end_date=2024-01-31&daily="+dailyList, got)

	// Dates are opaque; anything odd is still escaped, never rejected.
	odd := DefaultEndpoints().ArchiveURL(1.5, 2, "not a date", "2024/01/01")
	assert.True(t, strings.Contains(odd, "start_date=not%20a%20date&end_date=2024%2F01%2F01"), odd)
}

func TestFieldListsMatchQuery(t *testing.T) {
	assert.Equal(t, currentList, strings.Join(CurrentFields, ","))
	assert.Equal(t, dailyList, strings.Join(DailyFields, ","))

	u, err := url.Parse(DefaultEndpoints().CurrentURL(1, 2))
	require.NoError(t, err)
	assert.Equal(t, currentList, u.Query().Get("current"))
}

func TestEndpointsTrailingSlash(t *testing.T) {
	e := Endpoints{Geocoding: "http://127.0.0.1:8080/v1/", Forecast: "http://f/v1", Archive: "http://a/v1/"}
	assert.Equal(t, "http://127.0.0.1:8080/v1/search?name=x&count=1", e.SearchURL("x"))
	assert.True(t, strings.HasPrefix(e.ArchiveURL(1, 1, "a", "b"), "http://a/v1/archive?"))
}
