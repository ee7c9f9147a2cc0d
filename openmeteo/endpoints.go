package openmeteo

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	GeocodingBaseURL = "https://geocoding-api.open-meteo.com/v1"
	ForecastBaseURL  = "https://api.open-meteo.com/v1"
	ArchiveBaseURL   = "https://archive-api.open-meteo.com/v1"
)

// CurrentFields are the variables requested for current conditions, in order.
var CurrentFields = []string{
	"temperature_2m",
	"is_day",
	"showers",
	"cloud_cover",
	"wind_speed_10m",
	"wind_direction_10m",
	"pressure_msl",
	"snowfall",
	"precipitation",
	"relative_humidity_2m",
	"apparent_temperature",
	"rain",
	"weather_code",
	"surface_pressure",
	"wind_gusts_10m",
}

// DailyFields are the daily aggregates requested for forecasts and the archive.
var DailyFields = []string{
	"weather_code",
	"temperature_2m_max",
	"temperature_2m_min",
	"precipitation_sum",
	"wind_speed_10m_max",
}

// Endpoints holds the base URLs of the three Open-Meteo APIs.
type Endpoints struct {
	Geocoding string
	Forecast  string
	Archive   string
}

// DefaultEndpoints returns the public Open-Meteo base URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Geocoding: GeocodingBaseURL,
		Forecast:  ForecastBaseURL,
		Archive:   ArchiveBaseURL,
	}
}

// SearchURL returns the geocoding URL resolving name to its best match.
func (e Endpoints) SearchURL(name string) string {
	var q query
	q.add("name", name)
	q.add("count", "1")
	return join(e.Geocoding, "search", q)
}

// CurrentURL returns the forecast URL for current conditions at a point.
func (e Endpoints) CurrentURL(latitude, longitude float64) string {
	var q query
	q.add("latitude", formatCoord(latitude))
	q.add("longitude", formatCoord(longitude))
	q.add("current", CurrentFields...)
	return join(e.Forecast, "forecast", q)
}

// ForecastURL returns the forecast URL for days of daily aggregates.
func (e Endpoints) ForecastURL(latitude, longitude float64, days int) string {
	var q query
	q.add("latitude", formatCoord(latitude))
	q.add("longitude", formatCoord(longitude))
	q.add("forecast_days", strconv.Itoa(days))
	q.add("daily", DailyFields...)
	return join(e.Forecast, "forecast", q)
}

// ArchiveURL returns the archive URL for daily aggregates between two dates.
// The dates are passed through untouched.
func (e Endpoints) ArchiveURL(latitude, longitude float64, startDate, endDate string) string {
	var q query
	q.add("latitude", formatCoord(latitude))
	q.add("longitude", formatCoord(longitude))
	q.add("start_date", startDate)
	q.add("end_date", endDate)
	q.add("daily", DailyFields...)
	return join(e.Archive, "archive", q)
}

// query is an ordered query string. url.Values sorts keys and escapes the
// commas of list values, neither of which the field lists tolerate.
type query []string

// add appends key=v1,v2,... with every value escaped on its own.
func (q *query) add(key string, values ...string) {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = escape(v)
	}
	*q = append(*q, escape(key)+"="+strings.Join(escaped, ","))
}

func (q query) encode() string {
	return strings.Join(q, "&")
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func join(base, path string, q query) string {
	return strings.TrimRight(base, "/") + "/" + path + "?" + q.encode()
}

// formatCoord renders a coordinate with the fewest digits that round-trip.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
