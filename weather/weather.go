// Package weather implements the weather tools on top of the Open-Meteo APIs.
//
// Every tool returns a string: upstream JSON re-encoded on success, or a
// fixed sentence describing the failure. Nothing is cached and no state is
// shared between calls.
package weather

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flitsinc/weather-mcp/openmeteo"
	"github.com/flitsinc/weather-mcp/tools"
)

const (
	DefaultForecastDays = 7
	MinForecastDays     = 1
	MaxForecastDays     = 16
)

// Fetcher retrieves and decodes one JSON document, reporting failure as ok == false.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (value any, ok bool)
}

// Service holds what the tools need to reach Open-Meteo.
type Service struct {
	fetcher   Fetcher
	endpoints openmeteo.Endpoints
}

// NewService returns a Service querying endpoints through fetcher.
func NewService(fetcher Fetcher, endpoints openmeteo.Endpoints) *Service {
	return &Service{fetcher: fetcher, endpoints: endpoints}
}

// Coordinates is a point on the globe as returned by the geocoding tool.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%g, %g", c.Latitude, c.Longitude)
}

type CityParams struct {
	CityName string `json:"city_name" description:"Name of the city to look up, e.g. Berlin."`
}

type PointParams struct {
	Latitude  float64 `json:"latitude" description:"Latitude in decimal degrees."`
	Longitude float64 `json:"longitude" description:"Longitude in decimal degrees."`
}

type ForecastParams struct {
	Latitude  float64 `json:"latitude" description:"Latitude in decimal degrees."`
	Longitude float64 `json:"longitude" description:"Longitude in decimal degrees."`
	Days      *int    `json:"days,omitempty" default:"7" description:"Number of forecast days, between 1 and 16."`
}

type HistoryParams struct {
	Latitude  float64 `json:"latitude" description:"Latitude in decimal degrees."`
	Longitude float64 `json:"longitude" description:"Longitude in decimal degrees."`
	StartDate string  `json:"start_date" description:"First day, formatted YYYY-MM-DD."`
	EndDate   string  `json:"end_date" description:"Last day, formatted YYYY-MM-DD."`
}

// Tools returns the four weather tools in a fixed order.
func (s *Service) Tools() []tools.Tool {
	return []tools.Tool{
		tools.Func("Get Coordinates",
			"Get the latitude and longitude of a city.",
			"get_coordinates_for_city", s.CoordinatesForCity),
		tools.Func("Get Current Weather",
			"Get the current weather conditions at a latitude and longitude.",
			"get_current_weather", s.CurrentWeather),
		tools.Func("Get Daily Forecast",
			"Get the daily weather forecast for up to 16 days at a latitude and longitude.",
			"get_daily_forecast", s.DailyForecast),
		tools.Func("Get Historical Weather",
			"Get daily historical weather between two dates at a latitude and longitude.",
			"get_historical_weather", s.HistoricalWeather),
	}
}

// CoordinatesForCity resolves a city name to its first geocoding match.
func (s *Service) CoordinatesForCity(r tools.Runner, p CityParams) tools.Result {
	notFound := tools.Messagef("Could not find coordinates for %s.", p.CityName)

	r.Report("geocoding " + p.CityName)
	data, ok := s.fetcher.Fetch(r.Context(), s.endpoints.SearchURL(p.CityName))
	if !ok {
		return notFound
	}
	coords, ok := firstResult(data)
	if !ok {
		return notFound
	}
	return tools.Success(coords)
}

// CurrentWeather returns the current conditions at a point.
func (s *Service) CurrentWeather(r tools.Runner, p PointParams) tools.Result {
	r.Report("fetching current weather")
	data, ok := s.fetcher.Fetch(r.Context(), s.endpoints.CurrentURL(p.Latitude, p.Longitude))
	if !ok {
		return tools.Message("Error fetching weather data.")
	}
	return tools.SuccessWithLabel("Current weather", data)
}

// DailyForecast returns daily aggregates for the next days.
func (s *Service) DailyForecast(r tools.Runner, p ForecastParams) tools.Result {
	days := DefaultForecastDays
	if p.Days != nil {
		days = *p.Days
	}
	if days < MinForecastDays || days > MaxForecastDays {
		return tools.Message("Error: Number of days must be between 1 and 16.")
	}

	r.Report(fmt.Sprintf("fetching %d day forecast", days))
	data, ok := s.fetcher.Fetch(r.Context(), s.endpoints.ForecastURL(p.Latitude, p.Longitude, days))
	if !ok {
		return tools.Message("Error fetching weather forecast data.")
	}
	return tools.SuccessWithLabel("Daily forecast", data)
}

// HistoricalWeather returns daily aggregates from the archive. The dates are
// the archive's to validate.
func (s *Service) HistoricalWeather(r tools.Runner, p HistoryParams) tools.Result {
	r.Report("fetching historical weather")
	data, ok := s.fetcher.Fetch(r.Context(), s.endpoints.ArchiveURL(p.Latitude, p.Longitude, p.StartDate, p.EndDate))
	if !ok {
		return tools.Message("Error fetching historical weather data.")
	}
	return tools.SuccessWithLabel("Historical weather", data)
}

// firstResult extracts the coordinates of results[0] from a geocoding response.
func firstResult(data any) (Coordinates, bool) {
	doc, ok := data.(map[string]any)
	if !ok {
		return Coordinates{}, false
	}
	results, ok := doc["results"].([]any)
	if !ok || len(results) == 0 {
		return Coordinates{}, false
	}
	first, ok := results[0].(map[string]any)
	if !ok {
		return Coordinates{}, false
	}
	lat, ok := number(first["latitude"])
	if !ok {
		return Coordinates{}, false
	}
	lon, ok := number(first["longitude"])
	if !ok {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: lat, Longitude: lon}, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	default:
		return 0, false
	}
}
