// Package config loads the server's runtime settings.
//
// Nothing is required: with no file and no environment the server talks to
// the public Open-Meteo endpoints with a 30 second deadline.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"sigs.k8s.io/yaml"

	"github.com/flitsinc/weather-mcp/logging"
	"github.com/flitsinc/weather-mcp/openmeteo"
)

// Environment variables read by Load.
const (
	EnvFilePath         = "WEATHER_ENV_FILE"
	EnvConfigPath       = "WEATHER_CONFIG"
	EnvGeocodingBaseURL = "WEATHER_GEOCODING_BASE_URL"
	EnvForecastBaseURL  = "WEATHER_FORECAST_BASE_URL"
	EnvArchiveBaseURL   = "WEATHER_ARCHIVE_BASE_URL"
	EnvHTTPTimeout      = "WEATHER_HTTP_TIMEOUT"
	EnvLogLevel         = "WEATHER_LOG_LEVEL"
)

type Config struct {
	GeocodingBaseURL string   `json:"geocodingBaseURL"`
	ForecastBaseURL  string   `json:"forecastBaseURL"`
	ArchiveBaseURL   string   `json:"archiveBaseURL"`
	Timeout          Duration `json:"timeout"`
	LogLevel         string   `json:"logLevel"`
}

// Duration is a time.Duration written as a Go duration string ("30s").
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\" or a number of seconds")
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		GeocodingBaseURL: openmeteo.GeocodingBaseURL,
		ForecastBaseURL:  openmeteo.ForecastBaseURL,
		ArchiveBaseURL:   openmeteo.ArchiveBaseURL,
		Timeout:          Duration(openmeteo.DefaultTimeout),
		LogLevel:         "info",
	}
}

// LoadEnvFile loads the dotenv file named by WEATHER_ENV_FILE into the
// environment. Variables that are already set keep their values. Nothing is
// read when WEATHER_ENV_FILE is unset, so a stray .env in the working
// directory has no effect. It returns the path it loaded.
func LoadEnvFile() (string, error) {
	path := os.Getenv(EnvFilePath)
	if path == "" {
		return "", nil
	}
	if err := godotenv.Load(path); err != nil {
		return "", fmt.Errorf("load env file: %w", err)
	}
	return path, nil
}

// Load builds the configuration from defaults, the optional YAML file named by
// WEATHER_CONFIG, and environment overrides, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := cfg.hydrateFromFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) hydrateFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvGeocodingBaseURL); v != "" {
		c.GeocodingBaseURL = v
	}
	if v := os.Getenv(EnvForecastBaseURL); v != "" {
		c.ForecastBaseURL = v
	}
	if v := os.Getenv(EnvArchiveBaseURL); v != "" {
		c.ArchiveBaseURL = v
	}
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		c.Timeout = Duration(d)
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var errs []error
	for _, u := range []struct{ name, value string }{
		{"geocodingBaseURL", c.GeocodingBaseURL},
		{"forecastBaseURL", c.ForecastBaseURL},
		{"archiveBaseURL", c.ArchiveBaseURL},
	} {
		if err := validateBaseURL(u.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", u.name, err))
		}
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("logLevel: %w", err))
	}
	return errors.Join(errs...)
}

// Endpoints returns the Open-Meteo base URLs to query.
func (c *Config) Endpoints() openmeteo.Endpoints {
	return openmeteo.Endpoints{
		Geocoding: c.GeocodingBaseURL,
		Forecast:  c.ForecastBaseURL,
		Archive:   c.ArchiveBaseURL,
	}
}

// HTTPTimeout returns the per-request deadline.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout)
}

func validateBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	if u.RawQuery != "" {
		return errors.New("must not carry a query string")
	}
	return nil
}
