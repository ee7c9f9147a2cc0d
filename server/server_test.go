package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"github.com/flitsinc/weather-mcp/openmeteo"
	"github.com/flitsinc/weather-mcp/tools"
	"github.com/flitsinc/weather-mcp/weather"
)

// fakeOpenMeteo answers geocoding with coordinates derived from the city name
// length and everything else with a fixed forecast document.
func fakeOpenMeteo(t *testing.T, hits *atomic.Int32) openmeteo.Endpoints {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/v1/search":
			name := r.URL.Query().Get("name")
			if name == "Atlantis" {
				_, _ = w.Write([]byte(`{"generationtime_ms":0.1}`))
				return
			}
			fmt.Fprintf(w, `{"results":[{"latitude":%d.5,"longitude":-%d.25,"name":%q}]}`, len(name), len(name), name)
		case "/v1/forecast", "/v1/archive":
			_, _ = w.Write([]byte(`{"current":{"temperature_2m":12.3}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	base := srv.URL + "/v1"
	return openmeteo.Endpoints{Geocoding: base, Forecast: base, Archive: base}
}

func connect(t *testing.T, box *tools.Toolbox, log *zap.Logger) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	srv := New(box, log)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{Name: "test-host", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Wait()
	})
	return cs
}

func weatherSession(t *testing.T) (*mcp.ClientSession, *atomic.Int32) {
	t.Helper()
	hits := &atomic.Int32{}
	client := openmeteo.NewClient(openmeteo.WithLogger(zap.NewNop()))
	svc := weather.NewService(client, fakeOpenMeteo(t, hits))
	return connect(t, tools.Box(svc.Tools()...), zap.NewNop()), hits
}

func callText(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (string, bool) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be text, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestServer_InitializeAdvertisesName(t *testing.T) {
	cs, _ := weatherSession(t)
	init := cs.InitializeResult()
	require.NotNil(t, init)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, "weather", init.ServerInfo.Name)
}

func TestServer_ListTools(t *testing.T) {
	cs, _ := weatherSession(t)

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	schemas := map[string]map[string]any{}
	for _, tool := range res.Tools {
		assert.NotEmpty(t, tool.Description, tool.Name)
		raw, err := json.Marshal(tool.InputSchema)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		schemas[tool.Name] = m
	}
	require.Len(t, schemas, 4)

	required := func(name string) []any {
		r, _ := schemas[name]["required"].([]any)
		return r
	}
	props := func(name string) map[string]any {
		p, _ := schemas[name]["properties"].(map[string]any)
		return p
	}

	for name := range schemas {
		assert.Equal(t, "object", schemas[name]["type"], name)
	}
	assert.ElementsMatch(t, []any{"city_name"}, required("get_coordinates_for_city"))
	assert.ElementsMatch(t, []any{"latitude", "longitude"}, required("get_current_weather"))
	assert.ElementsMatch(t, []any{"latitude", "longitude"}, required("get_daily_forecast"))
	assert.ElementsMatch(t, []any{"latitude", "longitude", "start_date", "end_date"}, required("get_historical_weather"))

	days, ok := props("get_daily_forecast")["days"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "integer", days["type"])
	assert.Equal(t, float64(7), days["default"])

	lat, ok := props("get_current_weather")["latitude"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "number", lat["type"])
}

func TestServer_CallTools(t *testing.T) {
	cs, _ := weatherSession(t)

	text, isErr := callText(t, cs, "get_coordinates_for_city", map[string]any{"city_name": "Berlin"})
	assert.False(t, isErr)
	assert.JSONEq(t, `{"latitude":6.5,"longitude":-6.25}`, text)

	text, isErr = callText(t, cs, "get_coordinates_for_city", map[string]any{"city_name": "Atlantis"})
	assert.False(t, isErr, "a failed lookup is an answer, not a protocol error")
	assert.Equal(t, "Could not find coordinates for Atlantis.", text)

	text, isErr = callText(t, cs, "get_current_weather", map[string]any{"latitude": 52.52, "longitude": 13.41})
	assert.False(t, isErr)
	assert.JSONEq(t, `{"current":{"temperature_2m":12.3}}`, text)

	text, _ = callText(t, cs, "get_historical_weather", map[string]any{
		"latitude": 52.52, "longitude": 13.41, "start_date": "2024-01-01", "end_date": "2024-01-07",
	})
	assert.JSONEq(t, `{"current":{"temperature_2m":12.3}}`, text)
}

func TestServer_DaysOutOfRangeMakesNoRequest(t *testing.T) {
	cs, hits := weatherSession(t)

	text, isErr := callText(t, cs, "get_daily_forecast", map[string]any{"latitude": 0, "longitude": 0, "days": 0})
	assert.False(t, isErr)
	assert.Equal(t, "Error: Number of days must be between 1 and 16.", text)
	assert.Equal(t, int32(0), hits.Load())
}

func TestServer_InvalidArguments(t *testing.T) {
	cs, hits := weatherSession(t)

	text, isErr := callText(t, cs, "get_current_weather", map[string]any{"latitude": "north", "longitude": 1})
	assert.True(t, isErr)
	assert.Contains(t, text, "Error: validation error for get_current_weather")

	text, isErr = callText(t, cs, "get_coordinates_for_city", nil)
	assert.True(t, isErr)
	assert.Contains(t, text, "missing required field")

	assert.Equal(t, int32(0), hits.Load())
}

func TestServer_UnknownTool(t *testing.T) {
	cs, _ := weatherSession(t)

	_, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "get_moon_phase", Arguments: map[string]any{}})
	assert.Error(t, err)
}

func TestServer_ConcurrentCalls(t *testing.T) {
	cs, hits := weatherSession(t)
	cities := []string{"Rome", "Oslo", "Lisbon", "Reykjavik", "Nairobi", "Lima", "Seoul", "Quebec City"}

	g, ctx := errgroup.WithContext(context.Background())
	got := make([]string, len(cities))
	for i, city := range cities {
		g.Go(func() error {
			res, err := cs.CallTool(ctx, &mcp.CallToolParams{
				Name:      "get_coordinates_for_city",
				Arguments: map[string]any{"city_name": city},
			})
			if err != nil {
				return err
			}
			got[i] = res.Content[0].(*mcp.TextContent).Text
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i, city := range cities {
		want := fmt.Sprintf(`{"latitude":%d.5,"longitude":-%d.25}`, len(city), len(city))
		assert.JSONEq(t, want, got[i], city)
	}
	assert.Equal(t, int32(len(cities)), hits.Load())
}

func TestServer_PanickingToolIsContained(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	boom := tools.Func("Boom", "Always panics.", "boom", func(r tools.Runner, p struct{}) tools.Result {
		panic("kaboom")
	})
	ok := tools.Func("Ok", "Always works.", "ok", func(r tools.Runner, p struct{}) tools.Result {
		r.Report("working")
		return tools.Message("fine")
	})
	cs := connect(t, tools.Box(boom, ok), zap.New(core))

	text, isErr := callText(t, cs, "boom", map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "kaboom")
	assert.Equal(t, 1, logs.FilterMessage("tool panicked").Len())

	text, isErr = callText(t, cs, "ok", map[string]any{})
	assert.False(t, isErr)
	assert.Equal(t, "fine", text)
	assert.Equal(t, 1, logs.FilterMessage("tool status").Len())
}

func TestInputSchema(t *testing.T) {
	assert.Equal(t, "object", InputSchema(nil).Type)

	forecast := tools.Func("Forecast", "Forecast.", "forecast", func(r tools.Runner, p weather.ForecastParams) tools.Result {
		return tools.Message("unused")
	})
	s := InputSchema(forecast.Schema())
	assert.Equal(t, "object", s.Type)
	assert.ElementsMatch(t, []string{"latitude", "longitude"}, s.Required)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, "number", s.Properties["latitude"].Type)
	assert.Equal(t, "integer", s.Properties["days"].Type)
	assert.JSONEq(t, `7`, string(s.Properties["days"].Default))
	assert.NotEmpty(t, s.Properties["days"].Description)
	assert.Nil(t, s.Properties["latitude"].Default)

	empty := tools.Func("Empty", "No arguments.", "empty", func(r tools.Runner, p struct{}) tools.Result {
		return tools.Message("unused")
	})
	s = InputSchema(empty.Schema())
	assert.Equal(t, "object", s.Type)
	assert.Empty(t, s.Properties)
}
