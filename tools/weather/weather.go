// Package weather provides the get_weather tool over a fixed table of city forecasts.
package weather

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/effective-security/toolbox/pkg/metricskey"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "weather")

const (
	ToolName = "get_weather"

	// ConditionUnknown is reported for cities that are not in the table
	ConditionUnknown = "Unknown"
)

// Request represents the tool input.
type Request struct {
	City string `json:"city" yaml:"city" toml:"city" validate:"max=128" jsonschema:"title=City,description=The name of the city to get the weather for.,example=Delhi"`
}

// Fake returns a request for one of the known cities
func (Request) Fake() any {
	cities := make([]string, 0, len(forecasts))
	for city := range forecasts {
		cities = append(cities, city)
	}
	return &Request{City: gofakeit.RandomString(cities)}
}

// Result is the weather report for a city.
type Result struct {
	City        string `json:"city" yaml:"city" toml:"city" jsonschema:"title=City,description=The city as it was requested."`
	Temperature int    `json:"temperature" yaml:"temperature" toml:"temperature" jsonschema:"title=Temperature,description=Temperature in degrees Celsius."`
	Condition   string `json:"condition" yaml:"condition" toml:"condition" jsonschema:"title=Condition,description=Weather condition or Unknown."`
}

func (r *Result) String() string {
	return fmt.Sprintf("%s: %d°C, %s", r.City, r.Temperature, r.Condition)
}

type forecast struct {
	temperature int
	condition   string
}

var forecasts = map[string]forecast{
	"delhi":     {temperature: 32, condition: "Sunny"},
	"mumbai":    {temperature: 30, condition: "Humid"},
	"bangalore": {temperature: 24, condition: "Cloudy"},
	"london":    {temperature: 15, condition: "Rainy"},
	"new york":  {temperature: 22, condition: "Partly Cloudy"},
}

// GetWeather returns the weather for the city.
// The lookup ignores case and surrounding spaces,
// the city is reported as given.
// Unknown cities report zero temperature and ConditionUnknown.
func GetWeather(city string) *Result {
	f, ok := forecasts[strings.ToLower(strings.TrimSpace(city))]
	if !ok {
		return &Result{
			City:      city,
			Condition: ConditionUnknown,
		}
	}
	return &Result{
		City:        city,
		Temperature: f.temperature,
		Condition:   f.condition,
	}
}

// Known returns true if the city is in the table
func Known(city string) bool {
	_, ok := forecasts[strings.ToLower(strings.TrimSpace(city))]
	return ok
}

// Tool is the get_weather tool
type Tool struct {
	name        string
	description string
}

var (
	_ tools.Tool[Request, Result] = (*Tool)(nil)
	_ tools.MCPTool[Request]      = (*Tool)(nil)
	_ tools.Typed                 = (*Tool)(nil)
)

func New() *Tool {
	return &Tool{
		name:        ToolName,
		description: "Get the current weather for a city. Returns the temperature in Celsius and the weather condition.",
	}
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return schema.MustFor[Request]().Parameters
}

func (t *Tool) RequestType() reflect.Type {
	return reflect.TypeFor[Request]()
}

func (t *Tool) ResultType() reflect.Type {
	return reflect.TypeFor[Result]()
}

func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	res := GetWeather(req.City)
	if !Known(req.City) {
		metricskey.StatsToolFallbacks.IncrCounter(1, t.name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", t.name,
			"status", "unknown_city",
			"city", req.City,
		)
	}
	return res, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	return tools.CallJSON[Request, Result](ctx, t, input)
}

func (t *Tool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *Tool) RunMCP(ctx context.Context, req *Request) (*mcp.ToolResponse, error) {
	return tools.RunMCP[Request, Result](ctx, t, req)
}
