// Package stock provides the get_stock_price tool over a fixed table of quotes.
package stock

import (
	"context"
	"reflect"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/effective-security/toolbox/pkg/metricskey"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "stock")

const (
	ToolName = "get_stock_price"

	// Currency of all quotes
	Currency = "USD"
)

// Request represents the tool input.
type Request struct {
	Symbol string `json:"symbol" yaml:"symbol" toml:"symbol" validate:"max=16" jsonschema:"title=Symbol,description=The stock ticker symbol.,example=AAPL"`
}

// Fake returns a request for one of the known symbols
func (Request) Fake() any {
	symbols := make([]string, 0, len(prices))
	for symbol := range prices {
		symbols = append(symbols, symbol)
	}
	return &Request{Symbol: gofakeit.RandomString(symbols)}
}

// Result is the price of a stock.
type Result struct {
	Symbol   string  `json:"symbol" yaml:"symbol" toml:"symbol" jsonschema:"title=Symbol,description=The symbol as it was requested."`
	Price    float64 `json:"price" yaml:"price" toml:"price" jsonschema:"title=Price,description=The stock price or 0 for unknown symbols."`
	Currency string  `json:"currency" yaml:"currency" toml:"currency" jsonschema:"title=Currency,description=The currency of the price."`
}

func (r *Result) String() string {
	return r.Symbol + ": " + strconv.FormatFloat(r.Price, 'f', 2, 64) + " " + r.Currency
}

var prices = map[string]float64{
	"AAPL":  178.50,
	"GOOGL": 141.80,
	"MSFT":  378.91,
	"AMZN":  178.25,
	"TSLA":  248.50,
}

// GetStockPrice returns the price of the stock.
// The lookup ignores case and surrounding spaces, the symbol is reported as given.
// Unknown symbols have zero price.
func GetStockPrice(symbol string) *Result {
	return &Result{
		Symbol:   symbol,
		Price:    prices[normalize(symbol)],
		Currency: Currency,
	}
}

// Known returns true if the symbol is in the table
func Known(symbol string) bool {
	_, ok := prices[normalize(symbol)]
	return ok
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Tool is the get_stock_price tool
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
		description: "Get the current stock price for a ticker symbol. Returns the price in USD, or 0 for unknown symbols.",
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
	if !Known(req.Symbol) {
		metricskey.StatsToolFallbacks.IncrCounter(1, t.name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", t.name,
			"status", "unknown_symbol",
			"symbol", req.Symbol,
		)
	}
	return GetStockPrice(req.Symbol), nil
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
