// Package calculator provides the calculate tool for simple arithmetic expressions.
package calculator

import (
	"context"
	"fmt"
	"reflect"
	"strconv"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/effective-security/toolbox/pkg/metricskey"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "calculator")

const ToolName = "calculate"

// Request represents the tool input.
type Request struct {
	Expression string `json:"expression" yaml:"expression" toml:"expression" validate:"max=4096" jsonschema:"title=Expression,description=Arithmetic expression with numbers and + - * / and parentheses.,example=(100 + 50) * 0.2"`
}

// Fake returns a request with a random expression
func (Request) Fake() any {
	return &Request{
		Expression: fmt.Sprintf("(%d + %d) * %d",
			gofakeit.IntRange(1, 100), gofakeit.IntRange(1, 100), gofakeit.IntRange(1, 10)),
	}
}

// Result is the value of an expression.
type Result struct {
	Expression string  `json:"expression" yaml:"expression" toml:"expression" jsonschema:"title=Expression,description=The expression as it was requested."`
	Result     float64 `json:"result" yaml:"result" toml:"result" jsonschema:"title=Result,description=The value of the expression or 0 if it could not be evaluated."`
}

func (r *Result) String() string {
	return r.Expression + " = " + strconv.FormatFloat(r.Result, 'f', -1, 64)
}

// Calculate evaluates the expression.
// Invalid expressions, division by zero and non-finite results
// evaluate to 0.
func Calculate(expression string) *Result {
	v, err := Evaluate(expression)
	if err != nil {
		v = 0
	}
	return &Result{
		Expression: expression,
		Result:     v,
	}
}

// Tool is the calculate tool
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
		description: "Evaluate an arithmetic expression. Supports + - * / parentheses and decimal numbers. Returns 0 if the expression is invalid.",
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
	v, err := Evaluate(req.Expression)
	if err != nil {
		metricskey.StatsToolFallbacks.IncrCounter(1, t.name)
		logger.ContextKV(ctx, xlog.DEBUG,
			"tool", t.name,
			"status", "invalid_expression",
			"expression", req.Expression,
			"err", err.Error(),
		)
		v = 0
	}
	return &Result{
		Expression: req.Expression,
		Result:     v,
	}, nil
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
