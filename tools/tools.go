package tools

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/toolbox/encoding/json"
	"github.com/effective-security/toolbox/pkg/llmutils"
	mcp "github.com/metoro-io/mcp-golang"
)

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	// If the tool fails to parse the input, it should return ErrFailedUnmarshalInput error,
	// and ErrInvalidInput if the parsed input is not valid.
	Call(context.Context, string) (string, error)
}

// Tool is an ITool with typed request and result.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool is an interface that extends ITool to include functionality for
// registering the tool with an MCP server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

type MCPTool[I any] interface {
	IMCPTool
	RunMCP(context.Context, *I) (*mcp.ToolResponse, error)
}

// CallJSON implements ITool.Call for a typed tool:
// the input is decoded into I and validated, and the result is returned as JSON.
func CallJSON[I any, O any](ctx context.Context, t Tool[I, O], input string) (string, error) {
	var req I
	if err := jsonenc.Decode([]byte(input), &req); err != nil {
		return "", errors.WithStack(ErrFailedUnmarshalInput)
	}
	if err := jsonenc.Validate(&req); err != nil {
		return "", errors.Mark(errors.Wrap(err, "invalid input"), ErrInvalidInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	bs, err := json.Marshal(out)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}

// RunMCP runs a typed tool and returns its JSON result as MCP text content.
func RunMCP[I any, O any](ctx context.Context, t Tool[I, O], req *I) (*mcp.ToolResponse, error) {
	out, err := t.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(llmutils.ToJSON(out))), nil
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions returns the names and descriptions of the tools,
// formatted for a system prompt.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}

// FunctionDefinition is the function-calling definition of a tool
type FunctionDefinition struct {
	Type     string    `json:"type" yaml:"type"`
	Function *Function `json:"function" yaml:"function"`
}

type Function struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Parameters  any    `json:"parameters" yaml:"parameters"`
}

// Definition returns the function-calling definition of the tool
func Definition(t ITool) *FunctionDefinition {
	return &FunctionDefinition{
		Type: "function",
		Function: &Function{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		},
	}
}
