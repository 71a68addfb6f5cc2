package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/encoding"
	"github.com/effective-security/toolbox/mcp"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/toolbox/tools/calculator"
	"github.com/effective-security/toolbox/tools/stock"
	"github.com/effective-security/toolbox/tools/weather"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

func weatherCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "weather <city...>",
		Short: "Get the weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &weather.Request{City: strings.Join(args, " ")}
			return callTool[weather.Request, weather.Result](cmd.Context(), a, weather.ToolName, req)
		},
	}
}

func calcCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calc <expression...>",
		Short: "Evaluate an arithmetic expression",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &calculator.Request{Expression: strings.Join(args, " ")}
			return callTool[calculator.Request, calculator.Result](cmd.Context(), a, calculator.ToolName, req)
		},
	}
}

func stockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <symbol>",
		Short: "Get the stock price for a ticker symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &stock.Request{Symbol: args[0]}
			return callTool[stock.Request, stock.Result](cmd.Context(), a, stock.ToolName, req)
		},
	}
}

func callCmd(a *app) *cobra.Command {
	var inputFormat string
	cmd := &cobra.Command{
		Use:   "call <tool> [input]",
		Short: "Call a tool by name with JSON input",
		Long: "Call a tool by name, as an agent runtime does.\n" +
			"The input is read from stdin if not provided, the output is the tool JSON result.\n" +
			"With --input-format yaml|toml, the input is converted to JSON before the call.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 2 {
				input = args[1]
			} else {
				bs, err := io.ReadAll(a.in)
				if err != nil {
					return errors.Wrap(err, "failed to read input")
				}
				input = string(bs)
			}

			input, err := a.decodeInput(args[0], inputFormat, input)
			if err != nil {
				return err
			}

			out, err := a.registry.Call(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, out)
			return errors.WithStack(err)
		},
	}
	cmd.Flags().StringVar(&inputFormat, "input-format", encoding.ModeJSON,
		"Input format: "+strings.Join(encoding.DecodeModes(), "|"))
	return cmd
}

// decodeInput converts the tool input from the format to JSON
func (a *app) decodeInput(name, format, input string) (string, error) {
	t, ok := a.registry.Get(name)
	if !ok {
		// unknown tools are reported by the registry
		return input, nil
	}

	var sample any = map[string]any{}
	if typed, ok := t.(tools.Typed); ok {
		sample = reflect.New(typed.RequestType()).Interface()
	}
	dec, err := encoding.NewDecoder(strings.ToLower(format), sample)
	if err != nil {
		return "", err
	}

	var args map[string]any
	if err = dec.Unmarshal([]byte(input), &args); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "failed to decode %s input", format), tools.ErrFailedUnmarshalInput)
	}
	return llmutils.ToJSON(args), nil
}

// batchCall is a tool call in the batch input,
// arguments can be a JSON object or a string with JSON.
type batchCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type batchItem struct {
	ID     string `json:"id" yaml:"id" toml:"id"`
	Name   string `json:"name" yaml:"name" toml:"name"`
	Output any    `json:"output,omitempty" yaml:"output,omitempty" toml:"output,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

type batchResult struct {
	Results []batchItem `json:"results" yaml:"results" toml:"results"`
}

func (r *batchResult) String() string {
	var b strings.Builder
	for _, item := range r.Results {
		if item.Error != "" {
			fmt.Fprintf(&b, "%s %s: ERROR: %s\n", item.ID, item.Name, item.Error)
		} else {
			fmt.Fprintf(&b, "%s %s: %s\n", item.ID, item.Name, llmutils.ToJSON(item.Output))
		}
	}
	return b.String()
}

func batchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch",
		Short: "Run a JSON array of tool calls from stdin concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bs, err := io.ReadAll(a.in)
			if err != nil {
				return errors.Wrap(err, "failed to read input")
			}

			var in []batchCall
			if err = json.Unmarshal(bs, &in); err != nil {
				return errors.Wrap(err, "invalid batch: expected JSON array of tool calls")
			}

			calls := make([]tools.ToolCall, 0, len(in))
			for _, c := range in {
				arguments := string(c.Arguments)
				var s string
				if json.Unmarshal(c.Arguments, &s) == nil {
					arguments = s
				}
				calls = append(calls, tools.ToolCall{
					ID:        c.ID,
					Name:      c.Name,
					Arguments: arguments,
				})
			}

			results, err := a.registry.CallBatch(cmd.Context(), calls...)
			if err != nil {
				return err
			}

			res := &batchResult{Results: make([]batchItem, 0, len(results))}
			for _, r := range results {
				item := batchItem{ID: r.ID, Name: r.Name}
				if r.Err != nil {
					item.Error = r.Err.Error()
				} else {
					var out map[string]any
					if err := json.Unmarshal([]byte(r.Output), &out); err != nil {
						item.Output = r.Output
					} else {
						item.Output = out
					}
				}
				res.Results = append(res.Results, item)
			}
			return a.print(res)
		},
	}
}

type toolInfo struct {
	Name        string `json:"name" yaml:"name" toml:"name"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

type toolList struct {
	Tools []toolInfo `json:"tools" yaml:"tools" toml:"tools"`

	list []tools.ITool
}

func (l *toolList) String() string {
	return tools.GetDescriptions(l.list...)
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the enabled tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := &toolList{
				list: a.registry.List(),
			}
			for _, t := range res.list {
				res.Tools = append(res.Tools, toolInfo{
					Name:        t.Name(),
					Description: t.Description(),
				})
			}
			return a.print(res)
		},
	}
}

func schemaCmd(a *app) *cobra.Command {
	var (
		definitions  bool
		result       bool
		instructions bool
		inputFormat  string
	)
	cmd := &cobra.Command{
		Use:   "schema [tool]",
		Short: "Print the JSON schema of the tool parameters",
		Long: "Print the JSON schema of the tool parameters.\n" +
			"With --definitions, print the function-calling definitions of the enabled tools.\n" +
			"With --result, print the strict response format of the tool result.\n" +
			"With --instructions, print the prompt instructions for the tool input in --input-format.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if definitions || len(args) == 0 {
				_, err := fmt.Fprintln(a.out, llmutils.ToJSONIndent(a.registry.Definitions()))
				return errors.WithStack(err)
			}

			t, ok := a.registry.Get(args[0])
			if !ok {
				return errors.Mark(
					errors.Newf("tool %q not found, available tools: %s", args[0], strings.Join(a.registry.Names(), ", ")),
					tools.ErrToolNotFound)
			}

			if !result && !instructions {
				_, err := fmt.Fprintln(a.out, llmutils.ToJSONIndent(t.Parameters()))
				return errors.WithStack(err)
			}

			typed, ok := t.(tools.Typed)
			if !ok {
				return errors.Newf("tool %s does not expose its request and result types", t.Name())
			}

			if result {
				rf, err := schema.NewResponseFormat(t.Name()+"_result", typed.ResultType(), true)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.out, llmutils.ToJSONIndent(rf))
				return errors.WithStack(err)
			}

			dec, err := encoding.NewDecoder(strings.ToLower(inputFormat), reflect.New(typed.RequestType()).Interface())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(a.out, dec.GetFormatInstructions())
			return errors.WithStack(err)
		},
	}
	cmd.Flags().BoolVar(&definitions, "definitions", false, "Print function-calling definitions of all enabled tools")
	cmd.Flags().BoolVar(&result, "result", false, "Print the strict response format of the tool result")
	cmd.Flags().BoolVar(&instructions, "instructions", false, "Print the prompt instructions for the tool input")
	cmd.Flags().StringVar(&inputFormat, "input-format", encoding.ModeJSON,
		"Input format for --instructions: "+strings.Join(encoding.DecodeModes(), "|"))
	return cmd
}

func mcpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the enabled tools over MCP on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := mcp.NewStdioServer(a.cfg.MCP, a.registry.List()...)
			if err != nil {
				return err
			}
			if err = server.Serve(); err != nil {
				return errors.Wrap(err, "failed to start MCP server")
			}

			logger.KV(xlog.INFO,
				"status", "mcp_serving",
				"name", a.cfg.MCP.Name,
				"tools", strings.Join(a.registry.Names(), ","),
			)
			<-ctx.Done()
			logger.KV(xlog.INFO, "status", "mcp_stopped")
			return nil
		},
	}
}
