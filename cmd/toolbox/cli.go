package main

import (
	"context"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/callbacks"
	"github.com/effective-security/toolbox/config"
	"github.com/effective-security/toolbox/encoding"
	jsonenc "github.com/effective-security/toolbox/encoding/json"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/toolbox/tools/toolset"
	"github.com/effective-security/xlog"
	"github.com/spf13/cobra"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "toolbox")

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// flags
	configFile string
	output     string
	logLevel   string
	verbose    bool

	cfg      *config.Config
	registry *tools.Registry
	stats    *callbacks.Stats
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{
		in:     in,
		out:    out,
		errOut: errOut,
	}

	rootCmd := &cobra.Command{
		Use:   "toolbox",
		Short: "Structured mock tools for agent runtimes",
		Long: "Toolbox runs the get_weather, calculate and get_stock_price tools,\n" +
			"dispatches tool calls by name, and serves the tools over MCP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.verbose && a.stats != nil {
				a.stats.Print(a.errOut)
			}
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "Path to the configuration file")
	flags.StringVarP(&a.output, "output", "o", "", "Output format: "+strings.Join(encoding.Modes(), "|"))
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warning|error")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Print tool call events and stats to stderr")

	rootCmd.AddCommand(weatherCmd(a))
	rootCmd.AddCommand(calcCmd(a))
	rootCmd.AddCommand(stockCmd(a))
	rootCmd.AddCommand(callCmd(a))
	rootCmd.AddCommand(batchCmd(a))
	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(schemaCmd(a))
	rootCmd.AddCommand(mcpCmd(a))

	return rootCmd
}

// init loads the configuration, applies the flags and builds the registry
func (a *app) init() error {
	cfg, err := config.LoadConfig(a.configFile)
	if err != nil {
		return err
	}
	if a.output != "" {
		cfg.Output = strings.ToLower(a.output)
	}
	if a.logLevel != "" {
		cfg.LogLevel = strings.ToLower(a.logLevel)
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	xlog.SetFormatter(xlog.NewStringFormatter(a.errOut))
	xlog.SetGlobalLogLevel(cfg.XLogLevel())

	a.registry, err = toolset.New(cfg.Tools...)
	if err != nil {
		return err
	}

	a.stats = callbacks.NewStats()
	cb := callbacks.NewFanout(
		callbacks.NewPackageLogger(logger),
		a.stats,
	)
	if a.verbose {
		cb.Add(callbacks.NewPrinter(a.errOut, callbacks.ModeVerbose))
	}
	a.registry.WithCallback(cb)

	logger.KV(xlog.DEBUG,
		"status", "initialized",
		"config", a.configFile,
		"output", cfg.Output,
		"tools", strings.Join(a.registry.Names(), ","),
	)
	return nil
}

// print writes the value in the configured output format
func (a *app) print(v any) error {
	enc, err := encoding.New(a.cfg.Output, v)
	if err != nil {
		return err
	}
	bs, err := enc.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}
	if _, err = a.out.Write(bs); err != nil {
		return errors.WithStack(err)
	}
	if len(bs) > 0 && bs[len(bs)-1] != '\n' {
		_, err = io.WriteString(a.out, "\n")
	}
	return errors.WithStack(err)
}

// callTool dispatches the typed request through the registry,
// and prints the typed result
func callTool[I any, O any](ctx context.Context, a *app, name string, req *I) error {
	out, err := a.registry.Call(ctx, name, llmutils.ToJSON(req))
	if err != nil {
		return err
	}

	var res O
	if err = jsonenc.Decode([]byte(out), &res); err != nil {
		return errors.WithMessagef(err, "failed to decode %s result", name)
	}
	return a.print(&res)
}
