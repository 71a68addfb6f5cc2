// Package mcp serves tools over the Model Context Protocol.
package mcp

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/config"
	"github.com/effective-security/toolbox/mcp/localtransport"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/xlog"
	mcpgo "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport"
	"github.com/metoro-io/mcp-golang/transport/stdio"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "mcp")

// Register registers the tools that implement tools.IMCPTool,
// and returns the number of registered tools.
func Register(registrator tools.McpServerRegistrator, list ...tools.ITool) (int, error) {
	count := 0
	for _, t := range list {
		mt, ok := t.(tools.IMCPTool)
		if !ok {
			logger.KV(xlog.DEBUG,
				"status", "skip_not_mcp_tool",
				"tool", t.Name(),
			)
			continue
		}
		if err := mt.RegisterMCP(registrator); err != nil {
			return count, errors.WithMessagef(err, "failed to register tool %s", t.Name())
		}
		count++
	}
	return count, nil
}

// NewServer returns the server with the tools registered.
// Call Serve to start it.
func NewServer(cfg config.MCPConfig, tr transport.Transport, list ...tools.ITool) (*mcpgo.Server, error) {
	server := mcpgo.NewServer(tr,
		mcpgo.WithName(cfg.Name),
		mcpgo.WithVersion(cfg.Version),
	)

	count, err := Register(server, list...)
	if err != nil {
		return nil, err
	}

	logger.KV(xlog.INFO,
		"status", "mcp_server_created",
		"name", cfg.Name,
		"version", cfg.Version,
		"tools", count,
	)
	return server, nil
}

// NewStdioServer returns the server over stdin and stdout
func NewStdioServer(cfg config.MCPConfig, list ...tools.ITool) (*mcpgo.Server, error) {
	return NewServer(cfg, stdio.NewStdioServerTransport(), list...)
}

// NewLocalServer returns the server and its in-process transport
func NewLocalServer(cfg config.MCPConfig, list ...tools.ITool) (*mcpgo.Server, *localtransport.Transport, error) {
	tr := localtransport.New()
	server, err := NewServer(cfg, tr, list...)
	if err != nil {
		return nil, nil, err
	}
	return server, tr, nil
}
