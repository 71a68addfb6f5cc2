// Package toolset builds the registry of the built-in tools.
package toolset

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/toolbox/tools/calculator"
	"github.com/effective-security/toolbox/tools/stock"
	"github.com/effective-security/toolbox/tools/weather"
)

var factories = map[string]func() tools.IMCPTool{
	weather.ToolName:    func() tools.IMCPTool { return weather.New() },
	calculator.ToolName: func() tools.IMCPTool { return calculator.New() },
	stock.ToolName:      func() tools.IMCPTool { return stock.New() },
}

// Names returns the sorted names of the built-in tools
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tools returns new instances of the named tools, or all tools if no names provided.
func Tools(names ...string) ([]tools.IMCPTool, error) {
	if len(names) == 0 {
		names = Names()
	}

	seen := make(map[string]bool, len(names))
	list := make([]tools.IMCPTool, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if seen[key] {
			continue
		}
		f, ok := factories[key]
		if !ok {
			return nil, errors.Mark(
				errors.Newf("tool %q not found, available tools: %s", name, strings.Join(Names(), ", ")),
				tools.ErrToolNotFound)
		}
		seen[key] = true
		list = append(list, f())
	}
	return list, nil
}

// New returns the registry with the named tools, or all tools if no names provided.
func New(names ...string) (*tools.Registry, error) {
	list, err := Tools(names...)
	if err != nil {
		return nil, err
	}
	r := tools.NewRegistry()
	for _, t := range list {
		r.Register(t)
	}
	return r, nil
}
