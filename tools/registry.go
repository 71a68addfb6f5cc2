package tools

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/pkg/metricskey"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolbox", "tools")

// ToolCall is a request to call a tool by name
type ToolCall struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Arguments string `json:"arguments" yaml:"arguments"`
}

// ToolCallResult is the outcome of a ToolCall
type ToolCallResult struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	Err    error  `json:"-" yaml:"-"`
}

// Registry dispatches tool calls by name.
// Names are matched case-insensitively.
type Registry struct {
	lock     sync.RWMutex
	byName   map[string]ITool
	callback Callback
}

// NewRegistry returns a Registry with the provided tools
func NewRegistry(list ...ITool) *Registry {
	r := &Registry{
		byName: make(map[string]ITool, len(list)),
	}
	for _, t := range list {
		r.Register(t)
	}
	return r
}

// WithCallback sets the handler for tool call events
func (r *Registry) WithCallback(cb Callback) *Registry {
	r.lock.Lock()
	r.callback = cb
	r.lock.Unlock()
	return r
}

// Register adds the tool, replacing any tool with the same name
func (r *Registry) Register(t ITool) {
	key := strings.ToLower(t.Name())

	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byName[key]; ok {
		logger.KV(xlog.WARNING,
			"status", "tool_replaced",
			"tool", t.Name(),
		)
	}
	r.byName[key] = t
}

// Get returns the tool by name
func (r *Registry) Get(name string) (ITool, bool) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	t, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Names returns the sorted names of registered tools
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	names := make([]string, 0, len(r.byName))
	for _, t := range r.byName {
		names = append(names, t.Name())
	}
	sort.Strings(names)
	return names
}

// List returns registered tools, sorted by name
func (r *Registry) List() []ITool {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]ITool, 0, len(r.byName))
	for _, t := range r.byName {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}

// Definitions returns the function-calling definitions of registered tools
func (r *Registry) Definitions() []*FunctionDefinition {
	list := r.List()
	defs := make([]*FunctionDefinition, 0, len(list))
	for _, t := range list {
		defs = append(defs, Definition(t))
	}
	return defs
}

// Call dispatches the call to the named tool.
// Unknown names return an error marked with ErrToolNotFound.
func (r *Registry) Call(ctx context.Context, name, input string) (string, error) {
	r.lock.RLock()
	cb := r.callback
	r.lock.RUnlock()

	tool, ok := r.Get(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		if cb != nil {
			cb.OnToolNotFound(ctx, name)
		}

		available := strings.Join(r.Names(), ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool_name", name,
			"available_tools", available,
		)
		return "", errors.Mark(
			errors.Newf("tool %q not found, available tools: %s", name, available),
			ErrToolNotFound)
	}

	toolName := tool.Name()
	if cb != nil {
		cb.OnToolStart(ctx, tool, input)
	}

	started := time.Now()
	res, err := tool.Call(ctx, input)
	metricskey.PerfToolCall.MeasureSince(started, toolName)

	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, toolName)
		if cb != nil {
			cb.OnToolError(ctx, tool, input, err)
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_call_failed",
			"tool", toolName,
			"err", err.Error(),
		)
		return "", errors.WithMessagef(err, "failed to call tool %s", toolName)
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, toolName)
	if cb != nil {
		cb.OnToolEnd(ctx, tool, input, res)
	}
	return res, nil
}

// CallBatch runs the calls concurrently.
// Results are returned in the order of calls,
// a failed call is reported in its result and does not fail the batch.
func (r *Registry) CallBatch(ctx context.Context, calls ...ToolCall) ([]ToolCallResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	results := make([]ToolCallResult, len(calls))

	var wg sync.WaitGroup
	wg.Add(len(calls))
	for i, tc := range calls {
		if tc.ID == "" {
			tc.ID = uuid.NewString()
		}
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_call_found",
			"tool_call_id", tc.ID,
			"tool_call_name", tc.Name,
		)

		go func(index int, tc ToolCall) {
			defer wg.Done()
			res, err := r.Call(ctx, tc.Name, tc.Arguments)
			results[index] = ToolCallResult{
				ID:     tc.ID,
				Name:   tc.Name,
				Output: res,
				Err:    err,
			}
		}(i, tc)
	}
	wg.Wait()

	return results, nil
}
