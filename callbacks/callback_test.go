package callbacks_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/callbacks"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/toolbox/tools/toolset"
	"github.com/effective-security/toolbox/tools/weather"
	"github.com/effective-security/xlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cb := callbacks.NewPrinter(&buf, callbacks.ModeVerbose)
	tool := weather.New()
	ctx := context.Background()

	cb.OnToolStart(ctx, tool, "test input")
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	cb.OnToolError(ctx, tool, "test input", errors.New("test error"))
	cb.OnToolNotFound(ctx, "web_search")

	exp := `Tool Start: get_weather
Input: test input
Tool End: get_weather
Output: test output
Tool Error: get_weather: test error
Tool Not Found: web_search
`
	assert.Equal(t, exp, buf.String())

	buf.Reset()
	cb = callbacks.NewPrinter(&buf, callbacks.ModeDefault)
	cb.OnToolEnd(ctx, tool, "test input", "test output")
	assert.Equal(t, "Tool End: get_weather\n", buf.String())
}

func TestRegistryCallbacks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var buf bytes.Buffer
	stats := callbacks.NewStats()
	fanout := callbacks.NewFanout(callbacks.NewNoop(), stats)
	fanout.Add(callbacks.NewPrinter(&buf, callbacks.ModeDefault))

	r, err := toolset.New()
	require.NoError(t, err)
	r.WithCallback(fanout)

	_, err = r.Call(ctx, "get_weather", `{"city":"Delhi"}`)
	require.NoError(t, err)
	_, err = r.Call(ctx, "get_stock_price", `{"symbol":"AAPL"}`)
	require.NoError(t, err)
	_, err = r.Call(ctx, "calculate", `1+1`)
	require.Error(t, err)
	_, err = r.Call(ctx, "web_search", `{}`)
	require.Error(t, err)

	res, err := r.CallBatch(ctx,
		tools.ToolCall{Name: "calculate", Arguments: `{"expression":"2 + 2"}`},
		tools.ToolCall{Name: "calculate", Arguments: `{"expression":"1 / 0"}`},
	)
	require.NoError(t, err)
	require.Len(t, res, 2)

	s := stats.Get()
	assert.Equal(t, uint32(5), s.ToolsCalls)
	assert.Equal(t, uint32(4), s.ToolsCallsSucceeded)
	assert.Equal(t, uint32(1), s.ToolsCallsFailed)
	assert.Equal(t, uint32(1), s.ToolNotFound)
	assert.GreaterOrEqual(t, int64(s.Duration), int64(0))

	require.Len(t, s.Tools, 3)
	assert.Equal(t, "calculate", s.Tools[0].Name)
	assert.Equal(t, uint32(3), s.Tools[0].Calls)
	assert.Equal(t, uint32(2), s.Tools[0].Succeeded)
	assert.Equal(t, uint32(1), s.Tools[0].Failed)
	assert.Equal(t, "get_stock_price", s.Tools[1].Name)
	assert.Equal(t, uint64(len(`{"symbol":"AAPL"}`)), s.Tools[1].BytesIn)
	assert.Equal(t, uint64(len(`{"symbol":"AAPL","price":178.5,"currency":"USD"}`)), s.Tools[1].BytesOut)

	var out bytes.Buffer
	stats.Print(&out)
	assert.True(t, strings.HasPrefix(out.String(), "Tool calls: 5, Succeeded: 4, Failed: 1, Not Found: 1\n"))
	assert.Contains(t, out.String(), "  get_weather: calls 1, failed 0,")

	assert.Contains(t, buf.String(), "Tool Start: get_weather\n")
	assert.Contains(t, buf.String(), "Tool Error: calculate: failed to unmarshal input")
	assert.Contains(t, buf.String(), "Tool Not Found: web_search\n")

	stats.Reset()
	assert.Equal(t, uint32(0), stats.Get().ToolsCalls)
	assert.Empty(t, stats.Get().Tools)
}

func TestPackageLogger(t *testing.T) {
	// the level applies to package loggers that already exist
	logger := xlog.NewPackageLogger("github.com/effective-security/toolbox", "callbacks_test")

	var buf bytes.Buffer
	xlog.SetFormatter(xlog.NewStringFormatter(&buf))
	xlog.SetGlobalLogLevel(xlog.DEBUG)
	defer func() {
		xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
		xlog.SetGlobalLogLevel(xlog.INFO)
	}()

	cb := callbacks.NewPackageLogger(logger)
	tool := weather.New()
	ctx := context.Background()

	cb.OnToolStart(ctx, tool, `{"city":"Delhi"}`)
	cb.OnToolEnd(ctx, tool, `{"city":"Delhi"}`, "ok")
	cb.OnToolError(ctx, tool, "x", errors.New("boom"))
	cb.OnToolNotFound(ctx, "web_search")

	res := buf.String()
	for _, exp := range []string{"tool_start", "tool_end", "tool_error", "boom", "tool_not_found", "web_search"} {
		assert.Contains(t, res, exp)
	}
}
