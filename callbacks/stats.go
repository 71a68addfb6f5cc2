package callbacks

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/effective-security/toolbox/tools"
)

var TimeNowFn = time.Now

// ToolStats holds the call counters of a tool
type ToolStats struct {
	Name      string `json:"name" yaml:"name"`
	Calls     uint32 `json:"calls" yaml:"calls"`
	Succeeded uint32 `json:"succeeded" yaml:"succeeded"`
	Failed    uint32 `json:"failed" yaml:"failed"`
	BytesIn   uint64 `json:"bytes_in" yaml:"bytes_in"`
	BytesOut  uint64 `json:"bytes_out" yaml:"bytes_out"`
}

// RunStats is the summary of tool calls since the Stats was created or reset
type RunStats struct {
	Duration            time.Duration `json:"duration" yaml:"duration"`
	ToolsCalls          uint32        `json:"tools_calls" yaml:"tools_calls"`
	ToolsCallsSucceeded uint32        `json:"tools_calls_succeeded" yaml:"tools_calls_succeeded"`
	ToolsCallsFailed    uint32        `json:"tools_calls_failed" yaml:"tools_calls_failed"`
	ToolNotFound        uint32        `json:"tool_not_found" yaml:"tool_not_found"`
	Tools               []ToolStats   `json:"tools,omitempty" yaml:"tools,omitempty"`
}

// Stats is a callback handler that counts the tool calls.
type Stats struct {
	started time.Time
	stats   RunStats
	byTool  map[string]*ToolStats
	lock    sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		started: TimeNowFn(),
		byTool:  make(map[string]*ToolStats),
	}
}

// Reset clears the counters and restarts the duration
func (l *Stats) Reset() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.started = TimeNowFn()
	l.stats = RunStats{}
	l.byTool = make(map[string]*ToolStats)
}

// Get returns a snapshot of the counters, tools are sorted by name
func (l *Stats) Get() *RunStats {
	l.lock.Lock()
	defer l.lock.Unlock()

	stats := l.stats
	stats.Duration = TimeNowFn().Sub(l.started)
	stats.Tools = make([]ToolStats, 0, len(l.byTool))
	for _, ts := range l.byTool {
		stats.Tools = append(stats.Tools, *ts)
	}
	sort.Slice(stats.Tools, func(i, j int) bool {
		return stats.Tools[i].Name < stats.Tools[j].Name
	})
	return &stats
}

// Print writes the summary to the writer
func (l *Stats) Print(w io.Writer) {
	stats := l.Get()
	fmt.Fprintf(w, "Tool calls: %d, Succeeded: %d, Failed: %d, Not Found: %d\n",
		stats.ToolsCalls,
		stats.ToolsCallsSucceeded,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
	)
	for _, ts := range stats.Tools {
		fmt.Fprintf(w, "  %s: calls %d, failed %d, bytes in %d, bytes out %d\n",
			ts.Name, ts.Calls, ts.Failed, ts.BytesIn, ts.BytesOut)
	}
	fmt.Fprintf(w, "Duration: %s\n", stats.Duration)
}

func (l *Stats) tool(name string) *ToolStats {
	ts := l.byTool[name]
	if ts == nil {
		ts = &ToolStats{Name: name}
		l.byTool[name] = ts
	}
	return ts
}

func (l *Stats) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ToolsCalls++
	ts := l.tool(tool.Name())
	ts.Calls++
	ts.BytesIn += uint64(len(input))
}

func (l *Stats) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ToolsCallsSucceeded++
	ts := l.tool(tool.Name())
	ts.Succeeded++
	ts.BytesOut += uint64(len(output))
}

func (l *Stats) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ToolsCallsFailed++
	l.tool(tool.Name()).Failed++
}

func (l *Stats) OnToolNotFound(ctx context.Context, name string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ToolNotFound++
}
