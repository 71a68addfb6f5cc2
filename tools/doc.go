// Package tools defines the Tool contract for agent runtimes: a named capability with a
// parameters schema, a typed Run, and a string Call used by function-calling models.
// The Registry dispatches calls by name, reports them to callbacks and metrics,
// and can run a batch of calls concurrently.
package tools
