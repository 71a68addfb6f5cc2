// Package callbacks provides tools.Callback handlers to print, log and count tool calls.
package callbacks
