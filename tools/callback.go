package tools

import "context"

//go:generate mockgen -source=callback.go -destination=../mocks/mocktools/callback_mock.gen.go -package mocktools

// Callback receives the tool call events from the Registry
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, input string)
	OnToolEnd(ctx context.Context, tool ITool, input string, output string)
	OnToolError(ctx context.Context, tool ITool, input string, err error)
	OnToolNotFound(ctx context.Context, name string)
}
