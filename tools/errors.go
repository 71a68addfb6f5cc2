package tools

import "github.com/cockroachdb/errors"

var (
	// ErrFailedUnmarshalInput is returned by Call when the input does not match the tool parameters
	ErrFailedUnmarshalInput = errors.New("failed to unmarshal input: check the schema and try again")
	// ErrInvalidInput is returned by Call when the decoded input fails validation
	ErrInvalidInput = errors.New("invalid input: check the schema and try again")
	// ErrToolNotFound is returned by the Registry for unknown tool names
	ErrToolNotFound = errors.New("tool not found")
)
