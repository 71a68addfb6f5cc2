package tools

import "reflect"

// Typed is implemented by tools that expose the Go types
// of their request and result.
type Typed interface {
	RequestType() reflect.Type
	ResultType() reflect.Type
}
