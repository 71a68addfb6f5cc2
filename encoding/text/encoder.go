package text

import (
	"github.com/effective-security/toolbox/pkg/llmutils"
)

// Encoder renders values in their human readable form
type Encoder struct{}

func NewEncoder() *Encoder {
	return new(Encoder)
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	if bs, ok := v.([]byte); ok {
		return bs, nil
	}
	return []byte(llmutils.Stringify(v)), nil
}
