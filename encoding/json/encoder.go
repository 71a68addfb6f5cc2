package json

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/bububa/ljson"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Encoder struct {
	schema *schema.Schema
	indent bool
}

func NewEncoder(req any) (*Encoder, error) {
	if req == nil {
		return nil, errors.New("sample value is required")
	}
	sc, err := schema.New(reflect.TypeOf(req))
	if err != nil {
		return nil, err
	}
	return &Encoder{
		schema: sc,
	}, nil
}

// WithIndent enables tab indented output
func (e *Encoder) WithIndent(indent bool) *Encoder {
	e.indent = indent
	return e
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	if e.indent {
		return json.MarshalIndent(v, "", "\t")
	}
	return json.Marshal(v)
}

func (e *Encoder) Unmarshal(bs []byte, ret any) error {
	return Decode(bs, ret)
}


func (e *Encoder) GetFormatInstructions() string {
	var b bytes.Buffer
	b.WriteString("\nRespond with JSON in the following JSON schema:\n")
	b.WriteString("```json\n")
	b.WriteString(e.schema.String())
	b.WriteString("\n```")
	b.WriteString("\nMake sure to return an instance of the JSON, not the schema itself.\n")
	return b.String()
}

// Validate checks the struct against its validate tags
func Validate(req any) error {
	return validate.Struct(req)
}

// Decode unmarshals a JSON document produced by a model.
// Text around the document is ignored, and scalar values are
// converted leniently to the target field types.
// Truncated or malformed documents are rejected.
func Decode(bs []byte, ret any) error {
	data := bytes.TrimSpace(llmutils.CleanJSON(bs))
	if len(data) == 0 || (data[0] != '{' && data[0] != '[') {
		return errors.New("input is not a JSON document")
	}
	if !json.Valid(data) {
		return errors.New("input is not a valid JSON document")
	}
	return ljson.Unmarshal(data, ret)
}
