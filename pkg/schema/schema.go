package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Faker is implemented by types that can produce a sample instance of
// themselves, for example to render format instructions.
type Faker interface {
	Fake() any
}

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

// Schema describes a tool request or result type.
type Schema struct {
	// Raw is the schema as reflected from the Go type
	Raw *jsonschema.Schema
	// Parameters is the flattened object definition used in function calling
	Parameters *jsonschema.Schema
}

// New returns the schema for the given type.
// Schemas are cached per type for the life of the process.
func New(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	raw := JSONSchema(t)
	s := &Schema{
		Raw: raw,
		Parameters: &jsonschema.Schema{
			Type:       raw.Type,
			Properties: raw.Properties,
			Required:   raw.Required,
		},
	}
	cache[t] = s
	return s, nil
}

// For returns the schema of T
func For[T any]() (*Schema, error) {
	return New(reflect.TypeOf((*T)(nil)).Elem())
}

// MustFor returns the schema of T, and panics if it can not be built.
// Use it for package level tool definitions only.
func MustFor[T any]() *Schema {
	s, err := For[T]()
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Parameters, "", "\t")
	return string(js)
}

// PropertyNames returns the top level property names in declaration order.
func (s *Schema) PropertyNames() []string {
	return propertyNames(s.Parameters.Properties)
}

func propertyNames(props *orderedmap.OrderedMap[string, *jsonschema.Schema]) []string {
	if props == nil {
		return nil
	}
	names := make([]string, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// JSONSchema reflects the json schema of the type
func JSONSchema(t reflect.Type) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct:            true,
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}

	// Tools in different packages use the same struct names (Request, Result),
	// so the definition name carries a hash of the package path.
	r.Namer = func(t reflect.Type) string {
		if t.Kind() != reflect.Struct {
			return t.Name()
		}
		return t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(t.PkgPath()+"/"+t.Name()), 10)
	}

	return r.ReflectFromType(t)
}
