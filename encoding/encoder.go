// Package encoding renders tool results and decodes tool inputs
// in the formats understood by agent runtimes and the CLI.
package encoding

import (
	"github.com/cockroachdb/errors"
	jsonenc "github.com/effective-security/toolbox/encoding/json"
	textenc "github.com/effective-security/toolbox/encoding/text"
	tomlenc "github.com/effective-security/toolbox/encoding/toml"
	yamlenc "github.com/effective-security/toolbox/encoding/yaml"
)

// Encoder marshals values for output.
type Encoder interface {
	Marshal(v any) ([]byte, error)
}

// Decoder unmarshals tool input of a single request type.
type Decoder interface {
	Unmarshal(bs []byte, v any) error
	// GetFormatInstructions describes the expected input format for a prompt
	GetFormatInstructions() string
}

type Mode = string

const (
	ModeJSON Mode = "json"
	ModeYAML Mode = "yaml"
	ModeTOML Mode = "toml"
	ModeText Mode = "text"
)

// ModeDefault is the default mode for the encoder.
var ModeDefault = ModeJSON

// Modes returns the supported output modes
func Modes() []Mode {
	return []Mode{ModeJSON, ModeYAML, ModeTOML, ModeText}
}

// DecodeModes returns the supported input modes
func DecodeModes() []Mode {
	return []Mode{ModeJSON, ModeYAML, ModeTOML}
}

// New returns the encoder for the mode,
// sample is a value of the type to be encoded.
func New(mode Mode, sample any) (Encoder, error) {
	switch mode {
	case ModeJSON, "":
		enc, err := jsonenc.NewEncoder(sample)
		if err != nil {
			return nil, err
		}
		return enc.WithIndent(true), nil
	case ModeYAML:
		return yamlenc.NewEncoder(sample), nil
	case ModeTOML:
		return tomlenc.NewEncoder(sample), nil
	case ModeText:
		return textenc.NewEncoder(), nil
	default:
		return nil, errors.Newf("unsupported encoding: %q", mode)
	}
}

// NewDecoder returns the decoder for the mode,
// sample is a value of the request type.
func NewDecoder(mode Mode, sample any) (Decoder, error) {
	switch mode {
	case ModeJSON, "":
		return jsonenc.NewEncoder(sample)
	case ModeYAML:
		return yamlenc.NewEncoder(sample), nil
	case ModeTOML:
		return tomlenc.NewEncoder(sample), nil
	default:
		return nil, errors.Newf("unsupported input encoding: %q", mode)
	}
}

var (
	_ Encoder = (*jsonenc.Encoder)(nil)
	_ Encoder = (*yamlenc.Encoder)(nil)
	_ Encoder = (*tomlenc.Encoder)(nil)
	_ Encoder = (*textenc.Encoder)(nil)

	_ Decoder = (*jsonenc.Encoder)(nil)
	_ Decoder = (*yamlenc.Encoder)(nil)
	_ Decoder = (*tomlenc.Encoder)(nil)
)
