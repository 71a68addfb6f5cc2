// Package config provides the toolbox configuration.
package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultLogLevel   = "info"
	DefaultOutput     = "json"
	DefaultMCPName    = "toolbox"
	DefaultMCPVersion = "0.1.0"
)

var validate = validator.New()

type Config struct {
	// LogLevel specifies the log level: debug|info|warning|error
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty" validate:"omitempty,oneof=debug info warning error"`
	// Output specifies the format of the results: json|yaml|toml|text
	Output string `json:"output,omitempty" yaml:"output,omitempty" validate:"omitempty,oneof=json yaml toml text"`
	// Tools specifies the names of enabled tools,
	// all tools are enabled if empty.
	Tools []string `json:"tools,omitempty" yaml:"tools,omitempty" validate:"dive,required"`
	// MCP specifies the MCP server identity
	MCP MCPConfig `json:"mcp" yaml:"mcp"`
}

type MCPConfig struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Default returns the configuration with default values
func Default() *Config {
	cfg := new(Config)
	cfg.SetDefaults()
	return cfg
}

// LoadConfig from file, with environment variables expanded.
// The default configuration is returned if file is empty.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		err := configloader.UnmarshalAndExpand(file, cfg)
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to load config %q", file)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults sets the default values for empty fields
func (c *Config) SetDefaults() {
	c.LogLevel = strings.ToLower(values.StringsCoalesce(c.LogLevel, DefaultLogLevel))
	c.Output = strings.ToLower(values.StringsCoalesce(c.Output, DefaultOutput))
	c.MCP.Name = values.StringsCoalesce(c.MCP.Name, DefaultMCPName)
	c.MCP.Version = values.StringsCoalesce(c.MCP.Version, DefaultMCPVersion)
}

// Validate returns an error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// XLogLevel returns the log level for xlog
func (c *Config) XLogLevel() xlog.LogLevel {
	return ParseLogLevel(c.LogLevel)
}

// ParseLogLevel returns xlog level by name, INFO for unknown names
func ParseLogLevel(level string) xlog.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return xlog.DEBUG
	case "warning", "warn":
		return xlog.WARNING
	case "error":
		return xlog.ERROR
	}
	return xlog.INFO
}
