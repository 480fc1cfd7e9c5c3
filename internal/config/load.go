package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a site list file format.
type Format string

// Supported site list formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DetectFormat picks the file format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported config file extension %q (want .csv, .json, .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

// Load reads a site list, fills in credential defaults and validates it.
// The .env file next to path, if any, provides credential defaults.
func Load(path string) (*Config, error) {
	raw, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	env, err := CredentialEnvironment(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	ApplyCredentialDefaults(raw, env)

	cfg, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// LoadFile reads and decodes a site list without applying defaults or validation.
func LoadFile(path string) (*RawConfig, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- the operator names the site list explicitly
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Decode(data, format)
}

// Decode parses site list content in the given format.
// Syntax errors are reported as a ConfigError.
func Decode(data []byte, format Format) (*RawConfig, error) {
	var (
		raw *RawConfig
		err error
	)
	switch format {
	case FormatCSV:
		raw, err = decodeCSV(bytes.NewReader(data))
	case FormatJSON:
		raw = &RawConfig{}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(raw)
	case FormatYAML:
		raw = &RawConfig{}
		err = yaml.Unmarshal(data, raw)
	case FormatTOML:
		raw = &RawConfig{}
		err = toml.Unmarshal(data, raw)
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	if err != nil {
		if _, ok := err.(*ConfigError); ok {
			return nil, err
		}
		return nil, &ConfigError{Violations: []Violation{{
			Index:   SharedIndex,
			Field:   "file",
			Message: fmt.Sprintf("failed to parse %s: %v", format, err),
		}}}
	}
	return raw, nil
}
