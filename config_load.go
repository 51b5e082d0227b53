package qscache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// configSchema is the structural schema every config file must satisfy.
// Semantic rules (weight sums, clean_size vs maxsize) live in
// ValidateConfig and the engine's policy validation.
const configSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"server": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"addr": {"type": "string"}
			}
		},
		"cache": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"policy": {"type": "string"},
				"maxsize": {"type": "integer", "minimum": 1},
				"clean_size": {"type": "integer", "minimum": 1},
				"learning_rate": {"type": "number", "minimum": 0, "maximum": 1},
				"quality_weight": {"type": "number", "minimum": 0, "maximum": 1},
				"recency_weight": {"type": "number", "minimum": 0, "maximum": 1},
				"frequency_weight": {"type": "number", "minimum": 0, "maximum": 1}
			}
		},
		"upstream": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"provider": {"type": "string", "enum": ["mock", "openai"]},
				"model": {"type": "string"},
				"base_url": {"type": "string"},
				"api_key_env": {"type": "string"}
			}
		},
		"access_log": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"backend": {"type": "string", "enum": ["none", "sqlite", "postgres"]},
				"dsn": {"type": "string"}
			}
		},
		"logging": {
			"type": "object",
			"additionalProperties": false,
			"properties": {
				"level": {"type": "string", "enum": ["debug", "info", "warn", "error"]},
				"format": {"type": "string", "enum": ["json", "text"]}
			}
		}
	}
}`

var compiledConfigSchema = jsonschema.MustCompileString("config.schema.json", configSchema)

// LoadConfig reads and parses a config file from the given path, checking
// it against the config schema. Supported formats: JSON (.json), YAML
// (.yaml, .yml). Omitted fields take the DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var raw map[string]any
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}

	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	// Decode through JSON so YAML and JSON files share one tag set.
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("normalizing config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// validateSchema checks the raw document against the config schema.
func validateSchema(raw map[string]any) error {
	// Round-trip through JSON so the validator sees JSON-typed values
	// regardless of the source format.
	buf, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalizing config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(buf, &doc); err != nil {
		return fmt.Errorf("normalizing config: %w", err)
	}
	if err := compiledConfigSchema.Validate(doc); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	return nil
}
