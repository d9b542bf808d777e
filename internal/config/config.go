// Package config loads the optional .portugolrc.yaml project configuration
// file and validates it against a JSON Schema before CLI flags are layered
// on top of it.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/portugol-lang/portugol/internal/cerr"
)

// Config is the set of project-level defaults a .portugolrc.yaml may
// override. CLI flags always take precedence over these.
type Config struct {
	OutputPath     string `yaml:"output_path" json:"output_path"`
	Color          string `yaml:"color" json:"color"` // "auto", "always", "never"
	CacheDir       string `yaml:"cache_dir" json:"cache_dir"`
	WarningsAsErr  bool   `yaml:"warnings_as_errors" json:"warnings_as_errors"`
}

// Default returns the configuration in effect when no file is present.
func Default() *Config {
	return &Config{Color: "auto", CacheDir: ".portugol-cache"}
}

const schemaDoc = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "output_path": {"type": "string"},
    "color": {"type": "string", "enum": ["auto", "always", "never"]},
    "cache_dir": {"type": "string"},
    "warnings_as_errors": {"type": "boolean"}
  }
}`

func compileSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("portugolrc.schema.json", bytes.NewReader([]byte(schemaDoc))); err != nil {
		return nil, cerr.Wrap(cerr.TypeConfig, "compiling config schema", err)
	}
	return c.Compile("portugolrc.schema.json")
}

// Load reads path (typically ".portugolrc.yaml"). A missing file is not an
// error: Default() is returned unchanged. A present-but-invalid file is.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, cerr.Wrap(cerr.TypeIO, "reading "+path, err)
	}

	var asMap map[string]any
	if err := yaml.Unmarshal(raw, &asMap); err != nil {
		return nil, cerr.Wrap(cerr.TypeConfig, "parsing "+path, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	// jsonschema validates against JSON-shaped data; round-trip through
	// encoding/json so YAML's map[any]any-flavored decoding normalizes to
	// the string-keyed maps the validator expects.
	normalized, err := json.Marshal(asMap)
	if err != nil {
		return nil, cerr.Wrap(cerr.TypeConfig, "normalizing "+path, err)
	}
	var asJSON any
	if err := json.Unmarshal(normalized, &asJSON); err != nil {
		return nil, cerr.Wrap(cerr.TypeConfig, "normalizing "+path, err)
	}
	if err := schema.Validate(asJSON); err != nil {
		return nil, cerr.Wrap(cerr.TypeConfig, "validating "+path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, cerr.Wrap(cerr.TypeConfig, "decoding "+path, err)
	}
	return cfg, nil
}

// Discover walks upward from dir looking for .portugolrc.yaml, the way most
// project-local config files are resolved, falling back to Default() if
// none is found before reaching the filesystem root.
func Discover(dir string) (*Config, error) {
	for {
		candidate := filepath.Join(dir, ".portugolrc.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}
