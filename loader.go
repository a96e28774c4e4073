// FILE: lixenwraith/fragment/loader.go
package fragment

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// LoadFile reads field values from a TOML, JSON or YAML file.
// The format is detected from the extension, then from the content.
// Nested tables are flattened to dot paths and only match fields through those paths.
func LoadFile(path string) (map[string]any, error) {
	fileData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	format := detectFileFormat(path)
	if format == "" {
		format = detectFormatFromContent(fileData)
	}

	fileConfig := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(fileData, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file '%s': %w", path, err)
		}
	case "json":
		decoder := json.NewDecoder(bytes.NewReader(fileData))
		decoder.UseNumber() // Preserve number precision
		if err := decoder.Decode(&fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file '%s': %w", path, err)
		}
	case "yaml":
		if err := yaml.Unmarshal(fileData, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file '%s': %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unable to determine config format for file '%s'", path)
	}

	values := make(map[string]any)
	flattenInto(values, "", fileConfig)
	return values, nil
}

// LoadEnv reads the fields carrying an `env` tag from the environment.
// Variable names are prefix + tag name. A nil environ reads the process environment.
// The returned map holds only variables that are actually set, keyed by field name.
func (s *Schema) LoadEnv(prefix string, environ map[string]string) (map[string]any, error) {
	values := make(map[string]any)

	// The env parser only sees a flat struct of the tagged fields: fragments
	// embedded under unexported type names are not settable through the schema type
	var scratchFields []reflect.StructField
	byKey := make(map[string]string)
	for _, f := range s.fields {
		if f.Meta.Env == "" {
			continue
		}
		byKey[prefix+f.Meta.Env] = f.Name
		scratchFields = append(scratchFields, reflect.StructField{
			Name: fmt.Sprintf("F%d", len(scratchFields)),
			Type: f.Type,
			Tag:  f.tag,
		})
	}
	if len(scratchFields) == 0 {
		return values, nil
	}

	lookup := func(key string) bool {
		if environ != nil {
			_, ok := environ[key]
			return ok
		}
		_, ok := os.LookupEnv(key)
		return ok
	}

	scratch := reflect.New(reflect.StructOf(scratchFields)).Interface()
	err := env.ParseWithOptions(scratch, env.Options{
		Prefix:      prefix,
		Environment: environ,
		OnSet: func(key string, value any, isDefault bool) {
			if isDefault || !lookup(key) {
				return
			}
			if name, ok := byKey[key]; ok {
				values[name] = value
			}
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment for %s: %w", s.name, err)
	}

	return values, nil
}

// Merge combines value layers; later layers take precedence
func Merge(layers ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, layer := range layers {
		for key, value := range layer {
			merged[key] = value
		}
	}
	return merged
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return "toml"
	case ".json":
		return "json"
	case ".yaml", ".yml":
		return "yaml"
	default:
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) string {
	// JSON first, YAML is a superset of it
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return "json"
	}

	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return "toml"
	}

	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return "yaml"
	}

	return ""
}
