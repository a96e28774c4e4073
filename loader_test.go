// FILE: lixenwraith/fragment/loader_test.go
package fragment

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFile tests reading field values from input files
func TestLoadFile(t *testing.T) {
	registerProjSchemas(t)

	tmpDir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	t.Run("TOML", func(t *testing.T) {
		path := write("run.toml", `
name = "m1"
depth = 4

[optimizer]
lr = 0.01
`)
		values, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "m1", values["name"])
		assert.Equal(t, int64(4), values["depth"])
		assert.Equal(t, 0.01, values["optimizer.lr"])
	})

	t.Run("JSON", func(t *testing.T) {
		path := write("run.json", `{"name": "m2", "depth": 6}`)
		values, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "m2", values["name"])
		assert.Equal(t, json.Number("6"), values["depth"])

		m, err := New[projModel](map[string]any{"name": values["name"], "depth": values["depth"]})
		require.NoError(t, err)
		assert.Equal(t, 6, m.Depth)
	})

	t.Run("YAML", func(t *testing.T) {
		path := write("run.yml", "name: m3\ndepth: 8\n")
		values, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "m3", values["name"])
		assert.Equal(t, 8, values["depth"])
	})

	t.Run("FormatFromContent", func(t *testing.T) {
		jsonPath := write("run-json.conf", `{"name": "j"}`)
		values, err := LoadFile(jsonPath)
		require.NoError(t, err)
		assert.Equal(t, "j", values["name"])

		tomlPath := write("run-toml.conf", `name = "t"`)
		values, err = LoadFile(tomlPath)
		require.NoError(t, err)
		assert.Equal(t, "t", values["name"])

		yamlPath := write("run-yaml.conf", "name: y\n")
		values, err = LoadFile(yamlPath)
		require.NoError(t, err)
		assert.Equal(t, "y", values["name"])
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(tmpDir, "missing.toml"))
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})

	t.Run("Malformed", func(t *testing.T) {
		path := write("broken.toml", "name = \n")
		_, err := LoadFile(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse TOML")
	})

	t.Run("ProjectFromFile", func(t *testing.T) {
		path := write("main.toml", `
name = "m1"
run = "r1"
depth = 5
`)
		values, err := LoadFile(path)
		require.NoError(t, err)

		model, err := Project[projModel](values)
		require.NoError(t, err)
		assert.Equal(t, projModel{Name: "m1", Depth: 5}, *model)
	})
}

// TestLoadEnv tests reading env-tagged fields
func TestLoadEnv(t *testing.T) {
	type EnvFragment struct {
		Host    string `toml:"host" env:"HOST"`
		Port    int    `toml:"port" env:"PORT"`
		Verbose bool   `toml:"verbose" env:"VERBOSE" envDefault:"true"`
		Plain   string `toml:"plain"`
	}
	s, err := Define("env", EnvFragment{Port: 80})
	require.NoError(t, err)

	t.Run("ExplicitEnviron", func(t *testing.T) {
		values, err := s.LoadEnv("SVC_", map[string]string{
			"SVC_HOST": "example.com",
			"SVC_PORT": "8080",
			"PLAIN":    "ignored",
			"HOST":     "unprefixed",
		})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"host": "example.com", "port": "8080"}, values)

		inst, err := s.New(values)
		require.NoError(t, err)
		e := inst.(*EnvFragment)
		assert.Equal(t, 8080, e.Port)
		assert.False(t, e.Verbose, "envDefault does not count as input")
	})

	t.Run("ProcessEnvironment", func(t *testing.T) {
		t.Setenv("FRAGTEST_PORT", "9090")

		values, err := s.LoadEnv("FRAGTEST_", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"port": "9090"}, values)
	})

	t.Run("NoEnvTags", func(t *testing.T) {
		values, err := projectSchema(t).LoadEnv("", map[string]string{"name": "x"})
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("InvalidValue", func(t *testing.T) {
		_, err := s.LoadEnv("SVC_", map[string]string{"SVC_PORT": "eighty"})
		assert.Error(t, err)
	})
}

func projectSchema(t *testing.T) *Schema {
	t.Helper()
	registerProjSchemas(t)
	s, err := SchemaFor[projModel]()
	require.NoError(t, err)
	return s
}

// TestMerge tests layer precedence
func TestMerge(t *testing.T) {
	merged := Merge(
		map[string]any{"a": 1, "b": 1, "c": 1},
		nil,
		map[string]any{"b": 2, "c": 2},
		map[string]any{"c": 3},
	)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "c": 3}, merged)
	assert.Empty(t, Merge())
}

// TestParseArgs tests the built-in argument parser
func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected map[string]any
		wantErr  bool
	}{
		{
			name:     "SpaceSeparated",
			args:     []string{"--name", "m1", "--depth", "3"},
			expected: map[string]any{"name": "m1", "depth": "3"},
		},
		{
			name:     "EqualsSeparated",
			args:     []string{"--name=m1", "--note=a=b"},
			expected: map[string]any{"name": "m1", "note": "a=b"},
		},
		{
			name:     "BooleanFlags",
			args:     []string{"--resume", "--verbose", "--name", "m1"},
			expected: map[string]any{"resume": "true", "verbose": "true", "name": "m1"},
		},
		{
			name:     "PositionalSkipped",
			args:     []string{"stray", "--name", "m1", "--", "--=x"},
			expected: map[string]any{"name": "m1"},
		},
		{
			name:    "InvalidKey",
			args:    []string{"--model.name", "m1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

// TestDump tests writing an instance as TOML
func TestDump(t *testing.T) {
	registerProjSchemas(t)

	s, err := SchemaFor[projMain]()
	require.NoError(t, err)

	inst, err := s.New(map[string]any{"name": "m1", "run": "r1", "depth": 5})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Dump(&buf, inst))

	var decoded map[string]any
	_, err = toml.Decode(buf.String(), &decoded)
	require.NoError(t, err)

	assert.Equal(t, "m1", decoded["name"])
	assert.Equal(t, "r1", decoded["run"])
	assert.Equal(t, int64(5), decoded["depth"])
	assert.Equal(t, int64(10), decoded["epochs"])
	assert.Equal(t, filepath.Join("logs", "r1.log"), decoded["log_file"])

	// A dumped instance reads back into an equal instance
	path := filepath.Join(t.TempDir(), "dump.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	values, err := LoadFile(path)
	require.NoError(t, err)

	again, err := s.Project(values)
	require.NoError(t, err)
	assert.Equal(t, inst, again)

	assert.ErrorIs(t, s.Dump(&buf, projModel{}), ErrInvalidSchemaType)
}

// TestSave tests atomic TOML output that loads back as command input
func TestSave(t *testing.T) {
	registerProjSchemas(t)

	s, err := SchemaFor[projMain]()
	require.NoError(t, err)

	inst, err := s.New(map[string]any{"name": "m1", "run": "r1"})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "nested", "dir")
	path := filepath.Join(dir, "main.toml")
	require.NoError(t, s.Save(path, inst))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must be gone")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	values, err := LoadFile(path)
	require.NoError(t, err)
	model, err := Project[projModel](values)
	require.NoError(t, err)
	assert.Equal(t, projModel{Name: "m1", Depth: 2}, *model)

	assert.ErrorIs(t, s.Save(path, nil), ErrInvalidSchemaType)
}
