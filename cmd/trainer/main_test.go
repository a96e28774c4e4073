// FILE: lixenwraith/fragment/cmd/trainer/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/fragment"
)

// executeCommand runs a fresh root command and captures its output
func executeCommand(t *testing.T, args ...string) (stdout string, stderr string, err error) {
	t.Helper()

	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)

	root, err := newRootCommand(stdoutBuf, stderrBuf)
	require.NoError(t, err)
	root.SetArgs(args)

	err = root.Execute()
	return stdoutBuf.String(), stderrBuf.String(), err
}

func TestMain(m *testing.M) {
	// Keep discovery away from developer config files
	dir, err := os.MkdirTemp("", "trainer-test")
	if err != nil {
		panic(err)
	}
	os.Setenv("XDG_CONFIG_HOME", dir)
	os.Setenv("XDG_CONFIG_DIRS", dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestCommandsRegistered(t *testing.T) {
	root, err := newRootCommand(new(bytes.Buffer), new(bytes.Buffer))
	require.NoError(t, err)

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "main")
	assert.Contains(t, names, "rl-main")
}

func TestMainCommand(t *testing.T) {
	t.Run("Run", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "main", "-m", "agi", "-r", "run1",
			"--log-dir", "logs", "--n-layers", "4", "--d-model", "2", "--epochs", "2")
		require.NoError(t, err)

		assert.Contains(t, stdout, "# MainArgs")
		assert.Contains(t, stdout, `model_name = "agi"`)
		assert.Contains(t, stdout, "Training agi for 2 epochs (batch size 32)")
		assert.Contains(t, stdout, "Epoch 2: 4 layers")
		assert.Contains(t, stdout, "Log file: "+filepath.Join("logs", "run1.log"))
	})

	t.Run("MissingRequired", func(t *testing.T) {
		_, _, err := executeCommand(t, "main", "-m", "agi", "-r", "run1")
		require.Error(t, err)
		assert.ErrorIs(t, err, fragment.ErrMissingRequiredField)
		assert.Contains(t, err.Error(), "log_dir")
	})

	t.Run("InvalidNormType", func(t *testing.T) {
		_, _, err := executeCommand(t, "main", "-m", "agi", "-r", "run1", "--log-dir", "logs", "--norm-type", "batch_norm")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid norm_type")
	})

	t.Run("HelpShowsFieldUsage", func(t *testing.T) {
		stdout, _, err := executeCommand(t, "main", "--help")
		require.NoError(t, err)
		assert.Contains(t, stdout, "--log-dir")
		assert.Contains(t, stdout, "log directory (required)")
		assert.Contains(t, stdout, "head num of a AGI model")
		assert.NotContains(t, stdout, "--log-file")
	})

	t.Run("EnvInput", func(t *testing.T) {
		t.Setenv("TRAINER_LOG_DIR", "/var/log/trainer")
		t.Setenv("TRAINER_EPOCHS", "1")

		stdout, _, err := executeCommand(t, "main", "-m", "agi", "-r", "run2")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Training agi for 1 epochs")
		assert.Contains(t, stdout, "Log file: "+filepath.Join("/var/log/trainer", "run2.log"))
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "run.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
model_name = "from-file"
run_name = "file-run"
log_dir = "out"
epochs = 1
norm_type = "rms_norm"
`), 0644))

		stdout, _, err := executeCommand(t, "main", "--config", path, "-r", "flag-run")
		require.NoError(t, err)
		assert.Contains(t, stdout, `norm_type = "rms_norm"`)
		assert.Contains(t, stdout, "Training from-file for 1 epochs")
		assert.Contains(t, stdout, "Log file: "+filepath.Join("out", "flag-run.log"))
	})

	t.Run("VerboseLogging", func(t *testing.T) {
		_, stderr, err := executeCommand(t, "main", "-v", "-m", "agi", "-r", "run1", "--log-dir", "logs", "--epochs", "0")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Invoking command")
		assert.Contains(t, stderr, "invocation_id=")
	})
}

func TestRLMainCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "rl-main", "-m", "agi", "-r", "run1", "--log-dir", "logs",
		"--n-layers", "4", "--d-model", "2", "--exploration-rate", "0.2", "--epochs", "2", "--max-episode", "3")
	require.NoError(t, err)

	assert.Contains(t, stdout, "# RLMainArgs")
	assert.Equal(t, 6, strings.Count(stdout, "Episode "))
	assert.Contains(t, stdout, "Episode 3: exploration rate 0.2")
	assert.Contains(t, stdout, "Log file: "+filepath.Join("logs", "run1.log"))
}

func TestProjectionFromArgs(t *testing.T) {
	require.NoError(t, defineSchemas())

	args, err := fragment.New[RLMainArgs](map[string]any{
		"model_name": "agi",
		"run_name":   "r",
		"log_dir":    "d",
		"n_layers":   3,
	})
	require.NoError(t, err)

	m, err := fragment.Project[ModelConfig](args)
	require.NoError(t, err)
	assert.Equal(t, ModelConfig{ModelName: "agi", DModel: 24, NLayers: 3, NormType: LayerNorm, NHeads: 4}, *m)

	tc, err := fragment.Project[TrainConfig](args)
	require.NoError(t, err)
	assert.Equal(t, TrainConfig{
		RunName:   "r",
		LogDir:    "d",
		NLayers:   3,
		BatchSize: 32,
		Epochs:    10,
		LogFile:   filepath.Join("d", "r.log"),
	}, *tc)

	rl, err := fragment.Project[RLTrainConfig](args)
	require.NoError(t, err)
	assert.Equal(t, 0.1, rl.ExplorationRate)
	assert.Equal(t, 10, rl.MaxEpisode)
	assert.Equal(t, *tc, rl.TrainConfig)
}
