// FILE: lixenwraith/fragment/cmd/trainer/config.go
package main

import (
	"fmt"
	"path/filepath"

	"github.com/lixenwraith/fragment"
)

// NormType selects the normalization layer
type NormType string

const (
	LayerNorm NormType = "layer_norm"
	RMSNorm   NormType = "rms_norm"
)

func (n NormType) validate() error {
	switch n {
	case LayerNorm, RMSNorm:
		return nil
	}
	return fmt.Errorf("invalid norm_type %q, expected %s or %s", n, LayerNorm, RMSNorm)
}

// ModelConfig holds the model hyperparameters
type ModelConfig struct {
	ModelName string   `toml:"model_name,required" help:"model name" short:"m"`
	DModel    int      `toml:"d_model" help:"embedding width"`
	NLayers   int      `toml:"n_layers" help:"number of layers"`
	NormType  NormType `toml:"norm_type" help:"normalization (layer_norm, rms_norm)"`
	NHeads    int      `toml:"n_heads" help:"head num of a AGI model"`
}

// TrainConfig holds the training run settings.
// LogFile is derived from LogDir and RunName.
type TrainConfig struct {
	RunName   string `toml:"run_name,required" help:"run name" short:"r"`
	LogDir    string `toml:"log_dir,required" help:"log directory" env:"LOG_DIR"`
	NLayers   int    `toml:"n_layers" help:"number of layers"`
	BatchSize int    `toml:"batch_size" help:"batch size" env:"BATCH_SIZE"`
	Epochs    int    `toml:"epochs" help:"number of epochs" short:"e" env:"EPOCHS"`
	LogFile   string `toml:"log_file,noinit"`
}

// RLTrainConfig extends TrainConfig with episode settings
type RLTrainConfig struct {
	TrainConfig
	ExplorationRate float64 `toml:"exploration_rate" help:"exploration rate"`
	MaxEpisode      int     `toml:"max_episode" help:"episodes per epoch"`
}

// MainArgs is the input of the main command
type MainArgs struct {
	TrainConfig
	ModelConfig
}

// RLMainArgs is the input of the rl-main command
type RLMainArgs struct {
	RLTrainConfig
	ModelConfig
}

// defineSchemas registers the fragments, then the composed command inputs.
// Both commands accept n_layers from either fragment; TrainConfig's default wins.
func defineSchemas() error {
	if _, err := fragment.NewBuilder[ModelConfig]("ModelConfig").
		WithDefaults(ModelConfig{
			DModel:   24,
			NLayers:  2,
			NormType: LayerNorm,
			NHeads:   4,
		}).
		WithPostInit(func(m *ModelConfig) error {
			return m.NormType.validate()
		}).
		Build(); err != nil {
		return err
	}

	if _, err := fragment.NewBuilder[TrainConfig]("TrainConfig").
		WithDefaults(TrainConfig{
			NLayers:   6,
			BatchSize: 32,
			Epochs:    10,
		}).
		WithPostInit(func(t *TrainConfig) error {
			t.LogFile = filepath.Join(t.LogDir, t.RunName+".log")
			return nil
		}).
		Build(); err != nil {
		return err
	}

	if _, err := fragment.NewBuilder[RLTrainConfig]("RLTrainConfig").
		WithDefaults(RLTrainConfig{
			ExplorationRate: 0.1,
			MaxEpisode:      10,
		}).
		Build(); err != nil {
		return err
	}

	if _, err := fragment.NewBuilder[MainArgs]("MainArgs").
		WithHelp("Train a model").
		WithIgnoredConflicts("n_layers").
		Build(); err != nil {
		return err
	}

	_, err := fragment.NewBuilder[RLMainArgs]("RLMainArgs").
		WithHelp("Train a model with reinforcement learning").
		WithIgnoredConflicts("n_layers").
		Build()
	return err
}
