// FILE: lixenwraith/fragment/cmd/trainer/trainer.go
package main

import (
	"fmt"
	"io"
)

// Model is a stand-in network built from a ModelConfig
type Model struct {
	config ModelConfig
	layers []string
}

func NewModel(config ModelConfig) *Model {
	layers := make([]string, config.NLayers)
	for i := range layers {
		layers[i] = fmt.Sprintf("forward pass %d (%s, %d heads)", config.DModel, config.NormType, config.NHeads)
	}
	return &Model{config: config, layers: layers}
}

// Trainer runs a plain training loop
type Trainer struct {
	config TrainConfig
	out    io.Writer
}

func NewTrainer(config TrainConfig, out io.Writer) *Trainer {
	return &Trainer{config: config, out: out}
}

func (t *Trainer) Train(model *Model) {
	fmt.Fprintf(t.out, "Training %s for %d epochs (batch size %d)\n", model.config.ModelName, t.config.Epochs, t.config.BatchSize)
	for i := 0; i < t.config.Epochs; i++ {
		fmt.Fprintf(t.out, "Epoch %d: %d layers\n", i+1, len(model.layers))
	}
	fmt.Fprintf(t.out, "Log file: %s\n", t.config.LogFile)
}

// RLTrainer runs episodes inside every epoch
type RLTrainer struct {
	config RLTrainConfig
	out    io.Writer
}

func NewRLTrainer(config RLTrainConfig, out io.Writer) *RLTrainer {
	return &RLTrainer{config: config, out: out}
}

func (t *RLTrainer) Train(model *Model) {
	fmt.Fprintf(t.out, "Training %s for %d epochs\n", model.config.ModelName, t.config.Epochs)
	for i := 0; i < t.config.Epochs; i++ {
		fmt.Fprintf(t.out, "Epoch %d: %d layers\n", i+1, len(model.layers))
		for e := 0; e < t.config.MaxEpisode; e++ {
			fmt.Fprintf(t.out, "Episode %d: exploration rate %g\n", e+1, t.config.ExplorationRate)
		}
	}
	fmt.Fprintf(t.out, "Log file: %s\n", t.config.LogFile)
}
