// File: lixenwraith/fragment/doc.go

// Package fragment composes command configuration from small, reusable struct
// schemas and reconciles a composed instance back into each of its fragments.
//
// Features:
//   - Fragment schemas declared once per struct type, defaults from a struct value
//   - Composition by struct embedding, flattened into one field table
//   - Name collisions between parent fragments detected at declaration time
//   - Projection of a wide instance or mapping into any narrower fragment
//   - Fields excluded from construction (`noinit`) and set afterwards
//   - Post-init hooks, run parents first
//   - Command binding on cobra or any Registrar, with file and env input
//   - TOML output of resolved instances (Dump, atomic Save)
//
// Quick Start:
//
//	type ModelConfig struct {
//	    Name  string `toml:"name,required" help:"model name"`
//	    Depth int    `toml:"depth"`
//	}
//
//	type TrainConfig struct {
//	    Run    string `toml:"run,required"`
//	    Epochs int    `toml:"epochs"`
//	}
//
//	type MainArgs struct {
//	    TrainConfig
//	    ModelConfig
//	}
//
//	fragment.Define("model", ModelConfig{Depth: 2})
//	fragment.Define("train", TrainConfig{Epochs: 10})
//	fragment.Compose[MainArgs]("main")
//
//	fragment.Bind(rootCmd, func(args *MainArgs) error {
//	    model, err := fragment.Project[ModelConfig](args)
//	    ...
//	}, fragment.WithName("main"))
//
// Field tags:
//
//	toml:"name[,required][,noinit]"   field key and options ("-" skips the field)
//	help:"..."                        usage text
//	flag:"..."                        flag name (default: key in kebab-case)
//	short:"x"                         flag shorthand
//	env:"NAME"                        environment variable, prefixed by WithEnvPrefix
//
// Input precedence for bound commands (highest to lowest):
//  1. Command-line flags
//  2. Environment variables
//  3. Input file (--config)
//  4. Schema defaults
//
// Schemas are immutable after Build and safe for concurrent use.
package fragment
