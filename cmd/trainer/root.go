// FILE: lixenwraith/fragment/cmd/trainer/root.go
package main

import (
	"fmt"
	"io"
	"log/slog"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/fragment"
)

// app carries the output and logger shared by the command handlers.
// Handler method names become the command names.
type app struct {
	out    io.Writer
	logger *slog.Logger
}

// newRootCommand registers the schemas and binds the main and rl-main commands
func newRootCommand(out, errOut io.Writer) (*cobra.Command, error) {
	if err := defineSchemas(); err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	a := &app{
		out:    out,
		logger: slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level})),
	}

	var verbose bool
	root := &cobra.Command{
		Use:   "trainer",
		Short: "Train models from composed configuration fragments",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	opts := []fragment.BindOption{
		fragment.WithLogger(a.logger),
		fragment.WithEnvPrefix("TRAINER_"),
		fragment.WithConfigDiscovery("trainer"),
	}

	if err := fragment.Bind(root, a.main, opts...); err != nil {
		return nil, fmt.Errorf("failed to bind main: %w", err)
	}
	if err := fragment.Bind(root, a.rlMain, opts...); err != nil {
		return nil, fmt.Errorf("failed to bind rl-main: %w", err)
	}

	return root, nil
}

func (a *app) main(args *MainArgs) error {
	if err := a.dump(args); err != nil {
		return err
	}

	m, err := fragment.Project[ModelConfig](args)
	if err != nil {
		return err
	}
	t, err := fragment.Project[TrainConfig](args)
	if err != nil {
		return err
	}

	NewTrainer(*t, a.out).Train(NewModel(*m))
	return nil
}

func (a *app) rlMain(args *RLMainArgs) error {
	if err := a.dump(args); err != nil {
		return err
	}

	m, err := fragment.Project[ModelConfig](args)
	if err != nil {
		return err
	}
	t, err := fragment.Project[RLTrainConfig](args)
	if err != nil {
		return err
	}

	NewRLTrainer(*t, a.out).Train(NewModel(*m))
	return nil
}

// dump prints the command input as TOML
func (a *app) dump(inst any) error {
	s, ok := fragment.Lookup(reflect.TypeOf(inst))
	if !ok {
		return fmt.Errorf("%w: %T", fragment.ErrInvalidSchemaType, inst)
	}
	fmt.Fprintf(a.out, "# %s\n", s.Name())
	return s.Dump(a.out, inst)
}
