// FILE: lixenwraith/fragment/cobra.go
package fragment

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// configFlag names the per-command input file flag
const configFlag = "config"

var durationType = reflect.TypeOf(time.Duration(0))

// bindCobra builds the complete subcommand before attaching it to root,
// so a flag collision leaves root untouched
func bindCobra(root *cobra.Command, cmd Command, o bindOptions) error {
	sub, err := newCobraCommand(cmd, o, parentFlags(root))
	if err != nil {
		return err
	}
	root.AddCommand(sub)
	return nil
}

// takenFlags holds the flag names (with their value type) and shorthands a
// subcommand of root receives from above
type takenFlags struct {
	names  map[string]string
	shorts map[string]string
}

func parentFlags(root *cobra.Command) takenFlags {
	taken := takenFlags{
		names:  map[string]string{"help": "bool"},
		shorts: map[string]string{"h": "help"},
	}
	record := func(fl *pflag.Flag) {
		taken.names[fl.Name] = fl.Value.Type()
		if fl.Shorthand != "" {
			taken.shorts[fl.Shorthand] = fl.Name
		}
	}
	root.PersistentFlags().VisitAll(record)
	root.InheritedFlags().VisitAll(record)
	return taken
}

func newCobraCommand(cmd Command, o bindOptions, taken takenFlags) (*cobra.Command, error) {
	s := cmd.Schema

	short := s.help
	if short == "" {
		short = fmt.Sprintf("Run %s with %s", cmd.Name, s.name)
	}

	c := &cobra.Command{
		Use:          cmd.Name,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}

	flags := c.Flags()
	bound := make(map[string]*Field)
	shorts := taken.shorts
	_, inheritedConfig := taken.names[configFlag]
	if inheritedConfig && taken.names[configFlag] != "string" {
		return nil, fmt.Errorf("command %s: inherited flag --%s must be a string flag", cmd.Name, configFlag)
	}

	for _, f := range s.fields {
		if f.Deferred {
			continue
		}

		name := f.FlagName()
		_, inherited := taken.names[name]
		if inherited || name == configFlag || bound[name] != nil {
			return nil, fmt.Errorf("command %s: flag --%s of field %q is already defined", cmd.Name, name, f.Name)
		}
		if f.Meta.Short != "" {
			if len(f.Meta.Short) != 1 {
				return nil, fmt.Errorf("command %s: shorthand %q of field %q must be one character", cmd.Name, f.Meta.Short, f.Name)
			}
			if owner, used := shorts[f.Meta.Short]; used {
				return nil, fmt.Errorf("command %s: shorthand -%s of field %q is already used by --%s", cmd.Name, f.Meta.Short, f.Name, owner)
			}
			shorts[f.Meta.Short] = name
		}

		usage := f.Meta.Help
		if f.Required {
			usage += " (required)"
		}

		defineFlag(flags, name, f.Meta.Short, usage, f)
		bound[name] = f
	}

	// A persistent --config on an ancestor is read the same way
	if !inheritedConfig {
		flags.String(configFlag, "", "Input file (TOML, YAML or JSON) with field values")
	}

	c.RunE = func(c *cobra.Command, args []string) error {
		var layers []map[string]any

		path, _ := c.Flags().GetString(configFlag)
		if path == "" && o.discovery != "" {
			path = discoverFile(o.discovery)
		}
		if path != "" {
			fileValues, err := LoadFile(path)
			if err != nil {
				return err
			}
			layers = append(layers, fileValues)
		}

		envValues, err := s.LoadEnv(o.envPrefix, o.environ)
		if err != nil {
			return err
		}
		layers = append(layers, envValues)

		cliValues := make(map[string]any)
		var errs []error
		c.Flags().Visit(func(fl *pflag.Flag) {
			f, ok := bound[fl.Name]
			if !ok {
				return
			}
			value, err := flagValue(c.Flags(), fl.Name, f.Type)
			if err != nil {
				errs = append(errs, fmt.Errorf("flag --%s: %w", fl.Name, err))
				return
			}
			cliValues[f.Name] = value
		})
		if err := errors.Join(errs...); err != nil {
			return err
		}
		layers = append(layers, cliValues)

		return cmd.Run(Merge(layers...))
	}

	return c, nil
}

// defineFlag creates a typed flag from the field type, falling back to a string
// flag that is converted at construction
func defineFlag(fs *pflag.FlagSet, name, short, usage string, f *Field) {
	def := reflect.ValueOf(f.Default)
	if !def.IsValid() || def.Type() != f.Type {
		def = reflect.Zero(f.Type)
	}

	if f.Type == durationType {
		fs.DurationP(name, short, time.Duration(def.Int()), usage)
		return
	}

	switch f.Type.Kind() {
	case reflect.Bool:
		fs.BoolP(name, short, def.Bool(), usage)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fs.Int64P(name, short, def.Int(), usage)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		fs.Uint64P(name, short, def.Uint(), usage)
	case reflect.Float32, reflect.Float64:
		fs.Float64P(name, short, def.Float(), usage)
	case reflect.String:
		fs.StringP(name, short, def.String(), usage)
	case reflect.Slice:
		if f.Type.Elem().Kind() == reflect.String {
			items := make([]string, def.Len())
			for i := range items {
				items[i] = def.Index(i).String()
			}
			fs.StringSliceP(name, short, items, usage)
			return
		}
		fs.StringP(name, short, formatDefault(def), usage)
	default:
		fs.StringP(name, short, formatDefault(def), usage)
	}
}

// flagValue reads a parsed flag with the getter matching defineFlag
func flagValue(fs *pflag.FlagSet, name string, t reflect.Type) (any, error) {
	if t == durationType {
		return fs.GetDuration(name)
	}

	switch t.Kind() {
	case reflect.Bool:
		return fs.GetBool(name)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return fs.GetInt64(name)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fs.GetUint64(name)
	case reflect.Float32, reflect.Float64:
		return fs.GetFloat64(name)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return fs.GetStringSlice(name)
		}
	}
	return fs.GetString(name)
}

func formatDefault(v reflect.Value) string {
	if !v.IsValid() || v.IsZero() {
		return ""
	}
	return fmt.Sprint(v.Interface())
}
