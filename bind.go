// FILE: lixenwraith/fragment/bind.go
package fragment

import (
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Command is a named invocation of a schema, as handed to a registration surface.
// Run constructs the schema instance from the parsed input and calls the bound handler.
type Command struct {
	Name   string
	Schema *Schema
	Run    func(values map[string]any) error
}

// Registrar is the capability a registration surface must expose
type Registrar interface {
	Register(cmd Command) error
}

// BindOption configures Bind
type BindOption func(*bindOptions)

type bindOptions struct {
	name      string
	logger    *slog.Logger
	envPrefix string
	environ   map[string]string
	discovery string
}

// WithName sets the command name instead of deriving it from the handler
func WithName(name string) BindOption {
	return func(o *bindOptions) { o.name = name }
}

// WithLogger sets the logger used for registration and invocation records
func WithLogger(logger *slog.Logger) BindOption {
	return func(o *bindOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEnvPrefix sets the prefix for fields carrying an `env` tag
func WithEnvPrefix(prefix string) BindOption {
	return func(o *bindOptions) { o.envPrefix = prefix }
}

// WithEnviron replaces the process environment as the env source
func WithEnviron(environ map[string]string) BindOption {
	return func(o *bindOptions) { o.environ = environ }
}

// WithConfigDiscovery searches standard locations for <app>.toml/.yaml/.json
// when no --config flag is given (cobra surface only)
func WithConfigDiscovery(app string) BindOption {
	return func(o *bindOptions) { o.discovery = app }
}

// Bind registers a command on surface that constructs a T from its parsed input
// and passes it to handler. T must be a registered schema. surface is either a
// *cobra.Command, which receives a subcommand with one flag per constructor
// field, or a Registrar. The command name defaults to the handler's function
// name in kebab-case.
func Bind[T any](surface any, handler func(*T) error, opts ...BindOption) error {
	o := bindOptions{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s, err := SchemaFor[T]()
	if err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("cannot bind %s: handler is nil", s.name)
	}

	name := o.name
	if name == "" {
		name = handlerName(handler)
	}
	if name == "" {
		return fmt.Errorf("cannot bind %s: no valid command name could be derived from the handler, use WithName", s.name)
	}

	logger := o.logger.With("command", name, "schema", s.name)
	cmd := Command{
		Name:   name,
		Schema: s,
		Run: func(values map[string]any) error {
			log := logger.With("invocation_id", uuid.NewString())
			log.Debug("Invoking command", "keys", len(values))

			inst, err := s.Project(values)
			if err != nil {
				log.Error("Failed to construct command input", "error", err)
				return err
			}
			if err := handler(inst.(*T)); err != nil {
				log.Error("Command handler failed", "error", err)
				return err
			}

			log.Debug("Command finished")
			return nil
		},
	}

	if isNil(surface) {
		return fmt.Errorf("%w: %T", ErrUnsupportedSurface, surface)
	}

	switch sf := surface.(type) {
	case *cobra.Command:
		if err := bindCobra(sf, cmd, o); err != nil {
			return err
		}
	case Registrar:
		if err := sf.Register(cmd); err != nil {
			return fmt.Errorf("failed to register command %q: %w", name, err)
		}
	default:
		return fmt.Errorf("%w: %T has no command registration", ErrUnsupportedSurface, surface)
	}

	logger.Debug("Command registered", "fields", len(s.fields))
	return nil
}

// handlerName derives the command name from the handler's function name.
// Closures are named after their enclosing function and type arguments of
// generic functions are dropped. Returns "" when no valid name results.
func handlerName(handler any) string {
	fn := runtime.FuncForPC(reflect.ValueOf(handler).Pointer())
	if fn == nil {
		return ""
	}

	full := stripTypeArgs(fn.Name())
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}

	// Drop the package name, then closure and method value suffixes
	parts := strings.Split(full, ".")[1:]
	for len(parts) > 0 && isClosureSegment(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 || parts[len(parts)-1] == "glob" {
		return ""
	}

	name := kebab(strings.TrimSuffix(parts[len(parts)-1], "-fm"))
	if !isValidKeySegment(name) {
		return ""
	}
	return name
}

// stripTypeArgs removes bracketed type argument lists, as in "pkg.run[...].func1"
func stripTypeArgs(name string) string {
	var b strings.Builder
	depth := 0
	for _, r := range name {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isClosureSegment(s string) bool {
	if s == "" {
		return true
	}
	s = strings.TrimPrefix(s, "func")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Interface, reflect.Slice, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
