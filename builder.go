// File: lixenwraith/fragment/builder.go
package fragment

import (
	"fmt"
	"reflect"
)

// Builder provides a fluent interface for declaring a schema for the struct type T.
// A struct type that embeds registered schema types is a composed schema.
type Builder[T any] struct {
	name     string
	help     string
	tagName  string
	defaults *T
	ignored  []string
	hooks    []func(*T) error
}

// NewBuilder creates a schema builder. An empty name defaults to the Go type name.
func NewBuilder[T any](name string) *Builder[T] {
	return &Builder[T]{
		name:    name,
		tagName: "toml",
	}
}

// WithDefaults sets the struct value holding the defaults of the fields declared by T.
// Inherited fields take their defaults from the parent schema.
func (b *Builder[T]) WithDefaults(defaults T) *Builder[T] {
	b.defaults = &defaults
	return b
}

// WithHelp sets the schema description shown by registration surfaces
func (b *Builder[T]) WithHelp(help string) *Builder[T] {
	b.help = help
	return b
}

// WithTagName sets the struct tag holding field names and options (default "toml")
func (b *Builder[T]) WithTagName(tagName string) *Builder[T] {
	if tagName != "" {
		b.tagName = tagName
	}
	return b
}

// WithIgnoredConflicts accepts the named fields being contributed by more than one parent.
// The first parent in embedding order supplies the field declaration.
func (b *Builder[T]) WithIgnoredConflicts(names ...string) *Builder[T] {
	b.ignored = append(b.ignored, names...)
	return b
}

// WithPostInit adds a hook that runs once an instance is constructed.
// Hooks of parent fragments run before the hooks of the schema embedding them.
func (b *Builder[T]) WithPostInit(fn func(*T) error) *Builder[T] {
	if fn != nil {
		b.hooks = append(b.hooks, fn)
	}
	return b
}

// Build flattens T into a field table, checks parent conflicts and registers the schema.
// A schema that fails to build is not registered.
func (b *Builder[T]) Build() (*Schema, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: schema requires a struct type, got %s", ErrInvalidSchemaType, typ)
	}

	name := b.name
	if name == "" {
		name = typ.Name()
	}

	defaults := reflect.New(typ).Elem()
	if b.defaults != nil {
		defaults = reflect.ValueOf(b.defaults).Elem()
	}

	s := &Schema{
		name:    name,
		help:    b.help,
		typ:     typ,
		byName:  make(map[string]*Field),
		ignored: append([]string(nil), b.ignored...),
	}

	if err := s.collect(defaults, b.tagName); err != nil {
		return nil, fmt.Errorf("failed to build schema %s: %w", name, err)
	}

	if err := CheckConflicts(s, b.ignored...); err != nil {
		return nil, err
	}

	s.resolve()

	if len(b.hooks) > 0 {
		hooks := b.hooks
		s.hook = func(ptr any) error {
			for _, hook := range hooks {
				if err := hook(ptr.(*T)); err != nil {
					return err
				}
			}
			return nil
		}
	}

	register(s)
	return s, nil
}

// MustBuild is like Build but panics on error
func (b *Builder[T]) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("schema build failed: %v", err))
	}
	return s
}

// Define declares a fragment schema for T with the given defaults
func Define[T any](name string, defaults T) (*Schema, error) {
	return NewBuilder[T](name).WithDefaults(defaults).Build()
}

// Compose declares a composed schema for T, which must embed at least one registered fragment.
// ignored lists field names that parents may contribute more than once.
func Compose[T any](name string, ignored ...string) (*Schema, error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() == reflect.Struct && len(embeddedSchemas(typ)) == 0 {
		return nil, fmt.Errorf("%w: %s embeds no registered fragment", ErrInvalidSchemaType, typ)
	}
	return NewBuilder[T](name).WithIgnoredConflicts(ignored...).Build()
}
