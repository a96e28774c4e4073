// FILE: lixenwraith/fragment/schema.go
package fragment

import (
	"fmt"
	"reflect"
	"sync"
)

// Meta holds per-field metadata read from struct tags.
// It is not interpreted by the schema itself, only passed on to registration surfaces.
type Meta struct {
	Help  string // usage text (`help` tag)
	Flag  string // flag name override (`flag` tag)
	Short string // one-letter flag shorthand (`short` tag)
	Env   string // environment variable name without prefix (`env` tag)
}

// Field is one entry of a schema's field table.
type Field struct {
	Name     string       // key used in mappings, flattened instances and file input
	Type     reflect.Type // Go type of the primary struct field
	Default  any          // value used when the field is not supplied; nil for required fields
	Required bool         // must be supplied at construction
	Deferred bool         // excluded from construction, set afterwards (`noinit`)
	Origin   string       // name of the schema that declared the field
	Meta     Meta

	origin *Schema
	paths  [][]int // struct index paths, the first one is read by Flatten
	tag    reflect.StructTag
}

// FlagName returns the command-line flag name for the field
func (f Field) FlagName() string {
	if f.Meta.Flag != "" {
		return f.Meta.Flag
	}
	return kebab(f.Name)
}

// set writes value to every struct path of the field
func (f *Field) set(v reflect.Value, value any) error {
	for _, path := range f.paths {
		if err := f.assign(v.FieldByIndex(path), value); err != nil {
			return err
		}
	}
	return nil
}

// parent is a direct parent fragment embedded in a composed schema
type parent struct {
	schema *Schema
	index  []int
}

// Schema is the immutable, flattened description of a registered struct type.
// Schemas are created with Builder and live for the process lifetime.
type Schema struct {
	name    string
	help    string
	typ     reflect.Type
	fields  []*Field
	byName  map[string]*Field
	parents []parent
	ignored []string

	constructor []string
	deferred    []string

	hook func(ptr any) error
}

// Name returns the schema name
func (s *Schema) Name() string { return s.name }

// Help returns the schema description
func (s *Schema) Help() string { return s.help }

// Type returns the struct type described by the schema
func (s *Schema) Type() reflect.Type { return s.typ }

// Fields returns a copy of the field table in declaration order.
// Inherited fields come first, in parent order, followed by own fields.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = *f
	}
	return out
}

// Field returns the named field
func (s *Schema) Field(name string) (Field, bool) {
	f, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return *f, true
}

// Parents returns the direct parent fragments in embedding order
func (s *Schema) Parents() []*Schema {
	out := make([]*Schema, len(s.parents))
	for i, p := range s.parents {
		out[i] = p.schema
	}
	return out
}

// IgnoredConflicts returns the field names accepted as conflicting between parents
func (s *Schema) IgnoredConflicts() []string {
	return append([]string(nil), s.ignored...)
}

// Resolve partitions the fields into constructor-settable and post-construction-settable names.
// The partition is computed once when the schema is built.
func (s *Schema) Resolve() (constructor, deferred []string) {
	return s.ConstructorFields(), s.DeferredFields()
}

// ConstructorFields returns the names of the constructor-settable fields
func (s *Schema) ConstructorFields() []string {
	return append([]string(nil), s.constructor...)
}

// DeferredFields returns the names of the post-construction-settable fields
func (s *Schema) DeferredFields() []string {
	return append([]string(nil), s.deferred...)
}

// fieldForKey matches a field by name or by flag name
func (s *Schema) fieldForKey(key string) (*Field, bool) {
	if f, ok := s.byName[key]; ok {
		return f, true
	}
	for _, f := range s.fields {
		if f.FlagName() == key {
			return f, true
		}
	}
	return nil, false
}

// resolve builds the constructor/deferred partition
func (s *Schema) resolve() {
	s.constructor = s.constructor[:0]
	s.deferred = s.deferred[:0]
	for _, f := range s.fields {
		if f.Deferred {
			s.deferred = append(s.deferred, f.Name)
		} else {
			s.constructor = append(s.constructor, f.Name)
		}
	}
}

var registry = struct {
	mutex   sync.RWMutex
	schemas map[reflect.Type]*Schema
}{
	schemas: make(map[reflect.Type]*Schema),
}

// register makes the schema the one used for its type.
// Building a schema for an already registered type replaces the earlier entry.
func register(s *Schema) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.schemas[s.typ] = s
}

// Lookup returns the schema registered for t. Pointer types resolve to their element type.
func Lookup(t reflect.Type) (*Schema, bool) {
	if t == nil {
		return nil, false
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	registry.mutex.RLock()
	defer registry.mutex.RUnlock()

	s, ok := registry.schemas[t]
	return s, ok
}

// SchemaFor returns the schema registered for T
func SchemaFor[T any]() (*Schema, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct type", ErrInvalidSchemaType, t)
	}
	s, ok := Lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not registered", ErrInvalidSchemaType, t)
	}
	return s, nil
}
