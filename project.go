// FILE: lixenwraith/fragment/project.go
package fragment

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unsafe"
)

// New constructs an instance of the schema type and returns a pointer to it.
// values may only hold constructor fields; absent optional fields take their
// defaults and absent required fields fail with *MissingFieldError.
// Post-init hooks run before New returns, parents first.
func (s *Schema) New(values map[string]any) (any, error) {
	ptr := reflect.New(s.typ)
	if err := s.construct(ptr.Elem(), values); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

func (s *Schema) construct(v reflect.Value, values map[string]any) error {
	var unknown []string
	for key := range values {
		if f, ok := s.byName[key]; !ok || f.Deferred {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s does not accept %s", ErrUnknownField, s.name, strings.Join(unknown, ", "))
	}

	var missing []string
	var errs []error

	for _, f := range s.fields {
		value, supplied := values[f.Name]
		if !supplied {
			if f.Required {
				missing = append(missing, f.Name)
				continue
			}
			value = f.Default
		}
		if err := f.set(v, value); err != nil {
			errs = append(errs, err)
		}
	}

	if len(missing) > 0 {
		return &MissingFieldError{Schema: s.name, Fields: missing}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to construct %s: %w", s.name, err)
	}

	return s.runHooks(v)
}

// runHooks runs the parents' hooks on their embedded values, then the schema's own
func (s *Schema) runHooks(v reflect.Value) error {
	for _, p := range s.parents {
		if err := p.schema.runHooks(v.FieldByIndex(p.index)); err != nil {
			return err
		}
	}
	if s.hook != nil {
		// v may sit behind an embedded field with an unexported type name, which
		// reflect marks read-only; the hook gets a plain pointer to the same memory
		ptr := reflect.NewAt(s.typ, unsafe.Pointer(v.UnsafeAddr())).Interface()
		if err := s.hook(ptr); err != nil {
			return fmt.Errorf("post-init of %s failed: %w", s.name, err)
		}
	}
	return nil
}

// ApplyDeferred sets the post-construction fields found in values on inst,
// which must be a pointer to the schema type. Other keys are ignored.
func (s *Schema) ApplyDeferred(inst any, values map[string]any) error {
	v, err := s.instanceValue(inst, true)
	if err != nil {
		return err
	}

	var errs []error
	for _, name := range s.deferred {
		value, ok := values[name]
		if !ok {
			continue
		}
		if err := s.byName[name].set(v, value); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to apply deferred fields of %s: %w", s.name, err)
	}
	return nil
}

// Flatten returns the field values of inst keyed by field name.
// inst may be a value of or a pointer to the schema type.
func (s *Schema) Flatten(inst any) (map[string]any, error) {
	v, err := s.instanceValue(inst, false)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		out[f.Name] = v.FieldByIndex(f.paths[0]).Interface()
	}
	return out, nil
}

// Project constructs an instance of the schema from a superset of its fields.
// source is a map with string keys or an instance of any registered schema.
// Keys the schema does not declare are dropped; deferred fields are assigned
// after construction.
func (s *Schema) Project(source any) (any, error) {
	values, err := flatten(source)
	if err != nil {
		return nil, err
	}

	constructorValues := make(map[string]any, len(s.constructor))
	for _, name := range s.constructor {
		if value, ok := values[name]; ok {
			constructorValues[name] = value
		}
	}

	inst, err := s.New(constructorValues)
	if err != nil {
		return nil, err
	}

	if err := s.ApplyDeferred(inst, values); err != nil {
		return nil, err
	}
	return inst, nil
}

// instanceValue validates inst against the schema type
func (s *Schema) instanceValue(inst any, addressable bool) (reflect.Value, error) {
	v := reflect.ValueOf(inst)
	if v.Kind() == reflect.Ptr && v.Type().Elem() == s.typ {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %T", ErrInvalidSchemaType, inst)
		}
		return v.Elem(), nil
	}
	if !addressable && v.IsValid() && v.Type() == s.typ {
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s expects *%s, got %T", ErrInvalidSchemaType, s.name, s.typ, inst)
}

// flatten converts a projection source into a mapping
func flatten(source any) (map[string]any, error) {
	switch src := source.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return src, nil
	}

	rv := reflect.ValueOf(source)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}

	s, ok := Lookup(rv.Type())
	if !ok {
		return nil, fmt.Errorf("%w: cannot project from %T", ErrInvalidSchemaType, source)
	}
	return s.Flatten(source)
}

// New constructs a T from constructor values
func New[T any](values map[string]any) (*T, error) {
	s, err := SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	inst, err := s.New(values)
	if err != nil {
		return nil, err
	}
	return inst.(*T), nil
}

// Project constructs a T from a superset of its fields, see (*Schema).Project
func Project[T any](source any) (*T, error) {
	s, err := SchemaFor[T]()
	if err != nil {
		return nil, err
	}
	inst, err := s.Project(source)
	if err != nil {
		return nil, err
	}
	return inst.(*T), nil
}
