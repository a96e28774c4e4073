package fragment

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// collect walks the struct fields of defaults, records embedded registered
// schemas as parents and flattens everything into the field table.
func (s *Schema) collect(defaults reflect.Value, tagName string) error {
	var own []*Field
	var errors []string

	s.walk(defaults, nil, tagName, &own, &errors)

	if len(errors) > 0 {
		return fmt.Errorf("failed to register %d field(s): %s", len(errors), strings.Join(errors, "; "))
	}

	// Inherited fields first; a name reachable through several parents keeps
	// the first parent's declaration and gains the other struct paths
	for _, p := range s.parents {
		for _, pf := range p.schema.fields {
			paths := prefixPaths(p.index, pf.paths)
			if existing, ok := s.byName[pf.Name]; ok {
				existing.paths = append(existing.paths, paths...)
				continue
			}
			f := *pf
			f.paths = paths
			s.add(&f)
		}
	}

	// Own fields shadow inherited ones but still write through to them
	for _, of := range own {
		existing, ok := s.byName[of.Name]
		if !ok {
			s.add(of)
			continue
		}
		if existing.origin == s {
			return fmt.Errorf("field %q is declared more than once in %s", of.Name, s.name)
		}
		paths := append(of.paths, existing.paths...)
		*existing = *of
		existing.paths = paths
	}

	return nil
}

func (s *Schema) add(f *Field) {
	s.fields = append(s.fields, f)
	s.byName[f.Name] = f
}

// walk handles the recursive field discovery.
// Embedded structs that are not registered schemas are flattened as own fields.
func (s *Schema) walk(v reflect.Value, index []int, tagName string, own *[]*Field, errors *[]string) {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), index...), i)

		tag := field.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		// Embedded structs are walked whether or not their type name is exported;
		// their exported fields stay settable through the index path
		if field.Anonymous {
			ft := field.Type
			if ft.Kind() == reflect.Ptr && ft.Elem().Kind() == reflect.Struct {
				*errors = append(*errors, fmt.Sprintf("field %s: embedded pointer %s is not supported", field.Name, ft))
				continue
			}
			if ft.Kind() == reflect.Struct {
				if p, ok := Lookup(ft); ok {
					s.parents = append(s.parents, parent{schema: p, index: path})
				} else {
					s.walk(v.Field(i), path, tagName, own, errors)
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		key, required, noinit := parseTag(tag, field.Name)
		if !isValidKeySegment(key) {
			*errors = append(*errors, fmt.Sprintf("field %s: invalid name %q", field.Name, key))
			continue
		}
		if required && noinit {
			*errors = append(*errors, fmt.Sprintf("field %s: cannot be both required and noinit", field.Name))
			continue
		}

		f := &Field{
			Name:     key,
			Type:     field.Type,
			Required: required,
			Deferred: noinit,
			Origin:   s.name,
			Meta: Meta{
				Help:  field.Tag.Get("help"),
				Flag:  field.Tag.Get("flag"),
				Short: field.Tag.Get("short"),
				Env:   strings.Split(field.Tag.Get("env"), ",")[0],
			},
			origin: s,
			paths:  [][]int{path},
			tag:    field.Tag,
		}
		if !required {
			f.Default = v.Field(i).Interface()
		}
		*own = append(*own, f)
	}
}

// embeddedSchemas returns the registered schema types embedded in t, including
// those reached through embedded unregistered structs
func embeddedSchemas(t reflect.Type) []*Schema {
	var found []*Schema
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous || field.Type.Kind() != reflect.Struct {
			continue
		}
		if p, ok := Lookup(field.Type); ok {
			found = append(found, p)
			continue
		}
		found = append(found, embeddedSchemas(field.Type)...)
	}
	return found
}

// parseTag splits `name,required,noinit`; an empty name falls back to the Go field name
func parseTag(tag, fieldName string) (key string, required, noinit bool) {
	key = fieldName
	if tag == "" {
		return key, false, false
	}

	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		key = parts[0]
	}
	for _, opt := range parts[1:] {
		switch strings.TrimSpace(opt) {
		case "required":
			required = true
		case "noinit":
			noinit = true
		}
	}
	return key, required, noinit
}

func prefixPaths(prefix []int, paths [][]int) [][]int {
	out := make([][]int, 0, len(paths))
	for _, p := range paths {
		full := make([]int, 0, len(prefix)+len(p))
		full = append(full, prefix...)
		full = append(full, p...)
		out = append(out, full)
	}
	return out
}

// kebab lowercases an identifier and separates words with hyphens:
// "trainMain", "train_main" and "TrainMain" all become "train-main"
func kebab(s string) string {
	runes := []rune(s)
	var b strings.Builder

	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			b.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('-')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "-")
}
