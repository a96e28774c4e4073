// File: lixenwraith/fragment/convenience.go
package fragment

import (
	"fmt"
	"io"
	"reflect"

	"github.com/BurntSushi/toml"
)

// Dump writes the field values of inst to w in TOML format.
// Nil values are omitted.
func (s *Schema) Dump(w io.Writer, inst any) error {
	values, err := s.Flatten(inst)
	if err != nil {
		return err
	}

	for key, value := range values {
		if isNil(value) {
			delete(values, key)
		}
	}

	if err := toml.NewEncoder(w).Encode(values); err != nil {
		return fmt.Errorf("failed to encode %s: %w", s.name, err)
	}
	return nil
}

// MustProject is like Project but panics on error
func MustProject[T any](source any) *T {
	inst, err := Project[T](source)
	if err != nil {
		panic(fmt.Sprintf("projection to %s failed: %v", reflect.TypeOf((*T)(nil)).Elem(), err))
	}
	return inst
}
