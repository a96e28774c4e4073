// FILE: lixenwraith/fragment/conflict.go
package fragment

import "sort"

// CheckConflicts fails with a *ConflictError when two direct parents of s
// contribute the same constructor field and the name is not in ignored.
//
// Only direct parents are inspected, each with its full constructor field set,
// so a field two parents inherited from a shared ancestor is reported too.
// Own fields never conflict: they shadow what the parents declare.
func CheckConflicts(s *Schema, ignored ...string) error {
	skip := make(map[string]bool, len(ignored))
	for _, name := range ignored {
		skip[name] = true
	}

	claims := make(map[string][]*Schema)
	for _, p := range s.parents {
		for _, name := range p.schema.constructor {
			claims[name] = append(claims[name], p.schema)
		}
	}

	conflicts := make(map[string][]string)
	for name, parents := range claims {
		if len(parents) < 2 || skip[name] {
			continue
		}
		names := make([]string, 0, len(parents))
		for _, p := range parents {
			names = append(names, p.name)
		}
		sort.Strings(names)
		conflicts[name] = names
	}

	if len(conflicts) > 0 {
		return &ConflictError{Schema: s.name, Conflicts: conflicts}
	}
	return nil
}
