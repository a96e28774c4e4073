// FILE: lixenwraith/fragment/errors.go
package fragment

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrSchemaConflict is returned when two unrelated parent fragments contribute the same field name
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrMissingRequiredField is returned when a required constructor field is not supplied
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrUnsupportedSurface is returned when Bind receives a surface it cannot register commands on
	ErrUnsupportedSurface = errors.New("unsupported registration surface")
	// ErrInvalidSchemaType is returned when a type has not been registered as a schema
	ErrInvalidSchemaType = errors.New("invalid schema type")
	// ErrUnknownField is returned when construction receives a key that is not constructor-settable
	ErrUnknownField = errors.New("unknown field")
	// ErrDuplicateCommand is returned by Table when a command name is already taken
	ErrDuplicateCommand = errors.New("duplicate command")
	// ErrConfigNotFound is returned when an input file does not exist
	ErrConfigNotFound = errors.New("config file not found")
	// ErrCLIParse wraps failures of the built-in argument parser
	ErrCLIParse = errors.New("failed to parse command-line arguments")
)

// ConflictError is the conflict report of a composed schema.
// Conflicts maps each colliding field name to the sorted names of the parents contributing it.
type ConflictError struct {
	Schema    string
	Conflicts map[string][]string
}

func (e *ConflictError) Error() string {
	names := make([]string, 0, len(e.Conflicts))
	for name := range e.Conflicts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%q in [%s]", name, strings.Join(e.Conflicts[name], ", ")))
	}
	return fmt.Sprintf("%s: conflicting field name(s) in %s: %s", ErrSchemaConflict, e.Schema, strings.Join(parts, "; "))
}

func (e *ConflictError) Unwrap() error {
	return ErrSchemaConflict
}

// MissingFieldError names the required fields absent from a construction.
type MissingFieldError struct {
	Schema string
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: %s requires %s", ErrMissingRequiredField, e.Schema, strings.Join(e.Fields, ", "))
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingRequiredField
}
