package fragment

import (
	"fmt"
	"sort"
	"sync"
)

// Table is an in-memory registration surface.
// Execute dispatches "<command> --flag value ..." argument lists.
type Table struct {
	commands map[string]Command
	mutex    sync.RWMutex
}

// NewTable creates an empty command table
func NewTable() *Table {
	return &Table{
		commands: make(map[string]Command),
	}
}

// Register adds a command; names must be unique
func (t *Table) Register(cmd Command) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, exists := t.commands[cmd.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, cmd.Name)
	}
	t.commands[cmd.Name] = cmd
	return nil
}

// Lookup returns the named command
func (t *Table) Lookup(name string) (Command, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	cmd, ok := t.commands[name]
	return cmd, ok
}

// Names returns the registered command names, sorted
func (t *Table) Names() []string {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named command with already parsed values
func (t *Table) Invoke(name string, values map[string]any) error {
	cmd, ok := t.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown command %q", name)
	}
	return cmd.Run(values)
}

// Execute runs args[0] as command name with the remaining arguments parsed as flags.
// Flags are matched by field name or flag name; values stay strings until construction.
func (t *Table) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given, available: %v", t.Names())
	}

	cmd, ok := t.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q, available: %v", args[0], t.Names())
	}

	parsed, err := ParseArgs(args[1:])
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}

	values := make(map[string]any, len(parsed))
	for key, value := range parsed {
		if f, ok := cmd.Schema.fieldForKey(key); ok && !f.Deferred {
			values[f.Name] = value
			continue
		}
		return fmt.Errorf("%w: unknown flag --%s for command %s", ErrCLIParse, key, cmd.Name)
	}

	return cmd.Run(values)
}
